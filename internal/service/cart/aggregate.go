package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/pricing"
)

// KindNoop marks a call that changed nothing and notified no one.
const KindNoop notify.Kind = "noop"

// Persister is the durable slot a cart writes through to. Load reports an empty
// cart for a missing or malformed snapshot and errors only when the slot could
// not be read at all.
type Persister interface {
	Load(ctx context.Context) ([]domain.LineItem, error)
	Save(ctx context.Context, items []domain.LineItem) error
}

// Snapshot is a point-in-time copy of a cart. Callers may keep and modify it freely.
type Snapshot struct {
	Items      []domain.LineItem
	TotalItems int
	Subtotal   decimal.Decimal
	Totals     pricing.Totals
	// Unsaved is set while the latest write-through has failed.
	Unsaved bool
}

// Outcome reports what a mutation did, together with the cart state it left behind.
type Outcome struct {
	Kind    notify.Kind
	Message string
	Detail  string
	Cart    Snapshot
}

// Aggregate owns the line items of one cart. Every mutation applies its change,
// writes the full item list through to the Persister and emits exactly one
// notification, all under one lock. Mutations never fail; bad input resolves to a
// clamp or a no-op.
type Aggregate struct {
	mu      sync.Mutex
	store   Persister
	sink    notify.Sink
	calc    pricing.Calculator
	logger  *zap.Logger
	now     func() time.Time
	items   []domain.LineItem
	unsaved bool
}

// NewAggregate loads the cart held by store. A failed read is returned as is so
// the saved cart is never replaced by an empty one.
func NewAggregate(ctx context.Context, store Persister, sink notify.Sink, calc pricing.Calculator, logger *zap.Logger) (*Aggregate, error) {
	items, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregate{
		store:  store,
		sink:   sink,
		calc:   calc,
		logger: logger,
		now:    time.Now,
		items:  items,
	}, nil
}

// AddItem puts one more unit of p in the cart, up to domain.MaxQuantity.
func (a *Aggregate) AddItem(ctx context.Context, p domain.Product) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return a.noop()
	}
	if i := a.find(p.ID); i >= 0 {
		item := &a.items[i]
		if item.Quantity >= domain.MaxQuantity {
			return a.emit(maxReached(item.Product.Name))
		}
		item.Quantity++
		return a.commit(ctx, quantityUpdated(item.Product.Name, item.Quantity))
	}

	a.items = append(a.items, domain.LineItem{Product: domain.SnapshotOf(p), Quantity: 1})
	return a.commit(ctx, Outcome{
		Kind:    notify.KindItemAdded,
		Message: "Item added to cart",
		Detail:  fmt.Sprintf("%s has been added to your cart.", p.Name),
	})
}

// RemoveItem drops the line for productID. Removing an absent product is not an error.
func (a *Aggregate) RemoveItem(ctx context.Context, productID string) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remove(ctx, productID)
}

// SetQuantity sets the quantity of an existing line. Values above the ceiling are
// clamped; values below one remove the line.
func (a *Aggregate) SetQuantity(ctx context.Context, productID string, quantity int) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	if quantity < 1 {
		return a.remove(ctx, productID)
	}
	i := a.find(productID)
	if i < 0 {
		return a.noop()
	}
	item := &a.items[i]
	if quantity > domain.MaxQuantity {
		item.Quantity = domain.MaxQuantity
		return a.commit(ctx, maxReached(item.Product.Name))
	}
	item.Quantity = quantity
	return a.commit(ctx, quantityUpdated(item.Product.Name, quantity))
}

// Clear empties the cart unconditionally.
func (a *Aggregate) Clear(ctx context.Context) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.items = a.items[:0]
	return a.commit(ctx, Outcome{Kind: notify.KindCartCleared, Message: "Cart cleared"})
}

// Checkout hands a copy of the items to place and empties the cart once place
// succeeds. The lock is held throughout so nothing added during placement is lost
// by the clear.
func (a *Aggregate) Checkout(ctx context.Context, place func(ctx context.Context, items []domain.LineItem) (*domain.Order, error)) (*domain.Order, Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.items) == 0 {
		return nil, Outcome{}, domain.ErrEmptyCart
	}
	order, err := place(ctx, domain.CloneItems(a.items))
	if err != nil {
		return nil, Outcome{}, err
	}
	a.items = a.items[:0]
	out := a.commit(ctx, Outcome{
		Kind:    notify.KindOrderPlaced,
		Message: "Order placed",
		Detail:  order.ID,
	})
	return order, out, nil
}

// NoteProductChanged tells the shopper that a product in the cart changed in the
// catalog. The line keeps the snapshot taken when it was added.
func (a *Aggregate) NoteProductChanged(p domain.Product) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.find(p.ID)
	if i < 0 {
		return false
	}
	a.emit(Outcome{
		Kind:    notify.KindProductUpdated,
		Message: "Product updated",
		Detail:  fmt.Sprintf("%s has changed in the catalog.", a.items[i].Product.Name),
	})
	return true
}

// Snapshot returns a detached deep copy of the cart and its totals.
func (a *Aggregate) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

func (a *Aggregate) remove(ctx context.Context, productID string) Outcome {
	name := productID
	if i := a.find(productID); i >= 0 {
		name = a.items[i].Product.Name
		a.items = append(a.items[:i], a.items[i+1:]...)
	}
	return a.commit(ctx, Outcome{
		Kind:    notify.KindItemRemoved,
		Message: "Item removed from cart",
		Detail:  fmt.Sprintf("%s has been removed from your cart.", name),
	})
}

func (a *Aggregate) find(productID string) int {
	for i := range a.items {
		if a.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// commit writes the items through and then notifies. A failed write keeps the
// in-memory state and is reported through Snapshot.Unsaved.
func (a *Aggregate) commit(ctx context.Context, out Outcome) Outcome {
	if err := a.store.Save(ctx, domain.CloneItems(a.items)); err != nil {
		a.unsaved = true
		a.logger.Warn("cart write-through failed", zap.String("kind", string(out.Kind)), zap.Error(err))
	} else {
		a.unsaved = false
	}
	return a.emit(out)
}

func (a *Aggregate) emit(out Outcome) Outcome {
	a.sink.Notify(notify.Notification{
		Kind:    out.Kind,
		Message: out.Message,
		Detail:  out.Detail,
		At:      a.now(),
	})
	out.Cart = a.snapshot()
	return out
}

func (a *Aggregate) noop() Outcome {
	return Outcome{Kind: KindNoop, Cart: a.snapshot()}
}

func (a *Aggregate) snapshot() Snapshot {
	items := domain.CloneItems(a.items)
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	totals := a.calc.Totals(items)
	return Snapshot{
		Items:      items,
		TotalItems: total,
		Subtotal:   totals.Subtotal,
		Totals:     totals,
		Unsaved:    a.unsaved,
	}
}

func maxReached(name string) Outcome {
	return Outcome{
		Kind:    notify.KindMaxQuantityReached,
		Message: "Maximum quantity reached",
		Detail:  fmt.Sprintf("You can only have %d of %s in your cart.", domain.MaxQuantity, name),
	}
}

func quantityUpdated(name string, qty int) Outcome {
	return Outcome{
		Kind:    notify.KindQuantityUpdated,
		Message: "Quantity updated",
		Detail:  fmt.Sprintf("%s quantity is now %d.", name, qty),
	}
}
