package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/service/catalog"
	ordersvc "storefront/internal/service/order"
)

type productLookup interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type orderPlacer interface {
	Place(ctx context.Context, in ordersvc.PlaceInput) (*domain.Order, error)
}

type Deps struct {
	Store    cartrepo.Store
	Catalog  productLookup
	Orders   orderPlacer
	Pricing  pricing.Calculator
	Sink     notify.Sink
	Logger   *zap.Logger
	FeedSize int
	// CacheSize caps how many carts stay in memory. Zero means no cap.
	CacheSize int
	// IdleTTL drops a cart from memory once it has gone unused this long.
	// Zero keeps carts until they are pushed out by CacheSize.
	IdleTTL time.Duration
}

// Service keeps one Aggregate per shopping session, loaded from the session's
// storage key on first use. Carts held in memory are bounded by Deps.CacheSize
// and Deps.IdleTTL; a dropped cart is loaded again from the store on next use.
type Service struct {
	deps   Deps
	logger *zap.Logger

	carts *expirable.LRU[string, *sessionCart]
	loads singleflight.Group
}

type sessionCart struct {
	// mu is held for the length of one service call so eviction waits for it.
	mu      sync.Mutex
	evicted atomic.Bool
	agg     *Aggregate
	feed    *notify.Feed
}

func New(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Service{
		deps:   deps,
		logger: deps.Logger.Named("cart"),
	}
	s.carts = expirable.NewLRU[string, *sessionCart](deps.CacheSize, s.evict, deps.IdleTTL)
	return s
}

func (s *Service) Snapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	var snap Snapshot
	err := s.with(ctx, sessionID, func(sc *sessionCart) {
		snap = sc.agg.Snapshot()
	})
	return snap, err
}

// AddProduct resolves productID in the catalog and adds one unit of it.
func (s *Service) AddProduct(ctx context.Context, sessionID, productID string) (Outcome, error) {
	product, err := s.deps.Catalog.Get(ctx, productID)
	if err != nil {
		return Outcome{}, err
	}
	return s.mutate(ctx, sessionID, func(agg *Aggregate) Outcome {
		return agg.AddItem(ctx, *product)
	})
}

func (s *Service) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (Outcome, error) {
	return s.mutate(ctx, sessionID, func(agg *Aggregate) Outcome {
		return agg.SetQuantity(ctx, productID, quantity)
	})
}

func (s *Service) Remove(ctx context.Context, sessionID, productID string) (Outcome, error) {
	return s.mutate(ctx, sessionID, func(agg *Aggregate) Outcome {
		return agg.RemoveItem(ctx, productID)
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) (Outcome, error) {
	return s.mutate(ctx, sessionID, func(agg *Aggregate) Outcome {
		return agg.Clear(ctx)
	})
}

// Notifications returns the session's recent notices. The feed lives in memory
// only and starts over when the cart is dropped from the cache.
func (s *Service) Notifications(ctx context.Context, sessionID string) ([]notify.Notification, error) {
	var items []notify.Notification
	err := s.with(ctx, sessionID, func(sc *sessionCart) {
		items = sc.feed.Recent()
	})
	return items, err
}

// Checkout places an order for the session's cart and clears the cart once the
// order is stored. A failed placement leaves the cart as it was.
func (s *Service) Checkout(ctx context.Context, sessionID string, shipping domain.ShippingDetails) (*domain.Order, Outcome, error) {
	var (
		order    *domain.Order
		out      Outcome
		placeErr error
	)
	err := s.with(ctx, sessionID, func(sc *sessionCart) {
		order, out, placeErr = sc.agg.Checkout(ctx, func(ctx context.Context, items []domain.LineItem) (*domain.Order, error) {
			return s.deps.Orders.Place(ctx, ordersvc.PlaceInput{
				SessionID: sessionID,
				Items:     items,
				Shipping:  shipping,
			})
		})
	})
	if err != nil {
		return nil, Outcome{}, err
	}
	return order, out, placeErr
}

// OnProductChanged is a catalog subscriber: carts holding the product get a notice.
func (s *Service) OnProductChanged(ev catalog.ProductChanged) {
	noticed := 0
	for _, sc := range s.carts.Values() {
		if sc.evicted.Load() {
			continue
		}
		if sc.agg.NoteProductChanged(ev.Product) {
			noticed++
		}
	}
	if noticed > 0 {
		s.logger.Debug("product change noted", zap.String("product_id", ev.Product.ID), zap.Int("carts", noticed))
	}
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*Aggregate) Outcome) (Outcome, error) {
	var out Outcome
	err := s.with(ctx, sessionID, func(sc *sessionCart) {
		out = fn(sc.agg)
	})
	return out, err
}

// with runs fn against the live cart of sessionID. A cart evicted between lookup
// and lock is loaded again.
func (s *Service) with(ctx context.Context, sessionID string, fn func(*sessionCart)) error {
	for {
		sc, err := s.session(ctx, sessionID)
		if err != nil {
			return err
		}
		if sc.run(fn) {
			return nil
		}
	}
}

func (sc *sessionCart) run(fn func(*sessionCart)) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.evicted.Load() {
		return false
	}
	fn(sc)
	return true
}

// session returns the cached cart or loads it. Loads of one session are
// collapsed into a single store read; a failed read caches nothing.
func (s *Service) session(ctx context.Context, sessionID string) (*sessionCart, error) {
	v, err, _ := s.loads.Do(sessionID, func() (any, error) {
		if sc, ok := s.carts.Get(sessionID); ok {
			// Re-adding restarts the idle clock.
			s.carts.Add(sessionID, sc)
			if !sc.evicted.Load() {
				return sc, nil
			}
		}
		// Expired entries linger until swept; removing one marks it evicted.
		s.carts.Remove(sessionID)

		feed := notify.NewFeed(s.deps.FeedSize)
		logger := s.logger.With(zap.String("session_id", sessionID))
		slot := cartrepo.NewSlot(s.deps.Store, cartrepo.SessionKey(sessionID), logger)
		agg, err := NewAggregate(ctx, slot, notify.Multi(feed, s.deps.Sink), s.deps.Pricing, logger)
		if err != nil {
			logger.Warn("cart load failed", zap.String("key", slot.Key()), zap.Error(err))
			return nil, err
		}
		sc := &sessionCart{agg: agg, feed: feed}
		s.carts.Add(sessionID, sc)
		logger.Debug("cart loaded", zap.String("key", slot.Key()), zap.Int("lines", len(agg.items)))
		return sc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sessionCart), nil
}

// evict runs under the cache lock once a cart leaves memory. It waits for the
// call in flight on that cart so a reload never races an older write.
func (s *Service) evict(sessionID string, sc *sessionCart) {
	sc.mu.Lock()
	sc.evicted.Store(true)
	sc.mu.Unlock()
	s.logger.Debug("cart dropped from memory", zap.String("session_id", sessionID))
}
