package cart

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/service/catalog"
	ordersvc "storefront/internal/service/order"
)

func newTestService(t *testing.T) (*Service, *catalog.Service, cartrepo.Store) {
	t.Helper()
	store := cartrepo.NewMemory()
	svc, products := newServiceOver(t, store, Deps{})
	return svc, products, store
}

// newServiceOver builds a Service on store, as a fresh process would.
func newServiceOver(t *testing.T, store cartrepo.Store, deps Deps) (*Service, *catalog.Service) {
	t.Helper()
	products := catalog.New(productrepo.NewMemory(
		product("bar", "3.99"),
		product("gum", "4.99"),
	))
	deps.Store = store
	deps.Catalog = products
	deps.Orders = ordersvc.New(orderrepo.NewMemory(), products, pricing.Default(), nil)
	deps.Pricing = pricing.Default()
	svc := New(deps)
	products.Subscribe(svc.OnProductChanged)
	return svc, products
}

// countingStore counts reads and fails the next failGets of them.
type countingStore struct {
	cartrepo.Store

	mu       sync.Mutex
	gets     int
	failGets int
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	s.gets++
	fail := s.failGets > 0
	if fail {
		s.failGets--
	}
	s.mu.Unlock()
	if fail {
		return nil, errors.New("connection refused")
	}
	return s.Store.Get(ctx, key)
}

func (s *countingStore) reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func snapshotOf(t *testing.T, svc *Service, sessionID string) Snapshot {
	t.Helper()
	snap, err := svc.Snapshot(context.Background(), sessionID)
	require.NoError(t, err)
	return snap
}

func notificationsOf(t *testing.T, svc *Service, sessionID string) []notify.Notification {
	t.Helper()
	items, err := svc.Notifications(context.Background(), sessionID)
	require.NoError(t, err)
	return items
}

func shipTo() domain.ShippingDetails {
	return domain.ShippingDetails{
		Name: "Ada", Email: "ada@example.com", Address: "1 Loop", City: "Paris", PostalCode: "75001", Country: "FR",
	}
}

func TestServiceKeepsSessionsApart(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.AddProduct(ctx, "s1", "bar")
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "s2", "gum")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"bar": 1}, quantities(snapshotOf(t, svc, "s1")))
	assert.Equal(t, map[string]int{"gum": 1}, quantities(snapshotOf(t, svc, "s2")))
	assert.Len(t, notificationsOf(t, svc, "s1"), 1)
}

func TestServiceAddUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AddProduct(context.Background(), "s1", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, notificationsOf(t, svc, "s1"))
}

func TestServicePersistsUnderSessionKey(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(t)
	_, err := svc.AddProduct(ctx, "s1", "bar")
	require.NoError(t, err)

	items, err := cartrepo.NewSlot(store, cartrepo.SessionKey("s1"), nil).Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bar", items[0].Product.ID)
}

func TestServiceCheckout(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, err := svc.AddProduct(ctx, "s1", "bar")
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, "s1", "bar", 2)
	require.NoError(t, err)

	order, out, err := svc.Checkout(ctx, "s1", shipTo())
	require.NoError(t, err)
	assert.Equal(t, "s1", order.SessionID)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("7.98")))
	assert.Empty(t, out.Cart.Items)
	assert.Empty(t, snapshotOf(t, svc, "s1").Items)
}

func TestServiceCheckoutFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, err := svc.AddProduct(ctx, "s1", "bar")
	require.NoError(t, err)

	bad := shipTo()
	bad.Email = ""
	_, _, err = svc.Checkout(ctx, "s1", bad)
	assert.ErrorIs(t, err, ordersvc.ErrInvalidShipping)
	assert.Len(t, snapshotOf(t, svc, "s1").Items, 1)
}

func TestServiceNotifiesOnCatalogChange(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newTestService(t)
	_, err := svc.AddProduct(ctx, "s1", "bar")
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "s2", "gum")
	require.NoError(t, err)

	_, err = products.Upsert(ctx, product("bar", "5.00"))
	require.NoError(t, err)

	feed := notificationsOf(t, svc, "s1")
	require.Len(t, feed, 2)
	assert.Equal(t, notify.KindProductUpdated, feed[1].Kind)
	assert.Len(t, notificationsOf(t, svc, "s2"), 1)
	assert.True(t, snapshotOf(t, svc, "s1").Items[0].Product.Price.Equal(decimal.RequireFromString("3.99")))
}

func TestServiceRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, err := svc.AddProduct(ctx, "s1", "bar")
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "s1", "gum")
	require.NoError(t, err)

	out, err := svc.Remove(ctx, "s1", "bar")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"gum": 1}, quantities(out.Cart))
	out, err = svc.Clear(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, out.Cart.Items)
}

func TestServiceFailedReadKeepsSavedCart(t *testing.T) {
	ctx := context.Background()
	mem := cartrepo.NewMemory()

	first, _ := newServiceOver(t, mem, Deps{})
	for i := 0; i < 3; i++ {
		_, err := first.AddProduct(ctx, "s1", "bar")
		require.NoError(t, err)
	}

	flaky := &countingStore{Store: mem, failGets: 1}
	second, _ := newServiceOver(t, flaky, Deps{})
	_, err := second.Snapshot(ctx, "s1")
	require.ErrorIs(t, err, domain.ErrUnavailable)
	_, err = second.AddProduct(ctx, "s1", "gum")
	require.NoError(t, err, "the failed read must not be cached")

	third, _ := newServiceOver(t, mem, Deps{})
	assert.Equal(t, map[string]int{"bar": 3, "gum": 1}, quantities(snapshotOf(t, third, "s1")))
}

func TestServiceCancelledRequestStillLoads(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "carts.db"))
	require.NoError(t, err)
	defer sqlDB.Close()
	store := cartrepo.NewSQLite(sqlDB)

	first, _ := newServiceOver(t, store, Deps{})
	for i := 0; i < 3; i++ {
		_, err := first.AddProduct(ctx, "s1", "bar")
		require.NoError(t, err)
	}

	second, _ := newServiceOver(t, store, Deps{})
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	snap, err := second.Snapshot(cancelled, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"bar": 3}, quantities(snap))

	_, err = second.AddProduct(ctx, "s1", "gum")
	require.NoError(t, err)
	third, _ := newServiceOver(t, store, Deps{})
	assert.Equal(t, map[string]int{"bar": 3, "gum": 1}, quantities(snapshotOf(t, third, "s1")))
}

func TestServiceEvictsLeastRecentCart(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: cartrepo.NewMemory()}
	svc, _ := newServiceOver(t, store, Deps{CacheSize: 1})

	_, err := svc.AddProduct(ctx, "s1", "bar")
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "s1", "bar")
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads())

	_, err = svc.AddProduct(ctx, "s2", "gum")
	require.NoError(t, err)
	assert.Equal(t, 2, store.reads())

	assert.Equal(t, map[string]int{"bar": 2}, quantities(snapshotOf(t, svc, "s1")))
	assert.Equal(t, 3, store.reads(), "s1 is read back from the store")
	assert.Equal(t, map[string]int{"gum": 1}, quantities(snapshotOf(t, svc, "s2")))
}

func TestServiceDropsIdleCart(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: cartrepo.NewMemory()}
	svc, _ := newServiceOver(t, store, Deps{IdleTTL: 50 * time.Millisecond})

	_, err := svc.AddProduct(ctx, "s1", "bar")
	require.NoError(t, err)
	snapshotOf(t, svc, "s1")
	assert.Equal(t, 1, store.reads())

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, map[string]int{"bar": 1}, quantities(snapshotOf(t, svc, "s1")))
	assert.Equal(t, 2, store.reads())
}

func TestServiceConcurrentFirstUseLoadsOnce(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: cartrepo.NewMemory()}
	svc, _ := newServiceOver(t, store, Deps{CacheSize: 10})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddProduct(ctx, "s1", "bar")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, quantities(snapshotOf(t, svc, "s1"))["bar"])
	assert.Equal(t, 1, store.reads())
}
