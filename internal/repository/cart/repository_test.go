package cart

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/db"
	"storefront/internal/domain"
)

type failingStore struct {
	getErr error
	putErr error
}

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.getErr }
func (f failingStore) Put(context.Context, string, []byte) error   { return f.putErr }

// ctxCheckingStore fails like a real backend when handed a cancelled context.
type ctxCheckingStore struct {
	Store
}

func (s ctxCheckingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, key)
}

func (s ctxCheckingStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Put(ctx, key, value)
}

func TestSlotMissingKeyIsEmpty(t *testing.T) {
	slot := NewSlot(NewMemory(), SessionKey("s1"), nil)
	items, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSlotRoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot(NewMemory(), SessionKey("s1"), nil)
	items := sampleItems()

	require.NoError(t, slot.Save(ctx, items))
	got, err := slot.Load(ctx)
	require.NoError(t, err)

	require.Len(t, got, len(items))
	for i := range items {
		assert.Equal(t, items[i].Product.ID, got[i].Product.ID)
		assert.True(t, items[i].Product.Price.Equal(got[i].Product.Price))
		assert.Equal(t, items[i].Quantity, got[i].Quantity)
	}
}

func TestSlotCorruptValueIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Put(ctx, "cart:s1", []byte("definitely not json")))

	items, err := NewSlot(store, "cart:s1", nil).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSlotReadErrorIsReturned(t *testing.T) {
	gone := errors.New("disk gone")
	slot := NewSlot(failingStore{getErr: gone}, "cart:s1", nil)

	items, err := slot.Load(context.Background())
	assert.Nil(t, items)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.ErrorIs(t, err, gone)
}

func TestSlotIgnoresCallerCancellation(t *testing.T) {
	store := NewMemory()
	slot := NewSlot(ctxCheckingStore{Store: store}, "cart:s1", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, slot.Save(ctx, sampleItems()))
	items, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, len(sampleItems()))
}

func TestSlotSaveSurfacesWriteError(t *testing.T) {
	boom := errors.New("disk full")
	slot := NewSlot(failingStore{putErr: boom}, "cart:s1", nil)
	assert.ErrorIs(t, slot.Save(context.Background(), sampleItems()), boom)
}

func TestSlotSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot(NewMemory(), "cart:s1", nil)
	require.NoError(t, slot.Save(ctx, sampleItems()))
	require.NoError(t, slot.Save(ctx, sampleItems()[:1]))

	items, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	store := NewSQLite(sqlDB)
	_, err = store.Get(ctx, "cart:missing")
	require.Error(t, err)

	slot := NewSlot(store, SessionKey("s1"), nil)
	require.NoError(t, slot.Save(ctx, sampleItems()))
	require.NoError(t, slot.Save(ctx, sampleItems()[1:]))

	got, err := slot.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p-1", got[0].Product.ID)
	assert.Equal(t, 2, got[0].Quantity)
}
