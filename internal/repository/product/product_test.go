package product

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestMemory_UpsertKeepsOrderAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(
		domain.Product{ID: "a", Name: "A", Price: decimal.RequireFromString("1.00")},
		domain.Product{ID: "b", Name: "B", Price: decimal.RequireFromString("2.00")},
	)
	before, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, domain.Product{ID: "a", Name: "A2", Price: decimal.RequireFromString("1.50")})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A2", list[0].Name)
	assert.Equal(t, before.CreatedAt, list[0].CreatedAt)

	_, err = repo.GetByID(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_UpsertListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	_, err := pool.Exec(ctx, `TRUNCATE order_lines, orders, products`)
	require.NoError(t, err)

	repo := NewPostgres(pool, nil)
	inStock := false
	_, err = repo.Upsert(ctx, domain.Product{
		ID:       "p1",
		Name:     "Prod 1",
		Price:    decimal.RequireFromString("3.99"),
		Category: "candy",
		InStock:  &inStock,
	})
	require.NoError(t, err)

	updated, err := repo.Upsert(ctx, domain.Product{
		ID:          "p1",
		Name:        "Prod 1 updated",
		Description: "new desc",
		Price:       decimal.RequireFromString("4.25"),
		Category:    "candy",
	})
	require.NoError(t, err)
	assert.Equal(t, "Prod 1 updated", updated.Name)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("4.25")))
	assert.Nil(t, got.InStock)
	assert.Equal(t, "new desc", got.Description)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}
