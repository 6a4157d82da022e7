package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	"storefront/internal/seed"
)

// backends holds the storage chosen by CART_BACKEND and CATALOG_BACKEND.
// Session tokens live next to the cart snapshots so both survive the same restarts.
type backends struct {
	carts    cartrepo.Store
	tokens   tokenrepo.Repository
	products productrepo.Repository
	orders   orderrepo.Repository
	ready    map[string]httpserver.ReadinessCheck

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{ready: map[string]httpserver.ReadinessCheck{}}

	var pool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		var err error
		pool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.ready["postgres"] = pool.Ping
	}

	switch cfg.CartBackend {
	case config.BackendMemory:
		b.carts = cartrepo.NewMemory()
		b.tokens = tokenrepo.NewMemory()
	case config.BackendSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { closeQuietly(sqlDB, log) })
		b.ready["sqlite"] = sqlDB.PingContext
		b.carts = cartrepo.NewSQLite(sqlDB)
		b.tokens = tokenrepo.NewSQLite(sqlDB)
	case config.BackendPostgres:
		b.carts = cartrepo.NewPostgres(pool)
		b.tokens = tokenrepo.NewPostgres(pool)
	case config.BackendRedis:
		client, err := db.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { closeRedis(client, log) })
		b.ready["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		b.carts = cartrepo.NewRedis(client, cfg.CartTTL)
		b.tokens = tokenrepo.NewRedis(client)
	default:
		b.Close()
		return nil, fmt.Errorf("unsupported cart backend %q", cfg.CartBackend)
	}

	if cfg.CatalogBackend == config.BackendPostgres {
		b.products = productrepo.NewPostgres(pool, log)
		b.orders = orderrepo.NewPostgres(pool)
	} else {
		b.products = productrepo.NewMemory(seed.Products()...)
		if pool != nil {
			b.orders = orderrepo.NewPostgres(pool)
		} else {
			b.orders = orderrepo.NewMemory()
		}
	}

	log.Info("backends ready",
		zap.String("cart", cfg.CartBackend),
		zap.String("catalog", cfg.CatalogBackend),
	)
	return b, nil
}

func closeQuietly(sqlDB *sql.DB, log *zap.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Warn("close sqlite", zap.Error(err))
	}
}

func closeRedis(client *redis.Client, log *zap.Logger) {
	if err := client.Close(); err != nil {
		log.Warn("close redis", zap.Error(err))
	}
}
