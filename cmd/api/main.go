package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/httpserver"
	"storefront/internal/logger"
	"storefront/internal/notify"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	ordersvc "storefront/internal/service/order"
	sessionsvc "storefront/internal/service/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stdout"})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		log.Error("open backends", zap.Error(err))
		return err
	}
	defer b.Close()

	calc := cfg.Pricing.Calculator()
	catalog := catalogsvc.New(b.products)
	orders := ordersvc.New(b.orders, catalog, calc, log)
	sessions := sessionsvc.New(b.tokens, cfg.SessionTTL, log)
	carts := cartsvc.New(cartsvc.Deps{
		Store:     b.carts,
		Catalog:   catalog,
		Orders:    orders,
		Pricing:   calc,
		Sink:      notify.NewLogSink(log.Named("notify")),
		Logger:    log,
		FeedSize:  cfg.FeedSize,
		CacheSize: cfg.CartCacheSize,
		IdleTTL:   cfg.CartIdleTTL,
	})
	unsubscribe := catalog.Subscribe(carts.OnProductChanged)
	defer unsubscribe()

	srv, err := httpserver.New(cfg.HTTPAddr, log, httpserver.Deps{
		Sessions:    sessions,
		Catalog:     catalog,
		Carts:       carts,
		Orders:      orders,
		Ready:       b.ready,
		CORSOrigins: cfg.CORSOrigins,
		AdminToken:  cfg.AdminToken,
	})
	if err != nil {
		log.Error("init server", zap.Error(err))
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stopCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case runErr = <-serverErr:
		log.Error("server error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return errors.Join(runErr, err)
	}
	log.Info("server stopped")
	return runErr
}
