package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/logger"
	productrepo "storefront/internal/repository/product"
	catalogsvc "storefront/internal/service/catalog"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to catalog product CSV (id,name,description,price,category,imageUrl,inStock)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(filePath); err != nil {
		fmt.Fprintf(os.Stderr, "importer: %v\n", err)
		os.Exit(1)
	}
}

func run(filePath string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Error("connect db", zap.Error(err))
		return err
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Error("open file", zap.Error(err))
		return err
	}
	defer f.Close()

	catalog := catalogsvc.New(productrepo.NewPostgres(pool, log))
	imp := importer.NewCSVImporter(f, catalog, log)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Error("import failed", zap.Int("imported", count), zap.Error(err))
		return err
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
	return nil
}
