// Command loadproducts imports the catalog CSV into the MySQL product table.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/01moynul/storefront-fulfillment/internal/catalog"
	"github.com/01moynul/storefront-fulfillment/internal/config"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/logging"
	"github.com/01moynul/storefront-fulfillment/internal/store/mysqlstore"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	csvPath := flag.String("csv-path", "data/Products.csv", "path to the catalog CSV export")
	clearExisting := flag.Bool("clear-existing", false, "clear the catalog before loading")
	defaultStock := flag.Int("default-stock", 50, "stock quantity given to every imported product")
	migrate := flag.Bool("migrate", false, "apply schema migrations first")
	flag.Parse()

	if err := run(*csvPath, *migrate, catalog.Options{ClearExisting: *clearExisting, DefaultStock: *defaultStock}); err != nil {
		fmt.Fprintf(os.Stderr, "loadproducts: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string, migrate bool, opts catalog.Options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.Backend != config.BackendMySQL {
		return fmt.Errorf("STORAGE_BACKEND must be %q to load products, got %q", config.BackendMySQL, cfg.Database.Backend)
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("CSV file not found: %w", err)
	}
	defer file.Close()

	ctx := context.Background()
	db, err := database.OpenDB(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := database.Migrate(ctx, db, logger); err != nil {
			return err
		}
	}

	loader := catalog.NewLoader(mysqlstore.New(db, logger), logging.Component(logger, "catalog"))
	result, err := loader.Load(ctx, file, opts)
	if err != nil {
		return err
	}
	logger.Info("done", zap.String("csv", csvPath), zap.Int("loaded", result.Loaded), zap.Int("skipped", result.Skipped))
	return nil
}
