package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/storefront-fulfillment/internal/ai"
	"github.com/01moynul/storefront-fulfillment/internal/auth"
	"github.com/01moynul/storefront-fulfillment/internal/badges"
	"github.com/01moynul/storefront-fulfillment/internal/cart"
	"github.com/01moynul/storefront-fulfillment/internal/config"
	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/demo"
	"github.com/01moynul/storefront-fulfillment/internal/handlers"
	"github.com/01moynul/storefront-fulfillment/internal/inventory"
	"github.com/01moynul/storefront-fulfillment/internal/logging"
	"github.com/01moynul/storefront-fulfillment/internal/orders"
	"github.com/01moynul/storefront-fulfillment/internal/reviews"
	"github.com/01moynul/storefront-fulfillment/internal/routes"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"github.com/01moynul/storefront-fulfillment/internal/store/memstore"
	"github.com/01moynul/storefront-fulfillment/internal/store/mongostore"
	"github.com/01moynul/storefront-fulfillment/internal/store/mysqlstore"
	"github.com/01moynul/storefront-fulfillment/internal/tickets"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 0. --- Configuration & Logging ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Relational store ---
	var (
		relational store.Store
		mem        *memstore.Store
	)
	switch cfg.Database.Backend {
	case config.BackendMySQL:
		db, err := database.OpenDB(ctx, cfg.Database, logging.Component(logger, "database"))
		if err != nil {
			return err
		}
		defer db.Close()
		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, db, logging.Component(logger, "migrate")); err != nil {
				return err
			}
		}
		relational = mysqlstore.New(db, logging.Component(logger, "mysqlstore"))
	case config.BackendMemory:
		mem = memstore.New()
		relational = mem
		logger.Warn("using in-memory storage; data is lost on restart")
	}

	// 2. --- Review store: MongoDB when configured ---
	var reviewStore store.ReviewStore
	if cfg.Mongo.URI != "" {
		client, err := database.OpenMongo(ctx, cfg.Mongo.URI, logging.Component(logger, "mongo"))
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())

		mongoReviews := mongostore.NewReviewStore(client.Database(cfg.Mongo.Database))
		if err := mongoReviews.EnsureIndexes(ctx); err != nil {
			return err
		}
		reviewStore = mongoReviews
	} else {
		if mem == nil {
			mem = memstore.New()
		}
		reviewStore = mem
		logger.Warn("MONGO_URI not set; reviews are kept in memory")
	}

	// 3. --- Sentiment classifier ---
	var classifier ai.Classifier = ai.NeutralClassifier{}
	if cfg.Gemini.APIKey != "" {
		gemini, err := ai.NewGeminiClassifier(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logging.Component(logger, "sentiment"))
		if err != nil {
			return err
		}
		defer gemini.Close()
		classifier = gemini
	} else {
		logger.Info("GEMINI_API_KEY not set; reviews are labelled neutral")
	}

	// 4. --- Services ---
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	accounts := auth.NewService(relational, tokens, logging.Component(logger, "auth"))
	reader := inventory.NewReader(relational, relational)

	app := &handlers.Handlers{
		Auth:      accounts,
		Tokens:    tokens,
		Products:  relational,
		Orders:    orders.NewQueryService(relational, reader, logging.Component(logger, "orders")),
		Engine:    orders.NewEngine(relational, relational, logging.Component(logger, "orders")),
		Inventory: reader,
		Reviews:   reviews.NewService(reviewStore, relational, classifier, logging.Component(logger, "reviews")),
		Tickets: tickets.NewService(relational, relational,
			tickets.DiskAttachments{Dir: cfg.Uploads.Dir, BaseURL: cfg.Uploads.BaseURL},
			logging.Component(logger, "tickets")),
		Cart:   cart.NewService(relational, relational, logging.Component(logger, "cart")),
		Badges: badges.NewReporter(relational, relational, reviewStore, relational, logging.Component(logger, "badges")),
		Cookie: handlers.SessionCookie{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure},
		Logger: logging.Component(logger, "http"),
	}

	// 5. --- Demo data ---
	if cfg.Database.SeedDemoUsers || cfg.Database.Backend == config.BackendMemory {
		if err := demo.SeedUsers(ctx, accounts, logger); err != nil {
			return err
		}
		app.DemoAccounts = demo.Accounts
	}
	if cfg.Database.Backend == config.BackendMemory {
		if err := demo.SeedCatalog(ctx, relational, logger); err != nil {
			return err
		}
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		CORSOrigin: cfg.Server.CORSOrigin,
		UploadDir:  cfg.Uploads.Dir,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// --- Start Server ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("backend", cfg.Database.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
