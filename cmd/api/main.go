package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/shopflow/shopflow-backend/api/routes"
	"github.com/shopflow/shopflow-backend/internal/access"
	"github.com/shopflow/shopflow-backend/internal/discounts"
	"github.com/shopflow/shopflow-backend/internal/inventory"
	"github.com/shopflow/shopflow-backend/internal/keystore"
	"github.com/shopflow/shopflow-backend/internal/products"
	"github.com/shopflow/shopflow-backend/internal/shops"
	"github.com/shopflow/shopflow-backend/pkg/config"
	"github.com/shopflow/shopflow-backend/pkg/logger"
	"github.com/shopflow/shopflow-backend/pkg/metrics"
	mongopkg "github.com/shopflow/shopflow-backend/pkg/mongo"
	"github.com/shopflow/shopflow-backend/pkg/redis"
	"github.com/shopflow/shopflow-backend/pkg/tokens"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongopkg.New(ctx, cfg.Mongo, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap mongo", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	db := mongoClient.Database()
	shopRepo := shops.NewRepository(db)
	keyStore := keystore.NewMongoStore(db)
	productRepo := products.NewRepository(db)
	inventoryRepo := inventory.NewRepository(db)
	discountRepo := discounts.NewRepository(db)

	if err := ensureIndexes(ctx, shopRepo, keyStore, productRepo, discountRepo); err != nil {
		logg.Error(ctx, "failed to ensure indexes", err)
		os.Exit(1)
	}

	issuer, err := tokens.NewIssuer(cfg.Tokens)
	if err != nil {
		logg.Error(ctx, "failed to create token issuer", err)
		os.Exit(1)
	}

	accessService, err := access.NewService(access.ServiceParams{
		ShopRepo:       shopRepo,
		KeyStore:       keyStore,
		Issuer:         issuer,
		PasswordConfig: cfg.Password,
		TokenConfig:    cfg.Tokens,
	})
	if err != nil {
		logg.Error(ctx, "failed to create access service", err)
		os.Exit(1)
	}

	factory, err := products.NewFactory(productRepo, inventoryRepo)
	if err != nil {
		logg.Error(ctx, "failed to create product factory", err)
		os.Exit(1)
	}
	productService, err := products.NewService(factory, productRepo)
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}

	discountService, err := discounts.NewService(discounts.ServiceParams{
		Repository: discountRepo,
		Products:   productService,
	})
	if err != nil {
		logg.Error(ctx, "failed to create discount service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()

	monitor := mongopkg.NewMonitor(mongoClient, logg, cfg.Mongo.MonitorPeriod)
	go monitor.Run(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			Mongo:         mongoClient,
			Redis:         redisClient,
			KeyStore:      keyStore,
			AccessService: accessService,
			Products:      productService,
			Discounts:     discountService,
			Inventory:     inventoryRepo,
			Metrics:       httpMetrics,
		}),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, mongoClient.Close(shutdownCtx))
	if closeErr != nil {
		logg.Error(startCtx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(startCtx, "shutdown complete")
}

type indexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(ctx context.Context, ensurers ...indexEnsurer) error {
	var err error
	for _, e := range ensurers {
		err = multierr.Append(err, e.EnsureIndexes(ctx))
	}
	return err
}
