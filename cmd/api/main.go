package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/gearmart-backend/api/routes"
	"github.com/angelmondragon/gearmart-backend/internal/cart"
	"github.com/angelmondragon/gearmart-backend/internal/catalog"
	"github.com/angelmondragon/gearmart-backend/internal/checkout"
	"github.com/angelmondragon/gearmart-backend/internal/events"
	"github.com/angelmondragon/gearmart-backend/internal/profile"
	"github.com/angelmondragon/gearmart-backend/pkg/config"
	"github.com/angelmondragon/gearmart-backend/pkg/db"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
	"github.com/angelmondragon/gearmart-backend/pkg/metrics"
	"github.com/angelmondragon/gearmart-backend/pkg/migrate"
	"github.com/angelmondragon/gearmart-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	if cfg.Catalog.SeedDemo {
		if err := catalog.SeedDemo(context.Background(), catalogRepo); err != nil {
			logg.Error(context.Background(), "failed to seed demo catalog", err)
			os.Exit(1)
		}
	}

	eventChannel := events.NewChannel(cfg.Events.BufferSize)

	cartStore, err := cart.NewStore(cart.NewRepository(dbClient.DB()), dbClient, eventChannel)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	profileProvider, err := profile.NewConfigProvider(cfg.Profile)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile provider", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	checkoutService, err := checkout.NewService(
		cartStore,
		checkout.NewSimulatedProcessor(cfg.Checkout.PaymentDelay),
		eventChannel,
		checkoutMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			catalogService,
			cartStore,
			checkoutService,
			profileProvider,
			eventChannel,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
