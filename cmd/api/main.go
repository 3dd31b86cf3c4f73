package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/priceworks/discount-engine/api/routes"
	"github.com/priceworks/discount-engine/internal/pricing"
	"github.com/priceworks/discount-engine/internal/rules"
	"github.com/priceworks/discount-engine/internal/settings"
	"github.com/priceworks/discount-engine/internal/usage"
	"github.com/priceworks/discount-engine/pkg/config"
	"github.com/priceworks/discount-engine/pkg/db"
	"github.com/priceworks/discount-engine/pkg/logger"
	"github.com/priceworks/discount-engine/pkg/metrics"
	"github.com/priceworks/discount-engine/pkg/migrate"
	"github.com/priceworks/discount-engine/pkg/redis"
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

	rulesRepo := rules.NewRepository(dbClient.DB())

	rulesService, err := rules.NewService(rulesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rules service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(rulesService, settingsService, logg, pricing.Options{
		EnforceUsageLimits: cfg.FeatureFlags.EnforceUsageLimits,
		Metrics:            metrics.NewCalculationMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	guard, err := usage.NewGuard(redisClient, cfg.Usage.IdempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create usage guard", err)
		os.Exit(1)
	}

	usageService, err := usage.NewService(rulesRepo, guard, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create usage service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, rulesService, settingsService, pricingService, usageService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
