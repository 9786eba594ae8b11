package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/freightlink-backend/api/routes"
	"github.com/angelmondragon/freightlink-backend/internal/corridors"
	"github.com/angelmondragon/freightlink-backend/internal/journal"
	"github.com/angelmondragon/freightlink-backend/internal/loads"
	"github.com/angelmondragon/freightlink-backend/internal/repo"
	"github.com/angelmondragon/freightlink-backend/internal/settlement"
	"github.com/angelmondragon/freightlink-backend/internal/wallets"
	"github.com/angelmondragon/freightlink-backend/pkg/config"
	"github.com/angelmondragon/freightlink-backend/pkg/db"
	"github.com/angelmondragon/freightlink-backend/pkg/instance"
	"github.com/angelmondragon/freightlink-backend/pkg/logger"
	"github.com/angelmondragon/freightlink-backend/pkg/maps"
	"github.com/angelmondragon/freightlink-backend/pkg/metrics"
	"github.com/angelmondragon/freightlink-backend/pkg/migrate"
	"github.com/angelmondragon/freightlink-backend/pkg/outbox"
	"github.com/angelmondragon/freightlink-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	var estimator maps.RouteEstimator
	if cfg.Maps.Enabled() {
		mapsClient, err := maps.NewClient(cfg.Maps.APIKey, maps.WithRegion(cfg.Maps.Region), maps.WithTimeout(cfg.Maps.Timeout))
		if err != nil {
			logg.Error(context.Background(), "failed to create maps client", err)
			os.Exit(1)
		}
		estimator = mapsClient
	}

	gdb := dbClient.DB()
	loadRepo := repo.NewLoadRepository(gdb)
	walletRepo := wallets.NewRepository(gdb)
	outboxService := outbox.NewService(outbox.NewRepository(gdb), logg)

	corridorService, err := corridors.NewService(corridors.NewRepository(gdb), loadRepo, dbClient, outboxService, estimator, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create corridor service", err)
		os.Exit(1)
	}

	walletService, err := wallets.NewService(walletRepo, loadRepo, corridorService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	journalService, err := journal.NewService(journal.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create journal service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(settlement.ServiceParams{
		Loads:     loadRepo,
		Wallets:   walletRepo,
		Corridors: corridorService,
		Journal:   journalService,
		Tx:        dbClient,
		Outbox:    outboxService,
		Metrics:   metrics.NewSettlementMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
		Currency:  cfg.Settlement.Currency,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	loadService, err := loads.NewService(loads.ServiceParams{
		Loads:          loadRepo,
		Trucks:         loads.NewTruckRepository(gdb),
		Corridors:      corridorService,
		Wallets:        walletService,
		Settlement:     settlementService,
		Tx:             dbClient,
		Outbox:         outboxService,
		Logger:         logg,
		DeductOnVerify: cfg.FeatureFlags.DeductOnPODVerify,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create load service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.Handler(),
			corridorService,
			walletService,
			settlementService,
			loadService,
			loadRepo,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}
