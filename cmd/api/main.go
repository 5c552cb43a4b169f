package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bedtex/dispatch-backend/api/routes"
	"github.com/bedtex/dispatch-backend/internal/confirmations"
	"github.com/bedtex/dispatch-backend/internal/customers"
	"github.com/bedtex/dispatch-backend/internal/orders"
	"github.com/bedtex/dispatch-backend/internal/reconciliation"
	"github.com/bedtex/dispatch-backend/internal/reports"
	"github.com/bedtex/dispatch-backend/internal/shortages"
	"github.com/bedtex/dispatch-backend/internal/vehicles"
	"github.com/bedtex/dispatch-backend/pkg/config"
	"github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/logger"
	"github.com/bedtex/dispatch-backend/pkg/migrate"
	"github.com/bedtex/dispatch-backend/pkg/outbox"
	"github.com/bedtex/dispatch-backend/pkg/redis"
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

	svcs, err := buildServices(dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, svcs),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(dbClient *db.Client, logg *logger.Logger) (routes.Services, error) {
	conn := dbClient.DB()

	events := outbox.NewService(outbox.NewRepository(conn), logg)

	orderRepo := orders.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)
	vehicleRepo := vehicles.NewRepository(conn)

	orderService, err := orders.NewService(orderRepo, dbClient, customerRepo, vehicleRepo, events)
	if err != nil {
		return routes.Services{}, err
	}

	vehicleService, err := vehicles.NewService(vehicleRepo, dbClient, orderRepo, events)
	if err != nil {
		return routes.Services{}, err
	}

	confirmationService, err := confirmations.NewService(confirmations.NewRepository(conn), dbClient, events)
	if err != nil {
		return routes.Services{}, err
	}

	reconciliationService, err := reconciliation.NewService(reconciliation.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	reportService, err := reports.NewService(reconciliationService)
	if err != nil {
		return routes.Services{}, err
	}

	shortageService, err := shortages.NewService(shortages.NewRepository(conn), dbClient, events)
	if err != nil {
		return routes.Services{}, err
	}

	customerService, err := customers.NewService(customerRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Orders:         orderService,
		Vehicles:       vehicleService,
		Confirmations:  confirmationService,
		Reconciliation: reconciliationService,
		Reports:        reportService,
		Shortages:      shortageService,
		Customers:      customerService,
	}, nil
}
