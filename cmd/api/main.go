package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/numdinkushi/vunalet-backend/api/routes"
	"github.com/numdinkushi/vunalet-backend/internal/assignment"
	"github.com/numdinkushi/vunalet-backend/internal/deliveries"
	"github.com/numdinkushi/vunalet-backend/internal/dispatchers"
	"github.com/numdinkushi/vunalet-backend/internal/notifications"
	"github.com/numdinkushi/vunalet-backend/internal/orders"
	"github.com/numdinkushi/vunalet-backend/pkg/config"
	"github.com/numdinkushi/vunalet-backend/pkg/db"
	"github.com/numdinkushi/vunalet-backend/pkg/logger"
	"github.com/numdinkushi/vunalet-backend/pkg/metrics"
	"github.com/numdinkushi/vunalet-backend/pkg/migrate"
	"github.com/numdinkushi/vunalet-backend/pkg/redis"
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

	orderRepo := orders.NewRepository(dbClient.DB())
	dispatcherRepo := dispatchers.NewRepository(dbClient.DB())
	deliveryRepo := deliveries.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	assignmentMetrics := metrics.NewAssignmentMetrics(prometheus.DefaultRegisterer)

	ordersService := orders.NewService(orderRepo, dbClient, logg, cfg.Assignment.ClaimWindow)
	claimService := assignment.NewClaimService(
		orderRepo,
		dispatcherRepo,
		deliveryRepo,
		notificationRepo,
		dbClient,
		logg,
		assignmentMetrics,
	)
	notificationsService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, ordersService, claimService, notificationsService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
