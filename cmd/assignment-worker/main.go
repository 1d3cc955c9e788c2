package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/numdinkushi/vunalet-backend/internal/assignment"
	"github.com/numdinkushi/vunalet-backend/internal/cron"
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

const lockKeyFormat = "vunalet:assignment-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "assignment-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "assignment-worker"

	logg = logger.New(logger.Options{
		ServiceName: "assignment-worker",
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

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	assignmentMetrics := metrics.NewAssignmentMetrics(prometheus.DefaultRegisterer)

	engine := assignment.NewEngine(
		orders.NewRepository(dbClient.DB()),
		dispatchers.NewRepository(dbClient.DB()),
		deliveries.NewRepository(dbClient.DB()),
		notifications.NewRepository(dbClient.DB()),
		dbClient,
		logg,
		assignmentMetrics,
		cfg.Assignment,
	)

	job, err := cron.NewAssignmentJob(engine, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:       logg,
		Registry:     cron.NewRegistry(job),
		Lock:         lock,
		Metrics:      jobMetrics,
		Interval:     cfg.Assignment.SweepInterval,
		PeakInterval: cfg.Assignment.PeakSweepInterval,
		InPeak: func(t time.Time) bool {
			return cfg.Assignment.InPeakHours(t.Hour())
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting assignment worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "assignment worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "assignment worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
