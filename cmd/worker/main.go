package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/suncore-erp/suncore/internal/app"
	"github.com/suncore-erp/suncore/internal/contracts"
	"github.com/suncore-erp/suncore/internal/devices"
	"github.com/suncore-erp/suncore/internal/platform/cache"
	"github.com/suncore-erp/suncore/internal/platform/db"
	"github.com/suncore-erp/suncore/internal/shared"
	"github.com/suncore-erp/suncore/internal/stats"
	"github.com/suncore-erp/suncore/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	devicesRepo := devices.NewRepository(pool)
	tokenGenerator := devices.NewTokenGenerator(cfg.DeviceTokenSecret)
	devicesService := devices.NewService(devicesRepo, tokenGenerator, auditLogger)

	contractsRepo := contracts.NewRepository(pool)
	contractsService := contracts.NewService(contractsRepo, auditLogger, logger)

	statsService := stats.NewService(stats.NewSQLSource(pool), redisClient, cfg.StatsCacheTTL)

	sweepJob := jobs.NewTokenExpirySweepJob(devicesService, logger)
	scanJob := jobs.NewContractOverdueScanJob(contractsService, logger)
	warmupJob := jobs.NewStatsWarmupJob(statsService, logger)

	sweepTask, err := jobs.NewTokenExpirySweepTask(jobs.TokenExpirySweepPayload{GraceMinutes: 5})
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}
	scanTask, err := jobs.NewContractOverdueScanTask()
	if err != nil {
		logger.Error("build scan task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewStatsWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeTokenExpirySweep, Handler: sweepJob.Handle},
			{Type: jobs.TaskTypeContractOverdueScan, Handler: scanJob.Handle},
			{Type: jobs.TaskTypeStatsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: scanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/5 * * * *", Task: warmupTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
