package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundament-gl/fundament/internal/app"
	"github.com/fundament-gl/fundament/internal/audit"
	jobmetrics "github.com/fundament-gl/fundament/internal/jobs"
	"github.com/fundament-gl/fundament/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)
	auditRepo := audit.NewRepository(pool)

	auditPurge := jobs.NewAuditPurgeJob(auditRepo, logger, metrics)
	integrity := jobs.NewGLIntegrityJob(pool, auditRepo, logger, metrics)

	purgeTask, err := jobs.NewAuditPurgeTask(jobs.AuditPurgePayload{})
	if err != nil {
		logger.Error("build audit purge task", slog.Any("error", err))
		os.Exit(1)
	}
	integrityTask, err := jobs.NewGLIntegrityTask(jobs.GLIntegrityPayload{})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAuditPurge, Handler: auditPurge.Handle},
			{Type: jobs.TaskGLIntegrity, Handler: integrity.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.AuditPurgeCron, Task: purgeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.IntegrityCron, Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
