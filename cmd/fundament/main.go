package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fundament-gl/fundament/internal/app"
	"github.com/fundament-gl/fundament/internal/audit"
	"github.com/fundament-gl/fundament/internal/ledger/accounts"
	"github.com/fundament-gl/fundament/internal/ledger/funds"
	"github.com/fundament-gl/fundament/internal/ledger/journals"
	"github.com/fundament-gl/fundament/internal/ledger/periods"
	"github.com/fundament-gl/fundament/internal/ledger/reports"
	"github.com/fundament-gl/fundament/internal/observability"
	"github.com/fundament-gl/fundament/internal/org"
	"github.com/fundament-gl/fundament/internal/subsystems"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, report caching disabled", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("close redis", slog.Any("error", err))
		}
	}()

	auditRepo := audit.NewRepository(pool)

	accountsService := accounts.NewService(accounts.NewRepository(pool), auditRepo)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	fundsRepo := funds.NewRepository(pool)
	fundsService := funds.NewService(fundsRepo, auditRepo)
	fundsHandler := funds.NewHandler(logger, fundsService)

	orgService := org.NewService(org.NewRepository(pool), auditRepo)
	orgHandler := org.NewHandler(logger, orgService)

	periodsService := periods.NewService(periods.NewRepository(pool), auditRepo)
	periodsHandler := periods.NewHandler(logger, periodsService)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	go reportCache.ListenForInvalidation(ctx)

	journalsRepo := journals.NewRepository(pool)
	journalsService := journals.NewService(journalsRepo, journals.NewDirectory(pool), periodsService, auditRepo, reportCache)
	journalsHandler := journals.NewHandler(logger, journalsService)

	reportsService := reports.NewService(reports.NewRepository(pool), periodsService, fundsRepo, reportCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

	subsystemsService := subsystems.NewService(subsystems.NewMappingRepository(pool), journalsService, journalsRepo)
	subsystemsHandler := subsystems.NewHandler(logger, subsystemsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("close asynq inspector", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("close job client", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AccountsHandler:   accountsHandler,
		FundsHandler:      fundsHandler,
		OrgHandler:        orgHandler,
		PeriodsHandler:    periodsHandler,
		JournalsHandler:   journalsHandler,
		ReportsHandler:    reportsHandler,
		SubsystemsHandler: subsystemsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
