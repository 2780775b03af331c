package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"credshield/internal/domain/entity"
	pgRepo "credshield/internal/infra/adapter/persistence/postgres"
	"credshield/internal/infra/db"
	"credshield/internal/infra/probe"
	workerPkg "credshield/internal/infra/worker"
	"credshield/internal/observability/metrics"
	"credshield/internal/resilience"
	"credshield/internal/resilience/circuitbreaker"
	"credshield/internal/resilience/retry"
	"credshield/internal/secret"
	healthUC "credshield/internal/usecase/health"
	"credshield/pkg/config"
)

func main() {
	logger := initLogger()
	secrets := initSecrets(logger)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Shut down on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("probe_concurrency", workerConfig.ProbeConcurrency),
		slog.Duration("probe_timeout", workerConfig.ProbeTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	loadRetryKeywords(logger)

	// Per-provider breakers and token buckets, plus a breaker guarding the
	// database pool.
	limits := resilience.NewRegistry(resilience.DefaultPolicies())
	guardedDB := circuitbreaker.NewDBCircuitBreaker(database)

	repo := pgRepo.NewCredentialRepo(guardedDB)
	monitor := &healthUC.Monitor{
		Repo:        repo,
		Secrets:     secrets,
		Probes:      resolveProber,
		Limits:      limits,
		Concurrency: workerConfig.ProbeConcurrency,
	}

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, limits, guardedDB)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	runCronWorker(ctx, logger, monitor, workerConfig, workerMetrics, healthServer, limits, guardedDB, database)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initSecrets loads the encryption key from the environment. The worker
// cannot decrypt stored credentials without it, so a missing or malformed
// key is fatal.
func initSecrets(logger *slog.Logger) *secret.Store {
	store, err := secret.NewStoreFromEnv()
	if err != nil {
		logger.Error("failed to initialize secret store", slog.Any("error", err))
		os.Exit(1)
	}
	return store
}

// initDatabase opens the database connection and applies migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// loadRetryKeywords installs a deployment-specific retry keyword table when
// RETRY_KEYWORDS_FILE is set. Invalid files fall back to the built-in table.
func loadRetryKeywords(logger *slog.Logger) {
	path := os.Getenv("RETRY_KEYWORDS_FILE")
	if path == "" {
		return
	}
	table, err := config.LoadRetryKeywords(path)
	if err != nil {
		logger.Warn("failed to load retry keywords, keeping defaults",
			slog.String("path", path),
			slog.Any("error", err))
		return
	}
	retry.SetKeywordTable(table)
	logger.Info("retry keyword table loaded", slog.String("path", path))
}

// resolveProber adapts the probe factory to the monitor's resolver signature.
func resolveProber(provider entity.Provider) (healthUC.Prober, error) {
	return probe.ForProvider(provider)
}

// runCronWorker starts the cron scheduler, runs the health-check job
// periodically, and blocks until the context is cancelled.
func runCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	monitor *healthUC.Monitor,
	cfg *workerPkg.WorkerConfig,
	workerMetrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
	limits *resilience.Registry,
	guardedDB *circuitbreaker.DBCircuitBreaker,
	database *sql.DB,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runHealthJob(ctx, logger, monitor, cfg, workerMetrics)
		publishGauges(limits, guardedDB, database)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()

	healthServer.SetReady(false)
	cronCtx := c.Stop()
	// Let an in-flight job finish, bounded by its own timeout.
	<-cronCtx.Done()
	logger.Info("worker stopped")
}

// runHealthJob executes a single batch health-check run with timeout and
// error handling.
func runHealthJob(ctx context.Context, logger *slog.Logger, monitor *healthUC.Monitor, cfg *workerPkg.WorkerConfig, workerMetrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	logger.Info("health check run started")

	jobCtx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
	defer cancel()

	summary, err := monitor.HealthCheckAll(jobCtx, nil)
	if err != nil {
		logger.Error("health check run failed", slog.Any("error", err))
		workerMetrics.RecordJobRun("failure")
		workerMetrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	workerMetrics.RecordJobRun("success")
	workerMetrics.RecordJobDuration(time.Since(startTime).Seconds())
	workerMetrics.RecordCredentialsChecked(summary.Total)
	workerMetrics.RecordLastSuccess()

	logger.Info("health check run completed",
		slog.Int("total", summary.Total),
		slog.Int("healthy", summary.Healthy),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", summary.Duration),
	)
}

// publishGauges refreshes the breaker-state and connection-pool gauges after
// each run.
func publishGauges(limits *resilience.Registry, guardedDB *circuitbreaker.DBCircuitBreaker, database *sql.DB) {
	for _, provider := range entity.Providers() {
		name := string(provider)
		metrics.UpdateBreakerOpen(name, limits.Breaker(name).IsOpen())
	}
	metrics.UpdateBreakerOpen("database", guardedDB.IsOpen())

	stats := database.Stats()
	metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
}
