// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"aid-eligibility-workers/internal/common/camunda"
	"aid-eligibility-workers/internal/common/config"
	"aid-eligibility-workers/internal/common/database"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/common/metrics"
	"aid-eligibility-workers/internal/common/observability"
	"aid-eligibility-workers/internal/engine"
	"aid-eligibility-workers/internal/store"

	ae "aid-eligibility-workers/internal/workers/eligibility/analyze-eligibility"
	va "aid-eligibility-workers/internal/workers/eligibility/validate-answers"
	cec "aid-eligibility-workers/internal/workers/interview/check-early-completion"
	prevq "aid-eligibility-workers/internal/workers/interview/previous-question"
	si "aid-eligibility-workers/internal/workers/interview/start-interview"
	sa "aid-eligibility-workers/internal/workers/interview/submit-answer"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("catalogSource", cfg.Catalog.Source),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Questionnaire store ---
	repo, closeStore := buildRepository(ctx, cfg, log, zapLog)
	defer closeStore()

	loader := store.NewLoader(repo, store.LoaderConfig{
		Source:         cfg.Catalog.Source,
		Questionnaire:  cfg.Catalog.Questionnaire,
		ReloadInterval: cfg.Catalog.ReloadIntervalDuration(),
	}, log, engine.OptionsFromConfig(cfg.Engine, log,
		engine.WithEvaluationFailureHook(metrics.RecordExpressionFailure),
		engine.WithTransitionHook(metrics.RecordTransition),
	)...)

	err = retryWithBackoff(func() error {
		_, err := loader.Engine(ctx)
		return err
	}, 5, 2*time.Second, zapLog, "Questionnaire load")
	if err != nil {
		zapLog.Fatal("questionnaire could not be loaded", zap.Error(err))
	}

	// --- Workers ---
	workers := startWorkers(cfg, zeebe, loader, obs, log)
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           healthMux(zeebe, loader),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// buildRepository connects the configured questionnaire source and, when a cache
// TTL is set, puts Redis in front of it.
func buildRepository(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (store.Repository, func()) {
	var (
		repo    store.Repository
		closers []func() error
	)

	switch cfg.Catalog.Source {
	case config.CatalogSourceFile:
		repo = store.NewFileRepository(cfg.Catalog.QuestionsFile, cfg.Catalog.RulesFile)
		zapLog.Info("Questionnaire files configured",
			zap.String("questions", cfg.Catalog.QuestionsFile),
			zap.String("rules", cfg.Catalog.RulesFile),
		)
	default:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		closers = append(closers, pg.Close)
		repo = store.NewPostgresRepository(pg.GetDB())
		zapLog.Info("PostgreSQL connected successfully")
	}

	if ttl := cfg.Catalog.CacheTTLDuration(); ttl > 0 {
		var redis *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		closers = append(closers, redis.Close)
		repo = store.NewCachedRepository(repo, redis, ttl, log)
		zapLog.Info("Redis connected successfully", zap.Duration("cacheTTL", ttl))
	}

	return repo, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				zapLog.Warn("Close failed", zap.Error(err))
			}
		}
	}
}

func startWorkers(
	cfg *config.Config,
	zeebe *camunda.Client,
	engines engine.Provider,
	obs *observability.Observability,
	log logger.Logger,
) []*camunda.CamundaWorker {
	var workers []*camunda.CamundaWorker

	start := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			log.Info("Worker disabled", map[string]interface{}{"taskType": taskType})
			return
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      taskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handler, obs, log))
	}

	start(si.TaskType, si.NewHandler(si.FromWorkerConfig(config.GetWorkerConfig(cfg, si.TaskType)), engines, obs, log))
	start(sa.TaskType, sa.NewHandler(sa.FromWorkerConfig(config.GetWorkerConfig(cfg, sa.TaskType)), engines, obs, log))
	start(prevq.TaskType, prevq.NewHandler(prevq.FromWorkerConfig(config.GetWorkerConfig(cfg, prevq.TaskType)), engines, log))
	start(cec.TaskType, cec.NewHandler(cec.FromWorkerConfig(config.GetWorkerConfig(cfg, cec.TaskType)), engines, log))
	start(va.TaskType, va.NewHandler(va.FromWorkerConfig(config.GetWorkerConfig(cfg, va.TaskType)), engines, log))
	start(ae.TaskType, ae.NewHandler(ae.FromWorkerConfig(config.GetWorkerConfig(cfg, ae.TaskType)), engines, log))

	return workers
}

func healthMux(zeebe *camunda.Client, loader *store.Loader) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !loader.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, "not_ready", "questionnaire not loaded")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := zeebe.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not_ready", err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status, reason string) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if reason != "" {
		body["reason"] = reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
