// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pitchmatch-workers/internal/common/camunda"
	"pitchmatch-workers/internal/common/config"
	"pitchmatch-workers/internal/common/database"
	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/common/observability"

	// Infrastructure Workers
	br "pitchmatch-workers/internal/workers/infrastructure/build-response"

	// Matching Workers
	rc "pitchmatch-workers/internal/workers/matching/recommend-creators"
	ri "pitchmatch-workers/internal/workers/matching/recommend-investors"
	sm "pitchmatch-workers/internal/workers/matching/score-match"

	// Search Workers
	psq "pitchmatch-workers/internal/workers/search/parse-search-query"
	sp "pitchmatch-workers/internal/workers/search/search-pitches"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	profileTTL := time.Duration(cfg.Matching.ProfileCacheTTL) * time.Second

	// --- Register Workers ---

	// --- 1. Matching Workers (3) ---
	if cfg.Workers[sm.TaskType].Enabled {
		handler := sm.NewHandler(
			&sm.Config{
				CacheTTL: profileTTL,
				Timeout:  config.GetDuration(cfg.Workers[sm.TaskType].Timeout),
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, sm.TaskType, cfg.Workers[sm.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[rc.TaskType].Enabled {
		handler := rc.NewHandler(
			&rc.Config{
				CacheTTL:     profileTTL,
				Timeout:      config.GetDuration(cfg.Workers[rc.TaskType].Timeout),
				DefaultLimit: cfg.Matching.CreatorLimit,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, rc.TaskType, cfg.Workers[rc.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ri.TaskType].Enabled {
		handler := ri.NewHandler(
			&ri.Config{
				CacheTTL:     profileTTL,
				Timeout:      config.GetDuration(cfg.Workers[ri.TaskType].Timeout),
				DefaultLimit: cfg.Matching.InvestorLimit,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, ri.TaskType, cfg.Workers[ri.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Search Workers (2) ---
	if cfg.Workers[psq.TaskType].Enabled {
		handler := psq.NewHandler(
			&psq.Config{
				Timeout: config.GetDuration(cfg.Workers[psq.TaskType].Timeout),
			},
			log,
		)
		startWorker(zeebeClient, psq.TaskType, cfg.Workers[psq.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sp.TaskType].Enabled {
		handler := sp.NewHandler(
			&sp.Config{
				Timeout:      config.GetDuration(cfg.Workers[sp.TaskType].Timeout),
				DefaultLimit: cfg.Search.DefaultLimit,
				AnonymousCap: cfg.Search.AnonymousCap,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, sp.TaskType, cfg.Workers[sp.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Infrastructure Workers (1) ---
	if cfg.Workers[br.TaskType].Enabled {
		handler := br.NewHandler(
			&br.Config{
				RegistryPath: cfg.Registry.Path,
				CacheTTL:     5 * time.Minute,
				AppVersion:   cfg.App.Version,
				Timeout:      config.GetDuration(cfg.Workers[br.TaskType].Timeout),
			},
			log,
		)
		startWorker(zeebeClient, br.TaskType, cfg.Workers[br.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 6 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "ready"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "broker unreachable"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range runningWorkers {
		w.Stop()
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

var runningWorkers []*camunda.CamundaWorker

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.HandlerFunc, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	w := camunda.NewWorker(
		client,
		taskType,
		wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handlerFunc,
		log,
	)
	runningWorkers = append(runningWorkers, w)
}
