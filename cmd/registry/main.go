// cmd/registry/main.go
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/judzis-sketch/gedimu-registras/internal/act"
	"github.com/judzis-sketch/gedimu-registras/internal/common/config"
	"github.com/judzis-sketch/gedimu-registras/internal/common/database"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/notify"
	"github.com/judzis-sketch/gedimu-registras/internal/search"
	"github.com/judzis-sketch/gedimu-registras/internal/server"
	"github.com/judzis-sketch/gedimu-registras/internal/service"
	"github.com/judzis-sketch/gedimu-registras/internal/signing"
	"github.com/judzis-sketch/gedimu-registras/internal/store"
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting fault registry...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
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
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional) ---
	var indexer service.ActIndexer
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		indexer = search.NewIndexer(esClient.Client, log)
		zapLog.Info("Elasticsearch connected successfully")
	} else {
		zapLog.Info("Elasticsearch disabled, act search indexing is off")
	}

	// --- Document store ---
	documents := store.NewPostgresStore(pg.DB, rdb.Client, log)
	if err := documents.Bootstrap(ctx); err != nil {
		zapLog.Fatal("store bootstrap failed", zap.Error(err))
	}

	faults := store.NewFaultRepository(documents)
	workers := store.NewWorkerRepository(documents)

	// --- Notification dispatcher (optional channels) ---
	var dispatcher service.DraftDispatcher
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		d, err := notify.NewDispatcher(ctx, notify.DispatcherConfig{
			EmailEnabled: cfg.Notifications.Email.Enabled,
			SMSEnabled:   cfg.Notifications.SMS.Enabled,
			FromEmail:    cfg.Notifications.Email.FromEmail,
			AWSRegion:    cfg.Notifications.AWS.Region,
		}, log)
		if err != nil {
			zapLog.Fatal("notification dispatcher init failed", zap.Error(err))
		}
		dispatcher = d
		zapLog.Info("Notification dispatcher initialized")
	} else {
		zapLog.Info("Notification channels disabled, drafts served as compose actions only")
	}

	// --- Core services ---
	compositor := act.NewCompositor(time.Now, log)
	archiver := act.NewArchiver(time.Now, cfg.Archive.OutputDir, log)
	protocol := signing.NewProtocol(faults, workers, compositor, log)

	faultService := service.NewFaultService(faults, workers, protocol, archiver, indexer, dispatcher, log)
	workerService := service.NewWorkerService(workers, log)
	zapLog.Info("Fault registry services initialized")

	var searcher server.ActSearcher
	if idx, ok := indexer.(*search.Indexer); ok {
		searcher = idx
	}
	api := server.NewServer(faultService, workerService, searcher, log)

	// --- API, Health & Metrics Server ---
	srv := &http.Server{Addr: cfg.Server.Address}
	go func() {
		http.Handle("/api/", api.Routes())
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
			if err := pg.Ping(r.Context()); err != nil {
				status = "not ready"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping registry...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Fault registry stopped gracefully")
}
