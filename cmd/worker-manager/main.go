// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	awsclient "immigration-workers/internal/common/aws"
	"immigration-workers/internal/common/camunda"
	"immigration-workers/internal/common/config"
	"immigration-workers/internal/common/database"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/common/observability"
	"immigration-workers/internal/crs"
	"immigration-workers/internal/cutoff"
	"immigration-workers/pkg/registry"

	ccs "immigration-workers/internal/workers/immigration/calculate-crs-score"
	ncr "immigration-workers/internal/workers/immigration/notify-crs-result"
	rca "immigration-workers/internal/workers/immigration/record-crs-assessment"
	rcc "immigration-workers/internal/workers/immigration/refresh-crs-cutoff"
	sip "immigration-workers/internal/workers/immigration/search-immigration-programs"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]interface{}{"error": err})
	logger.Sync(log)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewFromOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	log.Info("starting worker manager", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		fatal(log, "zeebe client failed after retries", err)
	}
	defer zeebe.Close()
	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fatal(log, "postgres config invalid", err)
	}
	defer pg.Close()
	if err := retryWithBackoff(ctx, func() error { return pg.Ping(ctx) }, 15, 2*time.Second, log, "PostgreSQL connection"); err != nil {
		fatal(log, "postgres failed after retries", err)
	}
	if cfg.Database.Postgres.RunMigrations {
		if err := database.Migrate(ctx, pg.DB); err != nil {
			fatal(log, "migrations failed", err)
		}
		version, _ := database.MigrationVersion(ctx, pg.DB)
		log.Info("migrations applied", map[string]interface{}{"version": version})
	}

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := retryWithBackoff(ctx, func() error { return rdb.Ping(ctx) }, 10, 2*time.Second, log, "Redis connection"); err != nil {
		fatal(log, "redis failed after retries", err)
	}

	// --- Elasticsearch ---
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fatal(log, "elasticsearch config invalid", err)
	}
	if err := retryWithBackoff(ctx, func() error { return es.Ping(ctx) }, 15, 2*time.Second, log, "Elasticsearch connection"); err != nil {
		fatal(log, "elasticsearch failed after retries", err)
	}
	log.Info("datastores connected", nil)

	// --- Scoring engine and cutoff store ---
	catalog, err := registry.LoadCatalog(cfg.Scoring.CatalogPath)
	if err != nil {
		fatal(log, "program catalog load failed", err)
	}
	engine := crs.NewEngine(
		crs.WithCatalog(catalog),
		crs.WithNearMissBand(cfg.Scoring.NearMissBand),
		crs.WithTopPrograms(cfg.Scoring.TopPrograms),
		crs.WithUnknownValuePolicy(crs.UnknownValuePolicy(cfg.Scoring.UnknownValuePolicy)),
	)

	store := cutoff.NewStore(pg.DB, rdb.Client, cutoff.StoreConfig{
		DrawType:    cfg.Draws.CutoffDrawType,
		CacheTTL:    config.GetDuration(cfg.Draws.CacheTTL),
		RecentLimit: cfg.Draws.RecentLimit,
	}, log)
	feed := cutoff.NewFeedClient(cfg.Draws.FeedURL, config.GetDuration(cfg.Draws.Timeout), log)
	refresher := cutoff.NewRefresher(feed, store, cfg.Draws.CutoffDrawType, log)

	// --- Notification channels ---
	var (
		emailSender ncr.EmailSender
		smsSender   ncr.SMSSender
	)
	if cfg.Notifications.Email.Enabled {
		sesClient, err := awsclient.NewSESClient(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.Email.FromEmail)
		if err != nil {
			fatal(log, "ses client init failed", err)
		}
		emailSender = sesClient
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := awsclient.NewSNSClient(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.SMS.SenderID)
		if err != nil {
			fatal(log, "sns client init failed", err)
		}
		smsSender = snsClient
	}

	// --- Workers ---
	workers := camunda.NewRegistry(zeebe.GetClient(), log)
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	{
		handler := ccs.NewHandler(&ccs.Config{Timeout: timeout(ccs.TaskType), IncludeTrends: true}, engine, store, obs, log)
		workers.Start(ccs.TaskType, config.GetWorkerConfig(cfg, ccs.TaskType), handler.Handle)
	}
	{
		handler := rcc.NewHandler(&rcc.Config{Timeout: timeout(rcc.TaskType)}, refresher, log)
		workers.Start(rcc.TaskType, config.GetWorkerConfig(cfg, rcc.TaskType), handler.Handle)
	}
	{
		handler := rca.NewHandler(&rca.Config{Timeout: timeout(rca.TaskType)}, pg.DB, log)
		workers.Start(rca.TaskType, config.GetWorkerConfig(cfg, rca.TaskType), handler.Handle)
	}
	{
		handler := sip.NewHandler(&sip.Config{Timeout: timeout(sip.TaskType), Index: cfg.Search.ProgramsIndex}, es.Client, log)
		workers.Start(sip.TaskType, config.GetWorkerConfig(cfg, sip.TaskType), handler.Handle)
	}
	{
		handler := ncr.NewHandler(&ncr.Config{
			Timeout:      timeout(ncr.TaskType),
			EmailEnabled: cfg.Notifications.Email.Enabled,
			SMSEnabled:   cfg.Notifications.SMS.Enabled,
		}, pg.DB, emailSender, smsSender, log)
		workers.Start(ncr.TaskType, config.GetWorkerConfig(cfg, ncr.TaskType), handler.Handle)
	}
	log.Info("workers registered", map[string]interface{}{"taskTypes": workers.TaskTypes()})

	// --- Background cutoff refresh ---
	refreshDone := make(chan struct{})
	if interval := config.GetDuration(cfg.Draws.RefreshInterval); interval > 0 {
		go func() {
			defer close(refreshDone)
			refresher.Run(ctx, interval)
		}()
		log.Info("cutoff refresher started", map[string]interface{}{"interval": interval.String()})
	} else {
		close(refreshDone)
	}

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newMux(pg, rdb, es),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	<-refreshDone
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("health/metrics server shutdown failed", map[string]interface{}{"error": err})
	}

	log.Info("worker manager stopped gracefully", nil)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func newMux(deps ...pinger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, d := range deps {
			if err := d.Ping(ctx); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
