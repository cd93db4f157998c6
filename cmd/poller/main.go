package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/riandyrn/otelchi"

	"github.com/mailbridge/cadence/internal/api"
	"github.com/mailbridge/cadence/internal/config"
	"github.com/mailbridge/cadence/internal/logger"
	"github.com/mailbridge/cadence/internal/metrics"
	"github.com/mailbridge/cadence/internal/middleware"
	"github.com/mailbridge/cadence/internal/poller"
	"github.com/mailbridge/cadence/internal/sentry"
	"github.com/mailbridge/cadence/internal/telemetry"
	"github.com/mailbridge/cadence/internal/trigger"
)

func main() {
	defer sentry.Recover()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env,
			cfg.OtelExporterOTLPEndpoint, parseOTLPHeaders(cfg.OtelExporterOTLPHeaders))
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	}
	if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize poll metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init poll metrics", "error", err)
	}

	// Initialize logger with OTel support
	logger := logger.New(cfg.Env)
	slog.SetDefault(logger)

	// Poll tasks and scheduler
	triggerClient := trigger.NewClient()
	scheduleTask := poller.NewScheduleTask(triggerClient, logger)
	outlookTask := poller.NewOutlookTask(triggerClient, logger)
	scheduler := poller.NewScheduler(scheduleTask, outlookTask, cfg.Poller, logger)

	if cfg.PollingEnabled() {
		scheduler.Start()
	} else {
		slog.Info("Polling disabled, set ENABLE_POLLING=true to enable outside production")
	}

	// Ops endpoints
	apiServer := api.NewServer(cfg, scheduler, []*poller.Task{scheduleTask, outlookTask})

	r := chi.NewRouter()
	r.Use(otelchi.Middleware(cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization"},
	}))
	r.Use(sentry.HTTPMiddleware)

	r.Get("/health", apiServer.HandleHealth)
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.CronSecret))
		r.Get("/status", apiServer.HandleStatus)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting ops server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down poller...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

// parseOTLPHeaders parses the comma-separated key=value form of
// OTEL_EXPORTER_OTLP_HEADERS.
func parseOTLPHeaders(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}
