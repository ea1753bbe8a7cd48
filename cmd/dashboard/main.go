// Package main is the entry point of the SkillSpring learner dashboard
// service. It keeps per-learner dashboard state fresh against the backend
// API on a fixed cadence, degrades each feed independently when the
// backend fails, and serves the assembled state over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skillspring-hub/skillspring-dashboard/config"
	"github.com/skillspring-hub/skillspring-dashboard/internal/dashboard"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/external/backend"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/messaging"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/metrics"
	redisstore "github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/persistence/redis"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/scheduler"
	httpiface "github.com/skillspring-hub/skillspring-dashboard/internal/interface/http"
	"github.com/skillspring-hub/skillspring-dashboard/pkg/circuitbreaker"
	"github.com/skillspring-hub/skillspring-dashboard/pkg/logger"
	"github.com/skillspring-hub/skillspring-dashboard/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Logging
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting SkillSpring dashboard service",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Metrics
	// ─────────────────────────────────────────────────────────────────────────
	var (
		registry  *prometheus.Registry
		collector *metrics.Collector
	)
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		collector = metrics.NewCollector(registry)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Session storage (Redis, or in-memory when disabled)
	// ─────────────────────────────────────────────────────────────────────────
	var store redisstore.Store
	if cfg.Redis.Disabled {
		log.Warn("Redis is disabled, session state is process-local")
		store = redisstore.NewMemoryStore()
	} else {
		log.Info("connecting to Redis...", "addr", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port))
		cache, err := redisstore.NewCache(redisstore.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer func() {
			log.Info("closing Redis connection...")
			_ = cache.Close()
		}()
		store = cache
		log.Info("Redis connection established")
	}

	directory := redisstore.NewSessionRegistry(store)
	archive := redisstore.NewSnapshotCache(store)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Event bus
	// ─────────────────────────────────────────────────────────────────────────
	eventBus := messaging.NewInMemoryEventBus(log)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Refresh scheduler
	// ─────────────────────────────────────────────────────────────────────────
	schedulerConfig := scheduler.SchedulerConfig{
		Logger:       log,
		TickInterval: cfg.Scheduler.TickInterval,
	}
	if collector != nil {
		schedulerConfig.Metrics = collector
	}
	sched := scheduler.NewScheduler(schedulerConfig)

	if cfg.Scheduler.Enabled {
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	} else {
		log.Warn("scheduler is disabled, feeds refresh only on login")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. Backend API client
	// ─────────────────────────────────────────────────────────────────────────
	backendConfig := backend.DefaultClientConfig(cfg.Backend.BaseURL)
	backendConfig.Timeout = cfg.Backend.RequestTimeout
	backendConfig.Logger = log
	backendConfig.Debug = cfg.App.Debug
	backendConfig.RateLimiterConfig = backend.RateLimiterConfig{
		RequestsPerSecond: cfg.Backend.RateLimit,
		Burst:             cfg.Backend.RateLimitBurst,
	}
	backendConfig.RetryConfig = retry.Config{
		MaxAttempts:  cfg.Backend.MaxRetries,
		InitialDelay: cfg.Backend.RetryBaseDelay,
		MaxDelay:     cfg.Backend.RetryMaxDelay,
	}
	backendConfig.CircuitBreakerConfig = circuitbreaker.Config{
		Name:             "backend-api",
		FailureThreshold: cfg.Backend.CircuitBreakerThreshold,
		Timeout:          cfg.Backend.CircuitBreakerTimeout,
	}
	backendClient := backend.NewClient(backendConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. Session manager
	// ─────────────────────────────────────────────────────────────────────────
	managerConfig := dashboard.ManagerConfig{
		Client:          backendClient,
		Events:          eventBus,
		Scheduler:       sched,
		Directory:       directory,
		Archive:         archive,
		RefreshInterval: cfg.Scheduler.RefreshInterval,
		Logger:          log,
	}
	if collector != nil {
		managerConfig.Metrics = collector
	}
	manager := dashboard.NewManager(managerConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	httpLogger := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	serverConfig := httpiface.Config{
		Host:               cfg.HTTP.Host,
		Port:               cfg.HTTP.Port,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:     1 << 20,
		EnableCORS:         cfg.HTTP.EnableCORS,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		EnableMetrics:      cfg.Observability.MetricsEnabled,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
	}

	server := httpiface.NewServer(serverConfig, httpiface.Dependencies{
		Manager:  manager,
		Backend:  backendClient,
		Logger:   httpLogger,
		Metrics:  collector,
		Registry: registry,
	})

	serverErr := server.StartAsync()
	log.Info("HTTP server listening", "address", server.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 10. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}

// setupLogger builds the process-wide structured logger.
func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
