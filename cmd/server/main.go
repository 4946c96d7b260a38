package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pulsefeed/autopub/internal/adapter"
	"github.com/pulsefeed/autopub/internal/api"
	"github.com/pulsefeed/autopub/internal/config"
	"github.com/pulsefeed/autopub/internal/db"
	"github.com/pulsefeed/autopub/internal/domain"
	"github.com/pulsefeed/autopub/internal/gate"
	"github.com/pulsefeed/autopub/internal/metrics"
	"github.com/pulsefeed/autopub/internal/scheduler"
	"github.com/pulsefeed/autopub/internal/service"
	"github.com/pulsefeed/autopub/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	st := store.NewPgPostStore(pool)
	g := gate.New(cfg.ReleaseInterval)
	registry := buildRegistry(cfg, logger)
	svc := service.NewPostService(st, logger)

	// ---- scheduler ----
	// Context for the background goroutine; cancelled on shutdown signal.
	schedCtx, cancelSched := context.WithCancel(ctx)
	defer cancelSched()

	onPublished, onFailed := m.SchedulerHooks()
	pub := scheduler.NewPublisher(st, registry, g, cfg.PublishTimeout, logger, scheduler.Hooks{
		OnPublished: onPublished,
		OnFailed:    onFailed,
	})

	ticker := scheduler.NewTicker(pub, cfg.TickInterval, logger)
	var schedDone sync.WaitGroup
	schedDone.Add(1)
	go func() {
		defer schedDone.Done()
		ticker.Run(schedCtx)
	}()

	// ---- HTTP server ----
	router := api.NewRouter(svc, g, reg, cfg.EnqueueRate, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal the scheduler to stop ticking.
	cancelSched()

	// 3. Wait for an in-flight tick to finish its dispatch.
	schedDone.Wait()

	logger.Info("server stopped cleanly")
}

// buildRegistry registers an adapter for every platform that has enough
// configuration to reach its backend. Platforms left unconfigured stay
// unregistered: posts targeting them fail at dispatch time rather than
// blocking startup.
func buildRegistry(cfg *config.Config, logger *zap.Logger) *adapter.Registry {
	registry := adapter.NewRegistry()

	if cfg.TwitterAPIURL != "" {
		registry.Register(domain.PlatformTwitter,
			adapter.NewTwitterAdapter(cfg.TwitterAPIURL, cfg.TwitterBearerToken, cfg.PublishTimeout))
	} else {
		logger.Warn("twitter adapter not configured")
	}

	if cfg.TelegramAPIURL != "" && cfg.TelegramChatID != "" {
		registry.Register(domain.PlatformTelegram,
			adapter.NewTelegramAdapter(cfg.TelegramAPIURL, cfg.TelegramChatID, cfg.PublishTimeout))
	} else {
		logger.Warn("telegram adapter not configured")
	}

	if cfg.WebhookURL != "" {
		registry.Register(domain.PlatformWebhook,
			adapter.NewWebhookAdapter(cfg.WebhookURL, cfg.PublishTimeout))
	} else {
		logger.Warn("webhook adapter not configured")
	}

	return registry
}
