// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/cache"
	"github.com/unclebandit/battery-reminder/internal/config"
	"github.com/unclebandit/battery-reminder/internal/controller"
	"github.com/unclebandit/battery-reminder/internal/db"
	"github.com/unclebandit/battery-reminder/internal/handler"
	"github.com/unclebandit/battery-reminder/internal/metrics"
	"github.com/unclebandit/battery-reminder/internal/repository"
	"github.com/unclebandit/battery-reminder/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	conf, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(conf.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if !conf.EnvFileLoaded {
		logger.Info("no .env file found, relying on OS environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Open(ctx, conf.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return
	}
	defer sqlDB.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	trackingController := &controller.TrackingController{
		Tracker: &service.TrackingService{
			Deliveries: &repository.DeliveryRepository{DB: sqlDB},
			Engagement: &repository.EngagementRepository{DB: sqlDB},
			Metrics:    m,
			Logger:     logger,
		},
		DeepLinkScheme: conf.Server.DeepLinkScheme,
		Logger:         logger,
	}

	campaignHandler := &handler.CampaignHandler{
		Analytics: &service.AnalyticsService{
			Store:  &repository.AnalyticsRepository{DB: sqlDB},
			Logger: logger,
		},
		Cache:    cache.New(conf.Redis),
		CacheTTL: conf.Redis.CacheTTL,
		Logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Tracking routes
	r.Get("/track-click/{campaignId}/{userId}", trackingController.TrackClick)
	r.Post("/track-battery-check", trackingController.TrackBatteryCheck)

	// Reporting routes
	r.Get("/campaign-stats/{campaignId}", campaignHandler.GetCampaignStats)
	r.Get("/weekly-summary", campaignHandler.WeeklySummary)
	r.Get("/health", campaignHandler.Health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	httpServer := &http.Server{
		Addr:              conf.Server.ListenString(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("tracking server running", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
