package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nathanyu/market-sim/internal/config"
	"github.com/nathanyu/market-sim/internal/handler"
	"github.com/nathanyu/market-sim/internal/middleware"
	"github.com/nathanyu/market-sim/internal/simulation"
	"github.com/nathanyu/market-sim/internal/stream"
	"github.com/nathanyu/market-sim/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logger := telemetry.NewLogger("market-sim", cfg.LogLevel)

	logger.Info("starting market simulator", "seed", cfg.Seed)

	sim := simulation.New(simulation.Config{
		Seed:         cfg.Seed,
		BaselineCash: cfg.BaselineCash,
		AgentTypes:   cfg.AgentTypes,
		Logger:       logger,
	})
	hub := stream.NewHub(logger)

	// --- HTTP server ---
	r := gin.Default()
	r.Use(middleware.PrometheusMiddleware())

	h := handler.NewHandler(sim, hub, cfg)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// --- Metrics server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server listening", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		logger.Info("http server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}

	logger.Info("market simulator stopped")
}
