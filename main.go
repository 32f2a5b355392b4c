package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pixelfin/internal/database"
	"pixelfin/internal/handlers"
	"pixelfin/internal/logging"
	"pixelfin/internal/metrics"
	"pixelfin/internal/middleware"
	"pixelfin/internal/runner"
	"pixelfin/internal/startup"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx := context.Background()

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Database initialization failed: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error("failed to close database: %v", err)
		}
	}()
	startup.LogDatabaseInit(time.Since(dbStart))

	metrics.InitializeMetrics()

	run := runner.New(db, config.OutputDir)
	h := handlers.New(db, run, config)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	// Web UI assets, when present.
	if info, err := os.Stat(config.StaticDir); err == nil && info.IsDir() {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(config.StaticDir)))
	}

	logConfig := middleware.DefaultLoggingConfig()
	logConfig.LogStaticFiles = config.LogStaticFiles
	logConfig.LogHealthChecks = config.LogHealthChecks
	router.Use(middleware.Logger(logConfig))
	if config.MetricsEnabled {
		router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	}

	startup.LogHTTPRoutes(router)

	// Metrics are exposed on their own port so they stay off any
	// externally published surface.
	if config.MetricsEnabled {
		go func() {
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", promhttp.Handler())
			metricsServer := &http.Server{
				Addr:              ":" + config.MetricsPort,
				Handler:           metricsMux,
				ReadHeaderTimeout: 10 * time.Second,
			}
			logging.Info("Metrics server listening on :%s", config.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Report downloads inline a full library of images; generous
		// write timeout.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		startup.LogServerStarted(config.Port, time.Since(startTime))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			startup.LogFatal("HTTP server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logging.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed: %v", err)
	}
	logging.Info("Shutdown complete")
}
