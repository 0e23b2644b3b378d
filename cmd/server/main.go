package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/satsval/internal/application/service"
	"github.com/damon-houk/satsval/internal/infrastructure/api"
	"github.com/damon-houk/satsval/internal/infrastructure/cache"
	"github.com/damon-houk/satsval/internal/infrastructure/config"
	"github.com/damon-houk/satsval/internal/infrastructure/handler"
	"github.com/damon-houk/satsval/internal/infrastructure/logger"
	"github.com/damon-houk/satsval/internal/infrastructure/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal("Invalid log level", map[string]interface{}{
			"error": err.Error(),
		})
	}
	appLogger := logger.NewJSONLogger(os.Stdout, level)
	defer appLogger.Sync()
	logger.SetDefaultLogger(appLogger)
	log := appLogger.WithField("app", "satsval")

	log.Info("Starting SATSVAL", map[string]interface{}{
		"addr":             cfg.Addr,
		"feed_url":         cfg.FeedURL,
		"rate_ttl":         cfg.RateTTL.String(),
		"refresh_interval": cfg.RefreshInterval.String(),
	})

	m := metrics.New()

	// Price feed and rate cache
	feed := api.NewCoinbaseClient(cfg.FeedURL, &http.Client{Timeout: cfg.FeedTimeout})
	rates := cache.NewRateCache(feed,
		cache.WithTTL(cfg.RateTTL),
		cache.WithRecorder(m),
	)

	// Services
	conversionService := service.NewConversionService(rates, log.WithField("component", "conversion"))
	refresher := service.NewRefresher(rates, cfg.RefreshInterval, log.WithField("component", "refresher"))

	// Handlers
	conversionHandler := handler.NewConversionHandler(conversionService, log)
	router := handler.NewRouter(conversionHandler, m, log.WithField("component", "http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go refresher.Run(ctx)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.FeedTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": cfg.Addr})
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", map[string]interface{}{"error": err.Error()})
		}
	case <-ctx.Done():
		log.Info("Shutting down", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
