// Package main provides the entrypoint for the status poll worker.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/config"
	"github.com/SydneyUniLibrary/exlibris-status-api/internal/database"
	"github.com/SydneyUniLibrary/exlibris-status-api/internal/feed"
	"github.com/SydneyUniLibrary/exlibris-status-api/internal/poller"
	"github.com/SydneyUniLibrary/exlibris-status-api/internal/status"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "exlibris-status-poller"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting status poller")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	pool, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	classifier := status.NewClassifier(status.Config{
		Product:      cfg.Product,
		ProductLabel: cfg.ProductLabel,
		Location:     cfg.Location,
	}, log)

	service := status.NewService(status.ServiceConfig{
		Repository: status.NewPostgresRepository(pool),
		Classifier: classifier,
		Logger:     log,
		Product:    cfg.Product,
		Location:   cfg.Location,
	})

	client := feed.NewClient(feed.ClientConfig{
		BaseURL: cfg.FeedURL,
		Env:     cfg.FeedEnv,
	})

	p, err := poller.New(poller.Config{
		Schedule: cfg.PollSchedule,
		Timeout:  cfg.PollTimeout,
		Fetcher:  client,
		Cycler:   service,
		Logger:   log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create poller")
	}

	if cfg.PollOnce {
		if err := p.RunOnce(ctx); err != nil {
			log.Fatal().Err(err).Msg("poll cycle failed")
		}
		log.Info().Msg("single poll cycle completed")
		return
	}

	p.Start()
	log.Info().
		Str("schedule", cfg.PollSchedule).
		Str("product", cfg.Product).
		Msg("poll loop started")

	// Health endpoint for the container platform.
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"version": Version,
			"poller":  p.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down poller")
	<-p.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("poller stopped")
}
