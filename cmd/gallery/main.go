// Command gallery serves the image search gallery API: paginated photo
// search with URL-synced infinite scroll, masonry layout data, detail
// endpoints and hover prefetching.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tigerabrodi/hinata/internal/config"
	"github.com/tigerabrodi/hinata/pkg/feed"
	"github.com/tigerabrodi/hinata/pkg/logging"
	"github.com/tigerabrodi/hinata/pkg/prefetch"
	"github.com/tigerabrodi/hinata/pkg/unsplash"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
	})

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	} else {
		logger.Warn().Msg("No Redis address configured, running without response cache")
	}

	clientCfg := unsplash.DefaultConfig(cfg.Unsplash.AccessKey)
	clientCfg.Redis = redisClient
	if cfg.Unsplash.BaseURL != "" {
		clientCfg.BaseURL = cfg.Unsplash.BaseURL
	}
	apiClient, err := unsplash.New(clientCfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create photo API client")
	}

	cache := feed.NewCache(logger)
	prefetcher := prefetch.NewScheduler(apiClient, logger)
	server := NewServer(cache, apiClient, prefetcher, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
	r.Handle("/metrics", promhttp.Handler())
	server.Routes(r)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Int("port", cfg.HTTP.Port).Msg("Starting gallery server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
