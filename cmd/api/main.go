package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/offerfunnel/offerfunnel/backend/internal/adapters/cache"
	"github.com/offerfunnel/offerfunnel/backend/internal/adapters/database"
	"github.com/offerfunnel/offerfunnel/backend/internal/api/handlers"
	"github.com/offerfunnel/offerfunnel/backend/internal/api/middleware"
	"github.com/offerfunnel/offerfunnel/backend/internal/api/routes"
	"github.com/offerfunnel/offerfunnel/backend/internal/application/services"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/providers"
	"github.com/offerfunnel/offerfunnel/backend/internal/domain/repositories"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/postgres"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/clients/redis"
	"github.com/offerfunnel/offerfunnel/backend/internal/infrastructure/observability"
	"github.com/offerfunnel/offerfunnel/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional; the service degrades to uncached reads without it
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without cache")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("Redis client initialized")
	}

	baseAdapter := database.NewSurveyAdapter(pgClient)

	var surveyRepo repositories.SurveyRepository
	if cacheProvider != nil {
		surveyRepo = database.NewCachedSurveyAdapter(baseAdapter, cacheProvider)
	} else {
		surveyRepo = baseAdapter
	}

	surveyService := services.NewSurveyService(surveyRepo)

	surveyHandler := handlers.NewSurveyHandler(surveyService)
	responseHandler := handlers.NewResponseHandler(surveyService)
	statsHandler := handlers.NewStatsHandler(surveyService)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	router := routes.NewRouter(
		surveyHandler,
		responseHandler,
		statsHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
