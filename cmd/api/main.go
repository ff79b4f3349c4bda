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

	"github.com/claimsage/backend/internal/adapters/cache"
	"github.com/claimsage/backend/internal/adapters/corpus"
	"github.com/claimsage/backend/internal/adapters/encoders"
	"github.com/claimsage/backend/internal/api/handlers"
	"github.com/claimsage/backend/internal/api/routes"
	"github.com/claimsage/backend/internal/application/services"
	"github.com/claimsage/backend/internal/domain/providers"
	"github.com/claimsage/backend/internal/domain/repositories"
	"github.com/claimsage/backend/internal/infrastructure/clients/ollama"
	"github.com/claimsage/backend/internal/infrastructure/clients/openai"
	"github.com/claimsage/backend/internal/infrastructure/clients/postgres"
	"github.com/claimsage/backend/internal/infrastructure/clients/redis"
	"github.com/claimsage/backend/internal/infrastructure/observability"
	"github.com/claimsage/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
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

	// Select the clause corpus store
	var clauseRepo repositories.ClauseRepository
	switch cfg.Corpus.Store {
	case "postgres":
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		clauseRepo = corpus.NewPostgresAdapter(pgClient)
	default:
		clauseRepo = corpus.NewFileAdapter(cfg.Corpus.Path)
	}

	// Select the embedding encoder
	encoder := buildEncoder(cfg)
	if closer, ok := encoder.(interface{ Close() }); ok {
		defer closer.Close()
	}

	// Wrap the encoder with Redis caching if available
	if encoder != nil {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, encoding without cache")
		} else {
			defer redisClient.Close()
			cacheProvider := cache.NewRedisAdapter(redisClient)
			encoder = encoders.NewCachedEncoder(encoder, cacheProvider, cfg.Encoder.CacheTTLSeconds)
			log.Info().Msg("encoder wrapped with caching layer")
		}
	}

	// Load the clause corpus and index embeddings up front
	corpusService := services.NewCorpusService(clauseRepo, encoder)
	if err := corpusService.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("clause corpus unavailable, decisions will need review")
	}
	if err := corpusService.EnsureEmbeddings(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to index clause embeddings")
	}
	metrics.CorpusSize.Add(ctx, int64(len(corpusService.Clauses())))

	parserService := services.NewQueryParserService()
	decisionService := services.NewDecisionService(corpusService, encoder)

	decisionHandler := handlers.NewDecisionHandler(parserService, decisionService)
	corpusHandler := handlers.NewCorpusHandler(corpusService)

	router := routes.NewRouter(decisionHandler, corpusHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
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

// buildEncoder selects the embedding backend. A nil encoder puts the
// decision engine in degraded mode where coverage checks need review.
func buildEncoder(cfg *config.Config) providers.EncoderProvider {
	switch cfg.Encoder.Provider {
	case "openai":
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize OpenAI encoder")
			return nil
		}
		log.Info().Str("model", cfg.OpenAI.EmbeddingModel).Msg("OpenAI encoder initialized")
		return client
	case "ollama":
		client, err := ollama.NewClient(&cfg.Ollama)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Ollama encoder")
			return nil
		}
		log.Info().Str("model", cfg.Ollama.Model).Msg("Ollama encoder initialized")
		return client
	default:
		log.Warn().Msg("no encoder configured, semantic matching disabled")
		return nil
	}
}
