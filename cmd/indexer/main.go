package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/claimsage/backend/internal/adapters/corpus"
	"github.com/claimsage/backend/internal/application/services"
	"github.com/claimsage/backend/internal/domain/providers"
	"github.com/claimsage/backend/internal/domain/repositories"
	"github.com/claimsage/backend/internal/infrastructure/clients/ollama"
	"github.com/claimsage/backend/internal/infrastructure/clients/openai"
	"github.com/claimsage/backend/internal/infrastructure/clients/postgres"
	"github.com/claimsage/backend/internal/infrastructure/observability"
	"github.com/claimsage/backend/pkg/config"
)

// indexer loads the clause corpus, computes any missing embeddings and
// persists them back to the configured store, then exits.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

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

	var encoder providers.EncoderProvider
	switch cfg.Encoder.Provider {
	case "openai":
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize OpenAI encoder")
		}
		encoder = client
	case "ollama":
		client, err := ollama.NewClient(&cfg.Ollama)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Ollama encoder")
		}
		encoder = client
	default:
		log.Fatal().Msg("ENCODER_PROVIDER must be set to index embeddings")
	}

	corpusService := services.NewCorpusService(clauseRepo, encoder)
	if err := corpusService.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load clause corpus")
	}

	start := time.Now()
	if err := corpusService.EnsureEmbeddings(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to index clause embeddings")
	}

	log.Info().
		Int("clauses", len(corpusService.Clauses())).
		Dur("took", time.Since(start)).
		Msg("embedding index complete")
}
