package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/claimsage/backend/internal/adapters/corpus"
	"github.com/claimsage/backend/internal/application/services"
	"github.com/claimsage/backend/internal/domain/providers"
	"github.com/claimsage/backend/internal/domain/repositories"
	"github.com/claimsage/backend/internal/infrastructure/clients/ollama"
	"github.com/claimsage/backend/internal/infrastructure/clients/openai"
	"github.com/claimsage/backend/internal/infrastructure/clients/postgres"
	"github.com/claimsage/backend/pkg/config"
)

// decide runs a single coverage query from the command line and prints
// the parsed query and decision as JSON.
func main() {
	flag.Parse()
	query := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(os.Stderr, "usage: decide <free-text query>")
		os.Exit(2)
	}

	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

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
		if client, err := openai.NewClient(&cfg.OpenAI); err == nil {
			encoder = client
		}
	case "ollama":
		if client, err := ollama.NewClient(&cfg.Ollama); err == nil {
			encoder = client
		}
	}

	corpusService := services.NewCorpusService(clauseRepo, encoder)
	if err := corpusService.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("clause corpus unavailable")
	}
	if err := corpusService.EnsureEmbeddings(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to index clause embeddings")
	}

	parser := services.NewQueryParserService()
	decider := services.NewDecisionService(corpusService, encoder)

	parsed := parser.Parse(query)
	decision := decider.Decide(ctx, parsed)

	out, err := json.MarshalIndent(map[string]interface{}{
		"parsed_query": parsed,
		"decision":     decision,
	}, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}

	fmt.Println(string(out))
}
