package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/claimsage/backend/internal/adapters/corpus"
	"github.com/claimsage/backend/internal/domain/entities"
	"github.com/claimsage/backend/internal/domain/repositories"
	"github.com/claimsage/backend/internal/infrastructure/clients/postgres"
	"github.com/claimsage/backend/pkg/config"
)

// starterClauses is a minimal policy wording set for local development.
// Embeddings are left empty; the indexer fills them in.
var starterClauses = []*entities.Clause{
	{Text: "Knee surgery and other orthopedic procedures are covered after a waiting period of 24 months."},
	{Text: "Cardiac procedures including angioplasty and bypass surgery are covered after a waiting period of 2 years."},
	{Text: "Cataract surgery is covered after a waiting period of 12 months."},
	{Text: "Maternity benefits are covered after a waiting period of 9 months."},
	{Text: "Pre-existing diseases are covered after a waiting period of 36 months."},
	{Text: "Cosmetic surgery and aesthetic treatments are not covered under this policy."},
	{Text: "Dental treatment is excluded unless necessitated by accidental injury."},
	{Text: "Day care procedures such as dialysis and chemotherapy are covered from policy inception."},
	{Text: "Emergency hospitalization is covered from day one without any waiting period."},
	{Text: "Organ transplant procedures are covered for the insured person when medically necessary."},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	var repo repositories.ClauseRepository
	switch cfg.Corpus.Store {
	case "postgres":
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
		}
		defer pgClient.Close()

		if _, err := pgClient.DB().ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS policy_clauses (
				position    INTEGER PRIMARY KEY,
				clause_text TEXT NOT NULL,
				embedding   TEXT
			)
		`); err != nil {
			log.Fatal().Err(err).Msg("failed to create policy_clauses table")
		}
		repo = corpus.NewPostgresAdapter(pgClient)
	default:
		repo = corpus.NewFileAdapter(cfg.Corpus.Path)
	}

	if os.Getenv("RESET_CORPUS") != "true" {
		if existing, err := repo.LoadAll(ctx); err == nil && len(existing) > 0 {
			log.Info().Int("clauses", len(existing)).
				Msg("corpus already seeded, set RESET_CORPUS=true to overwrite")
			return
		}
	}

	if err := repo.RewriteAll(ctx, starterClauses); err != nil {
		log.Fatal().Err(err).Msg("failed to seed clause corpus")
	}

	log.Info().Int("clauses", len(starterClauses)).Str("store", cfg.Corpus.Store).
		Msg("clause corpus seeded")
}
