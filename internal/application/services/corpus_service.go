package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/claimsage/backend/internal/domain/entities"
	"github.com/claimsage/backend/internal/domain/providers"
	"github.com/claimsage/backend/internal/domain/repositories"
)

// CorpusService owns the clause corpus lifecycle: load the store, ensure
// every clause carries an embedding, persist recomputed vectors, then expose
// the corpus read-only. Handed-out clause slices are never mutated;
// EnsureEmbeddings builds fresh clauses and swaps the whole slice in, so
// decisioning can keep reading while a recompute runs.
type CorpusService struct {
	repo    repositories.ClauseRepository
	encoder providers.EncoderProvider

	mu       sync.RWMutex
	clauses  []*entities.Clause
	ensureMu sync.Mutex
}

// NewCorpusService creates a corpus service. The encoder may be nil; the
// corpus then serves without embeddings and stage-2 decisions degrade.
func NewCorpusService(repo repositories.ClauseRepository, encoder providers.EncoderProvider) *CorpusService {
	return &CorpusService{
		repo:    repo,
		encoder: encoder,
	}
}

// Load reads the full corpus from the store. On any load failure the corpus
// stays empty and the error is returned so the caller can log which failure
// mode occurred; serving continues in degraded mode either way.
func (s *CorpusService) Load(ctx context.Context) error {
	clauses, err := s.repo.LoadAll(ctx)

	s.mu.Lock()
	if err != nil {
		s.clauses = nil
	} else {
		s.clauses = clauses
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}

	log.Info().Int("clauses", len(clauses)).Msg("clause corpus loaded")
	return nil
}

// EnsureEmbeddings computes embeddings for clauses that lack one and
// rewrites the store when anything was computed. Per-clause encoder
// failures are isolated: the clause is left without an embedding and the
// batch continues. Clauses already handed out are never written to; newly
// embedded clauses are fresh copies swapped in at the end. Returns an error
// only when persisting fails.
func (s *CorpusService) EnsureEmbeddings(ctx context.Context) error {
	// One recompute at a time; readers are unaffected either way.
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()

	snapshot := s.Clauses()
	if len(snapshot) == 0 {
		return nil
	}
	if s.encoder == nil {
		if missingEmbeddings(snapshot) > 0 {
			log.Warn().Msg("no encoder configured; clauses without embeddings stay unscored")
		}
		return nil
	}

	next := make([]*entities.Clause, len(snapshot))
	computed := 0
	for i, clause := range snapshot {
		next[i] = clause
		if clause.HasEmbedding() {
			continue
		}
		if clause.Text == "" {
			log.Warn().Int("clause", i).Msg("clause missing text, skipping")
			continue
		}

		embedding, err := s.encoder.Encode(ctx, clause.Text)
		if err != nil {
			log.Error().Err(err).Int("clause", i).Msg("failed to compute clause embedding")
			continue
		}
		next[i] = &entities.Clause{Text: clause.Text, Embedding: embedding}
		computed++
	}

	if computed == 0 {
		return nil
	}

	log.Info().Int("computed", computed).Msg("clause embeddings computed, persisting corpus")
	if err := s.repo.RewriteAll(ctx, next); err != nil {
		return err
	}

	s.mu.Lock()
	s.clauses = next
	s.mu.Unlock()
	return nil
}

// Clauses returns the current corpus. The slice and its clauses are
// read-only; recomputes replace the slice rather than mutating it.
func (s *CorpusService) Clauses() []*entities.Clause {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clauses
}

func missingEmbeddings(clauses []*entities.Clause) int {
	missing := 0
	for _, clause := range clauses {
		if !clause.HasEmbedding() {
			missing++
		}
	}
	return missing
}
