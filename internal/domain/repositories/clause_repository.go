package repositories

import (
	"context"
	"errors"

	"github.com/claimsage/backend/internal/domain/entities"
)

// Corpus load failures the caller can tell apart. The decision engine
// degrades to an empty corpus on any of them; operators need to know which
// one happened.
var (
	// ErrCorpusNotFound indicates the backing store does not exist.
	ErrCorpusNotFound = errors.New("clause corpus not found")

	// ErrCorpusEmpty indicates the store exists but holds no clauses.
	ErrCorpusEmpty = errors.New("clause corpus is empty")

	// ErrCorpusMalformed indicates the store exists but cannot be parsed.
	ErrCorpusMalformed = errors.New("clause corpus is malformed")
)

// ClauseRepository is the clause corpus store. The corpus is an ordered
// sequence: LoadAll returns clauses in store order and RewriteAll replaces
// the whole sequence, preserving the order given.
type ClauseRepository interface {
	// LoadAll loads every clause from the store.
	LoadAll(ctx context.Context) ([]*entities.Clause, error)

	// RewriteAll replaces the store contents with the given clauses. Used
	// once after the embedding maintenance phase when vectors were computed.
	RewriteAll(ctx context.Context, clauses []*entities.Clause) error
}
