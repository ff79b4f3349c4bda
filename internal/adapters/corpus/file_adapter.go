package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claimsage/backend/internal/domain/entities"
	"github.com/claimsage/backend/internal/domain/repositories"
)

// FileAdapter implements ClauseRepository over a JSON file holding an
// ordered array of clause records. Embeddings are serialized as plain JSON
// number arrays, which round-trips float64 exactly.
type FileAdapter struct {
	path string
}

// NewFileAdapter creates a file-backed clause repository.
func NewFileAdapter(path string) repositories.ClauseRepository {
	return &FileAdapter{path: path}
}

// LoadAll loads every clause from the file. Absent, empty, and malformed
// files surface as distinguishable sentinel errors.
func (a *FileAdapter) LoadAll(ctx context.Context) ([]*entities.Clause, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrCorpusNotFound, a.path)
		}
		return nil, fmt.Errorf("failed to read clause corpus %s: %w", a.path, err)
	}

	var clauses []*entities.Clause
	if err := json.Unmarshal(data, &clauses); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repositories.ErrCorpusMalformed, a.path, err)
	}

	if len(clauses) == 0 {
		return nil, fmt.Errorf("%w: %s", repositories.ErrCorpusEmpty, a.path)
	}

	return clauses, nil
}

// RewriteAll atomically replaces the file contents. Written to a temp file
// and renamed so no reader ever observes a partially rewritten corpus.
func (a *FileAdapter) RewriteAll(ctx context.Context, clauses []*entities.Clause) error {
	data, err := json.MarshalIndent(clauses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal clause corpus: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(a.path), ".clauses-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp corpus file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write clause corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp corpus file: %w", err)
	}

	if err := os.Rename(tmpName, a.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace clause corpus: %w", err)
	}
	return nil
}
