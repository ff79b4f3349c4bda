package handlers

import (
	"context"
	"net/http"

	"github.com/claimsage/backend/internal/domain/entities"
)

// CorpusReader defines the handler dependency for corpus inspection.
type CorpusReader interface {
	Clauses() []*entities.Clause
	EnsureEmbeddings(ctx context.Context) error
}

// CorpusHandler handles clause corpus requests
type CorpusHandler struct {
	corpus CorpusReader
}

// NewCorpusHandler creates a new corpus handler
func NewCorpusHandler(corpus CorpusReader) *CorpusHandler {
	return &CorpusHandler{corpus: corpus}
}

// ListClauses handles GET /api/v1/clauses
func (h *CorpusHandler) ListClauses(w http.ResponseWriter, r *http.Request) {
	clauses := h.corpus.Clauses()

	texts := make([]string, 0, len(clauses))
	embedded := 0
	for _, c := range clauses {
		texts = append(texts, c.Text)
		if c.HasEmbedding() {
			embedded++
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"clauses":  texts,
		"count":    len(texts),
		"embedded": embedded,
	})
}

// ReindexClauses handles POST /api/v1/clauses/reindex
func (h *CorpusHandler) ReindexClauses(w http.ResponseWriter, r *http.Request) {
	if err := h.corpus.EnsureEmbeddings(r.Context()); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "failed to index clause embeddings")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
