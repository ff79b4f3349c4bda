package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsage/backend/internal/api/handlers"
	"github.com/claimsage/backend/internal/domain/entities"
)

type stubCorpus struct {
	clauses  []*entities.Clause
	indexErr error
	indexed  int
}

func (s *stubCorpus) Clauses() []*entities.Clause { return s.clauses }

func (s *stubCorpus) EnsureEmbeddings(ctx context.Context) error {
	s.indexed++
	return s.indexErr
}

func TestCorpusHandler_ListClauses(t *testing.T) {
	corpus := &stubCorpus{clauses: []*entities.Clause{
		{Text: "Knee surgery has a waiting period of 24 months.", Embedding: []float64{1, 0}},
		{Text: "Dental care is covered for dependents."},
	}}
	handler := handlers.NewCorpusHandler(corpus)

	req := httptest.NewRequest("GET", "/api/v1/clauses", nil)
	w := httptest.NewRecorder()

	handler.ListClauses(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Clauses  []string `json:"clauses"`
		Count    int      `json:"count"`
		Embedded int      `json:"embedded"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, 1, response.Embedded)
	assert.Len(t, response.Clauses, 2)
}

func TestCorpusHandler_ReindexClauses(t *testing.T) {
	corpus := &stubCorpus{}
	handler := handlers.NewCorpusHandler(corpus)

	req := httptest.NewRequest("POST", "/api/v1/clauses/reindex", nil)
	w := httptest.NewRecorder()

	handler.ReindexClauses(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, corpus.indexed)
}

func TestCorpusHandler_ReindexClauses_Failure(t *testing.T) {
	corpus := &stubCorpus{indexErr: errors.New("store down")}
	handler := handlers.NewCorpusHandler(corpus)

	req := httptest.NewRequest("POST", "/api/v1/clauses/reindex", nil)
	w := httptest.NewRecorder()

	handler.ReindexClauses(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
