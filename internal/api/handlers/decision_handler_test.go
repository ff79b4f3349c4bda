package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsage/backend/internal/api/handlers"
	"github.com/claimsage/backend/internal/domain/entities"
)

type stubParser struct {
	parsed *entities.ParsedQuery
}

func (s *stubParser) Parse(query string) *entities.ParsedQuery {
	if s.parsed != nil {
		return s.parsed
	}
	return &entities.ParsedQuery{RawQuery: query}
}

type stubDecider struct {
	decision *entities.Decision
	seen     *entities.ParsedQuery
}

func (s *stubDecider) Decide(ctx context.Context, parsed *entities.ParsedQuery) *entities.Decision {
	s.seen = parsed
	return s.decision
}

func TestDecisionHandler_CreateDecision_Success(t *testing.T) {
	age := 46
	months := 6
	parser := &stubParser{parsed: &entities.ParsedQuery{
		RawQuery:             "46M knee surgery 6-month policy Pune",
		Age:                  &age,
		Gender:               entities.GenderMale,
		Procedure:            "Knee Surgery",
		Location:             "Pune",
		PolicyDurationMonths: &months,
	}}
	decider := &stubDecider{decision: &entities.Decision{
		Decision:      entities.DecisionRejected,
		Justification: []string{"Policy active for 6 months but requires at least 24 months waiting period for 'Knee Surgery'."},
		Clauses:       []string{"Knee surgery has a waiting period of 24 months."},
		Confidence:    0.9,
	}}
	handler := handlers.NewDecisionHandler(parser, decider)

	body := `{"query":"46M knee surgery 6-month policy Pune"}`
	req := httptest.NewRequest("POST", "/api/v1/decisions", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateDecision(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response struct {
		RequestID   string                `json:"request_id"`
		ParsedQuery *entities.ParsedQuery `json:"parsed_query"`
		Decision    *entities.Decision    `json:"decision"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.NotEmpty(t, response.RequestID)
	require.NotNil(t, response.ParsedQuery)
	assert.Equal(t, "Knee Surgery", response.ParsedQuery.Procedure)
	require.NotNil(t, response.Decision)
	assert.Equal(t, entities.DecisionRejected, response.Decision.Decision)
	assert.Equal(t, 0.9, response.Decision.Confidence)

	assert.Same(t, parser.parsed, decider.seen)
}

func TestDecisionHandler_CreateDecision_EmptyQueryStillDecides(t *testing.T) {
	parser := &stubParser{}
	decider := &stubDecider{decision: &entities.Decision{
		Decision:      entities.DecisionNeedsReview,
		Justification: []string{"Cannot verify procedure coverage - missing information"},
		Clauses:       []string{},
	}}
	handler := handlers.NewDecisionHandler(parser, decider)

	req := httptest.NewRequest("POST", "/api/v1/decisions", strings.NewReader(`{"query":""}`))
	w := httptest.NewRecorder()

	handler.CreateDecision(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Contains(t, string(response["decision"]), "needs_review")
}

func TestDecisionHandler_CreateDecision_InvalidBody(t *testing.T) {
	handler := handlers.NewDecisionHandler(&stubParser{}, &stubDecider{})

	req := httptest.NewRequest("POST", "/api/v1/decisions", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.CreateDecision(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "invalid request body", response["error"])
}

func TestDecisionHandler_ParseQuery_Success(t *testing.T) {
	handler := handlers.NewDecisionHandler(&stubParser{}, &stubDecider{})

	req := httptest.NewRequest("POST", "/api/v1/queries/parse", strings.NewReader(`{"query":"knee surgery"}`))
	w := httptest.NewRecorder()

	handler.ParseQuery(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var parsed entities.ParsedQuery
	require.NoError(t, json.NewDecoder(w.Body).Decode(&parsed))
	assert.Equal(t, "knee surgery", parsed.RawQuery)
}

func TestDecisionHandler_ParseQuery_MissingQuery(t *testing.T) {
	handler := handlers.NewDecisionHandler(&stubParser{}, &stubDecider{})

	req := httptest.NewRequest("POST", "/api/v1/queries/parse", strings.NewReader(`{"query":"   "}`))
	w := httptest.NewRecorder()

	handler.ParseQuery(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
