package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/claimsage/backend/internal/api/middleware"
	"github.com/claimsage/backend/internal/domain/entities"
	"github.com/claimsage/backend/internal/infrastructure/observability"
)

// QueryParser defines the handler dependency for query parsing.
type QueryParser interface {
	Parse(query string) *entities.ParsedQuery
}

// Decider defines the handler dependency for coverage decisions.
type Decider interface {
	Decide(ctx context.Context, parsed *entities.ParsedQuery) *entities.Decision
}

// DecisionHandler handles coverage decision requests
type DecisionHandler struct {
	parser  QueryParser
	decider Decider
}

// NewDecisionHandler creates a new decision handler
func NewDecisionHandler(parser QueryParser, decider Decider) *DecisionHandler {
	return &DecisionHandler{
		parser:  parser,
		decider: decider,
	}
}

type decisionRequest struct {
	Query string `json:"query"`
}

type decisionResponse struct {
	RequestID   string                `json:"request_id"`
	ParsedQuery *entities.ParsedQuery `json:"parsed_query"`
	Decision    *entities.Decision    `json:"decision"`
}

// CreateDecision handles POST /api/v1/decisions
func (h *DecisionHandler) CreateDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	parsed := h.parser.Parse(req.Query)
	decision := h.decider.Decide(ctx, parsed)

	requestID := middleware.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	logger.Info().
		Str("request_id", requestID).
		Str("decision", string(decision.Decision)).
		Float64("confidence", decision.Confidence).
		Msg("coverage decision")

	respondWithJSON(w, http.StatusOK, decisionResponse{
		RequestID:   requestID,
		ParsedQuery: parsed,
		Decision:    decision,
	})
}

// ParseQuery handles POST /api/v1/queries/parse
func (h *DecisionHandler) ParseQuery(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		respondWithError(w, http.StatusBadRequest, "query is required")
		return
	}

	respondWithJSON(w, http.StatusOK, h.parser.Parse(req.Query))
}

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondWithError writes a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{"error": message})
}
