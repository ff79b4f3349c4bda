package routes

import (
	"net/http"

	"github.com/claimsage/backend/internal/api/handlers"
	"github.com/claimsage/backend/internal/api/middleware"
	"github.com/claimsage/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	decisionHandler *handlers.DecisionHandler
	corpusHandler   *handlers.CorpusHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	decisionHandler *handlers.DecisionHandler,
	corpusHandler *handlers.CorpusHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		decisionHandler: decisionHandler,
		corpusHandler:   corpusHandler,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Decision endpoints
	r.mux.HandleFunc("POST /api/v1/decisions", r.decisionHandler.CreateDecision)
	r.mux.HandleFunc("POST /api/v1/queries/parse", r.decisionHandler.ParseQuery)

	// Corpus endpoints
	if r.corpusHandler != nil {
		r.mux.HandleFunc("GET /api/v1/clauses", r.corpusHandler.ListClauses)
		r.mux.HandleFunc("POST /api/v1/clauses/reindex", r.corpusHandler.ReindexClauses)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}

	handler = middleware.CORSMiddleware(handler)

	return handler
}
