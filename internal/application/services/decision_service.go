package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/claimsage/backend/internal/domain/entities"
	"github.com/claimsage/backend/internal/domain/providers"
)

const (
	// waitingPeriodSimilarityThreshold admits a clause into the waiting
	// period gate on semantic similarity when no token overlaps literally.
	waitingPeriodSimilarityThreshold = 0.3

	// coverageApproveThreshold is the best-match score above which a clause
	// decides coverage outright (approve, or reject on exclusion wording).
	coverageApproveThreshold = 0.45

	// coverageReviewThreshold is the best-match score above which a clause
	// is close enough to warrant manual review.
	coverageReviewThreshold = 0.25

	// waitingPeriodConfidence is fixed for waiting-period rejections.
	waitingPeriodConfidence = 0.9

	// maxWaitingPeriodClauses bounds the cited clauses on a waiting-period
	// rejection.
	maxWaitingPeriodClauses = 2

	// minProcedureTokenLen filters very short procedure tokens out of the
	// literal-overlap check.
	minProcedureTokenLen = 2
)

// exclusionKeywords mark a best-matching clause as excluding rather than
// covering the procedure. Matched as case-insensitive substrings.
var exclusionKeywords = []string{
	"not covered", "excluded", "not payable", "not eligible",
	"except", "excluding", "does not cover", "shall not",
	"not applicable", "not included",
}

// ClauseSource hands out the clause corpus to score against. Returned
// slices and their clauses must stay immutable; sources that recompute
// embeddings swap in fresh slices instead of mutating handed-out ones.
type ClauseSource interface {
	Clauses() []*entities.Clause
}

// StaticClauses adapts a fixed clause slice into a ClauseSource.
type StaticClauses []*entities.Clause

// Clauses returns the underlying slice.
func (c StaticClauses) Clauses() []*entities.Clause { return c }

// DecisionService turns a parsed query into a coverage decision using a
// two-stage policy: a waiting-period gate followed by semantic procedure
// coverage classification. All dependencies are injected once at
// construction; there is no hidden process-wide state.
type DecisionService struct {
	source     ClauseSource
	encoder    providers.EncoderProvider
	similarity *SimilarityService
}

// NewDecisionService creates a decision service over a clause source.
// A nil encoder puts stage 2 into degraded mode (needs_review).
func NewDecisionService(source ClauseSource, encoder providers.EncoderProvider) *DecisionService {
	return &DecisionService{
		source:     source,
		encoder:    encoder,
		similarity: NewSimilarityService(encoder),
	}
}

// Decide produces the final decision for a parsed query. It never fails:
// every degenerate input resolves to needs_review. The corpus is
// snapshotted once per call so both stages score the same clauses.
func (s *DecisionService) Decide(ctx context.Context, parsed *entities.ParsedQuery) *entities.Decision {
	if parsed == nil {
		return s.record(needsReview("Invalid or empty query", nil, 0.0))
	}

	var clauses []*entities.Clause
	if s.source != nil {
		clauses = s.source.Clauses()
	}

	// Stage 1: the waiting-period gate can short-circuit everything else.
	if decision := s.checkWaitingPeriod(ctx, parsed, clauses); decision != nil {
		return s.record(decision)
	}

	// Stage 2: semantic procedure coverage.
	return s.record(s.checkProcedureCoverage(ctx, parsed, clauses))
}

// checkWaitingPeriod rejects when the policy has not been active long
// enough. Returns nil when the gate does not apply or is satisfied.
// The gate compares against the minimum across all matched clauses.
func (s *DecisionService) checkWaitingPeriod(ctx context.Context, parsed *entities.ParsedQuery, clauses []*entities.Clause) *entities.Decision {
	if parsed.PolicyDurationMonths == nil || *parsed.PolicyDurationMonths < 1 ||
		parsed.Procedure == "" || len(clauses) == 0 {
		return nil
	}

	policyDuration := *parsed.PolicyDurationMonths
	procedure := strings.ToLower(parsed.Procedure)

	var tokens []string
	for _, tok := range strings.Fields(procedure) {
		if len(tok) > minProcedureTokenLen {
			tokens = append(tokens, tok)
		}
	}

	var pool []int
	var relevant []string

	for _, clause := range clauses {
		text := strings.ToLower(clause.Text)
		if !strings.Contains(text, "waiting period") {
			continue
		}

		mentioned := false
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				mentioned = true
				break
			}
		}
		if !mentioned && s.encoder != nil {
			if s.similarity.Similarity(ctx, procedure, text) > waitingPeriodSimilarityThreshold {
				mentioned = true
			}
		}
		if !mentioned {
			continue
		}

		if periods := ExtractWaitingPeriods(text); len(periods) > 0 {
			pool = append(pool, periods...)
			relevant = append(relevant, clause.Text)
		}
	}

	if len(pool) == 0 {
		return nil
	}

	minRequired := pool[0]
	for _, p := range pool[1:] {
		if p < minRequired {
			minRequired = p
		}
	}

	if policyDuration >= minRequired {
		return nil
	}

	if len(relevant) > maxWaitingPeriodClauses {
		relevant = relevant[:maxWaitingPeriodClauses]
	}

	return &entities.Decision{
		Decision: entities.DecisionRejected,
		Justification: []string{fmt.Sprintf(
			"Policy active for %d months but requires at least %d months waiting period for '%s'.",
			policyDuration, minRequired, parsed.Procedure,
		)},
		Clauses:    relevant,
		Confidence: waitingPeriodConfidence,
	}
}

// checkProcedureCoverage classifies the procedure against the best-matching
// clause by embedding similarity.
func (s *DecisionService) checkProcedureCoverage(ctx context.Context, parsed *entities.ParsedQuery, clauses []*entities.Clause) *entities.Decision {
	if parsed.Procedure == "" || len(clauses) == 0 || s.encoder == nil {
		return needsReview("Cannot verify procedure coverage - missing information", nil, 0.0)
	}

	procEmb, err := s.encoder.Encode(ctx, parsed.Procedure)
	if err != nil || len(procEmb) == 0 {
		log.Warn().Err(err).Str("procedure", parsed.Procedure).Msg("failed to encode procedure")
		return needsReview("Error in semantic analysis", nil, 0.0)
	}

	var best *entities.Clause
	bestScore := 0.0
	for _, clause := range clauses {
		if !clause.HasEmbedding() {
			continue
		}
		// Strictly greater, so the first-seen clause wins exact ties.
		if score := Cosine(procEmb, clause.Embedding); score > bestScore {
			bestScore = score
			best = clause
		}
	}

	switch {
	case best != nil && bestScore > coverageApproveThreshold:
		if containsExclusionKeyword(best.Text) {
			return &entities.Decision{
				Decision: entities.DecisionRejected,
				Justification: []string{fmt.Sprintf(
					"Procedure '%s' appears to be excluded based on policy terms (similarity: %.2f)",
					parsed.Procedure, bestScore,
				)},
				Clauses:    []string{best.Text},
				Confidence: math.Min(0.9, bestScore+0.1),
			}
		}
		return &entities.Decision{
			Decision: entities.DecisionApproved,
			Justification: []string{fmt.Sprintf(
				"Procedure '%s' is covered according to policy terms (similarity: %.2f)",
				parsed.Procedure, bestScore,
			)},
			Clauses:    []string{best.Text},
			Confidence: bestScore,
		}

	case best != nil && bestScore > coverageReviewThreshold:
		return needsReview(fmt.Sprintf(
			"Procedure '%s' has potential coverage but requires manual review (similarity: %.2f)",
			parsed.Procedure, bestScore,
		), []string{best.Text}, bestScore)

	default:
		return needsReview(fmt.Sprintf(
			"Procedure '%s' not found in policy terms - manual verification needed",
			parsed.Procedure,
		), nil, 0.0)
	}
}

func containsExclusionKeyword(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range exclusionKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func needsReview(reason string, clauses []string, confidence float64) *entities.Decision {
	if clauses == nil {
		clauses = []string{}
	}
	return &entities.Decision{
		Decision:      entities.DecisionNeedsReview,
		Justification: []string{reason},
		Clauses:       clauses,
		Confidence:    confidence,
	}
}

var (
	decisionCounterOnce sync.Once
	decisionCounter     metric.Int64Counter
)

func initDecisionCounter() {
	meter := otel.Meter("github.com/claimsage/backend/decision")
	counter, err := meter.Int64Counter(
		"claims.decision.count",
		metric.WithDescription("Count of coverage decisions by outcome"),
	)
	if err == nil {
		decisionCounter = counter
	}
}

func (s *DecisionService) record(decision *entities.Decision) *entities.Decision {
	decisionCounterOnce.Do(initDecisionCounter)
	if decisionCounter != nil {
		decisionCounter.Add(
			context.Background(),
			1,
			metric.WithAttributes(attribute.String("decision.outcome", string(decision.Decision))),
		)
	}
	return decision
}
