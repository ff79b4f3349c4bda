package entities

// DecisionOutcome is the final classification of a coverage query.
type DecisionOutcome string

const (
	DecisionApproved    DecisionOutcome = "approved"
	DecisionRejected    DecisionOutcome = "rejected"
	DecisionNeedsReview DecisionOutcome = "needs_review"
)

// Decision is the coverage decision for a single query. Decisions are
// created fresh per request and are immutable once returned.
type Decision struct {
	Decision      DecisionOutcome `json:"decision"`
	Justification []string        `json:"justification"`
	Clauses       []string        `json:"clauses"`
	Confidence    float64         `json:"confidence"`
}
