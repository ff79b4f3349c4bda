package entities

// Clause is a unit of policy text, optionally paired with a precomputed
// semantic embedding. Embeddings are computed once during the maintenance
// phase and treated as immutable afterwards.
type Clause struct {
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// HasEmbedding reports whether the clause carries a usable embedding.
func (c *Clause) HasEmbedding() bool {
	return len(c.Embedding) > 0
}
