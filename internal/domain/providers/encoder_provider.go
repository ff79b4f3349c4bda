package providers

import (
	"context"
	"errors"
)

// ErrEncoderUnavailable indicates no text encoder is configured or the
// configured encoder is currently unusable. Callers degrade to needs_review
// rather than failing.
var ErrEncoderUnavailable = errors.New("text encoder unavailable")

// EncoderProvider produces fixed-length embedding vectors for text.
// Implementations must be deterministic for identical input and must return
// errors instead of panicking; callers treat any error as an encoder
// failure and degrade gracefully.
type EncoderProvider interface {
	// Encode returns the embedding vector for the given text.
	Encode(ctx context.Context, text string) ([]float64, error)
}
