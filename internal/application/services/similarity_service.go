package services

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/claimsage/backend/internal/domain/providers"
)

// cosineEpsilon keeps the denominator non-zero for degenerate vectors.
const cosineEpsilon = 1e-8

// SimilarityService computes bounded cosine similarity between texts by
// delegating encoding to an EncoderProvider. Encoder failures surface as
// similarity 0.0; the service never returns an error.
type SimilarityService struct {
	encoder providers.EncoderProvider
}

// NewSimilarityService creates a similarity service. A nil encoder is
// allowed and makes every text comparison resolve to 0.0.
func NewSimilarityService(encoder providers.EncoderProvider) *SimilarityService {
	return &SimilarityService{encoder: encoder}
}

// Similarity encodes both texts and returns their cosine similarity,
// clamped into [0,1]. Any encoding failure yields 0.0.
func (s *SimilarityService) Similarity(ctx context.Context, a, b string) float64 {
	if s.encoder == nil || a == "" || b == "" {
		return 0.0
	}

	embA, err := s.encoder.Encode(ctx, a)
	if err != nil {
		log.Warn().Err(err).Msg("encoder failed; similarity treated as zero")
		return 0.0
	}

	embB, err := s.encoder.Encode(ctx, b)
	if err != nil {
		log.Warn().Err(err).Msg("encoder failed; similarity treated as zero")
		return 0.0
	}

	return Cosine(embA, embB)
}

// Cosine returns the cosine similarity between two vectors, clamped into
// [0,1]. Mismatched or empty vectors score 0.0; negative similarities
// collapse to 0.0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	similarity := dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)

	if similarity < 0 {
		return 0.0
	}
	if similarity > 1 {
		return 1.0
	}
	return similarity
}
