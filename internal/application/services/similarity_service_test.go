package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/claimsage/backend/internal/application/services"
)

// stubEncoder returns canned vectors per input text.
type stubEncoder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (s *stubEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func TestSimilarityService_IdenticalTexts(t *testing.T) {
	encoder := &stubEncoder{vectors: map[string][]float64{
		"knee surgery": {3, 4},
	}}
	svc := services.NewSimilarityService(encoder)

	got := svc.Similarity(context.Background(), "knee surgery", "knee surgery")

	assert.InDelta(t, 1.0, got, 1e-6)
}

func TestSimilarityService_OrthogonalTexts(t *testing.T) {
	encoder := &stubEncoder{vectors: map[string][]float64{
		"knee surgery": {1, 0},
		"dental care":  {0, 1},
	}}
	svc := services.NewSimilarityService(encoder)

	got := svc.Similarity(context.Background(), "knee surgery", "dental care")

	assert.Zero(t, got)
}

func TestSimilarityService_NegativeSimilarityClampedToZero(t *testing.T) {
	encoder := &stubEncoder{vectors: map[string][]float64{
		"a": {1, 0},
		"b": {-1, 0},
	}}
	svc := services.NewSimilarityService(encoder)

	assert.Zero(t, svc.Similarity(context.Background(), "a", "b"))
}

func TestSimilarityService_EncoderFailure(t *testing.T) {
	encoder := &stubEncoder{err: errors.New("upstream down")}
	svc := services.NewSimilarityService(encoder)

	assert.Zero(t, svc.Similarity(context.Background(), "a", "b"))
}

func TestSimilarityService_NilEncoder(t *testing.T) {
	svc := services.NewSimilarityService(nil)

	assert.Zero(t, svc.Similarity(context.Background(), "a", "b"))
}

func TestSimilarityService_EmptyInput(t *testing.T) {
	encoder := &stubEncoder{vectors: map[string][]float64{"a": {1}}}
	svc := services.NewSimilarityService(encoder)

	assert.Zero(t, svc.Similarity(context.Background(), "", "a"))
	assert.Zero(t, svc.Similarity(context.Background(), "a", ""))
	assert.Zero(t, encoder.calls)
}

func TestCosine_MismatchedLengths(t *testing.T) {
	assert.Zero(t, services.Cosine([]float64{1, 2}, []float64{1}))
	assert.Zero(t, services.Cosine(nil, nil))
}

func TestCosine_Bounded(t *testing.T) {
	got := services.Cosine([]float64{1, 2, 2}, []float64{1, 2, 2})
	assert.InDelta(t, 1.0, got, 1e-6)
	assert.LessOrEqual(t, got, 1.0)
}
