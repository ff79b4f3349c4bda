package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/claimsage/backend/internal/domain/providers"
	"github.com/claimsage/backend/pkg/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the embedding encoder provider against the OpenAI
// embeddings API. Every call is bounded by the HTTP client timeout; a
// timeout surfaces as an encoder failure, never a hang.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a new OpenAI embeddings client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.EmbeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "openai-embeddings",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
		breaker: breaker,
	}, nil
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
}

type embeddingEnvelope struct {
	Data []embeddingData `json:"data"`
}

// Encode returns the embedding vector for the given text.
func (c *Client) Encode(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, errors.New("text is required")
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordEmbeddingMetric(ctx, c.model, 0, 0, err)
			return nil, err
		}
		recordRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.encode(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", providers.ErrEncoderUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return result.([]float64), nil
}

// Close releases the rate limiter's refill goroutine. Safe to call more
// than once and on a client without a limiter.
func (c *Client) Close() {
	if c.limiter != nil {
		c.limiter.close()
	}
}

func (c *Client) encode(ctx context.Context, text string) ([]float64, error) {
	payload := map[string]interface{}{
		"model": c.model,
		"input": text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordEmbeddingMetric(ctx, c.model, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("openai embedding request failed with status %d", resp.StatusCode)
		recordEmbeddingMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	var envelope embeddingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordEmbeddingMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	if len(envelope.Data) == 0 || len(envelope.Data[0].Embedding) == 0 {
		err := errors.New("openai response missing embedding")
		recordEmbeddingMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	recordEmbeddingMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return envelope.Data[0].Embedding, nil
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
		stop:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-bucket.stop:
				return
			case <-ticker.C:
				select {
				case bucket.tokens <- struct{}{}:
				default:
				}
			}
		}
	}()

	return bucket
}

type tokenBucket struct {
	tokens   chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

// close stops the refill goroutine. Waiters keep draining whatever tokens
// remain in the bucket.
func (b *tokenBucket) close() {
	b.stopOnce.Do(func() { close(b.stop) })
}

type embeddingMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var (
	embeddingMetricsOnce sync.Once
	embeddingMetricsInit bool
	metrics              embeddingMetrics
)

func ensureEmbeddingMetrics() {
	embeddingMetricsOnce.Do(initEmbeddingMetrics)
}

func initEmbeddingMetrics() {
	meter := otel.Meter("github.com/claimsage/backend/openai")

	requestCount, err := meter.Int64Counter(
		"ai.openai.embedding.request.count",
		metric.WithDescription("Number of OpenAI embedding requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.openai.embedding.request.duration",
		metric.WithDescription("OpenAI embedding request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.openai.embedding.request.errors",
		metric.WithDescription("Number of OpenAI embedding request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.openai.embedding.rate_limit.wait",
		metric.WithDescription("Time spent waiting for the OpenAI rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	metrics = embeddingMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	embeddingMetricsInit = true
}

func recordEmbeddingMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureEmbeddingMetrics()
	if !embeddingMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	metrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		metrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureEmbeddingMetrics()
	if !embeddingMetricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	metrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
