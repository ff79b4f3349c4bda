package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/claimsage/backend/pkg/config"
)

// Client implements the embedding encoder provider against a local Ollama
// instance.
type Client struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new Ollama embeddings client. When no host is
// configured the standard OLLAMA_HOST resolution applies.
func NewClient(cfg *config.OllamaConfig) (*Client, error) {
	var host *url.URL
	if cfg != nil && cfg.Host != "" {
		parsed, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
		}
		host = parsed
	} else {
		host = envconfig.Host()
	}

	model := "nomic-embed-text"
	if cfg != nil && cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client:  api.NewClient(host, http.DefaultClient),
		model:   model,
		timeout: 30 * time.Second,
	}, nil
}

// Encode returns the embedding vector for the given text.
func (c *Client) Encode(ctx context.Context, text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  c.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	return resp.Embedding, nil
}
