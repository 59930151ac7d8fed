// Package embedding turns issue text into vectors using an OpenAI-compatible
// embeddings endpoint (OpenAI, Ollama, vLLM, TEI and similar).
package embedding

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client sends batches of text to an embedding model.
type Client interface {
	// CreateEmbeddings returns one vector per input, in input order.
	CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error)
	GetModel() string
	GetEndpoint() string
}

// Config holds configuration for creating an embedding client.
type Config struct {
	Endpoint string // Base URL, e.g., "https://api.openai.com/v1"
	Model    string // Model name, e.g., "text-embedding-3-small"
	APIKey   string // Optional for local endpoints
	// Dimensions is sent with each request when positive, for models that
	// support shortened embeddings.
	Dimensions int
	Timeout    time.Duration
}

// OpenAIClient is the production Client.
type OpenAIClient struct {
	client     *openai.Client
	endpoint   string
	model      string
	dimensions int
	logger     *zap.Logger
}

var _ Client = (*OpenAIClient)(nil)

// NewClient creates a new OpenAI-compatible embedding client.
// Requests carry the ingestion run id from the context as an X-Request-Id header.
func NewClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	clientConfig.HTTPClient = &http.Client{
		Transport: &RequestIDTransport{},
		Timeout:   timeout,
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientConfig),
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		logger:     logger.Named("embedding-client"),
	}, nil
}

// CreateEmbeddings generates embeddings for multiple inputs in a single request.
func (c *OpenAIClient) CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	start := time.Now()
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(c.model),
		Input:      inputs,
		Dimensions: c.dimensions,
	})
	if err != nil {
		classified := ClassifyError(err)
		classified.Model = c.model
		classified.Endpoint = c.endpoint
		return nil, classified
	}

	if len(resp.Data) != len(inputs) {
		return nil, NewErrorWithContext(ErrorTypeResponse,
			fmt.Sprintf("expected %d embeddings, got %d", len(inputs), len(resp.Data)),
			false, nil, c.model, c.endpoint, 0)
	}

	// Servers are allowed to return items out of order; Index is authoritative.
	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	embeddings := make([][]float32, len(data))
	for i, d := range data {
		if d.Index != i {
			return nil, NewErrorWithContext(ErrorTypeResponse,
				fmt.Sprintf("embedding indexes are not contiguous at %d", d.Index),
				false, nil, c.model, c.endpoint, 0)
		}
		embeddings[i] = d.Embedding
	}

	c.logger.Debug("Created embeddings",
		zap.String("model", c.model),
		zap.Int("inputs", len(inputs)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Duration("elapsed", time.Since(start)))

	return embeddings, nil
}

// GetModel returns the configured model name.
func (c *OpenAIClient) GetModel() string {
	return c.model
}

// GetEndpoint returns the configured endpoint.
func (c *OpenAIClient) GetEndpoint() string {
	return c.endpoint
}
