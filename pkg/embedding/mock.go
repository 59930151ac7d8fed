package embedding

import (
	"context"
	"hash/fnv"
	"sync"
)

// MockClient is a configurable mock for testing embedding functionality.
// Set the function fields to control behavior in tests.
type MockClient struct {
	// CreateEmbeddingsFunc is called when CreateEmbeddings is invoked.
	// If nil, HashEmbeddings with Dims dimensions is used.
	CreateEmbeddingsFunc func(ctx context.Context, inputs []string) ([][]float32, error)

	// Dims is the vector length produced by the default behavior. Defaults to 8.
	Dims int

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Endpoint is returned by GetEndpoint. Defaults to "http://mock-endpoint".
	Endpoint string

	mu sync.Mutex
	// Call tracking for verification
	CreateEmbeddingsCalls int
	Inputs                []string
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient(dims int) *MockClient {
	return &MockClient{
		Dims:     dims,
		Model:    "mock-model",
		Endpoint: "http://mock-endpoint",
	}
}

// CreateEmbeddings implements Client.
func (m *MockClient) CreateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	m.mu.Lock()
	m.CreateEmbeddingsCalls++
	m.Inputs = append(m.Inputs, inputs...)
	m.mu.Unlock()

	if m.CreateEmbeddingsFunc != nil {
		return m.CreateEmbeddingsFunc(ctx, inputs)
	}
	dims := m.Dims
	if dims <= 0 {
		dims = 8
	}
	return HashEmbeddings(dims, inputs), nil
}

// Calls returns the number of CreateEmbeddings calls so far.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreateEmbeddingsCalls
}

// GetModel implements Client.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// GetEndpoint implements Client.
func (m *MockClient) GetEndpoint() string {
	if m.Endpoint == "" {
		return "http://mock-endpoint"
	}
	return m.Endpoint
}

// HashEmbeddings returns a deterministic non-zero vector per input.
// Equal inputs always produce equal vectors.
func HashEmbeddings(dims int, inputs []string) [][]float32 {
	out := make([][]float32, len(inputs))
	for i, input := range inputs {
		h := fnv.New64a()
		h.Write([]byte(input))
		seed := h.Sum64()

		v := make([]float32, dims)
		for j := range v {
			seed ^= seed << 13
			seed ^= seed >> 7
			seed ^= seed << 17
			v[j] = float32(seed%2001)/1000 - 1
		}
		v[0] += 2 // keep every vector away from zero
		out[i] = v
	}
	return out
}
