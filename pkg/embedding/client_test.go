package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/apperrors"
)

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		Endpoint:   server.URL + "/v1/",
		Model:      "nomic-embed-text",
		Dimensions: 3,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(&Config{Model: "m"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient(&Config{Endpoint: "http://localhost"}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenAIClient_CreateEmbeddings_OrdersByIndex(t *testing.T) {
	var got embeddingRequest
	var requestID string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		requestID = r.Header.Get(RequestIDHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		// Deliberately reversed.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "nomic-embed-text",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0, 1, 0]},
				{"object": "embedding", "index": 0, "embedding": [1, 0, 0]}
			],
			"usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	})

	runID := uuid.New()
	ctx := WithRunID(context.Background(), runID)
	vectors, err := client.CreateEmbeddings(ctx, []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, vectors)
	assert.Equal(t, []string{"first", "second"}, got.Input)
	assert.Equal(t, "nomic-embed-text", got.Model)
	assert.Equal(t, 3, got.Dimensions)
	assert.Equal(t, runID.String(), requestID)
}

func TestOpenAIClient_CreateEmbeddings_CountMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "data": [{"object": "embedding", "index": 0, "embedding": [1, 0, 0]}]}`))
	})

	_, err := client.CreateEmbeddings(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmbedding)
	assert.Equal(t, ErrorTypeResponse, GetErrorType(err))
}

func TestOpenAIClient_CreateEmbeddings_AuthError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	})

	_, err := client.CreateEmbeddings(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmbedding)

	var embErr *Error
	require.ErrorAs(t, err, &embErr)
	assert.Equal(t, ErrorTypeAuth, embErr.Type)
	assert.Equal(t, http.StatusUnauthorized, embErr.StatusCode)
	assert.Equal(t, "nomic-embed-text", embErr.Model)
	assert.False(t, embErr.Retryable)
}

func TestOpenAIClient_CreateEmbeddings_ServerErrorIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "model is loading", "type": "server_error"}}`))
	})

	_, err := client.CreateEmbeddings(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, ErrorTypeEndpoint, GetErrorType(err))
}

func TestOpenAIClient_CreateEmbeddings_EmptyInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	vectors, err := client.CreateEmbeddings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}
