package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIDFromContext(t *testing.T) {
	_, ok := RunIDFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := RunIDFromContext(WithRunID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestRequestIDTransport(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(RequestIDHeader))
	}))
	defer server.Close()

	client := &http.Client{Transport: &RequestIDTransport{}}
	id := uuid.New()

	// With a run id.
	req, err := http.NewRequestWithContext(WithRunID(context.Background(), id), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, req.Header.Get(RequestIDHeader), "caller's request must not be modified")

	// Without a run id.
	req, err = http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{id.String(), ""}, seen)
}
