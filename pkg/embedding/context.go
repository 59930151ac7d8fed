package embedding

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const runIDContextKey contextKey = "run_id"

// RequestIDHeader is the header that carries the ingestion run id.
const RequestIDHeader = "X-Request-Id"

// WithRunID returns a context carrying the ingestion run id.
func WithRunID(ctx context.Context, runID uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}

// RunIDFromContext returns the ingestion run id, if present.
func RunIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(runIDContextKey).(uuid.UUID)
	return id, ok
}

// RequestIDTransport sets X-Request-Id on outgoing requests whose context carries a run id.
type RequestIDTransport struct {
	// Base is the underlying transport. http.DefaultTransport is used when nil.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *RequestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	runID, ok := RunIDFromContext(req.Context())
	if !ok || req.Header.Get(RequestIDHeader) != "" {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set(RequestIDHeader, runID.String())
	return base.RoundTrip(clone)
}
