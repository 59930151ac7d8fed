package apperrors

import "errors"

// Failure kinds surfaced by the ingestion pipeline and the similarity matcher.
// Callers classify with errors.Is; concrete causes are wrapped underneath.
var (
	// ErrConnection means the store is unreachable or failed its liveness check.
	ErrConnection = errors.New("store connection failed")
	// ErrEmbedding means the embedding model could not embed the given input.
	ErrEmbedding = errors.New("embedding failed")
	// ErrPersistence means the store rejected or failed a write.
	ErrPersistence = errors.New("persistence failed")
	// ErrQuery means a read against the store failed.
	ErrQuery = errors.New("store query failed")

	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)
