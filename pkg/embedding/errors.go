package embedding

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dense-analysis/pie/pkg/apperrors"
)

// ErrorType classifies embedding failures.
type ErrorType string

const (
	ErrorTypeEndpoint  ErrorType = "endpoint"   // unreachable, timed out or 5xx
	ErrorTypeAuth      ErrorType = "auth"       // rejected credentials
	ErrorTypeModel     ErrorType = "model"      // unknown model
	ErrorTypeRateLimit ErrorType = "rate_limit" // 429
	ErrorTypeInput     ErrorType = "input"      // text the model refuses, including invalid UTF-8
	ErrorTypeResponse  ErrorType = "response"   // malformed response, wrong count or dimensions
	ErrorTypeUnknown   ErrorType = "unknown"    // anything else
)

// Error represents a structured embedding error with classification.
// Every *Error matches apperrors.ErrEmbedding with errors.Is.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation can be retried
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
	Model      string    // Model name if known
	Endpoint   string    // Endpoint URL if known
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, "embedding "+string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{apperrors.ErrEmbedding}
	}
	return []error{apperrors.ErrEmbedding, e.Cause}
}

// IsRetryable implements the retry.RetryableError interface.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured embedding error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// NewErrorWithContext creates a new structured embedding error with additional context.
func NewErrorWithContext(errType ErrorType, message string, retryable bool, cause error, model, endpoint string, statusCode int) *Error {
	return &Error{
		Type:       errType,
		Message:    message,
		Retryable:  retryable,
		Cause:      cause,
		Model:      model,
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// ClassifyError categorizes an error from the embedding endpoint.
// Status codes come from go-openai's typed errors when available, with message
// patterns as the fallback for transport failures.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var embErr *Error
	if errors.As(err, &embErr) {
		return embErr
	}

	statusCode := statusCodeOf(err)
	lower := strings.ToLower(err.Error())

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "incorrect api key"):
		return withStatus(NewError(ErrorTypeAuth, "authentication failed", false, err), statusCode)

	case strings.Contains(lower, "model") &&
		(strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist")):
		return withStatus(NewError(ErrorTypeModel, "model not found", false, err), statusCode)

	case statusCode == http.StatusNotFound:
		return withStatus(NewError(ErrorTypeEndpoint, "endpoint not found", false, err), statusCode)

	case statusCode == http.StatusTooManyRequests || strings.Contains(lower, "rate limit"):
		return withStatus(NewError(ErrorTypeRateLimit, "rate limited", true, err), statusCode)

	case statusCode == http.StatusBadRequest || statusCode == http.StatusRequestEntityTooLarge ||
		statusCode == http.StatusUnprocessableEntity:
		return withStatus(NewError(ErrorTypeInput, "input rejected", false, err), statusCode)

	case statusCode >= 500:
		return withStatus(NewError(ErrorTypeEndpoint, "server error", true, err), statusCode)

	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return withStatus(NewError(ErrorTypeEndpoint, "connection failed", true, err), statusCode)

	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return withStatus(NewError(ErrorTypeEndpoint, "request timeout", true, err), statusCode)
	}

	return withStatus(NewError(ErrorTypeUnknown, "embedding request failed", false, err), statusCode)
}

func withStatus(e *Error, statusCode int) *Error {
	e.StatusCode = statusCode
	return e
}

func statusCodeOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// IsRetryable returns true if the error is a retryable embedding error.
func IsRetryable(err error) bool {
	var embErr *Error
	if errors.As(err, &embErr) {
		return embErr.Retryable
	}
	return false
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var embErr *Error
	if errors.As(err, &embErr) {
		return embErr.Type
	}
	return ErrorTypeUnknown
}
