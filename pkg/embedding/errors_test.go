package embedding

import (
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"github.com/dense-analysis/pie/pkg/apperrors"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantRetryable bool
		wantStatus    int
	}{
		{
			name:          "api auth error",
			err:           &openai.APIError{HTTPStatusCode: 401, Message: "Incorrect API key provided"},
			wantType:      ErrorTypeAuth,
			wantRetryable: false,
			wantStatus:    401,
		},
		{
			name:          "model not found",
			err:           &openai.APIError{HTTPStatusCode: 404, Message: "model \"nomic\" not found, try pulling it first"},
			wantType:      ErrorTypeModel,
			wantRetryable: false,
			wantStatus:    404,
		},
		{
			name:          "endpoint not found",
			err:           &openai.RequestError{HTTPStatusCode: 404, Err: errors.New("404 page not found")},
			wantType:      ErrorTypeEndpoint,
			wantRetryable: false,
			wantStatus:    404,
		},
		{
			name:          "rate limited",
			err:           &openai.APIError{HTTPStatusCode: 429, Message: "Rate limit reached"},
			wantType:      ErrorTypeRateLimit,
			wantRetryable: true,
			wantStatus:    429,
		},
		{
			name:          "input too long",
			err:           &openai.APIError{HTTPStatusCode: 400, Message: "maximum context length exceeded"},
			wantType:      ErrorTypeInput,
			wantRetryable: false,
			wantStatus:    400,
		},
		{
			name:          "bad gateway",
			err:           &openai.APIError{HTTPStatusCode: 502, Message: "bad gateway"},
			wantType:      ErrorTypeEndpoint,
			wantRetryable: true,
			wantStatus:    502,
		},
		{
			name:          "connection refused",
			err:           errors.New("dial tcp [::1]:11434: connect: connection refused"),
			wantType:      ErrorTypeEndpoint,
			wantRetryable: true,
		},
		{
			name:          "deadline",
			err:           errors.New("context deadline exceeded"),
			wantType:      ErrorTypeEndpoint,
			wantRetryable: true,
		},
		{
			name:          "unknown",
			err:           errors.New("something odd"),
			wantType:      ErrorTypeUnknown,
			wantRetryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantRetryable, got.Retryable)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.ErrorIs(t, got, apperrors.ErrEmbedding)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))
}

func TestClassifyError_AlreadyClassified(t *testing.T) {
	original := NewError(ErrorTypeInput, "text is not valid UTF-8", false, nil)
	assert.Same(t, original, ClassifyError(original))
}

func TestError_Message(t *testing.T) {
	err := NewErrorWithContext(ErrorTypeAuth, "authentication failed", false,
		errors.New("401"), "text-embedding-3-small", "https://api.openai.com/v1", 401)

	assert.Equal(t, "embedding auth HTTP 401 model=text-embedding-3-small authentication failed: 401", err.Error())
}

func TestError_WithoutCause(t *testing.T) {
	err := NewError(ErrorTypeResponse, "expected 3 dimensions, got 2", false, nil)
	assert.ErrorIs(t, err, apperrors.ErrEmbedding)
	assert.Equal(t, "embedding response expected 3 dimensions, got 2", err.Error())
}
