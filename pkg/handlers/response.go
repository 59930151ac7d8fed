package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps a service error to a status code and error code.
// Internal failures are logged and reported without their cause.
func WriteServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	statusCode, errorCode, message := http.StatusInternalServerError, "internal_error", "internal error"

	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		statusCode, errorCode, message = http.StatusBadRequest, "invalid_argument", err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		statusCode, errorCode, message = http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, apperrors.ErrConnection):
		statusCode, errorCode, message = http.StatusServiceUnavailable, "store_unavailable", "store unavailable"
	case errors.Is(err, apperrors.ErrQuery):
		errorCode, message = "query_failed", "query failed"
	}

	if statusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
	}
	if err := ErrorResponse(w, statusCode, errorCode, message); err != nil {
		logger.Error("Failed to encode error response", zap.Error(err))
	}
}
