package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFor maps an error class to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, contractx.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, storex.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, contractx.ErrModelInvoke), errors.Is(err, contractx.ErrSchemaViolation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
