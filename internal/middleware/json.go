package middleware

import (
	"encoding/json"
	"net/http"

	"portfolio-api/internal/model"
)

// writeError renders the error envelope for middleware that rejects a
// request before it reaches a handler.
func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Message: message,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
