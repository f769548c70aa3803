package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"portfolio-api/internal/model"
	"portfolio-api/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, message string, data any, meta *model.Meta) {
	writeJSON(w, status, model.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func writeJSON(w http.ResponseWriter, status int, body model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorShape maps an error to its status and envelope. Anything it does not
// recognise is a 500 with a generic message.
func errorShape(err error) (int, *model.APIError) {
	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.HTTPStatus, &model.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, &model.APIError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	case errors.Is(err, model.ErrTokenInvalid):
		return http.StatusUnauthorized, &model.APIError{Code: "TOKEN_INVALID", Message: "Invalid or expired token"}
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, &model.APIError{Code: "UNAUTHORIZED", Message: "Authentication required"}
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, &model.APIError{Code: "FORBIDDEN", Message: "Access denied"}
	case errors.Is(err, model.ErrUserNotFound):
		return http.StatusNotFound, &model.APIError{Code: "NOT_FOUND", Message: "User not found"}
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, &model.APIError{Code: "NOT_FOUND", Message: "Resource not found"}
	case errors.Is(err, model.ErrUserAlreadyExists), errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict, &model.APIError{Code: "ALREADY_EXISTS", Message: "Resource already exists"}
	case errors.Is(err, model.ErrDeliveryFailure):
		return http.StatusInternalServerError, &model.APIError{Code: "DELIVERY_FAILURE", Message: "Failed to send email. Please try again later."}
	case errors.Is(err, model.ErrStorageDisabled):
		return http.StatusServiceUnavailable, &model.APIError{Code: "STORAGE_DISABLED", Message: "Image uploads are not configured"}
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, &model.APIError{Code: "BAD_REQUEST", Message: "Invalid input"}
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
		return http.StatusInternalServerError, &model.APIError{Code: "INTERNAL_ERROR", Message: "Internal server error"}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := errorShape(err)
	writeJSON(w, status, model.APIResponse{Success: false, Message: body.Message, Error: body})
}

// writeErrorMessage renders err's status and code with a route-specific
// message.
func writeErrorMessage(w http.ResponseWriter, err error, message string) {
	status, body := errorShape(err)
	body.Message = message
	writeJSON(w, status, model.APIResponse{Success: false, Message: message, Error: body})
}

// maxJSONBody bounds every JSON request body. Uploads go through
// formDecoder and its own limit.
const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierror.New("PAYLOAD_TOO_LARGE", "Request body too large", fmt.Sprintf("limit is %d bytes", maxJSONBody), http.StatusRequestEntityTooLarge)
		}
		return apierror.BadRequest("Invalid JSON body", err.Error())
	}
	return nil
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, apierror.New("NOT_FOUND", "Route "+r.Method+" "+r.URL.Path+" not found", "", http.StatusNotFound))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, apierror.New("METHOD_NOT_ALLOWED", "Method "+r.Method+" not allowed", "", http.StatusMethodNotAllowed))
}
