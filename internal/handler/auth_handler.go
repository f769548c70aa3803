package handler

import (
	"errors"
	"net/http"
	"strings"

	"portfolio-api/internal/middleware"
	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/apierror"
)

const (
	resetRequestedMessage = "If an account with that email exists, a password reset link has been sent."
	resetDeliveryMessage  = "Failed to send password reset email. Please try again later."
	resetInvalidMessage   = "Invalid or expired reset token."
)

// AuthHandler serves /api/v1/users.
type AuthHandler struct {
	users    *service.UserService
	sessions *service.SessionService
	resets   *service.PasswordResetService
	cookie   middleware.SessionCookie
	forms    formDecoder
}

func NewAuthHandler(users *service.UserService, sessions *service.SessionService, resets *service.PasswordResetService, cookie middleware.SessionCookie, maxUploadSize int64) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		resets:   resets,
		cookie:   cookie,
		forms:    formDecoder{maxUploadSize: maxUploadSize},
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered successfully", user, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		writeError(w, apierror.Validation("email", "Email and password are required"))
		return
	}

	session, err := h.sessions.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cookie.Set(w, session.AccessToken)
	writeSuccess(w, http.StatusOK, "Login successful", session, nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, apierror.New("TOKEN_INVALID", "Refresh token is required", "refreshToken", http.StatusUnauthorized))
		return
	}

	session, err := h.sessions.Refresh(r.Context(), payload.RefreshToken)
	if errors.Is(err, model.ErrTokenInvalid) {
		writeErrorMessage(w, err, "Invalid or expired refresh token")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	h.cookie.Set(w, session.AccessToken)
	writeSuccess(w, http.StatusOK, "Token refreshed successfully", session, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	if err := h.sessions.Logout(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	h.cookie.Clear(w)
	writeSuccess(w, http.StatusOK, "Logout successful", nil, nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload model.ForgotPasswordRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if strings.TrimSpace(payload.Email) == "" {
		writeError(w, apierror.Validation("email", "Email is required"))
		return
	}

	err := h.resets.RequestReset(r.Context(), payload.Email)
	if errors.Is(err, model.ErrDeliveryFailure) {
		writeErrorMessage(w, err, resetDeliveryMessage)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resetRequestedMessage, nil, nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload model.ResetPasswordRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	err := h.resets.ResetPassword(r.Context(), payload.Token, payload.NewPassword)
	if errors.Is(err, model.ErrTokenInvalid) {
		writeError(w, apierror.New("TOKEN_INVALID", resetInvalidMessage, "", http.StatusBadRequest))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password has been reset successfully. You can now login with your new password.", nil, nil)
}

// Profile reports in X-Cache whether the answer came from the cache.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	user, hit, err := h.users.Profile(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeSuccess(w, http.StatusOK, "User profile fetched successfully", user, nil)
}

func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	data, err := h.forms.single(w, r, "avatar")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UploadAvatar(r.Context(), claims.UserID, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Avatar uploaded successfully", user, nil)
}

func (h *AuthHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	if err := h.users.DeleteAvatar(r.Context(), claims.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Avatar deleted successfully", nil, nil)
}
