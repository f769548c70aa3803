package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/mail"
	"portfolio-api/internal/model"
	"portfolio-api/internal/token"
)

type PasswordResetConfig struct {
	TokenTTL    time.Duration
	SendTimeout time.Duration
	FrontendURL string
}

// PasswordResetService issues single-use reset tokens by email and consumes
// them.
type PasswordResetService struct {
	store  CredentialStore
	mailer mail.Sender
	cache  cache.Cache
	cfg    PasswordResetConfig
	now    func() time.Time
}

func NewPasswordResetService(store CredentialStore, mailer mail.Sender, c cache.Cache, cfg PasswordResetConfig, now func() time.Time) *PasswordResetService {
	if now == nil {
		now = time.Now
	}
	if c == nil {
		c = cache.Nop{}
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	return &PasswordResetService{store: store, mailer: mailer, cache: c, cfg: cfg, now: now}
}

// RequestReset returns nil for unknown addresses so callers cannot probe
// which emails have accounts. It fails only with model.ErrDeliveryFailure
// (the stored token is withdrawn first) or an infrastructure error.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrUserNotFound) {
		slog.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("request reset: %w", err)
	}

	raw, err := token.NewResetToken()
	if err != nil {
		return err
	}

	digest := token.Digest(raw)
	if err := s.store.SetResetToken(ctx, user.ID, digest, s.now().Add(s.cfg.TokenTTL)); err != nil {
		return fmt.Errorf("request reset: %w", err)
	}

	msg, err := mail.ResetMessage(user.Email, user.Name, mail.ResetURL(s.cfg.FrontendURL, raw), s.cfg.TokenTTL)
	if err == nil {
		sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
		err = s.mailer.Send(sendCtx, msg)
		cancel()
	}
	if err != nil {
		clearErr := s.store.ClearResetToken(context.WithoutCancel(ctx), user.ID, digest)
		switch {
		case errors.Is(clearErr, model.ErrTokenInvalid):
			slog.Debug("undelivered reset token already replaced", "user_id", user.ID)
		case clearErr != nil:
			slog.Error("withdraw undelivered reset token", "user_id", user.ID, "error", clearErr)
		}
		slog.Error("password reset email failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %v", model.ErrDeliveryFailure, err)
	}

	slog.Info("password reset email sent", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset token. Unknown, expired and already used
// tokens all fail with model.ErrTokenInvalid. Existing refresh tokens are
// revoked along with the password change.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken string, newPassword string) error {
	if strings.TrimSpace(rawToken) == "" {
		return model.ErrTokenInvalid
	}
	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	now := s.now()
	digest := token.Digest(rawToken)

	user, err := s.store.FindByResetTokenHash(ctx, digest, now)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.ResetPassword(ctx, user.ID, digest, hash, now); err != nil {
		if errors.Is(err, model.ErrTokenInvalid) {
			return model.ErrTokenInvalid
		}
		return fmt.Errorf("reset password: %w", err)
	}

	if err := s.cache.Delete(context.WithoutCancel(ctx), cache.ProfileKey(user.ID)); err != nil {
		slog.Warn("invalidate profile cache", "user_id", user.ID, "error", err)
	}

	slog.Info("password reset completed", "user_id", user.ID)
	return nil
}
