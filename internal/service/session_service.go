package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/model"
	"portfolio-api/internal/token"
)

// SessionService runs login, refresh-token rotation and logout.
type SessionService struct {
	store     CredentialStore
	codec     *token.Codec
	cache     cache.Cache
	now       func() time.Time
	dummyHash string
}

func NewSessionService(store CredentialStore, codec *token.Codec, c cache.Cache, now func() time.Time) (*SessionService, error) {
	if now == nil {
		now = time.Now
	}
	if c == nil {
		c = cache.Nop{}
	}

	// Compared against when the email is unknown so both failure paths
	// spend the same bcrypt time.
	dummy, err := hashPassword("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &SessionService{store: store, codec: codec, cache: c, now: now, dummyHash: dummy}, nil
}

// Login fails with model.ErrInvalidCredentials for an unknown email, a
// deleted account or a wrong password alike.
func (s *SessionService) Login(ctx context.Context, email string, password string) (model.Session, error) {
	user, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrUserNotFound) {
		passwordMatches(s.dummyHash, password)
		return model.Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("login: %w", err)
	}

	if !passwordMatches(user.PasswordHash, password) {
		return model.Session{}, model.ErrInvalidCredentials
	}

	session, refreshHash, expiry, err := s.issue(user)
	if err != nil {
		return model.Session{}, err
	}

	if err := s.store.SetRefreshToken(ctx, user.ID, refreshHash, expiry); err != nil {
		return model.Session{}, fmt.Errorf("login: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID)
	return session, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// be the one currently stored for its user; after rotation it is dead even
// though its signature and expiry are still valid.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (model.Session, error) {
	claims, err := s.codec.VerifyType(refreshToken, token.TypeRefresh)
	if err != nil {
		return model.Session{}, model.ErrTokenInvalid
	}

	oldHash := token.Digest(refreshToken)
	user, err := s.store.FindByRefreshTokenHash(ctx, oldHash, s.now())
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Session{}, model.ErrTokenInvalid
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("refresh: %w", err)
	}
	if user.ID != claims.UserID {
		return model.Session{}, model.ErrTokenInvalid
	}

	session, newHash, expiry, err := s.issue(user)
	if err != nil {
		return model.Session{}, err
	}

	if err := s.store.RotateRefreshToken(ctx, user.ID, oldHash, newHash, expiry); err != nil {
		if errors.Is(err, model.ErrTokenInvalid) {
			return model.Session{}, model.ErrTokenInvalid
		}
		return model.Session{}, fmt.Errorf("refresh: %w", err)
	}

	s.invalidateProfile(ctx, user.ID)
	return session, nil
}

// Logout revokes the stored refresh token. Logging out twice is fine.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.store.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return fmt.Errorf("logout: %w", err)
	}

	s.invalidateProfile(ctx, userID)
	return nil
}

// Authenticate validates an access token for the auth middleware.
func (s *SessionService) Authenticate(raw string) (model.AuthClaims, error) {
	return s.codec.VerifyType(raw, token.TypeAccess)
}

func (s *SessionService) issue(user model.User) (model.Session, string, time.Time, error) {
	sub := token.Subject{UserID: user.ID, Email: user.Email, Role: user.Role}

	access, err := s.codec.MintAccessToken(sub)
	if err != nil {
		return model.Session{}, "", time.Time{}, err
	}
	refresh, err := s.codec.MintRefreshToken(sub)
	if err != nil {
		return model.Session{}, "", time.Time{}, err
	}

	session := model.Session{
		UserView:     user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
	}
	return session, token.Digest(refresh), s.now().Add(s.codec.RefreshTTL()), nil
}

func (s *SessionService) invalidateProfile(ctx context.Context, userID string) {
	if err := s.cache.Delete(context.WithoutCancel(ctx), cache.ProfileKey(userID)); err != nil {
		slog.Warn("invalidate profile cache", "user_id", userID, "error", err)
	}
}
