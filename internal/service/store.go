package service

import (
	"context"
	"time"

	"portfolio-api/internal/model"
)

// CredentialStore persists user credentials. Lookups ignore soft-deleted
// users and report model.ErrUserNotFound. Token lookups only match while
// the stored expiry is after now. Every write changes a digest and its
// expiry together in one atomic statement.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByRefreshTokenHash(ctx context.Context, hash string, now time.Time) (model.User, error)
	FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (model.User, error)
	Create(ctx context.Context, user model.User) error

	SetRefreshToken(ctx context.Context, userID string, hash string, expiry time.Time) error
	// RotateRefreshToken fails with model.ErrTokenInvalid when the stored
	// digest is no longer oldHash.
	RotateRefreshToken(ctx context.Context, userID string, oldHash string, newHash string, expiry time.Time) error
	ClearRefreshToken(ctx context.Context, userID string) error

	SetResetToken(ctx context.Context, userID string, hash string, expiry time.Time) error
	// ClearResetToken fails with model.ErrTokenInvalid when the stored
	// digest is no longer tokenHash.
	ClearResetToken(ctx context.Context, userID string, tokenHash string) error
	// ResetPassword fails with model.ErrTokenInvalid unless tokenHash is
	// still the live reset digest at now.
	ResetPassword(ctx context.Context, userID string, tokenHash string, passwordHash string, now time.Time) error
}

// UserStore adds the account management operations.
type UserStore interface {
	CredentialStore

	UpdateAvatar(ctx context.Context, userID string, url string, key string) error
	ClearAvatar(ctx context.Context, userID string) error
	UpdateRole(ctx context.Context, userID string, role string) error
	SoftDelete(ctx context.Context, userID string, at time.Time) error
	List(ctx context.Context, query model.UserQuery) ([]model.User, int, error)
	UpsertAdmin(ctx context.Context, user model.User) error
}
