// Package token mints and verifies the signed access/refresh tokens and
// computes the one-way digests that are persisted in place of raw tokens.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"portfolio-api/internal/model"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	resetTokenBytes = 32
)

// Subject is the identity carried inside a token.
type Subject struct {
	UserID string
	Email  string
	Role   string
}

type claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

type Option func(*Codec)

// WithClock replaces time.Now for minting and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret string, accessTTL time.Duration, refreshTTL time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive (access=%s refresh=%s)", accessTTL, refreshTTL)
	}

	c := &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	return c, nil
}

func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

func (c *Codec) MintAccessToken(sub Subject) (string, error) {
	return c.mint(sub, TypeAccess, c.accessTTL)
}

func (c *Codec) MintRefreshToken(sub Subject) (string, error) {
	return c.mint(sub, TypeRefresh, c.refreshTTL)
}

func (c *Codec) mint(sub Subject, typ string, ttl time.Duration) (string, error) {
	if sub.UserID == "" {
		return "", errors.New("token subject is required")
	}

	now := c.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: sub.UserID,
		Email:  sub.Email,
		Role:   sub.Role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported
// as model.ErrTokenInvalid so callers cannot tell the causes apart.
func (c *Codec) Verify(raw string) (model.AuthClaims, error) {
	var parsed claims
	tok, err := c.parser.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid || parsed.UserID == "" || parsed.UserID != parsed.Subject {
		return model.AuthClaims{}, model.ErrTokenInvalid
	}

	return model.AuthClaims{
		UserID:  parsed.UserID,
		Email:   parsed.Email,
		Role:    parsed.Role,
		Type:    parsed.Type,
		TokenID: parsed.ID,
	}, nil
}

// VerifyType is Verify plus a check on the token kind.
func (c *Codec) VerifyType(raw string, typ string) (model.AuthClaims, error) {
	verified, err := c.Verify(raw)
	if err != nil {
		return model.AuthClaims{}, err
	}
	if verified.Type != typ {
		return model.AuthClaims{}, model.ErrTokenInvalid
	}
	return verified, nil
}

// Digest is the storage form of a token: lowercase hex sha256. It does not
// involve the signing secret.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewResetToken returns 32 random bytes, hex encoded.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
