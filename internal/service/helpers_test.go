package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/model"
	"portfolio-api/internal/testutil"
	"portfolio-api/internal/token"
)

const (
	testAccessTTL  = 15 * time.Minute
	testRefreshTTL = 7 * 24 * time.Hour
)

type fixture struct {
	clock    *testutil.Clock
	store    *testutil.MemoryCredentialStore
	mailer   *testutil.Mailer
	cache    *cache.Memory
	codec    *token.Codec
	sessions *SessionService
	resets   *PasswordResetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:  testutil.NewClock(time.Now().UTC()),
		store:  testutil.NewMemoryCredentialStore(),
		mailer: &testutil.Mailer{},
	}
	f.cache = cache.NewMemoryWithClock(f.clock.Now)

	codec, err := token.NewCodec("test-secret", testAccessTTL, testRefreshTTL, token.WithClock(f.clock.Now))
	require.NoError(t, err)
	f.codec = codec

	f.sessions, err = NewSessionService(f.store, codec, f.cache, f.clock.Now)
	require.NoError(t, err)

	f.resets = NewPasswordResetService(f.store, f.mailer, f.cache, PasswordResetConfig{
		TokenTTL:    time.Hour,
		SendTimeout: 200 * time.Millisecond,
		FrontendURL: "http://localhost:3000",
	}, f.clock.Now)

	return f
}

func (f *fixture) addUser(t *testing.T, name string, email string, password string) model.User {
	t.Helper()

	hash, err := hashPassword(password)
	require.NoError(t, err)

	now := f.clock.Now()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.store.Create(context.Background(), user))
	return user
}

var resetTokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)

func (f *fixture) lastResetToken(t *testing.T) string {
	t.Helper()

	msg, ok := f.mailer.Last()
	require.True(t, ok, "no email was sent")

	m := resetTokenPattern.FindStringSubmatch(msg.Text)
	require.Len(t, m, 2, "reset link not found in %q", msg.Text)
	return m[1]
}
