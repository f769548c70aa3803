package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/model"
	"portfolio-api/internal/token"
)

func TestLoginThenVerifyReturnsSameID(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "Alice", "alice@example.com", "secret123")

	session, err := f.sessions.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	claims, err := f.codec.Verify(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID)
	assert.Equal(t, token.TypeAccess, claims.Type)

	assert.Equal(t, alice.ID, session.ID)
	assert.Equal(t, "alice@example.com", session.Email)
	assert.Equal(t, int64(testAccessTTL.Seconds()), session.ExpiresIn)

	authed, err := f.sessions.Authenticate(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, authed.UserID)

	_, err = f.sessions.Authenticate(session.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestLoginStoresOnlyTheDigest(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "Alice", "alice@example.com", "secret123")

	session, err := f.sessions.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)

	stored, ok := f.store.Get(alice.ID)
	require.True(t, ok)
	require.NotNil(t, stored.RefreshTokenHash)
	require.NotNil(t, stored.RefreshTokenExpiry)
	assert.Equal(t, token.Digest(session.RefreshToken), *stored.RefreshTokenHash)
	assert.NotEqual(t, session.RefreshToken, *stored.RefreshTokenHash)
	assert.WithinDuration(t, f.clock.Now().Add(testRefreshTTL), *stored.RefreshTokenExpiry, time.Second)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	gone := f.addUser(t, "Gone", "gone@example.com", "secret123")
	require.NoError(t, f.store.SoftDelete(context.Background(), gone.ID, f.clock.Now()))

	cases := map[string][2]string{
		"wrong password": {"alice@example.com", "wrong-password"},
		"unknown email":  {"nobody@example.com", "secret123"},
		"deleted user":   {"gone@example.com", "secret123"},
		"empty password": {"alice@example.com", ""},
		"email case":     {"ALICE@example.com", "secret123"},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.sessions.Login(context.Background(), c[0], c[1])
			require.ErrorIs(t, err, model.ErrInvalidCredentials)
			assert.NotErrorIs(t, err, model.ErrUserNotFound)
		})
	}
}

func TestRefreshRotatesTheToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	first, err := f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	second, err := f.sessions.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	_, err = f.sessions.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenInvalid, "the previous refresh token must be dead")

	third, err := f.sessions.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err, "the new refresh token is accepted once")

	_, err = f.sessions.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenInvalid)

	_, err = f.sessions.Refresh(ctx, third.RefreshToken)
	require.NoError(t, err)
}

func TestLoginReplacesEarlierSession(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	laptop, err := f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	_, err = f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = f.sessions.Refresh(ctx, laptop.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestRefreshRejections(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	session, err := f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	t.Run("access token", func(t *testing.T) {
		_, err := f.sessions.Refresh(ctx, session.AccessToken)
		require.ErrorIs(t, err, model.ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.sessions.Refresh(ctx, "garbage")
		require.ErrorIs(t, err, model.ErrTokenInvalid)
	})

	t.Run("validly signed but never stored", func(t *testing.T) {
		forged, err := f.codec.MintRefreshToken(token.Subject{UserID: session.ID, Email: session.Email, Role: session.Role})
		require.NoError(t, err)

		_, err = f.sessions.Refresh(ctx, forged)
		require.ErrorIs(t, err, model.ErrTokenInvalid)
	})
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	session, err := f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	f.clock.Advance(testRefreshTTL + time.Second)

	_, err = f.sessions.Refresh(ctx, session.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestConcurrentRefreshHasOneWinner(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	session, err := f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	const attempts = 8
	var (
		wg       sync.WaitGroup
		wins     atomic.Int32
		mu       sync.Mutex
		winner   model.Session
		start    = make(chan struct{})
		failures = make(chan error, attempts)
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			next, err := f.sessions.Refresh(ctx, session.RefreshToken)
			if err != nil {
				failures <- err
				return
			}
			wins.Add(1)
			mu.Lock()
			winner = next
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()
	close(failures)

	require.Equal(t, int32(1), wins.Load())
	for err := range failures {
		require.ErrorIs(t, err, model.ErrTokenInvalid)
	}

	_, err = f.sessions.Refresh(ctx, winner.RefreshToken)
	require.NoError(t, err, "the winner's token is the live one")
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	session, err := f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.sessions.Logout(ctx, alice.ID))
	require.NoError(t, f.sessions.Logout(ctx, alice.ID))

	stored, _ := f.store.Get(alice.ID)
	assert.Nil(t, stored.RefreshTokenHash)
	assert.Nil(t, stored.RefreshTokenExpiry)

	_, err = f.sessions.Refresh(ctx, session.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestRefreshInvalidatesProfileCache(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	session, err := f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	key := cache.ProfileKey(alice.ID)
	require.NoError(t, f.cache.Set(ctx, key, []byte(`{}`), time.Minute))

	_, err = f.sessions.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)

	_, ok, err := f.cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
