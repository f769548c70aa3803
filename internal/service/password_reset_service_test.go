package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/mail"
	"portfolio-api/internal/model"
	"portfolio-api/internal/testutil"
	"portfolio-api/internal/token"
	"portfolio-api/pkg/apierror"
)

func TestRequestResetUnknownEmailLooksLikeSuccess(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")

	require.NoError(t, f.resets.RequestReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, f.mailer.Messages())

	require.NoError(t, f.resets.RequestReset(context.Background(), "alice@example.com"))
	assert.Len(t, f.mailer.Messages(), 1)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	require.NoError(t, f.resets.RequestReset(ctx, "alice@example.com"))
	raw := f.lastResetToken(t)

	msg, _ := f.mailer.Last()
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Contains(t, msg.Text, "http://localhost:3000/reset-password?token="+raw)

	stored, _ := f.store.Get(alice.ID)
	require.NotNil(t, stored.ResetTokenHash)
	assert.Equal(t, token.Digest(raw), *stored.ResetTokenHash)
	assert.WithinDuration(t, f.clock.Now().Add(time.Hour), *stored.ResetTokenExpiry, time.Second)

	require.NoError(t, f.resets.ResetPassword(ctx, raw, "newpass456"))

	_, err := f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
	_, err = f.sessions.Login(ctx, "alice@example.com", "newpass456")
	require.NoError(t, err)

	err = f.resets.ResetPassword(ctx, raw, "another789")
	require.ErrorIs(t, err, model.ErrTokenInvalid, "reset tokens are single use")

	stored, _ = f.store.Get(alice.ID)
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)
}

func TestResetTokenExpires(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	require.NoError(t, f.resets.RequestReset(ctx, "alice@example.com"))
	raw := f.lastResetToken(t)

	f.clock.Advance(time.Hour + time.Second)

	err := f.resets.ResetPassword(ctx, raw, "newpass456")
	require.ErrorIs(t, err, model.ErrTokenInvalid)

	_, err = f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err, "the old password still works")
}

func TestNewResetRequestReplacesOldToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	require.NoError(t, f.resets.RequestReset(ctx, "alice@example.com"))
	first := f.lastResetToken(t)
	require.NoError(t, f.resets.RequestReset(ctx, "alice@example.com"))
	second := f.lastResetToken(t)
	require.NotEqual(t, first, second)

	require.ErrorIs(t, f.resets.ResetPassword(ctx, first, "newpass456"), model.ErrTokenInvalid)
	require.NoError(t, f.resets.ResetPassword(ctx, second, "newpass456"))
}

func TestResetDeliveryFailureWithdrawsToken(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "Alice", "alice@example.com", "secret123")
	f.mailer.SetErr(errors.New("smtp: 421 service not available"))

	err := f.resets.RequestReset(context.Background(), "alice@example.com")
	require.ErrorIs(t, err, model.ErrDeliveryFailure)

	stored, _ := f.store.Get(alice.ID)
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)
}

// stallingMailer holds the first message until release is closed and then
// fails it. Later messages go to next.
type stallingMailer struct {
	next    *testutil.Mailer
	started chan struct{}
	release chan struct{}
	calls   int
}

func (m *stallingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.calls++
	if m.calls > 1 {
		return m.next.Send(ctx, msg)
	}
	close(m.started)
	<-m.release
	return errors.New("smtp: 421 service not available")
}

func TestFailedResetKeepsNewerDeliveredToken(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	mailer := &stallingMailer{next: f.mailer, started: make(chan struct{}), release: make(chan struct{})}
	resets := NewPasswordResetService(f.store, mailer, f.cache, PasswordResetConfig{
		TokenTTL:    time.Hour,
		SendTimeout: 5 * time.Second,
		FrontendURL: "http://localhost:3000",
	}, f.clock.Now)

	first := make(chan error, 1)
	go func() { first <- resets.RequestReset(ctx, "alice@example.com") }()
	<-mailer.started

	require.NoError(t, resets.RequestReset(ctx, "alice@example.com"))
	delivered := f.lastResetToken(t)

	close(mailer.release)
	require.ErrorIs(t, <-first, model.ErrDeliveryFailure)

	stored, _ := f.store.Get(alice.ID)
	require.NotNil(t, stored.ResetTokenHash)
	assert.Equal(t, token.Digest(delivered), *stored.ResetTokenHash)

	require.NoError(t, resets.ResetPassword(ctx, delivered, "newpass456"))
}

func TestResetSendIsBounded(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "Alice", "alice@example.com", "secret123")
	f.mailer.Block = true

	start := time.Now()
	err := f.resets.RequestReset(context.Background(), "alice@example.com")
	require.ErrorIs(t, err, model.ErrDeliveryFailure)
	assert.Less(t, time.Since(start), 5*time.Second)

	stored, _ := f.store.Get(alice.ID)
	assert.Nil(t, stored.ResetTokenHash)
}

func TestResetRevokesExistingSessions(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	session, err := f.sessions.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.resets.RequestReset(ctx, "alice@example.com"))
	require.NoError(t, f.resets.ResetPassword(ctx, f.lastResetToken(t), "newpass456"))

	_, err = f.sessions.Refresh(ctx, session.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestResetPasswordValidation(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "alice@example.com", "secret123")
	ctx := context.Background()

	require.NoError(t, f.resets.RequestReset(ctx, "alice@example.com"))
	raw := f.lastResetToken(t)

	err := f.resets.ResetPassword(ctx, raw, "short")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)

	require.ErrorIs(t, f.resets.ResetPassword(ctx, "", "newpass456"), model.ErrTokenInvalid)
	require.ErrorIs(t, f.resets.ResetPassword(ctx, "deadbeef", "newpass456"), model.ErrTokenInvalid)

	require.NoError(t, f.resets.ResetPassword(ctx, raw, "newpass456"), "a rejected attempt does not burn the token")
}

func TestLongPasswordsAreTruncatedTo72Bytes(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("x", 90)
	f.addUser(t, "Alice", "alice@example.com", long)

	_, err := f.sessions.Login(context.Background(), "alice@example.com", long)
	require.NoError(t, err)

	_, err = f.sessions.Login(context.Background(), "alice@example.com", strings.Repeat("x", 72)+"different tail")
	require.NoError(t, err, "bytes past 72 do not take part in the comparison")

	_, err = f.sessions.Login(context.Background(), "alice@example.com", strings.Repeat("x", 71))
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
}
