package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/model"
	"portfolio-api/internal/testutil"
)

var alice = Subject{UserID: "7f3c1c4e-8d0a-4d8e-9a53-3d1f0f1b2a01", Email: "alice@example.com", Role: model.RoleUser}

func newTestCodec(t *testing.T, clock *testutil.Clock) *Codec {
	t.Helper()

	codec, err := NewCodec("test-secret", 15*time.Minute, 7*24*time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsBadSettings(t *testing.T) {
	_, err := NewCodec("", time.Minute, time.Hour)
	require.Error(t, err)

	_, err = NewCodec("secret", 0, time.Hour)
	require.Error(t, err)

	_, err = NewCodec("secret", time.Minute, -time.Hour)
	require.Error(t, err)
}

func TestMintAndVerify(t *testing.T) {
	clock := testutil.NewClock(time.Now())
	codec := newTestCodec(t, clock)

	access, err := codec.MintAccessToken(alice)
	require.NoError(t, err)
	refresh, err := codec.MintRefreshToken(alice)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := codec.Verify(access)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, claims.UserID)
	assert.Equal(t, alice.Email, claims.Email)
	assert.Equal(t, alice.Role, claims.Role)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.NotEmpty(t, claims.TokenID)

	claims, err = codec.VerifyType(refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, claims.UserID)
}

func TestTokensMintedInTheSameSecondDiffer(t *testing.T) {
	clock := testutil.NewClock(time.Now())
	codec := newTestCodec(t, clock)

	first, err := codec.MintRefreshToken(alice)
	require.NoError(t, err)
	second, err := codec.MintRefreshToken(alice)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, Digest(first), Digest(second))
}

func TestVerifyFailuresAreUniform(t *testing.T) {
	clock := testutil.NewClock(time.Now())
	codec := newTestCodec(t, clock)

	valid, err := codec.MintAccessToken(alice)
	require.NoError(t, err)

	other, err := NewCodec("another-secret", 15*time.Minute, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	foreign, err := other.MintAccessToken(alice)
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"id":  alice.UserID,
		"sub": alice.UserID,
		"typ": TypeAccess,
		"exp": clock.Now().Add(time.Minute).Unix(),
	})
	wrongAlg, err := hs512.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  alice.UserID,
		"sub": alice.UserID,
		"exp": clock.Now().Add(time.Minute).Unix(),
	})
	noneAlg, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  alice.UserID,
		"sub": alice.UserID,
	})
	eternal, err := noExpiry.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	cases := map[string]string{
		"empty":          "",
		"malformed":      "not-a-token",
		"foreign secret": foreign,
		"wrong alg":      wrongAlg,
		"none alg":       noneAlg,
		"no expiry":      eternal,
		"tampered":       tampered,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(raw)
			require.ErrorIs(t, err, model.ErrTokenInvalid)
			assert.Equal(t, model.ErrTokenInvalid, err)
		})
	}
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	clock := testutil.NewClock(time.Now())
	codec := newTestCodec(t, clock)

	access, err := codec.MintAccessToken(alice)
	require.NoError(t, err)

	clock.Advance(14 * time.Minute)
	_, err = codec.Verify(access)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = codec.Verify(access)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestVerifyTypeRejectsOtherKind(t *testing.T) {
	clock := testutil.NewClock(time.Now())
	codec := newTestCodec(t, clock)

	access, err := codec.MintAccessToken(alice)
	require.NoError(t, err)

	_, err = codec.VerifyType(access, TypeRefresh)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestDigest(t *testing.T) {
	t.Parallel()

	a := Digest("token-a")
	assert.Equal(t, a, Digest("token-a"))
	assert.NotEqual(t, a, Digest("token-b"))
	assert.Len(t, a, 64)
	assert.Equal(t, strings.ToLower(a), a)
	assert.NotContains(t, a, "token-a")
}

func TestNewResetToken(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		tok, err := NewResetToken()
		require.NoError(t, err)
		require.Len(t, tok, 64)
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}
