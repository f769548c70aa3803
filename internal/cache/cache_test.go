package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestMemoryReturnsCopies(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, "none", "")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, c)

	_, ok, err := c.Get(ctx, "anything")
	require.NoError(t, err)
	assert.False(t, ok)

	c, err = New(ctx, "memory", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(ctx, "memcached", "")
	require.Error(t, err)

	_, err = New(ctx, "redis", "::not a url::")
	require.Error(t, err)
}

func TestProfileKey(t *testing.T) {
	assert.Equal(t, "user:profile:42", ProfileKey("42"))
}

func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	c, err := NewRedis(ctx, url)
	require.NoError(t, err)
	defer c.Close()

	key := "test:" + t.Name()
	require.NoError(t, c.Set(ctx, key, []byte("v"), time.Minute))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, key))
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
