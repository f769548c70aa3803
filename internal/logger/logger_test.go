package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewProductionWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(New(&buf, "production", "info"))
	log.Info("login", "user_id", "u-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "login", record["msg"])
	require.Equal(t, "u-1", record["user_id"])
}

func TestPrettyHandlerGroupsAndLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(New(&buf, "development", "warn"))
	log.Info("hidden")
	log.WithGroup("mail").Warn("send failed", "to", "alice@example.com")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.True(t, strings.Contains(out, "mail.to"))
	require.Contains(t, out, "send failed")
}
