package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	migrations, err := fs.Sub(migrationFiles, "migrations")
	require.NoError(t, err)

	entries, err := fs.ReadDir(migrations, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var all strings.Builder
	for _, entry := range entries {
		data, readErr := fs.ReadFile(migrations, entry.Name())
		require.NoError(t, readErr)

		body := string(data)
		require.True(t, strings.HasPrefix(body, "-- +goose Up"), "%s must start with a goose Up annotation", entry.Name())
		require.Contains(t, body, "-- +goose Down", entry.Name())
		all.WriteString(body)
	}

	for _, table := range requiredTables {
		require.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" (", "table %s has no migration", table)
	}
}

func TestEnsureSchemaRequiresPool(t *testing.T) {
	t.Parallel()

	var db *DB
	require.Error(t, db.EnsureSchema(context.Background()))
	require.Error(t, (&DB{}).EnsureSchema(context.Background()))
}
