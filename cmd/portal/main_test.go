package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reloop/portal/internal/db"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestQREncodeDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bag.png")

	out, err := execute(t, "qr", "encode", "BAG001", path, "--size", "200")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = execute(t, "qr", "decode", path)
	require.NoError(t, err)
	assert.Equal(t, "BAG001", strings.TrimSpace(out))
}

func TestQRDecodeMissingFile(t *testing.T) {
	_, err := execute(t, "qr", "decode", filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestMigrateUpAndDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_PATH", path)

	out, err := execute(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
	assert.Equal(t, 1, appliedMigrations(t, path))

	out, err = execute(t, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "migration 0001 rolled back")
	assert.Equal(t, 0, appliedMigrations(t, path))

	out, err = execute(t, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "no migration to roll back")
	assert.Equal(t, 0, appliedMigrations(t, path))
}

func TestMigrateDownOnEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_PATH", path)

	out, err := execute(t, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "no migration to roll back")
	assert.Equal(t, 0, appliedMigrations(t, path))
}

func appliedMigrations(t *testing.T, path string) int {
	t.Helper()

	d, err := db.Connect(context.Background(), "sqlite3", path)
	require.NoError(t, err)
	defer d.Close()

	var count int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	return count
}

func TestServeRequiresBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("SESSION_SECRET", "s")

	_, err := execute(t, "serve")
	assert.Error(t, err)
}
