package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := `SELECT id FROM carriers WHERE branch_id = ? AND name LIKE ?`

	assert.Equal(t, q, Rebind(SQLite, q))
	assert.Equal(t, `SELECT id FROM carriers WHERE branch_id = $1 AND name LIKE $2`, Rebind(Postgres, q))
}

func TestOpen_SQLite(t *testing.T) {
	conn, dialect, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"), Options{})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, SQLite, dialect)
	assert.Equal(t, "sqlite3", dialect.GooseDialect())

	var mode string
	require.NoError(t, conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, _, err := Open("mysql", "x", Options{})
	assert.Error(t, err)
	assert.Equal(t, "postgres", Postgres.GooseDialect())
}
