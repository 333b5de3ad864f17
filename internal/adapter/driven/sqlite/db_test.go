package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "liveconfig.db")

	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	defer func() { assert.NoError(t, db.Close()) }()

	assert.Equal(t, path, db.Path())
	assert.FileExists(t, path)
}

func TestRunMigrations_ReportsVersion(t *testing.T) {
	db := setupTestDB(t)

	version, err := RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(4), version)
}

func TestDB_Ping(t *testing.T) {
	ctx := context.Background()

	t.Run("migrated", func(t *testing.T) {
		db := setupTestDB(t)
		assert.NoError(t, db.Ping(ctx))
		assert.NoError(t, NewDocumentRepo(db, nil).Ping(ctx))
	})

	t.Run("schema missing", func(t *testing.T) {
		db, err := NewDB(ctx, filepath.Join(t.TempDir(), "empty.db"))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		assert.Error(t, db.Ping(ctx))
	})
}
