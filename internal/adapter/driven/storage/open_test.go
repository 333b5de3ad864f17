package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/liveconfig/internal/config"
	"github.com/ericfisherdev/liveconfig/internal/domain/model"
	"github.com/ericfisherdev/liveconfig/internal/domain/port/driven"
)

func TestOpen(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendJSONFile} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &config.Config{
				StorageBackend: backend,
				DBPath:         filepath.Join(dir, "liveconfig.db"),
				StoragePath:    filepath.Join(dir, ".storage", "live_config"),
			}
			ctx := context.Background()

			b, err := Open(ctx, cfg, slog.Default())
			require.NoError(t, err)
			defer func() { assert.NoError(t, b.Close()) }()

			assert.Equal(t, backend == config.BackendJSONFile, b.File != nil)

			doc := model.NewDocument()
			doc.Profiles = append(doc.Profiles, model.Profile{ID: "p1", Name: "Kitchen"})
			require.NoError(t, b.Store.Save(ctx, doc))

			got, err := b.Store.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Len(t, got.Profiles, 1)
			assert.Equal(t, "Kitchen", got.Profiles[0].Name)
		})
	}
}

func TestOpen_SQLiteCreatesDirectoryAndPings(t *testing.T) {
	cfg := &config.Config{
		StorageBackend: config.BackendSQLite,
		DBPath:         filepath.Join(t.TempDir(), "nested", "data", "liveconfig.db"),
	}
	ctx := context.Background()

	b, err := Open(ctx, cfg, slog.Default())
	require.NoError(t, err)

	pinger, ok := b.Store.(driven.Pinger)
	require.True(t, ok)
	assert.NoError(t, pinger.Ping(ctx))

	require.NoError(t, b.Close())
	assert.Error(t, pinger.Ping(ctx))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StorageBackend: "redis"}, slog.Default())
	assert.Error(t, err)
}
