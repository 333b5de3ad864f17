// Package storage opens the DocumentStore selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/liveconfig/internal/adapter/driven/jsonfile"
	sqliteadapter "github.com/ericfisherdev/liveconfig/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/liveconfig/internal/config"
	"github.com/ericfisherdev/liveconfig/internal/domain/port/driven"
)

// Backend is an opened document store.
type Backend struct {
	Store driven.DocumentStore

	// File is set for the jsonfile backend so callers can watch it.
	File *jsonfile.Store

	close func() error
}

// Close releases the underlying database, if any.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open returns the store for cfg.StorageBackend. The SQLite backend is
// migrated before it is returned.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendJSONFile:
		file := jsonfile.NewStore(cfg.StoragePath)
		if cfg.HasSecretKey() {
			logger.Warn("LIVECONFIG_SECRET_KEY is ignored by the jsonfile backend")
		}
		logger.Info("storage opened", "backend", cfg.StorageBackend, "path", file.Path())
		return &Backend{Store: file, File: file}, nil

	case config.BackendSQLite:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		version, err := sqliteadapter.RunMigrations(db.Writer)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("storage opened",
			"backend", cfg.StorageBackend,
			"path", db.Path(),
			"schema_version", version,
			"encrypted", cfg.HasSecretKey(),
		)
		return &Backend{
			Store: sqliteadapter.NewDocumentRepo(db, cfg.SecretKey),
			close: db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
