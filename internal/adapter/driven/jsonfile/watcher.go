package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the burst of events produced by one rename-based write.
const defaultDebounce = 250 * time.Millisecond

// Watch blocks until ctx is cancelled, calling onChange whenever the file is
// changed by another process. Changes written by this Store's own Save are
// ignored. The parent directory is watched rather than the file because
// atomic writes replace the file's inode.
func (s *Store) Watch(ctx context.Context, logger *slog.Logger, onChange func()) error {
	return s.watch(ctx, logger, defaultDebounce, onChange)
}

func (s *Store) watch(ctx context.Context, logger *slog.Logger, debounce time.Duration, onChange func()) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching storage file", "path", s.path)

	target := filepath.Clean(s.path)
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("storage watcher error", "error", err)

		case <-timer.C:
			raw, err := os.ReadFile(s.path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				logger.Error("failed to read changed storage file", "path", s.path, "error", err)
				continue
			}
			if s.isOwnWrite(raw) {
				continue
			}
			logger.Info("storage file changed externally", "path", s.path)
			onChange()
		}
	}
}
