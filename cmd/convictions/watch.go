package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/fsnotify.v1"
)

// watchDebounce collapses the burst of events a single save produces.
const watchDebounce = 250 * time.Millisecond

// watchFile calls onChange each time path is written or recreated, until
// ctx is done. The parent directory is watched so that editors replacing
// the file by rename are seen. onChange errors are logged, not returned.
func watchFile(ctx context.Context, path string, logger *zap.Logger, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching directory %s: %w", filepath.Dir(target), err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			logger.Info("Input changed", zap.String("path", path))
			if err := onChange(); err != nil {
				logger.Error("Re-run failed", zap.String("path", path), zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error", zap.Error(err))
		}
	}
}
