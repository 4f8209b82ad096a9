package storage

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/model"
)

// watchDebounce coalesces the bursts of events a single write produces
// (temp file, rename, WAL checkpoints).
const watchDebounce = 75 * time.Millisecond

// Watch delivers load's result to fn once, then again whenever a file
// matching match changes in one of dirs and the result differs from the last
// delivery. It blocks until ctx is done.
func Watch(
	ctx context.Context,
	logger *zap.Logger,
	dirs []string,
	match func(name string) bool,
	load func(context.Context) ([]model.DayLog, error),
	fn func([]model.DayLog),
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating watched directory: %w", err)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	last, err := load(ctx)
	if err != nil {
		return err
	}
	fn(last)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if match(ev.Name) {
				fire = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			logs, err := load(ctx)
			if err != nil {
				logger.Warn("reloading watched logs", zap.Error(err))
				continue
			}
			if reflect.DeepEqual(logs, last) {
				continue
			}
			last = logs
			fn(logs)
		}
	}
}
