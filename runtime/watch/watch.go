// Package watch re-triggers work when a program file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aledsdavies/educode/core/invariant"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Option configures Run.
type Option func(*config)

type config struct {
	debounce time.Duration
	logger   *slog.Logger
}

// WithDebounce sets how long the file must stay quiet before onChange runs.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		c.debounce = d
	}
}

// WithLogger sets the logger for watcher events and errors.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Run watches path until ctx is cancelled and calls onChange, from the calling
// goroutine, after each debounced write to the file. The parent directory is
// watched so that editors which save by rename are still seen.
func Run(ctx context.Context, path string, onChange func(path string), opts ...Option) error {
	invariant.NotNil(onChange, "onChange")

	cfg := &config{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	cfg.logger.Info("watching for changes", "file", path)

	// pending is nil while no change is waiting for its debounce window.
	var pending <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg.logger.Debug("file changed", "file", path, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(cfg.debounce)
			} else {
				timer.Reset(cfg.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			onChange(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cfg.logger.Warn("watcher error", "error", err)
		}
	}
}
