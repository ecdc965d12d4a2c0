package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/rowmap/internal/logging"
)

// DefaultDebounce is how long a watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a settings file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by renaming a temporary file are still observed.
type Watcher struct {
	loader   *Loader
	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *logging.Logger

	closeOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits after the last change
// before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher starts watching path. The loader must read from the OS file
// system for reloads to observe the watched file.
func NewWatcher(loader *Loader, path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		loader:   loader,
		path:     abs,
		fsw:      fsw,
		debounce: DefaultDebounce,
		logger:   loader.logger.WithField("path", abs),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers reloaded settings to onChange until ctx is done or the
// watcher is closed. Files that fail to load are logged and skipped.
func (w *Watcher) Run(ctx context.Context, onChange func(Settings)) error {
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			w.logger.Error("watch error: %v", err)

		case <-pending:
			pending = nil
			settings, err := w.loader.Load(w.path)
			if err != nil {
				w.logger.Warn("reload failed: %v", err)
				continue
			}
			onChange(settings)
		}
	}
}

// Close stops the watcher. Run returns ErrWatcherClosed afterwards.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}
