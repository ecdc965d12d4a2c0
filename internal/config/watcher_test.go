package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	writeFile(t, path, "[editor]\ntab_size = 4\n")

	w, err := NewWatcher(NewLoader(), path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Settings, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(s Settings) { changes <- s })
	}()

	writeFile(t, path, "[editor]\ntab_size = 2\n")

	select {
	case s := <-changes:
		if s.TabSize != 2 {
			t.Errorf("TabSize = %d after reload, want 2", s.TabSize)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	writeFile(t, path, "[editor]\n")

	w, err := NewWatcher(NewLoader(), path, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	changes := make(chan Settings, 1)
	go func() {
		_ = w.Run(ctx, func(s Settings) { changes <- s })
	}()

	writeFile(t, filepath.Join(dir, "other.toml"), "[editor]\ntab_size = 8\n")

	select {
	case <-changes:
		t.Error("change to a sibling file triggered a reload")
	case <-ctx.Done():
	}
}

func TestWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, "editor: {}\n")

	w, err := NewWatcher(NewLoader(), path)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if w.Path() != path {
		t.Errorf("Path() = %q, want %q", w.Path(), path)
	}

	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background(), func(Settings) {})
	}()

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrWatcherClosed) {
			t.Errorf("Run() error = %v, want ErrWatcherClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
