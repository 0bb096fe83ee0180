package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type sequenceFile struct {
	Name string `toml:"name"`
}

func loadSequenceFile(path string) (sequenceFile, error) {
	var sf sequenceFile
	data, err := os.ReadFile(path)
	if err != nil {
		return sf, err
	}
	if err := toml.Unmarshal(data, &sf); err != nil {
		return sf, err
	}
	return sf, nil
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.toml")
	if err := os.WriteFile(path, []byte(`name = "sos"`), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	w := NewConfigWatcher(path, loadSequenceFile, logger, WithDebounce[sequenceFile](50*time.Millisecond))

	reloaded := make(chan sequenceFile, 1)
	unsub := w.OnReload(func(sf sequenceFile) { reloaded <- sf })
	defer unsub()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte(`name = "beacon"`), 0o644); err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}

	select {
	case sf := <-reloaded:
		if sf.Name != "beacon" {
			t.Errorf("Expected reloaded name beacon, got %q", sf.Name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.toml")
	if err := os.WriteFile(path, []byte(`name = "v0"`), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	w := NewConfigWatcher(path, loadSequenceFile, logger, WithDebounce[sequenceFile](150*time.Millisecond))

	var mu sync.Mutex
	count := 0
	unsub := w.OnReload(func(sequenceFile) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer unsub()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer w.Stop()

	// A burst of writes inside the debounce window collapses to one reload
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(`name = "v1"`), 0o644); err != nil {
			t.Fatalf("Failed to rewrite file: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	got := count
	mu.Unlock()
	if got != 1 {
		t.Errorf("Expected 1 reload for burst, got %d", got)
	}
}

func TestWatcherErrorHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.toml")
	if err := os.WriteFile(path, []byte(`name = "ok"`), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	errCh := make(chan error, 1)
	w := NewConfigWatcher(path,
		func(string) (sequenceFile, error) { return sequenceFile{}, errors.New("parse failed") },
		logger,
		WithDebounce[sequenceFile](50*time.Millisecond),
		WithErrorHandler[sequenceFile](func(err error) { errCh <- err }),
	)

	called := false
	unsub := w.OnReload(func(sequenceFile) { called = true })
	defer unsub()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte(`name = "broken`), 0o644); err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}

	select {
	case err := <-errCh:
		if !strings.Contains(err.Error(), "parse failed") {
			t.Errorf("Unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for error handler")
	}
	if called {
		t.Error("Handler must not run when loading fails")
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.toml")
	if err := os.WriteFile(path, []byte(`name = "v0"`), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	w := NewConfigWatcher(path, loadSequenceFile, logger, WithDebounce[sequenceFile](50*time.Millisecond))

	var mu sync.Mutex
	count := 0
	unsub := w.OnReload(func(sequenceFile) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	unsub()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte(`name = "v1"`), 0o644); err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	got := count
	mu.Unlock()
	if got != 0 {
		t.Errorf("Unsubscribed handler should not run, got %d calls", got)
	}
}
