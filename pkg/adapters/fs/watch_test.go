package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/aretw0/shelf/pkg/adapters/fs"
	"github.com/aretw0/shelf/pkg/core"
)

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := t.TempDir()
	repo := fs.NewRepository(fs.Config{Path: path})
	if err := repo.Initialize(ctx); err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	events, err := repo.Watch(ctx, "")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	waitForWatcher(t, repo, true)

	libDir := filepath.Join(path, "lib1")
	if err := os.Mkdir(libDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(libDir, "lib1.h"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, ".hidden"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		if e.Name != "lib1" {
			t.Errorf("expected event for lib1, got %q", e.Name)
		}
		if e.Type != core.EventCreate {
			t.Errorf("expected CREATE, got %s", e.Type)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				waitForWatcher(t, repo, false)
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}

func TestWatchRequiresOsFs(t *testing.T) {
	repo := fs.NewRepository(fs.Config{Path: "/shelf", Fs: afero.NewMemMapFs()})

	_, err := repo.Watch(context.Background(), "")
	if !errors.Is(err, fs.ErrWatchUnsupported) {
		t.Fatalf("expected ErrWatchUnsupported, got %v", err)
	}
}

func TestWatchRejectsBadPattern(t *testing.T) {
	repo := fs.NewRepository(fs.Config{Path: t.TempDir()})

	if _, err := repo.Watch(context.Background(), "[unclosed"); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func waitForWatcher(t *testing.T, repo *fs.Repository, active bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.State().(fs.RepositoryState).WatcherActive == active {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("watcher active state never became %v", active)
}
