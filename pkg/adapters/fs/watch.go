package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/aretw0/shelf/pkg/core"
)

// debounceInterval coalesces bursts of writes to one library into a single event.
const debounceInterval = 50 * time.Millisecond

// ErrWatchUnsupported is returned when the repository does not live on the OS filesystem.
var ErrWatchUnsupported = errors.New("watch requires the OS filesystem")

// Watch reports changes to libraries under the repository root.
//
// The pattern is matched against paths relative to the root; an empty pattern
// matches everything. Events carry the library path segment, or "" for files at
// the root. The channel is closed once ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if _, ok := r.fs.(*afero.OsFs); !ok {
		return nil, ErrWatchUnsupported
	}
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := r.addRecursive(watcher, r.Path); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	events := make(chan core.Event)
	w := &watchWorker{
		repo:    r,
		pattern: pattern,
		events:  events,
		watcher: watcher,
		pending: make(map[string]core.Event),
	}
	r.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		if r.config.ErrorHandler != nil {
			r.config.ErrorHandler(fmt.Errorf("watcher: %w", err))
		} else {
			r.log.Error("watcher stopped", "error", err)
		}
	}))
	return events, nil
}

type watchWorker struct {
	repo    *Repository
	pattern string
	events  chan<- core.Event
	watcher *fsnotify.Watcher

	pending map[string]core.Event
	order   []string
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.repo.log.Enabled(ctx, slog.LevelDebug) {
				w.repo.log.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.repo.log.Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.events)
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()

	timer := time.NewTimer(debounceInterval)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			if w.handle(event) {
				timer.Reset(debounceInterval)
			}

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.repo.log.Error("fsnotify error", "error", wErr)
			if w.repo.config.ErrorHandler != nil {
				w.repo.config.ErrorHandler(wErr)
			}

		case <-timer.C:
			if !w.flush(ctx) {
				return nil
			}
		}
	}
}

// handle filters and maps one filesystem event, queueing it for the next flush.
func (w *watchWorker) handle(event fsnotify.Event) bool {
	rel, err := filepath.Rel(w.repo.Path, event.Name)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return false
	}
	rel = filepath.ToSlash(rel)
	w.repo.log.Debug("event received", "path", rel, "op", event.Op.String())

	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}

	// New directories must be watched too, libraries are nested.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.repo.addRecursive(w.watcher, event.Name); err != nil {
				w.repo.log.Debug("failed to watch new directory", "path", rel, "error", err)
			}
		}
	}

	if w.pattern != "" {
		if ok, _ := doublestar.Match(w.pattern, rel); !ok {
			return false
		}
	}

	eType := mapEventType(event)
	if eType == "" {
		return false
	}

	name := ""
	if seg, _, nested := strings.Cut(rel, "/"); nested {
		name = seg
	} else if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		name = seg
	} else if eType == core.EventDelete {
		// A removed entry at the root may have been a library directory.
		name = seg
	}

	queued, ok := w.pending[name]
	if !ok {
		w.order = append(w.order, name)
	} else if queued.Type == core.EventCreate && eType == core.EventModify {
		// A fresh library is still a creation however many writes follow.
		eType = core.EventCreate
	}
	w.pending[name] = core.Event{Type: eType, Name: name, Timestamp: time.Now().Unix()}
	return true
}

// flush sends every queued event in arrival order. It reports false when ctx ended.
func (w *watchWorker) flush(ctx context.Context) bool {
	for _, name := range w.order {
		e := w.pending[name]
		select {
		case w.events <- e:
			w.repo.recordEvent()
		case <-ctx.Done():
			return false
		}
	}
	w.order = w.order[:0]
	clear(w.pending)
	return true
}

func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

// addRecursive watches root and every visible directory below it.
func (r *Repository) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return afero.Walk(r.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

var _ core.Watchable = (*Repository)(nil)
