package fs

import (
	"fmt"
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	Naming        string     `json:"naming"`
	ReadOnly      bool       `json:"read_only"`
	Writable      bool       `json:"writable"`
	Layouts       []string   `json:"layouts"`
	WatcherActive bool       `json:"watcher_active"`
	LastEvent     *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	layouts := make([]string, 0, len(r.serializers))
	for _, layout := range r.layouts() {
		layouts = append(layouts, layout.String())
	}

	return RepositoryState{
		Path:          r.Path,
		Naming:        fmt.Sprint(r.naming),
		ReadOnly:      r.config.ReadOnly,
		Writable:      r.Writable(),
		Layouts:       layouts,
		WatcherActive: r.watcherActive,
		LastEvent:     r.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}

func (r *Repository) recordEvent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastEvent = &now
}
