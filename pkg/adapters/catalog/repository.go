// Package catalog exposes a remote library catalog as a read-only repository.
package catalog

import (
	"context"
	"iter"
	"log/slog"

	"github.com/aretw0/shelf/pkg/core"
)

// Client is the transport to the remote catalog.
type Client interface {
	LibraryNames(ctx context.Context) ([]string, error)
	Library(ctx context.Context, name string) (core.Library, error)
}

// Config holds the configuration for the catalog repository.
type Config struct {
	// Name identifies the catalog in errors and logs.
	Name   string
	Client Client
	Logger *slog.Logger
}

// Repository implements core.Repository over a Client. It never accepts additions.
type Repository struct {
	name   string
	client Client
	log    *slog.Logger
}

// NewRepository creates a catalog repository.
func NewRepository(config Config) *Repository {
	name := config.Name
	if name == "" {
		name = "catalog"
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{name: name, client: config.Client, log: logger}
}

func (r *Repository) String() string { return r.name }

// Names yields the names the catalog lists.
func (r *Repository) Names(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		names, err := r.client.LibraryNames(ctx)
		if err != nil {
			yield("", err)
			return
		}
		for _, name := range names {
			if !yield(name, nil) {
				return
			}
		}
	}
}

// Fetch retrieves a library from the catalog. An empty name is never found.
func (r *Repository) Fetch(ctx context.Context, name string) (core.Library, error) {
	if name == "" {
		return core.Library{}, &core.LibraryNotFoundError{Repository: r.name, Name: name}
	}
	lib, err := r.client.Library(ctx, name)
	if err != nil {
		return core.Library{}, err
	}
	r.log.Debug("library fetched", "catalog", r.name, "name", name)
	return lib, nil
}

// Add always fails: catalogs are published to through the contribution pipeline.
func (r *Repository) Add(ctx context.Context, lib core.Library, layout core.Layout) error {
	return &core.RepositoryError{Repository: r.name, Op: "add", Err: core.ErrReadOnly}
}

func (r *Repository) Writable() bool { return false }

var _ core.Repository = (*Repository)(nil)
