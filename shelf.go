package shelf

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/aretw0/shelf/internal/platform"
	"github.com/aretw0/shelf/pkg/adapters/fs"
	"github.com/aretw0/shelf/pkg/core"
)

// --- Types ---

// Library is a public alias for the core library type.
type Library = core.Library

// Descriptor is a public alias for the core descriptor type.
type Descriptor = core.Descriptor

// Repository is a public alias for the filesystem repository.
type Repository = fs.Repository

// --- Configuration ---

// Option defines a functional option for configuring a shelf.
type Option = platform.Option

// WithAutoInit creates the repository root when it is missing. Enabled by default.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist ensures the repository root must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithNaming sets the naming strategy (see package naming).
func WithNaming(strategy core.NamingStrategy) Option {
	return platform.WithNaming(strategy)
}

// WithLogger sets the logger for the repository and service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithFs sets the filesystem the repository lives on.
func WithFs(fsys afero.Fs) Option {
	return platform.WithFs(fsys)
}

// WithRepository allows injecting a custom repository.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithSerializer replaces the descriptor serializer of a layout.
func WithSerializer(layout core.Layout, s fs.Serializer) Option {
	return platform.WithSerializer(layout, s)
}

// WithWatcherErrorHandler registers a callback for watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a service over the repository at path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Open creates and initializes the filesystem repository at path.
func Open(path string, opts ...Option) (*Repository, error) {
	return platform.Open(path, opts...)
}

// FindRoot looks upwards from startDir for a shelf root indicator.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
