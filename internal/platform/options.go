package platform

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/aretw0/shelf/pkg/adapters/fs"
	"github.com/aretw0/shelf/pkg/core"
)

// options holds the internal configuration for a shelf.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	fs           afero.Fs
	naming       core.NamingStrategy
	autoInit     bool
	mustExist    bool
	readOnly     bool
	errorHandler func(error)
	serializers  map[core.Layout]fs.Serializer
}

// Option defines a functional option for configuring a shelf.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		autoInit:    true,
		serializers: make(map[core.Layout]fs.Serializer),
	}
}

// WithAutoInit creates the repository root when it is missing. Enabled by default.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithMustExist ensures the repository root must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithReadOnly enables read-only mode.
// In this mode Add returns a RepositoryError wrapping core.ErrReadOnly and
// the root is never created.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithNaming sets the naming strategy. Defaults to naming.ByName.
func WithNaming(strategy core.NamingStrategy) Option {
	return func(o *options) {
		o.naming = strategy
	}
}

// WithLogger sets the logger for the repository and service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFs sets the filesystem the repository lives on (e.g. afero.NewMemMapFs() in tests).
func WithFs(fsys afero.Fs) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithRepository allows injecting a custom repository (e.g. a catalog or a mock).
// If provided, the filesystem repository is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithSerializer replaces the descriptor serializer of a layout.
func WithSerializer(layout core.Layout, s fs.Serializer) Option {
	return func(o *options) {
		o.serializers[layout] = s
	}
}

// WithWatcherErrorHandler registers a callback for errors occurring in the Watch loop,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
