// Package contrib publishes a library from a local repository to a remote catalog.
//
// A contribution runs in a fixed order: validate, package, submit. Callers can
// observe the phases through a Hook, and substitute the result a phase resolves to.
package contrib

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/aretw0/shelf/pkg/core"
)

// Event names a notification emitted by the pipeline.
type Event string

const (
	// EventValidatingLibrary is emitted before validation; the pending value resolves to the validation result.
	EventValidatingLibrary Event = "validatingLibrary"
	// EventContributeComplete is emitted after submission; the pending value resolves to the client's result.
	EventContributeComplete Event = "contributeComplete"
)

// Pending is the deferred result of a phase.
type Pending func(ctx context.Context) (any, error)

// Hook observes a phase. Returning true replaces the phase result with the returned
// Pending for every later step; returning false keeps the original.
type Hook func(ctx context.Context, event Event, pending Pending, extra ...any) (Pending, bool)

// Client submits archives to the remote catalog.
type Client interface {
	ContributeLibrary(ctx context.Context, name string, archive io.Reader) (any, error)
}

// Validator checks a library before it is published.
type Validator interface {
	ValidateLibrary(ctx context.Context, repo core.Repository, name string) (core.ValidationResult, error)
}

// Packager turns a library directory into a compressed archive stream.
type Packager interface {
	Pack(ctx context.Context, fsys afero.Fs, dir string) (io.ReadCloser, error)
}

// Local is a repository whose libraries live in directories that can be packaged.
type Local interface {
	core.Repository
	Directory(name string) string
	Filesystem() afero.Fs
}

// Config holds the collaborators of a Pipeline.
type Config struct {
	Repository Local
	Client     Client
	Validator  Validator
	// Packager defaults to TarGz.
	Packager Packager
	Hook     Hook
	Logger   *slog.Logger
}

// Pipeline runs contributions.
type Pipeline struct {
	config Config
	log    *slog.Logger
}

// Outcome is what a contribution produced.
type Outcome struct {
	// Archive is set on dry runs only. The caller must close it.
	Archive io.ReadCloser
	// Result is what the submission resolved to, after hooks.
	Result any
}

// New creates a pipeline.
func New(config Config) *Pipeline {
	if config.Packager == nil {
		config.Packager = TarGz{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{config: config, log: logger}
}

// Contribute publishes the library name.
//
// Workflow:
//  1. Notify EventValidatingLibrary with the pending validation.
//  2. Await validation; an invalid result fails with *core.ValidationError.
//  3. Package the library directory. A dry run stops here and returns the archive.
//  4. Submit the archive to the client.
//  5. Notify EventContributeComplete with the resolved submission.
//
// Errors of any phase are returned as they are and stop the later phases.
func (p *Pipeline) Contribute(ctx context.Context, name string, dryRun bool) (Outcome, error) {
	repo := p.config.Repository

	validation := Pending(func(ctx context.Context) (any, error) {
		return p.config.Validator.ValidateLibrary(ctx, repo, name)
	})
	validation = p.notify(ctx, EventValidatingLibrary, validation, name)

	p.log.Debug("validating library", "name", name)
	resolved, err := validation(ctx)
	if err != nil {
		return Outcome{}, err
	}
	result, err := asValidationResult(resolved)
	if err != nil {
		return Outcome{}, err
	}
	if !result.Valid {
		return Outcome{}, &core.ValidationError{Result: result}
	}

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	p.log.Debug("packaging library", "name", name, "dir", repo.Directory(name))
	archive, err := p.config.Packager.Pack(ctx, repo.Filesystem(), repo.Directory(name))
	if err != nil {
		return Outcome{}, err
	}
	if dryRun {
		return Outcome{Archive: archive}, nil
	}

	if err := ctx.Err(); err != nil {
		archive.Close()
		return Outcome{}, err
	}

	p.log.Debug("submitting library", "name", name)
	submitted, err := p.config.Client.ContributeLibrary(ctx, name, archive)
	archive.Close()
	if err != nil {
		return Outcome{}, err
	}

	completion := Pending(func(context.Context) (any, error) { return submitted, nil })
	completion = p.notify(ctx, EventContributeComplete, completion, name)
	final, err := completion(ctx)
	if err != nil {
		return Outcome{}, err
	}

	p.log.Info("library contributed", "name", name)
	return Outcome{Result: final}, nil
}

func (p *Pipeline) notify(ctx context.Context, event Event, pending Pending, extra ...any) Pending {
	if p.config.Hook == nil {
		return pending
	}
	if replacement, ok := p.config.Hook(ctx, event, pending, extra...); ok && replacement != nil {
		return replacement
	}
	return pending
}

func asValidationResult(v any) (core.ValidationResult, error) {
	switch r := v.(type) {
	case core.ValidationResult:
		return r, nil
	case *core.ValidationResult:
		if r != nil {
			return *r, nil
		}
	}
	return core.ValidationResult{}, fmt.Errorf("unexpected validation result %T", v)
}
