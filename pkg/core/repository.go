package core

import (
	"context"
	"iter"
)

// Repository defines the contract for locating and persisting libraries.
// Adhering to this interface keeps callers independent of the storage
// (local directory tree, remote catalog, pinned single-library directory).
type Repository interface {
	// Names lazily yields the identities of every valid library in the repository.
	// Enumeration order follows the underlying listing and is not sorted.
	Names(ctx context.Context) iter.Seq2[string, error]

	// Fetch loads a library by identity. Files are materialized lazily.
	Fetch(ctx context.Context, name string) (Library, error)

	// Add persists a library using the given descriptor generation.
	// Read-only repositories fail with a *RepositoryError.
	Add(ctx context.Context, lib Library, layout Layout) error

	// Writable reports whether Add can succeed at all.
	Writable() bool
}

// NameSource is the view of a repository a NamingStrategy needs to enumerate identities.
type NameSource interface {
	// Entries lists the candidate path segments directly under the repository root.
	Entries(ctx context.Context) ([]string, error)
	// Descriptor reads the descriptor of the library stored under name.
	Descriptor(ctx context.Context, name string) (Descriptor, error)
}

// NamingStrategy maps a library identity to a filesystem location and back.
// Repositories depend on this interface only, never on a concrete strategy.
type NamingStrategy interface {
	// ToName returns the identity of the library described by d.
	ToName(d Descriptor) string
	// NameToFilesystem returns the path segment, relative to the root, holding name.
	NameToFilesystem(name string) string
	// MatchesName reports whether candidate designates identity.
	MatchesName(identity, candidate string) bool
	// Names lazily yields candidate identities found in src.
	Names(ctx context.Context, src NameSource) iter.Seq2[string, error]
}

// SourceMigrator rewrites library source code when it is promoted into a repository.
type SourceMigrator interface {
	MigrateSourcecode(text, libraryName string) string
}

// Watchable defines an interface for repositories that can report changes.
type Watchable interface {
	// Watch emits events for libraries whose repository-relative paths match pattern.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
