// Package naming provides the strategies that map a library identity to its
// location under a repository root.
package naming

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/aretw0/shelf/pkg/core"
)

// Strategy names accepted by Parse.
const (
	KindByName          = "by-name"
	KindByNameAtVersion = "by-name-at-version"
	KindDirect          = "direct"
)

// Parse returns the strategy registered under kind.
func Parse(kind string) (core.NamingStrategy, error) {
	switch kind {
	case "", KindByName:
		return ByName{}, nil
	case KindByNameAtVersion:
		return ByNameAtVersion{}, nil
	case KindDirect:
		return Direct{}, nil
	default:
		return nil, fmt.Errorf("unknown naming strategy %q", kind)
	}
}

// ByName stores each library in a directory named after it.
type ByName struct{}

func (ByName) ToName(d core.Descriptor) string { return d.Name }

func (ByName) NameToFilesystem(name string) string { return name }

func (ByName) MatchesName(identity, candidate string) bool { return identity == candidate }

func (ByName) Names(ctx context.Context, src core.NameSource) iter.Seq2[string, error] {
	return entries(ctx, src)
}

func (ByName) String() string { return KindByName }

// ByNameAtVersion stores each library in a directory named name@version,
// so several versions of a library can live side by side.
type ByNameAtVersion struct{}

func (ByNameAtVersion) ToName(d core.Descriptor) string {
	if d.Version == "" {
		return d.Name
	}
	return d.Name + "@" + d.Version
}

func (ByNameAtVersion) NameToFilesystem(name string) string { return name }

func (ByNameAtVersion) MatchesName(identity, candidate string) bool { return identity == candidate }

func (ByNameAtVersion) Names(ctx context.Context, src core.NameSource) iter.Seq2[string, error] {
	return entries(ctx, src)
}

func (ByNameAtVersion) String() string { return KindByNameAtVersion }

// Direct treats the repository root as the one and only library.
// The empty name designates that library whatever it is called.
type Direct struct{}

func (Direct) ToName(d core.Descriptor) string { return d.Name }

func (Direct) NameToFilesystem(string) string { return "" }

func (Direct) MatchesName(identity, candidate string) bool {
	return candidate == "" || identity == candidate
}

// Names reads the descriptor at the root instead of scanning directories.
func (s Direct) Names(ctx context.Context, src core.NameSource) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		d, err := src.Descriptor(ctx, "")
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return
			}
			yield("", err)
			return
		}
		yield(s.ToName(d), nil)
	}
}

func (Direct) String() string { return KindDirect }

func entries(ctx context.Context, src core.NameSource) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		names, err := src.Entries(ctx)
		if err != nil {
			yield("", err)
			return
		}
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(name, nil) {
				return
			}
		}
	}
}

var (
	_ core.NamingStrategy = ByName{}
	_ core.NamingStrategy = ByNameAtVersion{}
	_ core.NamingStrategy = Direct{}
)
