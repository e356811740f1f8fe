package naming_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/shelf/pkg/core"
	"github.com/aretw0/shelf/pkg/naming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	entries    []string
	descriptor core.Descriptor
	err        error
}

func (f fakeSource) Entries(ctx context.Context) ([]string, error) {
	return f.entries, f.err
}

func (f fakeSource) Descriptor(ctx context.Context, name string) (core.Descriptor, error) {
	return f.descriptor, f.err
}

func collect(t *testing.T, s core.NamingStrategy, src core.NameSource) ([]string, error) {
	t.Helper()
	var names []string
	for name, err := range s.Names(context.Background(), src) {
		if err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func TestRoundTrip(t *testing.T) {
	descriptors := []core.Descriptor{
		{Name: "lib1", Version: "1.2.3"},
		{Name: "neopixel", Version: "0.0.10"},
		{Name: "solo"},
	}
	strategies := []core.NamingStrategy{naming.ByName{}, naming.ByNameAtVersion{}}

	for _, s := range strategies {
		for _, d := range descriptors {
			identity := s.ToName(d)
			segment := s.NameToFilesystem(identity)
			// The segment is what Names yields back for the directory.
			names, err := collect(t, s, fakeSource{entries: []string{segment}})
			require.NoError(t, err)
			require.Len(t, names, 1)
			assert.True(t, s.MatchesName(identity, names[0]), "%v: %q vs %q", s, identity, names[0])
		}
	}
}

func TestByNameAtVersion(t *testing.T) {
	s := naming.ByNameAtVersion{}
	assert.Equal(t, "lib1@1.2.3", s.ToName(core.Descriptor{Name: "lib1", Version: "1.2.3"}))
	assert.Equal(t, "lib1@1.2.3", s.NameToFilesystem("lib1@1.2.3"))
	assert.False(t, s.MatchesName("lib1@1.2.3", "lib1"))
}

func TestDirect(t *testing.T) {
	s := naming.Direct{}

	t.Run("Segment is always empty", func(t *testing.T) {
		assert.Equal(t, "", s.NameToFilesystem("anything"))
	})

	t.Run("Empty candidate is a wildcard", func(t *testing.T) {
		assert.True(t, s.MatchesName("lib1", ""))
		assert.True(t, s.MatchesName("lib1", "lib1"))
		assert.False(t, s.MatchesName("lib1", "lib2"))
	})

	t.Run("Names reads the root descriptor", func(t *testing.T) {
		names, err := collect(t, s, fakeSource{
			entries:    []string{"ignored"},
			descriptor: core.Descriptor{Name: "pinned"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"pinned"}, names)
	})

	t.Run("Names is empty without a descriptor", func(t *testing.T) {
		names, err := collect(t, s, fakeSource{err: &core.LibraryNotFoundError{Name: ""}})
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("Names surfaces other errors", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := collect(t, s, fakeSource{err: boom})
		assert.ErrorIs(t, err, boom)
	})
}

func TestByName_NamesStopsEarly(t *testing.T) {
	seen := 0
	for range (naming.ByName{}).Names(context.Background(), fakeSource{entries: []string{"a", "b", "c"}}) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestParse(t *testing.T) {
	for kind, want := range map[string]core.NamingStrategy{
		"":                   naming.ByName{},
		"by-name":            naming.ByName{},
		"by-name-at-version": naming.ByNameAtVersion{},
		"direct":             naming.Direct{},
	} {
		got, err := naming.Parse(kind)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := naming.Parse("by-hash")
	assert.Error(t, err)
}
