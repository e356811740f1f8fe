package contrib_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shelf/pkg/adapters/fs"
	"github.com/aretw0/shelf/pkg/contrib"
	"github.com/aretw0/shelf/pkg/core"
)

func TestLocalValidator(t *testing.T) {
	ctx := context.Background()

	repoWith := func(t *testing.T, files map[string]string) core.Repository {
		t.Helper()
		fsys := afero.NewMemMapFs()
		for name, content := range files {
			require.NoError(t, afero.WriteFile(fsys, "/shelf/"+name, []byte(content), 0644))
		}
		return fs.NewRepository(fs.Config{Path: "/shelf", Fs: fsys})
	}

	t.Run("Valid", func(t *testing.T) {
		repo := repoWith(t, map[string]string{
			"lib/library.properties": "name=lib\nversion=1.2.3-rc.1\nsentence=Does things\n",
			"lib/lib.cpp":            "",
		})

		result, err := contrib.LocalValidator{}.ValidateLibrary(ctx, repo, "lib")
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("Reports Every Problem", func(t *testing.T) {
		repo := repoWith(t, map[string]string{
			"lib/library.properties": "name=lib\nversion=1.2\n",
			"lib/README.md":          "",
		})

		result, err := contrib.LocalValidator{}.ValidateLibrary(ctx, repo, "lib")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, map[string]string{
			"version":  "must be a semantic version",
			"sentence": "is required",
			"files":    "must include at least one source file",
		}, result.Errors)
	})

	t.Run("Description Counts As Sentence", func(t *testing.T) {
		repo := repoWith(t, map[string]string{
			"lib/spark.json": `{"name": "lib", "version": "0.1.0", "description": "Old style"}`,
			"lib/lib.h":      "",
		})

		result, err := contrib.LocalValidator{}.ValidateLibrary(ctx, repo, "lib")
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("Fetch Errors", func(t *testing.T) {
		repo := repoWith(t, map[string]string{})

		_, err := contrib.LocalValidator{}.ValidateLibrary(ctx, repo, "missing")
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})
}
