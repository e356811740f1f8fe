package contrib_test

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/aretw0/shelf/pkg/contrib"
)

func tarNames(t *testing.T, data []byte) []string {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if h.Typeflag == tar.TypeReg {
			names = append(names, h.Name)
		}
	}
	return names
}

func libraryFs(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range map[string]string{
		"/lib/library.properties":     "name=lib\n",
		"/lib/lib.h":                  "#pragma once\n",
		"/lib/examples/a/a.ino":       "void setup() {}\n",
		"/lib/.git/HEAD":              "ref",
		"/lib/.DS_Store":              "junk",
	} {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0644))
	}
	return fsys
}

func TestTarGz(t *testing.T) {
	ctx := context.Background()

	t.Run("Contents", func(t *testing.T) {
		rc, err := contrib.TarGz{}.Pack(ctx, libraryFs(t), "/lib")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []string{"examples/a/a.ino", "lib.h", "library.properties"}, tarNames(t, data))
	})

	t.Run("Digest Of Bytes Read", func(t *testing.T) {
		rc, err := contrib.TarGz{}.Pack(ctx, libraryFs(t), "/lib")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)

		sum := blake3.Sum256(data)
		archive, ok := rc.(*contrib.Archive)
		require.True(t, ok)
		assert.Equal(t, hex.EncodeToString(sum[:]), archive.Sum())
	})

	t.Run("Missing Directory", func(t *testing.T) {
		_, err := contrib.TarGz{}.Pack(ctx, afero.NewMemMapFs(), "/nope")
		assert.Error(t, err)
	})

	t.Run("Early Close", func(t *testing.T) {
		rc, err := contrib.TarGz{Level: gzip.BestSpeed}.Pack(ctx, libraryFs(t), "/lib")
		require.NoError(t, err)
		assert.NoError(t, rc.Close())
	})
}
