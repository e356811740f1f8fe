package contrib

import (
	"archive/tar"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// TarGz packages a directory as a gzip compressed tar stream.
type TarGz struct {
	// Level is the gzip level. Zero means gzip.DefaultCompression.
	Level int
}

// Archive is a packaged library stream. It hashes the bytes as they are read.
type Archive struct {
	pr     *io.PipeReader
	hasher *blake3.Hasher
}

func (a *Archive) Read(p []byte) (int, error) {
	n, err := a.pr.Read(p)
	a.hasher.Write(p[:n])
	return n, err
}

// Close stops the producer. Closing before the end discards the rest of the stream.
func (a *Archive) Close() error {
	return a.pr.Close()
}

// Sum returns the hex BLAKE3 digest of the bytes read so far.
func (a *Archive) Sum() string {
	return hex.EncodeToString(a.hasher.Sum(nil))
}

// Pack streams dir from fsys. Entries are relative to dir; hidden files and
// directories are skipped. Errors during the walk surface on Read.
func (t TarGz) Pack(ctx context.Context, fsys afero.Fs, dir string) (io.ReadCloser, error) {
	info, err := fsys.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	level := t.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}

	pr, pw := io.Pipe()

	go func() {
		gz, err := gzip.NewWriterLevel(pw, level)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		tw := tar.NewWriter(gz)

		err = writeTree(ctx, tw, fsys, dir)
		if err == nil {
			err = tw.Close()
		}
		if err == nil {
			err = gz.Close()
		}
		pw.CloseWithError(err)
	}()

	return &Archive{pr: pr, hasher: blake3.New()}, nil
}

func writeTree(ctx context.Context, tw *tar.Writer, fsys afero.Fs, dir string) error {
	return afero.Walk(fsys, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("failed to create tar header for %s: %w", rel, err)
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header for %s: %w", rel, err)
		}
		if info.IsDir() {
			return nil
		}

		f, err := fsys.Open(p)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", rel, err)
		}
		defer f.Close()

		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", rel, err)
		}
		return nil
	})
}
