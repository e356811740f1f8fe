package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/shelf/pkg/core"
)

// Upgrade rewrites a legacy library into the current layout in place.
//
// Workflow:
//  1. Fetch the library; a library already in the current layout is returned as is.
//  2. Read every source into memory and migrate its nested includes.
//  3. Add the library again with core.LayoutCurrent (this also drops the legacy descriptor).
//  4. Remove the old copies of files that moved, and the directories they leave empty.
func (r *Repository) Upgrade(ctx context.Context, name string) (core.Library, error) {
	if !r.Writable() {
		return core.Library{}, r.readOnly("upgrade")
	}

	layout, err := r.Layout(ctx, name)
	if err != nil {
		return core.Library{}, err
	}
	lib, err := r.Fetch(ctx, name)
	if err != nil {
		return core.Library{}, err
	}
	if layout == core.LayoutCurrent {
		return lib, nil
	}

	dir := r.Directory(name)
	scanned, err := scanFiles(r.fs, dir)
	if err != nil {
		return core.Library{}, fmt.Errorf("failed to list files of %s: %w", name, err)
	}

	// Content must be buffered: the new copy may land on the same path as the old one.
	upgraded := lib
	upgraded.Files = make([]core.LibraryFile, 0, len(scanned))
	for _, s := range scanned {
		data, err := readAll(s.file)
		if err != nil {
			return core.Library{}, err
		}
		if s.file.Kind == core.FileKindSource {
			data = []byte(MigrateSourcecode(string(data), lib.Metadata.Name))
		}
		upgraded.Files = append(upgraded.Files, core.NewLibraryFileFromBytes(s.file.Name, s.file.Kind, s.file.Extension, data))
	}

	if err := r.Add(ctx, upgraded, core.LayoutCurrent); err != nil {
		return core.Library{}, err
	}

	for _, s := range scanned {
		target, err := targetPath(dir, s.file)
		if err != nil || target == s.full {
			continue
		}
		if err := r.fs.Remove(s.full); err != nil && !errors.Is(err, os.ErrNotExist) {
			return core.Library{}, fmt.Errorf("failed to remove %s: %w", s.rel, err)
		}
		r.pruneEmptyDirs(dir, filepath.Dir(s.full))
	}

	r.log.Info("library upgraded", "name", name, "from", layout, "to", core.LayoutCurrent)
	return r.Fetch(ctx, name)
}

// pruneEmptyDirs removes from and its parents while they are empty, stopping at root.
func (r *Repository) pruneEmptyDirs(root, from string) {
	for dir := from; dir != root && strings.HasPrefix(dir, root); dir = filepath.Dir(dir) {
		entries, err := r.readDirNames(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := r.fs.Remove(dir); err != nil {
			return
		}
	}
}

func (r *Repository) readDirNames(dir string) ([]string, error) {
	f, err := r.fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

func readAll(f core.LibraryFile) ([]byte, error) {
	rc, err := f.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Filename(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Filename(), err)
	}
	return data, nil
}
