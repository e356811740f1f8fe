package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aretw0/shelf/pkg/core"
)

// Layout detects which descriptor generation the library stored under name uses.
//
// The newest generation is checked first. A marker only counts when it is a
// regular file. When no marker is found, or the library directory is missing,
// the result is core.LayoutInvalid with a *core.LibraryNotFoundError. Names that
// resolve outside the repository root are reported the same way.
func (r *Repository) Layout(ctx context.Context, name string) (core.Layout, error) {
	if err := ctx.Err(); err != nil {
		return core.LayoutInvalid, err
	}

	if segment := r.naming.NameToFilesystem(name); segment != "" && !filepath.IsLocal(filepath.FromSlash(segment)) {
		return core.LayoutInvalid, r.notFound(name, errors.New("name escapes the repository root"))
	}

	dir := r.Directory(name)
	info, err := r.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.LayoutInvalid, r.notFound(name, errors.New("no library directory"))
		}
		return core.LayoutInvalid, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return core.LayoutInvalid, r.notFound(name, errors.New("not a directory"))
	}

	for _, layout := range r.layouts() {
		marker := filepath.Join(dir, r.serializers[layout].Filename())
		if r.isRegularFile(marker) {
			return layout, nil
		}
	}
	return core.LayoutInvalid, r.notFound(name, errors.New("no library descriptor"))
}

// layouts lists the registered generations, newest first.
func (r *Repository) layouts() []core.Layout {
	layouts := make([]core.Layout, 0, len(r.serializers))
	for layout := range r.serializers {
		layouts = append(layouts, layout)
	}
	sort.Slice(layouts, func(i, j int) bool { return layouts[i] > layouts[j] })
	return layouts
}

func (r *Repository) isRegularFile(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (r *Repository) notFound(name string, err error) error {
	return &core.LibraryNotFoundError{Repository: r.String(), Name: name, Err: err}
}
