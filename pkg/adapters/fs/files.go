package fs

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/aretw0/shelf/pkg/core"
)

const (
	// examplesDir holds example sketches, nested by their relative path.
	examplesDir = "examples"

	sourcePattern   = "*.{c,cc,cpp,cxx,h,hh,hpp,hxx,ino}"
	examplesPattern = "**/" + examplesDir + "/**"
)

// IsSourceFileName reports whether name carries a source or header extension.
// Descriptors, examples, and arbitrary other files are not sources.
func IsSourceFileName(name string) bool {
	ok, _ := doublestar.Match(sourcePattern, path.Base(filepath.ToSlash(name)))
	return ok
}

// scannedFile is a classified file found in a library directory.
type scannedFile struct {
	rel  string // slash separated, relative to the library directory
	full string
	file core.LibraryFile
}

// classify decides whether a library-relative path is part of the library, and how.
func classify(rel string) (name string, kind core.FileKind, ok bool) {
	ext := path.Ext(rel)

	if isExample, _ := doublestar.Match(examplesPattern, rel); isExample {
		segments := strings.Split(rel, "/")
		for i, seg := range segments[:len(segments)-1] {
			if seg == examplesDir {
				sub := strings.Join(segments[i+1:], "/")
				return strings.TrimSuffix(sub, ext), core.FileKindExample, true
			}
		}
	}

	if IsSourceFileName(rel) {
		return strings.TrimSuffix(rel, ext), core.FileKindSource, true
	}
	return "", "", false
}

// scanFiles walks a library directory and classifies every visible regular file.
// Hidden files and directories are skipped. Order follows the walk (lexical).
func scanFiles(fsys afero.Fs, dir string) ([]scannedFile, error) {
	var files []scannedFile

	err := afero.Walk(fsys, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
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
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		name, kind, ok := classify(rel)
		if !ok {
			return nil
		}

		full := p
		files = append(files, scannedFile{
			rel:  rel,
			full: full,
			file: core.NewLibraryFile(name, kind, path.Ext(rel), func() (io.ReadCloser, error) {
				return fsys.Open(full)
			}),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// targetPath is where Add stores f inside dir.
// Sources are flattened, examples keep their relative path under examples/.
func targetPath(dir string, f core.LibraryFile) (string, error) {
	local := filepath.FromSlash(f.Name + f.Extension)
	if f.Name == "" || !filepath.IsLocal(local) {
		return "", fmt.Errorf("invalid library file name %q", f.Name+f.Extension)
	}

	switch f.Kind {
	case core.FileKindSource:
		return filepath.Join(dir, path.Base(f.Name)+f.Extension), nil
	case core.FileKindExample:
		return filepath.Join(dir, examplesDir, local), nil
	default:
		return filepath.Join(dir, local), nil
	}
}
