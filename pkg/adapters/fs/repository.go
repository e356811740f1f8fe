package fs

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/aretw0/shelf/pkg/core"
	"github.com/aretw0/shelf/pkg/naming"
)

// writableProbe is any non-empty identity; strategies that map it to the root pin a single library.
const writableProbe = "probe"

// Repository implements core.Repository on a directory tree.
type Repository struct {
	Path        string
	fs          afero.Fs
	naming      core.NamingStrategy
	serializers map[core.Layout]Serializer
	config      Config
	log         *slog.Logger

	mu            sync.RWMutex
	watcherActive bool
	lastEvent     *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path string
	// Fs is the filesystem the repository lives on. Defaults to the OS filesystem.
	Fs afero.Fs
	// Naming maps identities to directories. Defaults to naming.ByName.
	Naming    core.NamingStrategy
	ReadOnly  bool
	MustExist bool
	Logger    *slog.Logger
	// ErrorHandler receives errors from background work (the watcher).
	ErrorHandler func(error)
	// Serializers overrides the descriptor generations. Defaults to DefaultSerializers.
	Serializers map[core.Layout]Serializer
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}
	if config.Naming == nil {
		config.Naming = naming.ByName{}
	}
	if config.Serializers == nil {
		config.Serializers = DefaultSerializers()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Repository{
		Path:        config.Path,
		fs:          config.Fs,
		naming:      config.Naming,
		serializers: config.Serializers,
		config:      config,
		log:         logger.With("repository", config.Path),
	}
}

// Initialize ensures the repository root exists.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := r.fs.Stat(r.Path)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("repository path does not exist: %s", r.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat repository path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("repository path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := r.fs.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}
	return nil
}

func (r *Repository) String() string {
	return "fs:" + r.Path
}

// Directory returns the directory holding the library named name.
func (r *Repository) Directory(name string) string {
	return filepath.Join(r.Path, r.naming.NameToFilesystem(name))
}

// Filesystem returns the filesystem the repository lives on.
func (r *Repository) Filesystem() afero.Fs {
	return r.fs
}

// Writable reports whether Add can succeed. A strategy that maps every identity
// to the root, as probed with writableProbe, pins a single library and never
// accepts additions.
func (r *Repository) Writable() bool {
	return !r.config.ReadOnly && r.naming.NameToFilesystem(writableProbe) != ""
}

// Names lazily yields the identities the naming strategy finds under the root,
// keeping only those whose layout can be detected.
func (r *Repository) Names(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for name, err := range r.naming.Names(ctx, r) {
			if err != nil {
				yield("", err)
				return
			}
			if _, err := r.Layout(ctx, name); err != nil {
				if errors.Is(err, core.ErrNotFound) {
					continue
				}
				yield("", err)
				return
			}
			if !yield(name, nil) {
				return
			}
		}
	}
}

// Entries implements core.NameSource: the visible directories under the root.
func (r *Repository) Entries(ctx context.Context) ([]string, error) {
	infos, err := afero.ReadDir(r.fs, r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list repository: %w", err)
	}

	var names []string
	for _, info := range infos {
		if !info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			continue
		}
		names = append(names, info.Name())
	}
	return names, nil
}

// Descriptor implements core.NameSource.
func (r *Repository) Descriptor(ctx context.Context, name string) (core.Descriptor, error) {
	layout, err := r.Layout(ctx, name)
	if err != nil {
		return core.Descriptor{}, err
	}
	return r.readDescriptor(name, layout)
}

// Fetch retrieves a library.
//
// Workflow:
//  1. Detect the layout of the library directory.
//  2. Parse the descriptor with the serializer of that layout and check its name.
//  3. Classify the directory entries into source and example files.
func (r *Repository) Fetch(ctx context.Context, name string) (core.Library, error) {
	layout, err := r.Layout(ctx, name)
	if err != nil {
		return core.Library{}, err
	}

	desc, err := r.readDescriptor(name, layout)
	if err != nil {
		return core.Library{}, err
	}

	scanned, err := scanFiles(r.fs, r.Directory(name))
	if err != nil {
		return core.Library{}, fmt.Errorf("failed to list files of %s: %w", name, err)
	}
	files := make([]core.LibraryFile, 0, len(scanned))
	for _, s := range scanned {
		files = append(files, s.file)
	}

	r.log.Debug("library fetched", "name", name, "layout", layout, "files", len(files))

	return core.Library{
		Name:     r.naming.ToName(desc),
		Metadata: desc,
		Files:    files,
	}, nil
}

func (r *Repository) readDescriptor(name string, layout core.Layout) (core.Descriptor, error) {
	s, ok := r.serializers[layout]
	if !ok {
		return core.Descriptor{}, &core.LibraryFormatError{Name: name, Path: r.Directory(name), Err: fmt.Errorf("unsupported layout %d", layout)}
	}
	path := filepath.Join(r.Directory(name), s.Filename())

	f, err := r.fs.Open(path)
	if err != nil {
		return core.Descriptor{}, &core.LibraryFormatError{Name: name, Path: path, Err: err}
	}
	defer f.Close()

	desc, err := s.Parse(f)
	if err != nil {
		return core.Descriptor{}, &core.LibraryFormatError{Name: name, Path: path, Err: err}
	}
	if desc.Name == "" {
		return core.Descriptor{}, &core.LibraryFormatError{Name: name, Path: path, Err: errors.New("descriptor has no name")}
	}

	if identity := r.naming.ToName(desc); !r.naming.MatchesName(identity, name) {
		// At the root there is no directory name to contradict: the library is just another one.
		if r.naming.NameToFilesystem(name) == "" {
			return core.Descriptor{}, r.notFound(name, fmt.Errorf("repository holds %q", identity))
		}
		return core.Descriptor{}, &core.LibraryFormatError{Name: name, Path: path, Err: fmt.Errorf("descriptor names %q", identity)}
	}
	return desc, nil
}

// Add persists a library in the requested layout.
//
// Workflow:
//  1. Refuse on read-only repositories and on strategies pinning the root.
//     A name whose directory would escape the root is a format error.
//  2. Create the library directory if needed.
//  3. Write the descriptor atomically and drop the marker of any other generation.
//  4. Write every file at its classified location.
//
// Writes are best effort: a failure midway leaves what was already written.
func (r *Repository) Add(ctx context.Context, lib core.Library, layout core.Layout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.config.ReadOnly {
		return r.readOnly("add")
	}

	desc := lib.Metadata
	if desc.Name == "" {
		desc.Name = lib.Name
	}
	if desc.Name == "" {
		return errors.New("library has no name")
	}

	name := r.naming.ToName(desc)
	segment := r.naming.NameToFilesystem(name)
	if segment == "" {
		return r.readOnly("add")
	}
	if !filepath.IsLocal(filepath.FromSlash(segment)) {
		return &core.LibraryFormatError{Name: name, Path: r.Path, Err: errors.New("name escapes the repository root")}
	}

	s, ok := r.serializers[layout]
	if !ok {
		return fmt.Errorf("unsupported layout %d", layout)
	}

	dir := filepath.Join(r.Path, segment)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}

	data, err := s.Serialize(desc)
	if err != nil {
		return fmt.Errorf("failed to serialize descriptor: %w", err)
	}
	if err := writeFileAtomic(r.fs, filepath.Join(dir, s.Filename()), data, 0644); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}

	// A directory has at most one authoritative layout.
	for other, stale := range r.serializers {
		if other == layout {
			continue
		}
		if err := r.fs.Remove(filepath.Join(dir, stale.Filename())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", stale.Filename(), err)
		}
	}

	for _, f := range lib.Files {
		if err := r.writeFile(dir, f); err != nil {
			return err
		}
	}

	r.log.Debug("library added", "name", name, "layout", layout, "files", len(lib.Files))
	return nil
}

func (r *Repository) writeFile(dir string, f core.LibraryFile) error {
	target, err := targetPath(dir, f)
	if err != nil {
		return err
	}
	if err := r.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directories for %s: %w", f.Filename(), err)
	}

	rc, err := f.Content()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Filename(), err)
	}
	defer rc.Close()

	if err := writeStreamAtomic(r.fs, target, rc, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Filename(), err)
	}
	return nil
}

func (r *Repository) readOnly(op string) error {
	return &core.RepositoryError{Repository: r.String(), Op: op, Err: core.ErrReadOnly}
}

var _ core.Repository = (*Repository)(nil)
var _ core.NameSource = (*Repository)(nil)
var _ core.SourceMigrator = (*Repository)(nil)
