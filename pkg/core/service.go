package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Service handles the business logic for libraries on top of a Repository.
type Service struct {
	repo Repository
	mu   sync.RWMutex
}

// NewService creates a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Repository returns the repository backing the service.
func (s *Service) Repository() Repository {
	return s.repo
}

// FetchLibrary retrieves a library.
func (s *Service) FetchLibrary(ctx context.Context, name string) (Library, error) {
	return s.repo.Fetch(ctx, name)
}

// AddLibrary persists a library in the default layout.
func (s *Service) AddLibrary(ctx context.Context, lib Library) error {
	if lib.Name == "" && lib.Metadata.Name == "" {
		return errors.New("library name cannot be empty")
	}
	return s.repo.Add(ctx, lib, DefaultLayout)
}

// ListLibraries collects every library name of the repository.
func (s *Service) ListLibraries(ctx context.Context) ([]string, error) {
	var names []string
	for name, err := range s.repo.Names(ctx) {
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Promote copies a library from src into the service's repository in the default layout.
// When the destination implements SourceMigrator, source files are rewritten on the way,
// so nested includes of the library's own headers become flat ones.
func (s *Service) Promote(ctx context.Context, src Repository, name string) (Library, error) {
	lib, err := src.Fetch(ctx, name)
	if err != nil {
		return Library{}, err
	}

	if migrator, ok := s.repo.(SourceMigrator); ok {
		files := make([]LibraryFile, 0, len(lib.Files))
		for _, f := range lib.Files {
			if f.Kind != FileKindSource {
				files = append(files, f)
				continue
			}
			migrated, err := migrateFile(f, lib.Metadata.Name, migrator)
			if err != nil {
				return Library{}, err
			}
			files = append(files, migrated)
		}
		lib.Files = files
	}

	if err := s.repo.Add(ctx, lib, DefaultLayout); err != nil {
		return Library{}, err
	}
	return lib, nil
}

func migrateFile(f LibraryFile, libraryName string, m SourceMigrator) (LibraryFile, error) {
	rc, err := f.Content()
	if err != nil {
		return LibraryFile{}, fmt.Errorf("failed to open %s: %w", f.Filename(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return LibraryFile{}, fmt.Errorf("failed to read %s: %w", f.Filename(), err)
	}
	if !bytes.Contains(data, []byte(libraryName+"/")) {
		return f, nil
	}
	out := m.MigrateSourcecode(string(data), libraryName)
	return NewLibraryFileFromBytes(f.Name, f.Kind, f.Extension, []byte(out)), nil
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx, pattern)
}
