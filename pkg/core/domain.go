// Package core holds the domain of shelf: libraries, their files and descriptors,
// and the contracts every repository and naming strategy must honor.
package core

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"time"
)

// Library is the central entity of the domain.
// It is a named, versioned unit of source and example files plus metadata.
// A Library is built fresh on every fetch and has no identity beyond its repository.
type Library struct {
	// Name is the identity resolved by the repository's naming strategy.
	Name     string
	Metadata Descriptor
	Files    []LibraryFile
}

// SourceFiles returns the files of kind FileKindSource, in order.
func (l Library) SourceFiles() []LibraryFile {
	return l.filesOfKind(FileKindSource)
}

// ExampleFiles returns the files of kind FileKindExample, in order.
func (l Library) ExampleFiles() []LibraryFile {
	return l.filesOfKind(FileKindExample)
}

func (l Library) filesOfKind(kind FileKind) []LibraryFile {
	var files []LibraryFile
	for _, f := range l.Files {
		if f.Kind == kind {
			files = append(files, f)
		}
	}
	return files
}

// FileKind classifies a library file.
type FileKind string

const (
	FileKindSource  FileKind = "source"
	FileKindExample FileKind = "example"
	FileKindOther   FileKind = "other"
)

// ContentFunc opens a new, independent stream over a file's bytes.
type ContentFunc func() (io.ReadCloser, error)

// LibraryFile is a content-bearing file of a library.
type LibraryFile struct {
	// Name is a slash separated path without extension.
	// Example files are named relative to the examples directory.
	Name      string
	Kind      FileKind
	Extension string
	open      ContentFunc
}

// NewLibraryFile creates a file whose content is produced by open on every access.
func NewLibraryFile(name string, kind FileKind, ext string, open ContentFunc) LibraryFile {
	return LibraryFile{Name: name, Kind: kind, Extension: ext, open: open}
}

// NewLibraryFileFromBytes creates a file backed by an in-memory buffer.
func NewLibraryFileFromBytes(name string, kind FileKind, ext string, data []byte) LibraryFile {
	return NewLibraryFile(name, kind, ext, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// Content opens a new stream over the file. Each call is independent; callers must close it.
func (f LibraryFile) Content() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("library file %s has no content", f.Filename())
	}
	return f.open()
}

// Filename is the base file name including the extension.
func (f LibraryFile) Filename() string {
	return path.Base(f.Name) + f.Extension
}

// Descriptor is the persisted metadata of a library.
// Keys that are not modeled explicitly are kept in Extra so they survive a round trip.
type Descriptor struct {
	Name        string
	Version     string
	License     string
	Author      string
	Sentence    string
	Description string
	Extra       map[string]any
}

// Layout is the on-disk descriptor generation of a library directory.
type Layout int

const (
	// LayoutInvalid means no descriptor generation could be detected.
	LayoutInvalid Layout = 0
	// LayoutLegacy is the JSON descriptor (spark.json).
	LayoutLegacy Layout = 1
	// LayoutCurrent is the key=value descriptor (library.properties).
	LayoutCurrent Layout = 2

	DefaultLayout = LayoutCurrent
)

func (l Layout) String() string {
	switch l {
	case LayoutLegacy:
		return "legacy"
	case LayoutCurrent:
		return "current"
	default:
		return "invalid"
	}
}

// EventType represents the type of change in a repository.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a library on disk.
type Event struct {
	Type EventType
	// Name is the library path segment under the repository root.
	Name      string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s at %s", e.Type, e.Name, time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339))
}
