package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors.
var (
	ErrReadOnly = errors.New("repository is in read-only mode")
	ErrNotFound = errors.New("library not found")
	ErrFormat   = errors.New("invalid library descriptor")
)

// LibraryNotFoundError is returned when an identity resolves to no valid library.
type LibraryNotFoundError struct {
	Repository string
	Name       string
	Err        error
}

func (e *LibraryNotFoundError) Error() string {
	msg := fmt.Sprintf("library %q not found", e.Name)
	if e.Repository != "" {
		msg += " in " + e.Repository
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LibraryNotFoundError) Unwrap() error { return e.Err }

func (e *LibraryNotFoundError) Is(target error) bool { return target == ErrNotFound }

// LibraryFormatError is returned when a descriptor is unreadable, unparsable or names another library.
type LibraryFormatError struct {
	Name string
	Path string
	Err  error
}

func (e *LibraryFormatError) Error() string {
	return fmt.Sprintf("library %q has an invalid descriptor at %s: %v", e.Name, e.Path, e.Err)
}

func (e *LibraryFormatError) Unwrap() error { return e.Err }

func (e *LibraryFormatError) Is(target error) bool { return target == ErrFormat }

// RepositoryError is returned when a repository cannot perform an operation.
type RepositoryError struct {
	Repository string
	Op         string
	Err        error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: cannot %s: %v", e.Repository, e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// ValidationResult is the outcome of validating a library.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// AddError records a problem with key and marks the result invalid.
func (r *ValidationResult) AddError(key, message string) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[key] = message
	r.Valid = false
}

// ValidationError is returned when a validation result reports an invalid library.
type ValidationError struct {
	Result ValidationResult
}

// Error renders "Library is not valid. " followed by each "<key> <value>" entry.
// Entries are ordered by key.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Result.Errors))
	for k := range e.Result.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make([]string, 0, len(keys))
	for _, k := range keys {
		details = append(details, k+" "+e.Result.Errors[k])
	}
	return "Library is not valid. " + strings.Join(details, " ")
}
