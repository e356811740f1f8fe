package contrib

import (
	"context"
	"regexp"

	"github.com/aretw0/shelf/pkg/core"
)

var (
	// semverRegex matches MAJOR.MINOR.PATCH with optional pre-release and build parts.
	semverRegex = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-([0-9A-Za-z\-\.]+))?(?:\+([0-9A-Za-z\-\.]+))?$`)

	libraryNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]*$`)
)

// LocalValidator checks a library without a remote service.
type LocalValidator struct{}

// ValidateLibrary fetches name from repo and reports every rule it breaks.
// Fetch failures are returned as errors, not as validation problems.
func (LocalValidator) ValidateLibrary(ctx context.Context, repo core.Repository, name string) (core.ValidationResult, error) {
	lib, err := repo.Fetch(ctx, name)
	if err != nil {
		return core.ValidationResult{}, err
	}

	result := core.ValidationResult{Valid: true}
	d := lib.Metadata

	switch {
	case d.Name == "":
		result.AddError("name", "is required")
	case !libraryNameRegex.MatchString(d.Name):
		result.AddError("name", "must start with a letter or digit and contain only letters, digits, '.', '-' and '_'")
	}

	switch {
	case d.Version == "":
		result.AddError("version", "is required")
	case !semverRegex.MatchString(d.Version):
		result.AddError("version", "must be a semantic version")
	}

	if d.Sentence == "" && d.Description == "" {
		result.AddError("sentence", "is required")
	}

	if len(lib.SourceFiles()) == 0 {
		result.AddError("files", "must include at least one source file")
	}

	return result, nil
}

var _ Validator = LocalValidator{}
