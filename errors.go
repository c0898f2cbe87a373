package tcx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingRequiredField reports a sample without a value the caller depends on.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrMalformedValue reports text that does not parse as the expected type.
	ErrMalformedValue = errors.New("malformed value")
	// ErrEmptyInput reports that no samples survived extraction and filtering.
	ErrEmptyInput = errors.New("no trackpoints")
	// ErrInvalidConfiguration reports unusable grouping or QDH settings.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// FieldError describes a problem with a single field of a single sample.
// It unwraps to one of the Err* sentinels.
type FieldError struct {
	Kind   error
	Field  string
	Sample int
	Path   []Tag
	Raw    string
}

func (e *FieldError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "trackpoint %d: %v: %s", e.Sample, e.Kind, e.Field)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (%s)", joinPath(e.Path))
	}
	if e.Raw != "" {
		fmt.Fprintf(&b, ": %q", e.Raw)
	}
	return b.String()
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

func joinPath(path []Tag) string {
	parts := make([]string, len(path))
	for i, t := range path {
		parts[i] = string(t)
	}
	return strings.Join(parts, "/")
}
