package workout

import (
	"strings"

	"github.com/myrjola/coachplan/internal/errors"
)

var (
	ErrNotFound             = errors.NewSentinel("not found")
	ErrInvalidSelections    = errors.NewSentinel("invalid selections")
	ErrGeneratorUnavailable = errors.NewSentinel("exercise generator unavailable")
)

// ValidationError carries the user facing messages of rejected wizard selections. It matches ErrInvalidSelections
// with errors.Is.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid selections: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSelections
}
