package documents

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidInput    = errors.New("document name is required")
	ErrSubjectNotFound = errors.New("subject not found")
)

// FileRejectedError carries the upload validation violations. Each entry is a
// user-facing message from the quota package.
type FileRejectedError struct {
	Violations []string
}

func (e FileRejectedError) Error() string {
	if len(e.Violations) == 0 {
		return "file rejected"
	}
	return strings.Join(e.Violations, "; ")
}
