package subjects

import "errors"

var (
	ErrNotFound     = errors.New("subject not found")
	ErrInvalidInput = errors.New("subject name is required")
)
