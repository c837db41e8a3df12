package path

import (
	"errors"
	"fmt"
)

// ErrMalformed indicates a path payload with no usable curriculum.
var ErrMalformed = errors.New("malformed path data")

// ErrPathNotFound indicates an operation against a path that does not exist.
var ErrPathNotFound = errors.New("learning path not found")

func malformedErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
