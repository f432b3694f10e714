package buffer

import (
	"errors"
	"fmt"
)

// Errors returned by buffer operations.
var (
	// ErrOutOfBounds indicates a position, line or index outside the text.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrEncoding indicates content that is not valid text.
	ErrEncoding = errors.New("invalid text encoding")

	// ErrPathRequired indicates a save with no known destination.
	ErrPathRequired = errors.New("path required")
)

// PathError records a failed file operation on a buffer.
type PathError struct {
	Op   string // load, save, reload
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

// IsIOError reports whether err is a file read or write failure, as
// opposed to a decoding failure.
func IsIOError(err error) bool {
	var pe *PathError
	return errors.As(err, &pe) && !errors.Is(err, ErrEncoding)
}

func outOfBounds(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrOutOfBounds, fmt.Sprintf(format, args...))
}
