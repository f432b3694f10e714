package workspace

import (
	"errors"

	"github.com/dshills/quill/internal/engine"
)

// Errors returned by workspace operations.
var (
	// ErrOutOfBounds indicates a tab index outside the tab list.
	ErrOutOfBounds = engine.ErrOutOfBounds

	// ErrPathRequired indicates a save of an unnamed tab with no path given.
	ErrPathRequired = engine.ErrPathRequired

	// ErrUnsavedChanges indicates a close of a dirty tab without force.
	ErrUnsavedChanges = errors.New("tab has unsaved changes")

	// ErrNoActiveTab indicates an operation that needs an active tab
	// on an empty workspace.
	ErrNoActiveTab = errors.New("no active tab")

	// ErrAlreadyOpen indicates a save-as onto a path another tab holds.
	ErrAlreadyOpen = errors.New("path is open in another tab")
)

// TabError wraps an error with the tab it concerns.
type TabError struct {
	Index int
	Label string
	Err   error
}

func (e *TabError) Error() string {
	return "tab " + e.Label + ": " + e.Err.Error()
}

func (e *TabError) Unwrap() error { return e.Err }
