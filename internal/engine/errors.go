package engine

import (
	"errors"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/history"
)

// Errors returned by engine operations.
var (
	// ErrOutOfBounds indicates a position or index outside the text.
	ErrOutOfBounds = buffer.ErrOutOfBounds

	// ErrEncoding indicates file content that is not valid text.
	ErrEncoding = buffer.ErrEncoding

	// ErrPathRequired indicates a save with no destination.
	ErrPathRequired = buffer.ErrPathRequired

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrInvalidText indicates inserted text that is not valid UTF-8.
	ErrInvalidText = errors.New("text is not valid UTF-8")

	// ErrInvalidPattern indicates a search query that does not compile.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)
