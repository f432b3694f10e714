package engine

import (
	"time"

	"github.com/dshills/quill/internal/engine/buffer"
	"github.com/dshills/quill/internal/engine/history"
)

// Default configuration values.
const (
	DefaultTabWidth       = 4
	DefaultMaxUndoEntries = history.DefaultMaxGroups
	DefaultViewportHeight = 40
	DefaultViewportWidth  = 120
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithTabWidth sets the tab width for the engine.
func WithTabWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.tabWidth = width
		}
	}
}

// WithLineEnding sets the line ending style of a new buffer. Loaded
// files keep the style they were written with.
func WithLineEnding(ending buffer.LineEnding) Option {
	return func(e *Engine) {
		e.bufOpts = append(e.bufOpts, buffer.WithLineEnding(ending))
	}
}

// WithEncoding sets the encoding of a new buffer.
func WithEncoding(enc buffer.Encoding) Option {
	return func(e *Engine) {
		e.bufOpts = append(e.bufOpts, buffer.WithEncoding(enc))
	}
}

// WithMaxUndoEntries sets the maximum number of undo steps.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		e.histOpts = append(e.histOpts, history.WithMaxGroups(max))
	}
}

// WithCoalesceThreshold sets the longest typing pause that still joins
// two characters into one undo step.
func WithCoalesceThreshold(d time.Duration) Option {
	return func(e *Engine) {
		e.histOpts = append(e.histOpts, history.WithCoalesceThreshold(d))
	}
}

// WithAutoIndent turns indentation of new lines on or off.
func WithAutoIndent(on bool) Option {
	return func(e *Engine) {
		e.autoIndent = on
	}
}

// WithViewport sets the initial viewport size in rows and cells.
func WithViewport(height, width int) Option {
	return func(e *Engine) {
		if height > 0 {
			e.height = height
		}
		if width > 0 {
			e.width = width
		}
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}
