package workspace

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/engine"
)

// UntitledLabel is the label of a tab with no file.
const UntitledLabel = "Untitled"

// Tab pairs one engine with its identity in the workspace. The engine
// owns the tab's text, cursors and history.
type Tab struct {
	id     uuid.UUID
	engine *engine.Engine

	// conflict is set when the file changed on disk while the tab had
	// unsaved edits.
	conflict bool
}

func newTab(e *engine.Engine) *Tab {
	return &Tab{id: uuid.New(), engine: e}
}

// ID returns the tab's stable identifier.
func (t *Tab) ID() uuid.UUID { return t.id }

// Engine returns the tab's editing engine.
func (t *Tab) Engine() *engine.Engine { return t.engine }

// Path returns the tab's file path, or "" for an unnamed tab.
func (t *Tab) Path() string { return t.engine.Path() }

// Dirty reports unsaved changes. It is derived from the buffer and
// cannot be set directly.
func (t *Tab) Dirty() bool { return t.engine.Dirty() }

// Conflict reports that the file changed on disk under unsaved edits.
func (t *Tab) Conflict() bool { return t.conflict }

// Label returns the file's base name, or UntitledLabel.
func (t *Tab) Label() string {
	if p := t.engine.Path(); p != "" {
		return filepath.Base(p)
	}
	return UntitledLabel
}

// TabInfo is a snapshot of one tab for display.
type TabInfo struct {
	ID       string
	Label    string
	Path     string
	Dirty    bool
	Active   bool
	Conflict bool
}

func (t *Tab) info(active bool) TabInfo {
	return TabInfo{
		ID:       t.id.String(),
		Label:    t.Label(),
		Path:     t.Path(),
		Dirty:    t.Dirty(),
		Active:   active,
		Conflict: t.conflict,
	}
}
