package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/dshills/quill/internal/engine"
)

// Workspace is the ordered set of open tabs, the active tab and the
// recent-files list. Like the engines it holds, it is owned by one
// goroutine and does no locking.
type Workspace struct {
	tabs   []*Tab
	active int

	recent    []string
	maxRecent int

	engineOpts []engine.Option
	watcher    FileWatcher
	logger     *slog.Logger
}

// New creates an empty workspace.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		active:    -1,
		maxRecent: DefaultMaxRecent,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ============================================================================
// Tab Queries
// ============================================================================

// Len returns the number of tabs.
func (w *Workspace) Len() int { return len(w.tabs) }

// ActiveIndex returns the active tab's index, or -1 with no tabs.
func (w *Workspace) ActiveIndex() int { return w.active }

// Active returns the active tab.
func (w *Workspace) Active() (*Tab, error) {
	if w.active < 0 {
		return nil, ErrNoActiveTab
	}
	return w.tabs[w.active], nil
}

// Tab returns the tab at index i.
func (w *Workspace) Tab(i int) (*Tab, error) {
	if i < 0 || i >= len(w.tabs) {
		return nil, fmt.Errorf("%w: tab %d of %d", ErrOutOfBounds, i, len(w.tabs))
	}
	return w.tabs[i], nil
}

// Tabs returns display info for every tab in order.
func (w *Workspace) Tabs() []TabInfo {
	infos := make([]TabInfo, len(w.tabs))
	for i, t := range w.tabs {
		infos[i] = t.info(i == w.active)
	}
	return infos
}

// IndexOf returns the index of the tab holding path, or -1.
func (w *Workspace) IndexOf(path string) int {
	abs, err := canonical(path)
	if err != nil {
		return -1
	}
	return slices.IndexFunc(w.tabs, func(t *Tab) bool { return t.Path() == abs })
}

// HasUnsavedChanges reports whether any tab is dirty.
func (w *Workspace) HasUnsavedChanges() bool {
	return slices.ContainsFunc(w.tabs, (*Tab).Dirty)
}

// ModifiedTabs returns the indexes of dirty tabs.
func (w *Workspace) ModifiedTabs() []int {
	var dirty []int
	for i, t := range w.tabs {
		if t.Dirty() {
			dirty = append(dirty, i)
		}
	}
	return dirty
}

// ============================================================================
// Open / New / Close
// ============================================================================

// Open activates the tab already holding path, or loads the file into a
// new tab at the end and activates it. Either way the path moves to the
// front of the recent-files list.
func (w *Workspace) Open(path string) (*Tab, error) {
	abs, err := canonical(path)
	if err != nil {
		return nil, err
	}
	if i := w.IndexOf(abs); i >= 0 {
		w.active = i
		w.addRecent(abs)
		w.logger.Debug("activated open tab", "path", abs, "index", i)
		return w.tabs[i], nil
	}

	e, err := engine.Open(abs, w.engineOpts...)
	if err != nil {
		return nil, err
	}
	t := newTab(e)
	w.tabs = append(w.tabs, t)
	w.active = len(w.tabs) - 1
	w.addRecent(abs)
	w.watch(abs)
	w.logger.Info("opened file", "path", abs, "tab", t.id, "lines", e.LineCount())
	return t, nil
}

// NewTab appends an empty unnamed tab and activates it.
func (w *Workspace) NewTab() *Tab {
	t := newTab(engine.New(w.engineOpts...))
	w.tabs = append(w.tabs, t)
	w.active = len(w.tabs) - 1
	w.logger.Debug("new tab", "tab", t.id)
	return t
}

// Close removes the tab at index i. A dirty tab is kept and
// ErrUnsavedChanges returned unless force is set. When the active tab
// closes, the tab to its left becomes active, else the one now at its
// place, else none.
func (w *Workspace) Close(i int, force bool) error {
	t, err := w.Tab(i)
	if err != nil {
		return err
	}
	if t.Dirty() && !force {
		return &TabError{Index: i, Label: t.Label(), Err: ErrUnsavedChanges}
	}

	w.tabs = slices.Delete(w.tabs, i, i+1)
	switch {
	case len(w.tabs) == 0:
		w.active = -1
	case i < w.active:
		w.active--
	case i == w.active && i > 0:
		w.active = i - 1
	}
	if p := t.Path(); p != "" {
		w.unwatch(p)
	}
	w.logger.Info("closed tab", "tab", t.id, "label", t.Label(), "forced", force && t.Dirty())
	return nil
}

// CloseActive closes the active tab.
func (w *Workspace) CloseActive(force bool) error {
	if w.active < 0 {
		return ErrNoActiveTab
	}
	return w.Close(w.active, force)
}

// ============================================================================
// Navigation
// ============================================================================

// SwitchTo activates the tab at index i.
func (w *Workspace) SwitchTo(i int) error {
	if _, err := w.Tab(i); err != nil {
		return err
	}
	w.active = i
	return nil
}

// Next activates the tab to the right, wrapping to the first.
func (w *Workspace) Next() error {
	if w.active < 0 {
		return ErrNoActiveTab
	}
	w.active = (w.active + 1) % len(w.tabs)
	return nil
}

// Previous activates the tab to the left, wrapping to the last.
func (w *Workspace) Previous() error {
	if w.active < 0 {
		return ErrNoActiveTab
	}
	w.active = (w.active - 1 + len(w.tabs)) % len(w.tabs)
	return nil
}

// Move reorders the tab at from to index to. The active tab stays
// active.
func (w *Workspace) Move(from, to int) error {
	if _, err := w.Tab(from); err != nil {
		return err
	}
	if _, err := w.Tab(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	activeTab := w.tabs[w.active]
	t := w.tabs[from]
	w.tabs = slices.Delete(w.tabs, from, from+1)
	w.tabs = slices.Insert(w.tabs, to, t)
	w.active = slices.Index(w.tabs, activeTab)
	return nil
}

// ============================================================================
// Saving
// ============================================================================

// SaveActive saves the active tab to path, or to its own path when path
// is "". An unnamed tab with no path gives ErrPathRequired, and the
// caller should ask for one. Saving under a new name adds it to the
// recent-files list.
func (w *Workspace) SaveActive(path string) error {
	if w.active < 0 {
		return ErrNoActiveTab
	}
	return w.save(w.active, path)
}

// SaveAll saves every dirty tab that has a path. Unnamed dirty tabs are
// reported as ErrPathRequired; the other tabs are still saved.
func (w *Workspace) SaveAll() error {
	var errs []error
	for i, t := range w.tabs {
		if !t.Dirty() {
			continue
		}
		if err := w.save(i, ""); err != nil {
			errs = append(errs, &TabError{Index: i, Label: t.Label(), Err: err})
		}
	}
	return errors.Join(errs...)
}

func (w *Workspace) save(i int, path string) error {
	t := w.tabs[i]
	old := t.Path()
	if path == "" && old == "" {
		return ErrPathRequired
	}
	if path != "" {
		abs, err := canonical(path)
		if err != nil {
			return err
		}
		if j := w.IndexOf(abs); j >= 0 && j != i {
			return &TabError{Index: j, Label: w.tabs[j].Label(), Err: ErrAlreadyOpen}
		}
		path = abs
	}

	if err := t.engine.Save(path); err != nil {
		w.logger.Warn("save failed", "tab", t.id, "error", err)
		return err
	}
	t.conflict = false
	if p := t.Path(); p != old {
		if old != "" {
			w.unwatch(old)
		}
		w.watch(p)
		w.addRecent(p)
	}
	w.logger.Info("saved file", "path", t.Path(), "tab", t.id)
	return nil
}

// ============================================================================
// Disk Changes
// ============================================================================

// ChangeAction says what FileChanged did with a change on disk.
type ChangeAction int

const (
	// ChangeIgnored means no tab holds the file or the change was our own save.
	ChangeIgnored ChangeAction = iota
	// ChangeReloaded means a clean tab took the new content.
	ChangeReloaded
	// ChangeConflict means the tab has unsaved edits and was left alone.
	ChangeConflict
	// ChangeRemoved means the file is gone; the tab keeps its text.
	ChangeRemoved
)

func (a ChangeAction) String() string {
	switch a {
	case ChangeIgnored:
		return "ignored"
	case ChangeReloaded:
		return "reloaded"
	case ChangeConflict:
		return "conflict"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// FileChanged handles a change to path on disk.
func (w *Workspace) FileChanged(path string) (ChangeAction, error) {
	i := w.IndexOf(path)
	if i < 0 {
		return ChangeIgnored, nil
	}
	t := w.tabs[i]

	info, err := os.Stat(t.Path())
	if errors.Is(err, os.ErrNotExist) {
		t.conflict = true
		w.logger.Warn("file removed on disk", "path", t.Path())
		return ChangeRemoved, nil
	}
	if err != nil {
		return ChangeIgnored, err
	}
	if info.ModTime().Equal(t.engine.ModTime()) {
		return ChangeIgnored, nil
	}
	if t.Dirty() {
		t.conflict = true
		w.logger.Warn("file changed under unsaved edits", "path", t.Path())
		return ChangeConflict, nil
	}
	if err := t.engine.Reload(); err != nil {
		return ChangeIgnored, err
	}
	t.conflict = false
	w.logger.Info("reloaded file", "path", t.Path())
	return ChangeReloaded, nil
}

// Reload replaces tab i's content with the file on disk, discarding
// unsaved edits.
func (w *Workspace) Reload(i int) error {
	t, err := w.Tab(i)
	if err != nil {
		return err
	}
	if t.Path() == "" {
		return ErrPathRequired
	}
	if err := t.engine.Reload(); err != nil {
		return err
	}
	t.conflict = false
	return nil
}

// UnsavedDiff returns a unified diff from the file on disk to tab i's
// current text. An unnamed tab diffs against empty text.
func (w *Workspace) UnsavedDiff(i int) (string, error) {
	t, err := w.Tab(i)
	if err != nil {
		return "", err
	}
	var disk, from string
	if p := t.Path(); p != "" {
		saved, err := engine.Open(p)
		if err != nil {
			return "", err
		}
		disk, from = saved.Text(), p
	} else {
		from = UntitledLabel
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(disk),
		B:        difflib.SplitLines(t.engine.Text()),
		FromFile: from,
		ToFile:   t.Label() + " (unsaved)",
		Context:  3,
	})
}

// ============================================================================
// Recent Files
// ============================================================================

// RecentFiles returns recently opened paths, newest first.
func (w *Workspace) RecentFiles() []string {
	return slices.Clone(w.recent)
}

// ClearRecent empties the recent-files list.
func (w *Workspace) ClearRecent() {
	w.recent = nil
}

func (w *Workspace) addRecent(path string) {
	w.recent = slices.DeleteFunc(w.recent, func(p string) bool { return p == path })
	w.recent = slices.Insert(w.recent, 0, path)
	if len(w.recent) > w.maxRecent {
		w.recent = w.recent[:w.maxRecent]
	}
}

// ============================================================================
// Helpers
// ============================================================================

func (w *Workspace) watch(path string) {
	if w.watcher == nil {
		return
	}
	if err := w.watcher.Watch(path); err != nil {
		w.logger.Debug("watch failed", "path", path, "error", err)
	}
}

func (w *Workspace) unwatch(path string) {
	if w.watcher == nil {
		return
	}
	if err := w.watcher.Unwatch(path); err != nil {
		w.logger.Debug("unwatch failed", "path", path, "error", err)
	}
}

// canonical makes tab paths comparable.
func canonical(path string) (string, error) {
	if path == "" {
		return "", ErrPathRequired
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
