package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func newTestWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func tempFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func receive(t *testing.T, w *Watcher, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev, true
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpWrite, "WRITE"},
		{OpRemove | OpCreate, "CREATE|REMOVE"},
		{0, "NONE"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatchUnwatch(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	a := tempFile(t, dir, "a.txt")
	b := tempFile(t, dir, "b.txt")

	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch(a) error = %v", err)
	}
	if err := w.Watch(a); err != nil {
		t.Errorf("second Watch(a) error = %v, want nil", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch(b) error = %v", err)
	}
	if got := w.dirs[dir]; got != 2 {
		t.Errorf("directory refcount = %d, want 2", got)
	}

	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch(a) error = %v", err)
	}
	if w.IsWatching(a) {
		t.Error("a should not be watched")
	}
	if !w.IsWatching(b) {
		t.Error("b should still be watched")
	}
	if err := w.Unwatch(a); !errors.Is(err, ErrNotWatching) {
		t.Errorf("Unwatch(a) again error = %v, want ErrNotWatching", err)
	}
	if err := w.Unwatch(b); err != nil {
		t.Fatalf("Unwatch(b) error = %v", err)
	}
	if len(w.dirs) != 0 {
		t.Errorf("dirs = %v, want empty", w.dirs)
	}
}

func TestEventsAreCoalesced(t *testing.T) {
	w := newTestWatcher(t, WithDebounce(time.Hour))
	dir := t.TempDir()
	a := tempFile(t, dir, "a.txt")
	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}

	w.handle(fsnotify.Event{Name: a, Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: a, Op: fsnotify.Chmod})
	w.handle(fsnotify.Event{Name: filepath.Join(dir, "other.txt"), Op: fsnotify.Write})
	w.Flush()

	ev, ok := receive(t, w, time.Second)
	if !ok {
		t.Fatal("no event after Flush")
	}
	if ev.Path != a {
		t.Errorf("Path = %q, want %q", ev.Path, a)
	}
	if ev.Op != OpWrite|OpChmod {
		t.Errorf("Op = %v, want WRITE|CHMOD", ev.Op)
	}
	if _, ok := receive(t, w, 50*time.Millisecond); ok {
		t.Error("unwatched file produced an event")
	}
}

func TestRenameOverSaveReportsWrite(t *testing.T) {
	w := newTestWatcher(t, WithDebounce(time.Hour))
	a := tempFile(t, t.TempDir(), "a.txt")
	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}

	w.handle(fsnotify.Event{Name: a, Op: fsnotify.Rename})
	w.Flush()

	ev, ok := receive(t, w, time.Second)
	if !ok {
		t.Fatal("no event after Flush")
	}
	if !ev.Op.Has(OpWrite) {
		t.Errorf("Op = %v, want WRITE set because the file still exists", ev.Op)
	}
}

func TestDetectsRealWrite(t *testing.T) {
	w := newTestWatcher(t, WithDebounce(20*time.Millisecond))
	a := tempFile(t, t.TempDir(), "a.txt")
	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(a, []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev, ok := receive(t, w, 2*time.Second)
	if !ok {
		t.Fatal("no event for a write")
	}
	if ev.Path != a {
		t.Errorf("Path = %q, want %q", ev.Path, a)
	}
}

func TestClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events channel should be closed")
	}
	if err := w.Watch("x"); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Watch after Close error = %v, want ErrWatcherClosed", err)
	}
}
