package workspace

import (
	"log/slog"

	"github.com/dshills/quill/internal/engine"
)

// DefaultMaxRecent is the default length of the recent-files list.
const DefaultMaxRecent = 10

// FileWatcher is told which files the workspace has open.
type FileWatcher interface {
	Watch(path string) error
	Unwatch(path string) error
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithMaxRecent caps the recent-files list.
func WithMaxRecent(n int) Option {
	return func(w *Workspace) {
		if n > 0 {
			w.maxRecent = n
		}
	}
}

// WithEngineOptions sets the options every new tab's engine is built with.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(w *Workspace) {
		w.engineOpts = append(w.engineOpts, opts...)
	}
}

// WithLogger sets the workspace logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWatcher registers open files with a watcher.
func WithWatcher(fw FileWatcher) Option {
	return func(w *Workspace) {
		w.watcher = fw
	}
}
