// Package app wires the editing core to its surroundings: configuration,
// logging, the file watcher and the clipboard. It drives a workspace
// from a stream of text commands, read from a terminal or a script.
package app

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dshills/quill/internal/clipboard"
	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/watcher"
	"github.com/dshills/quill/internal/workspace"
)

// Options configures the application.
type Options struct {
	// ConfigPath is an explicit configuration file.
	ConfigPath string

	// ConfigDir replaces the user configuration directory.
	ConfigDir string

	// ProjectDir is searched for a project configuration file.
	ProjectDir string

	// Files are opened on startup, in order.
	Files []string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// LogFile overrides the configured log file when set.
	LogFile string

	// ReadOnly opens every tab read-only.
	ReadOnly bool

	// NoWatch disables reloading files changed on disk.
	NoWatch bool

	// JSON prints query results as JSON; Pretty indents it.
	JSON   bool
	Pretty bool

	// Output receives command results. Defaults to os.Stdout.
	Output io.Writer

	// Clock supplies edit timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Application owns one editing session.
type Application struct {
	opts Options

	config    *config.Config
	logger    *slog.Logger
	logCloser io.Closer

	workspace *workspace.Workspace
	watcher   *watcher.Watcher
	clipboard clipboard.Clipboard

	out io.Writer
	// skew is added to the clock by the wait command.
	skew     time.Duration
	commands map[string]command

	shutdownOnce sync.Once
}

// New creates and bootstraps an application.
func New(opts Options) (*Application, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	app := &Application{opts: opts, out: opts.Output}
	app.commands = commandTable()
	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// Workspace returns the session's workspace.
func (app *Application) Workspace() *workspace.Workspace { return app.workspace }

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config { return app.config }

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// now returns the timestamp for the next edit.
func (app *Application) now() time.Time {
	return app.opts.Clock().Add(app.skew)
}

// Shutdown releases the watcher and the log file. It is safe to call
// more than once.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		if app.watcher != nil {
			if err := app.watcher.Close(); err != nil && app.logger != nil {
				app.logger.Warn("closing watcher", "error", err)
			}
		}
		if app.logger != nil {
			app.logger.Info("session ended")
		}
		if app.logCloser != nil {
			_ = app.logCloser.Close()
		}
	})
}
