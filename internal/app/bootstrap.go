package app

import (
	"os"

	"golang.org/x/term"

	"github.com/dshills/quill/internal/clipboard"
	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/logging"
	"github.com/dshills/quill/internal/watcher"
	"github.com/dshills/quill/internal/workspace"
)

// bootstrap initializes components in dependency order. Whatever was
// started before a failure is released by Shutdown.
func (app *Application) bootstrap() error {
	steps := []func() error{
		app.initConfig,
		app.initLogging,
		app.initWatcher,
		app.initClipboard,
		app.initWorkspace,
		app.initDocuments,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// initConfig loads the configuration layers and applies flag overrides.
func (app *Application) initConfig() error {
	var opts []config.Option
	if app.opts.ConfigDir != "" {
		opts = append(opts, config.WithUserConfigDir(app.opts.ConfigDir))
	}
	if app.opts.ConfigPath != "" {
		opts = append(opts, config.WithFile(app.opts.ConfigPath))
	}
	if app.opts.ProjectDir != "" {
		opts = append(opts, config.WithProjectDir(app.opts.ProjectDir))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}

	overrides := map[string]any{}
	if app.opts.LogLevel != "" {
		overrides["logging.level"] = app.opts.LogLevel
	}
	if app.opts.LogFile != "" {
		overrides["logging.file"] = app.opts.LogFile
	}
	if app.opts.NoWatch {
		overrides["watcher.enabled"] = false
	}
	for path, v := range overrides {
		if err := cfg.Set(path, v); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	}

	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.config = cfg
	return nil
}

// initLogging opens the process logger.
func (app *Application) initLogging() error {
	lc := app.config.Logging()
	logger, closer, err := logging.New(logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		File:   lc.File,
	})
	if err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	app.logger = logger
	app.logCloser = closer

	for _, l := range app.config.Layers() {
		app.logger.Debug("config layer loaded", "layer", l.Name, "path", l.Path)
	}
	return nil
}

// initWatcher starts the file watcher unless it is disabled. A watcher
// that cannot start is logged and skipped.
func (app *Application) initWatcher() error {
	wc := app.config.Watcher()
	if !wc.Enabled {
		return nil
	}
	w, err := watcher.New(
		watcher.WithDebounce(wc.Debounce),
		watcher.WithLogger(logging.WithComponent(app.logger, "watcher")),
	)
	if err != nil {
		app.logger.Warn("file watcher unavailable", "error", err)
		return nil
	}
	app.watcher = w
	return nil
}

func (app *Application) initClipboard() error {
	app.clipboard = clipboard.New(
		app.config.Clipboard().System,
		logging.WithComponent(app.logger, "clipboard"),
	)
	return nil
}

// initWorkspace builds the tab set with engine options from the config.
func (app *Application) initWorkspace() error {
	engineOpts := app.config.EngineOptions()
	if h, w, ok := terminalSize(); ok {
		// One row is left for the status line.
		engineOpts = append(engineOpts, engine.WithViewport(max(h-1, 1), w))
	}
	if app.opts.ReadOnly {
		engineOpts = append(engineOpts, engine.WithReadOnly())
	}

	opts := []workspace.Option{
		workspace.WithMaxRecent(app.config.Workspace().MaxRecent),
		workspace.WithEngineOptions(engineOpts...),
		workspace.WithLogger(logging.WithComponent(app.logger, "workspace")),
	}
	if app.watcher != nil {
		opts = append(opts, workspace.WithWatcher(app.watcher))
	}
	app.workspace = workspace.New(opts...)
	return nil
}

// initDocuments opens the startup files, or one untitled tab.
func (app *Application) initDocuments() error {
	for _, path := range app.opts.Files {
		if _, err := app.workspace.Open(path); err != nil {
			return &InitError{Component: "documents", Err: err}
		}
	}
	if app.workspace.Len() == 0 {
		app.workspace.NewTab()
	}
	app.logger.Info("session started", "tabs", app.workspace.Len())
	return nil
}

// terminalSize reports stdout's size when it is a terminal.
func terminalSize() (height, width int, ok bool) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0, 0, false
	}
	width, height, err := term.GetSize(fd)
	if err != nil || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return height, width, true
}
