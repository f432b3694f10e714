package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/quill/internal/engine"
)

// Section accessors return snapshot structs. A setting with the wrong
// type falls back to its default; Validate reports it.

// EditorConfig holds per-document editing settings.
type EditorConfig struct {
	TabWidth          int
	AutoIndent        bool
	CoalesceThreshold time.Duration
	MaxUndo           int
	// LineEnding is "lf" or "crlf" and applies to new buffers only.
	LineEnding     string
	ViewportHeight int
	ViewportWidth  int
}

// WorkspaceConfig holds tab and recent-file settings.
type WorkspaceConfig struct {
	MaxRecent int
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string
	Format string // "text" or "json"
	File   string // "" or "-" for stderr
}

// WatcherConfig controls reloading of files changed on disk.
type WatcherConfig struct {
	Enabled  bool
	Debounce time.Duration
}

// ClipboardConfig controls the clipboard backend.
type ClipboardConfig struct {
	// System uses the OS clipboard when one is available.
	System bool
}

// Editor returns the editor settings.
func (c *Config) Editor() EditorConfig {
	return EditorConfig{
		TabWidth:          c.getIntOr("editor.tabWidth", engine.DefaultTabWidth),
		AutoIndent:        c.getBoolOr("editor.autoIndent", true),
		CoalesceThreshold: c.getDurationOr("editor.coalesceThreshold", 500*time.Millisecond),
		MaxUndo:           c.getIntOr("editor.maxUndo", engine.DefaultMaxUndoEntries),
		LineEnding:        strings.ToLower(c.getStringOr("editor.lineEnding", "lf")),
		ViewportHeight:    c.getIntOr("editor.viewportHeight", engine.DefaultViewportHeight),
		ViewportWidth:     c.getIntOr("editor.viewportWidth", engine.DefaultViewportWidth),
	}
}

// Workspace returns the workspace settings.
func (c *Config) Workspace() WorkspaceConfig {
	return WorkspaceConfig{
		MaxRecent: c.getIntOr("workspace.maxRecent", 10),
	}
}

// Logging returns the logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:  c.getStringOr("logging.level", "info"),
		Format: c.getStringOr("logging.format", "text"),
		File:   c.getStringOr("logging.file", ""),
	}
}

// Watcher returns the file watcher settings.
func (c *Config) Watcher() WatcherConfig {
	return WatcherConfig{
		Enabled:  c.getBoolOr("watcher.enabled", true),
		Debounce: c.getDurationOr("watcher.debounce", 100*time.Millisecond),
	}
}

// Clipboard returns the clipboard settings.
func (c *Config) Clipboard() ClipboardConfig {
	return ClipboardConfig{
		System: c.getBoolOr("clipboard.system", true),
	}
}

// EngineOptions converts the editor settings into engine options.
func (c *Config) EngineOptions() []engine.Option {
	ed := c.Editor()
	le := engine.LineEndingLF
	if ed.LineEnding == "crlf" {
		le = engine.LineEndingCRLF
	}
	return []engine.Option{
		engine.WithTabWidth(ed.TabWidth),
		engine.WithAutoIndent(ed.AutoIndent),
		engine.WithCoalesceThreshold(ed.CoalesceThreshold),
		engine.WithMaxUndoEntries(ed.MaxUndo),
		engine.WithLineEnding(le),
		engine.WithViewport(ed.ViewportHeight, ed.ViewportWidth),
	}
}

// Validate checks every known setting's type and range.
func (c *Config) Validate() error {
	var errs []error
	check := func(err error) {
		if err != nil && !errors.Is(err, ErrSettingNotFound) {
			errs = append(errs, err)
		}
	}
	intIn := func(path string, lo, hi int) {
		v, err := c.GetInt(path)
		check(err)
		if err == nil && (v < lo || v > hi) {
			errs = append(errs, &ValidationError{Path: path, Message: fmt.Sprintf("must be between %d and %d", lo, hi), Value: v})
		}
	}
	oneOf := func(path string, allowed ...string) {
		v, err := c.GetString(path)
		check(err)
		if err != nil {
			return
		}
		for _, a := range allowed {
			if strings.EqualFold(v, a) {
				return
			}
		}
		errs = append(errs, &ValidationError{Path: path, Message: "must be one of " + strings.Join(allowed, ", "), Value: v})
	}
	nonNegative := func(path string) {
		d, err := c.GetDuration(path)
		check(err)
		if err == nil && d < 0 {
			errs = append(errs, &ValidationError{Path: path, Message: "must not be negative", Value: d})
		}
	}

	intIn("editor.tabWidth", 1, 16)
	intIn("editor.maxUndo", 1, 1_000_000)
	intIn("editor.viewportHeight", 1, 10_000)
	intIn("editor.viewportWidth", 1, 10_000)
	intIn("workspace.maxRecent", 1, 100)
	_, err := c.GetBool("editor.autoIndent")
	check(err)
	_, err = c.GetBool("watcher.enabled")
	check(err)
	_, err = c.GetBool("clipboard.system")
	check(err)
	_, err = c.GetString("logging.file")
	check(err)
	nonNegative("editor.coalesceThreshold")
	nonNegative("watcher.debounce")
	oneOf("editor.lineEnding", "lf", "crlf")
	oneOf("logging.level", "debug", "info", "warn", "warning", "error")
	oneOf("logging.format", "text", "json")

	return errors.Join(errs...)
}

func (c *Config) getStringOr(path, def string) string {
	if v, err := c.GetString(path); err == nil {
		return v
	}
	return def
}

func (c *Config) getIntOr(path string, def int) int {
	if v, err := c.GetInt(path); err == nil {
		return v
	}
	return def
}

func (c *Config) getBoolOr(path string, def bool) bool {
	if v, err := c.GetBool(path); err == nil {
		return v
	}
	return def
}

func (c *Config) getDurationOr(path string, def time.Duration) time.Duration {
	if v, err := c.GetDuration(path); err == nil {
		return v
	}
	return def
}
