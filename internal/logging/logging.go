// Package logging builds the process logger on log/slog.
//
// Output goes to stderr or a file, as text or JSON. Loggers handed to
// subsystems carry a "component" attribute, and components can be
// silenced individually:
//
//	logger, closer, err := logging.New(logging.Config{Level: "debug", File: "quill.log"})
//	...
//	defer closer.Close()
//	ws := workspace.New(workspace.WithLogger(logging.WithComponent(logger, "workspace")))
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ComponentKey is the attribute naming the subsystem that logged.
const ComponentKey = "component"

// Config configures New.
type Config struct {
	// Level is "debug", "info", "warn" or "error". Unknown values mean info.
	Level string
	// Format is "text" or "json".
	Format string
	// File is the log file path. "" or "-" means stderr.
	File string
	// AddSource adds the caller's file and line to each record.
	AddSource bool
	// DisabledComponents drops records from these components.
	DisabledComponents []string
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger from cfg. The returned closer releases the log
// file, if one was opened.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" && cfg.File != "-" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out, closer = f, f
	}
	return NewWithWriter(out, cfg), closer, nil
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		AddSource:   cfg.AddSource,
		ReplaceAttr: replaceAttr,
	}
	var base slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}
	if len(cfg.DisabledComponents) == 0 {
		return slog.New(base)
	}
	return slog.New(newComponentFilter(base, cfg.DisabledComponents))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WithComponent returns a child logger tagged with component.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(ComponentKey, component)
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.SourceKey:
		if source, ok := a.Value.Any().(*slog.Source); ok && source != nil {
			source.File = filepath.Base(source.File)
		}
	case slog.TimeKey:
		a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
	}
	return a
}
