// Package clipboard moves text between the editor and the OS clipboard.
//
// The OS clipboard is not always there (headless machines, containers,
// missing xclip). The system clipboard then falls back to an in-process
// one, so copy and paste keep working inside the session.
package clipboard

import (
	"log/slog"

	"github.com/atotto/clipboard"
)

// Clipboard holds one piece of text.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// Memory is an in-process clipboard.
type Memory struct {
	text string
}

// Read returns the stored text.
func (m *Memory) Read() (string, error) { return m.text, nil }

// Write stores text.
func (m *Memory) Write(text string) error {
	m.text = text
	return nil
}

// System uses the OS clipboard, falling back to memory when it fails.
type System struct {
	fallback Memory
	degraded bool
	logger   *slog.Logger
}

// NewSystem creates a system clipboard. logger may be nil.
func NewSystem(logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &System{degraded: clipboard.Unsupported, logger: logger}
}

// Read returns the OS clipboard's text, or the fallback's.
func (s *System) Read() (string, error) {
	if !s.degraded {
		text, err := clipboard.ReadAll()
		if err == nil {
			return text, nil
		}
		s.degrade(err)
	}
	return s.fallback.Read()
}

// Write sets the OS clipboard's text. The fallback always keeps a copy.
func (s *System) Write(text string) error {
	_ = s.fallback.Write(text)
	if !s.degraded {
		if err := clipboard.WriteAll(text); err != nil {
			s.degrade(err)
		}
	}
	return nil
}

// Degraded reports whether the OS clipboard has been given up on.
func (s *System) Degraded() bool { return s.degraded }

func (s *System) degrade(err error) {
	s.degraded = true
	s.logger.Info("system clipboard unavailable, using in-process clipboard", "error", err)
}

// New returns a system clipboard, or a memory one when system is false.
func New(system bool, logger *slog.Logger) Clipboard {
	if system {
		return NewSystem(logger)
	}
	return &Memory{}
}
