package buffer

import "strings"

// LineEnding is the newline convention a buffer writes to disk.
// Text in memory always uses '\n'.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
)

// String returns the conventional name of the line ending.
func (le LineEnding) String() string {
	if le == LineEndingCRLF {
		return "crlf"
	}
	return "lf"
}

// Sequence returns the characters written for a line break.
func (le LineEnding) Sequence() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// ParseLineEnding maps "lf" or "crlf" to a LineEnding.
func ParseLineEnding(s string) (LineEnding, bool) {
	switch strings.ToLower(s) {
	case "lf", "unix":
		return LineEndingLF, true
	case "crlf", "dos", "windows":
		return LineEndingCRLF, true
	}
	return LineEndingLF, false
}

// DetectLineEnding reports CRLF only when every '\n' in text is preceded
// by '\r'. Anything else, including mixed files, is LF and keeps any
// stray '\r' as ordinary characters so the file round-trips unchanged.
func DetectLineEnding(text string) LineEnding {
	crlf := strings.Count(text, "\r\n")
	if crlf > 0 && crlf == strings.Count(text, "\n") {
		return LineEndingCRLF
	}
	return LineEndingLF
}

func (le LineEnding) toMemory(text string) string {
	if le == LineEndingCRLF {
		return strings.ReplaceAll(text, "\r\n", "\n")
	}
	return text
}

func (le LineEnding) toDisk(text string) string {
	if le == LineEndingCRLF {
		return strings.ReplaceAll(text, "\n", "\r\n")
	}
	return text
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithLineEnding sets the line ending used when saving.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
	}
}

// WithEncoding sets the encoding used when saving.
func WithEncoding(enc Encoding) Option {
	return func(b *Buffer) {
		b.encoding = enc
	}
}

// SaveOption adjusts a single Save call.
type SaveOption func(*saveConfig)

type saveConfig struct {
	lineEnding *LineEnding
	encoding   *Encoding
}

// SaveLineEnding overrides the remembered line ending. The override
// becomes the buffer's style once the save succeeds.
func SaveLineEnding(le LineEnding) SaveOption {
	return func(c *saveConfig) {
		c.lineEnding = &le
	}
}

// SaveEncoding overrides the remembered encoding.
func SaveEncoding(enc Encoding) SaveOption {
	return func(c *saveConfig) {
		c.encoding = &enc
	}
}
