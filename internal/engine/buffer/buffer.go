package buffer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/rope"
)

// Buffer is the text of one file together with the file metadata needed
// to write it back: path, encoding and line ending style.
type Buffer struct {
	rope       rope.Rope
	path       string
	dirty      bool
	lineEnding LineEnding
	encoding   Encoding
	revision   uint64
	modTime    time.Time
}

// New creates an empty buffer with no path.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		rope:     rope.New(),
		encoding: EncodingUTF8,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromString creates a clean buffer holding s verbatim.
func NewFromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	b.rope = rope.FromString(b.lineEnding.toMemory(s))
	return b
}

// Load reads the file at path. It fails with a *PathError wrapping the
// OS error when the file cannot be read, or wrapping ErrEncoding when
// the content is not valid text.
func Load(path string, opts ...Option) (*Buffer, error) {
	b := New(opts...)
	if err := b.readFile("load", path); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buffer) readFile(op, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &PathError{Op: op, Path: path, Err: err}
	}
	text, enc, err := Decode(data)
	if err != nil {
		return &PathError{Op: op, Path: path, Err: err}
	}

	le := DetectLineEnding(text)
	b.rope = rope.FromString(le.toMemory(text))
	b.lineEnding = le
	b.encoding = enc
	b.path = path
	b.dirty = false
	b.revision++
	if info, err := os.Stat(path); err == nil {
		b.modTime = info.ModTime()
	}
	return nil
}

// Reload replaces the content with the file on disk and clears the
// dirty flag. The buffer is unchanged if the read fails.
func (b *Buffer) Reload() error {
	if b.path == "" {
		return ErrPathRequired
	}
	next := *b
	if err := next.readFile("reload", b.path); err != nil {
		return err
	}
	*b = next
	return nil
}

// Save writes the buffer to path, or to its own path when path is empty.
// The write goes to a temporary file that is renamed over the target, so
// a failed save leaves the old file intact. The dirty flag is cleared
// only on success.
func (b *Buffer) Save(path string, opts ...SaveOption) error {
	if path == "" {
		path = b.path
	}
	if path == "" {
		return ErrPathRequired
	}

	cfg := saveConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	le, enc := b.lineEnding, b.encoding
	if cfg.lineEnding != nil {
		le = *cfg.lineEnding
	}
	if cfg.encoding != nil {
		enc = *cfg.encoding
	}

	data, err := Encode(le.toDisk(b.rope.String()), enc)
	if err != nil {
		return &PathError{Op: "save", Path: path, Err: err}
	}
	modTime, err := writeAtomic(path, data)
	if err != nil {
		return &PathError{Op: "save", Path: path, Err: err}
	}

	b.path = path
	b.lineEnding = le
	b.encoding = enc
	b.dirty = false
	b.modTime = modTime
	return nil
}

func writeAtomic(path string, data []byte) (time.Time, error) {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return time.Time{}, err
	}
	tmp := f.Name()
	fail := func(err error) (time.Time, error) {
		f.Close()
		os.Remove(tmp)
		return time.Time{}, err
	}

	if _, err := f.Write(data); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return time.Time{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return time.Time{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return time.Now(), nil
	}
	return info.ModTime(), nil
}

// Metadata

// Path returns the associated file path, or "" for an unsaved buffer.
func (b *Buffer) Path() string { return b.path }

// Dirty reports whether the buffer changed since it was loaded or saved.
func (b *Buffer) Dirty() bool { return b.dirty }

// LineEnding returns the style used on save.
func (b *Buffer) LineEnding() LineEnding { return b.lineEnding }

// Encoding returns the encoding used on save.
func (b *Buffer) Encoding() Encoding { return b.encoding }

// Revision increases with every change to the content.
func (b *Buffer) Revision() uint64 { return b.revision }

// ModTime returns the file's modification time as of the last load or
// save.
func (b *Buffer) ModTime() time.Time { return b.modTime }

// Queries

// Text returns the whole content with '\n' line breaks.
func (b *Buffer) Text() string { return b.rope.String() }

// Len returns the content length in characters.
func (b *Buffer) Len() int { return int(b.rope.Chars()) }

// IsEmpty reports whether the buffer holds no text.
func (b *Buffer) IsEmpty() bool { return b.rope.IsEmpty() }

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int { return int(b.rope.LineCount()) }

// LineLen returns the char length of line excluding its newline, or 0
// when the line does not exist.
func (b *Buffer) LineLen(line int) int {
	if line < 0 || line >= b.LineCount() {
		return 0
	}
	return int(b.rope.LineLen(uint32(line)))
}

// LineText returns the text of line without its newline.
func (b *Buffer) LineText(line int) (string, error) {
	if line < 0 || line >= b.LineCount() {
		return "", outOfBounds("line %d of %d", line, b.LineCount())
	}
	return b.rope.LineText(uint32(line)), nil
}

// CharAt returns the character at p. The end of a line that is not the
// last reads as '\n'.
func (b *Buffer) CharAt(p Point) (rune, error) {
	off, err := b.Offset(p)
	if err != nil {
		return 0, err
	}
	r, ok := b.rope.CharAt(rope.CharOffset(off))
	if !ok {
		return 0, outOfBounds("no character at %s", p)
	}
	return r, nil
}

// TextRange returns the text between two points in either order.
func (b *Buffer) TextRange(a, c Point) (string, error) {
	r := NewRange(a, c)
	start, err := b.Offset(r.Start)
	if err != nil {
		return "", err
	}
	end, err := b.Offset(r.End)
	if err != nil {
		return "", err
	}
	return b.rope.SliceChars(rope.CharOffset(start), rope.CharOffset(end)), nil
}

// Valid reports whether p addresses an existing location.
func (b *Buffer) Valid(p Point) bool {
	return p.Line >= 0 && p.Line < b.LineCount() && p.Column >= 0 && p.Column <= b.LineLen(p.Line)
}

// Clamp returns the nearest valid point to p.
func (b *Buffer) Clamp(p Point) Point {
	switch {
	case p.Line < 0:
		return Point{}
	case p.Line >= b.LineCount():
		last := b.LineCount() - 1
		return Point{Line: last, Column: b.LineLen(last)}
	}
	return Point{Line: p.Line, Column: min(max(p.Column, 0), b.LineLen(p.Line))}
}

// End returns the point after the last character.
func (b *Buffer) End() Point {
	last := b.LineCount() - 1
	return Point{Line: last, Column: b.LineLen(last)}
}

// Offset converts p to an absolute char offset.
func (b *Buffer) Offset(p Point) (int, error) {
	if !b.Valid(p) {
		return 0, outOfBounds("position %s", p)
	}
	return int(b.rope.LineStart(uint32(p.Line))) + p.Column, nil
}

// PointAt converts an absolute char offset to a point.
func (b *Buffer) PointAt(offset int) (Point, error) {
	if offset < 0 || offset > b.Len() {
		return Point{}, outOfBounds("offset %d of %d", offset, b.Len())
	}
	c := rope.CharOffset(offset)
	line := b.rope.LineOfChar(c)
	return Point{Line: int(line), Column: int(c - b.rope.LineStart(line))}, nil
}

// Mutations

// Insert writes text at p and returns the point just after it.
func (b *Buffer) Insert(p Point, text string) (Point, error) {
	off, err := b.Offset(p)
	if err != nil {
		return p, err
	}
	if !utf8.ValidString(text) {
		return p, ErrEncoding
	}
	if text == "" {
		return p, nil
	}
	b.rope = b.rope.Insert(b.rope.CharToByte(rope.CharOffset(off)), text)
	b.touch()
	return p.Advance(text), nil
}

// DeleteRange removes the text between two points in either order and
// returns it. Equal points delete nothing.
func (b *Buffer) DeleteRange(a, c Point) (string, error) {
	r := NewRange(a, c)
	start, err := b.Offset(r.Start)
	if err != nil {
		return "", err
	}
	end, err := b.Offset(r.End)
	if err != nil {
		return "", err
	}
	if start == end {
		return "", nil
	}

	bs := b.rope.CharToByte(rope.CharOffset(start))
	be := b.rope.CharToByte(rope.CharOffset(end))
	removed := b.rope.Slice(bs, be)
	b.rope = b.rope.Delete(bs, be)
	b.touch()
	return removed, nil
}

// SetLineEnding changes the style used on the next save. The content
// itself is unchanged, but the file will differ, so the buffer is dirty.
func (b *Buffer) SetLineEnding(le LineEnding) {
	if le == b.lineEnding {
		return
	}
	b.lineEnding = le
	b.dirty = true
}

func (b *Buffer) touch() {
	b.dirty = true
	b.revision++
}

// State is a saved copy of the text, dirty flag and revision.
type State struct {
	rope     rope.Rope
	dirty    bool
	revision uint64
}

// State captures the buffer contents so a failed multi-step change can
// be undone without leaving a trace.
func (b *Buffer) State() State {
	return State{rope: b.rope, dirty: b.dirty, revision: b.revision}
}

// Restore puts back a state taken with State.
func (b *Buffer) Restore(s State) {
	b.rope = s.rope
	b.dirty = s.dirty
	b.revision = s.revision
}

// TreeHeight reports the height of the underlying rope.
func (b *Buffer) TreeHeight() int { return b.rope.Height() }

// Lines returns count lines starting at first, clipped to the buffer.
func (b *Buffer) Lines(first, count int) []string {
	first = max(first, 0)
	last := min(first+count, b.LineCount())
	if first >= last {
		return nil
	}
	out := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		out = append(out, b.rope.LineText(uint32(i)))
	}
	return out
}

// DisplayName returns the file's base name, or "" without a path.
func (b *Buffer) DisplayName() string {
	if b.path == "" {
		return ""
	}
	return filepath.Base(b.path)
}
