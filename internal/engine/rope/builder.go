package rope

import (
	"io"
	"strings"
)

// Builder accumulates text and builds a rope in one pass, which is
// cheaper than repeated Concat when loading a file.
type Builder struct {
	chunks []Chunk
	buf    strings.Builder
	n      int
}

// WriteString appends s.
func (b *Builder) WriteString(s string) (int, error) {
	b.n += len(s)
	b.buf.WriteString(s)
	if b.buf.Len() >= MaxChunkSize*4 {
		b.flush(false)
	}
	return len(s), nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	return b.WriteString(string(p))
}

// flush moves buffered text into chunks. Unless final, a trailing
// partial chunk stays buffered so UTF-8 sequences split across writes
// are joined before chunking.
func (b *Builder) flush(final bool) {
	s := b.buf.String()
	b.buf.Reset()
	if !final && len(s) > MaxChunkSize {
		keep := chunkBoundary(s, len(s)-MinChunkSize)
		b.buf.WriteString(s[keep:])
		s = s[:keep]
	}
	b.chunks = append(b.chunks, splitIntoChunks(s)...)
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return b.n }

// ReadFrom implements io.ReaderFrom.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Build returns the rope and resets the builder.
func (b *Builder) Build() Rope {
	b.flush(true)
	r := fromChunks(b.chunks)
	b.chunks = nil
	b.n = 0
	return r
}
