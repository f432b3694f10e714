package rope

import "unicode/utf8"

// Chunk size bounds, in bytes.
const (
	// MinChunkSize is the smallest chunk the splitter produces, except
	// for the tail of a string.
	MinChunkSize = 128

	// MaxChunkSize is the largest chunk the splitter produces.
	MaxChunkSize = 256

	targetChunkSize = (MinChunkSize + MaxChunkSize) / 2
)

// Chunk is an immutable piece of text stored in a leaf node,
// together with its precomputed summary.
type Chunk struct {
	data    string
	summary TextSummary
}

// NewChunk creates a chunk from s.
func NewChunk(s string) Chunk {
	return Chunk{data: s, summary: ComputeSummary(s)}
}

// String returns the chunk's text.
func (c Chunk) String() string { return c.data }

// Summary returns the chunk's metrics.
func (c Chunk) Summary() TextSummary { return c.summary }

// Len returns the byte length of the chunk.
func (c Chunk) Len() int { return len(c.data) }

// IsEmpty reports whether the chunk holds no text.
func (c Chunk) IsEmpty() bool { return len(c.data) == 0 }

// Split cuts the chunk at a byte offset that must lie on a rune boundary.
func (c Chunk) Split(offset int) (Chunk, Chunk) {
	if offset <= 0 {
		return Chunk{}, c
	}
	if offset >= len(c.data) {
		return c, Chunk{}
	}
	return NewChunk(c.data[:offset]), NewChunk(c.data[offset:])
}

// splitIntoChunks cuts s into chunks no larger than MaxChunkSize,
// never splitting inside a UTF-8 sequence.
func splitIntoChunks(s string) []Chunk {
	if len(s) == 0 {
		return nil
	}
	chunks := make([]Chunk, 0, len(s)/targetChunkSize+1)
	for len(s) > MaxChunkSize {
		at := chunkBoundary(s, targetChunkSize)
		chunks = append(chunks, NewChunk(s[:at]))
		s = s[at:]
	}
	return append(chunks, NewChunk(s))
}

// chunkBoundary picks a split point near target. It prefers the byte after
// a nearby newline and otherwise backs up to the nearest rune start.
func chunkBoundary(s string, target int) int {
	lo := max(target-MinChunkSize/4, 1)
	hi := min(target+MinChunkSize/4, len(s)-1)
	for i := target; i < hi; i++ {
		if s[i] == '\n' {
			return i + 1
		}
	}
	for i := target - 1; i >= lo; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}

	at := target
	for at > 0 && !utf8.RuneStart(s[at]) {
		at--
	}
	if at == 0 {
		// A pathological run of continuation bytes; cut at target.
		return target
	}
	return at
}
