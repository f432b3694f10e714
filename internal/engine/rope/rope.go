package rope

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Rope is an immutable rope. Every edit returns a new Rope that shares
// unchanged subtrees with the old one, so keeping an old value around is
// a cheap snapshot.
type Rope struct {
	root *node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeaf(nil)}
}

// FromString creates a rope holding s.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return fromChunks(splitIntoChunks(s))
}

// FromReader reads r to EOF into a rope.
func FromReader(r io.Reader) (Rope, error) {
	var b Builder
	if _, err := b.ReadFrom(r); err != nil {
		return Rope{}, err
	}
	return b.Build(), nil
}

func fromChunks(chunks []Chunk) Rope {
	if len(chunks) == 0 {
		return New()
	}
	leaves := make([]*node, 0, len(chunks)/MaxChunksPerLeaf+1)
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		end := min(i+MaxChunksPerLeaf, len(chunks))
		leaf := make([]Chunk, end-i)
		copy(leaf, chunks[i:end])
		leaves = append(leaves, newLeaf(leaf))
	}
	return Rope{root: fromChildren(leaves)}
}

func (r Rope) node() *node {
	if r.root == nil {
		return newLeaf(nil)
	}
	return r.root
}

// Len returns the byte length.
func (r Rope) Len() ByteOffset { return r.node().summary.Bytes }

// Chars returns the character count.
func (r Rope) Chars() CharOffset { return r.node().summary.Chars }

// LineCount returns the number of lines, which is the newline count plus one.
// An empty rope has one line.
func (r Rope) LineCount() uint32 { return r.node().summary.Lines + 1 }

// LongestLine returns the char length of the longest line.
func (r Rope) LongestLine() uint32 { return r.node().summary.LongestLine }

// Summary returns the metrics of the whole rope.
func (r Rope) Summary() TextSummary { return r.node().summary }

// IsEmpty reports whether the rope holds no text.
func (r Rope) IsEmpty() bool { return r.Len() == 0 }

// String returns the full text. Use sparingly on large ropes.
func (r Rope) String() string {
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.node().writeTo(&sb)
	return sb.String()
}

// Slice returns the text in the byte range [start, end).
func (r Rope) Slice(start, end ByteOffset) string {
	end = min(end, r.Len())
	if start >= end {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(end - start))
	r.node().writeRange(&sb, start, end)
	return sb.String()
}

// SliceChars returns the text in the char range [start, end).
func (r Rope) SliceChars(start, end CharOffset) string {
	if start >= end {
		return ""
	}
	return r.Slice(r.CharToByte(start), r.CharToByte(end))
}

// Insert inserts text at a byte offset, which is clamped to the end.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	if len(text) == 0 {
		return r
	}
	left, right := r.Split(offset)
	return left.Concat(FromString(text)).Concat(right)
}

// Delete removes the byte range [start, end).
func (r Rope) Delete(start, end ByteOffset) Rope {
	end = min(end, r.Len())
	if start >= end {
		return r
	}
	left, rest := r.Split(start)
	_, right := rest.Split(end - start)
	return left.Concat(right)
}

// Replace swaps the byte range [start, end) for text.
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	return r.Delete(start, end).Insert(start, text)
}

// Split returns the ropes holding [0, offset) and [offset, Len()).
func (r Rope) Split(offset ByteOffset) (Rope, Rope) {
	if offset == 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}
	left, right := r.node().split(offset)
	return Rope{root: left}, Rope{root: right}
}

// Concat returns r followed by other.
func (r Rope) Concat(other Rope) Rope {
	return Rope{root: concat(r.node(), other.node())}
}

// CharToByte converts a char offset to a byte offset. Offsets past the
// end clamp to Len().
func (r Rope) CharToByte(c CharOffset) ByteOffset {
	s := r.node().summary
	if s.Flags&FlagASCII != 0 {
		return ByteOffset(min(c, s.Chars))
	}
	if c >= s.Chars {
		return s.Bytes
	}
	return r.node().charToByte(c)
}

// ByteToChar converts a byte offset to a char offset. Offsets past the
// end clamp to Chars().
func (r Rope) ByteToChar(b ByteOffset) CharOffset {
	s := r.node().summary
	if s.Flags&FlagASCII != 0 {
		return CharOffset(min(b, s.Bytes))
	}
	if b >= s.Bytes {
		return s.Chars
	}
	return r.node().byteToChar(b)
}

// LineStart returns the char offset at which line begins. Lines past
// the end map to Chars().
func (r Rope) LineStart(line uint32) CharOffset {
	if line >= r.LineCount() {
		return r.Chars()
	}
	_, c := r.node().lineStart(line)
	return c
}

// LineStartByte is LineStart in bytes.
func (r Rope) LineStartByte(line uint32) ByteOffset {
	if line >= r.LineCount() {
		return r.Len()
	}
	b, _ := r.node().lineStart(line)
	return b
}

// LineLen returns the char length of line, excluding its newline.
func (r Rope) LineLen(line uint32) uint32 {
	if line >= r.LineCount() {
		return 0
	}
	start := r.LineStart(line)
	if line+1 == r.LineCount() {
		return uint32(r.Chars() - start)
	}
	return uint32(r.LineStart(line+1) - start - 1)
}

// LineText returns the text of line without its newline.
func (r Rope) LineText(line uint32) string {
	if line >= r.LineCount() {
		return ""
	}
	start := r.LineStartByte(line)
	end := r.Len()
	if line+1 < r.LineCount() {
		end = r.LineStartByte(line+1) - 1
	}
	return r.Slice(start, end)
}

// LineOfChar returns the line holding a char offset.
func (r Rope) LineOfChar(c CharOffset) uint32 {
	if c >= r.Chars() {
		return r.LineCount() - 1
	}
	return r.node().lineOfChar(c)
}

// CharAt returns the character at a char offset.
func (r Rope) CharAt(c CharOffset) (rune, bool) {
	if c >= r.Chars() {
		return 0, false
	}
	ch, at := r.node().leafAt(r.CharToByte(c))
	if ch.IsEmpty() {
		return 0, false
	}
	ru, _ := utf8.DecodeRuneInString(ch.data[at:])
	return ru, true
}

// Height returns the height of the tree, for balance checks in tests.
func (r Rope) Height() int {
	return r.node().height + 1
}

// Equals reports whether two ropes hold the same text.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() || r.Chars() != other.Chars() {
		return false
	}
	return r.String() == other.String()
}

// WriteTo writes the rope's text to w chunk by chunk.
func (r Rope) WriteTo(w io.Writer) (int64, error) {
	var total int64
	it := r.Chunks()
	for it.Next() {
		n, err := io.WriteString(w, it.Chunk().String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
