package rope

import "strings"

// Tree shape bounds.
const (
	// MaxChildren is the fan-out limit of an internal node.
	MaxChildren = 8

	// MaxChunksPerLeaf is the number of chunks a leaf may hold.
	MaxChunksPerLeaf = 4
)

// node is a B+ tree node. Leaves (height 0) hold chunks; internal nodes
// hold children along with a copy of each child's summary so a descent
// can pick a child without touching it.
type node struct {
	height  int
	summary TextSummary

	children       []*node
	childSummaries []TextSummary

	chunks []Chunk
}

func newLeaf(chunks []Chunk) *node {
	n := &node{chunks: chunks}
	n.summary = emptySummary()
	for _, c := range chunks {
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

func newInternal(children []*node) *node {
	if len(children) == 0 {
		return newLeaf(nil)
	}
	n := &node{
		height:         children[0].height + 1,
		summary:        emptySummary(),
		children:       children,
		childSummaries: make([]TextSummary, len(children)),
	}
	for i, c := range children {
		n.childSummaries[i] = c.summary
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

func (n *node) isLeaf() bool { return n.height == 0 }

func (n *node) bytes() ByteOffset { return n.summary.Bytes }

func (n *node) writeTo(sb *strings.Builder) {
	if n.isLeaf() {
		for _, c := range n.chunks {
			sb.WriteString(c.data)
		}
		return
	}
	for _, c := range n.children {
		c.writeTo(sb)
	}
}

// writeRange appends the bytes in [start, end) of this subtree.
func (n *node) writeRange(sb *strings.Builder, start, end ByteOffset) {
	var at ByteOffset
	if n.isLeaf() {
		for _, c := range n.chunks {
			cEnd := at + ByteOffset(len(c.data))
			if cEnd > start && at < end {
				lo := int(max(start, at) - at)
				hi := int(min(end, cEnd) - at)
				sb.WriteString(c.data[lo:hi])
			}
			if cEnd >= end {
				return
			}
			at = cEnd
		}
		return
	}
	for i, c := range n.children {
		cEnd := at + n.childSummaries[i].Bytes
		if cEnd > start && at < end {
			c.writeRange(sb, max(start, at)-at, min(end, cEnd)-at)
		}
		if cEnd >= end {
			return
		}
		at = cEnd
	}
}

// split divides the subtree at a byte offset. Both halves are well
// formed: every internal node's children share one height and no
// internal node has a single child.
func (n *node) split(offset ByteOffset) (*node, *node) {
	if offset == 0 {
		return newLeaf(nil), n
	}
	if offset >= n.bytes() {
		return n, newLeaf(nil)
	}

	if n.isLeaf() {
		var left, right []Chunk
		var at ByteOffset
		for _, c := range n.chunks {
			cLen := ByteOffset(len(c.data))
			switch {
			case at+cLen <= offset:
				left = append(left, c)
			case at >= offset:
				right = append(right, c)
			default:
				l, r := c.Split(int(offset - at))
				left = append(left, l)
				right = append(right, r)
			}
			at += cLen
		}
		return newLeaf(left), newLeaf(right)
	}

	var at ByteOffset
	for i, c := range n.children {
		cLen := n.childSummaries[i].Bytes
		if at+cLen <= offset {
			at += cLen
			continue
		}
		l, r := c.split(offset - at)
		left := concat(fromSiblings(n.children[:i:i]), l)
		right := concat(r, fromSiblings(n.children[i+1:]))
		return left, right
	}
	return n, newLeaf(nil)
}

// fromSiblings wraps nodes of equal height, at most MaxChildren of
// them, without adding a single-child level.
func fromSiblings(children []*node) *node {
	switch len(children) {
	case 0:
		return newLeaf(nil)
	case 1:
		return children[0]
	}
	return newInternal(children)
}

// fromChildren builds a tree over equal-height children, adding levels
// until the fan-out limit holds.
func fromChildren(children []*node) *node {
	if len(children) <= MaxChildren {
		return fromSiblings(children)
	}
	groups := (len(children) + MaxChildren - 1) / MaxChildren
	parents := make([]*node, 0, groups)
	start := 0
	for g := 1; g <= groups; g++ {
		end := len(children) * g / groups
		parents = append(parents, newInternal(children[start:end:end]))
		start = end
	}
	return fromChildren(parents)
}

// concat joins two subtrees. The shorter one is grafted onto the
// facing spine of the taller one at its own height, so the result is
// at most one level taller than the taller input.
func concat(left, right *node) *node {
	if left.bytes() == 0 {
		return right
	}
	if right.bytes() == 0 {
		return left
	}
	var nodes []*node
	if left.height >= right.height {
		nodes = appendRight(left, right)
	} else {
		nodes = prependLeft(left, right)
	}
	return fromSiblings(nodes)
}

// appendRight grafts t onto the right spine of n, which must be at
// least as tall. It returns one or two nodes of n's height.
func appendRight(n, t *node) []*node {
	if n.height == t.height {
		return mergeNodes(n, t)
	}
	last := len(n.children) - 1
	grafted := appendRight(n.children[last], t)
	children := make([]*node, 0, last+len(grafted))
	children = append(children, n.children[:last]...)
	return splitChildren(append(children, grafted...))
}

// prependLeft grafts t onto the left spine of n, which must be taller.
func prependLeft(t, n *node) []*node {
	if n.height == t.height {
		return mergeNodes(t, n)
	}
	grafted := prependLeft(t, n.children[0])
	children := make([]*node, 0, len(n.children)-1+len(grafted))
	children = append(children, grafted...)
	return splitChildren(append(children, n.children[1:]...))
}

// mergeNodes joins two nodes of equal height into one node, or two
// when the combined contents overflow.
func mergeNodes(a, b *node) []*node {
	if a.isLeaf() {
		chunks := make([]Chunk, 0, len(a.chunks)+len(b.chunks))
		chunks = append(chunks, a.chunks...)
		chunks = appendChunk(chunks, b.chunks...)
		if len(chunks) <= MaxChunksPerLeaf {
			return []*node{newLeaf(chunks)}
		}
		mid := len(chunks) / 2
		return []*node{newLeaf(chunks[:mid:mid]), newLeaf(chunks[mid:])}
	}
	children := make([]*node, 0, len(a.children)+len(b.children))
	children = append(children, a.children...)
	return splitChildren(append(children, b.children...))
}

// appendChunk appends chunks, folding a small chunk into its left
// neighbour while the pair fits in one chunk. Typing one character at
// a time would otherwise leave a chunk per keystroke.
func appendChunk(chunks []Chunk, more ...Chunk) []Chunk {
	for _, c := range more {
		if c.IsEmpty() {
			continue
		}
		if k := len(chunks) - 1; k >= 0 && len(chunks[k].data)+len(c.data) <= MaxChunkSize {
			chunks[k] = NewChunk(chunks[k].data + c.data)
			continue
		}
		chunks = append(chunks, c)
	}
	return chunks
}

// splitChildren wraps equal-height children in one internal node, or
// two when they exceed MaxChildren.
func splitChildren(children []*node) []*node {
	if len(children) <= MaxChildren {
		return []*node{newInternal(children)}
	}
	mid := len(children) / 2
	return []*node{newInternal(children[:mid:mid]), newInternal(children[mid:])}
}

// charToByte descends by char count and returns the byte offset of the
// given char offset, clamped to the end of the subtree.
func (n *node) charToByte(c CharOffset) ByteOffset {
	var base ByteOffset
	for !n.isLeaf() {
		i := len(n.children) - 1
		for j, s := range n.childSummaries {
			if c < s.Chars || j == i {
				i = j
				break
			}
			c -= s.Chars
			base += s.Bytes
		}
		n = n.children[i]
	}
	for _, ch := range n.chunks {
		if c < ch.summary.Chars {
			return base + ByteOffset(byteOfChar(ch.data, c, ch.summary.Flags&FlagASCII != 0))
		}
		c -= ch.summary.Chars
		base += ByteOffset(len(ch.data))
	}
	return base
}

// byteToChar returns the number of chars that precede a byte offset.
func (n *node) byteToChar(b ByteOffset) CharOffset {
	var chars CharOffset
	for !n.isLeaf() {
		i := len(n.children) - 1
		for j, s := range n.childSummaries {
			if b < s.Bytes || j == i {
				i = j
				break
			}
			b -= s.Bytes
			chars += s.Chars
		}
		n = n.children[i]
	}
	for _, ch := range n.chunks {
		if b < ByteOffset(len(ch.data)) {
			return chars + charsIn(ch.data[:b], ch.summary.Flags&FlagASCII != 0)
		}
		b -= ByteOffset(len(ch.data))
		chars += ch.summary.Chars
	}
	return chars
}

// lineStart returns the byte and char offsets at which the given line
// begins. The line must exist in the subtree.
func (n *node) lineStart(line uint32) (ByteOffset, CharOffset) {
	var bytes ByteOffset
	var chars CharOffset
	if line == 0 {
		return 0, 0
	}
	for !n.isLeaf() {
		i := len(n.children) - 1
		for j, s := range n.childSummaries {
			if line <= s.Lines || j == i {
				i = j
				break
			}
			line -= s.Lines
			bytes += s.Bytes
			chars += s.Chars
		}
		n = n.children[i]
	}
	for _, ch := range n.chunks {
		if line <= ch.summary.Lines {
			at := nthNewline(ch.data, line)
			return bytes + ByteOffset(at), chars + charsIn(ch.data[:at], ch.summary.Flags&FlagASCII != 0)
		}
		line -= ch.summary.Lines
		bytes += ByteOffset(len(ch.data))
		chars += ch.summary.Chars
	}
	return bytes, chars
}

// lineOfChar returns the number of newlines preceding a char offset.
func (n *node) lineOfChar(c CharOffset) uint32 {
	var lines uint32
	for !n.isLeaf() {
		i := len(n.children) - 1
		for j, s := range n.childSummaries {
			if c < s.Chars || j == i {
				i = j
				break
			}
			c -= s.Chars
			lines += s.Lines
		}
		n = n.children[i]
	}
	for _, ch := range n.chunks {
		if c < ch.summary.Chars {
			prefix := ch.data[:byteOfChar(ch.data, c, ch.summary.Flags&FlagASCII != 0)]
			return lines + uint32(strings.Count(prefix, "\n"))
		}
		c -= ch.summary.Chars
		lines += ch.summary.Lines
	}
	return lines
}

// leafAt returns the chunk holding a byte offset and the offset within it.
func (n *node) leafAt(b ByteOffset) (Chunk, int) {
	for !n.isLeaf() {
		i := len(n.children) - 1
		for j, s := range n.childSummaries {
			if b < s.Bytes {
				i = j
				break
			}
			b -= s.Bytes
		}
		n = n.children[i]
	}
	for _, ch := range n.chunks {
		if b < ByteOffset(len(ch.data)) {
			return ch, int(b)
		}
		b -= ByteOffset(len(ch.data))
	}
	return Chunk{}, 0
}
