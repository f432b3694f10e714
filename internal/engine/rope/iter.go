package rope

// ChunkIterator walks the chunks of a rope in order.
type ChunkIterator struct {
	stack []iterFrame
	chunk Chunk
	start ByteOffset
	next  ByteOffset
}

type iterFrame struct {
	n   *node
	idx int
}

// Chunks returns an iterator over the rope's chunks.
func (r Rope) Chunks() *ChunkIterator {
	return &ChunkIterator{stack: []iterFrame{{n: r.node()}}}
}

// Next advances to the next non-empty chunk.
func (it *ChunkIterator) Next() bool {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.n.isLeaf() {
			if top.idx < len(top.n.chunks) {
				it.chunk = top.n.chunks[top.idx]
				top.idx++
				if it.chunk.IsEmpty() {
					continue
				}
				it.start = it.next
				it.next += ByteOffset(it.chunk.Len())
				return true
			}
		} else if top.idx < len(top.n.children) {
			child := top.n.children[top.idx]
			top.idx++
			it.stack = append(it.stack, iterFrame{n: child})
			continue
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	return false
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk { return it.chunk }

// Offset returns the byte offset of the current chunk.
func (it *ChunkIterator) Offset() ByteOffset { return it.start }

// LineIterator walks the lines of a rope, newline excluded.
type LineIterator struct {
	r    Rope
	line uint32
	text string
	done bool
}

// Lines returns an iterator over the rope's lines. An empty rope yields
// a single empty line.
func (r Rope) Lines() *LineIterator {
	return &LineIterator{r: r, line: ^uint32(0)}
}

// Next advances to the next line.
func (it *LineIterator) Next() bool {
	if it.done {
		return false
	}
	it.line++
	if it.line >= it.r.LineCount() {
		it.done = true
		return false
	}
	it.text = it.r.LineText(it.line)
	return true
}

// Text returns the current line.
func (it *LineIterator) Text() string { return it.text }

// Line returns the current line index.
func (it *LineIterator) Line() uint32 { return it.line }
