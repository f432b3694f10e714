package history

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Default policy values.
const (
	DefaultCoalesceThreshold = 500 * time.Millisecond
	DefaultMaxGroups         = 1000
)

// OperationInfo describes one undo or redo step.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}

// Option configures a History.
type Option func(*History)

// WithCoalesceThreshold sets the longest pause between two typed
// characters that still lands them in the same undo step. Zero or a
// negative value disables coalescing.
func WithCoalesceThreshold(d time.Duration) Option {
	return func(h *History) { h.threshold = d }
}

// WithMaxGroups caps the undo stack. Oldest steps are dropped first.
func WithMaxGroups(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.maxGroups = n
		}
	}
}

// History is the undo and redo log of one buffer.
//
// It holds no clock: every edit carries the time the caller observed,
// and coalescing compares those times only.
type History struct {
	undoStack []*Group
	redoStack []*Group

	threshold time.Duration
	maxGroups int
	dropped   int
}

// New creates an empty history.
func New(opts ...Option) *History {
	h := &History{
		threshold: DefaultCoalesceThreshold,
		maxGroups: DefaultMaxGroups,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Push records one user edit made of records applied in order. A lone
// single-character record typed within the threshold of the open group,
// of the same kind and adjacent to it, is merged into that group.
// Anything else closes the open group and starts a new one. Pushing
// always discards the redo stack. An empty edit is ignored.
func (h *History) Push(records []Record, before, after Snapshot, now time.Time) {
	if len(records) == 0 {
		return
	}
	h.redoStack = nil

	if top := h.top(); top != nil && top.state == Accumulating {
		if len(records) == 1 && records[0].singleChar() &&
			now.Sub(top.last) < h.threshold && top.absorb(records[0]) {
			top.After = after
			top.last = now
			return
		}
		top.state = Closed
	}

	g := &Group{
		Records: append([]Record(nil), records...),
		Before:  before,
		After:   after,
		state:   Closed,
		last:    now,
	}
	if len(records) == 1 && records[0].singleChar() && h.threshold > 0 {
		g.state = Accumulating
	}
	h.undoStack = append(h.undoStack, g)

	if excess := len(h.undoStack) - h.maxGroups; excess > 0 {
		h.undoStack = h.undoStack[excess:]
		h.dropped += excess
	}
}

// Seal closes the open group so the next edit starts a new step. Cursor
// movement calls this: typing after moving never joins earlier typing.
func (h *History) Seal() {
	if top := h.top(); top != nil {
		top.state = Closed
	}
}

// State reports whether the newest group is still accumulating.
func (h *History) State() State {
	if top := h.top(); top != nil && top.state == Accumulating {
		return Accumulating
	}
	return Idle
}

// Undo reverts the newest group against t and returns the cursor set
// from before it. If an inverse fails part way, the records already
// reverted are reapplied and the history is left as it was.
func (h *History) Undo(t Target) (Snapshot, error) {
	h.Seal()
	g := h.top()
	if g == nil {
		return Snapshot{}, ErrNothingToUndo
	}
	for i := len(g.Records) - 1; i >= 0; i-- {
		if err := g.Records[i].Invert().Apply(t); err != nil {
			for j := i + 1; j < len(g.Records); j++ {
				g.Records[j].Apply(t)
			}
			return Snapshot{}, fmt.Errorf("undo %s: %w", g.Records[i], err)
		}
	}
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, g)
	return g.Before, nil
}

// Redo reapplies the newest undone group against t and returns the
// cursor set from after it.
func (h *History) Redo(t Target) (Snapshot, error) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, ErrNothingToRedo
	}
	g := h.redoStack[len(h.redoStack)-1]
	for i, r := range g.Records {
		if err := r.Apply(t); err != nil {
			for j := i - 1; j >= 0; j-- {
				g.Records[j].Invert().Apply(t)
			}
			return Snapshot{}, fmt.Errorf("redo %s: %w", r, err)
		}
	}
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, g)
	return g.After, nil
}

// Replay applies every undoable record in order against t. Replayed
// onto the text the history started from, it rebuilds the current text.
// It fails if the cap has already dropped early steps.
func (h *History) Replay(t Target) error {
	if h.dropped > 0 {
		return fmt.Errorf("replay: %d oldest steps were dropped", h.dropped)
	}
	for _, g := range h.undoStack {
		for _, r := range g.Records {
			if err := r.Apply(t); err != nil {
				return fmt.Errorf("replay %s: %w", r, err)
			}
		}
	}
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int { return len(h.undoStack) }

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int { return len(h.redoStack) }

// Clear removes all undo and redo steps.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.dropped = 0
}

// Threshold returns the coalescing threshold.
func (h *History) Threshold() time.Duration { return h.threshold }

// MaxGroups returns the undo cap.
func (h *History) MaxGroups() int { return h.maxGroups }

// UndoInfo lists the undo steps, oldest first.
func (h *History) UndoInfo() []OperationInfo { return infos(h.undoStack) }

// RedoInfo lists the redo steps, oldest first.
func (h *History) RedoInfo() []OperationInfo { return infos(h.redoStack) }

// PeekUndo returns info about the next undo step without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	if g := h.top(); g != nil {
		return info(g), true
	}
	return OperationInfo{}, false
}

// PeekRedo returns info about the next redo step without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	return info(h.redoStack[len(h.redoStack)-1]), true
}

func (h *History) top() *Group {
	if len(h.undoStack) == 0 {
		return nil
	}
	return h.undoStack[len(h.undoStack)-1]
}

func info(g *Group) OperationInfo {
	return OperationInfo{Description: g.Description(), Timestamp: g.last}
}

func infos(groups []*Group) []OperationInfo {
	out := make([]OperationInfo, len(groups))
	for i, g := range groups {
		out[i] = info(g)
	}
	return out
}
