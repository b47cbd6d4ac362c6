package history

import (
	"errors"
	"fmt"

	"github.com/dshills/pixelstorm/internal/canvas"
)

// DefaultMaxEntries is the undo depth used when none is configured.
const DefaultMaxEntries = 30

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrCaptureActive = errors.New("a capture is already in progress")
	ErrCaptureClosed = errors.New("capture already committed or aborted")
)

// Target is the state the history captures and restores.
// *canvas.Canvas satisfies it.
type Target interface {
	Snapshot() canvas.Snapshot
	Restore(canvas.Snapshot) error
}

// History manages the undo/redo stacks for one canvas.
//
// History is not safe for concurrent use. It is owned by the goroutine
// that mutates the canvas.
type History struct {
	target Target

	undoStack *ring[*Entry]
	redoStack *ring[*Entry]

	// Open capture, nil when idle
	capture *Capture

	// Configuration
	maxEntries int
	maxBytes   int64

	bytes int64
}

// Option configures a History.
type Option func(*History)

// WithMaxEntries sets the maximum undo depth.
func WithMaxEntries(max int) Option {
	return func(h *History) {
		if max > 0 {
			h.maxEntries = max
		}
	}
}

// WithMaxBytes sets a memory budget for stored snapshots. Zero means
// unlimited. The most recent entry is kept even if it alone exceeds the
// budget.
func WithMaxBytes(max int64) Option {
	return func(h *History) {
		if max >= 0 {
			h.maxBytes = max
		}
	}
}

// New creates a history manager for target.
func New(target Target, opts ...Option) *History {
	h := &History{
		target:     target,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.undoStack = newRing[*Entry](h.maxEntries)
	h.redoStack = newRing[*Entry](h.maxEntries)
	return h
}

// RecordBefore captures the target's current state ahead of a mutation
// and moves the history into the capturing state. The caller applies the
// mutation and then calls Commit, or Abort to put the target back.
//
//	c, err := h.RecordBefore(history.OpFill)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	if err := cv.Apply(fill); err != nil {
//	    return err
//	}
//	return c.Commit()
func (h *History) RecordBefore(op Op) (*Capture, error) {
	if h.capture != nil {
		return nil, fmt.Errorf("record %s during %s: %w", op, h.capture.op, ErrCaptureActive)
	}
	c := &Capture{
		history:  h,
		op:       op,
		snapshot: h.target.Snapshot(),
	}
	h.capture = c
	return c, nil
}

// Record runs fn inside a capture. If fn returns an error or panics the
// capture is aborted, leaving the target and both stacks as they were.
func (h *History) Record(op Op, fn func() error) (err error) {
	c, err := h.RecordBefore(op)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Op: op, Value: r}
			if abortErr := c.Abort(); abortErr != nil {
				err = errors.Join(err, abortErr)
			}
		}
	}()

	if err := fn(); err != nil {
		if abortErr := c.Abort(); abortErr != nil {
			return errors.Join(err, abortErr)
		}
		return err
	}
	return c.Commit()
}

// Undo restores the most recent captured state. The current state is
// kept on the redo stack. Returns false if there is nothing to undo or a
// capture is in progress.
func (h *History) Undo() bool {
	return h.step(h.undoStack, h.redoStack)
}

// Redo re-applies the most recently undone state. Returns false if there
// is nothing to redo or a capture is in progress.
func (h *History) Redo() bool {
	return h.step(h.redoStack, h.undoStack)
}

// step pops from one stack, restores it, and pushes the replaced state
// onto the other.
func (h *History) step(from, to *ring[*Entry]) bool {
	if h.capture != nil {
		return false
	}
	entry, ok := from.pop()
	if !ok {
		return false
	}

	current := newEntry(entry.op, h.target.Snapshot())
	if err := h.target.Restore(entry.snapshot); err != nil {
		// Restore entry on failure
		from.push(entry)
		return false
	}

	h.bytes -= int64(entry.Size())
	h.pushTo(to, current)
	h.enforceBudget(current)
	return true
}

// commit stores an entry for a completed mutation and drops the redo
// stack.
func (h *History) commit(e *Entry) {
	h.pushTo(h.undoStack, e)

	// Clear redo stack
	for {
		old, ok := h.redoStack.pop()
		if !ok {
			break
		}
		h.bytes -= int64(old.Size())
	}

	h.enforceBudget(e)
}

// pushTo adds an entry, accounting for anything the ring evicts.
func (h *History) pushTo(r *ring[*Entry], e *Entry) {
	h.bytes += int64(e.Size())
	if old, evicted := r.push(e); evicted && old != nil {
		h.bytes -= int64(old.Size())
	}
}

// enforceBudget evicts entries until the byte budget holds: the oldest
// undo entries first, then the farthest redo entries. keep is never
// evicted, so the latest step survives a budget smaller than itself.
func (h *History) enforceBudget(keep *Entry) {
	if h.maxBytes <= 0 {
		return
	}
	for h.bytes > h.maxBytes {
		if !h.evictOldest(h.undoStack, keep) && !h.evictOldest(h.redoStack, keep) {
			return
		}
	}
}

func (h *History) evictOldest(r *ring[*Entry], keep *Entry) bool {
	if r.Len() == 0 || r.at(0) == keep {
		return false
	}
	old, _ := r.popOldest()
	h.bytes -= int64(old.Size())
	return true
}

// newest returns the most recent entry on either stack, preferring undo.
func (h *History) newest() *Entry {
	if e, ok := h.undoStack.peek(); ok {
		return e
	}
	e, _ := h.redoStack.peek()
	return e
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return h.capture == nil && h.undoStack.Len() > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return h.capture == nil && h.redoStack.Len() > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int { return h.undoStack.Len() }

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int { return h.redoStack.Len() }

// Capturing reports whether a capture is open.
func (h *History) Capturing() bool { return h.capture != nil }

// Active returns the open capture, or nil.
func (h *History) Active() *Capture { return h.capture }

// Bytes returns the snapshot memory held by both stacks.
func (h *History) Bytes() int64 { return h.bytes }

// PeekUndo returns info about the next undo step without removing it.
func (h *History) PeekUndo() (EntryInfo, bool) {
	e, ok := h.undoStack.peek()
	if !ok {
		return EntryInfo{}, false
	}
	return e.Info(), true
}

// PeekRedo returns info about the next redo step without removing it.
func (h *History) PeekRedo() (EntryInfo, bool) {
	e, ok := h.redoStack.peek()
	if !ok {
		return EntryInfo{}, false
	}
	return e.Info(), true
}

// UndoInfo lists the undo stack, oldest first.
func (h *History) UndoInfo() []EntryInfo {
	return infos(h.undoStack)
}

// RedoInfo lists the redo stack, oldest first.
func (h *History) RedoInfo() []EntryInfo {
	return infos(h.redoStack)
}

func infos(r *ring[*Entry]) []EntryInfo {
	result := make([]EntryInfo, r.Len())
	for i := range result {
		result[i] = r.at(i).Info()
	}
	return result
}

// Clear removes all undo/redo history. An open capture is abandoned
// without restoring the target.
func (h *History) Clear() {
	if h.capture != nil {
		h.capture.done = true
		h.capture = nil
	}
	h.undoStack.clear()
	h.redoStack.clear()
	h.bytes = 0
}

// Reset clears the history and points it at a new target, used when the
// canvas is replaced wholesale.
func (h *History) Reset(target Target) {
	h.Clear()
	h.target = target
}

// SetMaxEntries changes the maximum depth shared by both stacks. If they
// hold more, the oldest undo entries go first, then the farthest redo
// entries.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	h.maxEntries = max

	for _, old := range h.undoStack.resize(max) {
		h.bytes -= int64(old.Size())
	}
	for _, old := range h.redoStack.resize(max) {
		h.bytes -= int64(old.Size())
	}
	for h.redoStack.Len() > max-h.undoStack.Len() {
		old, _ := h.redoStack.popOldest()
		h.bytes -= int64(old.Size())
	}
}

// MaxEntries returns the maximum undo depth.
func (h *History) MaxEntries() int { return h.maxEntries }

// SetMaxBytes changes the snapshot memory budget and evicts to meet it.
func (h *History) SetMaxBytes(max int64) {
	if max < 0 {
		max = 0
	}
	h.maxBytes = max
	h.enforceBudget(h.newest())
}

// MaxBytes returns the snapshot memory budget, zero if unlimited.
func (h *History) MaxBytes() int64 { return h.maxBytes }
