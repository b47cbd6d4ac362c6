// Package history provides undo/redo for the paint canvas.
//
// The history stores full canvas snapshots. Before a mutation is applied
// the caller opens a Capture, which records the current state; committing
// the capture pushes that state onto the undo stack and clears the redo
// stack. Undo swaps the canvas with the newest undo entry and keeps the
// replaced state for redo.
//
// # Capturing
//
//	h := history.New(cv, history.WithMaxEntries(30))
//
//	c, _ := h.RecordBefore(history.OpBrush)
//	// ... pointer moves paint into cv ...
//	c.Commit()
//
//	h.Undo() // canvas back to before the stroke
//	h.Redo() // stroke restored
//
// A capture is all-or-nothing. Abort (or Close on an uncommitted capture)
// puts the canvas back to the captured state and leaves both stacks as
// they were. Record wraps a function in a capture and aborts on error or
// panic:
//
//	err := h.Record(history.OpResize, func() error {
//	    return cv.Resize(1024, 768)
//	})
//
// # Bounds
//
// Both stacks are ring buffers sized to the maximum depth. When a commit
// overflows the undo stack the oldest entry is dropped silently. An
// optional byte budget evicts further old entries when snapshots of a
// large canvas would otherwise pile up.
package history
