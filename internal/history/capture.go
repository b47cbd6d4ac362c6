package history

import (
	"fmt"

	"github.com/dshills/pixelstorm/internal/canvas"
)

// Capture is the open scope between RecordBefore and the mutation being
// committed. Exactly one of Commit or Abort takes effect.
type Capture struct {
	history  *History
	op       Op
	snapshot canvas.Snapshot
	done     bool
}

// Op returns the operation being captured.
func (c *Capture) Op() Op { return c.op }

// Snapshot returns the state captured before the mutation.
func (c *Capture) Snapshot() canvas.Snapshot { return c.snapshot }

// Active reports whether the capture is still open.
func (c *Capture) Active() bool { return !c.done }

// Commit pushes the captured state onto the undo stack and clears the
// redo stack.
func (c *Capture) Commit() error {
	if c.done {
		return ErrCaptureClosed
	}
	c.close()
	c.history.commit(newEntry(c.op, c.snapshot))
	return nil
}

// Abort restores the target to the captured state. Neither stack changes.
func (c *Capture) Abort() error {
	if c.done {
		return ErrCaptureClosed
	}
	c.close()
	if err := c.history.target.Restore(c.snapshot); err != nil {
		return fmt.Errorf("abort %s: %w", c.op, err)
	}
	return nil
}

// Close aborts the capture if it is still open. It is safe to defer and
// to call after Commit.
func (c *Capture) Close() {
	if !c.done {
		_ = c.Abort()
	}
}

func (c *Capture) close() {
	c.done = true
	if c.history.capture == c {
		c.history.capture = nil
	}
}

// PanicError wraps a panic recovered while a capture was open.
type PanicError struct {
	Op    Op
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: recovered panic: %v", e.Op, e.Value)
}
