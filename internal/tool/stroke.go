package tool

import (
	"fmt"
	"image"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/history"
)

// Stroke is one pointer-down to pointer-up gesture. It holds a single
// history capture for its whole lifetime, so the gesture undoes as one
// step.
type Stroke struct {
	tool    Tool
	canvas  *canvas.Canvas
	capture *history.Capture
	rev     uint64
	last    image.Point
	moves   int
	ended   bool
}

// Begin captures the canvas and applies the tool's press at p.
// If the press fails the capture is aborted and no stroke is returned.
func Begin(h *history.History, cv *canvas.Canvas, t Tool, p image.Point) (*Stroke, error) {
	c, err := h.RecordBefore(t.Op())
	if err != nil {
		return nil, err
	}

	rev := cv.Revision()
	if err := t.Press(cv, p); err != nil {
		_ = c.Abort()
		return nil, fmt.Errorf("%s at (%d,%d): %w", t.Kind(), p.X, p.Y, err)
	}

	return &Stroke{
		tool:    t,
		canvas:  cv,
		capture: c,
		rev:     rev,
		last:    p,
	}, nil
}

// Move continues the stroke to p. A failing move aborts the whole stroke.
func (s *Stroke) Move(p image.Point) error {
	if s.ended {
		return ErrStrokeEnded
	}
	if p == s.last {
		return nil
	}

	if err := s.tool.Drag(s.canvas, s.last, p); err != nil {
		s.ended = true
		_ = s.capture.Abort()
		return fmt.Errorf("%s drag to (%d,%d): %w", s.tool.Kind(), p.X, p.Y, err)
	}
	s.last = p
	s.moves++
	return nil
}

// End commits the stroke to the history. A stroke that wrote no pixels
// is dropped instead, leaving the redo stack alone.
func (s *Stroke) End() error {
	if s.ended {
		return ErrStrokeEnded
	}
	s.ended = true
	if !s.Changed() {
		return s.capture.Abort()
	}
	return s.capture.Commit()
}

// Cancel reverts everything the stroke painted.
func (s *Stroke) Cancel() error {
	if s.ended {
		return ErrStrokeEnded
	}
	s.ended = true
	return s.capture.Abort()
}

// Tool returns the tool driving the stroke.
func (s *Stroke) Tool() Tool { return s.tool }

// Last returns the most recent pointer position.
func (s *Stroke) Last() image.Point { return s.last }

// Moves returns the number of segments painted after the press.
func (s *Stroke) Moves() int { return s.moves }

// Changed reports whether the stroke has written any pixels so far.
func (s *Stroke) Changed() bool { return s.canvas.Revision() != s.rev }

// Active reports whether the stroke is still open.
func (s *Stroke) Active() bool { return !s.ended }
