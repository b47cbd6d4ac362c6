// Package tool implements the paint tools and the pointer stroke that
// drives them.
package tool

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/history"
)

// Kind identifies a tool.
type Kind uint8

const (
	// KindBrush paints with the current colour.
	KindBrush Kind = iota
	// KindEraser paints with the canvas background colour.
	KindEraser
	// KindFill flood-fills the region under the pointer.
	KindFill
)

// String returns the tool name.
func (k Kind) String() string {
	switch k {
	case KindBrush:
		return "brush"
	case KindEraser:
		return "eraser"
	case KindFill:
		return "fill"
	default:
		return "unknown"
	}
}

// ParseKind parses a tool name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brush", "pen", "d":
		return KindBrush, nil
	case "eraser", "e":
		return KindEraser, nil
	case "fill", "bucket", "f":
		return KindFill, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTool, s)
	}
}

// Tool applies pointer input to a canvas.
type Tool interface {
	// Kind returns the tool kind.
	Kind() Kind

	// Op returns the history label for strokes made with this tool.
	Op() history.Op

	// Press handles the pointer going down at p.
	Press(cv *canvas.Canvas, p image.Point) error

	// Drag handles the pointer moving from one point to the next while down.
	Drag(cv *canvas.Canvas, from, to image.Point) error
}

// Brush paints round-capped lines in a solid colour.
type Brush struct {
	Size  int
	Color color.RGBA
}

func (b *Brush) Kind() Kind { return KindBrush }
func (b *Brush) Op() history.Op { return history.OpBrush }

// Press paints a single dot.
func (b *Brush) Press(cv *canvas.Canvas, p image.Point) error {
	return cv.Apply(canvas.Dab(p, b.Size, b.Color))
}

// Drag paints a line segment.
func (b *Brush) Drag(cv *canvas.Canvas, from, to image.Point) error {
	return cv.Apply(canvas.Line(from, to, b.Size, b.Color))
}

// Eraser paints with the canvas background colour.
type Eraser struct {
	Size int
}

func (e *Eraser) Kind() Kind { return KindEraser }
func (e *Eraser) Op() history.Op { return history.OpEraser }

// Press erases a single dot.
func (e *Eraser) Press(cv *canvas.Canvas, p image.Point) error {
	return cv.Apply(canvas.Dab(p, e.Size, cv.Background()))
}

// Drag erases a line segment.
func (e *Eraser) Drag(cv *canvas.Canvas, from, to image.Point) error {
	return cv.Apply(canvas.Line(from, to, e.Size, cv.Background()))
}

// Fill flood-fills the region under the pointer when pressed.
type Fill struct {
	Color     color.RGBA
	Tolerance float64
}

func (f *Fill) Kind() Kind { return KindFill }
func (f *Fill) Op() history.Op { return history.OpFill }

// Press fills from p. A seed outside the canvas is ErrOutOfBounds.
func (f *Fill) Press(cv *canvas.Canvas, p image.Point) error {
	return cv.Apply(canvas.FloodFill(p, f.Color, f.Tolerance))
}

// Drag does nothing; a fill happens once per press.
func (f *Fill) Drag(*canvas.Canvas, image.Point, image.Point) error { return nil }
