package tool

import (
	"fmt"
	"image/color"
)

// Default tool settings.
const (
	DefaultBrushSize  = 2
	DefaultEraserSize = 10
	DefaultMaxSize    = 64
)

// DefaultColor is the initial brush and fill colour.
var DefaultColor = color.RGBA{A: 255}

// Box holds the current tool selection and per-tool settings.
// Each tool keeps its own size, so switching between brush and eraser
// does not lose either.
type Box struct {
	current   Kind
	color     color.RGBA
	sizes     [3]int
	tolerance float64
	maxSize   int
}

// BoxOption configures a Box.
type BoxOption func(*Box)

// WithColor sets the initial colour.
func WithColor(c color.Color) BoxOption {
	return func(b *Box) {
		b.color = color.RGBAModel.Convert(c).(color.RGBA)
	}
}

// WithSizes sets the initial brush and eraser sizes.
func WithSizes(brush, eraser int) BoxOption {
	return func(b *Box) {
		if brush > 0 {
			b.sizes[KindBrush] = brush
		}
		if eraser > 0 {
			b.sizes[KindEraser] = eraser
		}
	}
}

// WithMaxSize sets the largest allowed tool size.
func WithMaxSize(max int) BoxOption {
	return func(b *Box) {
		if max > 0 {
			b.maxSize = max
		}
	}
}

// WithTolerance sets the fill tolerance (0-100).
func WithTolerance(t float64) BoxOption {
	return func(b *Box) {
		b.tolerance = clampTolerance(t)
	}
}

// NewBox creates a tool box with the brush selected.
func NewBox(opts ...BoxOption) *Box {
	b := &Box{
		current: KindBrush,
		color:   DefaultColor,
		sizes:   [3]int{DefaultBrushSize, DefaultEraserSize, 1},
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	for k := range b.sizes {
		if b.sizes[k] > b.maxSize {
			b.sizes[k] = b.maxSize
		}
	}
	return b
}

// Current returns the selected tool kind.
func (b *Box) Current() Kind { return b.current }

// Select makes k the current tool.
func (b *Box) Select(k Kind) error {
	if k > KindFill {
		return fmt.Errorf("%w: %d", ErrUnknownTool, k)
	}
	b.current = k
	return nil
}

// Color returns the paint colour.
func (b *Box) Color() color.RGBA { return b.color }

// SetColor changes the paint colour.
func (b *Box) SetColor(c color.Color) {
	b.color = color.RGBAModel.Convert(c).(color.RGBA)
}

// Size returns the current tool's size.
func (b *Box) Size() int { return b.sizes[b.current] }

// SizeOf returns the size configured for k.
func (b *Box) SizeOf(k Kind) int {
	if k > KindFill {
		return 0
	}
	return b.sizes[k]
}

// SetSize changes the current tool's size.
func (b *Box) SetSize(n int) error {
	if n < 1 || n > b.maxSize {
		return fmt.Errorf("size %d not in 1..%d: %w", n, b.maxSize, ErrInvalidSize)
	}
	b.sizes[b.current] = n
	return nil
}

// AdjustSize changes the current tool's size by delta, clamped to the
// allowed range, and returns the new size.
func (b *Box) AdjustSize(delta int) int {
	n := b.sizes[b.current] + delta
	if n < 1 {
		n = 1
	}
	if n > b.maxSize {
		n = b.maxSize
	}
	b.sizes[b.current] = n
	return n
}

// MaxSize returns the largest allowed tool size.
func (b *Box) MaxSize() int { return b.maxSize }

// SetMaxSize changes the largest allowed size, shrinking sizes above it.
func (b *Box) SetMaxSize(max int) {
	if max <= 0 {
		max = DefaultMaxSize
	}
	b.maxSize = max
	for k := range b.sizes {
		if b.sizes[k] > max {
			b.sizes[k] = max
		}
	}
}

// Tolerance returns the fill tolerance.
func (b *Box) Tolerance() float64 { return b.tolerance }

// SetTolerance changes the fill tolerance, clamped to 0-100.
func (b *Box) SetTolerance(t float64) { b.tolerance = clampTolerance(t) }

// Tool builds the current tool from the box settings.
func (b *Box) Tool() Tool {
	switch b.current {
	case KindEraser:
		return &Eraser{Size: b.sizes[KindEraser]}
	case KindFill:
		return &Fill{Color: b.color, Tolerance: b.tolerance}
	default:
		return &Brush{Size: b.sizes[KindBrush], Color: b.color}
	}
}

func clampTolerance(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 100:
		return 100
	default:
		return t
	}
}
