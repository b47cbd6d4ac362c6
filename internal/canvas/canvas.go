package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
)

// Default configuration values.
const (
	DefaultWidth        = 800
	DefaultHeight       = 600
	DefaultMaxDimension = 4000
)

// White is the default background colour.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Canvas is an in-memory RGBA pixel buffer.
type Canvas struct {
	img        *image.RGBA
	background color.RGBA
	maxDim     int

	dirty    image.Rectangle
	revision uint64
}

// Option configures a Canvas during creation.
type Option func(*Canvas)

// WithMaxDimension sets the largest width or height the canvas accepts.
func WithMaxDimension(max int) Option {
	return func(c *Canvas) {
		if max > 0 {
			c.maxDim = max
		}
	}
}

// New creates a canvas of the given size filled with the background colour.
func New(width, height int, background color.Color, opts ...Option) (*Canvas, error) {
	c := &Canvas{
		background: toRGBA(background),
		maxDim:     DefaultMaxDimension,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.checkSize(width, height); err != nil {
		return nil, err
	}

	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
	c.dirty = c.img.Bounds()
	return c, nil
}

// FromImage creates a canvas holding a copy of img.
// The copy is rebased so that its top-left pixel is at (0, 0).
func FromImage(img image.Image, background color.Color, opts ...Option) (*Canvas, error) {
	c := &Canvas{
		background: toRGBA(background),
		maxDim:     DefaultMaxDimension,
	}
	for _, opt := range opts {
		opt(c)
	}

	b := img.Bounds()
	if err := c.checkSize(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	rgba := clone.AsRGBA(img)
	if rgba.Bounds().Min != (image.Point{}) {
		rebased := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rebased, rebased.Bounds(), rgba, rgba.Bounds().Min, draw.Src)
		rgba = rebased
	}

	c.img = rgba
	c.dirty = c.img.Bounds()
	return c, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Bounds returns the canvas rectangle, always anchored at (0, 0).
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Background returns the colour used by the eraser and for resize growth.
func (c *Canvas) Background() color.RGBA { return c.background }

// SetBackground changes the background colour. Existing pixels are untouched.
func (c *Canvas) SetBackground(bg color.Color) { c.background = toRGBA(bg) }

// MaxDimension returns the largest width or height the canvas accepts.
func (c *Canvas) MaxDimension() int { return c.maxDim }

// In reports whether (x, y) lies inside the canvas.
func (c *Canvas) In(x, y int) bool {
	return image.Pt(x, y).In(c.img.Bounds())
}

// At returns the colour at (x, y).
func (c *Canvas) At(x, y int) (color.RGBA, error) {
	if !c.In(x, y) {
		return color.RGBA{}, fmt.Errorf("read (%d,%d) on %dx%d canvas: %w", x, y, c.Width(), c.Height(), ErrOutOfBounds)
	}
	return c.img.RGBAAt(x, y), nil
}

// Set writes a single pixel.
func (c *Canvas) Set(x, y int, col color.Color) error {
	if !c.In(x, y) {
		return fmt.Errorf("write (%d,%d) on %dx%d canvas: %w", x, y, c.Width(), c.Height(), ErrOutOfBounds)
	}
	c.img.SetRGBA(x, y, toRGBA(col))
	c.MarkDirty(image.Rect(x, y, x+1, y+1))
	return nil
}

// Apply runs a mutation against the pixel grid and marks what it changed.
// A failed mutation leaves the dirty state untouched; whether it touched
// pixels before failing is up to the mutation.
func (c *Canvas) Apply(m Mutation) error {
	changed, err := m.Mutate(c.img)
	if err != nil {
		return err
	}
	c.MarkDirty(changed)
	return nil
}

// Resize changes the canvas dimensions. Existing pixels keep their
// position relative to the origin and new area is filled with the
// background colour. Invalid sizes are rejected before anything changes.
func (c *Canvas) Resize(width, height int) error {
	if err := c.checkSize(width, height); err != nil {
		return err
	}

	next := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(next, next.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
	draw.Draw(next, c.img.Bounds().Intersect(next.Bounds()), c.img, image.Point{}, draw.Src)

	c.img = next
	c.dirty = next.Bounds()
	c.revision++
	return nil
}

// Scale resamples the image to new dimensions.
func (c *Canvas) Scale(width, height int) error {
	if err := c.checkSize(width, height); err != nil {
		return err
	}

	c.img = transform.Resize(c.img, width, height, transform.Linear)
	c.dirty = c.img.Bounds()
	c.revision++
	return nil
}

// Image returns a copy of the pixel grid, suitable for encoding.
func (c *Canvas) Image() *image.RGBA {
	return clone.AsRGBA(c.img)
}

// Dirty reports whether anything changed since the last ClearDirty.
func (c *Canvas) Dirty() bool { return !c.dirty.Empty() }

// DirtyRect returns the area changed since the last ClearDirty.
func (c *Canvas) DirtyRect() image.Rectangle { return c.dirty }

// ClearDirty resets the dirty rectangle after a repaint.
func (c *Canvas) ClearDirty() { c.dirty = image.Rectangle{} }

// MarkDirty merges r, clipped to the canvas, into the dirty rectangle.
func (c *Canvas) MarkDirty(r image.Rectangle) {
	r = r.Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	c.dirty = c.dirty.Union(r)
	c.revision++
}

// Revision counts changes to the pixel grid. It advances whenever pixels
// are written and never goes back.
func (c *Canvas) Revision() uint64 { return c.revision }

func (c *Canvas) checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%dx%d: %w", width, height, ErrInvalidSize)
	}
	if width > c.maxDim || height > c.maxDim {
		return fmt.Errorf("%dx%d exceeds maximum %d: %w", width, height, c.maxDim, ErrInvalidSize)
	}
	return nil
}

// toRGBA converts any colour to the canvas pixel format.
func toRGBA(col color.Color) color.RGBA {
	if col == nil {
		return White
	}
	return color.RGBAModel.Convert(col).(color.RGBA)
}
