package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// Snapshot is an immutable copy of a canvas pixel grid.
// The zero value is an empty snapshot that cannot be restored.
type Snapshot struct {
	pix    []byte
	width  int
	height int
}

// Snapshot captures the current pixel grid.
func (c *Canvas) Snapshot() Snapshot {
	pix := make([]byte, len(c.img.Pix))
	copy(pix, c.img.Pix)
	return Snapshot{
		pix:    pix,
		width:  c.Width(),
		height: c.Height(),
	}
}

// Restore replaces the pixel grid with the snapshot's contents, including
// its dimensions. The snapshot itself is not aliased and stays valid.
func (c *Canvas) Restore(s Snapshot) error {
	if s.width <= 0 || s.height <= 0 || len(s.pix) != 4*s.width*s.height {
		return ErrSnapshotMismatch
	}

	pix := make([]byte, len(s.pix))
	copy(pix, s.pix)
	c.img = &image.RGBA{
		Pix:    pix,
		Stride: 4 * s.width,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
	c.dirty = c.img.Bounds()
	c.revision++
	return nil
}

// Width returns the captured width.
func (s Snapshot) Width() int { return s.width }

// Height returns the captured height.
func (s Snapshot) Height() int { return s.height }

// Size returns the number of pixel bytes held by the snapshot.
func (s Snapshot) Size() int { return len(s.pix) }

// IsZero reports whether s is the zero snapshot.
func (s Snapshot) IsZero() bool { return s.pix == nil }

// At returns the captured colour at (x, y).
func (s Snapshot) At(x, y int) (color.RGBA, error) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return color.RGBA{}, fmt.Errorf("snapshot read (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	i := 4 * (y*s.width + x)
	return color.RGBA{R: s.pix[i], G: s.pix[i+1], B: s.pix[i+2], A: s.pix[i+3]}, nil
}

// Equal reports whether two snapshots hold identical pixels.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.width == other.width && s.height == other.height && bytes.Equal(s.pix, other.pix)
}
