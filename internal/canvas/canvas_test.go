package canvas

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

var (
	black = color.RGBA{A: 255}
	red   = color.RGBA{R: 255, A: 255}
)

func newTestCanvas(t *testing.T, w, h int) *Canvas {
	t.Helper()
	c, err := New(w, h, White)
	if err != nil {
		t.Fatalf("New(%d, %d) failed: %v", w, h, err)
	}
	return c
}

func TestNew(t *testing.T) {
	c := newTestCanvas(t, 10, 5)

	if c.Width() != 10 || c.Height() != 5 {
		t.Errorf("size = %dx%d, want 10x5", c.Width(), c.Height())
	}
	got, err := c.At(9, 4)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	if got != White {
		t.Errorf("At(9,4) = %v, want white", got)
	}
	if !c.Dirty() {
		t.Error("new canvas should be dirty")
	}
}

func TestNewInvalidSize(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, -1},
		{"too wide", DefaultMaxDimension + 1, 10},
		{"too tall", 10, DefaultMaxDimension + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.w, tt.h, White)
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("New(%d, %d) err = %v, want ErrInvalidSize", tt.w, tt.h, err)
			}
		})
	}
}

func TestWithMaxDimension(t *testing.T) {
	if _, err := New(20, 20, White, WithMaxDimension(16)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize above custom maximum, got %v", err)
	}
	c, err := New(16, 16, White, WithMaxDimension(16))
	if err != nil {
		t.Fatalf("New at the maximum failed: %v", err)
	}
	if c.MaxDimension() != 16 {
		t.Errorf("MaxDimension() = %d, want 16", c.MaxDimension())
	}
}

func TestFromImageRebases(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.SetRGBA(5, 5, red)

	c, err := FromImage(src, White)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if c.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("Bounds() = %v, want (0,0)-(3,2)", c.Bounds())
	}
	got, _ := c.At(0, 0)
	if got != red {
		t.Errorf("At(0,0) = %v, want red", got)
	}

	// The canvas owns a copy.
	src.SetRGBA(6, 5, red)
	got, _ = c.At(1, 0)
	if got == red {
		t.Error("canvas aliases the source image")
	}
}

func TestAtOutOfBounds(t *testing.T) {
	c := newTestCanvas(t, 4, 4)

	for _, p := range []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if _, err := c.At(p.X, p.Y); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("At(%d,%d) err = %v, want ErrOutOfBounds", p.X, p.Y, err)
		}
		if err := c.Set(p.X, p.Y, black); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Set(%d,%d) err = %v, want ErrOutOfBounds", p.X, p.Y, err)
		}
	}
}

func TestSetMarksDirty(t *testing.T) {
	c := newTestCanvas(t, 4, 4)
	c.ClearDirty()

	if err := c.Set(2, 3, black); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if c.DirtyRect() != image.Rect(2, 3, 3, 4) {
		t.Errorf("DirtyRect() = %v, want (2,3)-(3,4)", c.DirtyRect())
	}
}

func TestResizePreservesOrigin(t *testing.T) {
	c := newTestCanvas(t, 4, 4)
	_ = c.Set(1, 1, black)
	c.SetBackground(red)

	if err := c.Resize(6, 3); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if c.Width() != 6 || c.Height() != 3 {
		t.Fatalf("size = %dx%d, want 6x3", c.Width(), c.Height())
	}

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{1, 1, black}, // preserved
		{0, 0, White}, // preserved background
		{5, 0, red},   // new area
		{4, 2, red},   // new area
	}
	for _, tt := range tests {
		got, err := c.At(tt.x, tt.y)
		if err != nil {
			t.Fatalf("At(%d,%d) failed: %v", tt.x, tt.y, err)
		}
		if got != tt.want {
			t.Errorf("At(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestResizeInvalidLeavesCanvas(t *testing.T) {
	c := newTestCanvas(t, 4, 4)
	_ = c.Set(0, 0, black)
	before := c.Snapshot()

	for _, size := range [][2]int{{0, 4}, {4, -2}, {DefaultMaxDimension + 1, 1}} {
		if err := c.Resize(size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Resize(%d,%d) err = %v, want ErrInvalidSize", size[0], size[1], err)
		}
	}
	if !c.Snapshot().Equal(before) {
		t.Error("rejected resize changed the canvas")
	}
}

func TestScale(t *testing.T) {
	c := newTestCanvas(t, 4, 4)
	if err := c.Apply(Clear(black)); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if err := c.Scale(8, 2); err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	if c.Width() != 8 || c.Height() != 2 {
		t.Fatalf("size = %dx%d, want 8x2", c.Width(), c.Height())
	}
	got, _ := c.At(7, 1)
	if got.R > 8 || got.G > 8 || got.B > 8 || got.A < 247 {
		t.Errorf("At(7,1) = %v, want near black", got)
	}

	if err := c.Scale(0, 2); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Scale(0,2) err = %v, want ErrInvalidSize", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := newTestCanvas(t, 3, 3)
	snap := c.Snapshot()

	_ = c.Set(1, 1, black)
	_ = c.Resize(5, 5)

	if err := c.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if c.Width() != 3 || c.Height() != 3 {
		t.Errorf("size = %dx%d, want 3x3", c.Width(), c.Height())
	}
	got, _ := c.At(1, 1)
	if got != White {
		t.Errorf("At(1,1) = %v, want white", got)
	}

	// Mutating after restore must not leak into the snapshot.
	_ = c.Set(0, 0, black)
	px, _ := snap.At(0, 0)
	if px != White {
		t.Error("restore aliased the snapshot")
	}
}

func TestRestoreZeroSnapshot(t *testing.T) {
	c := newTestCanvas(t, 3, 3)
	if err := c.Restore(Snapshot{}); !errors.Is(err, ErrSnapshotMismatch) {
		t.Errorf("Restore(zero) err = %v, want ErrSnapshotMismatch", err)
	}
	if c.Width() != 3 {
		t.Error("failed restore changed the canvas")
	}
}

func TestSnapshotAccessors(t *testing.T) {
	c := newTestCanvas(t, 2, 3)
	snap := c.Snapshot()

	if snap.Width() != 2 || snap.Height() != 3 {
		t.Errorf("snapshot size = %dx%d, want 2x3", snap.Width(), snap.Height())
	}
	if snap.Size() != 2*3*4 {
		t.Errorf("Size() = %d, want 24", snap.Size())
	}
	if snap.IsZero() {
		t.Error("IsZero() = true for captured snapshot")
	}
	if _, err := snap.At(2, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("snapshot At(2,0) err = %v, want ErrOutOfBounds", err)
	}
}

func TestImageIsCopy(t *testing.T) {
	c := newTestCanvas(t, 2, 2)
	img := c.Image()
	img.SetRGBA(0, 0, black)

	got, _ := c.At(0, 0)
	if got != White {
		t.Error("Image() returned an alias of the pixel grid")
	}
}
