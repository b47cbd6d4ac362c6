// Package canvas provides the raster pixel buffer that every paint
// operation works on.
//
// A Canvas is an RGBA image with a background colour and a dirty
// rectangle. All pixel changes go through one of three entry points:
//
//   - Apply runs a Mutation (Dab, Line, FloodFill, Clear) against the
//     pixel grid.
//   - Resize and Scale replace the grid with one of different dimensions.
//   - Restore puts back a previously captured Snapshot.
//
// Each of them merges the changed area into the dirty rectangle so a
// front-end can repaint only what moved:
//
//	c, _ := canvas.New(800, 600, color.RGBA{255, 255, 255, 255})
//	_ = c.Apply(canvas.Line(image.Pt(0, 0), image.Pt(10, 10), 2, black))
//	if c.Dirty() {
//	    repaint(c.DirtyRect())
//	    c.ClearDirty()
//	}
//
// # Bounds
//
// Reads and single-pixel writes outside the canvas return ErrOutOfBounds.
// Drawing mutations clip to the canvas instead: a stroke that leaves the
// image simply stops painting at the edge.
//
// # Concurrency
//
// A Canvas is owned by a single goroutine (the application's main loop)
// and performs no locking.
package canvas
