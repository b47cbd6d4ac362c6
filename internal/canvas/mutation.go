package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Mutation is a change to the pixel grid.
// Mutate reports the rectangle it touched; pixels outside it must be
// left as they were.
type Mutation interface {
	Mutate(dst *image.RGBA) (image.Rectangle, error)
}

// MutationFunc adapts an ordinary function to the Mutation interface.
type MutationFunc func(dst *image.RGBA) (image.Rectangle, error)

// Mutate calls f(dst).
func (f MutationFunc) Mutate(dst *image.RGBA) (image.Rectangle, error) {
	return f(dst)
}

// Dab paints a filled disc of the given diameter centred on p.
// Parts of the disc outside the canvas are clipped.
func Dab(p image.Point, size int, col color.Color) Mutation {
	c := toRGBA(col)
	return MutationFunc(func(dst *image.RGBA) (image.Rectangle, error) {
		return stamp(dst, p, size, c), nil
	})
}

// Line paints a round-capped line of the given width from one point to
// another. Both end points are painted. The segment is clipped to the
// canvas first, so far-away end points cost nothing.
func Line(from, to image.Point, size int, col color.Color) Mutation {
	c := toRGBA(col)
	return MutationFunc(func(dst *image.RGBA) (image.Rectangle, error) {
		// Discs centred outside this margin cannot reach the canvas.
		reach := dst.Bounds().Inset(-(max(size, 1)/2 + 1))
		a, b, ok := clipLine(from, to, reach)
		if !ok {
			return image.Rectangle{}, nil
		}

		var changed image.Rectangle
		walkLine(a, b, func(p image.Point) {
			changed = changed.Union(stamp(dst, p, size, c))
		})
		return changed, nil
	})
}

// Clear fills the whole canvas with one colour.
func Clear(col color.Color) Mutation {
	c := toRGBA(col)
	return MutationFunc(func(dst *image.RGBA) (image.Rectangle, error) {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
		return dst.Bounds(), nil
	})
}

// FloodFill replaces the 4-connected region around seed whose colours
// lie within tolerance (0-100) of the seed colour. Zero matches the seed
// colour exactly; 100 matches every colour.
func FloodFill(seed image.Point, col color.Color, tolerance float64) Mutation {
	c := toRGBA(col)
	switch {
	case tolerance < 0:
		tolerance = 0
	case tolerance > 100:
		tolerance = 100
	}
	// Squared RGBA distance; the largest possible is 4*255*255.
	limit := tolerance / 100 * tolerance / 100 * maxDistance

	return MutationFunc(func(dst *image.RGBA) (image.Rectangle, error) {
		b := dst.Bounds()
		if !seed.In(b) {
			return image.Rectangle{}, fmt.Errorf("fill seed (%d,%d): %w", seed.X, seed.Y, ErrOutOfBounds)
		}
		target := dst.RGBAAt(seed.X, seed.Y)
		if target == c {
			return image.Rectangle{}, nil
		}

		w := b.Dx()
		visited := make([]bool, w*b.Dy())
		index := func(p image.Point) int { return (p.Y-b.Min.Y)*w + p.X - b.Min.X }

		var changed image.Rectangle
		queue := []image.Point{seed}
		visited[index(seed)] = true
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]

			dst.SetRGBA(p.X, p.Y, c)
			changed = changed.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

			for _, n := range [4]image.Point{
				{p.X, p.Y - 1},
				{p.X, p.Y + 1},
				{p.X - 1, p.Y},
				{p.X + 1, p.Y},
			} {
				if !n.In(b) || visited[index(n)] {
					continue
				}
				if distance(dst.RGBAAt(n.X, n.Y), target) > limit {
					continue
				}
				visited[index(n)] = true
				queue = append(queue, n)
			}
		}
		return changed, nil
	})
}

const maxDistance = 4 * 255 * 255

// distance returns the squared Euclidean distance between two colours.
func distance(a, b color.RGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	da := float64(a.A) - float64(b.A)
	return dr*dr + dg*dg + db*db + da*da
}

// stamp paints a disc and returns the clipped rectangle it covered.
func stamp(dst *image.RGBA, p image.Point, size int, c color.RGBA) image.Rectangle {
	if size < 1 {
		size = 1
	}
	half := size / 2
	limit := size * size
	bounds := dst.Bounds()

	area := image.Rect(p.X-half, p.Y-half, p.X+half+1, p.Y+half+1).Intersect(bounds)
	if area.Empty() {
		return image.Rectangle{}
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		dy := 2 * (y - p.Y)
		for x := area.Min.X; x < area.Max.X; x++ {
			dx := 2 * (x - p.X)
			if dx*dx+dy*dy <= limit {
				dst.SetRGBA(x, y, c)
			}
		}
	}
	return area
}

// walkLine visits every point of the Bresenham line between a and b.
func walkLine(a, b image.Point, visit func(image.Point)) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	err := dx + dy
	x, y := a.X, a.Y
	for {
		visit(image.Pt(x, y))
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// clipLine clips the segment a-b to r (Liang-Barsky) and reports whether
// any of it remains. Arithmetic is done in float64 so coordinates near
// the int limits cannot overflow.
func clipLine(a, b image.Point, r image.Rectangle) (image.Point, image.Point, bool) {
	if a.In(r) && b.In(r) {
		return a, b, true
	}

	x0, y0 := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-x0, float64(b.Y)-y0
	minX, minY := float64(r.Min.X), float64(r.Min.Y)
	maxX, maxY := float64(r.Max.X-1), float64(r.Max.Y-1)

	t0, t1 := 0.0, 1.0
	for _, edge := range [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	} {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}

	clamp := func(v, lo, hi float64) int { return int(math.Max(lo, math.Min(hi, math.Round(v)))) }
	ca := image.Pt(clamp(x0+t0*dx, minX, maxX), clamp(y0+t0*dy, minY, maxY))
	cb := image.Pt(clamp(x0+t1*dx, minX, maxX), clamp(y0+t1*dy, minY, maxY))
	return ca, cb, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
