// Package terminal is a tcell front-end for pixelstorm.
//
// Each character cell shows two vertically stacked pixels using the upper
// half block: the foreground paints the top pixel and the background the
// bottom one. The last screen row is the status line.
package terminal

import (
	"context"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pixelstorm/internal/app"
	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/event"
)

const (
	upperHalf = '▀'
	swatch    = '█'

	// PanStep is how many pixels an arrow key scrolls the view.
	PanStep = 4
)

// Poster accepts events for the main loop.
type Poster interface {
	Post(ev event.Event) bool
}

// Terminal draws the canvas to a tcell screen and turns terminal input
// into events. Render runs on the main loop; Poll runs on its own
// goroutine. The view offset and pointer state are shared between them.
type Terminal struct {
	screen tcell.Screen
	fini   sync.Once

	mu      sync.Mutex
	offsetX int
	offsetY int
	down    bool
}

// New wraps screen. The screen is initialised by Init.
func New(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Init prepares the screen for drawing and enables the mouse.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	t.screen.HideCursor()
	t.screen.Clear()
	return nil
}

// Fini restores the terminal. Poll returns after Fini. It is safe to
// call more than once.
func (t *Terminal) Fini() {
	t.fini.Do(t.screen.Fini)
}

// Offset returns the canvas pixel shown in the top-left cell.
func (t *Terminal) Offset() (x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offsetX, t.offsetY
}

// Pan moves the view by dx, dy pixels. The offset never goes negative.
func (t *Terminal) Pan(dx, dy int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offsetX = max(0, t.offsetX+dx)
	t.offsetY = max(0, t.offsetY+dy)
}

// Poll reads terminal input and posts the resulting events until the
// screen is finalised or ctx is done.
func (t *Terminal) Poll(ctx context.Context, p Poster) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		if _, ok := ev.(*tcell.EventResize); ok {
			t.screen.Sync()
		}
		for _, e := range t.Convert(ev) {
			if !p.Post(e) {
				return
			}
		}
	}
}

// Render draws the visible part of cv and the status line.
func (t *Terminal) Render(cv *canvas.Canvas, st app.Status) error {
	ox, oy := t.Offset()
	width, height := t.screen.Size()
	rows := height - 1

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < width; cx++ {
			px, py := ox+cx, oy+2*cy
			top, topOK := pixel(cv, px, py)
			bottom, bottomOK := pixel(cv, px, py+1)

			switch {
			case topOK && bottomOK:
				t.screen.SetContent(cx, cy, upperHalf, nil,
					tcell.StyleDefault.Foreground(top).Background(bottom))
			case topOK:
				t.screen.SetContent(cx, cy, upperHalf, nil,
					tcell.StyleDefault.Foreground(top))
			default:
				t.screen.SetContent(cx, cy, ' ', nil, tcell.StyleDefault)
			}
		}
	}

	if rows >= 0 {
		t.drawStatus(rows, width, st)
	}
	t.screen.Show()
	return nil
}

func (t *Terminal) drawStatus(row, width int, st app.Status) {
	style := tcell.StyleDefault.Reverse(true)

	x := 0
	if width > 0 {
		t.screen.SetContent(0, row, swatch, nil, tcell.StyleDefault.Foreground(rgb(st.Color)))
		x = 2
		if width > 1 {
			t.screen.SetContent(1, row, ' ', nil, style)
		}
	}
	for _, r := range st.String() {
		if x >= width {
			break
		}
		t.screen.SetContent(x, row, r, nil, style)
		x++
	}
	for ; x < width; x++ {
		t.screen.SetContent(x, row, ' ', nil, style)
	}
}

func pixel(cv *canvas.Canvas, x, y int) (tcell.Color, bool) {
	c, err := cv.At(x, y)
	if err != nil {
		return tcell.ColorDefault, false
	}
	return rgb(c), true
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
