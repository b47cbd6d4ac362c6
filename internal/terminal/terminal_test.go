package terminal

import (
	"context"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pixelstorm/internal/app"
	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/event"
	"github.com/dshills/pixelstorm/internal/tool"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func newSim(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	term := New(s)
	if err := term.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetSize(w, h)
	t.Cleanup(term.Fini)
	return term, s
}

func TestRenderHalfBlocks(t *testing.T) {
	term, s := newSim(t, 10, 4)

	cv, err := canvas.New(3, 3, white)
	if err != nil {
		t.Fatal(err)
	}
	_ = cv.Set(0, 0, red)
	_ = cv.Set(0, 1, blue)

	if err := term.Render(cv, app.Status{Tool: tool.KindBrush, Size: 1, Color: red, Width: 3, Height: 3}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	r, _, style, _ := s.GetContent(0, 0)
	if r != upperHalf {
		t.Fatalf("cell(0,0) = %q, want %q", r, upperHalf)
	}
	fg, bg, _ := style.Decompose()
	if fg != rgb(red) || bg != rgb(blue) {
		t.Errorf("cell(0,0) colors = %v/%v, want red/blue", fg, bg)
	}

	// Row 1 covers pixel rows 2 and 3; only row 2 exists.
	r, _, style, _ = s.GetContent(0, 1)
	if r != upperHalf {
		t.Errorf("cell(0,1) = %q, want half block", r)
	}
	if fg, _, _ := style.Decompose(); fg != rgb(white) {
		t.Errorf("cell(0,1) fg = %v, want white", fg)
	}

	if r, _, _, _ := s.GetContent(5, 0); r != ' ' {
		t.Errorf("cell outside canvas = %q, want blank", r)
	}
}

func TestRenderStatusLine(t *testing.T) {
	term, s := newSim(t, 60, 3)

	cv, _ := canvas.New(2, 2, white)
	st := app.Status{
		Message:  "hello",
		Document: app.Document{Path: "pic.png"},
		Tool:     tool.KindBrush,
		Size:     3,
		Color:    red,
		Width:    2,
		Height:   2,
	}
	if err := term.Render(cv, st); err != nil {
		t.Fatal(err)
	}

	r, _, style, _ := s.GetContent(0, 2)
	if r != swatch {
		t.Errorf("swatch = %q", r)
	}
	if fg, _, _ := style.Decompose(); fg != rgb(red) {
		t.Errorf("swatch color = %v, want red", fg)
	}

	var line strings.Builder
	for x := 2; x < 60; x++ {
		r, _, _, _ := s.GetContent(x, 2)
		line.WriteRune(r)
	}
	got := strings.TrimSpace(line.String())
	if got != st.String() {
		t.Errorf("status = %q, want %q", got, st.String())
	}
}

func TestRenderUsesOffset(t *testing.T) {
	term, s := newSim(t, 4, 3)

	cv, _ := canvas.New(8, 8, white)
	_ = cv.Set(4, 4, red)
	term.Pan(4, 4)

	if err := term.Render(cv, app.Status{}); err != nil {
		t.Fatal(err)
	}
	_, _, style, _ := s.GetContent(0, 0)
	if fg, _, _ := style.Decompose(); fg != rgb(red) {
		t.Errorf("offset cell fg = %v, want red", fg)
	}
}

func TestPanClamps(t *testing.T) {
	term := New(tcell.NewSimulationScreen("UTF-8"))
	term.Pan(-10, 3)
	if x, y := term.Offset(); x != 0 || y != 3 {
		t.Errorf("Offset = %d,%d, want 0,3", x, y)
	}
}

func TestConvertMouse(t *testing.T) {
	term := New(tcell.NewSimulationScreen("UTF-8"))

	var got []event.Event
	got = append(got, term.Convert(tcell.NewEventMouse(1, 2, tcell.Button1, tcell.ModNone))...)
	got = append(got, term.Convert(tcell.NewEventMouse(2, 2, tcell.Button1, tcell.ModNone))...)
	got = append(got, term.Convert(tcell.NewEventMouse(3, 2, tcell.ButtonNone, tcell.ModNone))...)
	got = append(got, term.Convert(tcell.NewEventMouse(4, 2, tcell.ButtonNone, tcell.ModNone))...)

	want := []event.Event{
		{Type: event.PointerDown, X: 1, Y: 4},
		{Type: event.PointerMove, X: 2, Y: 4},
		{Type: event.PointerUp, X: 3, Y: 4},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i].Type != want[i].Type || got[i].X != want[i].X || got[i].Y != want[i].Y {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestConvertMouseWithOffset(t *testing.T) {
	term := New(tcell.NewSimulationScreen("UTF-8"))
	term.Pan(8, 4)

	evs := term.Convert(tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	if len(evs) != 1 || evs[0].X != 9 || evs[0].Y != 6 {
		t.Errorf("Convert = %v, want pointer.down at 9,6", evs)
	}
}

func TestConvertKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want event.Event
	}{
		{"undo", tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl), event.Event{Type: event.Undo}},
		{"redo", tcell.NewEventKey(tcell.KeyCtrlY, 0, tcell.ModCtrl), event.Event{Type: event.Redo}},
		{"save", tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl), event.Event{Type: event.Save}},
		{"ctrl rune", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModCtrl), event.Event{Type: event.Undo}},
		{"quit", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), event.Event{Type: event.Quit}},
		{"brush", tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone), event.Event{Type: event.SelectTool, Tool: tool.KindBrush}},
		{"eraser", tcell.NewEventKey(tcell.KeyRune, 'e', tcell.ModNone), event.Event{Type: event.SelectTool, Tool: tool.KindEraser}},
		{"fill", tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone), event.Event{Type: event.SelectTool, Tool: tool.KindFill}},
		{"palette", tcell.NewEventKey(tcell.KeyRune, '3', tcell.ModNone), event.Event{Type: event.PickPalette, Index: 2}},
		{"grow", tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone), event.Event{Type: event.AdjustSize, Size: 1}},
		{"shrink", tcell.NewEventKey(tcell.KeyRune, '-', tcell.ModNone), event.Event{Type: event.AdjustSize, Size: -1}},
		{"cancel", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), event.Event{Type: event.PointerCancel}},
		{"pan", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), event.Event{Type: event.Redraw}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := New(tcell.NewSimulationScreen("UTF-8"))
			evs := term.Convert(tt.ev)
			if len(evs) != 1 {
				t.Fatalf("Convert = %v, want one event", evs)
			}
			got := evs[0]
			if got.Type != tt.want.Type || got.Tool != tt.want.Tool ||
				got.Index != tt.want.Index || got.Size != tt.want.Size {
				t.Errorf("Convert = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvertIgnoresUnboundKeys(t *testing.T) {
	term := New(tcell.NewSimulationScreen("UTF-8"))
	if evs := term.Convert(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)); len(evs) != 0 {
		t.Errorf("Convert(x) = %v, want none", evs)
	}
	if evs := term.Convert(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModCtrl)); len(evs) != 0 {
		t.Errorf("Convert(ctrl-x) = %v, want none", evs)
	}
}

func TestEscapeResetsPointer(t *testing.T) {
	term := New(tcell.NewSimulationScreen("UTF-8"))
	term.Convert(tcell.NewEventMouse(0, 0, tcell.Button1, tcell.ModNone))
	term.Convert(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))

	evs := term.Convert(tcell.NewEventMouse(0, 0, tcell.ButtonNone, tcell.ModNone))
	if len(evs) != 0 {
		t.Errorf("release after escape = %v, want none", evs)
	}
}

type chanPoster chan event.Event

func (c chanPoster) Post(ev event.Event) bool {
	c <- ev
	return true
}

func TestPollPostsEvents(t *testing.T) {
	term, s := newSim(t, 10, 5)

	posted := make(chanPoster, 8)
	done := make(chan struct{})
	go func() {
		term.Poll(context.Background(), posted)
		close(done)
	}()

	s.InjectKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-posted:
			if ev.Type != event.Undo {
				// Resize from SetSize may arrive first.
				continue
			}
		case <-timeout:
			t.Fatal("no undo event posted")
		}
		break
	}

	term.Fini()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Poll did not return after Fini")
	}
}
