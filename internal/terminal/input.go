package terminal

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pixelstorm/internal/event"
	"github.com/dshills/pixelstorm/internal/tool"
)

// Convert translates a tcell event into application events.
// Arrow keys pan the view locally and only request a redraw.
func (t *Terminal) Convert(ev tcell.Event) []event.Event {
	switch e := ev.(type) {
	case *tcell.EventMouse:
		return t.convertMouse(e)
	case *tcell.EventKey:
		return t.convertKey(e)
	case *tcell.EventResize:
		return []event.Event{{Type: event.Redraw}}
	default:
		return nil
	}
}

// convertMouse tracks the primary button to turn tcell's stream of mouse
// states into down, move and up events.
func (t *Terminal) convertMouse(e *tcell.EventMouse) []event.Event {
	cx, cy := e.Position()

	t.mu.Lock()
	defer t.mu.Unlock()

	x, y := t.offsetX+cx, t.offsetY+2*cy
	pressed := e.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && !t.down:
		t.down = true
		return []event.Event{{Type: event.PointerDown, X: x, Y: y}}
	case pressed:
		return []event.Event{{Type: event.PointerMove, X: x, Y: y}}
	case t.down:
		t.down = false
		return []event.Event{{Type: event.PointerUp, X: x, Y: y}}
	default:
		return nil
	}
}

func (t *Terminal) convertKey(e *tcell.EventKey) []event.Event {
	key := e.Key()
	r := e.Rune()

	// Some terminals report ctrl chords as a rune with ModCtrl.
	if key == tcell.KeyRune && e.Modifiers()&tcell.ModCtrl != 0 {
		switch unicode.ToLower(r) {
		case 'z':
			key = tcell.KeyCtrlZ
		case 'y':
			key = tcell.KeyCtrlY
		case 's':
			key = tcell.KeyCtrlS
		case 'q':
			key = tcell.KeyCtrlQ
		default:
			return nil
		}
	}

	switch key {
	case tcell.KeyCtrlZ:
		return one(event.Event{Type: event.Undo})
	case tcell.KeyCtrlY:
		return one(event.Event{Type: event.Redo})
	case tcell.KeyCtrlS:
		return one(event.Event{Type: event.Save})
	case tcell.KeyCtrlQ:
		return one(event.Event{Type: event.Quit})
	case tcell.KeyEscape:
		t.mu.Lock()
		t.down = false
		t.mu.Unlock()
		return one(event.Event{Type: event.PointerCancel})
	case tcell.KeyLeft:
		t.Pan(-PanStep, 0)
		return one(event.Event{Type: event.Redraw})
	case tcell.KeyRight:
		t.Pan(PanStep, 0)
		return one(event.Event{Type: event.Redraw})
	case tcell.KeyUp:
		t.Pan(0, -PanStep)
		return one(event.Event{Type: event.Redraw})
	case tcell.KeyDown:
		t.Pan(0, PanStep)
		return one(event.Event{Type: event.Redraw})
	case tcell.KeyRune:
		return convertRune(r)
	default:
		return nil
	}
}

func convertRune(r rune) []event.Event {
	switch {
	case r >= '1' && r <= '8':
		return one(event.Event{Type: event.PickPalette, Index: int(r - '1')})
	case r == '+' || r == '=':
		return one(event.Event{Type: event.AdjustSize, Size: 1})
	case r == '-' || r == '_':
		return one(event.Event{Type: event.AdjustSize, Size: -1})
	case r == 'q':
		return one(event.Event{Type: event.Quit})
	}

	switch r {
	case 'd':
		return one(event.Event{Type: event.SelectTool, Tool: tool.KindBrush})
	case 'e':
		return one(event.Event{Type: event.SelectTool, Tool: tool.KindEraser})
	case 'f':
		return one(event.Event{Type: event.SelectTool, Tool: tool.KindFill})
	}
	return nil
}

func one(ev event.Event) []event.Event {
	return []event.Event{ev}
}
