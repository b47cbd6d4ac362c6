// Package event carries user and system input to the application's main loop.
//
// Front-ends translate their native input into Events and Post them to a
// Queue. The main loop takes events off the queue one at a time and hands
// each to a Dispatcher, which routes it to the handler registered for its
// Type. Only the main loop touches application state; every other goroutine
// communicates with it through Post.
//
//	q := event.NewQueue()
//	d := event.NewDispatcher()
//	d.HandleFunc(event.Undo, func(ctx context.Context, ev event.Event) error {
//	    return doUndo()
//	})
//
//	go poller(q) // calls q.Post
//
//	for {
//	    ev, err := q.Next(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    _ = d.Dispatch(ctx, ev)
//	}
package event

import (
	"fmt"
	"image"
	"image/color"

	"github.com/dshills/pixelstorm/internal/config"
	"github.com/dshills/pixelstorm/internal/tool"
)

// Type identifies what an Event asks for.
type Type uint8

const (
	// None is the zero Type; it is never dispatched.
	None Type = iota

	// PointerDown starts a stroke at (X, Y).
	PointerDown
	// PointerMove extends the active stroke to (X, Y).
	PointerMove
	// PointerUp ends the active stroke.
	PointerUp
	// PointerCancel abandons the active stroke, undoing its paint.
	PointerCancel

	// SelectTool switches to Tool.
	SelectTool
	// SetColor sets the paint colour to Color.
	SetColor
	// PickPalette sets the paint colour to palette entry Index.
	PickPalette
	// SetSize sets the current tool size to Size.
	SetSize
	// AdjustSize changes the current tool size by Size.
	AdjustSize

	// Undo reverts the last change.
	Undo
	// Redo reapplies the last undone change.
	Redo

	// NewImage replaces the canvas with a blank Width x Height image.
	NewImage
	// Open loads the image at Path.
	Open
	// Save writes the image to Path, or to the current file when Path is empty.
	Save

	// Resize changes the canvas to Width x Height without scaling.
	Resize
	// Scale resamples the canvas to Width x Height.
	Scale
	// Clear fills the canvas with Color, or the background when Color is zero.
	Clear

	// ConfigReload applies Config, or reports Err when reloading failed.
	ConfigReload

	// Redraw asks for a repaint without changing any state.
	Redraw

	// Quit ends the main loop.
	Quit
)

var typeNames = [...]string{
	None:          "none",
	PointerDown:   "pointer.down",
	PointerMove:   "pointer.move",
	PointerUp:     "pointer.up",
	PointerCancel: "pointer.cancel",
	SelectTool:    "tool.select",
	SetColor:      "tool.color",
	PickPalette:   "tool.palette",
	SetSize:       "tool.size",
	AdjustSize:    "tool.adjust_size",
	Undo:          "history.undo",
	Redo:          "history.redo",
	NewImage:      "file.new",
	Open:          "file.open",
	Save:          "file.save",
	Resize:        "canvas.resize",
	Scale:         "canvas.scale",
	Clear:         "canvas.clear",
	ConfigReload:  "config.reload",
	Redraw:        "view.redraw",
	Quit:          "app.quit",
}

// String returns the dotted name of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Event is a single request for the main loop.
// Only the fields relevant to Type are read.
type Event struct {
	Type Type

	// X and Y are canvas coordinates for pointer events.
	X, Y int

	// Width and Height size NewImage, Resize and Scale.
	Width, Height int

	// Path names the file for Open and Save.
	Path string

	Tool  tool.Kind
	Color color.RGBA
	Size  int
	Index int

	// Config is the reloaded configuration for ConfigReload.
	Config *config.Config

	// Err reports a failure detected off the main loop.
	Err error
}

// Point returns the pointer position.
func (e Event) Point() image.Point {
	return image.Pt(e.X, e.Y)
}

// String returns a short description for logs.
func (e Event) String() string {
	switch e.Type {
	case PointerDown, PointerMove:
		return fmt.Sprintf("%s(%d,%d)", e.Type, e.X, e.Y)
	case NewImage, Resize, Scale:
		return fmt.Sprintf("%s(%dx%d)", e.Type, e.Width, e.Height)
	case Open, Save:
		return fmt.Sprintf("%s(%q)", e.Type, e.Path)
	case SelectTool:
		return fmt.Sprintf("%s(%s)", e.Type, e.Tool)
	case SetSize, AdjustSize:
		return fmt.Sprintf("%s(%d)", e.Type, e.Size)
	case PickPalette:
		return fmt.Sprintf("%s(%d)", e.Type, e.Index)
	default:
		return e.Type.String()
	}
}
