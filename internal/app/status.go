package app

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/dshills/pixelstorm/internal/config"
	"github.com/dshills/pixelstorm/internal/tool"
)

// Status is a read-only summary of the session for front-ends.
type Status struct {
	Message   string
	Document  Document
	Tool      tool.Kind
	Size      int
	Color     color.RGBA
	Width     int
	Height    int
	UndoCount int
	RedoCount int
	Stroking  bool
}

// Status returns the current session summary.
func (app *Application) Status() Status {
	return Status{
		Message:   app.message,
		Document:  app.doc,
		Tool:      app.tools.Current(),
		Size:      app.tools.Size(),
		Color:     app.tools.Color(),
		Width:     app.canvas.Width(),
		Height:    app.canvas.Height(),
		UndoCount: app.history.UndoCount(),
		RedoCount: app.history.RedoCount(),
		Stroking:  app.stroke != nil,
	}
}

// String renders the status as a single line.
func (s Status) String() string {
	var b strings.Builder
	b.WriteString(s.Document.Name())
	if s.Document.Modified {
		b.WriteByte('*')
	}
	fmt.Fprintf(&b, " %dx%d | %s", s.Width, s.Height, s.Tool)
	if s.Tool != tool.KindFill {
		fmt.Fprintf(&b, " %d", s.Size)
	}
	if s.Tool != tool.KindEraser {
		fmt.Fprintf(&b, " %s", config.FormatColor(s.Color))
	}
	fmt.Fprintf(&b, " | undo %d redo %d", s.UndoCount, s.RedoCount)
	if s.Message != "" {
		b.WriteString(" | ")
		b.WriteString(s.Message)
	}
	return b.String()
}
