package app

import (
	"context"
	"fmt"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/config"
	"github.com/dshills/pixelstorm/internal/event"
	"github.com/dshills/pixelstorm/internal/history"
	"github.com/dshills/pixelstorm/internal/imageio"
	"github.com/dshills/pixelstorm/internal/logging"
	"github.com/dshills/pixelstorm/internal/tool"
)

// registerHandlers wires every event type to its handler.
func (app *Application) registerHandlers() {
	handlers := map[event.Type]func(context.Context, event.Event) error{
		event.PointerDown:   app.handlePointerDown,
		event.PointerMove:   app.handlePointerMove,
		event.PointerUp:     app.handlePointerUp,
		event.PointerCancel: app.handlePointerCancel,
		event.SelectTool:    app.handleSelectTool,
		event.SetColor:      app.handleSetColor,
		event.PickPalette:   app.handlePickPalette,
		event.SetSize:       app.handleSetSize,
		event.AdjustSize:    app.handleAdjustSize,
		event.Undo:          app.handleUndo,
		event.Redo:          app.handleRedo,
		event.NewImage:      app.handleNewImage,
		event.Open:          app.handleOpen,
		event.Save:          app.handleSave,
		event.Resize:        app.handleResize,
		event.Scale:         app.handleScale,
		event.Clear:         app.handleClear,
		event.ConfigReload:  app.handleConfigReload,
		event.Redraw:        app.handleRedraw,
		event.Quit:          app.handleQuit,
	}
	for t, h := range handlers {
		app.dispatcher.HandleFunc(t, h)
	}
}

// endStroke commits the active stroke, if any.
func (app *Application) endStroke() {
	if app.stroke == nil {
		return
	}
	if app.stroke.Changed() {
		app.doc.Modified = true
	}
	if err := app.stroke.End(); err != nil {
		app.log.WithComponent("tool").Warn("end stroke: %v", err)
	}
	app.stroke = nil
}

func (app *Application) handlePointerDown(_ context.Context, ev event.Event) error {
	app.endStroke()

	t := app.tools.Tool()
	s, err := tool.Begin(app.history, app.canvas, t, ev.Point())
	if err != nil {
		return strokeError("press", ev, t.Kind(), err)
	}
	app.stroke = s
	app.message = ""
	return nil
}

func (app *Application) handlePointerMove(_ context.Context, ev event.Event) error {
	if app.stroke == nil {
		// Hover.
		return nil
	}
	if err := app.stroke.Move(ev.Point()); err != nil {
		kind := app.stroke.Tool().Kind()
		app.stroke = nil
		return strokeError("drag", ev, kind, err)
	}
	return nil
}

func (app *Application) handlePointerUp(_ context.Context, ev event.Event) error {
	if app.stroke == nil {
		return ErrNoStroke
	}
	s := app.stroke
	app.stroke = nil

	if err := s.Move(ev.Point()); err != nil {
		return strokeError("release", ev, s.Tool().Kind(), err)
	}
	changed := s.Changed()
	if err := s.End(); err != nil {
		return strokeError("release", ev, s.Tool().Kind(), err)
	}
	if !changed {
		app.log.Debug("stroke %s painted nothing, dropped", s.Tool().Kind())
		return nil
	}
	app.doc.Modified = true
	app.log.Debug("stroke %s committed after %d moves", s.Tool().Kind(), s.Moves())
	return nil
}

// strokeError names the pointer step, position and tool of a failed stroke.
func strokeError(step string, ev event.Event, kind tool.Kind, err error) error {
	return NewOperationError(step, fmt.Sprintf("(%d,%d)", ev.X, ev.Y), err).
		WithContext(kind.String())
}

func (app *Application) handlePointerCancel(context.Context, event.Event) error {
	if app.stroke == nil {
		return ErrNoStroke
	}
	s := app.stroke
	app.stroke = nil
	if err := s.Cancel(); err != nil {
		return err
	}
	app.message = "stroke cancelled"
	return nil
}

func (app *Application) handleSelectTool(_ context.Context, ev event.Event) error {
	app.endStroke()
	if err := app.tools.Select(ev.Tool); err != nil {
		return err
	}
	app.message = ev.Tool.String()
	return nil
}

func (app *Application) handleSetColor(_ context.Context, ev event.Event) error {
	app.tools.SetColor(ev.Color)
	app.message = "color " + config.FormatColor(app.tools.Color())
	return nil
}

func (app *Application) handlePickPalette(_ context.Context, ev event.Event) error {
	if ev.Index < 0 || ev.Index >= len(app.palette) {
		return fmt.Errorf("%w: %d", ErrPaletteIndex, ev.Index+1)
	}
	app.tools.SetColor(app.palette[ev.Index])
	app.message = "color " + config.FormatColor(app.tools.Color())
	return nil
}

func (app *Application) handleSetSize(_ context.Context, ev event.Event) error {
	if err := app.tools.SetSize(ev.Size); err != nil {
		return err
	}
	app.message = fmt.Sprintf("%s size %d", app.tools.Current(), app.tools.Size())
	return nil
}

func (app *Application) handleAdjustSize(_ context.Context, ev event.Event) error {
	n := app.tools.AdjustSize(ev.Size)
	app.message = fmt.Sprintf("%s size %d", app.tools.Current(), n)
	return nil
}

func (app *Application) handleUndo(context.Context, event.Event) error {
	app.endStroke()
	info, _ := app.history.PeekUndo()
	if !app.history.Undo() {
		return history.ErrNothingToUndo
	}
	app.doc.Modified = true
	app.message = "undo " + info.Op.String()
	return nil
}

func (app *Application) handleRedo(context.Context, event.Event) error {
	app.endStroke()
	info, _ := app.history.PeekRedo()
	if !app.history.Redo() {
		return history.ErrNothingToRedo
	}
	app.doc.Modified = true
	app.message = "redo " + info.Op.String()
	return nil
}

func (app *Application) handleNewImage(_ context.Context, ev event.Event) error {
	width, height := ev.Width, ev.Height
	if width == 0 && height == 0 {
		width, height = app.config.Canvas.Width, app.config.Canvas.Height
	}
	cv, err := app.newCanvas(width, height)
	if err != nil {
		return NewOperationError("new", fmt.Sprintf("%dx%d", width, height), err)
	}
	app.replaceCanvas(cv, Document{})
	app.message = fmt.Sprintf("new %dx%d image", width, height)
	return nil
}

func (app *Application) handleOpen(_ context.Context, ev event.Event) error {
	if ev.Path == "" {
		return NewOperationError("open", "", ErrNoFilePath)
	}
	cv, format, err := app.loadImage(ev.Path)
	if err != nil {
		return err
	}
	app.replaceCanvas(cv, Document{Path: ev.Path, Format: format})
	app.message = "opened " + app.doc.Name()
	app.log.Info("opened %s (%s, %dx%d)", ev.Path, format, cv.Width(), cv.Height())
	return nil
}

func (app *Application) handleSave(_ context.Context, ev event.Event) error {
	app.endStroke()

	path := ev.Path
	if path == "" {
		path = app.doc.Path
	}
	if path == "" {
		return NewOperationError("save", "", ErrNoFilePath)
	}
	if err := imageio.Save(app.canvas.Image(), path); err != nil {
		return NewOperationError("save", path, err)
	}

	format, _ := imageio.FormatFromPath(path)
	app.doc = Document{Path: path, Format: format}
	app.message = "saved " + app.doc.Name()
	app.log.Info("saved %s", path)
	return nil
}

func (app *Application) handleResize(_ context.Context, ev event.Event) error {
	return app.transform(history.OpResize, "resize", ev.Width, ev.Height, app.canvas.Resize)
}

func (app *Application) handleScale(_ context.Context, ev event.Event) error {
	return app.transform(history.OpScale, "scale", ev.Width, ev.Height, app.canvas.Scale)
}

// transform runs a whole-canvas size change as one undoable step.
func (app *Application) transform(op history.Op, name string, width, height int, fn func(w, h int) error) error {
	app.endStroke()
	err := app.history.Record(op, func() error {
		return fn(width, height)
	})
	if err != nil {
		return NewOperationError(name, fmt.Sprintf("%dx%d", width, height), err)
	}
	app.doc.Modified = true
	app.message = fmt.Sprintf("%s to %dx%d", name, width, height)
	return nil
}

func (app *Application) handleClear(_ context.Context, ev event.Event) error {
	app.endStroke()
	col := ev.Color
	if col.A == 0 {
		col = app.canvas.Background()
	}
	if err := app.history.Record(history.OpClear, func() error {
		return app.canvas.Apply(canvas.Clear(col))
	}); err != nil {
		return NewOperationError("clear", "", err)
	}
	app.doc.Modified = true
	app.message = "cleared"
	return nil
}

func (app *Application) handleConfigReload(_ context.Context, ev event.Event) error {
	if ev.Err != nil {
		return &ComponentError{Component: "config", Action: "reload", Err: ev.Err}
	}
	if ev.Config == nil {
		return nil
	}
	app.applyConfig(ev.Config)
	app.message = "config reloaded"
	return nil
}

// applyConfig adopts the settings that can change mid-session. Canvas
// size and background apply to the next new image only.
func (app *Application) applyConfig(cfg *config.Config) {
	app.config = cfg.Clone()
	app.history.SetMaxEntries(cfg.History.MaxDepth)
	app.history.SetMaxBytes(cfg.History.MaxBytes)
	app.tools.SetMaxSize(cfg.Tools.MaxSize)
	app.tools.SetTolerance(cfg.Tools.FillTolerance)
	app.palette = cfg.PaletteColors()
	level := cfg.Logging.Level
	if app.logLevel != "" {
		level = app.logLevel
	}
	app.log.SetLevel(logging.ParseLevel(level))
	app.log.WithComponent("config").Info("applied: history depth %d, max size %d",
		cfg.History.MaxDepth, cfg.Tools.MaxSize)
}

// handleRedraw does nothing; Execute already schedules the repaint.
func (app *Application) handleRedraw(context.Context, event.Event) error {
	return nil
}

func (app *Application) handleQuit(context.Context, event.Event) error {
	app.endStroke()
	return ErrQuit
}
