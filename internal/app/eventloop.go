package app

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/dshills/pixelstorm/internal/event"
	"github.com/dshills/pixelstorm/internal/history"
)

// Execute applies ev and returns the handler's error. Panics are
// recovered, any stroke they interrupted is rolled back, and they come
// back as *RecoveredPanicError. Failures are logged and become the status
// message; ErrQuit is returned untouched.
func (app *Application) Execute(ctx context.Context, ev event.Event) (err error) {
	app.redraw = true

	defer func() {
		if r := recover(); r != nil {
			if app.stroke != nil {
				_ = app.stroke.Cancel()
				app.stroke = nil
			}
			if c := app.history.Active(); c != nil {
				_ = c.Abort()
			}
			err = &RecoveredPanicError{Event: ev.Type.String(), Value: r, Stack: string(debug.Stack())}
		}
		if err != nil && !errors.Is(err, ErrQuit) {
			app.report(ev, err)
		}
	}()

	app.log.Debug("event %s", ev)
	return app.dispatcher.Dispatch(ctx, ev)
}

// Dispatch applies ev, absorbing every failure except ErrQuit.
func (app *Application) Dispatch(ctx context.Context, ev event.Event) error {
	if err := app.Execute(ctx, ev); errors.Is(err, ErrQuit) {
		return ErrQuit
	}
	return nil
}

// report logs a handler failure and surfaces it as the status message.
func (app *Application) report(ev event.Event, err error) {
	var pe *RecoveredPanicError
	switch {
	case errors.As(err, &pe):
		app.log.Error("%v", err)
		app.message = "internal error in " + pe.Event
	case errors.Is(err, history.ErrNothingToUndo), errors.Is(err, history.ErrNothingToRedo):
		app.log.Debug("%s: %v", ev.Type, err)
		app.message = err.Error()
	case errors.Is(err, ErrNoStroke):
		app.log.Debug("%s: %v", ev.Type, err)
	default:
		app.log.Warn("%s: %v", ev.Type, err)
		app.message = err.Error()
	}
}

// Run processes queued events until Quit, ctx is done, or the queue is
// closed. The renderer is called whenever the queue drains.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.render()

	for {
		ev, err := app.queue.Next(ctx)
		if err != nil {
			if errors.Is(err, event.ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if err := app.Dispatch(ctx, ev); errors.Is(err, ErrQuit) {
			app.log.Info("quit")
			return nil
		}

		if app.queue.Len() == 0 {
			app.render()
		}
	}
}

// render draws the state if anything changed since the last draw.
func (app *Application) render() {
	if app.renderer == nil {
		app.canvas.ClearDirty()
		app.redraw = false
		return
	}
	if !app.redraw && !app.canvas.Dirty() {
		return
	}
	if err := app.renderer.Render(app.canvas, app.Status()); err != nil {
		app.log.WithComponent("renderer").Error("render: %v", err)
	}
	app.canvas.ClearDirty()
	app.redraw = false
}
