package event

import "context"

// Handler processes one event on the main loop.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Dispatcher routes events to the handler registered for their Type.
// It is not safe for concurrent use; register handlers before the loop
// starts and dispatch only from the loop.
type Dispatcher struct {
	handlers map[Type]Handler
}

// NewDispatcher creates a dispatcher with no handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Type]Handler)}
}

// Handle registers h for t, replacing any previous handler.
func (d *Dispatcher) Handle(t Type, h Handler) {
	if h == nil {
		delete(d.handlers, t)
		return
	}
	d.handlers[t] = h
}

// HandleFunc registers f for t.
func (d *Dispatcher) HandleFunc(t Type, f func(ctx context.Context, ev Event) error) {
	d.Handle(t, HandlerFunc(f))
}

// Handles reports whether a handler is registered for t.
func (d *Dispatcher) Handles(t Type) bool {
	_, ok := d.handlers[t]
	return ok
}

// Dispatch runs the handler for ev.Type. Events with no handler are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	h, ok := d.handlers[ev.Type]
	if !ok {
		return nil
	}
	return h.Handle(ctx, ev)
}
