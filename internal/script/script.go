// Package script drives an application from Lua.
//
// Scripts run in a sandboxed gopher-lua state with only the base, table,
// string and math libraries. Every drawing function posts the same events
// the terminal does and runs them synchronously, so a script edits the
// canvas with the same undo semantics as a user at the keyboard.
//
//	new(64, 64)
//	color("#ff0000")
//	size(3)
//	stroke(4, 4, 60, 60)
//	tool("fill")
//	down(10, 50) up(10, 50)
//	assert(save("out.png"))
//
// Drawing functions return true on success or nil and an error message,
// so failures can be checked with assert.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/pixelstorm/internal/app"
	"github.com/dshills/pixelstorm/internal/config"
	"github.com/dshills/pixelstorm/internal/event"
	"github.com/dshills/pixelstorm/internal/logging"
	"github.com/dshills/pixelstorm/internal/tool"
)

// ErrClosed is returned when running code on a closed Engine.
var ErrClosed = errors.New("script engine closed")

// Engine runs Lua scripts against one application.
//
// gopher-lua states are not goroutine-safe; the mutex serialises Run calls.
type Engine struct {
	app *app.Application
	log *logging.Logger
	L   *lua.LState

	mu     sync.Mutex
	ctx    context.Context
	closed bool
	quit   bool
}

// New creates an Engine bound to a.
func New(a *app.Application) *Engine {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	e := &Engine{
		app: a,
		log: a.Logger().WithComponent("script"),
		L:   L,
		ctx: context.Background(),
	}
	e.register()
	return e
}

// openSafeLibraries opens the libraries with no file or process access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// The base library can still reach the file system.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// RunFile executes the script at path.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	return e.run(ctx, func() error { return e.L.DoFile(path) })
}

// RunString executes code.
func (e *Engine) RunString(ctx context.Context, code string) error {
	return e.run(ctx, func() error { return e.L.DoString(code) })
}

func (e *Engine) run(ctx context.Context, fn func() error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	e.ctx = ctx
	e.quit = false
	e.L.SetContext(ctx)
	defer func() {
		e.L.RemoveContext()
		e.ctx = context.Background()
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	err = fn()
	if err != nil && e.quit {
		// quit() stops the script by raising; that is not a failure.
		return nil
	}
	return err
}

// Quit reports whether the script called quit().
func (e *Engine) Quit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quit
}

// Close releases the Lua state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.L.Close()
}

func (e *Engine) register() {
	fns := map[string]lua.LGFunction{
		"new":      e.newImage,
		"open":     e.open,
		"save":     e.save,
		"tool":     e.tool,
		"color":    e.color,
		"size":     e.size,
		"down":     e.pointer(event.PointerDown),
		"move":     e.pointer(event.PointerMove),
		"up":       e.pointer(event.PointerUp),
		"cancel":   e.cancel,
		"stroke":   e.stroke,
		"fill":     e.fill,
		"undo":     e.simple(event.Undo),
		"redo":     e.simple(event.Redo),
		"resize":   e.sized(event.Resize),
		"scale":    e.sized(event.Scale),
		"clear":    e.clear,
		"pixel":    e.pixel,
		"width":    e.width,
		"height":   e.height,
		"can_undo": e.canUndo,
		"can_redo": e.canRedo,
		"status":   e.status,
		"quit":     e.quitScript,
		"print":    e.print,
	}
	for name, fn := range fns {
		e.L.SetGlobal(name, e.L.NewFunction(fn))
	}
}

// exec runs ev and pushes the Lua result: true, or nil and the error.
func (e *Engine) exec(L *lua.LState, ev event.Event) int {
	if err := e.app.Execute(e.ctx, ev); err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// new([width, height]) -> ok, err
func (e *Engine) newImage(L *lua.LState) int {
	return e.exec(L, event.Event{Type: event.NewImage, Width: L.OptInt(1, 0), Height: L.OptInt(2, 0)})
}

// open(path) -> ok, err
func (e *Engine) open(L *lua.LState) int {
	return e.exec(L, event.Event{Type: event.Open, Path: L.CheckString(1)})
}

// save([path]) -> ok, err
func (e *Engine) save(L *lua.LState) int {
	return e.exec(L, event.Event{Type: event.Save, Path: L.OptString(1, "")})
}

// tool([name]) -> name | ok, err
func (e *Engine) tool(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LString(e.app.Tools().Current().String()))
		return 1
	}
	k, err := tool.ParseKind(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	return e.exec(L, event.Event{Type: event.SelectTool, Tool: k})
}

// color([hex]) -> hex | ok, err
func (e *Engine) color(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LString(config.FormatColor(e.app.Tools().Color())))
		return 1
	}
	c, err := config.ParseColor(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	return e.exec(L, event.Event{Type: event.SetColor, Color: c})
}

// size([n]) -> n | ok, err
func (e *Engine) size(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LNumber(e.app.Tools().Size()))
		return 1
	}
	return e.exec(L, event.Event{Type: event.SetSize, Size: L.CheckInt(1)})
}

func (e *Engine) pointer(t event.Type) lua.LGFunction {
	return func(L *lua.LState) int {
		return e.exec(L, event.Event{Type: t, X: L.CheckInt(1), Y: L.CheckInt(2)})
	}
}

func (e *Engine) simple(t event.Type) lua.LGFunction {
	return func(L *lua.LState) int {
		return e.exec(L, event.Event{Type: t})
	}
}

func (e *Engine) sized(t event.Type) lua.LGFunction {
	return func(L *lua.LState) int {
		return e.exec(L, event.Event{Type: t, Width: L.CheckInt(1), Height: L.CheckInt(2)})
	}
}

// cancel() -> ok, err
func (e *Engine) cancel(L *lua.LState) int {
	return e.exec(L, event.Event{Type: event.PointerCancel})
}

// stroke(x1, y1, x2, y2, ...) -> ok, err
// Presses at the first point, drags through the rest and releases at the
// last, producing a single undo step.
func (e *Engine) stroke(L *lua.LState) int {
	n := L.GetTop()
	if n < 2 || n%2 != 0 {
		L.RaiseError("stroke: expected pairs of coordinates, got %d arguments", n)
		return 0
	}

	pts := make([][2]int, 0, n/2)
	for i := 1; i < n; i += 2 {
		pts = append(pts, [2]int{L.CheckInt(i), L.CheckInt(i + 1)})
	}

	if r := e.exec(L, event.Event{Type: event.PointerDown, X: pts[0][0], Y: pts[0][1]}); r != 1 {
		return r
	}
	L.Pop(1)
	for _, p := range pts[1 : len(pts)-1] {
		if r := e.exec(L, event.Event{Type: event.PointerMove, X: p[0], Y: p[1]}); r != 1 {
			return r
		}
		L.Pop(1)
	}
	last := pts[len(pts)-1]
	return e.exec(L, event.Event{Type: event.PointerUp, X: last[0], Y: last[1]})
}

// fill(x, y) -> ok, err
// Flood-fills with the current colour and restores the previous tool.
func (e *Engine) fill(L *lua.LState) int {
	x, y := L.CheckInt(1), L.CheckInt(2)

	prev := e.app.Tools().Current()
	defer func() {
		if prev != tool.KindFill {
			_ = e.app.Execute(e.ctx, event.Event{Type: event.SelectTool, Tool: prev})
		}
	}()

	if prev != tool.KindFill {
		if r := e.exec(L, event.Event{Type: event.SelectTool, Tool: tool.KindFill}); r != 1 {
			return r
		}
		L.Pop(1)
	}
	if r := e.exec(L, event.Event{Type: event.PointerDown, X: x, Y: y}); r != 1 {
		return r
	}
	L.Pop(1)
	return e.exec(L, event.Event{Type: event.PointerUp, X: x, Y: y})
}

// clear([hex]) -> ok, err
// Without a colour the canvas is cleared to its background.
func (e *Engine) clear(L *lua.LState) int {
	ev := event.Event{Type: event.Clear}
	if L.GetTop() > 0 {
		c, err := config.ParseColor(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		ev.Color = c
	}
	return e.exec(L, ev)
}

// pixel(x, y) -> hex | nil, err
func (e *Engine) pixel(L *lua.LState) int {
	c, err := e.app.Canvas().At(L.CheckInt(1), L.CheckInt(2))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(config.FormatColor(c)))
	return 1
}

func (e *Engine) width(L *lua.LState) int {
	L.Push(lua.LNumber(e.app.Canvas().Width()))
	return 1
}

func (e *Engine) height(L *lua.LState) int {
	L.Push(lua.LNumber(e.app.Canvas().Height()))
	return 1
}

func (e *Engine) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(e.app.History().CanUndo()))
	return 1
}

func (e *Engine) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(e.app.History().CanRedo()))
	return 1
}

// status() -> string
func (e *Engine) status(L *lua.LState) int {
	L.Push(lua.LString(e.app.Status().String()))
	return 1
}

// quit() stops the script.
func (e *Engine) quitScript(L *lua.LState) int {
	_ = e.app.Execute(e.ctx, event.Event{Type: event.Quit})
	e.quit = true
	L.RaiseError("quit")
	return 0
}

// print(...) writes to the log.
func (e *Engine) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	e.log.Info("%s", strings.Join(parts, "\t"))
	return 0
}
