// Package app provides the main application structure and coordination
// for pixelstorm. It owns the canvas, its undo history and the tool
// settings, and applies events to them on a single goroutine.
package app

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/config"
	"github.com/dshills/pixelstorm/internal/event"
	"github.com/dshills/pixelstorm/internal/history"
	"github.com/dshills/pixelstorm/internal/imageio"
	"github.com/dshills/pixelstorm/internal/logging"
	"github.com/dshills/pixelstorm/internal/tool"
)

// Renderer draws the application state. It is called from the main loop
// only, after the queue drains.
type Renderer interface {
	Render(cv *canvas.Canvas, st Status) error
}

// Application is the explicit context for one editing session.
// It is not safe for concurrent use: all access other than Post happens
// on the goroutine running Run, or in the caller of Execute.
type Application struct {
	config     *config.Config
	configPath string
	log        *logging.Logger
	logLevel   string
	session    string

	canvas  *canvas.Canvas
	history *history.History
	tools   *tool.Box
	palette []color.RGBA
	stroke  *tool.Stroke
	doc     Document
	message string

	queue      *event.Queue
	dispatcher *event.Dispatcher
	renderer   Renderer
	watcher    *config.Watcher

	redraw  bool
	running atomic.Bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses the built-in defaults.
	ConfigPath string

	// Config overrides loading from ConfigPath.
	Config *config.Config

	// WatchConfig reloads ConfigPath when it changes on disk.
	WatchConfig bool

	// Files are images to open on startup; the first one is opened.
	Files []string

	// Width and Height override the configured size of a new canvas.
	Width, Height int

	// Logger receives log output. Nil discards it.
	Logger *logging.Logger

	// Renderer draws the canvas. Nil runs headless.
	Renderer Renderer

	// LogLevel, when set, wins over the configured level, including
	// after a config reload.
	LogLevel string
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
		if opts.ConfigPath != "" {
			loaded, err := config.Load(opts.ConfigPath)
			if err != nil {
				return nil, NewOperationError("load config", opts.ConfigPath, err)
			}
			cfg = loaded
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logging.Null()
	}
	session := uuid.NewString()

	app := &Application{
		config:     cfg,
		configPath: opts.ConfigPath,
		log:        log.WithField("session", session),
		logLevel:   opts.LogLevel,
		session:    session,
		queue:      event.NewQueue(),
		dispatcher: event.NewDispatcher(),
		renderer:   opts.Renderer,
		redraw:     true,
	}

	app.tools = tool.NewBox(
		tool.WithColor(cfg.ToolColor()),
		tool.WithMaxSize(cfg.Tools.MaxSize),
		tool.WithSizes(cfg.Tools.BrushSize, cfg.Tools.EraserSize),
		tool.WithTolerance(cfg.Tools.FillTolerance),
	)
	app.palette = cfg.PaletteColors()

	if err := app.bootstrapCanvas(opts); err != nil {
		return nil, err
	}
	app.history = history.New(app.canvas,
		history.WithMaxEntries(cfg.History.MaxDepth),
		history.WithMaxBytes(cfg.History.MaxBytes),
	)

	app.registerHandlers()

	if opts.WatchConfig && opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath, func(cfg *config.Config, err error) {
			app.Post(event.Event{Type: event.ConfigReload, Config: cfg, Err: err})
		})
		if err != nil {
			app.log.WithComponent("config").Warn("config watch disabled: %v", err)
		} else {
			app.watcher = w
		}
	}

	app.log.Info("session started: canvas %dx%d, history depth %d",
		app.canvas.Width(), app.canvas.Height(), app.history.MaxEntries())
	return app, nil
}

// bootstrapCanvas opens the first startup file or creates a blank canvas.
// A named file that does not exist yet becomes a blank canvas saved there.
func (app *Application) bootstrapCanvas(opts Options) error {
	if len(opts.Files) > 0 {
		path := opts.Files[0]
		cv, format, err := app.loadImage(path)
		switch {
		case err == nil:
			app.canvas = cv
			app.doc = Document{Path: path, Format: format}
			app.message = fmt.Sprintf("opened %s", app.doc.Name())
			return nil
		case errors.Is(err, os.ErrNotExist):
			app.doc = Document{Path: path}
			app.message = fmt.Sprintf("new file %s", app.doc.Name())
		default:
			return err
		}
	}

	width, height := app.config.Canvas.Width, app.config.Canvas.Height
	if opts.Width > 0 {
		width = opts.Width
	}
	if opts.Height > 0 {
		height = opts.Height
	}
	cv, err := app.newCanvas(width, height)
	if err != nil {
		return NewOperationError("new canvas", fmt.Sprintf("%dx%d", width, height), err)
	}
	app.canvas = cv
	return nil
}

func (app *Application) newCanvas(width, height int) (*canvas.Canvas, error) {
	return canvas.New(width, height, app.config.BackgroundColor(),
		canvas.WithMaxDimension(app.config.Canvas.MaxDimension))
}

func (app *Application) loadImage(path string) (*canvas.Canvas, imageio.Format, error) {
	img, format, err := imageio.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, format, err
		}
		return nil, format, NewOperationError("open", path, err)
	}
	cv, err := canvas.FromImage(img, app.config.BackgroundColor(),
		canvas.WithMaxDimension(app.config.Canvas.MaxDimension))
	if err != nil {
		return nil, format, NewOperationError("open", path, err)
	}
	return cv, format, nil
}

// replaceCanvas swaps in a new canvas and starts a fresh history for it.
func (app *Application) replaceCanvas(cv *canvas.Canvas, doc Document) {
	app.endStroke()
	app.canvas = cv
	app.history.Reset(cv)
	app.doc = doc
	app.canvas.MarkDirty(cv.Bounds())
}

// Post queues ev for the main loop. It is safe to call from any goroutine.
func (app *Application) Post(ev event.Event) bool {
	return app.queue.Post(ev)
}

// Close stops the config watcher and the event queue.
func (app *Application) Close() error {
	app.queue.Close()
	if app.watcher != nil {
		return app.watcher.Close()
	}
	return nil
}

// Canvas returns the current canvas.
func (app *Application) Canvas() *canvas.Canvas { return app.canvas }

// History returns the undo history.
func (app *Application) History() *history.History { return app.history }

// Tools returns the tool settings.
func (app *Application) Tools() *tool.Box { return app.tools }

// Palette returns the configured palette colours.
func (app *Application) Palette() []color.RGBA { return app.palette }

// Config returns the active configuration.
func (app *Application) Config() *config.Config { return app.config }

// Logger returns the session logger.
func (app *Application) Logger() *logging.Logger { return app.log }

// Session returns the session identifier.
func (app *Application) Session() string { return app.session }

// Document returns the file state of the canvas.
func (app *Application) Document() Document { return app.doc }

// Message returns the latest status message.
func (app *Application) Message() string { return app.message }

// Stroking reports whether a pointer stroke is in progress.
func (app *Application) Stroking() bool { return app.stroke != nil }

// IsRunning returns true while Run is active.
func (app *Application) IsRunning() bool { return app.running.Load() }
