// Package main is the entry point for the pixelstorm paint program.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pixelstorm/internal/app"
	"github.com/dshills/pixelstorm/internal/config"
	"github.com/dshills/pixelstorm/internal/logging"
	"github.com/dshills/pixelstorm/internal/script"
	"github.com/dshills/pixelstorm/internal/terminal"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	logLevel   string
	logFile    string
	debug      bool
	script     string
	width      int
	height     int
	noWatch    bool
	files      []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	headless := opts.script != ""
	log, closeLog, err := newLogger(cfg, opts, headless)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if headless {
		return runScript(ctx, cfg, log, opts)
	}
	return runTerminal(ctx, cfg, log, opts)
}

func runScript(ctx context.Context, cfg *config.Config, log *logging.Logger, opts options) int {
	application, err := app.New(app.Options{
		ConfigPath: opts.configPath,
		Config:     cfg,
		Files:      opts.files,
		Width:      opts.width,
		Height:     opts.height,
		Logger:     log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	engine := script.New(application)
	defer engine.Close()

	if err := engine.RunFile(ctx, opts.script); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runTerminal(ctx context.Context, cfg *config.Config, log *logging.Logger, opts options) int {
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	term := terminal.New(screen)

	application, err := app.New(app.Options{
		ConfigPath:  opts.configPath,
		Config:      cfg,
		WatchConfig: !opts.noWatch,
		Files:       opts.files,
		Width:       opts.width,
		Height:      opts.height,
		Logger:      log,
		Renderer:    term,
		LogLevel:    opts.cliLevel(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	if err := term.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer term.Fini()

	go term.Poll(ctx, application)

	if err := application.Run(ctx); err != nil && !errors.Is(err, app.ErrQuit) {
		term.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newLogger builds the session logger. The terminal owns stdout and
// stderr, so interactive sessions only log when a file is configured.
func newLogger(cfg *config.Config, opts options, headless bool) (*logging.Logger, func(), error) {
	level := cfg.Logging.Level
	if l := opts.cliLevel(); l != "" {
		level = l
	}

	path := cfg.Logging.File
	if opts.logFile != "" {
		path = opts.logFile
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case path != "":
		f, err := logging.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() { _ = f.Close() }
	case !headless:
		return logging.Null(), closeFn, nil
	}

	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(level)
	lc.Output = out
	return logging.New(lc), closeFn, nil
}

// cliLevel returns the log level forced on the command line, if any.
func (o options) cliLevel() string {
	if o.debug {
		return "debug"
	}
	return o.logLevel
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write log output to this file")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.debug, "d", false, "Enable debug logging (shorthand)")
	flag.StringVar(&opts.script, "script", "", "Run a Lua script headlessly and exit")
	flag.StringVar(&opts.script, "s", "", "Run a Lua script headlessly and exit (shorthand)")
	flag.IntVar(&opts.width, "width", 0, "Width of a new canvas (overrides config)")
	flag.IntVar(&opts.height, "height", 0, "Height of a new canvas (overrides config)")
	flag.BoolVar(&opts.noWatch, "no-watch", false, "Do not reload the configuration file when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Pixelstorm - terminal raster paint program\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pixelstorm [options] [image]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  d e f        brush, eraser, fill\n")
		fmt.Fprintf(os.Stderr, "  1-8          palette colour\n")
		fmt.Fprintf(os.Stderr, "  + -          tool size\n")
		fmt.Fprintf(os.Stderr, "  arrows       pan\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-Z/Y     undo, redo\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-S       save\n")
		fmt.Fprintf(os.Stderr, "  Esc          cancel stroke\n")
		fmt.Fprintf(os.Stderr, "  q, Ctrl-Q    quit\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		for _, name := range config.EnvNames() {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pixelstorm                      Blank canvas\n")
		fmt.Fprintf(os.Stderr, "  pixelstorm cat.png              Open an image\n")
		fmt.Fprintf(os.Stderr, "  pixelstorm -s draw.lua out.png  Run a script\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Pixelstorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.logLevel != "" && !logging.ValidLevel(opts.logLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}
	if opts.width < 0 || opts.height < 0 {
		fmt.Fprintf(os.Stderr, "Error: canvas size must be positive\n")
		os.Exit(1)
	}

	opts.files = flag.Args()
	return opts
}
