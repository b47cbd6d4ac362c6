package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/pixelstorm/internal/logging"
)

// Config is the complete pixelstorm configuration.
type Config struct {
	Canvas  CanvasConfig  `toml:"canvas" yaml:"canvas"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Tools   ToolsConfig   `toml:"tools" yaml:"tools"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// CanvasConfig holds settings for new canvases.
type CanvasConfig struct {
	Width        int    `toml:"width" yaml:"width"`
	Height       int    `toml:"height" yaml:"height"`
	Background   string `toml:"background" yaml:"background"`
	MaxDimension int    `toml:"max_dimension" yaml:"max_dimension"`
}

// HistoryConfig bounds the undo history.
type HistoryConfig struct {
	// MaxDepth is the most undo steps kept.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
	// MaxBytes caps the snapshot memory held by history. Zero is unlimited.
	MaxBytes int64 `toml:"max_bytes" yaml:"max_bytes"`
}

// ToolsConfig holds the initial tool settings.
type ToolsConfig struct {
	BrushSize     int      `toml:"brush_size" yaml:"brush_size"`
	EraserSize    int      `toml:"eraser_size" yaml:"eraser_size"`
	MaxSize       int      `toml:"max_size" yaml:"max_size"`
	Color         string   `toml:"color" yaml:"color"`
	FillTolerance float64  `toml:"fill_tolerance" yaml:"fill_tolerance"`
	Palette       []string `toml:"palette" yaml:"palette"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
	// File receives log lines. Empty means stderr.
	File string `toml:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:        800,
			Height:       600,
			Background:   "#ffffff",
			MaxDimension: 4000,
		},
		History: HistoryConfig{
			MaxDepth: 30,
		},
		Tools: ToolsConfig{
			BrushSize:  2,
			EraserSize: 10,
			MaxSize:    64,
			Color:      "#000000",
			Palette: []string{
				"#000000", "#ffffff", "#ff0000", "#00ff00",
				"#0000ff", "#ffff00", "#ff00ff", "#00ffff",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Tools.Palette = slices.Clone(c.Tools.Palette)
	return &out
}

// Format is a configuration file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf returns the syntax implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// DefaultPath returns the user configuration file location.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pixelstorm", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pixelstorm", "config.toml")
}

// Load reads the configuration at path, applies PIXELSTORM_* environment
// overrides and validates the result. A missing file is not an error; the
// defaults are used.
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		cfg, err = decode(data, format)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Path = path
			}
			return nil, err
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte, format Format) (*Config, error) {
	cfg, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, format Format) (*Config, error) {
	cfg := Default()

	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			pe := &ParseError{Path: "<input>", Err: err}
			var de *toml.DecodeError
			if errors.As(err, &de) {
				pe.Line, pe.Column = de.Position()
			}
			return nil, pe
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: "<input>", Err: err}
		}
	default:
		return nil, ErrUnknownFormat
	}
	return cfg, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Canvas.MaxDimension < 1 {
		add("canvas.max_dimension must be positive, got %d", c.Canvas.MaxDimension)
	}
	if c.Canvas.Width < 1 || (c.Canvas.MaxDimension > 0 && c.Canvas.Width > c.Canvas.MaxDimension) {
		add("canvas.width must be in 1..%d, got %d", c.Canvas.MaxDimension, c.Canvas.Width)
	}
	if c.Canvas.Height < 1 || (c.Canvas.MaxDimension > 0 && c.Canvas.Height > c.Canvas.MaxDimension) {
		add("canvas.height must be in 1..%d, got %d", c.Canvas.MaxDimension, c.Canvas.Height)
	}
	if _, err := ParseColor(c.Canvas.Background); err != nil {
		add("canvas.background: %v", err)
	}

	if c.History.MaxDepth < 1 {
		add("history.max_depth must be positive, got %d", c.History.MaxDepth)
	}
	if c.History.MaxBytes < 0 {
		add("history.max_bytes must not be negative, got %d", c.History.MaxBytes)
	}

	if c.Tools.MaxSize < 1 {
		add("tools.max_size must be positive, got %d", c.Tools.MaxSize)
	}
	if c.Tools.BrushSize < 1 || c.Tools.BrushSize > c.Tools.MaxSize {
		add("tools.brush_size must be in 1..%d, got %d", c.Tools.MaxSize, c.Tools.BrushSize)
	}
	if c.Tools.EraserSize < 1 || c.Tools.EraserSize > c.Tools.MaxSize {
		add("tools.eraser_size must be in 1..%d, got %d", c.Tools.MaxSize, c.Tools.EraserSize)
	}
	if _, err := ParseColor(c.Tools.Color); err != nil {
		add("tools.color: %v", err)
	}
	if c.Tools.FillTolerance < 0 || c.Tools.FillTolerance > 100 {
		add("tools.fill_tolerance must be in 0..100, got %g", c.Tools.FillTolerance)
	}
	for i, s := range c.Tools.Palette {
		if _, err := ParseColor(s); err != nil {
			add("tools.palette[%d]: %v", i, err)
		}
	}

	if !logging.ValidLevel(c.Logging.Level) {
		add("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// BackgroundColor returns the parsed canvas background, white if invalid.
func (c *Config) BackgroundColor() color.RGBA {
	return colorOr(c.Canvas.Background, color.RGBA{R: 255, G: 255, B: 255, A: 255})
}

// ToolColor returns the parsed initial paint colour, black if invalid.
func (c *Config) ToolColor() color.RGBA {
	return colorOr(c.Tools.Color, color.RGBA{A: 255})
}

// PaletteColors returns the parsed palette, skipping invalid entries.
func (c *Config) PaletteColors() []color.RGBA {
	out := make([]color.RGBA, 0, len(c.Tools.Palette))
	for _, s := range c.Tools.Palette {
		if col, err := ParseColor(s); err == nil {
			out = append(out, col)
		}
	}
	return out
}

// ParseColor parses a hex colour such as "#ff8000", "ff8000" or "#f80".
// The result is always opaque.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s != "" && s[0] != '#' {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// FormatColor renders an opaque colour as "#rrggbb".
func FormatColor(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

func colorOr(s string, fallback color.RGBA) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}
