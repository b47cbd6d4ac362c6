package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 600 {
		t.Errorf("default canvas = %dx%d, want 800x600", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.History.MaxDepth != 30 {
		t.Errorf("default max_depth = %d, want 30", cfg.History.MaxDepth)
	}
	if len(cfg.PaletteColors()) != 8 {
		t.Errorf("default palette has %d colours, want 8", len(cfg.PaletteColors()))
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Canvas.Width != Default().Canvas.Width {
		t.Error("missing file did not yield defaults")
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[canvas]
width = 64
background = "#102030"

[history]
max_depth = 5

[tools]
palette = ["#ff0000", "#00f"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Canvas.Width != 64 {
		t.Errorf("width = %d, want 64", cfg.Canvas.Width)
	}
	if cfg.Canvas.Height != 600 {
		t.Errorf("height = %d, want default 600", cfg.Canvas.Height)
	}
	if cfg.History.MaxDepth != 5 {
		t.Errorf("max_depth = %d, want 5", cfg.History.MaxDepth)
	}
	if got := cfg.BackgroundColor(); got != (color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}) {
		t.Errorf("background = %v", got)
	}
	palette := cfg.PaletteColors()
	if len(palette) != 2 || palette[1] != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("palette = %v", palette)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
canvas:
  height: 32
tools:
  brush_size: 4
  color: "#00ff00"
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Canvas.Height != 32 || cfg.Canvas.Width != 800 {
		t.Errorf("canvas = %dx%d, want 800x32", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Tools.BrushSize != 4 {
		t.Errorf("brush_size = %d, want 4", cfg.Tools.BrushSize)
	}
	if cfg.ToolColor() != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("tool colour = %v", cfg.ToolColor())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "")
	if _, err := Load(path); err != nil {
		t.Errorf("empty YAML err = %v", err)
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	if _, err := Load("settings.ini"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Load(.ini) err = %v, want ErrUnknownFormat", err)
	}
}

func TestLoadParseError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.toml", "[canvas]\nwidth = \n")

	_, err := Load(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load err = %v, want ParseError", err)
	}
	if pe.Path != path {
		t.Errorf("ParseError.Path = %q, want %q", pe.Path, path)
	}
	if pe.Line != 2 {
		t.Errorf("ParseError.Line = %d, want 2", pe.Line)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	tomlPath := writeFile(t, dir, "a.toml", "[canvas]\nwdith = 5\n")
	yamlPath := writeFile(t, dir, "a.yaml", "canvas:\n  wdith: 5\n")

	for _, path := range []string{tomlPath, yamlPath} {
		var pe *ParseError
		if _, err := Load(path); !errors.As(err, &pe) {
			t.Errorf("Load(%s) err = %v, want ParseError", filepath.Base(path), err)
		}
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Canvas.Width = 0
	cfg.Canvas.Background = "white-ish"
	cfg.History.MaxDepth = 0
	cfg.Tools.BrushSize = 1000
	cfg.Tools.FillTolerance = 101
	cfg.Tools.Palette = []string{"#000000", "#12345"}
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate err = %v, want ErrInvalidConfig", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Validate err = %T, want *ValidationError", err)
	}
	if len(ve.Problems) != 7 {
		t.Errorf("got %d problems, want 7: %v", len(ve.Problems), ve.Problems)
	}
	for _, want := range []string{"canvas.width", "canvas.background", "history.max_depth", "tools.brush_size", "tools.fill_tolerance", "tools.palette[1]", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestLoadInvalidValues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[canvas]\nwidth = 5000\n")
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load err = %v, want ErrInvalidConfig", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff8000", color.RGBA{R: 255, G: 128, A: 255}, false},
		{"FF8000", color.RGBA{R: 255, G: 128, A: 255}, false},
		{"#fff", color.RGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{" #000000 ", color.RGBA{A: 255}, false},
		{"", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColor) {
					t.Errorf("ParseColor(%q) err = %v, want ErrInvalidColor", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseColor(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestFormatColor(t *testing.T) {
	c := color.RGBA{R: 0x12, G: 0xab, B: 0xff, A: 255}
	if got := FormatColor(c); got != "#12abff" {
		t.Errorf("FormatColor = %q, want #12abff", got)
	}
	back, err := ParseColor(FormatColor(c))
	if err != nil || back != c {
		t.Errorf("round trip = %v, %v", back, err)
	}
}

func TestClone(t *testing.T) {
	a := Default()
	b := a.Clone()
	b.Tools.Palette[0] = "#123456"
	if a.Tools.Palette[0] == "#123456" {
		t.Error("Clone shares the palette slice")
	}
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != filepath.Join("/tmp/xdg", "pixelstorm", "config.toml") {
		t.Errorf("DefaultPath() = %q", got)
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "[history]\nmax_depth = 3\n")

	got := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config, err error) {
		if err == nil {
			got <- cfg
		}
	}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	writeFile(t, dir, "config.toml", "[history]\nmax_depth = 7\n")

	select {
	case cfg := <-got:
		if cfg.History.MaxDepth != 7 {
			t.Errorf("reloaded max_depth = %d, want 7", cfg.History.MaxDepth)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload within 5s")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "")

	called := make(chan struct{}, 1)
	w, err := NewWatcher(path, func(*Config, error) {
		select {
		case called <- struct{}{}:
		default:
		}
	}, WithDebounce(5*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	writeFile(t, dir, "other.toml", "x = 1\n")

	select {
	case <-called:
		t.Error("reload fired for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PIXELSTORM_CANVAS_WIDTH":         "320",
		"PIXELSTORM_HISTORY_MAX_BYTES":    "1048576",
		"PIXELSTORM_TOOLS_FILL_TOLERANCE": "12.5",
		"PIXELSTORM_TOOLS_PALETTE":        "#000, #fff ,",
		"PIXELSTORM_LOGGING_LEVEL":        "debug",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := ApplyEnv(cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Canvas.Width != 320 {
		t.Errorf("width = %d, want 320", cfg.Canvas.Width)
	}
	if cfg.Canvas.Height != 600 {
		t.Errorf("height = %d, want untouched 600", cfg.Canvas.Height)
	}
	if cfg.History.MaxBytes != 1<<20 {
		t.Errorf("max_bytes = %d", cfg.History.MaxBytes)
	}
	if cfg.Tools.FillTolerance != 12.5 {
		t.Errorf("fill_tolerance = %g", cfg.Tools.FillTolerance)
	}
	if len(cfg.Tools.Palette) != 2 || cfg.Tools.Palette[1] != "#fff" {
		t.Errorf("palette = %v", cfg.Tools.Palette)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "PIXELSTORM_HISTORY_MAX_DEPTH" {
			return "lots", true
		}
		return "", false
	}
	err := ApplyEnv(Default(), lookup)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if !strings.Contains(err.Error(), "PIXELSTORM_HISTORY_MAX_DEPTH") {
		t.Errorf("error does not name the variable: %v", err)
	}
}

func TestLoadAppliesEnvOverFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[canvas]\nwidth = 100\nheight = 50\n")
	t.Setenv("PIXELSTORM_CANVAS_HEIGHT", "75")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Canvas.Width != 100 || cfg.Canvas.Height != 75 {
		t.Errorf("canvas = %dx%d, want 100x75", cfg.Canvas.Width, cfg.Canvas.Height)
	}
}

func TestLoadValidatesEnv(t *testing.T) {
	t.Setenv("PIXELSTORM_TOOLS_COLOR", "purple")
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestEnvNames(t *testing.T) {
	names := EnvNames()
	if len(names) == 0 || !strings.HasPrefix(names[0], EnvPrefix) {
		t.Fatalf("EnvNames = %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("EnvNames not sorted at %d: %v", i, names)
		}
	}
}
