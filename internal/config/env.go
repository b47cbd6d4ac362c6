package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "PIXELSTORM_"

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// envSetting applies one environment variable to a config.
type envSetting func(c *Config, value string) error

// envMapping maps variable names, without the prefix, to settings.
var envMapping = map[string]envSetting{
	"CANVAS_WIDTH":         intSetting(func(c *Config) *int { return &c.Canvas.Width }),
	"CANVAS_HEIGHT":        intSetting(func(c *Config) *int { return &c.Canvas.Height }),
	"CANVAS_BACKGROUND":    stringSetting(func(c *Config) *string { return &c.Canvas.Background }),
	"CANVAS_MAX_DIMENSION": intSetting(func(c *Config) *int { return &c.Canvas.MaxDimension }),
	"HISTORY_MAX_DEPTH":    intSetting(func(c *Config) *int { return &c.History.MaxDepth }),
	"HISTORY_MAX_BYTES": func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.History.MaxBytes = n
		return nil
	},
	"TOOLS_BRUSH_SIZE":  intSetting(func(c *Config) *int { return &c.Tools.BrushSize }),
	"TOOLS_ERASER_SIZE": intSetting(func(c *Config) *int { return &c.Tools.EraserSize }),
	"TOOLS_MAX_SIZE":    intSetting(func(c *Config) *int { return &c.Tools.MaxSize }),
	"TOOLS_COLOR":       stringSetting(func(c *Config) *string { return &c.Tools.Color }),
	"TOOLS_FILL_TOLERANCE": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Tools.FillTolerance = f
		return nil
	},
	"TOOLS_PALETTE": func(c *Config, v string) error {
		var palette []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				palette = append(palette, s)
			}
		}
		c.Tools.Palette = palette
		return nil
	},
	"LOGGING_LEVEL": stringSetting(func(c *Config) *string { return &c.Logging.Level }),
	"LOGGING_FILE":  stringSetting(func(c *Config) *string { return &c.Logging.File }),
}

// ApplyEnv overrides cfg with PIXELSTORM_* variables, for example
// PIXELSTORM_CANVAS_WIDTH=1024 or PIXELSTORM_TOOLS_PALETTE="#000,#fff".
// The result is not validated.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var problems []string
	for name, set := range envMapping {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(cfg, strings.TrimSpace(v)); err != nil {
			problems = append(problems, fmt.Sprintf("%s%s=%q: %v", EnvPrefix, name, v, err))
		}
	}
	if len(problems) > 0 {
		slices.Sort(problems)
		return &ValidationError{Problems: problems}
	}
	return nil
}

// EnvNames lists the recognised environment variables.
func EnvNames() []string {
	names := make([]string, 0, len(envMapping))
	for name := range envMapping {
		names = append(names, EnvPrefix+name)
	}
	slices.Sort(names)
	return names
}

func intSetting(field func(*Config) *int) envSetting {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func stringSetting(field func(*Config) *string) envSetting {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}
