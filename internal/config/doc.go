// Package config provides the configuration system for pixelstorm.
//
// Settings are read from a single TOML or YAML file, chosen by the file
// extension. Any setting the file omits keeps its built-in default, and a
// missing file yields the defaults unchanged.
//
//	[canvas]
//	width = 800
//	height = 600
//	background = "#ffffff"
//	max_dimension = 4000
//
//	[history]
//	max_depth = 30
//	max_bytes = 0
//
//	[tools]
//	brush_size = 2
//	eraser_size = 10
//	max_size = 64
//	color = "#000000"
//	fill_tolerance = 0
//	palette = ["#000000", "#ffffff", "#ff0000"]
//
//	[logging]
//	level = "info"
//	file = ""
//
// # Basic Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	bg := cfg.BackgroundColor()
//
// # Live Reload
//
// A Watcher reports edits to the file so the application can apply them:
//
//	w, err := config.NewWatcher(path, func(cfg *config.Config, err error) {
//	    queue.Post(event.Event{Type: event.ConfigReload, Config: cfg})
//	})
//	defer w.Close()
package config
