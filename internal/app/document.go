package app

import (
	"path/filepath"

	"github.com/dshills/pixelstorm/internal/imageio"
)

// Document tracks the file behind the canvas.
type Document struct {
	// Path is the file path (empty for an untitled image).
	Path string

	// Format is the format the image was read in.
	Format imageio.Format

	// Modified indicates unsaved changes.
	Modified bool
}

// Name returns the display name.
func (d Document) Name() string {
	if d.Path == "" {
		return "Untitled"
	}
	return filepath.Base(d.Path)
}

// IsUntitled returns true if the image has never been saved.
func (d Document) IsUntitled() bool {
	return d.Path == ""
}
