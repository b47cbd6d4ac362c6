package tool

import "errors"

// Errors returned by tools and strokes.
var (
	// ErrUnknownTool indicates an unrecognised tool name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrStrokeEnded indicates use of a stroke after End or Cancel.
	ErrStrokeEnded = errors.New("stroke already ended")

	// ErrInvalidSize indicates a tool size outside the allowed range.
	ErrInvalidSize = errors.New("invalid tool size")
)
