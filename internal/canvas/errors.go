package canvas

import "errors"

// Errors returned by canvas operations.
var (
	// ErrOutOfBounds indicates a coordinate outside the canvas.
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// ErrInvalidSize indicates non-positive or oversized dimensions.
	// It is returned before any state changes.
	ErrInvalidSize = errors.New("invalid canvas size")

	// ErrSnapshotMismatch indicates a snapshot with corrupt pixel data.
	ErrSnapshotMismatch = errors.New("snapshot does not match its dimensions")
)
