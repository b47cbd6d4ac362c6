package history

import (
	"time"

	"github.com/dshills/pixelstorm/internal/canvas"
)

// Op identifies the kind of mutation an entry was captured for.
type Op string

// Operations recorded by the paint tools and image commands.
const (
	OpBrush  Op = "brush"
	OpEraser Op = "eraser"
	OpFill   Op = "fill"
	OpResize Op = "resize"
	OpScale  Op = "scale"
	OpClear  Op = "clear"
)

// String returns the operation name.
func (o Op) String() string { return string(o) }

// Entry is a canvas state captured immediately before a mutation.
// Entries are never modified after creation.
type Entry struct {
	op        Op
	snapshot  canvas.Snapshot
	timestamp time.Time
}

func newEntry(op Op, snap canvas.Snapshot) *Entry {
	return &Entry{
		op:        op,
		snapshot:  snap,
		timestamp: time.Now(),
	}
}

// Op returns the operation the entry was captured for.
func (e *Entry) Op() Op { return e.op }

// Snapshot returns the captured canvas state.
func (e *Entry) Snapshot() canvas.Snapshot { return e.snapshot }

// Timestamp returns when the entry was captured.
func (e *Entry) Timestamp() time.Time { return e.timestamp }

// Size returns the number of pixel bytes the entry holds.
func (e *Entry) Size() int { return e.snapshot.Size() }

// Info returns a summary of the entry.
func (e *Entry) Info() EntryInfo {
	return EntryInfo{
		Op:        e.op,
		Timestamp: e.timestamp,
		Width:     e.snapshot.Width(),
		Height:    e.snapshot.Height(),
		Bytes:     e.snapshot.Size(),
	}
}

// EntryInfo describes a history entry for display.
type EntryInfo struct {
	Op        Op
	Timestamp time.Time
	Width     int
	Height    int
	Bytes     int
}
