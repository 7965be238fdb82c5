package canvas

import (
	"errors"
	"image"
	"image/color"
)

var (
	// ErrSnapshotSize is returned when pixels captured at one buffer size are
	// written into a buffer of another size.
	ErrSnapshotSize = errors.New("snapshot does not match surface dimensions")
)

// Surface is the pixel buffer History snapshots and restores. The buffer is
// the authoritative drawing state; nothing above it models strokes.
type Surface interface {
	Width() int
	Height() int
	// ReadPixels returns a copy of the RGBA bytes, 4 per pixel, row major.
	ReadPixels() ([]byte, error)
	// WritePixels replaces the whole buffer with pix.
	WritePixels(pix []byte) error
}

// Paint is the drawing-context state. Buffer reallocation resets it in the
// rendering engine, so it is reapplied after every resize.
type Paint struct {
	Color color.RGBA
	Width float64
	// Scale maps logical pointer coordinates to buffer pixels (the DPR).
	Scale float64
}

// Painter is a Surface that can render stroke segments and be reallocated.
type Painter interface {
	Surface
	// Resize reallocates the buffer. Contents are lost.
	Resize(width, height int) error
	ApplyPaint(p Paint)
	// Segment strokes one line from (x0, y0) to (x1, y1) in logical coordinates.
	Segment(x0, y0, x1, y1 float64) error
	// Clear wipes the buffer to transparent.
	Clear()
	// DrawImage draws img stretched over the whole buffer.
	DrawImage(img image.Image) error
	Image() *image.RGBA
}
