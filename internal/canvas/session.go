package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"regexp"

	"github.com/gogpu/gg"
)

type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
)

const (
	DefaultBrushWidth = 5
	MaxBrushWidth     = 100
)

var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrInvalidColor = errors.New("invalid color")
	ErrInvalidWidth = errors.New("invalid brush width")
)

var (
	DefaultColor      = color.RGBA{A: 0xff}
	DefaultBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

var hexColorRe = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Options configures a new Session. Zero values select the defaults.
type Options struct {
	Size             Size
	DevicePixelRatio float64
	MaxHistory       int
	Color            color.RGBA
	BrushWidth       float64
	// Background is what the eraser paints with.
	Background color.RGBA
	NewSurface func(width, height int) Painter
	OnChange   func(SessionState)
}

// SessionState is what a client needs to render the canvas controls.
type SessionState struct {
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	BufferWidth  int  `json:"buffer_width"`
	BufferHeight int  `json:"buffer_height"`
	Tool         Tool `json:"tool"`
	HistoryState
}

// Session is one drawing canvas: its surface, its history and the stroke
// state machine. Sessions are independent of each other and must only be
// driven from a single goroutine.
type Session struct {
	surface Painter
	history *History

	size       Size
	dpr        float64
	tool       Tool
	color      color.RGBA
	brushWidth float64
	background color.RGBA

	drawing      bool
	lastX, lastY float64

	onChange func(SessionState)
}

func NewSession(opts Options) (*Session, error) {
	if opts.Size == (Size{}) {
		opts.Size = OriginalSize
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Size.Width, opts.Size.Height)
	}
	if opts.DevicePixelRatio <= 0 {
		opts.DevicePixelRatio = 1
	}
	if opts.Color == (color.RGBA{}) {
		opts.Color = DefaultColor
	}
	if opts.BrushWidth <= 0 {
		opts.BrushWidth = DefaultBrushWidth
	}
	if opts.Background == (color.RGBA{}) {
		opts.Background = DefaultBackground
	}
	if opts.NewSurface == nil {
		opts.NewSurface = func(w, h int) Painter { return NewGGSurface(w, h) }
	}

	buf, err := bufferFor(opts.Size, opts.DevicePixelRatio)
	if err != nil {
		return nil, err
	}

	s := &Session{
		surface:    opts.NewSurface(buf.Width, buf.Height),
		size:       opts.Size,
		dpr:        opts.DevicePixelRatio,
		tool:       ToolBrush,
		color:      opts.Color,
		brushWidth: opts.BrushWidth,
		background: opts.Background,
		onChange:   opts.OnChange,
	}
	s.history = NewHistory(s.surface, opts.MaxHistory)
	s.history.OnChange(func(HistoryState) { s.notify() })
	s.applyPaint()
	if err := s.history.Reset(); err != nil {
		return nil, fmt.Errorf("capture baseline: %w", err)
	}
	return s, nil
}

// PointerDown starts a stroke at (x, y).
func (s *Session) PointerDown(x, y float64) {
	s.drawing = true
	s.lastX, s.lastY = x, y
}

// PointerMove paints the segment from the last point to (x, y) while drawing.
func (s *Session) PointerMove(x, y float64) error {
	if !s.drawing {
		return nil
	}
	err := s.surface.Segment(s.lastX, s.lastY, x, y)
	s.lastX, s.lastY = x, y
	if err != nil {
		return fmt.Errorf("paint segment: %w", err)
	}
	return nil
}

// PointerUp ends the current stroke and records it as one undo step.
func (s *Session) PointerUp() error { return s.endStroke() }

// PointerLeave behaves like PointerUp when the pointer exits mid-stroke.
func (s *Session) PointerLeave() error { return s.endStroke() }

func (s *Session) endStroke() error {
	if !s.drawing {
		return nil
	}
	s.drawing = false
	return s.history.SaveState()
}

// Drawing reports whether a stroke is in progress.
func (s *Session) Drawing() bool { return s.drawing }

func (s *Session) SetTool(t Tool) error {
	switch t {
	case ToolBrush, ToolEraser:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTool, t)
	}
	s.tool = t
	s.applyPaint()
	return nil
}

func (s *Session) SetColor(c color.RGBA) {
	s.color = c
	s.applyPaint()
}

// SetColorHex accepts "#rgb" or "#rrggbb", with or without the hash.
func (s *Session) SetColorHex(hex string) error {
	if !hexColorRe.MatchString(hex) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	s.SetColor(color.RGBAModel.Convert(gg.Hex(hex).Color()).(color.RGBA))
	return nil
}

func (s *Session) SetBrushWidth(w float64) error {
	if w <= 0 || w > MaxBrushWidth {
		return fmt.Errorf("%w: %v", ErrInvalidWidth, w)
	}
	s.brushWidth = w
	s.applyPaint()
	return nil
}

// SetBackground changes the color the eraser paints with.
func (s *Session) SetBackground(c color.RGBA) {
	s.background = c
	s.applyPaint()
}

// Clear wipes the surface and records the blank canvas as an undo step.
func (s *Session) Clear() error {
	s.surface.Clear()
	return s.history.SaveState()
}

func (s *Session) Undo() (bool, error) { return s.history.Undo() }
func (s *Session) Redo() (bool, error) { return s.history.Redo() }

// Resize reallocates the surface at a logical size. Contents and history
// are discarded.
func (s *Session) Resize(size Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.Width, size.Height)
	}
	return s.reallocate(size)
}

// ApplyUserSize validates typed dimensions before touching the surface.
func (s *Session) ApplyUserSize(width, height string) error {
	size, err := ParseSize(width, height)
	if err != nil {
		return err
	}
	return s.reallocate(size)
}

func (s *Session) ApplyPreset(name string) error {
	p, err := LookupPreset(name)
	if err != nil {
		return err
	}
	return s.reallocate(p.Size)
}

// ResetSize returns the canvas to OriginalSize.
func (s *Session) ResetSize() error {
	return s.reallocate(OriginalSize)
}

// Fit sizes the canvas to a viewport, as on window resize or when the
// drawing mode is entered or left. Each side is capped at MaxWidth and
// MaxHeight.
func (s *Session) Fit(viewWidth, viewHeight float64) error {
	if !(viewWidth >= 1) || !(viewHeight >= 1) || math.IsInf(viewWidth, 0) || math.IsInf(viewHeight, 0) {
		return fmt.Errorf("%w: viewport %vx%v", ErrInvalidSize, viewWidth, viewHeight)
	}
	size := Size{
		Width:  int(math.Min(viewWidth, MaxWidth)),
		Height: int(math.Min(viewHeight, MaxHeight)),
	}
	return s.reallocate(size)
}

func (s *Session) reallocate(size Size) error {
	buf, err := bufferFor(size, s.dpr)
	if err != nil {
		return err
	}
	if err := s.surface.Resize(buf.Width, buf.Height); err != nil {
		return fmt.Errorf("reallocate surface: %w", err)
	}
	s.size = size
	s.drawing = false
	s.applyPaint()
	return s.history.Reset()
}

// LoadImage replaces the canvas contents with img stretched to fit and
// records it as an undo step.
func (s *Session) LoadImage(img image.Image) error {
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("load image: empty %dx%d image", b.Dx(), b.Dy())
	}
	s.surface.Clear()
	if err := s.surface.DrawImage(img); err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	return s.history.SaveState()
}

// LoadImageBytes decodes PNG or JPEG bytes, or a data URL, and loads them.
// Undecodable input leaves the canvas untouched.
func (s *Session) LoadImageBytes(data []byte) error {
	if bytes.HasPrefix(data, []byte("data:")) {
		decoded, err := DecodeDataURL(string(data))
		if err != nil {
			return err
		}
		data = decoded
	}
	img, err := DecodeImage(data)
	if err != nil {
		return err
	}
	return s.LoadImage(img)
}

func (s *Session) Image() *image.RGBA { return s.surface.Image() }

// ExportPNG encodes the canvas as is, transparent regions included.
func (s *Session) ExportPNG() ([]byte, error) {
	return EncodePNG(s.surface.Image())
}

// ExportGalleryPNG encodes the canvas composited onto opaque white.
func (s *Session) ExportGalleryPNG() ([]byte, error) {
	return EncodePNG(OnWhite(s.surface.Image()))
}

// Size is the logical canvas size.
func (s *Session) Size() Size { return s.size }

// Tool is the active tool.
func (s *Session) Tool() Tool { return s.tool }

// History exposes the undo stack.
func (s *Session) History() *History { return s.history }

// State is what a client needs to redraw its controls.
func (s *Session) State() SessionState {
	return SessionState{
		Width:        s.size.Width,
		Height:       s.size.Height,
		BufferWidth:  s.surface.Width(),
		BufferHeight: s.surface.Height(),
		Tool:         s.tool,
		HistoryState: s.history.State(),
	}
}

func (s *Session) applyPaint() {
	c := s.color
	if s.tool == ToolEraser {
		c = s.background
	}
	s.surface.ApplyPaint(Paint{Color: c, Width: s.brushWidth, Scale: s.dpr})
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange(s.State())
	}
}
