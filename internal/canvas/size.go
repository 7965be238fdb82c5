package canvas

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidSize   = errors.New("invalid canvas size")
	ErrUnknownPreset = errors.New("unknown canvas preset")
)

// Accepted range for user-entered canvas dimensions, in logical pixels.
const (
	MinWidth  = 200
	MaxWidth  = 1600
	MinHeight = 150
	MaxHeight = 1200
)

// Limits on the backing buffer. A session never allocates more than
// MaxBufferPixels, whatever the logical size and device pixel ratio.
const (
	MaxDevicePixelRatio = 4
	MaxBufferPixels     = 4 * MaxWidth * MaxHeight
)

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OriginalSize is the size a canvas starts with and returns to on reset.
var OriginalSize = Size{Width: 600, Height: 500}

type Preset struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Size
}

var presets = []Preset{
	{Name: "small", Label: "Pequeño", Size: Size{Width: 400, Height: 300}},
	{Name: "medium", Label: "Mediano", Size: Size{Width: 600, Height: 500}},
	{Name: "large", Label: "Grande", Size: Size{Width: 800, Height: 600}},
	{Name: "xlarge", Label: "Extra Grande", Size: Size{Width: 1000, Height: 750}},
}

// Presets returns the built-in size presets, smallest first.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

func LookupPreset(name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// ParseSize validates user-entered dimensions.
func ParseSize(width, height string) (Size, error) {
	w, err := strconv.Atoi(strings.TrimSpace(width))
	if err != nil || w == 0 {
		return Size{}, fmt.Errorf("%w: width %q is not a number", ErrInvalidSize, width)
	}
	h, err := strconv.Atoi(strings.TrimSpace(height))
	if err != nil || h == 0 {
		return Size{}, fmt.Errorf("%w: height %q is not a number", ErrInvalidSize, height)
	}
	s := Size{Width: w, Height: h}
	return s, s.Validate()
}

// Validate checks the size against the accepted user range.
func (s Size) Validate() error {
	if s.Width < MinWidth || s.Width > MaxWidth {
		return fmt.Errorf("%w: width must be between %d and %d pixels", ErrInvalidSize, MinWidth, MaxWidth)
	}
	if s.Height < MinHeight || s.Height > MaxHeight {
		return fmt.Errorf("%w: height must be between %d and %d pixels", ErrInvalidSize, MinHeight, MaxHeight)
	}
	return nil
}

func (s Size) AspectRatio() float64 {
	if s.Height == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// HeightForWidth returns the height that keeps ratio for a new width.
func HeightForWidth(width int, ratio float64) int {
	if ratio <= 0 {
		return 0
	}
	return int(math.Round(float64(width) / ratio))
}

// WidthForHeight returns the width that keeps ratio for a new height.
func WidthForHeight(height int, ratio float64) int {
	return int(math.Round(float64(height) * ratio))
}

// ValidateDevicePixelRatio accepts finite ratios in (0, MaxDevicePixelRatio].
func ValidateDevicePixelRatio(dpr float64) error {
	if math.IsNaN(dpr) || dpr <= 0 || dpr > MaxDevicePixelRatio {
		return fmt.Errorf("%w: device pixel ratio %v must be above 0 and at most %d", ErrInvalidSize, dpr, MaxDevicePixelRatio)
	}
	return nil
}

// bufferFor returns the backing buffer for a logical size, rejecting empty
// buffers and buffers over MaxBufferPixels.
func bufferFor(size Size, dpr float64) (Size, error) {
	if err := ValidateDevicePixelRatio(dpr); err != nil {
		return Size{}, err
	}
	buf := BufferSize(float64(size.Width), float64(size.Height), dpr)
	if buf.Width <= 0 || buf.Height <= 0 {
		return Size{}, fmt.Errorf("%w: buffer %dx%d", ErrInvalidSize, buf.Width, buf.Height)
	}
	if int64(buf.Width)*int64(buf.Height) > MaxBufferPixels {
		return Size{}, fmt.Errorf("%w: buffer %dx%d exceeds %d pixels", ErrInvalidSize, buf.Width, buf.Height, MaxBufferPixels)
	}
	return buf, nil
}

// BufferSize scales a logical size by the device pixel ratio.
func BufferSize(logicalW, logicalH, dpr float64) Size {
	if dpr <= 0 {
		dpr = 1
	}
	return Size{
		Width:  int(math.Floor(logicalW * dpr)),
		Height: int(math.Floor(logicalH * dpr)),
	}
}
