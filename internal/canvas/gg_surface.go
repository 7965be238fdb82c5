package canvas

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"
)

// GGSurface is a Painter backed by a gg software rendering context.
type GGSurface struct {
	dc *gg.Context
}

// NewGGSurface allocates a transparent surface of the given buffer size.
func NewGGSurface(width, height int) *GGSurface {
	return &GGSurface{dc: gg.NewContext(width, height)}
}

func (s *GGSurface) Width() int  { return s.dc.Width() }
func (s *GGSurface) Height() int { return s.dc.Height() }

func (s *GGSurface) ReadPixels() ([]byte, error) {
	if err := s.dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("flush pending draws: %w", err)
	}
	data := s.dc.ResizeTarget().Data()
	if len(data) != s.Width()*s.Height()*4 {
		return nil, fmt.Errorf("pixel buffer holds %d bytes for %dx%d", len(data), s.Width(), s.Height())
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *GGSurface) WritePixels(pix []byte) error {
	data := s.dc.ResizeTarget().Data()
	if len(pix) != len(data) {
		return ErrSnapshotSize
	}
	copy(data, pix)
	return nil
}

func (s *GGSurface) Resize(width, height int) error {
	if err := s.dc.Resize(width, height); err != nil {
		return err
	}
	// gg keeps the old pixmap when the size is unchanged; a reallocation
	// always starts blank.
	s.dc.Clear()
	return nil
}

func (s *GGSurface) ApplyPaint(p Paint) {
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	s.dc.Identity()
	s.dc.Scale(scale, scale)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	s.dc.SetColor(p.Color)
	s.dc.SetLineWidth(p.Width)
}

func (s *GGSurface) Segment(x0, y0, x1, y1 float64) error {
	s.dc.MoveTo(x0, y0)
	s.dc.LineTo(x1, y1)
	return s.dc.Stroke()
}

func (s *GGSurface) Clear() {
	s.dc.Clear()
}

func (s *GGSurface) DrawImage(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
	}
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.Identity()
	s.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		DstWidth:  float64(s.Width()),
		DstHeight: float64(s.Height()),
		Opacity:   1,
	})
	return nil
}

func (s *GGSurface) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width(), s.Height()))
	_ = s.dc.FlushGPU()
	copy(img.Pix, s.dc.ResizeTarget().Data())
	return img
}
