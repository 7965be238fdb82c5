package canvas

import (
	"image"
	"image/color"
)

// fakePainter is an in-memory RGBA Painter. Segments mark their two end
// pixels with the current paint color, which is enough to tell states apart.
type fakePainter struct {
	w, h    int
	pix     []byte
	paint   Paint
	applied int
	readErr error
}

func newFakePainter(w, h int) *fakePainter {
	return &fakePainter{w: w, h: h, pix: make([]byte, w*h*4)}
}

func (f *fakePainter) Width() int  { return f.w }
func (f *fakePainter) Height() int { return f.h }

func (f *fakePainter) ReadPixels() ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]byte, len(f.pix))
	copy(out, f.pix)
	return out, nil
}

func (f *fakePainter) WritePixels(pix []byte) error {
	if len(pix) != len(f.pix) {
		return ErrSnapshotSize
	}
	copy(f.pix, pix)
	return nil
}

func (f *fakePainter) Resize(w, h int) error {
	f.w, f.h = w, h
	f.pix = make([]byte, w*h*4)
	f.paint = Paint{}
	return nil
}

func (f *fakePainter) ApplyPaint(p Paint) {
	f.paint = p
	f.applied++
}

func (f *fakePainter) Segment(x0, y0, x1, y1 float64) error {
	f.set(x0, y0)
	f.set(x1, y1)
	return nil
}

func (f *fakePainter) set(x, y float64) {
	scale := f.paint.Scale
	if scale <= 0 {
		scale = 1
	}
	px, py := int(x*scale), int(y*scale)
	if px < 0 || py < 0 || px >= f.w || py >= f.h {
		return
	}
	i := (py*f.w + px) * 4
	c := f.paint.Color
	f.pix[i], f.pix[i+1], f.pix[i+2], f.pix[i+3] = c.R, c.G, c.B, c.A
}

func (f *fakePainter) Clear() {
	for i := range f.pix {
		f.pix[i] = 0
	}
}

func (f *fakePainter) DrawImage(img image.Image) error {
	c := color.RGBAModel.Convert(img.At(img.Bounds().Min.X, img.Bounds().Min.Y)).(color.RGBA)
	for i := 0; i < len(f.pix); i += 4 {
		f.pix[i], f.pix[i+1], f.pix[i+2], f.pix[i+3] = c.R, c.G, c.B, c.A
	}
	return nil
}

func (f *fakePainter) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.w, f.h))
	copy(img.Pix, f.pix)
	return img
}

func (f *fakePainter) pixel(x, y int) color.RGBA {
	i := (y*f.w + x) * 4
	return color.RGBA{R: f.pix[i], G: f.pix[i+1], B: f.pix[i+2], A: f.pix[i+3]}
}

func (f *fakePainter) blank() bool {
	for _, b := range f.pix {
		if b != 0 {
			return false
		}
	}
	return true
}
