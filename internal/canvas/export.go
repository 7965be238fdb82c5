package canvas

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"
)

// ThumbnailWidth is the maximum width of gallery thumbnails.
const ThumbnailWidth = 240

var (
	ErrInvalidDataURL = errors.New("invalid data URL")
	ErrImageTooLarge  = errors.New("image too large")
)

// DecodeImage decodes PNG or JPEG data. The declared dimensions are checked
// against MaxBufferPixels before any pixel is allocated.
func DecodeImage(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxBufferPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// OnWhite composites img over an opaque white background so transparent
// regions do not export as black or see-through.
func OnWhite(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Over)
	return out
}

// Thumbnail scales img down to at most ThumbnailWidth pixels wide.
func Thumbnail(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > ThumbnailWidth {
		h = h * ThumbnailWidth / w
		w = ThumbnailWidth
	}
	if h < 1 {
		h = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, b, xdraw.Over, nil)
	return out
}

func PNGDataURL(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL returns the payload of a base64 "data:" URL.
func DecodeDataURL(u string) ([]byte, error) {
	if !strings.HasPrefix(u, "data:") {
		return nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(u[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return data, nil
}

// DownloadFilename names an exported drawing after its export time.
func DownloadFilename(t time.Time) string {
	return fmt.Sprintf("dibujo_%d.png", t.UnixMilli())
}
