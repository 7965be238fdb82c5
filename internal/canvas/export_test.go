package canvas

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOnWhiteFillsTransparency(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(1, 0, color.RGBA{R: 0xff, A: 0xff})

	out := OnWhite(src)
	require.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, out.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{R: 0xff, A: 0xff}, out.RGBAAt(1, 0))
}

func TestThumbnail(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 960, 720))
	th := Thumbnail(big)
	require.Equal(t, ThumbnailWidth, th.Bounds().Dx())
	require.Equal(t, 180, th.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	require.Equal(t, small.Bounds(), Thumbnail(small).Bounds())
}

func TestDataURLRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	data, err := EncodePNG(img)
	require.NoError(t, err)

	u := PNGDataURL(data)
	require.True(t, bytes.HasPrefix([]byte(u), []byte("data:image/png;base64,")))

	got, err := DecodeDataURL(u)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(got))
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestDecodeDataURLRejectsMalformed(t *testing.T) {
	for _, u := range []string{
		"",
		"image/png;base64,AAAA",
		"data:image/png,AAAA",
		"data:image/png;base64",
		"data:image/png;base64,@@@",
	} {
		_, err := DecodeDataURL(u)
		require.ErrorIs(t, err, ErrInvalidDataURL, u)
	}
}

func TestDownloadFilename(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	require.Equal(t, "dibujo_1700000000123.png", DownloadFilename(ts))
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h RGBA
// pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 6

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecodeImageChecksDeclaredSize(t *testing.T) {
	_, err := DecodeImage(pngHeader(50000, 50000))
	require.ErrorIs(t, err, ErrImageTooLarge)

	_, err = DecodeImage([]byte("hello"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrImageTooLarge)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))))
	img, err := DecodeImage(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
}

func TestLoadImageBytesRejectsHugeImage(t *testing.T) {
	s, f := newFakeSession(t, Options{Color: red})
	stroke(t, s, 1, 1, 2, 2)
	before := bytes.Clone(f.pix)

	require.ErrorIs(t, s.LoadImageBytes(pngHeader(50000, 50000)), ErrImageTooLarge)
	require.Equal(t, before, f.pix)
	require.Equal(t, 2, s.History().Len())
}
