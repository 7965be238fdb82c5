package canvas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		w, h    string
		want    Size
		wantErr bool
	}{
		{name: "in range", w: "800", h: "600", want: Size{Width: 800, Height: 600}},
		{name: "lower bounds", w: "200", h: "150", want: Size{Width: 200, Height: 150}},
		{name: "upper bounds", w: "1600", h: "1200", want: Size{Width: 1600, Height: 1200}},
		{name: "trimmed", w: " 640 ", h: "480\n", want: Size{Width: 640, Height: 480}},
		{name: "not a number", w: "wide", h: "600", wantErr: true},
		{name: "empty height", w: "800", h: "", wantErr: true},
		{name: "zero", w: "0", h: "600", wantErr: true},
		{name: "too narrow", w: "199", h: "600", wantErr: true},
		{name: "too wide", w: "1601", h: "600", wantErr: true},
		{name: "too short", w: "800", h: "149", wantErr: true},
		{name: "too tall", w: "800", h: "1201", wantErr: true},
		{name: "negative", w: "-800", h: "600", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.w, tt.h)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSize)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPresets(t *testing.T) {
	ps := Presets()
	require.Len(t, ps, 4)
	for _, p := range ps {
		require.NoError(t, p.Validate(), p.Name)
	}

	p, err := LookupPreset("xlarge")
	require.NoError(t, err)
	require.Equal(t, Size{Width: 1000, Height: 750}, p.Size)

	_, err = LookupPreset("XL")
	require.ErrorIs(t, err, ErrUnknownPreset)

	ps[0].Width = 1
	again := Presets()
	require.Equal(t, 400, again[0].Width, "callers get a copy")
}

func TestAspectRatioHelpers(t *testing.T) {
	ratio := Size{Width: 800, Height: 600}.AspectRatio()
	require.InDelta(t, 4.0/3.0, ratio, 1e-9)
	require.Equal(t, 750, HeightForWidth(1000, ratio))
	require.Equal(t, 1200, WidthForHeight(900, ratio))
	require.Zero(t, HeightForWidth(100, 0))
	require.Zero(t, Size{Width: 10}.AspectRatio())
}

func TestBufferSize(t *testing.T) {
	require.Equal(t, Size{Width: 600, Height: 500}, BufferSize(600, 500, 0))
	require.Equal(t, Size{Width: 1200, Height: 1000}, BufferSize(600, 500, 2))
	require.Equal(t, Size{Width: 900, Height: 750}, BufferSize(600, 500, 1.5))
	require.Equal(t, Size{Width: 376, Height: 312}, BufferSize(300.9, 250.1, 1.25))
}

func TestValidateDevicePixelRatio(t *testing.T) {
	for _, dpr := range []float64{0.5, 1, 2.625, MaxDevicePixelRatio} {
		require.NoError(t, ValidateDevicePixelRatio(dpr), "%v", dpr)
	}
	for _, dpr := range []float64{0, -1, MaxDevicePixelRatio + 0.01, math.NaN(), math.Inf(1)} {
		require.ErrorIs(t, ValidateDevicePixelRatio(dpr), ErrInvalidSize, "%v", dpr)
	}
}
