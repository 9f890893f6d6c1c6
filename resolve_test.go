package csimage

import (
	"testing"

	"github.com/bodgit/csimage/pixel"
	"github.com/bodgit/csimage/raster"
	"github.com/stretchr/testify/assert"
)

func TestResolveFormat(t *testing.T) {
	img := func(kind raster.Kind, alpha bool) *raster.Image {
		return &raster.Image{Width: 1, Height: 1, Kind: kind, HasAlpha: alpha, Pix: make([]uint32, 1)}
	}

	for _, tc := range []struct {
		name string
		opts Options
		m    *raster.Image
		want pixel.Format
	}{
		{
			name: "forced with alpha",
			opts: Options{ForcedFormat: pixel.FormatRGB565, AlphaFormat: pixel.FormatRGBA4444},
			m:    img(raster.KindColor, true),
			want: pixel.FormatRGB565,
		},
		{
			name: "forced without alpha",
			opts: Options{ForcedFormat: pixel.FormatRGB565, NoAlphaFormat: pixel.FormatL8},
			m:    img(raster.KindGray, false),
			want: pixel.FormatRGB565,
		},
		{
			name: "alpha format",
			opts: Options{AlphaFormat: pixel.FormatRGBA4444, NoAlphaFormat: pixel.FormatRGB565},
			m:    img(raster.KindColor, true),
			want: pixel.FormatRGBA4444,
		},
		{
			name: "no alpha format",
			opts: Options{AlphaFormat: pixel.FormatRGBA4444, NoAlphaFormat: pixel.FormatRGB565},
			m:    img(raster.KindColor, false),
			want: pixel.FormatRGB565,
		},
		{
			name: "alpha format ignored without alpha",
			opts: Options{AlphaFormat: pixel.FormatRGBA4444},
			m:    img(raster.KindColor, false),
			want: pixel.FormatRGB888,
		},
		{
			name: "no alpha format ignored with alpha",
			opts: Options{NoAlphaFormat: pixel.FormatRGB565},
			m:    img(raster.KindColor, true),
			want: pixel.FormatRGBA8888,
		},
		{
			name: "native gray",
			m:    img(raster.KindGray, false),
			want: pixel.FormatL8,
		},
		{
			name: "native gray alpha",
			m:    img(raster.KindGrayAlpha, true),
			want: pixel.FormatLA88,
		},
		{
			name: "native color",
			m:    img(raster.KindColor, false),
			want: pixel.FormatRGB888,
		},
		{
			name: "native color alpha",
			m:    img(raster.KindColor, true),
			want: pixel.FormatRGBA8888,
		},
		{
			name: "unknown kind",
			m:    img(raster.Kind(9), true),
			want: pixel.FormatNone,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveFormat(tc.opts, tc.m))
		})
	}
}
