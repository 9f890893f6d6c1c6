package csimage

import (
	"github.com/bodgit/csimage/pixel"
	"github.com/bodgit/csimage/raster"
)

// ResolveFormat picks the output format for m. The first match wins:
//
//  1. o.ForcedFormat
//  2. o.AlphaFormat if m has alpha
//  3. o.NoAlphaFormat if m has no alpha
//  4. the format matching how m was decoded
//
// pixel.FormatNone is returned if nothing matches.
func ResolveFormat(o Options, m *raster.Image) pixel.Format {
	if o.ForcedFormat != pixel.FormatNone {
		return o.ForcedFormat
	}

	if m.HasAlpha && o.AlphaFormat != pixel.FormatNone {
		return o.AlphaFormat
	}

	if !m.HasAlpha && o.NoAlphaFormat != pixel.FormatNone {
		return o.NoAlphaFormat
	}

	switch m.Kind {
	case raster.KindGray:
		if m.HasAlpha {
			return pixel.FormatLA88
		}
		return pixel.FormatL8
	case raster.KindGrayAlpha:
		return pixel.FormatLA88
	case raster.KindColor:
		if m.HasAlpha {
			return pixel.FormatRGBA8888
		}
		return pixel.FormatRGB888
	}

	return pixel.FormatNone
}
