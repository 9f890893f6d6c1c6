package pixel

import (
	"github.com/bodgit/csimage/raster"
	"github.com/pkg/errors"
)

var (
	// ErrOddWidth is returned when a 16-bit format is requested for an
	// image whose width is not divisible by 2.
	ErrOddWidth = errors.New("pixel: image width must be divisible by 2")
	// ErrBadFormat is returned for FormatNone or an unknown format.
	ErrBadFormat = errors.New("pixel: invalid output format")
)

// Pack encodes m in format f. Pixel (x, y) is written at byte offset
// (x + y*m.Width) * f.BytesPerPixel().
//
// If dither is true and f is FormatRGB565 or FormatRGBA4444 the quantization
// error of every pixel is diffused into m as it is packed, so m is modified.
// Pixels are visited strictly in raster order which the diffusion relies
// on; a pixel must be packed before any pixel it feeds error into.
func Pack(m *raster.Image, f Format, dither bool) ([]byte, error) {
	switch f {
	case FormatL8:
		return packL8(m), nil
	case FormatLA88:
		return packLA88(m), nil
	case FormatRGB565:
		if m.Width%2 != 0 {
			return nil, errors.Wrapf(ErrOddWidth, "cannot convert %d pixel wide image to %s", m.Width, f)
		}
		return packRGB565(m, dither), nil
	case FormatRGBA4444:
		if m.Width%2 != 0 {
			return nil, errors.Wrapf(ErrOddWidth, "cannot convert %d pixel wide image to %s", m.Width, f)
		}
		return packRGBA4444(m, dither), nil
	case FormatRGB888:
		return packRGB888(m), nil
	case FormatRGBA8888:
		return packRGBA8888(m), nil
	}
	return nil, errors.Wrapf(ErrBadFormat, "%s", f)
}

// luminance is the plain channel average, truncated. Containers written by
// earlier tools depend on this exact formula.
func luminance(r, g, b uint8) uint8 {
	return uint8((int(r) + int(g) + int(b)) / 3)
}

func packL8(m *raster.Image) []byte {
	out := make([]byte, len(m.Pix))
	for i, p := range m.Pix {
		r, g, b, _ := raster.Channels(p)
		out[i] = luminance(r, g, b)
	}
	return out
}

func packLA88(m *raster.Image) []byte {
	out := make([]byte, len(m.Pix)*2)
	for i, p := range m.Pix {
		r, g, b, a := raster.Channels(p)
		out[i*2+0] = luminance(r, g, b)
		out[i*2+1] = a
	}
	return out
}

func packRGB888(m *raster.Image) []byte {
	out := make([]byte, len(m.Pix)*3)
	for i, p := range m.Pix {
		r, g, b, _ := raster.Channels(p)
		out[i*3+0] = r
		out[i*3+1] = g
		out[i*3+2] = b
	}
	return out
}

func packRGBA8888(m *raster.Image) []byte {
	out := make([]byte, len(m.Pix)*4)
	for i, p := range m.Pix {
		r, g, b, a := raster.Channels(p)
		out[i*4+0] = r
		out[i*4+1] = g
		out[i*4+2] = b
		out[i*4+3] = a
	}
	return out
}

func packRGB565(m *raster.Image, dither bool) []byte {
	out := make([]byte, len(m.Pix)*2)
	// Index rather than range, Diffuse rewrites samples ahead of i
	for i := 0; i < len(m.Pix); i++ {
		or, og, ob, _ := raster.Channels(m.Pix[i])

		r := uint16(or >> 3)
		g := uint16(og >> 2)
		b := uint16(ob >> 3)

		if dither {
			Diffuse(m, i%m.Width, i/m.Width,
				int(or)-int(r<<3), int(og)-int(g<<2), int(ob)-int(b<<3), 0)
		}

		v := r<<11 | g<<5 | b
		out[i*2+0] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

func packRGBA4444(m *raster.Image, dither bool) []byte {
	out := make([]byte, len(m.Pix)*2)
	for i := 0; i < len(m.Pix); i++ {
		or, og, ob, oa := raster.Channels(m.Pix[i])

		r := uint16(or >> 4)
		g := uint16(og >> 4)
		b := uint16(ob >> 4)
		a := uint16(oa >> 4)

		if dither {
			Diffuse(m, i%m.Width, i/m.Width,
				int(or)-int(r<<4), int(og)-int(g<<4), int(ob)-int(b<<4), int(oa)-int(a<<4))
		}

		v := r<<12 | g<<8 | b<<4 | a
		out[i*2+0] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}
