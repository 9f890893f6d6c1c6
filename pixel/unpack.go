package pixel

import (
	"github.com/bodgit/csimage/raster"
	"github.com/pkg/errors"
)

// ErrShortData is returned by Unpack when data does not hold exactly
// width*height pixels.
var ErrShortData = errors.New("pixel: data length does not match dimensions")

// Unpack decodes data packed in format f back into a raster. Reduced
// precision channels are widened by bit replication so 0 and the maximum
// value map to 0 and 255.
func Unpack(data []byte, width, height int, f Format) (*raster.Image, error) {
	bpp := f.BytesPerPixel()
	if bpp == 0 {
		return nil, errors.Wrapf(ErrBadFormat, "%s", f)
	}

	// Compare by division so huge dimensions cannot overflow
	n := len(data) / bpp
	if width <= 0 || height <= 0 || len(data)%bpp != 0 || n%width != 0 || n/width != height {
		return nil, errors.Wrapf(ErrShortData, "%d bytes for %dx%d %s", len(data), width, height, f)
	}

	m, err := raster.New(width, height, f.HasAlpha())
	if err != nil {
		return nil, err
	}

	switch f {
	case FormatL8, FormatLA88:
		m.Kind = raster.KindGray
		if f == FormatLA88 {
			m.Kind = raster.KindGrayAlpha
		}
	default:
		m.Kind = raster.KindColor
	}

	for i := range m.Pix {
		b := data[i*bpp : (i+1)*bpp]
		switch f {
		case FormatL8:
			m.Pix[i] = raster.Pixel(b[0], b[0], b[0], 0xff)
		case FormatLA88:
			m.Pix[i] = raster.Pixel(b[0], b[0], b[0], b[1])
		case FormatRGB565:
			v := uint16(b[0]) | uint16(b[1])<<8
			m.Pix[i] = raster.Pixel(expand5(v>>11), expand6(v>>5), expand5(v), 0xff)
		case FormatRGBA4444:
			v := uint16(b[0]) | uint16(b[1])<<8
			m.Pix[i] = raster.Pixel(expand4(v>>12), expand4(v>>8), expand4(v>>4), expand4(v))
		case FormatRGB888:
			m.Pix[i] = raster.Pixel(b[0], b[1], b[2], 0xff)
		case FormatRGBA8888:
			m.Pix[i] = raster.Pixel(b[0], b[1], b[2], b[3])
		}
	}

	return m, nil
}

func expand4(v uint16) uint8 {
	v &= 0x0f
	return uint8(v<<4 | v)
}

func expand5(v uint16) uint8 {
	v &= 0x1f
	return uint8(v<<3 | v>>2)
}

func expand6(v uint16) uint8 {
	v &= 0x3f
	return uint8(v<<2 | v>>4)
}
