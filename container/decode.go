package container

import (
	"image"
	"image/color"
	"io"
)

// magic is the little-endian byte order mark followed by the version.
const magic = "\x40\xe2\x01\x00\x03\x00\x00\x00"

func init() {
	image.RegisterFormat("csimage", magic, Decode, DecodeConfig)
}

// Decode reads a csimage container from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	c, err := Read(r)
	if err != nil {
		return nil, err
	}
	m, err := c.Raster()
	if err != nil {
		return nil, err
	}
	return m.NRGBA(), nil
}

// DecodeConfig returns the color model and dimensions of a csimage container
// without reading the payload.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
