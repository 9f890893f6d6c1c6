/*
Package raster holds the in-memory raster the csimage converter works on.

Every pixel is stored as a single 32-bit sample with the channels packed as
alpha, red, green and blue from the most significant byte down. Samples are
stored row by row so pixel (x, y) lives at index x + y*Width.
*/
package raster

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Kind records the representation the raster was decoded from.
type Kind int

const (
	// KindColor is any decoded color representation.
	KindColor Kind = iota
	// KindGray is a single luminance channel.
	KindGray
	// KindGrayAlpha is a luminance channel plus an alpha channel.
	KindGrayAlpha
)

func (k Kind) String() string {
	switch k {
	case KindColor:
		return "color"
	case KindGray:
		return "gray"
	case KindGrayAlpha:
		return "gray+alpha"
	}
	return "unknown"
}

var errBadDimensions = errors.New("raster: width and height must be positive")

// Image is a raster of packed ARGB samples. The Pix slice is allocated once
// by New and is never reallocated, callers that mutate samples do so in
// place.
type Image struct {
	Width    int
	Height   int
	HasAlpha bool
	Kind     Kind
	Pix      []uint32
}

// New returns a zeroed raster of the given dimensions.
func New(width, height int, hasAlpha bool) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errBadDimensions
	}
	return &Image{
		Width:    width,
		Height:   height,
		HasAlpha: hasAlpha,
		Pix:      make([]uint32, width*height),
	}, nil
}

// Pixel packs the four channels into a sample.
func Pixel(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Channels unpacks a sample into its four channels.
func Channels(p uint32) (r, g, b, a uint8) {
	return uint8(p >> 16), uint8(p >> 8), uint8(p), uint8(p >> 24)
}

// At returns the sample at (x, y).
func (m *Image) At(x, y int) uint32 {
	return m.Pix[x+y*m.Width]
}

// Set replaces the sample at (x, y).
func (m *Image) Set(x, y int, p uint32) {
	m.Pix[x+y*m.Width] = p
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	dup := *m
	dup.Pix = append([]uint32(nil), m.Pix...)
	return &dup
}

// NRGBA converts the raster to a standard library image.
func (m *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, p := range m.Pix {
		r, g, b, a := Channels(p)
		copy(dst.Pix[i*4:], []uint8{r, g, b, a})
	}
	return dst
}

func hasAlpha(m image.Image) bool {
	switch m := m.(type) {
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	case *image.NRGBA, *image.NRGBA64, *image.Alpha, *image.Alpha16, *image.NYCbCrA:
		return true
	}
	// *image.RGBA and *image.RGBA64 are what decoders return for sources
	// without an alpha channel, such as truecolour PNG, so they fall through
	// to the opacity check
	if o, ok := m.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

// FromImage copies m into a new raster. The kind is a hint from the decoder;
// images of type *image.Gray and *image.Gray16 are always treated as
// KindGray.
func FromImage(m image.Image, kind Kind) (*Image, error) {
	b := m.Bounds()

	switch m.(type) {
	case *image.Gray, *image.Gray16:
		kind = KindGray
	}

	alpha := hasAlpha(m)
	if kind == KindGrayAlpha {
		alpha = true
	}

	dst, err := New(b.Dx(), b.Dy(), alpha)
	if err != nil {
		return nil, err
	}
	dst.Kind = kind

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch kind {
			case KindGray:
				l := color.GrayModel.Convert(m.At(x, y)).(color.Gray).Y
				dst.Pix[i] = Pixel(l, l, l, 0xff)
			case KindGrayAlpha:
				c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
				dst.Pix[i] = Pixel(c.R, c.R, c.R, c.A)
			default:
				c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
				dst.Pix[i] = Pixel(c.R, c.G, c.B, c.A)
			}
			i++
		}
	}

	return dst, nil
}
