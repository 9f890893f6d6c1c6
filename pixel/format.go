/*
Package pixel implements the fixed pixel formats of a csimage container.

Each format packs a raster into a tightly packed byte sequence, row by row
with no padding. The two 16-bit formats can optionally diffuse their
quantization error into the not yet packed pixels of the source raster.
*/
package pixel

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Format is an output pixel format. The zero value means no format has been
// chosen.
type Format int

const (
	FormatNone Format = iota
	FormatL8
	FormatLA88
	FormatRGB565
	FormatRGBA4444
	FormatRGB888
	FormatRGBA8888
)

var formatNames = [...]string{
	FormatNone:     "none",
	FormatL8:       "L8",
	FormatLA88:     "LA88",
	FormatRGB565:   "RGB565",
	FormatRGBA4444: "RGBA4444",
	FormatRGB888:   "RGB888",
	FormatRGBA8888: "RGBA8888",
}

// Valid reports whether f is one of the enumerated formats, including
// FormatNone.
func (f Format) Valid() bool {
	return f >= FormatNone && f <= FormatRGBA8888
}

func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Ordinal returns the value stored in a container header for f, or -1 for
// FormatNone and unknown values.
func (f Format) Ordinal() int32 {
	if f == FormatNone || !f.Valid() {
		return -1
	}
	return int32(f - FormatL8)
}

// FormatFromOrdinal is the inverse of Ordinal.
func FormatFromOrdinal(o int32) (Format, error) {
	f := Format(o) + FormatL8
	if o < 0 || !f.Valid() {
		return FormatNone, errors.Errorf("pixel: unknown format ordinal %d", o)
	}
	return f, nil
}

// BytesPerPixel returns the packed size of a single pixel, or 0 for
// FormatNone.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatL8:
		return 1
	case FormatLA88, FormatRGB565, FormatRGBA4444:
		return 2
	case FormatRGB888:
		return 3
	case FormatRGBA8888:
		return 4
	}
	return 0
}

// HasAlpha reports whether the format stores an alpha channel.
func (f Format) HasAlpha() bool {
	switch f {
	case FormatLA88, FormatRGBA4444, FormatRGBA8888:
		return true
	}
	return false
}

// Dithered reports whether the format reduces channel precision and so can
// be dithered.
func (f Format) Dithered() bool {
	return f == FormatRGB565 || f == FormatRGBA4444
}

// ParseFormat returns the format named s, case insensitively. The empty
// string and "none" both return FormatNone.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatNone, nil
	}
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(f), nil
		}
	}
	return FormatNone, errors.Errorf("pixel: unknown format %q", s)
}
