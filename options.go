package csimage

import (
	"fmt"

	"github.com/bodgit/csimage/payload"
	"github.com/bodgit/csimage/pixel"
	"github.com/pkg/errors"
)

// Options control a conversion. The zero value converts to the format
// matching the source representation with no premultiplication, dithering
// or compression.
type Options struct {
	// ForcedFormat, if set, is used regardless of the source image.
	ForcedFormat pixel.Format
	// AlphaFormat is used for sources with an alpha channel.
	AlphaFormat pixel.Format
	// NoAlphaFormat is used for sources without an alpha channel.
	NoAlphaFormat pixel.Format

	Premultiply bool
	// Dither enables error diffusion, it only affects RGB565 and RGBA4444.
	Dither bool

	Compression payload.Compression

	// Stats asks the caller to print size statistics, the converter
	// always fills them in.
	Stats bool
}

func (o Options) validate() error {
	for _, f := range []struct {
		name   string
		format pixel.Format
	}{
		{"forced", o.ForcedFormat},
		{"alpha", o.AlphaFormat},
		{"no alpha", o.NoAlphaFormat},
	} {
		if !f.format.Valid() {
			return errors.Errorf("invalid %s format %s", f.name, f.format)
		}
	}
	return nil
}

// String returns a canonical description of the options that affect the
// container contents.
func (o Options) String() string {
	return fmt.Sprintf("format=%s,alpha=%s,noalpha=%s,premultiply=%t,dither=%t,compression=%s",
		o.ForcedFormat, o.AlphaFormat, o.NoAlphaFormat, o.Premultiply, o.Dither, o.Compression)
}
