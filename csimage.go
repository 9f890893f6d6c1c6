/*
Package csimage converts decoded images into csimage texture containers.

A conversion premultiplies alpha if asked to, picks an output pixel format,
packs (and optionally dithers) the pixels, checksums and optionally
compresses the result and finally wraps it in a container. See the
container package for the binary layout.
*/
package csimage

// Converter runs conversions, reporting progress to its Reporter. A
// Converter holds no per-image state and can be shared between goroutines,
// each conversion owns the raster it is given.
type Converter struct {
	reporter Reporter
}

// New returns a Converter that reports to r. A nil r discards all reports.
func New(r Reporter) *Converter {
	if r == nil {
		r = Discard
	}
	return &Converter{
		reporter: r,
	}
}
