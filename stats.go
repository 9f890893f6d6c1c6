package csimage

import (
	"fmt"
	"io"
)

// Stats are the sizes involved in a single conversion.
type Stats struct {
	// Path is the destination, if written to a file.
	Path string
	// SourceSize is the size of the encoded source image, if known.
	SourceSize int64
	// UncompressedSize is the size of the packed pixel data.
	UncompressedSize int64
	// FileSize is the size of the container including its header.
	FileSize int64
}

func kb(n int64) int64 {
	return (n + 1023) / 1024
}

// WriteTo writes a human readable summary to w, sizes are rounded up to the
// nearest KB.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "CSImage: %s\nSource File Size: %d KB\nCSImage Uncompressed Size: %d KB\nCSImage File Size: %d KB\n\n",
		s.Path, kb(s.SourceSize), kb(s.UncompressedSize), kb(s.FileSize))
	return int64(n), err
}
