/*
Package payload implements the integrity checksum and optional compression
applied to the packed pixel data of a csimage container.

The checksum is the standard IEEE CRC-32 and is always taken over the
uncompressed bytes. Compression is zlib-wrapped DEFLATE at the default
level.
*/
package payload

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// Compression is the compression applied to a payload. The values are the
// ones stored in a container header.
type Compression int

const (
	CompressionNone    Compression = 0
	CompressionDeflate Compression = 1
)

// Supported reports whether c is a compression kind this package can apply.
func (c Compression) Supported() bool {
	return c == CompressionNone || c == CompressionDeflate
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionDeflate:
		return "deflate"
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// ParseCompression returns the compression named s. "zlib" is accepted as
// an alias for "deflate".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "deflate", "zlib":
		return CompressionDeflate, nil
	}
	return CompressionNone, errors.Errorf("payload: unknown compression %q", s)
}

var (
	// ErrUnsupportedCompression is returned for a compression kind other
	// than CompressionNone or CompressionDeflate.
	ErrUnsupportedCompression = errors.New("payload: unsupported compression")
	// ErrSize is returned when decompressed data is not the expected size.
	ErrSize = errors.New("payload: decompressed size mismatch")
)

// Checksum returns the CRC-32 of b.
func Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// Compress applies c to b. CompressionNone returns b unchanged. For an
// unsupported kind b is also returned unchanged, along with
// ErrUnsupportedCompression, so the caller can still store it uncompressed.
func Compress(c Compression, b []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return b, nil
	case CompressionDeflate:
		buf := bytes.NewBuffer(make([]byte, 0, len(b)))
		zw := zlib.NewWriter(buf)
		if _, err := zw.Write(b); err != nil {
			return nil, errors.Wrap(err, "payload: deflate")
		}
		if err := zw.Close(); err != nil {
			return nil, errors.Wrap(err, "payload: deflate")
		}
		return buf.Bytes(), nil
	}
	return b, errors.Wrapf(ErrUnsupportedCompression, "%s", c)
}

// Decompress reverses Compress. size is the expected uncompressed length.
func Decompress(c Compression, b []byte, size int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(b) != size {
			return nil, errors.Wrapf(ErrSize, "got %d bytes, want %d", len(b), size)
		}
		return b, nil
	case CompressionDeflate:
		zr, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, errors.Wrap(err, "payload: inflate")
		}
		defer zr.Close()

		out := make([]byte, size)
		if _, err := io.ReadFull(zr, out); err != nil {
			return nil, errors.Wrapf(ErrSize, "%v", err)
		}
		// Anything left over means the stored size was wrong
		if n, _ := zr.Read(make([]byte, 1)); n != 0 {
			return nil, errors.Wrap(ErrSize, "trailing data")
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedCompression, "%s", c)
}
