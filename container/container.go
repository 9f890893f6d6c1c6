/*
Package container implements the csimage container format.

A container is a fixed 40 byte little-endian header followed by the pixel
payload:

	offset  size  field
	0       4     byte order mark, always 123456
	4       4     version, currently 3
	8       4     width in pixels
	12      4     height in pixels
	16      4     pixel format ordinal
	20      4     compression, 0 for none or 1 for zlib
	24      8     CRC-32 of the uncompressed payload, zero extended
	32      4     uncompressed payload size
	36      4     stored payload size
	40      -     payload

The checksum always covers the uncompressed payload so it can be verified
after inflating.
*/
package container

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/bodgit/csimage/payload"
	"github.com/bodgit/csimage/pixel"
	"github.com/bodgit/csimage/raster"
	"github.com/pkg/errors"
)

const (
	// ByteOrderMark is the sentinel at the start of every container.
	ByteOrderMark = 123456
	// Version is the container version written by this package.
	Version = 3
	// HeaderSize is the size in bytes of the fixed header.
	HeaderSize = 40
	// MaxPayloadSize is the largest uncompressed payload Read accepts.
	MaxPayloadSize = 1 << 28
)

var (
	ErrByteOrder          = errors.New("container: bad byte order mark")
	ErrVersion            = errors.New("container: unsupported version")
	ErrUnknownFormat      = errors.New("container: unknown pixel format")
	ErrUnknownCompression = errors.New("container: unknown compression")
	ErrChecksum           = errors.New("container: checksum mismatch")
	ErrTruncated          = errors.New("container: truncated payload")
	ErrSize               = errors.New("container: payload size does not match header")
)

// Header is the fixed header in wire order.
type Header struct {
	ByteOrderMark    int32
	Version          int32
	Width            int32
	Height           int32
	Format           int32
	Compression      int32
	Checksum         int64
	UncompressedSize int32
	FinalSize        int32
}

// Container is a header together with its payload. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type Container struct {
	Header  Header
	Payload []byte
}

// New returns a container for data, which is the possibly compressed
// payload. checksum and uncompressedSize describe the payload before
// compression.
func New(width, height int, f pixel.Format, c payload.Compression, checksum uint32, uncompressedSize int, data []byte) *Container {
	return &Container{
		Header: Header{
			ByteOrderMark:    ByteOrderMark,
			Version:          Version,
			Width:            int32(width),
			Height:           int32(height),
			Format:           f.Ordinal(),
			Compression:      int32(c),
			Checksum:         int64(checksum),
			UncompressedSize: int32(uncompressedSize),
			FinalSize:        int32(len(data)),
		},
		Payload: data,
	}
}

// Format returns the pixel format named in the header.
func (c *Container) Format() (pixel.Format, error) {
	f, err := pixel.FormatFromOrdinal(c.Header.Format)
	if err != nil {
		return pixel.FormatNone, errors.Wrapf(ErrUnknownFormat, "ordinal %d", c.Header.Format)
	}
	return f, nil
}

// Compression returns the compression named in the header.
func (c *Container) Compression() (payload.Compression, error) {
	comp := payload.Compression(c.Header.Compression)
	if !comp.Supported() {
		return payload.CompressionNone, errors.Wrapf(ErrUnknownCompression, "%d", c.Header.Compression)
	}
	return comp, nil
}

// MarshalBinary encodes the container into binary form and returns the
// result.
func (c *Container) MarshalBinary() ([]byte, error) {
	if int(c.Header.FinalSize) != len(c.Payload) {
		return nil, errors.Wrapf(ErrTruncated, "header says %d bytes, have %d", c.Header.FinalSize, len(c.Payload))
	}

	b := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(c.Payload)))
	if err := binary.Write(b, binary.LittleEndian, &c.Header); err != nil {
		return nil, err
	}
	if _, err := b.Write(c.Payload); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// WriteTo writes the header and payload to w with a single Write so a
// writer never sees a header without its payload.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	b, err := c.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

func (h *Header) validate() error {
	if h.ByteOrderMark != ByteOrderMark {
		return errors.Wrapf(ErrByteOrder, "got %d", h.ByteOrderMark)
	}
	if h.Version != Version {
		return errors.Wrapf(ErrVersion, "got %d", h.Version)
	}
	if h.Width <= 0 || h.Height <= 0 || h.FinalSize < 0 || h.UncompressedSize < 0 {
		return errors.New("container: invalid header")
	}

	f, err := pixel.FormatFromOrdinal(h.Format)
	if err != nil {
		return errors.Wrapf(ErrUnknownFormat, "ordinal %d", h.Format)
	}
	comp := payload.Compression(h.Compression)
	if !comp.Supported() {
		return errors.Wrapf(ErrUnknownCompression, "%d", h.Compression)
	}

	// Check the pixel count first so the byte count cannot overflow
	pixels := int64(h.Width) * int64(h.Height)
	if pixels > MaxPayloadSize {
		return errors.Wrapf(ErrSize, "%dx%d image is too large", h.Width, h.Height)
	}
	size := pixels * int64(f.BytesPerPixel())
	if size > MaxPayloadSize {
		return errors.Wrapf(ErrSize, "%d byte payload is too large", size)
	}
	if size != int64(h.UncompressedSize) {
		return errors.Wrapf(ErrSize, "%dx%d %s needs %d bytes, header says %d", h.Width, h.Height, f, size, h.UncompressedSize)
	}

	switch comp {
	case payload.CompressionNone:
		if h.FinalSize != h.UncompressedSize {
			return errors.Wrapf(ErrSize, "uncompressed payload is %d bytes, header says %d", h.FinalSize, h.UncompressedSize)
		}
	default:
		if h.FinalSize > MaxPayloadSize {
			return errors.Wrapf(ErrSize, "%d byte stored payload is too large", h.FinalSize)
		}
	}

	return nil
}

func readHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Header{}, err
	}
	return h, h.validate()
}

// Read reads a container from r. The byte order mark and version are
// checked before anything else in the header is trusted, and the sizes in
// the header must agree with the dimensions and pixel format before any
// payload is read.
func Read(r io.Reader) (*Container, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	// The buffer grows with the data actually present
	b, err := io.ReadAll(io.LimitReader(r, int64(h.FinalSize)))
	if err != nil {
		return nil, errors.Wrapf(ErrTruncated, "%v", err)
	}
	if len(b) != int(h.FinalSize) {
		return nil, errors.Wrapf(ErrTruncated, "got %d bytes, want %d", len(b), h.FinalSize)
	}

	return &Container{Header: h, Payload: b}, nil
}

// UnmarshalBinary decodes the container from binary form.
func (c *Container) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)
	dup, err := Read(r)
	if err != nil {
		return err
	}
	if r.Len() != 0 {
		return errors.New("container: trailing data")
	}
	*c = *dup
	return nil
}

// HasChecksum reports whether the header records a checksum. Uncompressed
// containers with a zero checksum were written by tools that only
// checksummed compressed payloads.
func (h *Header) HasChecksum() bool {
	return h.Checksum != 0 || payload.Compression(h.Compression) != payload.CompressionNone
}

// Pixels returns the uncompressed payload after verifying its checksum.
// Payloads without a recorded checksum are accepted unverified.
func (c *Container) Pixels() ([]byte, error) {
	comp, err := c.Compression()
	if err != nil {
		return nil, err
	}

	b, err := payload.Decompress(comp, c.Payload, int(c.Header.UncompressedSize))
	if err != nil {
		return nil, err
	}

	if !c.Header.HasChecksum() {
		return b, nil
	}

	if sum := int64(payload.Checksum(b)); sum != c.Header.Checksum {
		return nil, errors.Wrapf(ErrChecksum, "got %08x, want %08x", sum, c.Header.Checksum)
	}

	return b, nil
}

// Raster unpacks the payload into a raster.
func (c *Container) Raster() (*raster.Image, error) {
	f, err := c.Format()
	if err != nil {
		return nil, err
	}
	b, err := c.Pixels()
	if err != nil {
		return nil, err
	}
	return pixel.Unpack(b, int(c.Header.Width), int(c.Header.Height), f)
}
