package csimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bodgit/csimage/container"
	"github.com/bodgit/csimage/payload"
	"github.com/bodgit/csimage/pixel"
	"github.com/bodgit/csimage/raster"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu                      sync.Mutex
	infos, warnings, errors []string
}

func (r *recorder) add(s *[]string, format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*s = append(*s, fmt.Sprintf(format, v...))
}

func (r *recorder) Infof(format string, v ...interface{}) { r.add(&r.infos, format, v...) }

func (r *recorder) Warnf(format string, v ...interface{}) { r.add(&r.warnings, format, v...) }

func (r *recorder) Errorf(format string, v ...interface{}) { r.add(&r.errors, format, v...) }

var primaries = []byte{
	255, 0, 0, 255,
	0, 255, 0, 255,
	0, 0, 255, 255,
	255, 255, 0, 255,
}

func primaryImage(t *testing.T) *raster.Image {
	t.Helper()
	m, err := raster.New(2, 2, true)
	require.NoError(t, err)
	for i := range m.Pix {
		p := primaries[i*4:]
		m.Pix[i] = raster.Pixel(p[0], p[1], p[2], p[3])
	}
	return m
}

func TestConvertRGBA8888(t *testing.T) {
	var b bytes.Buffer
	res, err := New(nil).Encode(&b, primaryImage(t), Options{ForcedFormat: pixel.FormatRGBA8888})
	require.NoError(t, err)
	assert.Nil(t, res.CompressionErr)
	assert.Equal(t, pixel.FormatRGBA8888, res.Format)

	var h container.Header
	require.NoError(t, binary.Read(bytes.NewReader(b.Bytes()), binary.LittleEndian, &h))
	assert.Equal(t, container.Header{
		ByteOrderMark:    123456,
		Version:          3,
		Width:            2,
		Height:           2,
		Format:           pixel.FormatRGBA8888.Ordinal(),
		Compression:      0,
		Checksum:         int64(payload.Checksum(primaries)),
		UncompressedSize: 16,
		FinalSize:        16,
	}, h)
	assert.Equal(t, primaries, b.Bytes()[container.HeaderSize:])

	assert.Equal(t, int64(16), res.Stats.UncompressedSize)
	assert.Equal(t, int64(container.HeaderSize+16), res.Stats.FileSize)
}

func TestConvertDeflate(t *testing.T) {
	res, err := New(nil).Convert(primaryImage(t), Options{
		ForcedFormat: pixel.FormatRGBA8888,
		Compression:  payload.CompressionDeflate,
	})
	require.NoError(t, err)

	h := res.Container.Header
	assert.Equal(t, int32(1), h.Compression)
	assert.Equal(t, int32(16), h.UncompressedSize)
	assert.Equal(t, int32(len(res.Container.Payload)), h.FinalSize)
	assert.Equal(t, int64(payload.Checksum(primaries)), h.Checksum)

	px, err := res.Container.Pixels()
	require.NoError(t, err)
	assert.Equal(t, primaries, px)
}

func TestConvertUnsupportedCompression(t *testing.T) {
	r := new(recorder)
	res, err := New(r).Convert(primaryImage(t), Options{
		ForcedFormat: pixel.FormatRGBA8888,
		Compression:  payload.Compression(5),
	})
	require.NoError(t, err)
	require.Error(t, res.CompressionErr)

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(res.CompressionErr, &cfgErr))
	assert.True(t, errors.Is(res.CompressionErr, payload.ErrUnsupportedCompression))
	assert.Len(t, r.errors, 1)

	h := res.Container.Header
	assert.Equal(t, int32(0), h.Compression)
	assert.Equal(t, int32(16), h.FinalSize)
	assert.Equal(t, primaries, res.Container.Payload)
	assert.Equal(t, int64(payload.Checksum(primaries)), h.Checksum)
}

func TestConvertOddWidth(t *testing.T) {
	for _, f := range []pixel.Format{pixel.FormatRGB565, pixel.FormatRGBA4444} {
		m, err := raster.New(3, 2, false)
		require.NoError(t, err)

		r := new(recorder)
		res, err := New(r).Convert(m, Options{ForcedFormat: f, Dither: true})
		assert.Nil(t, res)

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), f.String())
		assert.True(t, errors.Is(err, pixel.ErrOddWidth))
		assert.Len(t, r.errors, 1)
	}
}

func TestConvertNoFormat(t *testing.T) {
	m, err := raster.New(2, 2, false)
	require.NoError(t, err)
	m.Kind = raster.Kind(42)

	_, err = New(nil).Convert(m, Options{})
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestConvertInvalidOptions(t *testing.T) {
	_, err := New(nil).Convert(primaryImage(t), Options{AlphaFormat: pixel.Format(-3)})
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestConvertPremultiply(t *testing.T) {
	m, err := raster.New(1, 1, true)
	require.NoError(t, err)
	m.Pix[0] = raster.Pixel(200, 100, 50, 128)

	res, err := New(nil).Convert(m, Options{Premultiply: true})
	require.NoError(t, err)
	assert.Equal(t, pixel.FormatRGBA8888, res.Format)
	assert.Equal(t, []byte{100, 50, 25, 128}, res.Container.Payload)

	// Without alpha the option has no effect
	m, err = raster.New(1, 1, false)
	require.NoError(t, err)
	m.Pix[0] = raster.Pixel(200, 100, 50, 128)

	res, err = New(nil).Convert(m, Options{Premultiply: true})
	require.NoError(t, err)
	assert.Equal(t, []byte{200, 100, 50}, res.Container.Payload)
}

func TestConvertDitherDeterministic(t *testing.T) {
	src, err := raster.New(32, 16, true)
	require.NoError(t, err)
	for i := range src.Pix {
		src.Pix[i] = raster.Pixel(uint8(i*3), uint8(i*5), uint8(i*7), uint8(255-i%64))
	}

	o := Options{ForcedFormat: pixel.FormatRGBA4444, Dither: true, Compression: payload.CompressionDeflate}

	var a, b bytes.Buffer
	_, err = New(nil).Encode(&a, src.Clone(), o)
	require.NoError(t, err)
	_, err = New(nil).Encode(&b, src.Clone(), o)
	require.NoError(t, err)
	assert.Equal(t, a.Bytes(), b.Bytes())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncodeWriteError(t *testing.T) {
	_, err := New(nil).Encode(failingWriter{}, primaryImage(t), Options{})
	var ioErr *IOError
	assert.True(t, errors.As(err, &ioErr))
}

func writePNG(t *testing.T, file string, m image.Image) {
	t.Helper()
	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")

	m := image.NewGray(image.Rect(0, 0, 4, 2))
	for i := range m.Pix {
		m.Pix[i] = uint8(i * 30)
	}
	writePNG(t, src, m)

	dst := filepath.Join(dir, "out.csimage")
	res, err := New(nil).ConvertFile(src, dst, Options{Compression: payload.CompressionDeflate})
	require.NoError(t, err)
	assert.Equal(t, pixel.FormatL8, res.Format)
	assert.Equal(t, dst, res.Stats.Path)
	assert.True(t, res.Stats.SourceSize > 0)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, res.Stats.FileSize, int64(len(b)))

	ct := new(container.Container)
	require.NoError(t, ct.UnmarshalBinary(b))
	px, err := ct.Pixels()
	require.NoError(t, err)
	assert.Equal(t, m.Pix, px)

	// No temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestConvertFileOpaqueRGB(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")

	m := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	m.SetNRGBA(0, 0, color.NRGBA{200, 100, 50, 255})
	m.SetNRGBA(1, 0, color.NRGBA{10, 20, 30, 255})
	m.SetNRGBA(0, 1, color.NRGBA{0, 0, 0, 255})
	m.SetNRGBA(1, 1, color.NRGBA{255, 255, 255, 255})
	writePNG(t, src, m)

	rgb := []byte{200, 100, 50, 10, 20, 30, 0, 0, 0, 255, 255, 255}

	for _, tc := range []struct {
		name string
		o    Options
		want pixel.Format
	}{
		{"native", Options{}, pixel.FormatRGB888},
		{"premultiply", Options{Premultiply: true}, pixel.FormatRGB888},
		{"no alpha format", Options{AlphaFormat: pixel.FormatRGBA4444, NoAlphaFormat: pixel.FormatRGB565}, pixel.FormatRGB565},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := New(nil).ConvertFile(src, filepath.Join(dir, tc.name+".csimage"), tc.o)
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Format)

			if tc.want == pixel.FormatRGB888 {
				px, err := res.Container.Pixels()
				require.NoError(t, err)
				assert.Equal(t, rgb, px)
			}
		})
	}
}

func TestConvertFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := New(nil).ConvertFile(filepath.Join(dir, "missing.png"), filepath.Join(dir, "out.csimage"), Options{})
	var decErr *DecodeError
	assert.True(t, errors.As(err, &decErr))

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a png"), 0644))
	_, err = New(nil).ConvertFile(garbage, filepath.Join(dir, "out.csimage"), Options{})
	assert.True(t, errors.As(err, &decErr))

	src := filepath.Join(dir, "in.png")
	m := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	m.SetNRGBA(0, 0, color.NRGBA{R: 1, A: 1})
	writePNG(t, src, m)

	_, err = New(nil).ConvertFile(src, filepath.Join(dir, "nope", "out.csimage"), Options{})
	var ioErr *IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestStatsWriteTo(t *testing.T) {
	var b bytes.Buffer
	_, err := Stats{Path: "a.csimage", SourceSize: 1, UncompressedSize: 1024, FileSize: 1025}.WriteTo(&b)
	require.NoError(t, err)
	assert.Equal(t, "CSImage: a.csimage\nSource File Size: 1 KB\nCSImage Uncompressed Size: 1 KB\nCSImage File Size: 2 KB\n\n", b.String())
}
