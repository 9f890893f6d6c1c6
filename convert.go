package csimage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/csimage/container"
	"github.com/bodgit/csimage/payload"
	"github.com/bodgit/csimage/pixel"
	"github.com/bodgit/csimage/raster"
	"github.com/pkg/errors"
)

var errNoFormat = errors.New("no output format matches the options and image")

// Result is the outcome of a successful conversion.
type Result struct {
	Container *container.Container
	Format    pixel.Format
	Stats     Stats

	// CompressionErr is set if the requested compression was not
	// supported. The container is still usable but holds the payload
	// uncompressed.
	CompressionErr error
}

func (c *Converter) configError(err error) error {
	c.reporter.Errorf("%v", err)
	return &ConfigurationError{Err: err}
}

// Convert converts m into a container. m is modified in place if
// premultiplication or dithering is applied.
func (c *Converter) Convert(m *raster.Image, o Options) (*Result, error) {
	if err := o.validate(); err != nil {
		return nil, c.configError(err)
	}

	if m.HasAlpha && o.Premultiply {
		c.reporter.Infof("Premultiplying alpha")
		m.Premultiply()
	}

	f := ResolveFormat(o, m)
	if f == pixel.FormatNone {
		return nil, c.configError(errNoFormat)
	}

	c.reporter.Infof("Converting %dx%d %s image to %s", m.Width, m.Height, m.Kind, f)
	if o.Dither && f.Dithered() {
		c.reporter.Infof("Dithering")
	}

	data, err := pixel.Pack(m, f, o.Dither)
	if err != nil {
		return nil, c.configError(err)
	}

	checksum := payload.Checksum(data)

	comp := o.Compression
	out, err := payload.Compress(comp, data)
	var compErr error
	switch {
	case errors.Is(err, payload.ErrUnsupportedCompression):
		c.reporter.Errorf("%v, image will not be compressed", err)
		compErr = &ConfigurationError{Err: err}
		comp, out = payload.CompressionNone, data
	case err != nil:
		c.reporter.Errorf("%v", err)
		return nil, err
	case comp != payload.CompressionNone:
		c.reporter.Infof("Compressed %d bytes to %d", len(data), len(out))
	}

	return &Result{
		Container: container.New(m.Width, m.Height, f, comp, checksum, len(data), out),
		Format:    f,
		Stats: Stats{
			UncompressedSize: int64(len(data)),
			FileSize:         int64(container.HeaderSize + len(out)),
		},
		CompressionErr: compErr,
	}, nil
}

func (c *Converter) reportHeader(ct *container.Container) {
	h := ct.Header
	c.reporter.Infof("Wrote container: version %d, %dx%d, format %d, compression %d, checksum %08x, size %d/%d",
		h.Version, h.Width, h.Height, h.Format, h.Compression, h.Checksum, h.UncompressedSize, h.FinalSize)
}

// Encode converts m and writes the container to w.
func (c *Converter) Encode(w io.Writer, m *raster.Image, o Options) (*Result, error) {
	res, err := c.Convert(m, o)
	if err != nil {
		return nil, err
	}

	if _, err := res.Container.WriteTo(w); err != nil {
		c.reporter.Errorf("cannot write container: %v", err)
		return nil, &IOError{Err: err}
	}
	c.reportHeader(res.Container)

	return res, nil
}

// ConvertFile decodes the image at src, converts it and writes the
// container to dst. dst is replaced atomically so it is never left holding
// a partial container.
func (c *Converter) ConvertFile(src, dst string, o Options) (*Result, error) {
	c.reporter.Infof("Input file: %s", src)

	info, err := os.Stat(src)
	if err != nil {
		c.reporter.Errorf("cannot load %s: %v", src, err)
		return nil, &DecodeError{Path: src, Err: err}
	}

	m, err := raster.DecodeFile(src)
	if err != nil {
		c.reporter.Errorf("cannot load %s: %v", src, err)
		return nil, &DecodeError{Path: src, Err: err}
	}

	res, err := c.Convert(m, o)
	if err != nil {
		return nil, err
	}

	c.reporter.Infof("Output file: %s", dst)
	if err := writeFile(dst, res.Container); err != nil {
		c.reporter.Errorf("cannot write %s: %v", dst, err)
		return nil, &IOError{Path: dst, Err: err}
	}
	c.reportHeader(res.Container)

	res.Stats.Path = dst
	res.Stats.SourceSize = info.Size()

	return res, nil
}

func writeFile(path string, ct *container.Container) error {
	b, err := ct.MarshalBinary()
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}

	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return err
	}

	return nil
}
