package raster

import (
	"bufio"
	"bytes"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	pngSignature    = "\x89PNG\r\n\x1a\n"
	pngColorTypeOff = 25
	pngGrayAlpha    = 4
)

// sniffKind peeks at the start of the stream to find representations the
// standard library decoders flatten away. The only one that matters is PNG
// gray+alpha which is otherwise decoded as NRGBA.
func sniffKind(r *bufio.Reader) Kind {
	b, err := r.Peek(pngColorTypeOff + 1)
	if err != nil {
		return KindColor
	}
	if !bytes.HasPrefix(b, []byte(pngSignature)) || string(b[12:16]) != "IHDR" {
		return KindColor
	}
	if b[pngColorTypeOff] == pngGrayAlpha {
		return KindGrayAlpha
	}
	return KindColor
}

// Decode reads an image in any registered format from r and returns it as a
// raster together with the format name.
func Decode(r io.Reader) (*Image, string, error) {
	br := bufio.NewReader(r)
	kind := sniffKind(br)

	m, name, err := image.Decode(br)
	if err != nil {
		return nil, "", errors.Wrap(err, "raster: decode")
	}

	dst, err := FromImage(m, kind)
	if err != nil {
		return nil, "", err
	}
	return dst, name, nil
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return m, nil
}
