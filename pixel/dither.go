package pixel

import "github.com/bodgit/csimage/raster"

// Diffuse spreads the per-channel quantization error of pixel (x, y) into
// its unvisited neighbours using the Sierra-2-4A kernel:
//
//	    *   2
//	1   1        (1/4)
//
// Neighbours outside the raster are skipped and every channel is clamped to
// 0-255.
func Diffuse(m *raster.Image, x, y, er, eg, eb, ea int) {
	if x < m.Width-1 {
		i := (x + 1) + y*m.Width
		m.Pix[i] = applyError(m.Pix[i], 2, er, eg, eb, ea)
	}
	if y < m.Height-1 {
		i := x + (y+1)*m.Width
		m.Pix[i] = applyError(m.Pix[i], 1, er, eg, eb, ea)

		if x > 0 {
			i = (x - 1) + (y+1)*m.Width
			m.Pix[i] = applyError(m.Pix[i], 1, er, eg, eb, ea)
		}
	}
}

// applyError adds weight/4 of each error to the channels of p.
func applyError(p uint32, weight, er, eg, eb, ea int) uint32 {
	r, g, b, a := raster.Channels(p)
	return raster.Pixel(
		addError(r, weight, er),
		addError(g, weight, eg),
		addError(b, weight, eb),
		addError(a, weight, ea),
	)
}

func addError(c uint8, weight, e int) uint8 {
	v := (int(c)*4 + e*weight) / 4
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
