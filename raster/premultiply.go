package raster

// Premultiply scales the red, green and blue channels of every sample by its
// alpha, truncating. Alpha itself is unchanged. It is a no-op for rasters
// without alpha.
func (m *Image) Premultiply() {
	if !m.HasAlpha {
		return
	}
	for i, p := range m.Pix {
		r, g, b, a := Channels(p)
		m.Pix[i] = Pixel(premultiply(r, a), premultiply(g, a), premultiply(b, a), a)
	}
}

func premultiply(c, a uint8) uint8 {
	return uint8(int(c) * int(a) / 255)
}
