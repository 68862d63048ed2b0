package label

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

const (
	dominantColors = 4
	opaqueAlpha    = 0x80
)

// Dominant returns the most common colour in m after reducing it to a small
// palette. Mostly transparent pixels are ignored. If there are no opaque
// pixels DefaultBackground is returned.
func Dominant(m image.Image) color.NRGBA {
	if !hasOpaque(m) {
		return DefaultBackground
	}

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, dominantColors), m)
	if len(p) == 0 {
		return DefaultBackground
	}

	counts := make([]int, len(p))
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := m.At(x, y)
			if !opaque(c) {
				continue
			}
			counts[p.Index(c)]++
		}
	}

	best := -1
	for i, n := range counts {
		if n > 0 && (best < 0 || n > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return DefaultBackground
	}

	c := color.NRGBAModel.Convert(p[best]).(color.NRGBA)
	c.A = 0xff
	return c
}

func opaque(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a>>8 >= opaqueAlpha
}

func hasOpaque(m image.Image) bool {
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if opaque(m.At(x, y)) {
				return true
			}
		}
	}
	return false
}
