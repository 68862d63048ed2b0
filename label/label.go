/*
Package label prepares the cartridge label artwork before it is encoded as a
texture.

Preparation is deliberately kept apart from the texture encoding: the source
image is scaled to fit the label texture without cropping, padded, flattened
onto an opaque background for formats without alpha and finally downscaled
for each mip level.
*/
package label

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/gift"
)

const (
	// Width is the width of the base label texture
	Width = 128
	// Height is the height of the base label texture
	Height = Width
)

// DefaultBackground matches the dark shell colour of the stock template
var DefaultBackground = color.NRGBA{50, 50, 70, 0xff}

func resize(src image.Image, width, height int) *image.NRGBA {
	g := gift.New(gift.Resize(width, height, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// Fit scales src to fit within width by height preserving the aspect ratio,
// centres it and pads the remaining area with bg. A nil bg leaves the
// padding transparent. Nothing is cropped.
func Fit(src image.Image, width, height int, bg color.Color) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if bg != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}

	b := src.Bounds()
	if b.Empty() {
		return dst
	}

	w, h := width, height
	if b.Dx()*height > b.Dy()*width {
		// Wider than the target
		if h = b.Dy() * width / b.Dx(); h < 1 {
			h = 1
		}
	} else {
		if w = b.Dx() * height / b.Dy(); w < 1 {
			w = 1
		}
	}

	scaled := resize(src, w, h)
	r := scaled.Bounds().Add(image.Pt((width-w)/2, (height-h)/2))
	draw.Draw(dst, r, scaled, scaled.Bounds().Min, draw.Over)

	return dst
}

// Flatten composites m over an opaque bg so that no transparency remains
func Flatten(m image.Image, bg color.Color) *image.NRGBA {
	r, g, b, _ := bg.RGBA()
	opaque := color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xff}

	dst := image.NewNRGBA(image.Rect(0, 0, m.Bounds().Dx(), m.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opaque), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), m, m.Bounds().Min, draw.Over)
	return dst
}

// Mips returns levels images where the first is base and each subsequent
// image halves the dimensions of the previous one. Every level is
// regenerated from base rather than from the level above it.
func Mips(base image.Image, levels int) []*image.NRGBA {
	b := base.Bounds()

	mips := make([]*image.NRGBA, 0, levels)
	for l := 0; l < levels; l++ {
		w, h := b.Dx()>>uint(l), b.Dy()>>uint(l)
		if w < 1 || h < 1 {
			break
		}
		if l == 0 {
			m := image.NewNRGBA(image.Rect(0, 0, w, h))
			draw.Draw(m, m.Bounds(), base, b.Min, draw.Src)
			mips = append(mips, m)
			continue
		}
		mips = append(mips, resize(base, w, h))
	}
	return mips
}
