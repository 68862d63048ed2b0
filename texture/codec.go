package texture

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
)

const bytesPerPixel = 2

var (
	five2eight [1 << 5]uint8
	six2eight  [1 << 6]uint8
)

func init() {
	for i := range five2eight {
		five2eight[i] = uint8((i*255*2 + 31) / (31 * 2))
	}
	for i := range six2eight {
		six2eight[i] = uint8((i*255*2 + 63) / (63 * 2))
	}
}

// Round to nearest rather than truncate so that decoding and re-encoding a
// texture is lossless
func eight2five(v uint8) uint16 {
	return uint16((int(v)*31 + 127) / 255)
}

func eight2six(v uint8) uint16 {
	return uint16((int(v)*63 + 127) / 255)
}

func packRGB565(c color.NRGBA) uint16 {
	return eight2five(c.R)<<11 | eight2six(c.G)<<5 | eight2five(c.B)
}

func unpackRGB565(p uint16) color.NRGBA {
	return color.NRGBA{
		R: five2eight[p>>11],
		G: six2eight[p>>5&0x3f],
		B: five2eight[p&0x1f],
		A: 0xff,
	}
}

// Luminance uses the ITU-R BT.601 weights
func luminance(c color.NRGBA) uint8 {
	return uint8((299*int(c.R) + 587*int(c.G) + 114*int(c.B) + 500) / 1000)
}

func checkFormat(f Format) error {
	switch f {
	case RGB565, LA8:
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
}

// Encode converts m into a width by height tiled texture in format f, which
// must be either RGB565 or LA8. The bounds of m must match the dimensions.
func Encode(m image.Image, width, height int, f Format) ([]byte, error) {
	if err := checkFormat(f); err != nil {
		return nil, err
	}
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}

	b := m.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, fmt.Errorf("texture: image is wrong size, got %dx%d, want %dx%d", b.Dx(), b.Dy(), width, height)
	}

	out := make([]byte, width*height*bytesPerPixel)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := pixelIndex(x, y, width) * bytesPerPixel

			switch f {
			case RGB565:
				binary.LittleEndian.PutUint16(out[i:], packRGB565(c))
			case LA8:
				out[i+0] = c.A
				out[i+1] = luminance(c)
			}
		}
	}

	return out, nil
}

// Decode converts a width by height tiled texture in format f back into an
// image. The length of b must exactly match the dimensions.
func Decode(b []byte, width, height int, f Format) (*image.NRGBA, error) {
	if err := checkFormat(f); err != nil {
		return nil, err
	}
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if want := width * height * bytesPerPixel; len(b) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %dx%d %v", ErrInvalidChunkSize, len(b), want, width, height, f)
	}

	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := pixelIndex(x, y, width) * bytesPerPixel

			switch f {
			case RGB565:
				m.SetNRGBA(x, y, unpackRGB565(binary.LittleEndian.Uint16(b[i:])))
			case LA8:
				l := b[i+1]
				m.SetNRGBA(x, y, color.NRGBA{l, l, l, b[i+0]})
			}
		}
	}

	return m, nil
}
