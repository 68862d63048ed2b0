package texture

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
)

const etc1BlockBytes = 8

// ETC1 modifier for table 0 with all selector bits clear
const etc1Modifier = 2

func expand5(v int) int {
	return v<<3 | v>>2
}

func clamp8(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return v
}

// Pick the 5-bit base value whose decoded result is closest to v
func etc1Base(v uint8) uint64 {
	best, bestDiff := 0, 256
	for q := 0; q < 32; q++ {
		d := clamp8(expand5(q)+etc1Modifier) - int(v)
		if d < 0 {
			d = -d
		}
		if d < bestDiff {
			best, bestDiff = q, d
		}
	}
	return uint64(best)
}

// etc1Solid returns a differential mode ETC1 block where both sub-blocks
// share the same base colour and every selector is zero
func etc1Solid(c color.NRGBA) []byte {
	hi := etc1Base(c.R)<<27 | etc1Base(c.G)<<19 | etc1Base(c.B)<<11 | 1<<1
	b := make([]byte, etc1BlockBytes)
	binary.LittleEndian.PutUint64(b, hi<<32)
	return b
}

// Solid returns a width by height texture in format f filled with c. Unlike
// Encode this also supports ETC1 and ETC1A4.
func Solid(width, height int, f Format, c color.Color) ([]byte, error) {
	n, err := Size(width, height, f)
	if err != nil {
		return nil, err
	}

	nc := color.NRGBAModel.Convert(c).(color.NRGBA)

	switch f {
	case RGB565, LA8:
		m := image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(m, m.Bounds(), image.NewUniform(nc), image.Point{}, draw.Src)
		return Encode(m, width, height, f)
	case ETC1:
		return repeat(etc1Solid(nc), n), nil
	case ETC1A4:
		a := uint64((int(nc.A)*15 + 127) / 255)
		alpha := make([]byte, 8)
		var v uint64
		for i := 0; i < 16; i++ {
			v |= a << uint(i*4)
		}
		binary.LittleEndian.PutUint64(alpha, v)
		return repeat(append(alpha, etc1Solid(nc)...), n), nil
	default:
		return nil, checkFormat(f)
	}
}

func repeat(block []byte, n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		out = append(out, block...)
	}
	return out
}
