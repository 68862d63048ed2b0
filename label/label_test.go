package label

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{0xff, 0x00, 0x00, 0xff}
	blue = color.NRGBA{0x00, 0x00, 0xff, 0xff}
)

func uniform(width, height int, c color.Color) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(m, m.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return m
}

func assertColor(t *testing.T, expected color.NRGBA, actual color.Color, delta float64) {
	t.Helper()
	c := color.NRGBAModel.Convert(actual).(color.NRGBA)
	assert.InDelta(t, expected.R, c.R, delta)
	assert.InDelta(t, expected.G, c.G, delta)
	assert.InDelta(t, expected.B, c.B, delta)
	assert.InDelta(t, expected.A, c.A, delta)
}

func TestFit(t *testing.T) {
	tables := []struct {
		name       string
		src        image.Image
		inside     image.Point
		outside    image.Point
		background color.Color
	}{
		{
			name:       "wide",
			src:        uniform(64, 16, red),
			inside:     image.Pt(64, 64),
			outside:    image.Pt(64, 10),
			background: blue,
		},
		{
			name:       "tall",
			src:        uniform(16, 64, red),
			inside:     image.Pt(64, 64),
			outside:    image.Pt(10, 64),
			background: blue,
		},
		{
			name:       "offset",
			src:        uniform(64, 16, red).SubImage(image.Rect(8, 4, 40, 12)),
			inside:     image.Pt(64, 64),
			outside:    image.Pt(64, 10),
			background: blue,
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			m := Fit(table.src, Width, Height, table.background)
			assert.Equal(t, image.Rect(0, 0, Width, Height), m.Bounds())
			assertColor(t, red, m.At(table.inside.X, table.inside.Y), 2)
			assertColor(t, blue, m.At(table.outside.X, table.outside.Y), 0)
		})
	}
}

func TestFitSquare(t *testing.T) {
	m := Fit(uniform(16, 16, red), Width, Height, blue)
	for _, p := range []image.Point{{0, 0}, {127, 0}, {64, 64}, {0, 127}, {127, 127}} {
		assertColor(t, red, m.At(p.X, p.Y), 2)
	}
}

func TestFitTransparentPadding(t *testing.T) {
	m := Fit(uniform(64, 16, red), Width, Height, nil)
	assert.Equal(t, uint8(0), m.NRGBAAt(64, 2).A)
	assert.Equal(t, uint8(0xff), m.NRGBAAt(64, 64).A)
}

func TestFitEmpty(t *testing.T) {
	m := Fit(image.NewNRGBA(image.Rectangle{}), 8, 8, blue)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			assertColor(t, blue, m.At(x, y), 0)
		}
	}
}

func TestFlatten(t *testing.T) {
	m := image.NewNRGBA(image.Rect(4, 4, 12, 12))
	m.SetNRGBA(4, 4, red)
	m.SetNRGBA(5, 4, color.NRGBA{0xff, 0x00, 0x00, 0x80})

	f := Flatten(m, DefaultBackground)
	require.Equal(t, image.Rect(0, 0, 8, 8), f.Bounds())

	assertColor(t, red, f.At(0, 0), 0)
	assertColor(t, DefaultBackground, f.At(7, 7), 0)

	half := f.NRGBAAt(1, 0)
	assert.Equal(t, uint8(0xff), half.A)
	assert.InDelta(t, (0xff+50)/2, half.R, 2)

	for i := 3; i < len(f.Pix); i += 4 {
		assert.Equal(t, uint8(0xff), f.Pix[i])
	}
}

func TestFlattenIgnoresBackgroundAlpha(t *testing.T) {
	f := Flatten(image.NewNRGBA(image.Rect(0, 0, 1, 1)), color.NRGBA{10, 20, 30, 0})
	assert.Equal(t, color.NRGBA{10, 20, 30, 0xff}, f.NRGBAAt(0, 0))
}

func TestMips(t *testing.T) {
	base := uniform(Width, Height, red)

	mips := Mips(base, 4)
	require.Len(t, mips, 4)
	for i, m := range mips {
		assert.Equal(t, image.Rect(0, 0, Width>>uint(i), Height>>uint(i)), m.Bounds())
		assertColor(t, red, m.At(m.Bounds().Dx()/2, m.Bounds().Dy()/2), 2)
	}

	// The base level is a copy
	mips[0].SetNRGBA(0, 0, blue)
	assertColor(t, red, base.At(0, 0), 0)
}

func TestMipsStopsAtOnePixel(t *testing.T) {
	mips := Mips(uniform(8, 8, red), 10)
	require.Len(t, mips, 4)
	assert.Equal(t, image.Rect(0, 0, 1, 1), mips[3].Bounds())
}

func TestDominant(t *testing.T) {
	m := uniform(16, 16, red)
	draw.Draw(m, image.Rect(0, 0, 16, 4), image.NewUniform(blue), image.Point{}, draw.Src)

	assertColor(t, red, Dominant(m), 8)
}

func TestDominantIgnoresTransparent(t *testing.T) {
	m := uniform(16, 16, color.NRGBA{0x00, 0xff, 0x00, 0x00})
	draw.Draw(m, image.Rect(0, 0, 4, 4), image.NewUniform(blue), image.Point{}, draw.Src)

	assertColor(t, blue, Dominant(m), 8)
}

func TestDominantTransparent(t *testing.T) {
	assert.Equal(t, DefaultBackground, Dominant(image.NewNRGBA(image.Rect(0, 0, 8, 8))))
}
