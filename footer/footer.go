// Package footer lays out and renders the title and subtitle text shown
// beneath the cartridge on the banner.
package footer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// Width is the width of the footer texture
	Width = 256
	// Height is the height of the footer texture
	Height = 64

	// TitleSize is the title font size in pixels
	TitleSize = 16
	// SubtitleSize is the subtitle font size in pixels
	SubtitleSize = 12

	// Inset is the horizontal margin either side of the text box when the
	// canvas is too small to hold TitleBox
	Inset = 8
	// MaxTitleLines is the number of lines the title may wrap onto
	MaxTitleLines = 2
	// LineHeight is the height of the cell each title line is drawn in
	LineHeight = 24
	// SubtitleHeight is the height of the band reserved for the subtitle
	SubtitleHeight = 16

	gap = 4
	dpi = 72

	ellipsis = "…"
)

var (
	// ErrFont is returned when a font cannot be parsed
	ErrFont = errors.New("footer: unable to load font")

	// TitleBox is the span of the stock footer artwork that text is
	// wrapped and centred within, 148 pixels wide and centred on x=172.
	// Only the horizontal extent is used, text is laid out over the full
	// height of the canvas.
	TitleBox = image.Rect(98, 0, 246, Height)

	// ClearBox is the rounded panel of the stock footer artwork that holds
	// the title text
	ClearBox = image.Rect(95, 5, 250, 59)

	defaultTitleColor    = color.NRGBA{32, 32, 32, 0xff}
	defaultSubtitleColor = color.NRGBA{40, 40, 40, 0xff}
)

// Layout describes where the text was placed
type Layout struct {
	// Lines holds the title lines as drawn, including any ellipsis
	Lines []string
	// Subtitle is the subtitle as drawn, empty if there was none or it
	// was dropped
	Subtitle string
	// SubtitleDropped is set when a subtitle was supplied but there was no
	// room to draw it
	SubtitleDropped bool
	// Truncated is set when the title did not fit and was shortened
	Truncated bool

	top, height int
	box         image.Rectangle
}

// Renderer draws footers with a fixed pair of font faces. A Renderer is not
// safe for concurrent use.
type Renderer struct {
	title, subtitle font.Face

	TitleColor    color.Color
	SubtitleColor color.Color
	// Box is where text is wrapped and centred, defaults to TitleBox
	Box image.Rectangle
}

// New returns a Renderer using the bundled Go Regular font
func New() (*Renderer, error) {
	return NewFromFont(goregular.TTF)
}

// NewFromFont returns a Renderer using the TrueType or OpenType font in b
func NewFromFont(b []byte) (*Renderer, error) {
	f, err := opentype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFont, err)
	}

	title, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    TitleSize,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFont, err)
	}

	subtitle, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    SubtitleSize,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		title.Close()
		return nil, fmt.Errorf("%w: %v", ErrFont, err)
	}

	return &Renderer{
		title:         title,
		subtitle:      subtitle,
		TitleColor:    defaultTitleColor,
		SubtitleColor: defaultSubtitleColor,
		Box:           TitleBox,
	}, nil
}

// Close releases the font faces
func (r *Renderer) Close() error {
	if err := r.title.Close(); err != nil {
		return err
	}
	return r.subtitle.Close()
}

func (r *Renderer) wrap(words []string, limit fixed.Int26_6) []string {
	var lines []string
	current := ""
	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		if candidate := current + " " + word; font.MeasureString(r.title, candidate) <= limit {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// ellipsize shortens s at a word boundary, or failing that a rune boundary,
// until it fits within limit with an ellipsis appended
func ellipsize(face font.Face, s string, limit fixed.Int26_6) string {
	s = strings.TrimSpace(s)
	for s != "" && font.MeasureString(face, s+ellipsis) > limit {
		if i := strings.LastIndexByte(s, ' '); i > 0 {
			s = strings.TrimRight(s[:i], " ")
			continue
		}
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s + ellipsis
}

func clampSize(width, height int) (int, int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return width, height
}

// box returns the horizontal span text is laid out in, falling back to the
// inset canvas when the configured box doesn't fit
func (r *Renderer) box(width, height int) image.Rectangle {
	box := image.Rect(r.Box.Min.X, 0, r.Box.Max.X, height)
	if !box.Empty() && box.In(image.Rect(0, 0, width, height)) {
		return box
	}
	return image.Rectangle{Min: image.Pt(Inset, 0), Max: image.Pt(width-Inset, height)}
}

// Layout works out how title and subtitle fit on a width by height canvas
// without drawing anything
func (r *Renderer) Layout(title, subtitle string, width, height int) *Layout {
	width, height = clampSize(width, height)

	l := &Layout{height: height, box: r.box(width, height)}
	limit := fixed.I(l.box.Dx())

	lines := r.wrap(strings.Fields(title), limit)
	if len(lines) > MaxTitleLines {
		lines = lines[:MaxTitleLines]
		lines[MaxTitleLines-1] = ellipsize(r.title, lines[MaxTitleLines-1], limit)
		l.Truncated = true
	}
	for i, line := range lines {
		if font.MeasureString(r.title, line) > limit {
			lines[i] = ellipsize(r.title, line, limit)
			l.Truncated = true
		}
	}
	l.Lines = lines

	area := height
	if subtitle = strings.Join(strings.Fields(subtitle), " "); subtitle != "" {
		area -= SubtitleHeight
		if len(lines)*LineHeight+gap+SubtitleHeight <= height {
			if font.MeasureString(r.subtitle, subtitle) > limit {
				subtitle = ellipsize(r.subtitle, subtitle, limit)
			}
			l.Subtitle = subtitle
		} else {
			l.SubtitleDropped = true
		}
	}
	l.top = (area - len(lines)*LineHeight) / 2

	return l
}

// Box returns the area text is drawn in
func (l *Layout) Box() image.Rectangle {
	return l.box
}

// TitleCell returns the cell title line i is drawn in. Drawing is clipped
// to the cell and to the canvas.
func (l *Layout) TitleCell(i int) image.Rectangle {
	y := l.top + i*LineHeight
	return image.Rect(l.box.Min.X, y, l.box.Max.X, y+LineHeight)
}

// SubtitleCell returns the band the subtitle is drawn in
func (l *Layout) SubtitleCell() image.Rectangle {
	return image.Rect(l.box.Min.X, l.height-SubtitleHeight, l.box.Max.X, l.height)
}

func drawLine(dst *image.NRGBA, cell image.Rectangle, face font.Face, c color.Color, s string) {
	clip := cell.Intersect(dst.Bounds())
	if clip.Empty() || s == "" {
		return
	}

	m := face.Metrics()
	d := &font.Drawer{
		Dst:  dst.SubImage(clip).(*image.NRGBA),
		Src:  image.NewUniform(c),
		Face: face,
	}
	d.Dot = fixed.P(
		cell.Min.X+(cell.Dx()-d.MeasureString(s).Ceil())/2,
		cell.Min.Y+(cell.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2,
	)
	d.DrawString(s)
}

// Render draws title and subtitle on a transparent width by height canvas
func (r *Renderer) Render(title, subtitle string, width, height int) (*image.NRGBA, *Layout) {
	l := r.Layout(title, subtitle, width, height)
	width, height = clampSize(width, height)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for i, line := range l.Lines {
		drawLine(dst, l.TitleCell(i), r.title, r.TitleColor, line)
	}
	if l.Subtitle != "" {
		drawLine(dst, l.SubtitleCell(), r.subtitle, r.SubtitleColor, l.Subtitle)
	}

	return dst, l
}

// Render draws title and subtitle using the bundled font
func Render(title, subtitle string, width, height int) (*image.NRGBA, *Layout, error) {
	r, err := New()
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	m, l := r.Render(title, subtitle, width, height)
	return m, l, nil
}

// Clear paints over the title panel of the stock footer artwork in dst with
// the panel's own top to bottom gradient, following its rounded corners
func Clear(dst *image.NRGBA) {
	for y := ClearBox.Min.Y; y < ClearBox.Max.Y; y++ {
		progress := float64(y-ClearBox.Min.Y) / float64(ClearBox.Dy()-1)
		v := uint8(255 - progress*(255-215))

		left, right := ClearBox.Min.X, ClearBox.Max.X
		switch {
		case y <= ClearBox.Min.Y+1 || y >= ClearBox.Max.Y-2:
			left, right = left+5, right-5
		case y <= ClearBox.Min.Y+3 || y >= ClearBox.Max.Y-4:
			left, right = left+2, right-2
		}

		row := image.Rect(left, y, right, y+1).Intersect(dst.Bounds())
		draw.Draw(dst, row, image.NewUniform(color.NRGBA{v, v, v, 0xff}), image.Point{}, draw.Src)
	}
}

// Overlay clears the title panel of dst and draws the rendered text over
// it. Pixels outside the panel and the text box are left alone.
func Overlay(dst, text *image.NRGBA, l *Layout) {
	Clear(dst)
	r := l.Box().Intersect(dst.Bounds())
	draw.Draw(dst, r, text, r.Min, draw.Over)
}
