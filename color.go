package vcbanner

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const autoColor = "auto"

// Color is an opaque colour or, with Auto set, a request to use the
// dominant colour of the label image. It implements flag.Value so it can be
// used directly as a command line flag.
type Color struct {
	color.NRGBA
	Auto bool
}

// ParseColor parses "R,G,B", "#RRGGBB" or "auto"
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.EqualFold(s, autoColor):
		return Color{Auto: true}, nil
	case strings.HasPrefix(s, "#"):
		if len(s) != 7 {
			return Color{}, fmt.Errorf("vcbanner: invalid colour %q", s)
		}
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("vcbanner: invalid colour %q: %w", s, err)
		}
		return Color{NRGBA: color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("vcbanner: invalid colour %q", s)
	}
	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("vcbanner: invalid colour %q: %w", s, err)
		}
		rgb[i] = uint8(v)
	}
	return Color{NRGBA: color.NRGBA{rgb[0], rgb[1], rgb[2], 0xff}}, nil
}

func (c Color) String() string {
	if c.Auto {
		return autoColor
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Set implements flag.Value
func (c *Color) Set(s string) error {
	v, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return c.Set(s)
}

// MarshalYAML implements yaml.Marshaler
func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
