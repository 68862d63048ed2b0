/*
Package texture implements the tiled pixel formats used by the PICA200 GPU
for CGFX textures.

Textures are split into 8 by 8 pixel tiles stored left to right, top to
bottom. Within each tile the 64 pixels are stored in Morton (Z) order, with
the bits of the x coordinate in the even bit positions of the index and the
bits of the y coordinate in the odd positions.

Only RGB565 and LA8 can be encoded and decoded, both of which use two bytes
per pixel. RGB565 is stored as a little-endian 16-bit value with red in the
top five bits; alpha is discarded. LA8 stores the alpha byte followed by the
luminance byte.
*/
package texture

import (
	"errors"
	"fmt"
)

const (
	tileWidth  = 8
	tileHeight = tileWidth
	tilePixels = tileWidth * tileHeight
)

// Format is a PICA200 texture format
type Format uint32

// Texture formats, the values match those stored in a CGFX texture object
const (
	RGBA8 Format = iota
	RGB8
	RGBA5551
	RGB565
	RGBA4
	LA8
	HILO8
	L8
	A8
	LA4
	L4
	A4
	ETC1
	ETC1A4
)

var formatNames = [...]string{
	RGBA8:    "RGBA8",
	RGB8:     "RGB8",
	RGBA5551: "RGBA5551",
	RGB565:   "RGB565",
	RGBA4:    "RGBA4",
	LA8:      "LA8",
	HILO8:    "HILO8",
	L8:       "L8",
	A8:       "A8",
	LA4:      "LA4",
	L4:       "L4",
	A4:       "A4",
	ETC1:     "ETC1",
	ETC1A4:   "ETC1A4",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%#x)", uint32(f))
}

// ParseFormat returns the Format with the given name
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if name == s {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Bits per pixel, ETC1 is 4 bits per pixel in 4x4 blocks of 8 bytes
var formatBits = [...]int{
	RGBA8:    32,
	RGB8:     24,
	RGBA5551: 16,
	RGB565:   16,
	RGBA4:    16,
	LA8:      16,
	HILO8:    16,
	L8:       8,
	A8:       8,
	LA4:      8,
	L4:       4,
	A4:       4,
	ETC1:     4,
	ETC1A4:   8,
}

var (
	// ErrUnsupportedFormat is returned for a format that cannot be handled
	ErrUnsupportedFormat = errors.New("texture: unsupported format")
	// ErrInvalidChunkSize is returned when the texture data is the wrong length
	ErrInvalidChunkSize = errors.New("texture: invalid chunk size")
	// ErrInvalidDimensions is returned when the width or height is not a
	// positive multiple of the tile size
	ErrInvalidDimensions = errors.New("texture: invalid dimensions")
)

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 || width%tileWidth != 0 || height%tileHeight != 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return nil
}

// Size returns the number of bytes used by a width by height texture in
// format f
func Size(width, height int, f Format) (int, error) {
	if int(f) >= len(formatBits) {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if err := checkDimensions(width, height); err != nil {
		return 0, err
	}
	return width * height * formatBits[f] / 8, nil
}

// LevelSize returns the number of bytes used by mip level l of a width by
// height texture in format f. Levels smaller than a single tile are
// returned as an error.
func LevelSize(width, height, l int, f Format) (int, error) {
	return Size(width>>uint(l), height>>uint(l), f)
}
