/*
Package cgfx locates the texture objects inside a decompressed CGFX section.

Only as much of the format is understood as is needed to find and replace
texture pixel data in place. Texture objects are found by scanning for the
TXOB magic at 4-byte aligned offsets; each candidate is validated before it
is returned so that stray matches inside pixel data are ignored.
*/
package cgfx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/bodgit/vcbanner/texture"
)

const (
	// Magic is the signature at the start of a CGFX section
	Magic = "CGFX"
	// TextureMagic is the signature of a texture object
	TextureMagic = "TXOB"

	nameOffset   = 0x08
	heightOffset = 0x14
	widthOffset  = 0x18
	levelsOffset = 0x24
	formatOffset = 0x30
	lengthOffset = 0x3c
	dataOffset   = 0x40

	// RecordSize is the minimum size of a texture object
	RecordSize = 0x44

	maxNameLength = 0x100
	maxLevels     = 16
	maxDimension  = 1 << 12
)

var (
	// ErrNotCGFX is returned when the data does not start with the CGFX magic
	ErrNotCGFX = errors.New("cgfx: missing magic")
	// ErrLevel is returned for a mip level the texture doesn't have
	ErrLevel = errors.New("cgfx: no such mip level")
)

// Texture describes a texture object and where its pixel data lives within
// the section
type Texture struct {
	Name   string
	Width  int
	Height int
	Format texture.Format
	Levels int
	// Record is the offset of the texture object
	Record int
	// Offset is the offset of the pixel data
	Offset int
	// Length is the length of the pixel data for all levels
	Length int
}

func (t Texture) String() string {
	return fmt.Sprintf("%s %dx%d %v levels=%d data=%#x+%#x", t.Name, t.Width, t.Height, t.Format, t.Levels, t.Offset, t.Length)
}

// LevelSize returns the number of bytes used by mip level l
func (t Texture) LevelSize(l int) (int, error) {
	if l < 0 || l >= t.Levels {
		return 0, fmt.Errorf("%w: %s has %d, wanted %d", ErrLevel, t.Name, t.Levels, l)
	}
	return texture.LevelSize(t.Width, t.Height, l, t.Format)
}

// LevelOffset returns the offset within the section of mip level l
func (t Texture) LevelOffset(l int) (int, error) {
	if _, err := t.LevelSize(l); err != nil {
		return 0, err
	}
	offset := t.Offset
	for i := 0; i < l; i++ {
		n, err := texture.LevelSize(t.Width, t.Height, i, t.Format)
		if err != nil {
			return 0, err
		}
		offset += n
	}
	return offset, nil
}

// LevelWidth returns the width of mip level l
func (t Texture) LevelWidth(l int) int {
	return t.Width >> uint(l)
}

// LevelHeight returns the height of mip level l
func (t Texture) LevelHeight(l int) int {
	return t.Height >> uint(l)
}

func (t Texture) expectedLength() (int, error) {
	length := 0
	for l := 0; l < t.Levels; l++ {
		n, err := texture.LevelSize(t.Width, t.Height, l, t.Format)
		if err != nil {
			return 0, err
		}
		length += n
	}
	return length, nil
}

func cstring(b []byte, offset int) (string, bool) {
	if offset < 0 || offset >= len(b) {
		return "", false
	}
	end := offset + maxNameLength
	if end > len(b) {
		end = len(b)
	}
	i := bytes.IndexByte(b[offset:end], 0)
	if i <= 0 {
		return "", false
	}
	for _, c := range b[offset : offset+i] {
		if c < 0x20 || c > 0x7e {
			return "", false
		}
	}
	return string(b[offset : offset+i]), true
}

func relative(b []byte, offset int) int {
	return offset + int(int32(binary.LittleEndian.Uint32(b[offset:])))
}

func validDimension(v int) bool {
	return v > 0 && v <= maxDimension && v%8 == 0
}

func parseRecord(b []byte, m int) (Texture, bool) {
	if m+RecordSize > len(b) {
		return Texture{}, false
	}
	r := b[m:]

	name, ok := cstring(b, relative(b, m+nameOffset))
	if !ok {
		return Texture{}, false
	}

	t := Texture{
		Name:   name,
		Height: int(binary.LittleEndian.Uint32(r[heightOffset:])),
		Width:  int(binary.LittleEndian.Uint32(r[widthOffset:])),
		Levels: int(binary.LittleEndian.Uint32(r[levelsOffset:])),
		Format: texture.Format(binary.LittleEndian.Uint32(r[formatOffset:])),
		Length: int(binary.LittleEndian.Uint32(r[lengthOffset:])),
		Record: m,
		Offset: relative(b, m+dataOffset),
	}

	if t.Levels < 1 || t.Levels > maxLevels || !validDimension(t.Width) || !validDimension(t.Height) {
		return Texture{}, false
	}
	if t.Offset < 0 || t.Length < 0 || t.Offset+t.Length > len(b) {
		return Texture{}, false
	}

	n, err := t.expectedLength()
	switch {
	case errors.Is(err, texture.ErrUnsupportedFormat):
		// Unknown bit depth, trust the stored length
	case err != nil, n != t.Length:
		return Texture{}, false
	}

	return t, true
}

// Parse returns the texture objects found in b, a decompressed CGFX
// section, in the order they appear
func Parse(b []byte) ([]Texture, error) {
	if len(b) < len(Magic) || string(b[:len(Magic)]) != Magic {
		return nil, ErrNotCGFX
	}

	var textures []Texture
	for m := 0; m+RecordSize <= len(b); m += 4 {
		if string(b[m:m+len(TextureMagic)]) != TextureMagic {
			continue
		}
		if t, ok := parseRecord(b, m); ok {
			textures = append(textures, t)
		}
	}

	return textures, nil
}

// Find returns the first texture with the given name
func Find(textures []Texture, name string) (Texture, bool) {
	for _, t := range textures {
		if t.Name == name {
			return t, true
		}
	}
	return Texture{}, false
}

// Names returns the sorted unique texture names
func Names(textures []Texture) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, t := range textures {
		if _, ok := seen[t.Name]; !ok {
			seen[t.Name] = struct{}{}
			names = append(names, t.Name)
		}
	}
	sort.Strings(names)
	return names
}
