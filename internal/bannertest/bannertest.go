// Package bannertest builds synthetic banner templates for tests
package bannertest

import (
	"bytes"
	"encoding/binary"

	"github.com/bodgit/vcbanner/lz11"
	"github.com/bodgit/vcbanner/texture"
)

const (
	// Regions is the number of region slots in a container
	Regions = 13

	headerSize   = 0x20
	recordStride = 0x50
	dataAlign    = 0x80
	cbmdHeader   = 0x88
)

// Texture describes a texture object to include in a CGFX section
type Texture struct {
	Name   string
	Width  int
	Height int
	Levels int
	Format texture.Format
	// Fill is used for every byte of pixel data
	Fill byte
}

// Size returns the length of the pixel data for all levels
func (t Texture) Size() int {
	n := 0
	for l := 0; l < t.Levels; l++ {
		s, err := texture.LevelSize(t.Width, t.Height, l, t.Format)
		if err != nil {
			panic(err)
		}
		n += s
	}
	return n
}

// Standard textures found in a Virtual Console template
var (
	Label      = Texture{Name: "COMMON1", Width: 128, Height: 128, Levels: 5, Format: texture.RGB565, Fill: 0x11}
	Footer     = Texture{Name: "COMMON2", Width: 256, Height: 64, Levels: 1, Format: texture.LA8, Fill: 0x22}
	Background = Texture{Name: "COMMON3", Width: 64, Height: 64, Levels: 1, Format: texture.ETC1, Fill: 0x33}
)

func align(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

func putUint32(b []byte, offset, v int) {
	binary.LittleEndian.PutUint32(b[offset:], uint32(v))
}

// CGFX returns a decompressed CGFX section holding the given textures
func CGFX(textures ...Texture) []byte {
	names := headerSize + len(textures)*recordStride

	nameOffsets := make([]int, len(textures))
	n := names
	for i, t := range textures {
		nameOffsets[i] = n
		n += len(t.Name) + 1
	}

	dataOffsets := make([]int, len(textures))
	n = align(n, dataAlign)
	for i, t := range textures {
		dataOffsets[i] = n
		n = align(n+t.Size(), dataAlign)
	}

	b := make([]byte, n)
	copy(b, "CGFX")
	putUint32(b, 4, 0xfeff)
	putUint32(b, 8, headerSize)
	putUint32(b, 12, n)

	for i, t := range textures {
		m := headerSize + i*recordStride
		copy(b[m:], "TXOB")
		putUint32(b, m+0x08, nameOffsets[i]-(m+0x08))
		putUint32(b, m+0x14, t.Height)
		putUint32(b, m+0x18, t.Width)
		putUint32(b, m+0x24, t.Levels)
		putUint32(b, m+0x30, int(t.Format))
		putUint32(b, m+0x3c, t.Size())
		putUint32(b, m+0x40, dataOffsets[i]-(m+0x40))

		copy(b[nameOffsets[i]:], t.Name)
		copy(b[dataOffsets[i]:], bytes.Repeat([]byte{t.Fill}, t.Size()))
	}

	return b
}

// CWAV returns a stub audio block of n bytes
func CWAV(n int) []byte {
	if n < 4 {
		n = 4
	}
	b := make([]byte, n)
	copy(b, "CWAV")
	for i := 4; i < n; i++ {
		b[i] = byte(i)
	}
	return b
}

// CBMD compresses each section and lays out a container. Nil sections are
// left absent. The audio block is appended as is.
func CBMD(common []byte, regions [Regions][]byte, audio []byte) []byte {
	b := make([]byte, cbmdHeader)
	copy(b, "CBMD")

	add := func(slot int, section []byte) {
		if section == nil {
			return
		}
		putUint32(b, 0x08+slot*4, len(b))
		b = append(b, lz11.Compress(section)...)
		for len(b)%4 != 0 {
			b = append(b, 0)
		}
	}

	add(0, common)
	for i, section := range regions {
		add(i+1, section)
	}

	if audio != nil {
		putUint32(b, 0x84, len(b))
		b = append(b, audio...)
	}

	return b
}

// Template returns a container with the label and background in the common
// section and a footer in each of the given region slots
func Template(regions ...int) []byte {
	var sections [Regions][]byte
	for _, r := range regions {
		sections[r] = CGFX(Footer)
	}
	return CBMD(CGFX(Label, Background), sections, CWAV(0x40))
}
