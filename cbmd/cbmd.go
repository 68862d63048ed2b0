/*
Package cbmd implements the CBMD banner container.

A container is a fixed 0x88 byte header followed by up to fourteen LZ11
compressed CGFX sections, one common section plus one per region, and a
CWAV audio block. The header records the offset of each section and of the
audio block; sizes are implied by the offsets.

A Container is created with Parse, mutated by replacing texture data in place
and then finalized exactly once, which recompresses any modified sections and
lays everything out again with each offset aligned to 4 bytes.
*/
package cbmd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/bodgit/vcbanner/cgfx"
	"github.com/bodgit/vcbanner/lz11"
)

const (
	// Magic is the signature at the start of a container
	Magic = "CBMD"
	// AudioMagic is the signature at the start of the audio block
	AudioMagic = "CWAV"
	// HeaderSize is the size of the container header
	HeaderSize = 0x88
	// Regions is the number of region section slots
	Regions = 13
	// Slots is the total number of section slots, the common section is
	// slot 0
	Slots = Regions + 1

	alignment = 4
)

var (
	// ErrCorrupt is returned when the container cannot be parsed
	ErrCorrupt = errors.New("cbmd: corrupt container")
	// ErrChunkSizeMismatch is returned when replacement texture data is
	// not the same length as the original
	ErrChunkSizeMismatch = errors.New("cbmd: chunk size mismatch")
	// ErrChunkNotFound is returned when no section holds the named texture
	ErrChunkNotFound = errors.New("cbmd: chunk not found")
	// ErrAudioMissing is returned by Finalize when there is no audio block
	ErrAudioMissing = errors.New("cbmd: audio missing")
	// ErrFinalized is returned when a container is used after Finalize
	ErrFinalized = errors.New("cbmd: container already finalized")
)

// ChunkError records the chunk that could not be replaced
type ChunkError struct {
	Name     string
	Slot     int
	Level    int
	Expected int
	Actual   int
	Err      error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%v: %s level %d in %s, expected %d bytes, got %d", e.Err, e.Name, e.Level, SlotName(e.Slot), e.Expected, e.Actual)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// SlotName returns a printable name for a section slot
func SlotName(slot int) string {
	if slot == 0 {
		return "common"
	}
	return fmt.Sprintf("region %d", slot-1)
}

type header struct {
	Magic     [4]byte
	Reserved0 uint32
	Sections  [Slots]uint32
	Reserved1 [0x44]byte
	Audio     uint32
}

// Section is one compressed CGFX section
type Section struct {
	Slot     int
	Offset   int
	Textures []cgfx.Texture

	compressed []byte
	data       []byte
	dirty      bool
}

// CompressedSize returns the length of the compressed section as read from
// the template, including any padding
func (s *Section) CompressedSize() int {
	return len(s.compressed)
}

// Size returns the length of the decompressed section
func (s *Section) Size() int {
	return len(s.data)
}

// Modified returns whether any texture data in the section was replaced
func (s *Section) Modified() bool {
	return s.dirty
}

// Container is a parsed CBMD container
type Container struct {
	header      header
	sections    [Slots]*Section
	audio       []byte
	audioOffset int
	finalized   bool
}

func corrupt(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, a...))
}

// Parse parses a container. The returned Container does not reference b.
func Parse(b []byte) (*Container, error) {
	c := new(Container)

	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &c.header); err != nil {
		return nil, corrupt("short header: %v", err)
	}
	if string(c.header.Magic[:]) != Magic {
		return nil, corrupt("bad magic %q", c.header.Magic[:])
	}

	// Every known offset bounds the section before it
	bounds := []int{len(b)}
	if a := int(c.header.Audio); a >= HeaderSize && a < len(b) {
		bounds = append(bounds, a)
	}
	for _, o := range c.header.Sections {
		if o != 0 {
			bounds = append(bounds, int(o))
		}
	}
	sort.Ints(bounds)

	for slot, o := range c.header.Sections {
		if o == 0 {
			continue
		}
		start := int(o)
		if start < HeaderSize || start >= len(b) {
			return nil, corrupt("%s offset %#x out of range", SlotName(slot), start)
		}
		end := bounds[sort.SearchInts(bounds, start+1)]

		s, err := parseSection(slot, start, b[start:end])
		if err != nil {
			return nil, err
		}
		c.sections[slot] = s
	}

	if a := int(c.header.Audio); a >= HeaderSize && a+len(AudioMagic) <= len(b) && string(b[a:a+len(AudioMagic)]) == AudioMagic {
		c.audio = append([]byte(nil), b[a:]...)
		c.audioOffset = a
	}

	return c, nil
}

func parseSection(slot, offset int, b []byte) (*Section, error) {
	size, err := lz11.Size(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, SlotName(slot), err)
	}
	data, err := lz11.Decompress(b, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, SlotName(slot), err)
	}
	textures, err := cgfx.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, SlotName(slot), err)
	}

	return &Section{
		Slot:       slot,
		Offset:     offset,
		Textures:   textures,
		compressed: append([]byte(nil), b...),
		data:       data,
	}, nil
}

// Section returns the section in the given slot or nil if it's absent
func (c *Container) Section(slot int) *Section {
	if slot < 0 || slot >= Slots {
		return nil
	}
	return c.sections[slot]
}

// Sections returns the present sections in slot order
func (c *Container) Sections() []*Section {
	var sections []*Section
	for _, s := range c.sections {
		if s != nil {
			sections = append(sections, s)
		}
	}
	return sections
}

// HasAudio returns whether the template carried an audio block
func (c *Container) HasAudio() bool {
	return c.audio != nil
}

// AudioOffset returns the offset of the audio block as read from the
// template, or after Finalize, as written
func (c *Container) AudioOffset() int {
	return c.audioOffset
}

// AudioSize returns the length of the audio block
func (c *Container) AudioSize() int {
	return len(c.audio)
}

// Texture returns the first instance of the named texture
func (c *Container) Texture(name string) (cgfx.Texture, bool) {
	for _, s := range c.Sections() {
		if t, ok := cgfx.Find(s.Textures, name); ok {
			return t, true
		}
	}
	return cgfx.Texture{}, false
}

func (s *Section) level(name string, l int) (cgfx.Texture, int, int, error) {
	t, ok := cgfx.Find(s.Textures, name)
	if !ok {
		return t, 0, 0, fmt.Errorf("%w: %s in %s", ErrChunkNotFound, name, SlotName(s.Slot))
	}
	offset, err := t.LevelOffset(l)
	if err != nil {
		return t, 0, 0, err
	}
	size, err := t.LevelSize(l)
	if err != nil {
		return t, 0, 0, err
	}
	return t, offset, size, nil
}

// Chunk returns a copy of the pixel data for mip level l of the named
// texture in this section
func (s *Section) Chunk(name string, l int) (cgfx.Texture, []byte, error) {
	t, offset, size, err := s.level(name, l)
	if err != nil {
		return t, nil, err
	}
	return t, append([]byte(nil), s.data[offset:offset+size]...), nil
}

// Chunk returns a copy of the pixel data for mip level l of the first
// instance of the named texture
func (c *Container) Chunk(name string, l int) (cgfx.Texture, []byte, error) {
	for _, s := range c.Sections() {
		if _, ok := cgfx.Find(s.Textures, name); ok {
			return s.Chunk(name, l)
		}
	}
	return cgfx.Texture{}, nil, fmt.Errorf("%w: %s", ErrChunkNotFound, name)
}

// ReplaceSectionLevel replaces mip level l of the named texture in the
// section at slot only, leaving other instances alone
func (c *Container) ReplaceSectionLevel(slot int, name string, l int, b []byte) error {
	if c.finalized {
		return ErrFinalized
	}

	s := c.Section(slot)
	if s == nil {
		return fmt.Errorf("%w: %s in %s", ErrChunkNotFound, name, SlotName(slot))
	}
	_, offset, size, err := s.level(name, l)
	if err != nil {
		return err
	}
	if size != len(b) {
		return &ChunkError{
			Name:     name,
			Slot:     slot,
			Level:    l,
			Expected: size,
			Actual:   len(b),
			Err:      ErrChunkSizeMismatch,
		}
	}

	copy(s.data[offset:], b)
	s.dirty = true

	return nil
}

type replacement struct {
	section *Section
	offset  int
}

// ReplaceLevel replaces mip level l of every instance of the named texture
// with b, which must already be encoded in the texture's format. Every
// instance is checked before anything is modified. The number of instances
// replaced is returned.
func (c *Container) ReplaceLevel(name string, l int, b []byte) (int, error) {
	if c.finalized {
		return 0, ErrFinalized
	}

	var replacements []replacement
	for _, s := range c.Sections() {
		for _, t := range s.Textures {
			if t.Name != name {
				continue
			}
			size, err := t.LevelSize(l)
			if err != nil {
				return 0, err
			}
			if size != len(b) {
				return 0, &ChunkError{
					Name:     name,
					Slot:     s.Slot,
					Level:    l,
					Expected: size,
					Actual:   len(b),
					Err:      ErrChunkSizeMismatch,
				}
			}
			offset, err := t.LevelOffset(l)
			if err != nil {
				return 0, err
			}
			replacements = append(replacements, replacement{s, offset})
		}
	}

	if len(replacements) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrChunkNotFound, name)
	}

	for _, r := range replacements {
		copy(r.section.data[r.offset:], b)
		r.section.dirty = true
	}

	return len(replacements), nil
}

// ReplaceChunk replaces the base level of every instance of the named
// texture
func (c *Container) ReplaceChunk(name string, b []byte) (int, error) {
	return c.ReplaceLevel(name, 0, b)
}

func pad(b []byte) []byte {
	for len(b)%alignment != 0 {
		b = append(b, 0)
	}
	return b
}

// Finalize recompresses any modified sections and returns the rebuilt
// container. It fails with ErrAudioMissing if the template had no audio
// block. Once it has succeeded the container can no longer be used.
func (c *Container) Finalize() ([]byte, error) {
	if c.finalized {
		return nil, ErrFinalized
	}
	if c.audio == nil {
		return nil, ErrAudioMissing
	}

	h := c.header
	b := make([]byte, HeaderSize, HeaderSize+len(c.audio))

	for slot, s := range c.sections {
		h.Sections[slot] = 0
		if s == nil {
			continue
		}
		compressed := s.compressed
		if s.dirty {
			compressed = lz11.Compress(s.data)
		}
		h.Sections[slot] = uint32(len(b))
		b = pad(append(b, compressed...))
	}
	h.Audio = uint32(len(b))

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	copy(b, buf.Bytes())

	c.audioOffset = len(b)
	c.finalized = true

	return append(b, c.audio...), nil
}
