package cbmd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/bodgit/vcbanner/internal/bannertest"
	"github.com/bodgit/vcbanner/lz11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offsets(t *testing.T, b []byte) ([Slots]uint32, uint32) {
	t.Helper()
	var h header
	require.Nil(t, binary.Read(bytes.NewReader(b), binary.LittleEndian, &h))
	return h.Sections, h.Audio
}

func assertAligned(t *testing.T, b []byte) {
	t.Helper()

	sections, audio := offsets(t, b)
	expected := HeaderSize
	for _, o := range sections {
		if o == 0 {
			continue
		}
		assert.Equal(t, uint32(0), o%alignment)
		assert.Equal(t, expected, int(o))

		size, err := lz11.Size(b[o:])
		require.Nil(t, err)
		_, err = lz11.Decompress(b[o:audio], size)
		require.Nil(t, err)

		next := int(audio)
		for _, p := range sections {
			if p > o && int(p) < next {
				next = int(p)
			}
		}
		expected = next
	}
	assert.Equal(t, uint32(0), audio%alignment)
	assert.Equal(t, AudioMagic, string(b[audio:audio+4]))
}

func TestParse(t *testing.T) {
	c, err := Parse(bannertest.Template(0, 1, 2))
	require.Nil(t, err)

	sections := c.Sections()
	require.Len(t, sections, 4)
	assert.Equal(t, 0, sections[0].Slot)
	assert.Equal(t, HeaderSize, sections[0].Offset)
	assert.Equal(t, []int{0, 1, 2, 3}, []int{sections[0].Slot, sections[1].Slot, sections[2].Slot, sections[3].Slot})

	require.Len(t, sections[0].Textures, 2)
	assert.Equal(t, "COMMON1", sections[0].Textures[0].Name)
	assert.Equal(t, "COMMON3", sections[0].Textures[1].Name)
	for _, s := range sections[1:] {
		require.Len(t, s.Textures, 1)
		assert.Equal(t, "COMMON2", s.Textures[0].Name)
		assert.False(t, s.Modified())
		assert.NotZero(t, s.Size())
		assert.NotZero(t, s.CompressedSize())
	}

	assert.Nil(t, c.Section(4))
	assert.Nil(t, c.Section(Slots))
	assert.True(t, c.HasAudio())
	assert.Equal(t, 0x40, c.AudioSize())
	assert.Equal(t, 0, c.AudioOffset()%alignment)
}

func TestParseErrors(t *testing.T) {
	template := bannertest.Template(0)

	tables := []struct {
		name   string
		modify func([]byte) []byte
	}{
		{
			name: "short",
			modify: func(b []byte) []byte {
				return b[:HeaderSize-1]
			},
		},
		{
			name: "magic",
			modify: func(b []byte) []byte {
				b[0] = 'X'
				return b
			},
		},
		{
			name: "offset",
			modify: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[0x0c:], uint32(len(b)+4))
				return b
			},
		},
		{
			name: "compression",
			modify: func(b []byte) []byte {
				b[HeaderSize] = 0x10
				return b
			},
		},
		{
			name: "truncated",
			modify: func(b []byte) []byte {
				return b[:HeaderSize+8]
			},
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b := table.modify(append([]byte(nil), template...))
			_, err := Parse(b)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestParseWrapsCompressionError(t *testing.T) {
	b := bannertest.Template()
	b[HeaderSize] = 0x10

	_, err := Parse(b)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.ErrorIs(t, err, lz11.ErrCorrupt)
}

func TestFinalizeUnmodified(t *testing.T) {
	template := bannertest.Template(0, 5, 12)

	c, err := Parse(template)
	require.Nil(t, err)

	b, err := c.Finalize()
	require.Nil(t, err)
	assert.Equal(t, template, b)
	assertAligned(t, b)
}

func TestFinalizeAlignment(t *testing.T) {
	// Sections and audio packed without any padding
	section := lz11.Compress(bannertest.CGFX(bannertest.Footer))
	for len(section)%alignment != 1 {
		section = append(section, 0)
	}

	b := make([]byte, HeaderSize)
	copy(b, Magic)
	binary.LittleEndian.PutUint32(b[0x08:], HeaderSize)
	b = append(b, section...)
	binary.LittleEndian.PutUint32(b[0x0c:], uint32(len(b)))
	b = append(b, section...)
	binary.LittleEndian.PutUint32(b[0x84:], uint32(len(b)))
	b = append(b, bannertest.CWAV(0x21)...)
	for i := 0x40; i < 0x84; i++ {
		b[i] = byte(i)
	}

	c, err := Parse(b)
	require.Nil(t, err)
	assert.NotEqual(t, 0, c.AudioOffset()%alignment)

	out, err := c.Finalize()
	require.Nil(t, err)
	assertAligned(t, out)

	// Audio offset follows both padded sections
	_, audio := offsets(t, out)
	padded := (len(section) + alignment - 1) &^ (alignment - 1)
	assert.Equal(t, HeaderSize+2*padded, int(audio))
	assert.Equal(t, int(audio), c.AudioOffset())
	assert.Equal(t, bannertest.CWAV(0x21), out[audio:])

	// Reserved header bytes pass through
	assert.Equal(t, b[0x40:0x84], out[0x40:0x84])
}

func TestReplaceChunk(t *testing.T) {
	regions := []int{0, 3, 7}

	c, err := Parse(bannertest.Template(regions...))
	require.Nil(t, err)

	footer := bytes.Repeat([]byte{0xa5}, bannertest.Footer.Size())
	n, err := c.ReplaceChunk("COMMON2", footer)
	require.Nil(t, err)
	assert.Equal(t, len(regions), n)

	assert.False(t, c.Section(0).Modified())
	for _, r := range regions {
		assert.True(t, c.Section(r+1).Modified())
	}

	b, err := c.Finalize()
	require.Nil(t, err)
	assertAligned(t, b)

	c, err = Parse(b)
	require.Nil(t, err)
	for _, s := range c.Sections()[1:] {
		tex := s.Textures[0]
		assert.Equal(t, footer, s.data[tex.Offset:tex.Offset+tex.Length])
	}

	_, chunk, err := c.Chunk("COMMON2", 0)
	require.Nil(t, err)
	assert.Equal(t, footer, chunk)

	// Label is untouched
	_, chunk, err = c.Chunk("COMMON1", 0)
	require.Nil(t, err)
	assert.Equal(t, bytes.Repeat([]byte{bannertest.Label.Fill}, len(chunk)), chunk)
}

func TestReplaceLevel(t *testing.T) {
	c, err := Parse(bannertest.Template(0))
	require.Nil(t, err)

	tex, ok := c.Texture("COMMON1")
	require.True(t, ok)

	for l := 0; l < tex.Levels; l++ {
		size, err := tex.LevelSize(l)
		require.Nil(t, err)
		n, err := c.ReplaceLevel("COMMON1", l, bytes.Repeat([]byte{byte(l + 1)}, size))
		require.Nil(t, err)
		assert.Equal(t, 1, n)
	}

	b, err := c.Finalize()
	require.Nil(t, err)

	c, err = Parse(b)
	require.Nil(t, err)
	for l := 0; l < tex.Levels; l++ {
		_, chunk, err := c.Chunk("COMMON1", l)
		require.Nil(t, err)
		assert.Equal(t, bytes.Repeat([]byte{byte(l + 1)}, len(chunk)), chunk)
	}

	_, _, err = c.Chunk("COMMON1", tex.Levels)
	assert.NotNil(t, err)
}

func TestReplaceChunkSizeMismatch(t *testing.T) {
	c, err := Parse(bannertest.Template(0, 1))
	require.Nil(t, err)

	_, err = c.ReplaceChunk("COMMON2", make([]byte, 100))
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrChunkSizeMismatch)

	var chunkErr *ChunkError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, "COMMON2", chunkErr.Name)
	assert.Equal(t, 1, chunkErr.Slot)
	assert.Equal(t, 0, chunkErr.Level)
	assert.Equal(t, bannertest.Footer.Size(), chunkErr.Expected)
	assert.Equal(t, 100, chunkErr.Actual)
	assert.Contains(t, chunkErr.Error(), "region 0")

	for _, s := range c.Sections() {
		assert.False(t, s.Modified())
	}
}

func TestReplaceSectionLevel(t *testing.T) {
	c, err := Parse(bannertest.Template(0, 1))
	require.Nil(t, err)

	footer := bytes.Repeat([]byte{0xa5}, bannertest.Footer.Size())
	require.Nil(t, c.ReplaceSectionLevel(2, "COMMON2", 0, footer))
	assert.False(t, c.Section(1).Modified())
	assert.True(t, c.Section(2).Modified())

	var chunkErr *ChunkError
	err = c.ReplaceSectionLevel(1, "COMMON2", 0, make([]byte, 100))
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, 1, chunkErr.Slot)
	assert.False(t, c.Section(1).Modified())

	assert.ErrorIs(t, c.ReplaceSectionLevel(0, "COMMON2", 0, footer), ErrChunkNotFound)
	assert.ErrorIs(t, c.ReplaceSectionLevel(5, "COMMON2", 0, footer), ErrChunkNotFound)

	b, err := c.Finalize()
	require.Nil(t, err)
	assert.ErrorIs(t, c.ReplaceSectionLevel(2, "COMMON2", 0, footer), ErrFinalized)

	c, err = Parse(b)
	require.Nil(t, err)

	_, chunk, err := c.Section(1).Chunk("COMMON2", 0)
	require.Nil(t, err)
	assert.Equal(t, bytes.Repeat([]byte{bannertest.Footer.Fill}, len(footer)), chunk)

	_, chunk, err = c.Section(2).Chunk("COMMON2", 0)
	require.Nil(t, err)
	assert.Equal(t, footer, chunk)

	_, _, err = c.Section(0).Chunk("COMMON2", 0)
	assert.ErrorIs(t, err, ErrChunkNotFound)
}

func TestReplaceChunkNotFound(t *testing.T) {
	c, err := Parse(bannertest.Template(0))
	require.Nil(t, err)

	_, err = c.ReplaceChunk("COMMON9", nil)
	assert.ErrorIs(t, err, ErrChunkNotFound)

	_, _, err = c.Chunk("COMMON9", 0)
	assert.ErrorIs(t, err, ErrChunkNotFound)

	_, ok := c.Texture("COMMON9")
	assert.False(t, ok)
}

func TestFinalizeAudioMissing(t *testing.T) {
	var regions [bannertest.Regions][]byte
	regions[0] = bannertest.CGFX(bannertest.Footer)

	tables := map[string][]byte{
		"absent": bannertest.CBMD(bannertest.CGFX(bannertest.Label), regions, nil),
		"magic":  bannertest.CBMD(bannertest.CGFX(bannertest.Label), regions, []byte("RIFF0000")),
	}

	for name, b := range tables {
		t.Run(name, func(t *testing.T) {
			c, err := Parse(b)
			require.Nil(t, err)
			assert.False(t, c.HasAudio())

			out, err := c.Finalize()
			assert.ErrorIs(t, err, ErrAudioMissing)
			assert.Nil(t, out)
		})
	}
}

func TestFinalizeOnce(t *testing.T) {
	c, err := Parse(bannertest.Template(0))
	require.Nil(t, err)

	_, err = c.Finalize()
	require.Nil(t, err)

	_, err = c.Finalize()
	assert.ErrorIs(t, err, ErrFinalized)

	_, err = c.ReplaceChunk("COMMON2", make([]byte, bannertest.Footer.Size()))
	assert.ErrorIs(t, err, ErrFinalized)
}
