package lz11

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuffers() map[string][]byte {
	r := rand.New(rand.NewSource(1))

	random := make([]byte, 20000)
	r.Read(random)

	// Random data with lots of short and medium repeats
	mixed := make([]byte, 0, 50000)
	for len(mixed) < 50000 {
		if r.Intn(3) == 0 || len(mixed) < 16 {
			mixed = append(mixed, byte(r.Intn(8)))
			continue
		}
		n := 3 + r.Intn(300)
		start := len(mixed) - 1 - r.Intn(minInt(len(mixed), windowSize))
		for i := 0; i < n; i++ {
			mixed = append(mixed, mixed[start+i])
		}
	}

	return map[string][]byte{
		"empty":    {},
		"single":   {0x42},
		"pair":     {0x42, 0x42},
		"short":    []byte("abcabcabcabcabc"),
		"zeroes":   make([]byte, 0x30000),
		"random":   random,
		"mixed":    mixed,
		"text":     bytes.Repeat([]byte("Pokemon Emerald Version "), 500),
		"boundary": bytes.Repeat([]byte{0xaa}, maxMatch+minMatch+1),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	for name, buf := range testBuffers() {
		t.Run(name, func(t *testing.T) {
			c := Compress(buf)

			n, err := Size(c)
			require.NoError(t, err)
			assert.Equal(t, len(buf), n)

			d, err := Decompress(c, len(buf))
			require.NoError(t, err)
			assert.True(t, bytes.Equal(buf, d))
		})
	}
}

func TestCompressDeterministic(t *testing.T) {
	buf := testBuffers()["mixed"]
	assert.Equal(t, Compress(buf), Compress(buf))
}

func TestCompressKnownStream(t *testing.T) {
	// Literal 'a' followed by a five byte back-reference one byte back
	want := []byte{0x11, 0x06, 0x00, 0x00, 0x40, 'a', 0x40, 0x00}
	assert.Equal(t, want, Compress([]byte("aaaaaa")))

	d, err := Decompress(want, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaaaaa"), d)
}

func TestCompressShrinks(t *testing.T) {
	buf := make([]byte, 0x10000)
	assert.Less(t, len(Compress(buf)), len(buf)/100)
}

func TestDecompressTrailingPadding(t *testing.T) {
	buf := []byte("the quick brown fox jumps over the lazy dog")
	c := append(Compress(buf), 0, 0, 0)

	d, err := Decompress(c, len(buf))
	require.NoError(t, err)
	assert.Equal(t, buf, d)
}

func TestDecompressErrors(t *testing.T) {
	full := Compress(bytes.Repeat([]byte("banner"), 100))

	tables := map[string]struct {
		src  []byte
		size int
	}{
		"empty":           {nil, 0},
		"bad magic":       {[]byte{0x10, 0x01, 0x00, 0x00, 0x00, 'a'}, 1},
		"size mismatch":   {full, 599},
		"before start":    {[]byte{0x11, 0x03, 0x00, 0x00, 0x80, 0x20, 0x00}, 3},
		"far reference":   {[]byte{0x11, 0x04, 0x00, 0x00, 0x40, 'a', 0x20, 0x01}, 4},
		"overrun":         {[]byte{0x11, 0x03, 0x00, 0x00, 0x40, 'a', 0x30, 0x00}, 3},
		"truncated":       {full[:len(full)-4], 600},
		"truncated token": {[]byte{0x11, 0x04, 0x00, 0x00, 0x40, 'a', 0x20}, 4},
		"no tokens":       {[]byte{0x11, 0x04, 0x00, 0x00}, 4},
		"short extended":  {[]byte{0x11, 0x00, 0x00, 0x00, 0x01}, 1},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			_, err := Decompress(table.src, table.size)
			assert.True(t, errors.Is(err, ErrCorrupt), "got %v", err)
		})
	}
}

func TestSizeTooLarge(t *testing.T) {
	_, err := Size([]byte{0x11, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10})
	assert.True(t, errors.Is(err, ErrCorrupt))
}
