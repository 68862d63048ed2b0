/*
Package lz11 implements the LZ11 compression scheme used for the CGFX
sections of a CBMD banner.

A stream starts with the byte 0x11 followed by the decompressed size as a
24-bit little-endian value. A size of zero means a further 32-bit
little-endian size follows. The remainder is a sequence of blocks, each a flag
byte followed by eight tokens; a set flag bit (most significant first) marks a
back-reference into the previous 4096 bytes of output, a clear bit marks a
literal byte.
*/
package lz11

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	magic = 0x11

	windowSize = 0x1000
	minMatch   = 3
	maxMatch   = 0x10110

	// MaxSize is the largest decompressed size that will be accepted
	MaxSize = 1 << 24
)

// ErrCorrupt is returned when a stream cannot be decompressed
var ErrCorrupt = errors.New("lz11: corrupt stream")

func corrupt(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, a...))
}

func header(src []byte) (int, int, error) {
	if len(src) < 4 || src[0] != magic {
		return 0, 0, corrupt("bad header")
	}
	if n := int(src[1]) | int(src[2])<<8 | int(src[3])<<16; n != 0 {
		return n, 4, nil
	}
	if len(src) < 8 {
		return 0, 0, corrupt("truncated extended header")
	}
	return int(binary.LittleEndian.Uint32(src[4:])), 8, nil
}

// Size returns the decompressed size declared by the stream header
func Size(src []byte) (int, error) {
	n, _, err := header(src)
	if err != nil {
		return 0, err
	}
	if n > MaxSize {
		return 0, corrupt("declared size %d exceeds %d", n, MaxSize)
	}
	return n, nil
}

// Decompress decodes src which must declare and produce exactly size bytes.
// Any bytes following the final token, such as alignment padding, are
// ignored.
func Decompress(src []byte, size int) ([]byte, error) {
	n, off, err := header(src)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, corrupt("declared size %d, expected %d", n, size)
	}
	if n > MaxSize {
		return nil, corrupt("declared size %d exceeds %d", n, MaxSize)
	}

	dst := make([]byte, 0, n)
	for len(dst) < n {
		if off >= len(src) {
			return nil, corrupt("stream ends after %d of %d bytes", len(dst), n)
		}
		flags := src[off]
		off++

		for bit := uint(0); bit < 8 && len(dst) < n; bit++ {
			if flags&(0x80>>bit) == 0 {
				if off >= len(src) {
					return nil, corrupt("stream ends after %d of %d bytes", len(dst), n)
				}
				dst = append(dst, src[off])
				off++
				continue
			}

			if off+2 > len(src) {
				return nil, corrupt("truncated back-reference at %#x", off)
			}
			b1, b2 := int(src[off]), int(src[off+1])

			var length, disp int
			switch b1 >> 4 {
			case 0:
				if off+3 > len(src) {
					return nil, corrupt("truncated back-reference at %#x", off)
				}
				b3 := int(src[off+2])
				length = ((b1&0x0f)<<4 | b2>>4) + 0x11
				disp = ((b2&0x0f)<<8 | b3) + 1
				off += 3
			case 1:
				if off+4 > len(src) {
					return nil, corrupt("truncated back-reference at %#x", off)
				}
				b3, b4 := int(src[off+2]), int(src[off+3])
				length = ((b1&0x0f)<<12 | b2<<4 | b3>>4) + 0x111
				disp = ((b3&0x0f)<<8 | b4) + 1
				off += 4
			default:
				length = b1>>4 + 1
				disp = ((b1&0x0f)<<8 | b2) + 1
				off += 2
			}

			if disp > len(dst) {
				return nil, corrupt("back-reference %d before start of output at %d", disp, len(dst))
			}
			if len(dst)+length > n {
				return nil, corrupt("back-reference overruns declared size %d", n)
			}

			// Byte at a time as the source and destination may overlap
			start := len(dst) - disp
			for i := 0; i < length; i++ {
				dst = append(dst, dst[start+i])
			}
		}
	}

	return dst, nil
}
