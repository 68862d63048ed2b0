package lz11

const (
	hashBits = 15
	maxChain = 256
)

func hash(b []byte) uint32 {
	return (uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])) * 2654435761 >> (32 - hashBits)
}

type matcher struct {
	src  []byte
	head []int32
	prev []int32
}

// Positions are stored plus one so the zero value marks an empty slot
func (m *matcher) insert(i int) {
	if i+minMatch > len(m.src) {
		return
	}
	h := hash(m.src[i:])
	m.prev[i] = m.head[h]
	m.head[h] = int32(i + 1)
}

func (m *matcher) find(pos int) (int, int) {
	limit := len(m.src) - pos
	if limit > maxMatch {
		limit = maxMatch
	}
	if limit < minMatch {
		return 0, 0
	}

	var best, bestDisp int
	for cand, n := int(m.head[hash(m.src[pos:])])-1, 0; cand >= 0 && n < maxChain; cand, n = int(m.prev[cand])-1, n+1 {
		disp := pos - cand
		if disp > windowSize {
			// Chains run newest first so everything after this is too far back
			break
		}
		l := 0
		for l < limit && m.src[cand+l] == m.src[pos+l] {
			l++
		}
		if l > best {
			best, bestDisp = l, disp
			if l == limit {
				break
			}
		}
	}

	if best < minMatch {
		return 0, 0
	}
	return best, bestDisp
}

func appendHeader(dst []byte, n int) []byte {
	if n > 0 && n <= 0xffffff {
		return append(dst, magic, byte(n), byte(n>>8), byte(n>>16))
	}
	return append(dst, magic, 0, 0, 0, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
}

func appendMatch(dst []byte, length, disp int) []byte {
	d := disp - 1
	switch {
	case length <= 0x10:
		return append(dst, byte((length-1)<<4|d>>8), byte(d))
	case length <= 0x110:
		l := length - 0x11
		return append(dst, byte(l>>4), byte((l&0x0f)<<4|d>>8), byte(d))
	default:
		l := length - 0x111
		return append(dst, byte(0x10|l>>12), byte(l>>4), byte((l&0x0f)<<4|d>>8), byte(d))
	}
}

// Compress encodes src as an LZ11 stream. The output is deterministic for a
// given input but makes no attempt to match any other encoder byte for byte.
func Compress(src []byte) []byte {
	dst := appendHeader(make([]byte, 0, len(src)/2+8), len(src))

	m := matcher{
		src:  src,
		head: make([]int32, 1<<hashBits),
		prev: make([]int32, len(src)),
	}

	pos := 0
	for pos < len(src) {
		flagPos := len(dst)
		dst = append(dst, 0)

		for bit := uint(0); bit < 8 && pos < len(src); bit++ {
			if length, disp := m.find(pos); length > 0 {
				dst[flagPos] |= 0x80 >> bit
				dst = appendMatch(dst, length, disp)
				for i := 0; i < length; i++ {
					m.insert(pos + i)
				}
				pos += length
				continue
			}
			dst = append(dst, src[pos])
			m.insert(pos)
			pos++
		}
	}

	return dst
}
