package vcbanner

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// iNES images carry a 16 byte header that isn't part of the ROM
var inesMagic = []byte{'N', 'E', 'S', 0x1a}

const inesHeader = 16

func crcReader(r io.ReadSeeker) (string, error) {
	magic := make([]byte, len(inesMagic))
	_, err := io.ReadFull(r, magic)
	switch {
	case err == nil && bytes.Equal(magic, inesMagic):
		if _, err := r.Seek(inesHeader, io.SeekStart); err != nil {
			return "", err
		}
	case err == nil, err == io.ErrUnexpectedEOF, err == io.EOF:
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}

	return fmt.Sprintf("%.*X", crc32.Size<<1, h.Sum(nil)), nil
}

func crcFile(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return crcReader(f)
}
