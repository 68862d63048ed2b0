package vcbanner

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// WriteFunc writes file via a temporary file in the same directory so that
// file is either complete or untouched. fn is called to write the contents.
func WriteFunc(file string, fn func(io.Writer) error) (err error) {
	dir := filepath.Dir(file)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(file)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	if err = fn(f); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(f.Name(), file)
}

func writeFile(file string, b []byte) error {
	return WriteFunc(file, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(b))
		return err
	})
}
