package gecho

import (
	"errors"
	"io"
)

// ErrZeroWrite is returned by WriteAll when a single write accepted no
// bytes without reporting an error, which means the peer is gone.
var ErrZeroWrite = errors.New("gecho: write accepted zero bytes")

// WriteAll writes exactly len(p) bytes to w, retrying with the remaining
// tail after each partial write. The first failed or zero-byte write aborts
// the whole operation; n is the number of bytes written until then.
func WriteAll(w io.Writer, p []byte) (n int, err error) {
	for n < len(p) {
		wn, werr := w.Write(p[n:])
		if wn > 0 {
			n += wn
		}
		if werr != nil {
			return n, werr
		}
		if wn <= 0 {
			return n, ErrZeroWrite
		}
	}
	return n, nil
}
