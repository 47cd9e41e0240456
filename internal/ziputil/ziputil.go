// Package ziputil inspects the zip bundles the resource compiler produces
// for libraries.
package ziputil

import (
	"archive/zip"
	"io"
	"strings"
)

// Count returns the number of file entries in the archive read from r.
// Directory entries are not counted.
func Count(r io.ReaderAt, size int64) (int, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, "/") {
			n++
		}
	}
	return n, nil
}
