package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLimit matches the number of leading bytes mimetype inspects by default.
const sniffLimit = 3072

// detectContentType sniffs the content type of r and returns a reader that
// still yields the full stream from the first byte.
func detectContentType(r io.Reader) (string, io.Reader, error) {
	head := &bytes.Buffer{}
	mtype, err := mimetype.DetectReader(io.TeeReader(io.LimitReader(r, sniffLimit), head))
	if err != nil {
		return "", nil, fmt.Errorf("detect content type: %w", err)
	}

	return mtype.String(), io.MultiReader(head, r), nil
}
