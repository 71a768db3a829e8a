//go:build !amd64 && !arm64

// This file is used when building for other architectures, utilizing the go-json library for JSON operations

package json // Package json decodes the settings file and reads/writes the disk provider's tier index

import (
	"io"

	"github.com/goccy/go-json"
)

const Library = "github.com/goccy/go-json"

// Decoder reads JSON documents using the go-json library
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder creates a new JSON decoder that wraps the provided io.Reader
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		dec: json.NewDecoder(r),
	}
}

// Decode decodes the next JSON value into v
func (d *Decoder) Decode(v any) error {
	return d.dec.Decode(v)
}

// Encoder writes JSON documents using the go-json library
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates a new JSON encoder that wraps the provided io.Writer
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		enc: json.NewEncoder(w),
	}
}

// Encode writes v followed by a newline
// Note: go-json encoder automatically adds a newline after each encoding
func (e *Encoder) Encode(v any) error {
	return e.enc.Encode(v)
}
