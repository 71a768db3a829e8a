//go:build amd64 || arm64

package json // Package json decodes the settings file and reads/writes the disk provider's tier index

import (
	"io"

	"github.com/bytedance/sonic/decoder"
	"github.com/bytedance/sonic/encoder"
)

const Library = "github.com/bytedance/sonic"

// Decoder reads JSON documents using the Sonic stream decoder on AMD64 and ARM64
type Decoder struct {
	dec *decoder.StreamDecoder
}

// NewDecoder creates a new JSON decoder that wraps the provided io.Reader
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		dec: decoder.NewStreamDecoder(r),
	}
}

// Decode decodes the next JSON value into v
func (d *Decoder) Decode(v any) error {
	return d.dec.Decode(v)
}

// Encoder writes JSON documents using the Sonic stream encoder on AMD64 and ARM64
type Encoder struct {
	enc *encoder.StreamEncoder
}

// NewEncoder creates a new JSON encoder that wraps the provided io.Writer
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		enc: encoder.NewStreamEncoder(w),
	}
}

// Encode writes v followed by a newline
func (e *Encoder) Encode(v any) error {
	return e.enc.Encode(v)
}
