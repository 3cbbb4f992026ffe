// Package raw implements the length-prefixed-by-layout raw byte codec
// (spec §4.1.4) and the low-level cursor the other primitive codecs (RLE,
// delta, value) read/write through.
package raw

import (
	"errors"

	"github.com/segmentio/columnar/encoding"
)

// ErrReadPastEnd is returned by ReadBytes when the requested length exceeds
// the remaining buffer.
var ErrReadPastEnd = errors.New("columnar/encoding/raw: read past end of buffer")

// Decoder is a cursor over a borrowed byte slice. It never panics on
// truncated input: scalar reads surface encoding.ErrTruncated/ErrOverflow,
// and ReadBytes surfaces ErrReadPastEnd.
type Decoder struct {
	data   []byte
	offset int
}

// NewDecoder constructs a Decoder over data. data is not copied; the caller
// must not mutate it while the Decoder is in use.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Done reports whether the cursor has consumed the entire buffer.
func (d *Decoder) Done() bool { return d.offset >= len(d.data) }

// Offset returns the current byte cursor position.
func (d *Decoder) Offset() int { return d.offset }

// Remaining returns the unconsumed tail of the buffer.
func (d *Decoder) Remaining() []byte { return d.data[d.offset:] }

// ReadBytes consumes and returns the next n bytes.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if d.offset+n > len(d.data) {
		return nil, ErrReadPastEnd
	}
	b := d.data[d.offset : d.offset+n]
	d.offset += n
	return b, nil
}

// ReadUvarint reads an unsigned LEB128 value.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n, err := encoding.Uvarint(d.data[d.offset:])
	if err != nil {
		return 0, err
	}
	d.offset += n
	return v, nil
}

// ReadVarint reads a signed LEB128 value.
func (d *Decoder) ReadVarint() (int64, error) {
	v, n, err := encoding.Varint(d.data[d.offset:])
	if err != nil {
		return 0, err
	}
	d.offset += n
	return v, nil
}

// ReadWith decodes a value of type T from the cursor using codec.
func ReadWith[T any](d *Decoder, codec encoding.Codec[T]) (T, error) {
	v, n, err := codec.Decode(d.data[d.offset:])
	if err != nil {
		var zero T
		return zero, err
	}
	d.offset += n
	return v, nil
}

// Encoder appends already-serialised bytes to a growable buffer and reports
// the total number of bytes written since construction.
type Encoder struct {
	buf      []byte
	startLen int
}

// NewEncoder wraps buf (which may be nil) for appending.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf, startLen: len(buf)}
}

// Append writes value verbatim.
func (e *Encoder) Append(value []byte) {
	e.buf = append(e.buf, value...)
}

// AppendUvarint writes an unsigned LEB128 value.
func (e *Encoder) AppendUvarint(v uint64) {
	e.buf, _ = encoding.PutUvarint(e.buf, v)
}

// AppendVarint writes a signed LEB128 value.
func (e *Encoder) AppendVarint(v int64) {
	e.buf, _ = encoding.PutVarint(e.buf, v)
}

// AppendWith encodes v using codec and appends it.
func AppendWith[T any](e *Encoder, codec encoding.Codec[T], v T) {
	e.buf, _ = codec.Encode(e.buf, v)
}

// Bytes returns the buffer built so far.
func (e *Encoder) Bytes() []byte { return e.buf }

// Finish returns the number of bytes written since construction.
func (e *Encoder) Finish() int { return len(e.buf) - e.startLen }

// Encoder is the raw (non-self-framing) codec: a column whose length comes
// entirely from the enclosing column layout's byte range, not from any
// in-stream framing.
type RawEncoder = Encoder

// RawDecoder is an alias kept for symmetry with the other primitive codec
// packages (rle.Decoder, delta.Decoder, boolean.Decoder); raw columns are
// read directly through Decoder.ReadBytes/ReadWith by their owning column
// type, since "raw" has no element framing of its own.
type RawDecoder = Decoder
