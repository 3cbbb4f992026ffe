// Package delta implements the delta primitive stream codec (spec §4.1.2):
// a running absolute uint64 accumulator plus an RLE-encoded signed-LEB128
// delta stream. Nulls pass through without touching the accumulator.
package delta

import (
	"errors"

	"github.com/segmentio/columnar/encoding"
	"github.com/segmentio/columnar/encoding/raw"
	"github.com/segmentio/columnar/encoding/rle"
)

// ErrUnderflow is returned by the decoder when a negative delta's magnitude
// exceeds the current accumulator (Open Question a: rejected, not wrapped).
var ErrUnderflow = errors.New("columnar/encoding/delta: delta would take accumulator below zero")

// Encoder encodes a uint64 column as RLE-encoded deltas against a running
// absolute value, starting from 0.
type Encoder struct {
	rle      *rle.Encoder[int64]
	absolute uint64
}

// NewEncoder constructs an Encoder writing through out.
func NewEncoder(out *raw.Encoder) *Encoder {
	return &Encoder{rle: rle.NewEncoder[int64](out, encoding.Int64Codec)}
}

// Append appends a value (present=false encodes a null and leaves the
// accumulator untouched).
func (e *Encoder) Append(v uint64, present bool) {
	if !present {
		e.rle.Append(0, false)
		return
	}
	d := int64(v) - int64(e.absolute)
	e.rle.Append(d, true)
	e.absolute = v
}

// Finish flushes any buffered state and returns the total bytes written.
func (e *Encoder) Finish() int { return e.rle.Finish() }

// Decoder reconstructs absolute values by summing non-null deltas.
type Decoder struct {
	rle      *rle.Decoder[int64]
	absolute uint64
	err      error
}

// NewDecoder constructs a Decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{rle: rle.NewDecoder[int64](data, encoding.Int64Codec)}
}

// Done reports whether the underlying RLE stream is exhausted.
func (d *Decoder) Done() bool { return d.rle.Done() }

// Err returns the first error encountered (e.g. ErrUnderflow), if any.
// Next stops advancing the accumulator and returns ok=false once set.
func (d *Decoder) Err() error { return d.err }

// Next returns the next absolute value; present is false for a null.
func (d *Decoder) Next() (value uint64, present bool, ok bool) {
	if d.err != nil {
		return 0, false, false
	}
	delta, present, ok := d.rle.Next()
	if !ok {
		return 0, false, false
	}
	if !present {
		return 0, false, true
	}
	if delta < 0 {
		mag := uint64(-delta)
		if mag > d.absolute {
			d.err = ErrUnderflow
			return 0, false, false
		}
		d.absolute -= mag
	} else {
		d.absolute += uint64(delta)
	}
	return d.absolute, true, true
}

// Splice replaces [replaceStart, replaceStart+replaceLen) items read from
// src with replacements, writing the result through dst, and returns the
// number of bytes written. *Decoder and *Encoder structurally satisfy
// encoding.Source[uint64]/Sink[uint64] (Next already reports ok=false once
// err is set), so this delegates to the shared algorithm and checks src.err
// once at the end.
func Splice(src *Decoder, dst *Encoder, replaceStart, replaceLen int, replacements []encoding.Opt[uint64]) (int, error) {
	n := encoding.Splice[uint64](src, dst, replaceStart, replaceLen, replacements)
	if src.err != nil {
		return 0, src.err
	}
	return n, nil
}
