// Package boolean implements the boolean-run primitive stream codec
// (spec §4.1.3): alternating false/true run lengths, each an unsigned
// LEB128 count.
package boolean

import (
	"github.com/segmentio/columnar/encoding"
	"github.com/segmentio/columnar/encoding/raw"
)

// Encoder encodes a stream of bools as alternating run lengths. A null
// input is coerced to false before folding into the current run (Open
// Question c).
type Encoder struct {
	out   *raw.Encoder
	last  bool
	count uint64
}

// NewEncoder constructs an Encoder writing through out.
func NewEncoder(out *raw.Encoder) *Encoder {
	return &Encoder{out: out}
}

// Append appends a boolean value. present=false (a null cell in a boolean
// column) is coerced to false.
func (e *Encoder) Append(v bool, present bool) {
	if !present {
		v = false
	}
	if v == e.last {
		e.count++
	} else {
		e.out.AppendUvarint(e.count)
		e.last = v
		e.count = 1
	}
}

// Finish flushes the pending run count and returns the total bytes written.
func (e *Encoder) Finish() int {
	if e.count > 0 {
		e.out.AppendUvarint(e.count)
	}
	return e.out.Finish()
}

// Decoder is an endless-after-exhaustion boolean-run decoder: once input is
// exhausted, every further Next call returns ok=false. last initializes to
// true so the
// first run, which represents a false-count, correctly flips to false.
type Decoder struct {
	raw   *raw.Decoder
	last  bool
	count uint64
}

// NewDecoder constructs a Decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{raw: raw.NewDecoder(data), last: true}
}

// Done reports whether the underlying byte cursor and any pending run are
// both exhausted.
func (d *Decoder) Done() bool { return d.count == 0 && d.raw.Done() }

// Next returns the next boolean value. A boolean column never yields null;
// present is always true while ok is true.
func (d *Decoder) Next() (value bool, present bool, ok bool) {
	for d.count == 0 {
		if d.raw.Done() {
			return false, false, false
		}
		n, err := d.raw.ReadUvarint()
		if err != nil {
			n = 0
		}
		d.count = n
		d.last = !d.last
	}
	d.count--
	return d.last, true, true
}

// Splice replaces [replaceStart, replaceStart+replaceLen) items read from
// src with replacements, writing the result through dst, and returns the
// number of bytes written. *Decoder and *Encoder structurally satisfy
// encoding.Source[bool]/Sink[bool], so this delegates to the shared
// algorithm after lifting replacements into encoding.Opt (a boolean column
// never carries null, so every replacement is always present).
func Splice(src *Decoder, dst *Encoder, replaceStart, replaceLen int, replacements []bool) int {
	opts := make([]encoding.Opt[bool], len(replacements))
	for i, r := range replacements {
		opts[i] = encoding.Some(r)
	}
	return encoding.Splice[bool](src, dst, replaceStart, replaceLen, opts)
}
