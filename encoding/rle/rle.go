// Package rle implements the run-length primitive stream codec (spec §4.1.1):
// runs of repeated values, literal runs, and null runs, each framed by one
// signed-LEB128 block count.
package rle

import (
	"github.com/segmentio/columnar/encoding"
	"github.com/segmentio/columnar/encoding/raw"
)

// state tags the encoder's lookahead state machine.
type state int

const (
	stateEmpty state = iota
	stateNullRun
	stateLoneVal
	stateRun
	stateLiteralRun
)

// Encoder buffers at most one lookahead value and emits minimal run/literal/
// null blocks on state transitions and on Finish.
type Encoder[T comparable] struct {
	out   *raw.Encoder
	codec encoding.Codec[T]

	st      state
	nullLen int
	val     T
	runLen  int
	history []T // literal run, not including the pending lookahead `val`
}

// NewEncoder constructs an Encoder writing through out.
func NewEncoder[T comparable](out *raw.Encoder, codec encoding.Codec[T]) *Encoder[T] {
	return &Encoder[T]{out: out, codec: codec, st: stateEmpty}
}

// Append appends a value (present=false encodes a null).
func (e *Encoder[T]) Append(v T, present bool) {
	if !present {
		e.appendNull()
	} else {
		e.appendValue(v)
	}
}

func (e *Encoder[T]) appendNull() {
	switch e.st {
	case stateEmpty:
		e.st = stateNullRun
		e.nullLen = 1
	case stateNullRun:
		e.nullLen++
	case stateLoneVal:
		e.flushLiteralRun([]T{e.val})
		e.st = stateNullRun
		e.nullLen = 1
	case stateRun:
		e.flushRun(e.val, e.runLen)
		e.st = stateNullRun
		e.nullLen = 1
	case stateLiteralRun:
		e.history = append(e.history, e.val)
		e.flushLiteralRun(e.history)
		e.st = stateNullRun
		e.nullLen = 1
	}
}

func (e *Encoder[T]) appendValue(v T) {
	switch e.st {
	case stateEmpty:
		e.st = stateLoneVal
		e.val = v
	case stateLoneVal:
		if e.val == v {
			e.st = stateRun
			e.runLen = 2
		} else {
			e.history = []T{e.val}
			e.val = v
			e.st = stateLiteralRun
		}
	case stateRun:
		if e.val == v {
			e.runLen++
		} else {
			e.flushRun(e.val, e.runLen)
			e.val = v
			e.st = stateLoneVal
		}
	case stateLiteralRun:
		if e.val == v {
			e.flushLiteralRun(e.history)
			e.val = v
			e.runLen = 2
			e.st = stateRun
		} else {
			e.history = append(e.history, e.val)
			e.val = v
		}
	case stateNullRun:
		e.flushNullRun(e.nullLen)
		e.val = v
		e.st = stateLoneVal
	}
}

// Finish flushes any buffered state and returns the total bytes written.
func (e *Encoder[T]) Finish() int {
	switch e.st {
	case stateNullRun:
		e.flushNullRun(e.nullLen)
	case stateLoneVal:
		e.flushLiteralRun([]T{e.val})
	case stateRun:
		e.flushRun(e.val, e.runLen)
	case stateLiteralRun:
		run := append(e.history, e.val)
		e.flushLiteralRun(run)
	case stateEmpty:
	}
	e.st = stateEmpty
	return e.out.Finish()
}

func (e *Encoder[T]) flushRun(v T, n int) {
	e.out.AppendVarint(int64(n))
	raw.AppendWith(e.out, e.codec, v)
}

func (e *Encoder[T]) flushNullRun(n int) {
	e.out.AppendVarint(0)
	e.out.AppendUvarint(uint64(n))
}

func (e *Encoder[T]) flushLiteralRun(run []T) {
	e.out.AppendVarint(-int64(len(run)))
	for _, v := range run {
		raw.AppendWith(e.out, e.codec, v)
	}
}

// Decoder is an endless-after-exhaustion RLE decoder: once the underlying
// bytes are consumed and any pending run is drained, every further Next
// call returns ok=false rather than signalling end of stream via a sentinel
// error.
type Decoder[T any] struct {
	raw     *raw.Decoder
	codec   encoding.Codec[T]
	last    T
	hasLast bool
	count   int64
	literal bool
}

// NewDecoder constructs a Decoder over data.
func NewDecoder[T any](data []byte, codec encoding.Codec[T]) *Decoder[T] {
	return &Decoder[T]{raw: raw.NewDecoder(data), codec: codec}
}

// Done reports true once there is no more encoded state to yield: the byte
// cursor is exhausted AND no run is still pending. This is a deliberate
// refinement over delegating straight to the byte cursor (see DESIGN.md):
// it lets Splice's "copy remaining items" phase terminate exactly when the
// logical value stream, not just the byte stream, is drained.
func (d *Decoder[T]) Done() bool {
	return d.count == 0 && d.raw.Done()
}

// Next returns the next value. ok is false once Done(), and also when the
// next block header cannot be decoded (Done() then stays false); present is
// false for a null.
func (d *Decoder[T]) Next() (value T, present bool, ok bool) {
	for d.count == 0 {
		if d.raw.Done() {
			var zero T
			return zero, false, false
		}
		c, err := d.raw.ReadVarint()
		if err != nil {
			var zero T
			return zero, false, false
		}
		switch {
		case c > 0:
			d.count = c
			v, err := raw.ReadWith(d.raw, d.codec)
			d.hasLast = err == nil
			d.last = v
			d.literal = false
		case c < 0:
			d.count = -c
			d.literal = true
		default:
			n, err := d.raw.ReadUvarint()
			if err != nil {
				n = 0
			}
			d.count = int64(n)
			d.hasLast = false
			d.literal = false
		}
	}
	d.count--
	if d.literal {
		v, err := raw.ReadWith(d.raw, d.codec)
		if err != nil {
			var zero T
			return zero, false, true
		}
		return v, true, true
	}
	if d.hasLast {
		return d.last, true, true
	}
	var zero T
	return zero, false, true
}

// Clone returns an independent copy of d positioned at the same cursor, so
// a caller can re-iterate the same logical stream twice (the value codec's
// two-pass splice needs a metadata-only pass and a full meta+raw pass over
// the same underlying data).
func (d *Decoder[T]) Clone() *Decoder[T] {
	c := *d
	r := *d.raw
	c.raw = &r
	return &c
}

// Splice replaces [replaceStart, replaceStart+replaceLen) items read from
// src with replacements, writing the result through dst, and returns the
// number of bytes written. *Decoder[T] and *Encoder[T] structurally satisfy
// encoding.Source[T]/Sink[T], so this delegates to the shared algorithm.
func Splice[T comparable](src *Decoder[T], dst *Encoder[T], replaceStart, replaceLen int, replacements []encoding.Opt[T]) int {
	return encoding.Splice[T](src, dst, replaceStart, replaceLen, replacements)
}
