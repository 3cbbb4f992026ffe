// Package encoding defines the stream-codec contract (Source/Sink) shared by
// every primitive encoder/decoder in this module, plus the LEB128 helpers
// the wire format is built from.
package encoding

import "errors"

// ErrTruncated is returned by a LEB128 reader when the input ends in the
// middle of a varint (a continuation bit was set on the final byte).
var ErrTruncated = errors.New("columnar/encoding: truncated leb128 value")

// ErrOverflow is returned when a LEB128 value does not fit in 64 bits.
var ErrOverflow = errors.New("columnar/encoding: leb128 value overflows 64 bits")

// PutUvarint appends the unsigned LEB128 encoding of v to buf and returns
// the number of bytes written.
func PutUvarint(buf []byte, v uint64) ([]byte, int) {
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
		} else {
			buf = append(buf, b)
			n++
			break
		}
		n++
	}
	return buf, n
}

// Uvarint reads an unsigned LEB128 value from the front of b, returning the
// value and the number of bytes consumed. It returns ErrTruncated if b ends
// before a terminating byte, and ErrOverflow if the value does not fit a
// uint64.
func Uvarint(b []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < len(b); i++ {
		c := b[i]
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
		result |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncated
}

// PutVarint appends the signed LEB128 (raw continuation-bit, sign-extended)
// encoding of v to buf. This is NOT zigzag encoding: it matches the
// `leb128` crate's `write::signed`, which is the wire format this codec must
// produce. encoding/binary.PutVarint in the standard library uses zigzag
// framing and is not wire-compatible.
func PutVarint(buf []byte, v int64) ([]byte, int) {
	n := 0
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		buf = append(buf, b)
		n++
	}
	return buf, n
}

// Varint reads a signed LEB128 value from the front of b.
func Varint(b []byte) (int64, int, error) {
	var result int64
	var shift uint
	var i int
	for i = 0; i < len(b); i++ {
		c := b[i]
		if shift >= 64 {
			return 0, 0, ErrOverflow
		}
		result |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				result |= -1 << shift
			}
			return result, i + 1, nil
		}
	}
	return 0, 0, ErrTruncated
}

// UvarintLen returns the number of bytes PutUvarint would write for v,
// without allocating. Used by the value codec's two-pass splice to size
// metadata cells without re-encoding the payload.
func UvarintLen(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

// VarintLen returns the number of bytes PutVarint would write for v.
func VarintLen(v int64) int {
	n := 0
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		}
		n++
	}
	return n
}
