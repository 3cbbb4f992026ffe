// Package value implements the value primitive stream codec (spec §4.1.5):
// an RLE-encoded metadata stream of packed (type_code, length) cells plus a
// raw payload stream, together forming a column of tagged, heterogeneous
// scalars.
package value

import (
	"errors"
	"math"

	"github.com/segmentio/columnar/encoding"
	"github.com/segmentio/columnar/encoding/raw"
	"github.com/segmentio/columnar/encoding/rle"
)

// Kind identifies the scalar shape a PrimVal carries.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindUint
	KindInt
	KindFloat
	KindString
	KindBytes
	KindCounter
	KindTimestamp
	KindUnknown
)

// typeCode is the 4-bit wire tag packed into a metadata cell's low nibble.
type typeCode uint8

const (
	codeNull      typeCode = 0
	codeFalse     typeCode = 1
	codeTrue      typeCode = 2
	codeUleb      typeCode = 3
	codeLeb       typeCode = 4
	codeFloat     typeCode = 5
	codeString    typeCode = 6
	codeBytes     typeCode = 7
	codeCounter   typeCode = 8
	codeTimestamp typeCode = 9
)

// PrimVal is a decoded (or to-be-encoded) value-column cell.
type PrimVal struct {
	Kind Kind

	Bool    bool
	Uint    uint64
	Int     int64
	Float   float64
	Str     string
	Bytes   []byte
	TypeTag uint8 // set only when Kind == KindUnknown: the raw 10..15 wire code
}

// Null, Bool, Uint, Int, Float, String, Bytes, Counter and Timestamp
// construct the corresponding PrimVal.
func Null() PrimVal             { return PrimVal{Kind: KindNull} }
func NewBool(b bool) PrimVal    { return PrimVal{Kind: KindBool, Bool: b} }
func NewUint(v uint64) PrimVal  { return PrimVal{Kind: KindUint, Uint: v} }
func NewInt(v int64) PrimVal    { return PrimVal{Kind: KindInt, Int: v} }
func NewFloat(v float64) PrimVal{ return PrimVal{Kind: KindFloat, Float: v} }
func NewString(s string) PrimVal{ return PrimVal{Kind: KindString, Str: s} }
func NewBytes(b []byte) PrimVal { return PrimVal{Kind: KindBytes, Bytes: b} }
func NewCounter(v uint64) PrimVal   { return PrimVal{Kind: KindCounter, Uint: v} }
func NewTimestamp(v uint64) PrimVal { return PrimVal{Kind: KindTimestamp, Uint: v} }

// NewUnknown constructs an opaque forward-compatible cell for a wire code
// outside 0..9 (i.e. 10..15).
func NewUnknown(code uint8, data []byte) PrimVal {
	return PrimVal{Kind: KindUnknown, TypeTag: code, Bytes: data}
}

// ErrBadFloatLength is returned when a Float metadata cell does not carry
// exactly 4 or 8 payload bytes.
var ErrBadFloatLength = errors.New("columnar/encoding/value: float value must be 4 or 8 bytes")

func wireCode(v PrimVal) typeCode {
	switch v.Kind {
	case KindNull:
		return codeNull
	case KindBool:
		if v.Bool {
			return codeTrue
		}
		return codeFalse
	case KindUint:
		return codeUleb
	case KindInt:
		return codeLeb
	case KindFloat:
		return codeFloat
	case KindString:
		return codeString
	case KindBytes:
		return codeBytes
	case KindCounter:
		return codeCounter
	case KindTimestamp:
		return codeTimestamp
	case KindUnknown:
		return typeCode(v.TypeTag)
	}
	return codeNull
}

func payloadLen(v PrimVal) uint64 {
	switch v.Kind {
	case KindUint, KindCounter, KindTimestamp:
		return uint64(encoding.UvarintLen(v.Uint))
	case KindInt:
		return uint64(encoding.VarintLen(v.Int))
	case KindFloat:
		return 8
	case KindString:
		return uint64(len(v.Str))
	case KindBytes, KindUnknown:
		return uint64(len(v.Bytes))
	default:
		return 0
	}
}

func packMeta(v PrimVal) uint64 {
	return (payloadLen(v) << 4) | uint64(wireCode(v))
}

func writePayload(out *raw.Encoder, v PrimVal) {
	switch v.Kind {
	case KindUint, KindCounter, KindTimestamp:
		out.AppendUvarint(v.Uint)
	case KindInt:
		out.AppendVarint(v.Int)
	case KindFloat:
		var b [8]byte
		bits := math.Float64bits(v.Float)
		for i := 0; i < 8; i++ {
			b[i] = byte(bits >> (8 * i))
		}
		out.Append(b[:])
	case KindString:
		out.Append([]byte(v.Str))
	case KindBytes, KindUnknown:
		out.Append(v.Bytes)
	}
}

func readPayload(code typeCode, length int, r *raw.Decoder) (PrimVal, error) {
	switch code {
	case codeNull:
		return Null(), nil
	case codeFalse:
		return NewBool(false), nil
	case codeTrue:
		return NewBool(true), nil
	case codeUleb:
		b, err := r.ReadBytes(length)
		if err != nil {
			return PrimVal{}, err
		}
		n, _, err := encoding.Uvarint(b)
		if err != nil {
			return PrimVal{}, err
		}
		return NewUint(n), nil
	case codeLeb:
		b, err := r.ReadBytes(length)
		if err != nil {
			return PrimVal{}, err
		}
		n, _, err := encoding.Varint(b)
		if err != nil {
			return PrimVal{}, err
		}
		return NewInt(n), nil
	case codeFloat:
		if length != 4 && length != 8 {
			return PrimVal{}, ErrBadFloatLength
		}
		b, err := r.ReadBytes(length)
		if err != nil {
			return PrimVal{}, err
		}
		if length == 4 {
			var bits uint32
			for i := 0; i < 4; i++ {
				bits |= uint32(b[i]) << (8 * i)
			}
			return NewFloat(float64(math.Float32frombits(bits))), nil
		}
		var bits uint64
		for i := 0; i < 8; i++ {
			bits |= uint64(b[i]) << (8 * i)
		}
		return NewFloat(math.Float64frombits(bits)), nil
	case codeString:
		b, err := r.ReadBytes(length)
		if err != nil {
			return PrimVal{}, err
		}
		return NewString(string(b)), nil
	case codeBytes:
		b, err := r.ReadBytes(length)
		if err != nil {
			return PrimVal{}, err
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		return NewBytes(cp), nil
	case codeCounter:
		b, err := r.ReadBytes(length)
		if err != nil {
			return PrimVal{}, err
		}
		n, _, err := encoding.Uvarint(b)
		if err != nil {
			return PrimVal{}, err
		}
		return NewCounter(n), nil
	case codeTimestamp:
		b, err := r.ReadBytes(length)
		if err != nil {
			return PrimVal{}, err
		}
		n, _, err := encoding.Uvarint(b)
		if err != nil {
			return PrimVal{}, err
		}
		return NewTimestamp(n), nil
	default:
		b, err := r.ReadBytes(length)
		if err != nil {
			return PrimVal{}, err
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		return NewUnknown(uint8(code), cp), nil
	}
}

// Decoder reads a value column: one metadata cell per row from an RLE u64
// stream, paired with a raw payload read from a second stream.
type Decoder struct {
	meta *rle.Decoder[uint64]
	raw  *raw.Decoder
}

// NewDecoder constructs a Decoder over a metadata byte range and a raw
// payload byte range.
func NewDecoder(metaBytes, rawBytes []byte) *Decoder {
	return &Decoder{
		meta: rle.NewDecoder[uint64](metaBytes, encoding.Uint64Codec),
		raw:  raw.NewDecoder(rawBytes),
	}
}

// Done reports whether the metadata stream is exhausted.
func (d *Decoder) Done() bool { return d.meta.Done() }

// Next decodes the next cell. ok is false once Done().
func (d *Decoder) Next() (PrimVal, error, bool) {
	m, present, ok := d.meta.Next()
	if !ok {
		return PrimVal{}, nil, false
	}
	if !present {
		return Null(), nil, true
	}
	code := typeCode(m & 0x0f)
	length := int(m >> 4)
	v, err := readPayload(code, length, d.raw)
	return v, err, true
}

// Encoder is a one-pass value-column builder: Append writes directly into
// both the metadata and raw streams of a fresh column. Splice does not use
// it; Splice always reads from an existing Decoder.
type Encoder struct {
	metaEnc *rle.Encoder[uint64]
	rawEnc  *raw.Encoder
}

// NewEncoder constructs an Encoder writing metadata through metaOut and
// payloads through rawOut.
func NewEncoder(metaOut, rawOut *raw.Encoder) *Encoder {
	return &Encoder{
		metaEnc: rle.NewEncoder[uint64](metaOut, encoding.Uint64Codec),
		rawEnc:  rawOut,
	}
}

// Append writes one cell.
func (e *Encoder) Append(v PrimVal) {
	e.metaEnc.Append(packMeta(v), true)
	writePayload(e.rawEnc, v)
}

// Finish flushes the metadata encoder and returns (metaBytesWritten,
// rawBytesWritten).
func (e *Encoder) Finish() (int, int) {
	return e.metaEnc.Finish(), e.rawEnc.Finish()
}

// Range is a half-open byte range within a shared backing buffer.
type Range struct{ Start, End int }

// primValSource adapts a value Decoder to encoding.Source[PrimVal] for the
// raw-payload splice pass: a value column has no separate null flag (Null is
// just a Kind), so present is always true, and a decode error folds into ok.
type primValSource struct {
	d *Decoder
}

func (s *primValSource) Next() (v PrimVal, present bool, ok bool) {
	v, err, ok := s.d.Next()
	if !ok || err != nil {
		return PrimVal{}, false, false
	}
	return v, true, true
}

func (s *primValSource) Done() bool { return s.d.Done() }

// primValSink adapts a raw.Encoder to encoding.Sink[PrimVal], writing each
// appended value's payload bytes (the metadata word is handled separately by
// the RLE metadata pass, so present is unused here).
type primValSink struct {
	enc *raw.Encoder
}

func (s *primValSink) Append(v PrimVal, present bool) { writePayload(s.enc, v) }
func (s *primValSink) Finish() int                    { return s.enc.Finish() }

// Splice performs the value codec's two-pass splice (spec §4.1.5): first
// over the metadata stream (computing new metadata cells for replacements
// without needing their raw payload length precomputed separately — it is
// derived directly from each PrimVal), then over the raw stream, emitting
// payloads in the same order. Both passes delegate to encoding.Splice: the
// metadata pass runs directly over the cloned RLE decoder/encoder pair, the
// raw pass through the primValSource/primValSink adapters above. buf is the
// shared output buffer that both the metadata range and the (immediately
// following) raw range are carved from; start is buf's current length when
// encoding begins.
func Splice(src *Decoder, buf []byte, start int, replaceStart, replaceLen int, replacements []PrimVal) (metaRange, rawRange Range, out []byte) {
	metaSrc := src.meta.Clone()
	metaEnc := raw.NewEncoder(buf)
	metaRLE := rle.NewEncoder[uint64](metaEnc, encoding.Uint64Codec)

	metaOpts := make([]encoding.Opt[uint64], len(replacements))
	for i, r := range replacements {
		metaOpts[i] = encoding.Some(packMeta(r))
	}
	metaLen := encoding.Splice[uint64](metaSrc, metaRLE, replaceStart, replaceLen, metaOpts)
	buf = metaEnc.Bytes()
	metaRange = Range{Start: start, End: start + metaLen}

	rawEnc := raw.NewEncoder(buf)
	rawOpts := make([]encoding.Opt[PrimVal], len(replacements))
	for i, r := range replacements {
		rawOpts[i] = encoding.Some(r)
	}
	rawLen := encoding.Splice[PrimVal](&primValSource{d: src}, &primValSink{enc: rawEnc}, replaceStart, replaceLen, rawOpts)
	buf = rawEnc.Bytes()
	rawRange = Range{Start: metaRange.End, End: metaRange.End + rawLen}
	return metaRange, rawRange, buf
}
