package encoding

// Codec bundles the encode/decode pair a generic primitive codec (RLE,
// delta, ...) needs for its element type T. Go's built-in scalar types
// (uint64, int64, string, []byte) cannot carry methods, so the family of
// Encodable implementations the original source expresses as trait impls is
// expressed here as codec values rather than an interface constraint.
type Codec[T any] struct {
	Encode func(buf []byte, v T) ([]byte, int)
	Decode func(b []byte) (T, int, error)
}

// Uint64Codec encodes unsigned LEB128 values.
var Uint64Codec = Codec[uint64]{
	Encode: func(buf []byte, v uint64) ([]byte, int) { return PutUvarint(buf, v) },
	Decode: func(b []byte) (uint64, int, error) { return Uvarint(b) },
}

// Int64Codec encodes signed LEB128 values.
var Int64Codec = Codec[int64]{
	Encode: func(buf []byte, v int64) ([]byte, int) { return PutVarint(buf, v) },
	Decode: func(b []byte) (int64, int, error) { return Varint(b) },
}

// StringCodec encodes a length-prefixed (unsigned LEB128 byte count) UTF-8
// string.
var StringCodec = Codec[string]{
	Encode: func(buf []byte, v string) ([]byte, int) {
		start := len(buf)
		buf, _ = PutUvarint(buf, uint64(len(v)))
		buf = append(buf, v...)
		return buf, len(buf) - start
	},
	Decode: func(b []byte) (string, int, error) {
		n, nlen, err := Uvarint(b)
		if err != nil {
			return "", 0, err
		}
		end := nlen + int(n)
		if end > len(b) {
			return "", 0, ErrTruncated
		}
		return string(b[nlen:end]), end, nil
	},
}

// BytesCodec encodes a length-prefixed raw byte string.
var BytesCodec = Codec[[]byte]{
	Encode: func(buf []byte, v []byte) ([]byte, int) {
		start := len(buf)
		buf, _ = PutUvarint(buf, uint64(len(v)))
		buf = append(buf, v...)
		return buf, len(buf) - start
	},
	Decode: func(b []byte) ([]byte, int, error) {
		n, nlen, err := Uvarint(b)
		if err != nil {
			return nil, 0, err
		}
		end := nlen + int(n)
		if end > len(b) {
			return nil, 0, ErrTruncated
		}
		out := make([]byte, n)
		copy(out, b[nlen:end])
		return out, end, nil
	},
}
