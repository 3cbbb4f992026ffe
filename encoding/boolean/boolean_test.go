package boolean_test

import (
	"reflect"
	"testing"

	"github.com/segmentio/columnar/encoding/boolean"
	"github.com/segmentio/columnar/encoding/raw"
	"github.com/segmentio/columnar/internal/quick"
)

func encodeBools(vs []bool) []byte {
	out := raw.NewEncoder(nil)
	enc := boolean.NewEncoder(out)
	for _, v := range vs {
		enc.Append(v, true)
	}
	enc.Finish()
	return out.Bytes()
}

func decodeBools(data []byte, n int) []bool {
	dec := boolean.NewDecoder(data)
	out := make([]bool, 0, n)
	for i := 0; i < n; i++ {
		v, _, ok := dec.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	err := quick.Check(func(vs []bool) bool {
		data := encodeBools(vs)
		got := decodeBools(data, len(vs))
		return reflect.DeepEqual(vs, got)
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestNullCoercedToFalse(t *testing.T) {
	out := raw.NewEncoder(nil)
	enc := boolean.NewEncoder(out)
	enc.Append(true, true)
	enc.Append(true, false) // null input coerced to false
	enc.Append(true, true)
	enc.Finish()

	got := decodeBools(out.Bytes(), 3)
	want := []bool{true, false, true}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFirstRunFalse(t *testing.T) {
	data := encodeBools([]bool{false, false, true})
	got := decodeBools(data, 3)
	want := []bool{false, false, true}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSplice(t *testing.T) {
	data := encodeBools([]bool{true, true, false, false, true})
	srcDec := boolean.NewDecoder(data)
	out := raw.NewEncoder(nil)
	dstEnc := boolean.NewEncoder(out)
	boolean.Splice(srcDec, dstEnc, 2, 2, []bool{true, true, true})

	got := decodeBools(out.Bytes(), 6)
	want := []bool{true, true, true, true, true, true}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
