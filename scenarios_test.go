package columnar

import (
	"reflect"
	"testing"

	"github.com/segmentio/columnar/encoding"
	"github.com/segmentio/columnar/encoding/raw"
	"github.com/segmentio/columnar/encoding/rle"
	"github.com/segmentio/columnar/encoding/value"
)

// Six end-to-end scenarios (layout-parser and codec behavior spelled out
// concretely, rather than as properties) that double as worked examples of
// the wire format.

func TestScenarioEmptyStream(t *testing.T) {
	dec := rle.NewDecoder[uint64](nil, encoding.Uint64Codec)
	if !dec.Done() {
		t.Fatal("decoder over nil input should report Done immediately")
	}
	if _, _, ok := dec.Next(); ok {
		t.Fatal("Next on an empty stream should report ok=false")
	}

	out := raw.NewEncoder(nil)
	enc := rle.NewEncoder[uint64](out, encoding.Uint64Codec)
	n := enc.Finish()
	if n != 0 {
		t.Fatalf("finish length = %d, want 0", n)
	}
	if len(out.Bytes()) != 0 {
		t.Fatalf("encoded bytes = %v, want empty", out.Bytes())
	}
}

func TestScenarioRLEAlternationAndInsert(t *testing.T) {
	initial := []uint64{1, 1, 2, 2, 3, 2, 3, 1, 3}

	encode := func(vs []uint64) []byte {
		out := raw.NewEncoder(nil)
		enc := rle.NewEncoder[uint64](out, encoding.Uint64Codec)
		for _, v := range vs {
			enc.Append(v, true)
		}
		enc.Finish()
		return out.Bytes()
	}
	decode := func(data []byte, n int) []uint64 {
		dec := rle.NewDecoder[uint64](data, encoding.Uint64Codec)
		out := make([]uint64, 0, n)
		for i := 0; i < n; i++ {
			v, _, ok := dec.Next()
			if !ok {
				break
			}
			out = append(out, v)
		}
		return out
	}

	data := encode(initial)
	if got := decode(data, len(initial)); !reflect.DeepEqual(got, initial) {
		t.Fatalf("round trip: got %v, want %v", got, initial)
	}

	srcDec := rle.NewDecoder[uint64](data, encoding.Uint64Codec)
	out := raw.NewEncoder(nil)
	dstEnc := rle.NewEncoder[uint64](out, encoding.Uint64Codec)
	rle.Splice(srcDec, dstEnc, 4, 0, []encoding.Opt[uint64]{encoding.Some(uint64(5))})

	want := []uint64{1, 1, 2, 2, 5, 3, 2, 3, 1, 3}
	if got := decode(out.Bytes(), len(want)); !reflect.DeepEqual(got, want) {
		t.Fatalf("after insert: got %v, want %v", got, want)
	}
}

func TestScenarioValueColumnWithNullsAndInts(t *testing.T) {
	vs := []value.PrimVal{
		value.Null(),
		value.NewUint(1),
		value.Null(),
		value.NewInt(-2),
		value.NewString("x"),
	}
	metaOut := raw.NewEncoder(nil)
	rawOut := raw.NewEncoder(nil)
	enc := value.NewEncoder(metaOut, rawOut)
	for _, v := range vs {
		enc.Append(v)
	}
	enc.Finish()

	metaDec := rle.NewDecoder[uint64](metaOut.Bytes(), encoding.Uint64Codec)
	var metaVals []uint64
	for i := 0; i < len(vs); i++ {
		v, _, ok := metaDec.Next()
		if !ok {
			break
		}
		metaVals = append(metaVals, v)
	}
	wantMeta := []uint64{0, 0x13, 0, 0x14, 0x16}
	if !reflect.DeepEqual(metaVals, wantMeta) {
		t.Fatalf("metadata stream: got %#x, want %#x", metaVals, wantMeta)
	}

	wantRaw := []byte{0x01, 0x7E, 'x'}
	if !reflect.DeepEqual(rawOut.Bytes(), wantRaw) {
		t.Fatalf("raw stream: got %#x, want %#x", rawOut.Bytes(), wantRaw)
	}
}

// TestScenarioGroupSpliceExpansion builds a single-column Group RowBlock
// with per-row sub-entry counts [2,0,3] and splices the empty middle row
// with two replacement rows ([a,b] and [c]), producing counts [2,2,1,3] and
// a flat sub-column stream that is the original prefix/suffix around the
// three new cells.
func TestScenarioGroupSpliceExpansion(t *testing.T) {
	b := &blockBuilder{}
	b.addRange(1, ColumnTypeGroup, encodeRLEUint64(2, 0, 3))
	b.addRange(1, ColumnTypeActor, encodeRLEUint64(10, 11, 20, 21, 22))
	rb := b.build(t)

	const a, bVal, c = 97, 98, 99
	cb := func(column, replacementRow int) (CellValue, bool) {
		switch replacementRow {
		case 0:
			return ListCell([][]CellValue{{UintCell(a)}, {UintCell(bVal)}}), true
		case 1:
			return ListCell([][]CellValue{{UintCell(c)}}), true
		}
		return CellValue{}, false
	}

	newRB, err := rb.Splice(1, 1, 2, cb)
	if err != nil {
		t.Fatal(err)
	}
	rows := collectRows(t, newRB)
	want := [][]RowEntry{
		{{0, ListCell([][]CellValue{{UintCell(10)}, {UintCell(11)}})}},
		{{0, ListCell([][]CellValue{{UintCell(a)}, {UintCell(bVal)}})}},
		{{0, ListCell([][]CellValue{{UintCell(c)}})}},
		{{0, ListCell([][]CellValue{{UintCell(20)}, {UintCell(21)}, {UintCell(22)}})}},
	}
	if !reflect.DeepEqual(want, rows) {
		t.Fatalf("got %#v, want %#v", rows, want)
	}
}

func TestScenarioKeyDecoding(t *testing.T) {
	cases := []struct {
		name            string
		actor, counter, str CellValue
		want            Key
		wantErr         bool
	}{
		{"elem head", NullCell(), UintCell(0), NullCell(), Key{Kind: KeyElem, Elem: ElemId{Head: true}}, false},
		{"prop", NullCell(), NullCell(), StringCell("x"), Key{Kind: KeyProp, Prop: "x"}, false},
		{"elem op", UintCell(7), UintCell(9), NullCell(), Key{Kind: KeyElem, Elem: ElemId{ID: OpId{Counter: 9, Actor: 7}}}, false},
		{"all three set is an error", UintCell(7), UintCell(9), StringCell("x"), Key{}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := decodeKey(c.actor, c.counter, c.str)
			if c.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(c.want, got) {
				t.Fatalf("got %#v, want %#v", got, c.want)
			}
		})
	}
}

func TestScenarioUnknownValueTypePreserved(t *testing.T) {
	const wireCode = 0x0B // type codes 10-15 are reserved for forward compatibility
	meta := uint64(3<<4) | wireCode
	rawBytes := []byte{0xAA, 0xBB, 0xCC}

	metaOut := raw.NewEncoder(nil)
	metaEnc := rle.NewEncoder[uint64](metaOut, encoding.Uint64Codec)
	metaEnc.Append(meta, true)
	metaEnc.Finish()

	dec := value.NewDecoder(metaOut.Bytes(), rawBytes)
	got, err, ok := dec.Next()
	if !ok || err != nil {
		t.Fatalf("got (ok=%v, err=%v), want a decoded cell", ok, err)
	}
	want := value.NewUnknown(11, []byte{0xAA, 0xBB, 0xCC})
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	reMetaOut := raw.NewEncoder(nil)
	reRawOut := raw.NewEncoder(nil)
	reEnc := value.NewEncoder(reMetaOut, reRawOut)
	reEnc.Append(got)
	reEnc.Finish()

	if !reflect.DeepEqual(reMetaOut.Bytes(), metaOut.Bytes()) {
		t.Fatalf("re-encoded metadata = %#x, want %#x", reMetaOut.Bytes(), metaOut.Bytes())
	}
	if !reflect.DeepEqual(reRawOut.Bytes(), rawBytes) {
		t.Fatalf("re-encoded raw = %#x, want %#x", reRawOut.Bytes(), rawBytes)
	}
}
