package columnar

import (
	"reflect"
	"testing"

	"github.com/segmentio/columnar/encoding"
	"github.com/segmentio/columnar/encoding/boolean"
	"github.com/segmentio/columnar/encoding/delta"
	"github.com/segmentio/columnar/encoding/raw"
	"github.com/segmentio/columnar/encoding/rle"
	"github.com/segmentio/columnar/encoding/value"
)

// blockBuilder assembles a contiguous (ColumnSpec, ByteRange)* stream and its
// backing buffer one column at a time, computing each range from the
// running buffer length so tests don't hand-compute offsets.
type blockBuilder struct {
	specs  []ColumnSpec
	ranges []ByteRange
	buf    []byte
}

func (b *blockBuilder) addRange(id ColumnId, typ ColumnType, data []byte) {
	start := len(b.buf)
	b.buf = append(b.buf, data...)
	b.specs = append(b.specs, NewColumnSpec(id, typ))
	b.ranges = append(b.ranges, ByteRange{start, len(b.buf)})
}

func (b *blockBuilder) build(t *testing.T) *RowBlock {
	t.Helper()
	rb, err := NewRowBlock(b.buf, b.specs, b.ranges)
	if err != nil {
		t.Fatal(err)
	}
	return rb
}

func encodeRLEUint64(vs ...uint64) []byte {
	out := raw.NewEncoder(nil)
	enc := rle.NewEncoder[uint64](out, encoding.Uint64Codec)
	for _, v := range vs {
		enc.Append(v, true)
	}
	enc.Finish()
	return out.Bytes()
}

func encodeDelta(vs ...uint64) []byte {
	out := raw.NewEncoder(nil)
	enc := delta.NewEncoder(out)
	for _, v := range vs {
		enc.Append(v, true)
	}
	enc.Finish()
	return out.Bytes()
}

func encodeBooleans(vs ...bool) []byte {
	out := raw.NewEncoder(nil)
	enc := boolean.NewEncoder(out)
	for _, v := range vs {
		enc.Append(v, true)
	}
	enc.Finish()
	return out.Bytes()
}

func encodeRLEStrings(vs ...string) []byte {
	out := raw.NewEncoder(nil)
	enc := rle.NewEncoder[string](out, encoding.StringCodec)
	for _, v := range vs {
		enc.Append(v, true)
	}
	enc.Finish()
	return out.Bytes()
}

func encodeValues(vs ...value.PrimVal) (meta, rawBytes []byte) {
	metaOut := raw.NewEncoder(nil)
	rawOut := raw.NewEncoder(nil)
	enc := value.NewEncoder(metaOut, rawOut)
	for _, v := range vs {
		enc.Append(v)
	}
	enc.Finish()
	return metaOut.Bytes(), rawOut.Bytes()
}

// buildTestBlock constructs a six-column RowBlock (Actor, DeltaInteger,
// Boolean, String, Value, Group-of-Actor-and-Boolean) with 3 rows, exercising
// every Column variant newColumnDecoder dispatches on.
func buildTestBlock(t *testing.T) *RowBlock {
	t.Helper()
	b := &blockBuilder{}
	b.addRange(1, ColumnTypeActor, encodeRLEUint64(10, 10, 20))
	b.addRange(2, ColumnTypeDeltaInteger, encodeDelta(100, 105, 103))
	b.addRange(3, ColumnTypeBoolean, encodeBooleans(true, false, true))
	b.addRange(4, ColumnTypeString, encodeRLEStrings("a", "a", "b"))

	meta, rawBytes := encodeValues(value.NewUint(1), value.NewString("x"), value.Null())
	b.addRange(5, ColumnTypeValueMetadata, meta)
	b.addRange(5, ColumnTypeValue, rawBytes)

	b.addRange(6, ColumnTypeGroup, encodeRLEUint64(1, 0, 2))
	b.addRange(6, ColumnTypeActor, encodeRLEUint64(7, 8, 9))
	b.addRange(6, ColumnTypeBoolean, encodeBooleans(true, false, true))

	return b.build(t)
}

func collectRows(t *testing.T, rb *RowBlock) [][]RowEntry {
	t.Helper()
	it := rb.Iter()
	var rows [][]RowEntry
	for {
		row, ok, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			return rows
		}
		rows = append(rows, row)
	}
}

func TestRowIteratorDecodesAllColumnKinds(t *testing.T) {
	rb := buildTestBlock(t)
	rows := collectRows(t, rb)

	want := [][]RowEntry{
		{
			{0, UintCell(10)}, {1, UintCell(100)}, {2, BoolCell(true)}, {3, StringCell("a")},
			{4, ValueCell(value.NewUint(1))},
			{5, ListCell([][]CellValue{{UintCell(7), BoolCell(true)}})},
		},
		{
			{0, UintCell(10)}, {1, UintCell(105)}, {2, BoolCell(false)}, {3, StringCell("a")},
			{4, ValueCell(value.NewString("x"))},
			{5, ListCell([][]CellValue{})},
		},
		{
			{0, UintCell(20)}, {1, UintCell(103)}, {2, BoolCell(true)}, {3, StringCell("b")},
			{4, ValueCell(value.Null())},
			{5, ListCell([][]CellValue{{UintCell(8), BoolCell(false)}, {UintCell(9), BoolCell(true)}})},
		},
	}
	if !reflect.DeepEqual(want, rows) {
		t.Fatalf("got %#v, want %#v", rows, want)
	}
}

func TestRowCount(t *testing.T) {
	rb := buildTestBlock(t)
	n, err := rb.RowCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("got %d, want 3", n)
	}
}

func TestRowBlockSpliceReplacesOneRowAcrossAllColumns(t *testing.T) {
	rb := buildTestBlock(t)

	replacement := map[int]CellValue{
		0: UintCell(99),
		1: UintCell(150),
		2: BoolCell(true),
		3: StringCell("z"),
		4: ValueCell(value.NewFloat(2.5)),
		5: ListCell([][]CellValue{{UintCell(42), BoolCell(false)}}),
	}
	cb := func(column, replacementRow int) (CellValue, bool) {
		v, ok := replacement[column]
		return v, ok
	}

	newRB, err := rb.Splice(1, 1, 1, cb)
	if err != nil {
		t.Fatal(err)
	}

	n, err := newRB.RowCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("got row count %d, want 3", n)
	}

	rows := collectRows(t, newRB)
	want := [][]RowEntry{
		{
			{0, UintCell(10)}, {1, UintCell(100)}, {2, BoolCell(true)}, {3, StringCell("a")},
			{4, ValueCell(value.NewUint(1))},
			{5, ListCell([][]CellValue{{UintCell(7), BoolCell(true)}})},
		},
		{
			{0, UintCell(99)}, {1, UintCell(150)}, {2, BoolCell(true)}, {3, StringCell("z")},
			{4, ValueCell(value.NewFloat(2.5))},
			{5, ListCell([][]CellValue{{UintCell(42), BoolCell(false)}})},
		},
		{
			{0, UintCell(20)}, {1, UintCell(103)}, {2, BoolCell(true)}, {3, StringCell("b")},
			{4, ValueCell(value.Null())},
			{5, ListCell([][]CellValue{{UintCell(8), BoolCell(false)}, {UintCell(9), BoolCell(true)}})},
		},
	}
	if !reflect.DeepEqual(want, rows) {
		t.Fatalf("got %#v, want %#v", rows, want)
	}

	// The source block must be untouched by the splice.
	origRows := collectRows(t, rb)
	if len(origRows) != 3 || origRows[1][0].Value.Uint != 10 {
		t.Fatalf("source RowBlock was mutated: %#v", origRows)
	}
}

func TestRowBlockSpliceRangeDeletesAllRows(t *testing.T) {
	rb := buildTestBlock(t)

	newRB, err := rb.SpliceRange(RowRange{}, 0, func(int, int) (CellValue, bool) { return CellValue{}, false })
	if err != nil {
		t.Fatal(err)
	}
	n, err := newRB.RowCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("got row count %d, want 0", n)
	}
}

func TestRowRangeNormalize(t *testing.T) {
	intp := func(v int) *int { return &v }

	cases := []struct {
		name      string
		r         RowRange
		rowCount  int
		wantStart int
		wantLen   int
	}{
		{"fully open", RowRange{}, 5, 0, 5},
		{"negative start clamps to 0", RowRange{Start: intp(-3)}, 5, 0, 5},
		{"end past row count clamps", RowRange{End: intp(100)}, 5, 0, 5},
		{"end before start collapses to empty", RowRange{Start: intp(3), End: intp(1)}, 5, 3, 0},
		{"start past row count clamps", RowRange{Start: intp(10)}, 5, 5, 0},
		{"ordinary closed range", RowRange{Start: intp(1), End: intp(3)}, 5, 1, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			start, length := c.r.normalize(c.rowCount)
			if start != c.wantStart || length != c.wantLen {
				t.Fatalf("got (%d,%d), want (%d,%d)", start, length, c.wantStart, c.wantLen)
			}
		})
	}
}
