package columnar

import (
	"reflect"
	"testing"

	"github.com/segmentio/columnar/encoding/value"
)

// buildChangeOpLayout builds the canonical 11-column ChangeOpColumns schema
// with four rows exercising every InternedKey shape, every ChangeOpType
// variant, and pred/succ groups of varying length:
//
//	row 0: MakeMap at an interned property key, no pred/succ.
//	row 1: Set "hi" at the list head, one pred.
//	row 2: Delete at an explicit element reference, two pred, one succ.
//	row 3: Increment by -3 at an interned property key, no pred/succ.
func buildChangeOpLayout(t *testing.T) (*ColumnLayout, []byte) {
	t.Helper()
	c := &docOpLayoutBuilder{}

	keyActor := buildActor(NewColumnSpec(1, ColumnTypeActor), c.push(nullableUint64(null(), null(), some(1), null())))
	keyCounter := buildDeltaInteger(NewColumnSpec(2, ColumnTypeDeltaInteger), c.push(nullableDelta(null(), some(0), some(5), null())))
	keyStr := buildInteger(NewColumnSpec(3, ColumnTypeInteger), c.push(nullableUint64(some(42), null(), null(), some(7))))

	idActor := buildActor(NewColumnSpec(4, ColumnTypeActor), c.push(nullableUint64(some(0), some(0), some(1), some(1))))
	idCounter := buildDeltaInteger(NewColumnSpec(5, ColumnTypeDeltaInteger), c.push(nullableDelta(some(1), some(2), some(3), some(4))))

	insert := buildBoolean(NewColumnSpec(6, ColumnTypeBoolean), c.push(encodeBooleans(false, true, false, false)))
	action := buildInteger(NewColumnSpec(7, ColumnTypeInteger), c.push(nullableUint64(some(0), some(4), some(6), some(5))))

	meta, rawBytes := encodeValues(value.Null(), value.NewString("hi"), value.Null(), value.NewInt(-3))
	vb := startValue(8, c.push(meta))
	val := vb.build(c.push(rawBytes))

	predGB := startGroup(9, c.push(encodeRLEUint64(0, 1, 2, 0)))
	predGB.addActor(NewColumnSpec(9, ColumnTypeActor), c.push(encodeRLEUint64(0, 0, 0)))
	predGB.addInteger(NewColumnSpec(9, ColumnTypeInteger), c.push(encodeRLEUint64(1, 2, 1)))
	pred, badErr := predGB.finish()
	if badErr != nil {
		t.Fatal(badErr)
	}

	succGB := startGroup(10, c.push(encodeRLEUint64(0, 0, 1, 0)))
	succGB.addActor(NewColumnSpec(10, ColumnTypeActor), c.push(encodeRLEUint64(2)))
	succGB.addInteger(NewColumnSpec(10, ColumnTypeInteger), c.push(encodeRLEUint64(10)))
	succ, badErr := succGB.finish()
	if badErr != nil {
		t.Fatal(badErr)
	}

	changeIndex := buildInteger(NewColumnSpec(11, ColumnTypeInteger), c.push(encodeRLEUint64(100, 101, 102, 103)))

	layout := &ColumnLayout{columns: []Column{
		keyActor, keyCounter, keyStr, idActor, idCounter,
		insert, action, val, pred, succ, changeIndex,
	}}
	return layout, c.buf
}

func TestChangeOpColumnsDecode(t *testing.T) {
	layout, buf := buildChangeOpLayout(t)

	ch, err := NewChangeOpColumns(layout)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Other().Len() != 0 {
		t.Fatalf("got %d extra columns, want 0", ch.Other().Len())
	}

	it := ch.Iter(buf)
	var got []ChangeOp
	for {
		row, ok, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		got = append(got, row)
	}

	want := []ChangeOp{
		{
			ID:     OpId{Counter: 1, Actor: 0},
			Key:    InternedKey{Kind: KeyProp, PropIdx: 42},
			Insert: false,
			Action: ChangeOpType{Kind: ChangeOpMakeObject, Object: ObjectMap},
			Pred:   []OpId{},
			Succ:   []OpId{},
			ChangeIndex: 100,
		},
		{
			ID:          OpId{Counter: 2, Actor: 0},
			Key:         InternedKey{Kind: KeyElem, Elem: ElemId{Head: true}},
			Insert:      true,
			Action:      ChangeOpType{Kind: ChangeOpSet, Value: value.NewString("hi")},
			Pred:        []OpId{{Counter: 1, Actor: 0}},
			Succ:        []OpId{},
			ChangeIndex: 101,
		},
		{
			ID:          OpId{Counter: 3, Actor: 1},
			Key:         InternedKey{Kind: KeyElem, Elem: ElemId{ID: OpId{Counter: 5, Actor: 1}}},
			Insert:      false,
			Action:      ChangeOpType{Kind: ChangeOpDelete},
			Pred:        []OpId{{Counter: 2, Actor: 0}, {Counter: 1, Actor: 0}},
			Succ:        []OpId{{Counter: 10, Actor: 2}},
			ChangeIndex: 102,
		},
		{
			ID:          OpId{Counter: 4, Actor: 1},
			Key:         InternedKey{Kind: KeyProp, PropIdx: 7},
			Insert:      false,
			Action:      ChangeOpType{Kind: ChangeOpIncrement, Value: value.NewInt(-3)},
			Pred:        []OpId{},
			Succ:        []OpId{},
			ChangeIndex: 103,
		},
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	if !it.Done() {
		t.Fatal("expected iterator to be done after 4 rows")
	}
}

func TestNewChangeOpColumnsNotEnoughColumns(t *testing.T) {
	layout := &ColumnLayout{columns: []Column{
		buildActor(NewColumnSpec(1, ColumnTypeActor), ByteRange{}),
	}}
	_, err := NewChangeOpColumns(layout)
	var mismatch *SchemaMismatchError
	if !asSchemaMismatch(err, &mismatch) || mismatch.Kind != NotEnoughColumns {
		t.Fatalf("got %v, want NotEnoughColumns", err)
	}
}

func TestNewChangeOpColumnsMismatchingColumn(t *testing.T) {
	layout, _ := buildChangeOpLayout(t)
	// Corrupt position 7 (value, should be Value) to Integer.
	layout.columns[7] = buildInteger(NewColumnSpec(8, ColumnTypeInteger), layout.columns[7].Range())

	_, err := NewChangeOpColumns(layout)
	var mismatch *SchemaMismatchError
	if !asSchemaMismatch(err, &mismatch) || mismatch.Kind != MismatchingColumn || mismatch.Index != 7 {
		t.Fatalf("got %v, want MismatchingColumn at index 7", err)
	}
}

func TestNewChangeOpColumnsPreservesTrailingColumns(t *testing.T) {
	layout, buf := buildChangeOpLayout(t)
	c := &docOpLayoutBuilder{buf: buf}
	extra := buildActor(NewColumnSpec(99, ColumnTypeActor), c.push(nullableUint64(some(1))))
	layout.columns = append(layout.columns, extra)

	ch, err := NewChangeOpColumns(layout)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Other().Len() != 1 {
		t.Fatalf("got %d extra columns, want 1", ch.Other().Len())
	}
}

func TestActionCodeFromUintRejectsOutOfRange(t *testing.T) {
	_, err := actionCodeFromUint(uint64(ActionDelete) + 1)
	var invalid *InvalidActionError
	if err == nil {
		t.Fatal("expected an error")
	}
	ia, ok := err.(*InvalidActionError)
	if !ok {
		t.Fatalf("got %T, want *InvalidActionError", err)
	}
	invalid = ia
	if invalid.Code != uint64(ActionDelete)+1 {
		t.Fatalf("got code %d, want %d", invalid.Code, uint64(ActionDelete)+1)
	}
}

func TestDecodeChangeOpTypeAllActionCodes(t *testing.T) {
	cases := []struct {
		code ActionCode
		want ChangeOpType
	}{
		{ActionMakeMap, ChangeOpType{Kind: ChangeOpMakeObject, Object: ObjectMap}},
		{ActionMakeTable, ChangeOpType{Kind: ChangeOpMakeObject, Object: ObjectTable}},
		{ActionMakeText, ChangeOpType{Kind: ChangeOpMakeObject, Object: ObjectText}},
		{ActionMakeList, ChangeOpType{Kind: ChangeOpMakeObject, Object: ObjectList}},
		{ActionSet, ChangeOpType{Kind: ChangeOpSet, Value: value.Null()}},
		{ActionIncrement, ChangeOpType{Kind: ChangeOpIncrement, Value: value.Null()}},
		{ActionDelete, ChangeOpType{Kind: ChangeOpDelete}},
	}
	for _, c := range cases {
		got, err := decodeChangeOpType(c.code, CellValue{})
		if err != nil {
			t.Fatalf("code %d: %v", c.code, err)
		}
		if !reflect.DeepEqual(c.want, got) {
			t.Fatalf("code %d: got %#v, want %#v", c.code, got, c.want)
		}
	}
}
