package columnar

import (
	"errors"

	"github.com/segmentio/columnar/encoding"
	"github.com/segmentio/columnar/encoding/boolean"
	"github.com/segmentio/columnar/encoding/delta"
	"github.com/segmentio/columnar/encoding/rle"
	"github.com/segmentio/columnar/encoding/value"
)

// ErrDecoderExhausted reports that a column decoder reported Done()==false
// but then had nothing to yield, which happens on truncated or corrupt
// column bytes (checkBounds/checkContiguous only validate byte ranges, not
// their contents). ChangeOpIterator.Next also returns it when the action
// column yields a cell that is not an unsigned integer.
var ErrDecoderExhausted = errors.New("columnar: column decoder exhausted unexpectedly")

// ErrGroupTruncated is returned when a Group column's num-stream reports a
// row count that its sub-columns cannot satisfy (invariant 4).
var ErrGroupTruncated = errors.New("columnar: group sub-column has fewer cells than its row count requires")

// cellDecoder is the internal uniform decoder shape every Column variant
// presents to the row iterator (spec §4.3's Source<CellValue>).
type cellDecoder interface {
	Done() bool
	Next() (CellValue, error)
}

// singleCellDecoder wraps exactly one of the four Single-column primitive
// decoders, dispatching on simpleColType (spec §4.3 "Single → dispatch on
// simple type").
type singleCellDecoder struct {
	colType simpleColType
	rleU    *rle.Decoder[uint64]
	deltaD  *delta.Decoder
	boolD   *boolean.Decoder
	rleS    *rle.Decoder[string]
}

func newSingleCellDecoder(s singleColumn, buf []byte) *singleCellDecoder {
	data := buf[s.rng.Start:s.rng.End]
	d := &singleCellDecoder{colType: s.colType}
	switch s.colType {
	case simpleActor, simpleInteger:
		d.rleU = rle.NewDecoder[uint64](data, encoding.Uint64Codec)
	case simpleDeltaInteger:
		d.deltaD = delta.NewDecoder(data)
	case simpleBoolean:
		d.boolD = boolean.NewDecoder(data)
	case simpleString:
		d.rleS = rle.NewDecoder[string](data, encoding.StringCodec)
	}
	return d
}

func (d *singleCellDecoder) Done() bool {
	switch d.colType {
	case simpleDeltaInteger:
		return d.deltaD.Done()
	case simpleBoolean:
		return d.boolD.Done()
	case simpleString:
		return d.rleS.Done()
	default:
		return d.rleU.Done()
	}
}

func (d *singleCellDecoder) Next() (CellValue, error) {
	switch d.colType {
	case simpleActor, simpleInteger:
		v, present, ok := d.rleU.Next()
		if !ok {
			return CellValue{}, ErrDecoderExhausted
		}
		if !present {
			return NullCell(), nil
		}
		return UintCell(v), nil
	case simpleDeltaInteger:
		v, present, ok := d.deltaD.Next()
		if !ok {
			if err := d.deltaD.Err(); err != nil {
				return CellValue{}, err
			}
			return CellValue{}, ErrDecoderExhausted
		}
		if !present {
			return NullCell(), nil
		}
		return UintCell(v), nil
	case simpleBoolean:
		v, _, ok := d.boolD.Next()
		if !ok {
			return CellValue{}, ErrDecoderExhausted
		}
		return BoolCell(v), nil
	case simpleString:
		v, present, ok := d.rleS.Next()
		if !ok {
			return CellValue{}, ErrDecoderExhausted
		}
		if !present {
			return NullCell(), nil
		}
		return StringCell(v), nil
	default:
		return CellValue{}, ErrDecoderExhausted
	}
}

// valueCellDecoder wraps a Value column's decoder, mapping each PrimVal to
// its CellValue (spec §4.3 "Value → CellValue::Value(PrimVal)").
type valueCellDecoder struct {
	dec *value.Decoder
}

func newValueCellDecoder(v valueColumn, buf []byte) *valueCellDecoder {
	meta := buf[v.meta.Start:v.meta.End]
	raw := buf[v.val.Start:v.val.End]
	return &valueCellDecoder{dec: value.NewDecoder(meta, raw)}
}

func (d *valueCellDecoder) Done() bool { return d.dec.Done() }

func (d *valueCellDecoder) Next() (CellValue, error) {
	v, err, ok := d.dec.Next()
	if !ok {
		return CellValue{}, ErrDecoderExhausted
	}
	if err != nil {
		return CellValue{}, err
	}
	return cellFromPrimVal(v), nil
}

// groupCellDecoder wraps a Group column: the num-decoder drives how many
// sub-column entries to read per row, across every sub-column in lockstep
// (spec §4.3 "Group → for each row, read the count k ... then read k rows
// of sub-cells").
type groupCellDecoder struct {
	num  *rle.Decoder[uint64]
	subs []cellDecoder
}

func newGroupCellDecoder(g groupColumn, buf []byte) *groupCellDecoder {
	numData := buf[g.num.Start:g.num.End]
	subs := make([]cellDecoder, len(g.cols))
	for i, gc := range g.cols {
		if gc.isValue {
			subs[i] = newValueCellDecoder(gc.value, buf)
		} else {
			subs[i] = newSingleCellDecoder(gc.single, buf)
		}
	}
	return &groupCellDecoder{num: rle.NewDecoder[uint64](numData, encoding.Uint64Codec), subs: subs}
}

func (d *groupCellDecoder) Done() bool { return d.num.Done() }

func (d *groupCellDecoder) Next() (CellValue, error) {
	n, present, ok := d.num.Next()
	if !ok {
		return CellValue{}, ErrDecoderExhausted
	}
	count := 0
	if present {
		count = int(n)
	}
	rows := make([][]CellValue, count)
	for i := 0; i < count; i++ {
		row := make([]CellValue, len(d.subs))
		for j, sub := range d.subs {
			if sub.Done() {
				return CellValue{}, ErrGroupTruncated
			}
			v, err := sub.Next()
			if err != nil {
				return CellValue{}, err
			}
			row[j] = v
		}
		rows[i] = row
	}
	return ListCell(rows), nil
}

// newColumnDecoder builds the cellDecoder for one top-level Column.
func newColumnDecoder(col *Column, buf []byte) cellDecoder {
	switch col.kind {
	case columnKindSingle:
		return newSingleCellDecoder(col.single, buf)
	case columnKindValue:
		return newValueCellDecoder(col.value, buf)
	case columnKindGroup:
		return newGroupCellDecoder(col.group, buf)
	}
	return newSingleCellDecoder(col.single, buf)
}

// RowEntry is one column's contribution to a decoded row: a column index
// (position in the layout) and its decoded cell.
type RowEntry struct {
	Column int
	Value  CellValue
}

// RowIterator advances every column decoder in a ColumnLayout in lockstep,
// yielding one []RowEntry per row (spec §4.3's row iterator). It terminates
// when every decoder reports Done() — entries only record columns that were
// not yet done at the time of that row (spec's `Vec<(column_index,
// Option<CellValue>)>`: absent columns are simply omitted from the row).
type RowIterator struct {
	decoders []cellDecoder
}

// NewRowIterator constructs a RowIterator over layout's columns, reading
// from buf (the row-block's backing buffer).
func NewRowIterator(layout *ColumnLayout, buf []byte) *RowIterator {
	cols := layout.Columns()
	decoders := make([]cellDecoder, len(cols))
	for i := range cols {
		decoders[i] = newColumnDecoder(&cols[i], buf)
	}
	return &RowIterator{decoders: decoders}
}

// Next produces the next row. ok is false once every column decoder is
// Done(); err is non-nil only on malformed input, in which case the
// iteration should be abandoned (spec §7: the core surfaces decode errors
// rather than panicking).
func (it *RowIterator) Next() (row []RowEntry, ok bool, err error) {
	allDone := true
	for i, d := range it.decoders {
		if d.Done() {
			continue
		}
		allDone = false
		v, err := d.Next()
		if err != nil {
			return nil, false, err
		}
		row = append(row, RowEntry{Column: i, Value: v})
	}
	if allDone {
		return nil, false, nil
	}
	return row, true, nil
}
