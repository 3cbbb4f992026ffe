package columnar

import (
	"github.com/segmentio/columnar/encoding"
	"github.com/segmentio/columnar/encoding/boolean"
	"github.com/segmentio/columnar/encoding/delta"
	"github.com/segmentio/columnar/encoding/raw"
	"github.com/segmentio/columnar/encoding/rle"
	"github.com/segmentio/columnar/encoding/value"
)

func cellsToUintOpts(cells []CellValue) ([]encoding.Opt[uint64], error) {
	opts := make([]encoding.Opt[uint64], len(cells))
	for i, c := range cells {
		switch c.Kind {
		case CellNull:
			opts[i] = encoding.Null[uint64]()
		case CellUint:
			opts[i] = encoding.Some(c.Uint)
		default:
			return nil, &ColumnSpliceError{Kind: InvalidValueForRow, Row: i}
		}
	}
	return opts, nil
}

func cellsToBools(cells []CellValue) ([]bool, error) {
	bs := make([]bool, len(cells))
	for i, c := range cells {
		switch c.Kind {
		case CellNull:
			bs[i] = false
		case CellBool:
			bs[i] = c.Bool
		default:
			return nil, &ColumnSpliceError{Kind: InvalidValueForRow, Row: i}
		}
	}
	return bs, nil
}

func cellsToStringOpts(cells []CellValue) ([]encoding.Opt[string], error) {
	opts := make([]encoding.Opt[string], len(cells))
	for i, c := range cells {
		switch c.Kind {
		case CellNull:
			opts[i] = encoding.Null[string]()
		case CellString:
			opts[i] = encoding.Some(c.Str)
		default:
			return nil, &ColumnSpliceError{Kind: InvalidValueForRow, Row: i}
		}
	}
	return opts, nil
}

// spliceSingleColumn splices a Single column, reading the original data
// from srcBuf and appending the new column's bytes to outBuf (spec
// §4.4 "Single — delegate to the matching primitive splice").
func spliceSingleColumn(s singleColumn, srcBuf, outBuf []byte, replaceStart, replaceLen int, replacements []CellValue) (singleColumn, []byte, error) {
	data := srcBuf[s.rng.Start:s.rng.End]
	start := len(outBuf)

	switch s.colType {
	case simpleActor, simpleInteger:
		opts, err := cellsToUintOpts(replacements)
		if err != nil {
			return singleColumn{}, outBuf, err
		}
		srcDec := rle.NewDecoder[uint64](data, encoding.Uint64Codec)
		outEnc := raw.NewEncoder(outBuf)
		dstEnc := rle.NewEncoder[uint64](outEnc, encoding.Uint64Codec)
		n := rle.Splice(srcDec, dstEnc, replaceStart, replaceLen, opts)
		outBuf = outEnc.Bytes()
		return singleColumn{spec: s.spec, colType: s.colType, rng: ByteRange{start, start + n}}, outBuf, nil

	case simpleDeltaInteger:
		opts, err := cellsToUintOpts(replacements)
		if err != nil {
			return singleColumn{}, outBuf, err
		}
		srcDec := delta.NewDecoder(data)
		outEnc := raw.NewEncoder(outBuf)
		dstEnc := delta.NewEncoder(outEnc)
		n, err := delta.Splice(srcDec, dstEnc, replaceStart, replaceLen, opts)
		if err != nil {
			return singleColumn{}, outBuf, err
		}
		outBuf = outEnc.Bytes()
		return singleColumn{spec: s.spec, colType: s.colType, rng: ByteRange{start, start + n}}, outBuf, nil

	case simpleBoolean:
		bs, err := cellsToBools(replacements)
		if err != nil {
			return singleColumn{}, outBuf, err
		}
		srcDec := boolean.NewDecoder(data)
		outEnc := raw.NewEncoder(outBuf)
		dstEnc := boolean.NewEncoder(outEnc)
		n := boolean.Splice(srcDec, dstEnc, replaceStart, replaceLen, bs)
		outBuf = outEnc.Bytes()
		return singleColumn{spec: s.spec, colType: s.colType, rng: ByteRange{start, start + n}}, outBuf, nil

	case simpleString:
		opts, err := cellsToStringOpts(replacements)
		if err != nil {
			return singleColumn{}, outBuf, err
		}
		srcDec := rle.NewDecoder[string](data, encoding.StringCodec)
		outEnc := raw.NewEncoder(outBuf)
		dstEnc := rle.NewEncoder[string](outEnc, encoding.StringCodec)
		n := rle.Splice(srcDec, dstEnc, replaceStart, replaceLen, opts)
		outBuf = outEnc.Bytes()
		return singleColumn{spec: s.spec, colType: s.colType, rng: ByteRange{start, start + n}}, outBuf, nil
	}
	return singleColumn{}, outBuf, ErrDecoderExhausted
}

// spliceValueColumn splices a Value column using the two-pass algorithm of
// encoding/value.Splice (spec §4.4 "Value — use Value-splice").
func spliceValueColumn(v valueColumn, srcBuf, outBuf []byte, replaceStart, replaceLen int, replacements []CellValue) (valueColumn, []byte, error) {
	metaData := srcBuf[v.meta.Start:v.meta.End]
	rawData := srcBuf[v.val.Start:v.val.End]

	prims := make([]value.PrimVal, len(replacements))
	for i, r := range replacements {
		if r.Kind == CellList {
			return valueColumn{}, outBuf, &ColumnSpliceError{Kind: InvalidValueForRow, Row: i}
		}
		prims[i] = cellToPrimVal(r)
	}

	srcDec := value.NewDecoder(metaData, rawData)
	start := len(outBuf)
	metaRange, rawRange, newBuf := value.Splice(srcDec, outBuf, start, replaceStart, replaceLen, prims)
	return valueColumn{
		id:   v.id,
		meta: ByteRange{metaRange.Start, metaRange.End},
		val:  ByteRange{rawRange.Start, rawRange.End},
	}, newBuf, nil
}

// spliceGroupColumn implements the Group splice (spec §4.4, Design Notes
// §9): a two-phase algorithm completing what the original source leaves
// unfinished (see DESIGN.md). Phase 1 computes, from the num-column alone,
// the expanded sub-column index range the replace range corresponds to
// (oldFlatStart, oldFlatLen) and splices the num-column itself. Phase 2
// splices every sub-column against that SAME fixed range — not a running
// sum recomputed per sub-column, which would drift once any sub-column's
// element width differs from another's.
func spliceGroupColumn(g groupColumn, srcBuf, outBuf []byte, replaceStart, replaceLen int, replacements []CellValue) (groupColumn, []byte, error) {
	for i, r := range replacements {
		if r.Kind != CellList {
			return groupColumn{}, outBuf, &ColumnSpliceError{Kind: InvalidValueForRow, Row: i}
		}
		for _, entry := range r.List {
			if len(entry) != len(g.cols) {
				return groupColumn{}, outBuf, &ColumnSpliceError{
					Kind: WrongNumberOfValues, Row: i, Expected: len(g.cols), Actual: len(entry),
				}
			}
		}
	}

	numData := srcBuf[g.num.Start:g.num.End]

	sumDec := rle.NewDecoder[uint64](numData, encoding.Uint64Codec)
	oldFlatStart := 0
	for i := 0; i < replaceStart; i++ {
		n, present, ok := sumDec.Next()
		if !ok {
			break
		}
		if present {
			oldFlatStart += int(n)
		}
	}
	oldFlatLen := 0
	for i := 0; i < replaceLen; i++ {
		n, present, ok := sumDec.Next()
		if !ok {
			break
		}
		if present {
			oldFlatLen += int(n)
		}
	}

	countOpts := make([]encoding.Opt[uint64], len(replacements))
	newFlatLen := 0
	for i, r := range replacements {
		k := len(r.List)
		countOpts[i] = encoding.Some(uint64(k))
		newFlatLen += k
	}

	numDec := rle.NewDecoder[uint64](numData, encoding.Uint64Codec)
	numStart := len(outBuf)
	numOutEnc := raw.NewEncoder(outBuf)
	numRLE := rle.NewEncoder[uint64](numOutEnc, encoding.Uint64Codec)
	n := rle.Splice(numDec, numRLE, replaceStart, replaceLen, countOpts)
	outBuf = numOutEnc.Bytes()
	newNumRng := ByteRange{numStart, numStart + n}

	newCols := make([]groupedColumn, len(g.cols))
	for j, gc := range g.cols {
		flat := make([]CellValue, 0, newFlatLen)
		for _, r := range replacements {
			for _, entry := range r.List {
				flat = append(flat, entry[j])
			}
		}
		if gc.isValue {
			newVC, nb, err := spliceValueColumn(gc.value, srcBuf, outBuf, oldFlatStart, oldFlatLen, flat)
			if err != nil {
				return groupColumn{}, outBuf, err
			}
			outBuf = nb
			newCols[j] = groupedColumn{isValue: true, value: newVC}
		} else {
			newSC, nb, err := spliceSingleColumn(gc.single, srcBuf, outBuf, oldFlatStart, oldFlatLen, flat)
			if err != nil {
				return groupColumn{}, outBuf, err
			}
			outBuf = nb
			newCols[j] = groupedColumn{single: newSC}
		}
	}
	return groupColumn{id: g.id, num: newNumRng, cols: newCols}, outBuf, nil
}

// spliceColumn dispatches a Column's splice to the matching variant.
func spliceColumn(col Column, srcBuf, outBuf []byte, replaceStart, replaceLen int, replacements []CellValue) (Column, []byte, error) {
	switch col.kind {
	case columnKindSingle:
		sc, nb, err := spliceSingleColumn(col.single, srcBuf, outBuf, replaceStart, replaceLen, replacements)
		if err != nil {
			return Column{}, outBuf, err
		}
		return Column{kind: columnKindSingle, single: sc}, nb, nil
	case columnKindValue:
		vc, nb, err := spliceValueColumn(col.value, srcBuf, outBuf, replaceStart, replaceLen, replacements)
		if err != nil {
			return Column{}, outBuf, err
		}
		return Column{kind: columnKindValue, value: vc}, nb, nil
	case columnKindGroup:
		gc, nb, err := spliceGroupColumn(col.group, srcBuf, outBuf, replaceStart, replaceLen, replacements)
		if err != nil {
			return Column{}, outBuf, err
		}
		return Column{kind: columnKindGroup, group: gc}, nb, nil
	}
	return Column{}, outBuf, ErrDecoderExhausted
}

// ReplacementFunc supplies the replacement cell for a given column at a
// given row offset within the replacement range. ok=false denotes an
// explicitly absent (null) cell for that column/row, matching spec §4.5's
// `(column_index, row_index_within_replacements) → Option<CellValue>`.
type ReplacementFunc func(column, replacementRow int) (CellValue, bool)

// SpliceLayout performs the row-block splice (spec §4.5): for each column in
// layout order, splice the replace range against the row values cb supplies,
// appending each column's new bytes to a single growing output buffer so
// column i+1's output_start is the cumulative length after column i.
//
// All returned columns share a row count by construction (every column's
// splice call is given the same replaceStart/replaceLen/numReplacementRows);
// a disagreement after a successful splice would indicate a bug in this
// function, not malformed input, per spec §7's internal-consistency policy.
func SpliceLayout(layout *ColumnLayout, buf []byte, replaceStart, replaceLen, numReplacementRows int, cb ReplacementFunc) (*ColumnLayout, []byte, error) {
	cols := layout.Columns()
	newCols := make([]Column, 0, len(cols))
	var outBuf []byte

	for i := range cols {
		repls := make([]CellValue, numReplacementRows)
		for r := 0; r < numReplacementRows; r++ {
			v, ok := cb(i, r)
			if ok {
				repls[r] = v
			} else {
				repls[r] = NullCell()
			}
		}
		newCol, nb, err := spliceColumn(cols[i], buf, outBuf, replaceStart, replaceLen, repls)
		if err != nil {
			return nil, nil, &SpliceError{Column: i, Err: err}
		}
		outBuf = nb
		newCols = append(newCols, newCol)
	}
	return &ColumnLayout{columns: newCols}, outBuf, nil
}
