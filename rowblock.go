package columnar

// RowBlock is an owned byte buffer plus the ColumnLayout whose ranges index
// into it (spec §3 "Row block"). It is immutable after construction;
// decoders borrow its buffer and advance independent cursors.
type RowBlock struct {
	buf    []byte
	layout *ColumnLayout
}

// NewRowBlock parses specs/ranges against buf and constructs a RowBlock
// (spec §6 "RowBlock::new(spec_ranges, bytes) -> Result<RowBlock,
// BadColumnLayout>"). buf is not copied; the caller must not mutate it while
// the RowBlock is in use.
func NewRowBlock(buf []byte, specs []ColumnSpec, ranges []ByteRange) (*RowBlock, error) {
	layout, err := ParseColumnLayout(len(buf), specs, ranges)
	if err != nil {
		return nil, err
	}
	return &RowBlock{buf: buf, layout: layout}, nil
}

// Layout returns the block's column layout.
func (rb *RowBlock) Layout() *ColumnLayout { return rb.layout }

// Bytes returns the block's backing buffer.
func (rb *RowBlock) Bytes() []byte { return rb.buf }

// Iter returns a fresh row iterator over the block (spec §6
// "RowBlock::iter() -> row iterator").
func (rb *RowBlock) Iter() *RowIterator { return NewRowIterator(rb.layout, rb.buf) }

// RowCount decodes the full block to determine its row count. This is the
// straightforward way to answer the question generically across an
// arbitrary mix of column kinds; callers that already know their row count
// (e.g. from a typed schema view's own iteration) should avoid a second
// full pass by tracking it themselves.
func (rb *RowBlock) RowCount() (int, error) {
	it := rb.Iter()
	n := 0
	for {
		_, ok, err := it.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}

// Splice performs a row-block splice over [replaceStart, replaceStart+
// replaceLen) rows, replacing them with numReplacementRows rows whose cells
// cb supplies, and returns a new RowBlock with a freshly allocated buffer
// (spec §4.5, §6 "RowBlock::splice(range, cb) -> Result<RowBlock,
// SpliceError>"). The source RowBlock is untouched.
func (rb *RowBlock) Splice(replaceStart, replaceLen, numReplacementRows int, cb ReplacementFunc) (*RowBlock, error) {
	newLayout, newBuf, err := SpliceLayout(rb.layout, rb.buf, replaceStart, replaceLen, numReplacementRows, cb)
	if err != nil {
		return nil, err
	}
	return &RowBlock{buf: newBuf, layout: newLayout}, nil
}

// RowRange is a half-open row range with optionally open ends, normalised
// against a row count before use (spec §4.5: "row range is normalised from
// an open/closed bounds input, clamped to [0, row_count)"). A nil Start
// means 0; a nil End means the block's row count.
type RowRange struct {
	Start *int
	End   *int
}

// normalize clamps r against [0, rowCount) and returns (start, length).
func (r RowRange) normalize(rowCount int) (start, length int) {
	s := 0
	if r.Start != nil {
		s = *r.Start
	}
	e := rowCount
	if r.End != nil {
		e = *r.End
	}
	if s < 0 {
		s = 0
	}
	if s > rowCount {
		s = rowCount
	}
	if e > rowCount {
		e = rowCount
	}
	if e < s {
		e = s
	}
	return s, e - s
}

// SpliceRange is Splice with the replace range expressed as an (optionally
// open) RowRange rather than a pre-clamped (start, length) pair.
func (rb *RowBlock) SpliceRange(rowRange RowRange, numReplacementRows int, cb ReplacementFunc) (*RowBlock, error) {
	rowCount, err := rb.RowCount()
	if err != nil {
		return nil, err
	}
	start, length := rowRange.normalize(rowCount)
	return rb.Splice(start, length, numReplacementRows, cb)
}
