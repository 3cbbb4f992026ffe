package columnar

// ColumnLayout is the parsed, ordered sequence of typed column descriptors
// produced from a (ColumnSpec, byte-range)* stream (spec §4.2).
type ColumnLayout struct {
	columns []Column
}

// Columns returns the layout's columns in physical order.
func (l *ColumnLayout) Columns() []Column { return l.columns }

// Len returns the number of columns (a Value or Group column counts once).
func (l *ColumnLayout) Len() int { return len(l.columns) }

// emptyLayout returns a ColumnLayout with no columns.
func emptyLayout() ColumnLayout { return ColumnLayout{} }

// ParseColumnLayout consumes specs/ranges in order and assembles a
// ColumnLayout, validating contiguity, ordering, and the Value/Group
// composite-column grammar (spec §4.2).
func ParseColumnLayout(dataSize int, specs []ColumnSpec, ranges []ByteRange) (*ColumnLayout, error) {
	p := newColumnLayoutParser(dataSize)
	for i, spec := range specs {
		if err := p.addColumn(spec, ranges[i]); err != nil {
			return nil, err
		}
	}
	return p.build()
}

type layoutParserState int

const (
	parserReady layoutParserState = iota
	parserInValue
	parserInGroup
)

type groupParseSubstate int

const (
	groupSubReady groupParseSubstate = iota
	groupSubInValue
)

type columnLayoutParser struct {
	columns      []Column
	lastSpec     *ColumnSpec
	state        layoutParserState
	totalSize    int
	valueBuilder awaitingValueBuilder

	groupId      ColumnId
	groupSub     groupParseSubstate
	groupBuilder groupBuilder
	groupAwait   groupAwaitingValue
}

func newColumnLayoutParser(dataSize int) *columnLayoutParser {
	return &columnLayoutParser{totalSize: dataSize, state: parserReady}
}

func (p *columnLayoutParser) build() (*ColumnLayout, error) {
	switch p.state {
	case parserReady:
		return &ColumnLayout{columns: p.columns}, nil
	case parserInValue:
		end := p.valueBuilder.meta.End
		p.columns = append(p.columns, p.valueBuilder.build(ByteRange{end, end}))
		return &ColumnLayout{columns: p.columns}, nil
	case parserInGroup:
		switch p.groupSub {
		case groupSubInValue:
			b := p.groupAwait.finishEmpty()
			col, err := b.finish()
			if err != nil {
				return nil, err
			}
			p.columns = append(p.columns, col)
		case groupSubReady:
			col, err := p.groupBuilder.finish()
			if err != nil {
				return nil, err
			}
			p.columns = append(p.columns, col)
		}
		return &ColumnLayout{columns: p.columns}, nil
	}
	return &ColumnLayout{columns: p.columns}, nil
}

func (p *columnLayoutParser) addColumn(spec ColumnSpec, rng ByteRange) error {
	if err := p.checkContiguous(rng); err != nil {
		return err
	}
	if err := p.checkBounds(rng); err != nil {
		return err
	}
	// The ordering/duplicate check only applies between top-level columns:
	// a Value or Group column's interior sub-columns share its id and are
	// validated by the builder's own state instead, so the check (and the
	// lastSpec update below) is gated on parserReady. lastSpec therefore
	// keeps pointing at the opening spec of a Value/Group composite for its
	// whole duration, which is exactly the rank the next top-level column
	// needs to be compared against once the composite closes.
	if p.state == parserReady && p.lastSpec != nil {
		if p.lastSpec.normalize() > spec.normalize() {
			return &BadColumnLayout{Kind: OutOfOrder}
		} else if p.lastSpec.Equal(spec) {
			return &BadColumnLayout{Kind: DuplicateColumnSpecs, Spec: spec}
		}
	}
	// last_spec tracks the most recently accepted top-level spec so the
	// next column can be checked for ordering/duplication; it is updated
	// only when this column is actually accepted (not on error returns).
	ls := spec
	updateLastSpec := func() { p.lastSpec = &ls }

	switch p.state {
	case parserReady:
		switch spec.Type() {
		case ColumnTypeGroup:
			p.state = parserInGroup
			p.groupId = spec.ID()
			p.groupSub = groupSubReady
			p.groupBuilder = startGroup(spec.ID(), rng)
			updateLastSpec()
			return nil
		case ColumnTypeValueMetadata:
			p.state = parserInValue
			p.valueBuilder = startValue(spec.ID(), rng)
			updateLastSpec()
			return nil
		case ColumnTypeValue:
			return &BadColumnLayout{Kind: LoneRawValueColumn}
		case ColumnTypeActor:
			p.columns = append(p.columns, buildActor(spec, rng))
			updateLastSpec()
			return nil
		case ColumnTypeString:
			p.columns = append(p.columns, buildString(spec, rng))
			updateLastSpec()
			return nil
		case ColumnTypeInteger:
			p.columns = append(p.columns, buildInteger(spec, rng))
			updateLastSpec()
			return nil
		case ColumnTypeDeltaInteger:
			p.columns = append(p.columns, buildDeltaInteger(spec, rng))
			updateLastSpec()
			return nil
		case ColumnTypeBoolean:
			p.columns = append(p.columns, buildBoolean(spec, rng))
			updateLastSpec()
			return nil
		}
		return nil
	case parserInValue:
		if spec.Type() == ColumnTypeValue {
			if p.valueBuilder.id != spec.ID() {
				return &BadColumnLayout{Kind: MismatchingValueMetadataId}
			}
			p.columns = append(p.columns, p.valueBuilder.build(rng))
			p.state = parserReady
			return nil
		}
		end := p.valueBuilder.meta.End
		p.columns = append(p.columns, p.valueBuilder.build(ByteRange{end, end}))
		p.state = parserReady
		return p.addColumn(spec, rng)
	case parserInGroup:
		if p.groupId != spec.ID() {
			if err := p.finalizeGroup(); err != nil {
				return err
			}
			p.state = parserReady
			return p.addColumn(spec, rng)
		}
		switch p.groupSub {
		case groupSubReady:
			switch spec.Type() {
			case ColumnTypeGroup:
				return &BadColumnLayout{Kind: NestedGroup}
			case ColumnTypeValue:
				return &BadColumnLayout{Kind: LoneRawValueColumn}
			case ColumnTypeValueMetadata:
				p.groupAwait = p.groupBuilder.startValue(rng)
				p.groupSub = groupSubInValue
				return nil
			case ColumnTypeActor:
				p.groupBuilder.addActor(spec, rng)
				return nil
			case ColumnTypeBoolean:
				p.groupBuilder.addBoolean(spec, rng)
				return nil
			case ColumnTypeDeltaInteger:
				p.groupBuilder.addDeltaInteger(spec, rng)
				return nil
			case ColumnTypeInteger:
				p.groupBuilder.addInteger(spec, rng)
				return nil
			case ColumnTypeString:
				p.groupBuilder.addString(spec, rng)
				return nil
			}
			return nil
		case groupSubInValue:
			if spec.Type() == ColumnTypeValue {
				p.groupBuilder = p.groupAwait.finishValue(rng)
				p.groupSub = groupSubReady
				return nil
			}
			p.groupBuilder = p.groupAwait.finishEmpty()
			p.groupSub = groupSubReady
			return p.addColumn(spec, rng)
		}
	}
	return nil
}

func (p *columnLayoutParser) finalizeGroup() error {
	switch p.groupSub {
	case groupSubReady:
		col, err := p.groupBuilder.finish()
		if err != nil {
			return err
		}
		p.columns = append(p.columns, col)
	case groupSubInValue:
		b := p.groupAwait.finishEmpty()
		col, err := b.finish()
		if err != nil {
			return err
		}
		p.columns = append(p.columns, col)
	}
	return nil
}

func (p *columnLayoutParser) checkContiguous(next ByteRange) error {
	switch p.state {
	case parserReady:
		if len(p.columns) == 0 {
			return nil
		}
		if p.columns[len(p.columns)-1].Range().End != next.Start {
			return &BadColumnLayout{Kind: NonContiguousColumns}
		}
		return nil
	case parserInValue:
		if p.valueBuilder.meta.End != next.Start {
			return &BadColumnLayout{Kind: NonContiguousColumns}
		}
		return nil
	case parserInGroup:
		var end int
		switch p.groupSub {
		case groupSubInValue:
			end = p.groupAwait.rng().End
		case groupSubReady:
			end = p.groupBuilder.rng().End
		}
		if end != next.Start {
			return &BadColumnLayout{Kind: NonContiguousColumns}
		}
		return nil
	}
	return nil
}

func (p *columnLayoutParser) checkBounds(next ByteRange) error {
	if next.End > p.totalSize {
		return &BadColumnLayout{Kind: DataOutOfRange}
	}
	return nil
}
