package columnar

// ByteRange is a half-open byte range into a RowBlock's backing buffer.
type ByteRange struct {
	Start, End int
}

func (r ByteRange) Len() int { return r.End - r.Start }

type simpleColType uint8

const (
	simpleActor simpleColType = iota
	simpleInteger
	simpleDeltaInteger
	simpleBoolean
	simpleString
)

type singleColumn struct {
	spec    ColumnSpec
	colType simpleColType
	rng     ByteRange
}

type valueColumn struct {
	id   ColumnId
	meta ByteRange
	val  ByteRange
}

// groupedColumn is a sub-column of a Group column: either Single or Value
// (a Group cannot directly nest another Group — spec §4.2 NestedGroup).
type groupedColumn struct {
	isValue bool
	single  singleColumn
	value   valueColumn
}

func (g groupedColumn) rng() ByteRange {
	if g.isValue {
		return ByteRange{g.value.meta.Start, g.value.val.End}
	}
	return g.single.rng
}

type groupColumn struct {
	id   ColumnId
	num  ByteRange
	cols []groupedColumn
}

type columnKind uint8

const (
	columnKindSingle columnKind = iota
	columnKindValue
	columnKindGroup
)

// Column is one of the three column descriptor variants (spec §3): Single,
// Value, or Group, each referencing byte ranges within a RowBlock's shared
// buffer.
type Column struct {
	kind   columnKind
	single singleColumn
	value  valueColumn
	group  groupColumn
}

// Range returns the full byte extent a column spans.
func (c *Column) Range() ByteRange {
	switch c.kind {
	case columnKindSingle:
		return c.single.rng
	case columnKindValue:
		return ByteRange{c.value.meta.Start, c.value.val.End}
	case columnKindGroup:
		if len(c.group.cols) == 0 {
			return c.group.num
		}
		last := c.group.cols[len(c.group.cols)-1]
		return ByteRange{c.group.num.Start, last.rng().End}
	}
	return ByteRange{}
}

// ID returns the column's identifier.
func (c *Column) ID() ColumnId {
	switch c.kind {
	case columnKindSingle:
		return c.single.spec.ID()
	case columnKindValue:
		return c.value.id
	case columnKindGroup:
		return c.group.id
	}
	return 0
}

// ColType reports the column's ColumnType (Group/Value columns always
// report ColumnTypeGroup/ColumnTypeValue; Single columns report their
// simple type).
func (c *Column) ColType() ColumnType {
	switch c.kind {
	case columnKindSingle:
		return c.single.spec.Type()
	case columnKindValue:
		return ColumnTypeValue
	case columnKindGroup:
		return ColumnTypeGroup
	}
	return ColumnTypeActor
}

func buildActor(spec ColumnSpec, rng ByteRange) Column {
	return Column{kind: columnKindSingle, single: singleColumn{spec: spec, colType: simpleActor, rng: rng}}
}
func buildInteger(spec ColumnSpec, rng ByteRange) Column {
	return Column{kind: columnKindSingle, single: singleColumn{spec: spec, colType: simpleInteger, rng: rng}}
}
func buildDeltaInteger(spec ColumnSpec, rng ByteRange) Column {
	return Column{kind: columnKindSingle, single: singleColumn{spec: spec, colType: simpleDeltaInteger, rng: rng}}
}
func buildBoolean(spec ColumnSpec, rng ByteRange) Column {
	return Column{kind: columnKindSingle, single: singleColumn{spec: spec, colType: simpleBoolean, rng: rng}}
}
func buildString(spec ColumnSpec, rng ByteRange) Column {
	return Column{kind: columnKindSingle, single: singleColumn{spec: spec, colType: simpleString, rng: rng}}
}

// awaitingValueBuilder is the parser's in-progress state after a
// ValueMetadata column, awaiting the matching Value column.
type awaitingValueBuilder struct {
	id   ColumnId
	meta ByteRange
}

func startValue(id ColumnId, meta ByteRange) awaitingValueBuilder {
	return awaitingValueBuilder{id: id, meta: meta}
}

func (b *awaitingValueBuilder) build(val ByteRange) Column {
	return Column{kind: columnKindValue, value: valueColumn{id: b.id, meta: b.meta, val: val}}
}

// groupBuilder accumulates a Group column's sub-columns.
type groupBuilder struct {
	id     ColumnId
	numRng ByteRange
	cols   []groupedColumn
}

func startGroup(id ColumnId, num ByteRange) groupBuilder {
	return groupBuilder{id: id, numRng: num}
}

func (b *groupBuilder) rng() ByteRange {
	if len(b.cols) == 0 {
		return b.numRng
	}
	return ByteRange{b.numRng.Start, b.cols[len(b.cols)-1].rng().End}
}

func (b *groupBuilder) addActor(spec ColumnSpec, rng ByteRange) {
	b.cols = append(b.cols, groupedColumn{single: singleColumn{spec: spec, colType: simpleActor, rng: rng}})
}
func (b *groupBuilder) addInteger(spec ColumnSpec, rng ByteRange) {
	b.cols = append(b.cols, groupedColumn{single: singleColumn{spec: spec, colType: simpleInteger, rng: rng}})
}
func (b *groupBuilder) addDeltaInteger(spec ColumnSpec, rng ByteRange) {
	b.cols = append(b.cols, groupedColumn{single: singleColumn{spec: spec, colType: simpleDeltaInteger, rng: rng}})
}
func (b *groupBuilder) addBoolean(spec ColumnSpec, rng ByteRange) {
	b.cols = append(b.cols, groupedColumn{single: singleColumn{spec: spec, colType: simpleBoolean, rng: rng}})
}
func (b *groupBuilder) addString(spec ColumnSpec, rng ByteRange) {
	b.cols = append(b.cols, groupedColumn{single: singleColumn{spec: spec, colType: simpleString, rng: rng}})
}

func (b *groupBuilder) startValue(meta ByteRange) groupAwaitingValue {
	return groupAwaitingValue{id: b.id, numRng: b.numRng, cols: b.cols, valMeta: meta}
}

func (b *groupBuilder) finish() (Column, *BadColumnLayout) {
	if len(b.cols) == 0 {
		return Column{}, &BadColumnLayout{Kind: EmptyGroup}
	}
	return Column{kind: columnKindGroup, group: groupColumn{id: b.id, num: b.numRng, cols: b.cols}}, nil
}

// groupAwaitingValue is the parser's in-progress state after a
// ValueMetadata sub-column inside a group, awaiting the matching Value
// sub-column.
type groupAwaitingValue struct {
	id      ColumnId
	numRng  ByteRange
	cols    []groupedColumn
	valMeta ByteRange
}

func (g *groupAwaitingValue) rng() ByteRange {
	return ByteRange{g.numRng.Start, g.valMeta.End}
}

func (g *groupAwaitingValue) finishEmpty() groupBuilder {
	cols := append(g.cols, groupedColumn{isValue: true, value: valueColumn{id: g.id, meta: g.valMeta, val: ByteRange{g.valMeta.End, g.valMeta.End}}})
	return groupBuilder{id: g.id, numRng: g.numRng, cols: cols}
}

func (g *groupAwaitingValue) finishValue(val ByteRange) groupBuilder {
	cols := append(g.cols, groupedColumn{isValue: true, value: valueColumn{id: g.id, meta: g.valMeta, val: val}})
	return groupBuilder{id: g.id, numRng: g.numRng, cols: cols}
}
