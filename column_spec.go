package columnar

// ColumnId is the schema-chosen identifier portion of a ColumnSpec.
type ColumnId uint32

// ColumnType is the closed set of physical column kinds a ColumnSpec can
// carry (spec §3).
type ColumnType uint8

const (
	ColumnTypeActor ColumnType = iota
	ColumnTypeInteger
	ColumnTypeDeltaInteger
	ColumnTypeBoolean
	ColumnTypeString
	ColumnTypeValueMetadata
	ColumnTypeValue
	ColumnTypeGroup
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeActor:
		return "Actor"
	case ColumnTypeInteger:
		return "Integer"
	case ColumnTypeDeltaInteger:
		return "DeltaInteger"
	case ColumnTypeBoolean:
		return "Boolean"
	case ColumnTypeString:
		return "String"
	case ColumnTypeValueMetadata:
		return "ValueMetadata"
	case ColumnTypeValue:
		return "Value"
	case ColumnTypeGroup:
		return "Group"
	default:
		return "Unknown"
	}
}

// ColumnSpec is the 32-bit tag identifying a column's identity and type: an
// arbitrary schema-chosen id packed into the high 28 bits, and a 4-bit
// ColumnType in the low bits.
type ColumnSpec struct {
	raw uint32
}

// NewColumnSpec packs id and typ into a ColumnSpec.
func NewColumnSpec(id ColumnId, typ ColumnType) ColumnSpec {
	return ColumnSpec{raw: uint32(id)<<4 | uint32(typ&0xf)}
}

// ColumnSpecFromUint32 reconstructs a ColumnSpec from its wire 32-bit tag.
func ColumnSpecFromUint32(v uint32) ColumnSpec { return ColumnSpec{raw: v} }

// ID returns the column identifier.
func (c ColumnSpec) ID() ColumnId { return ColumnId(c.raw >> 4) }

// Type returns the column's type.
func (c ColumnSpec) Type() ColumnType { return ColumnType(c.raw & 0xf) }

// Uint32 returns the wire 32-bit tag.
func (c ColumnSpec) Uint32() uint32 { return c.raw }

// normalize returns the ordering key used by the layout parser to check
// non-decreasing column order. A Value column normalizes to the same rank
// as its preceding ValueMetadata column (same id, paired types), since a
// ValueMetadata immediately followed by its Value is not "out of order".
func (c ColumnSpec) normalize() uint32 {
	t := c.Type()
	if t == ColumnTypeValue {
		t = ColumnTypeValueMetadata
	}
	return uint32(c.ID())<<4 | uint32(t)
}

// Equal reports whether two specs are identical (used to detect duplicate
// column specifications).
func (c ColumnSpec) Equal(other ColumnSpec) bool { return c.raw == other.raw }
