package columnar

import "github.com/segmentio/columnar/encoding/value"

// PrimVal is the decoded/encoded shape of a Value-column cell; re-exported
// from encoding/value so callers never import that package directly.
type PrimVal = value.PrimVal

// Constructors mirroring encoding/value's, re-exported for convenience at
// the package boundary callers actually use.
var (
	NullValue      = value.Null
	BoolValue      = value.NewBool
	UintValue      = value.NewUint
	IntValue       = value.NewInt
	FloatValue     = value.NewFloat
	StringValue    = value.NewString
	BytesValue     = value.NewBytes
	CounterValue   = value.NewCounter
	TimestampValue = value.NewTimestamp
	UnknownValue   = value.NewUnknown
)

// CellKind tags the shape of a decoded row cell (spec §3 "Cell value").
type CellKind uint8

const (
	CellNull CellKind = iota
	CellBool
	CellUint
	CellInt
	CellFloat64
	CellString
	CellBytes
	CellCounter
	CellTimestamp
	CellUnknown
	CellList
)

// CellValue is the tagged union every generic column decoder yields:
// a scalar primitive, an Unknown forward-compat payload, or (Group columns
// only) a list of rows of sub-cells.
type CellValue struct {
	Kind CellKind

	Bool    bool
	Uint    uint64
	Int     int64
	Float64 float64
	Str     string
	Bytes   []byte
	TypeTag uint8 // set only when Kind == CellUnknown

	// List holds one entry per group occurrence in this row; each entry is
	// the ordered list of sub-cells produced by the group's sub-columns for
	// that occurrence. Populated only when Kind == CellList.
	List [][]CellValue
}

func cellFromPrimVal(v PrimVal) CellValue {
	switch v.Kind {
	case value.KindNull:
		return CellValue{Kind: CellNull}
	case value.KindBool:
		return CellValue{Kind: CellBool, Bool: v.Bool}
	case value.KindUint:
		return CellValue{Kind: CellUint, Uint: v.Uint}
	case value.KindInt:
		return CellValue{Kind: CellInt, Int: v.Int}
	case value.KindFloat:
		return CellValue{Kind: CellFloat64, Float64: v.Float}
	case value.KindString:
		return CellValue{Kind: CellString, Str: v.Str}
	case value.KindBytes:
		return CellValue{Kind: CellBytes, Bytes: v.Bytes}
	case value.KindCounter:
		return CellValue{Kind: CellCounter, Uint: v.Uint}
	case value.KindTimestamp:
		return CellValue{Kind: CellTimestamp, Uint: v.Uint}
	case value.KindUnknown:
		return CellValue{Kind: CellUnknown, TypeTag: v.TypeTag, Bytes: v.Bytes}
	default:
		return CellValue{Kind: CellNull}
	}
}

func cellToPrimVal(c CellValue) PrimVal {
	switch c.Kind {
	case CellNull:
		return value.Null()
	case CellBool:
		return value.NewBool(c.Bool)
	case CellUint:
		return value.NewUint(c.Uint)
	case CellInt:
		return value.NewInt(c.Int)
	case CellFloat64:
		return value.NewFloat(c.Float64)
	case CellString:
		return value.NewString(c.Str)
	case CellBytes:
		return value.NewBytes(c.Bytes)
	case CellCounter:
		return value.NewCounter(c.Uint)
	case CellTimestamp:
		return value.NewTimestamp(c.Uint)
	case CellUnknown:
		return value.NewUnknown(c.TypeTag, c.Bytes)
	default:
		return value.Null()
	}
}

// NullCell, BoolCell, UintCell, IntCell, StringCell, BytesCell construct
// scalar CellValues (the forms most callers of Splice build replacements
// from).
func NullCell() CellValue                { return CellValue{Kind: CellNull} }
func BoolCell(b bool) CellValue          { return CellValue{Kind: CellBool, Bool: b} }
func UintCell(v uint64) CellValue        { return CellValue{Kind: CellUint, Uint: v} }
func IntCell(v int64) CellValue          { return CellValue{Kind: CellInt, Int: v} }
func StringCell(s string) CellValue      { return CellValue{Kind: CellString, Str: s} }
func BytesCell(b []byte) CellValue       { return CellValue{Kind: CellBytes, Bytes: b} }
func ValueCell(v PrimVal) CellValue      { return cellFromPrimVal(v) }
func ListCell(rows [][]CellValue) CellValue { return CellValue{Kind: CellList, List: rows} }
