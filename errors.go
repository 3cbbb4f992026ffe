package columnar

import "fmt"

// BadColumnLayoutKind enumerates the ways a (ColumnSpec, range)* stream can
// fail to form a valid ColumnLayout (spec §4.2).
type BadColumnLayoutKind int

const (
	DuplicateColumnSpecs BadColumnLayoutKind = iota
	OutOfOrder
	NestedGroup
	LoneRawValueColumn
	MismatchingValueMetadataId
	EmptyGroup
	NonContiguousColumns
	DataOutOfRange
)

func (k BadColumnLayoutKind) String() string {
	switch k {
	case DuplicateColumnSpecs:
		return "duplicate column specifications"
	case OutOfOrder:
		return "out of order columns"
	case NestedGroup:
		return "nested group"
	case LoneRawValueColumn:
		return "raw value column without metadata column"
	case MismatchingValueMetadataId:
		return "value metadata followed by value column with different column id"
	case EmptyGroup:
		return "group column had no following data columns"
	case NonContiguousColumns:
		return "non contiguous columns"
	case DataOutOfRange:
		return "data out of range"
	default:
		return "unknown bad column layout"
	}
}

// BadColumnLayout is the error the layout parser returns; Spec carries the
// offending column specification for DuplicateColumnSpecs.
type BadColumnLayout struct {
	Kind BadColumnLayoutKind
	Spec ColumnSpec // only meaningful for DuplicateColumnSpecs
}

func (e *BadColumnLayout) Error() string {
	if e.Kind == DuplicateColumnSpecs {
		return fmt.Sprintf("%s: %d", e.Kind, e.Spec.Uint32())
	}
	return e.Kind.String()
}

// ColumnSpliceErrorKind enumerates why a single column's splice failed
// (spec §4.4).
type ColumnSpliceErrorKind int

const (
	InvalidValueForRow ColumnSpliceErrorKind = iota
	WrongNumberOfValues
)

// ColumnSpliceError is returned by the per-column splice (spliceColumn) and
// wrapped in a SpliceError by SpliceLayout.
type ColumnSpliceError struct {
	Kind     ColumnSpliceErrorKind
	Row      int
	Expected int
	Actual   int
}

func (e *ColumnSpliceError) Error() string {
	switch e.Kind {
	case InvalidValueForRow:
		return fmt.Sprintf("invalid replacement value for row %d", e.Row)
	case WrongNumberOfValues:
		return fmt.Sprintf("row %d: expected %d values, got %d", e.Row, e.Expected, e.Actual)
	default:
		return "column splice error"
	}
}

// SpliceError wraps the error a column's splice returned (a
// ColumnSpliceError, or a decode error such as delta.ErrUnderflow) with the
// column index it occurred in, for row-block splice (spec §4.5).
type SpliceError struct {
	Column int
	Err    error
}

func (e *SpliceError) Error() string {
	return fmt.Sprintf("column %d: %s", e.Column, e.Err)
}

func (e *SpliceError) Unwrap() error { return e.Err }

// SchemaMismatchKind enumerates why a ColumnLayout does not match a typed
// schema view (spec §4.6, §4.7).
type SchemaMismatchKind int

const (
	MismatchingColumn SchemaMismatchKind = iota
	NotEnoughColumns
)

// SchemaMismatchError is returned by the typed-schema-view constructors.
type SchemaMismatchError struct {
	Kind  SchemaMismatchKind
	Index int
}

func (e *SchemaMismatchError) Error() string {
	switch e.Kind {
	case NotEnoughColumns:
		return "not enough columns for schema"
	case MismatchingColumn:
		return fmt.Sprintf("column %d does not match schema", e.Index)
	default:
		return "schema mismatch"
	}
}
