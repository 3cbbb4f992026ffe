package columnar

import "fmt"

// ObjectType is the closed set of object kinds a MakeObject action can
// create (spec §4.7).
type ObjectType uint8

const (
	ObjectMap ObjectType = iota
	ObjectTable
	ObjectText
	ObjectList
)

func (t ObjectType) String() string {
	switch t {
	case ObjectMap:
		return "Map"
	case ObjectTable:
		return "Table"
	case ObjectText:
		return "Text"
	case ObjectList:
		return "List"
	default:
		return "Unknown"
	}
}

// ActionCode is the closed set of operation kinds a ChangeOp's action column
// encodes (spec §4.7). Values above ActionDelete are not valid wire values.
type ActionCode uint8

const (
	ActionMakeMap ActionCode = iota
	ActionMakeTable
	ActionMakeText
	ActionMakeList
	ActionSet
	ActionIncrement
	ActionDelete
)

// InvalidActionError is returned when an action column yields a code outside
// the closed ActionCode set (spec §4.7: "an out-of-range action code is a
// decode error, not a panic").
type InvalidActionError struct {
	Code uint64
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("columnar: invalid action code %d", e.Code)
}

func actionCodeFromUint(v uint64) (ActionCode, error) {
	if v > uint64(ActionDelete) {
		return 0, &InvalidActionError{Code: v}
	}
	return ActionCode(v), nil
}

// ChangeOpKind tags which variant of ChangeOpType a row carries.
type ChangeOpKind uint8

const (
	ChangeOpMakeObject ChangeOpKind = iota
	ChangeOpSet
	ChangeOpIncrement
	ChangeOpDelete
)

// ChangeOpType is the closed sum the action column resolves to, mirroring
// the original's OpType enum (spec §4.7).
type ChangeOpType struct {
	Kind   ChangeOpKind
	Object ObjectType // meaningful only when Kind == ChangeOpMakeObject
	Value  PrimVal // meaningful only when Kind == ChangeOpSet / ChangeOpIncrement
}

// InternedKey is a Key whose map-property name is stored as an interned
// integer rather than inline text (spec §4.7: "keys are interned against an
// external string table"); resolving PropIdx to a string is the caller's
// responsibility since this package does not own the string table.
type InternedKey struct {
	Kind    KeyKind
	PropIdx uint64
	Elem    ElemId
}

// ChangeOp is one decoded row of the change-tree operation typed schema
// view (spec §4.7).
type ChangeOp struct {
	ID          OpId
	Key         InternedKey
	Insert      bool
	Action      ChangeOpType
	Pred        []OpId
	Succ        []OpId
	ChangeIndex uint64
}

// ChangeOpColumns is the 11-column positional schema view over
// change-tree operations (spec §4.7): key actor, key counter, key
// string-or-intern, id actor, id counter, insert, action, value, pred,
// succ, change-index. It omits the object-id columns DocOpColumns carries,
// since change-tree rows are already grouped by object, and adds a pred
// group and a change-index column DocOpColumns has no use for.
type ChangeOpColumns struct {
	keyActor, keyCounter, keyStr Column
	idActor, idCounter           Column
	insert, action, val          Column
	pred, succ                   Column
	changeIndex                  Column
	other                        *ColumnLayout
}

var changeOpSchema = [...]ColumnType{
	ColumnTypeActor,        // key actor
	ColumnTypeDeltaInteger, // key counter
	ColumnTypeInteger,      // key string-or-intern
	ColumnTypeActor,        // id actor
	ColumnTypeDeltaInteger, // id counter
	ColumnTypeBoolean,      // insert
	ColumnTypeInteger,      // action
	ColumnTypeValue,        // value
	ColumnTypeGroup,        // pred
	ColumnTypeGroup,        // succ
	ColumnTypeInteger,      // change index
}

// NewChangeOpColumns validates layout position-by-position against the
// fixed change-tree schema (spec §4.7), exactly as NewDocOpColumns does for
// the document schema, with its own MismatchingColumn{index}/
// NotEnoughColumns errors.
func NewChangeOpColumns(layout *ColumnLayout) (*ChangeOpColumns, error) {
	cols := layout.Columns()
	if len(cols) < len(changeOpSchema) {
		return nil, &SchemaMismatchError{Kind: NotEnoughColumns}
	}
	for i, want := range changeOpSchema {
		if cols[i].ColType() != want {
			return nil, &SchemaMismatchError{Kind: MismatchingColumn, Index: i}
		}
	}
	other := &ColumnLayout{columns: append([]Column{}, cols[len(changeOpSchema):]...)}
	return &ChangeOpColumns{
		keyActor: cols[0], keyCounter: cols[1], keyStr: cols[2],
		idActor: cols[3], idCounter: cols[4],
		insert: cols[5], action: cols[6], val: cols[7],
		pred: cols[8], succ: cols[9], changeIndex: cols[10],
		other: other,
	}, nil
}

// Other returns the columns beyond the fixed schema.
func (d *ChangeOpColumns) Other() *ColumnLayout { return d.other }

// ChangeOpIterator decodes ChangeOp rows, advancing all column decoders in
// lockstep (spec §4.7: "Iteration stops when every sub-decoder reports
// done(), exactly as DocOpColumnIter does").
type ChangeOpIterator struct {
	keyActor, keyCounter, keyStr cellDecoder
	idActor, idCounter           cellDecoder
	insert, action, val          cellDecoder
	pred, succ                   cellDecoder
	changeIndex                  cellDecoder
}

// Iter constructs a ChangeOpIterator reading from buf.
func (d *ChangeOpColumns) Iter(buf []byte) *ChangeOpIterator {
	return &ChangeOpIterator{
		keyActor:    newColumnDecoder(&d.keyActor, buf),
		keyCounter:  newColumnDecoder(&d.keyCounter, buf),
		keyStr:      newColumnDecoder(&d.keyStr, buf),
		idActor:     newColumnDecoder(&d.idActor, buf),
		idCounter:   newColumnDecoder(&d.idCounter, buf),
		insert:      newColumnDecoder(&d.insert, buf),
		action:      newColumnDecoder(&d.action, buf),
		val:         newColumnDecoder(&d.val, buf),
		pred:        newColumnDecoder(&d.pred, buf),
		succ:        newColumnDecoder(&d.succ, buf),
		changeIndex: newColumnDecoder(&d.changeIndex, buf),
	}
}

func (it *ChangeOpIterator) decoders() [11]cellDecoder {
	return [11]cellDecoder{
		it.keyActor, it.keyCounter, it.keyStr, it.idActor, it.idCounter,
		it.insert, it.action, it.val, it.pred, it.succ, it.changeIndex,
	}
}

// Done reports whether every underlying column decoder is exhausted.
func (it *ChangeOpIterator) Done() bool {
	for _, d := range it.decoders() {
		if !d.Done() {
			return false
		}
	}
	return true
}

// Next decodes the next ChangeOp row. ok is false once Done().
func (it *ChangeOpIterator) Next() (op ChangeOp, ok bool, err error) {
	if it.Done() {
		return ChangeOp{}, false, nil
	}

	keyActorC, err := it.keyActor.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	keyCounterC, err := it.keyCounter.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	keyStrC, err := it.keyStr.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	idActorC, err := it.idActor.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	idCounterC, err := it.idCounter.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	insertC, err := it.insert.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	actionC, err := it.action.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	valC, err := it.val.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	predC, err := it.pred.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	succC, err := it.succ.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}
	changeIdxC, err := it.changeIndex.Next()
	if err != nil {
		return ChangeOp{}, false, err
	}

	key, err := decodeInternedKey(keyActorC, keyCounterC, keyStrC)
	if err != nil {
		return ChangeOp{}, false, err
	}
	id, err := decodeRequiredOpId(idActorC, idCounterC)
	if err != nil {
		return ChangeOp{}, false, err
	}
	pred, err := decodeOpIdList(predC)
	if err != nil {
		return ChangeOp{}, false, err
	}
	succ, err := decodeOpIdList(succC)
	if err != nil {
		return ChangeOp{}, false, err
	}

	if actionC.Kind != CellUint {
		return ChangeOp{}, false, ErrDecoderExhausted
	}
	code, err := actionCodeFromUint(actionC.Uint)
	if err != nil {
		return ChangeOp{}, false, err
	}
	action, err := decodeChangeOpType(code, valC)
	if err != nil {
		return ChangeOp{}, false, err
	}

	insert := insertC.Kind == CellBool && insertC.Bool
	changeIndex := uint64(0)
	if changeIdxC.Kind == CellUint {
		changeIndex = changeIdxC.Uint
	}

	return ChangeOp{
		ID: id, Key: key, Insert: insert, Action: action,
		Pred: pred, Succ: succ, ChangeIndex: changeIndex,
	}, true, nil
}

func decodeInternedKey(actorC, counterC, strC CellValue) (InternedKey, error) {
	switch {
	case actorC.Kind == CellNull && counterC.Kind == CellNull && strC.Kind == CellUint:
		return InternedKey{Kind: KeyProp, PropIdx: strC.Uint}, nil
	case actorC.Kind == CellNull && counterC.Kind == CellUint && counterC.Uint == 0 && strC.Kind == CellNull:
		return InternedKey{Kind: KeyElem, Elem: ElemId{Head: true}}, nil
	case actorC.Kind == CellUint && counterC.Kind == CellUint && strC.Kind == CellNull:
		return InternedKey{Kind: KeyElem, Elem: ElemId{ID: OpId{Counter: counterC.Uint, Actor: ActorIndex(actorC.Uint)}}}, nil
	default:
		return InternedKey{}, ErrInvalidKey
	}
}

// decodeChangeOpType resolves the closed ActionCode to a ChangeOpType,
// consuming the value cell only for Set/Increment (spec §4.7: "the four
// Make* codes and Delete consume none").
func decodeChangeOpType(code ActionCode, valC CellValue) (ChangeOpType, error) {
	switch code {
	case ActionMakeMap:
		return ChangeOpType{Kind: ChangeOpMakeObject, Object: ObjectMap}, nil
	case ActionMakeTable:
		return ChangeOpType{Kind: ChangeOpMakeObject, Object: ObjectTable}, nil
	case ActionMakeText:
		return ChangeOpType{Kind: ChangeOpMakeObject, Object: ObjectText}, nil
	case ActionMakeList:
		return ChangeOpType{Kind: ChangeOpMakeObject, Object: ObjectList}, nil
	case ActionSet:
		return ChangeOpType{Kind: ChangeOpSet, Value: cellToPrimVal(valC)}, nil
	case ActionIncrement:
		return ChangeOpType{Kind: ChangeOpIncrement, Value: cellToPrimVal(valC)}, nil
	case ActionDelete:
		return ChangeOpType{Kind: ChangeOpDelete}, nil
	default:
		return ChangeOpType{}, &InvalidActionError{Code: uint64(code)}
	}
}
