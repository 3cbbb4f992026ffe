package columnar

import (
	"errors"
	"fmt"
)

// ActorIndex is an opaque index into a collaborator-owned actor table
// (spec §6: "the core emits opaque OpId(counter, actor_index) ...
// collaborators resolve indices against their actor table").
type ActorIndex uint64

// OpId identifies an operation by (counter, actor). Field order is fixed to
// (Counter, Actor) at this type boundary regardless of wire/column order —
// see SPEC_FULL.md §3 EXPANSION (Open Question b).
type OpId struct {
	Counter uint64
	Actor   ActorIndex
}

func (o OpId) String() string { return fmt.Sprintf("%d@%d", o.Counter, o.Actor) }

// ElemId names a position in a sequence: either the head, or the id of the
// operation that inserted the preceding element.
type ElemId struct {
	Head bool
	ID   OpId // meaningful only when Head is false
}

// KeyKind tags whether a Key names a map property or a sequence element.
type KeyKind uint8

const (
	KeyProp KeyKind = iota
	KeyElem
)

// Key is a map-property name or a sequence-element reference (spec §4.6).
type Key struct {
	Kind KeyKind
	Prop string
	Elem ElemId
}

// ObjId is either the implicit root object or a reference to the operation
// that created the object.
type ObjId struct {
	Root bool
	ID   OpId // meaningful only when Root is false
}

// ActionIndex is the raw operation-kind code carried by a DocOp's action
// column (spec §4.6 treats it as an opaque integer at this schema level;
// ChangeOpColumns, §4.7, resolves the narrower ActionCode enum).
type ActionIndex uint64

// DocOp is one decoded row of the document-operation typed schema view.
type DocOp struct {
	ID       OpId
	Obj      ObjId
	Key      Key
	Insert   bool
	Action   ActionIndex
	Value    PrimVal
	HasValue bool // false when the value column decoded to an explicit Null cell
	Succ     []OpId
}

var (
	ErrInvalidObjId    = errors.New("columnar: invalid object id column triple")
	ErrInvalidKey      = errors.New("columnar: invalid key column triple")
	ErrInvalidOpIdList = errors.New("columnar: invalid op id list (succ/pred) group column")
)

// DocOpColumns is the fixed 11-column positional schema view over document
// operations (spec §4.6): obj actor, obj counter, key actor, key counter,
// key string, id actor, id counter, insert, action, value, succ.
type DocOpColumns struct {
	objActor, objCounter       Column
	keyActor, keyCounter       Column
	keyStr                     Column
	idActor, idCounter         Column
	insert, action, val, succ  Column
	other                      *ColumnLayout
}

var docOpSchema = [...]ColumnType{
	ColumnTypeActor,        // obj actor
	ColumnTypeInteger,      // obj counter
	ColumnTypeActor,        // key actor
	ColumnTypeDeltaInteger, // key counter
	ColumnTypeString,       // key string
	ColumnTypeActor,        // id actor
	ColumnTypeDeltaInteger, // id counter
	ColumnTypeBoolean,      // insert
	ColumnTypeInteger,      // action
	ColumnTypeValue,        // value
	ColumnTypeGroup,        // succ
}

// NewDocOpColumns validates layout position-by-position against the fixed
// schema (spec §4.6 "TryFrom<ColumnLayout>"), returning MismatchingColumn /
// NotEnoughColumns on failure. Columns beyond position 10 are preserved in
// Other() so unknown-forward schemas round-trip.
func NewDocOpColumns(layout *ColumnLayout) (*DocOpColumns, error) {
	cols := layout.Columns()
	if len(cols) < len(docOpSchema) {
		return nil, &SchemaMismatchError{Kind: NotEnoughColumns}
	}
	for i, want := range docOpSchema {
		if cols[i].ColType() != want {
			return nil, &SchemaMismatchError{Kind: MismatchingColumn, Index: i}
		}
	}
	other := &ColumnLayout{columns: append([]Column{}, cols[len(docOpSchema):]...)}
	return &DocOpColumns{
		objActor: cols[0], objCounter: cols[1],
		keyActor: cols[2], keyCounter: cols[3], keyStr: cols[4],
		idActor: cols[5], idCounter: cols[6],
		insert: cols[7], action: cols[8], val: cols[9], succ: cols[10],
		other: other,
	}, nil
}

// Other returns the columns beyond the fixed 11-column schema.
func (d *DocOpColumns) Other() *ColumnLayout { return d.other }

// DocOpIterator decodes DocOp rows, advancing all 11 column decoders in
// lockstep (spec §4.6: "Iteration stops when every sub-decoder reports
// done()").
type DocOpIterator struct {
	objActor, objCounter       cellDecoder
	keyActor, keyCounter       cellDecoder
	keyStr                     cellDecoder
	idActor, idCounter         cellDecoder
	insert, action, val, succ  cellDecoder
}

// Iter constructs a DocOpIterator reading from buf.
func (d *DocOpColumns) Iter(buf []byte) *DocOpIterator {
	return &DocOpIterator{
		objActor:   newColumnDecoder(&d.objActor, buf),
		objCounter: newColumnDecoder(&d.objCounter, buf),
		keyActor:   newColumnDecoder(&d.keyActor, buf),
		keyCounter: newColumnDecoder(&d.keyCounter, buf),
		keyStr:     newColumnDecoder(&d.keyStr, buf),
		idActor:    newColumnDecoder(&d.idActor, buf),
		idCounter:  newColumnDecoder(&d.idCounter, buf),
		insert:     newColumnDecoder(&d.insert, buf),
		action:     newColumnDecoder(&d.action, buf),
		val:        newColumnDecoder(&d.val, buf),
		succ:       newColumnDecoder(&d.succ, buf),
	}
}

func (it *DocOpIterator) decoders() [11]cellDecoder {
	return [11]cellDecoder{
		it.objActor, it.objCounter, it.keyActor, it.keyCounter, it.keyStr,
		it.idActor, it.idCounter, it.insert, it.action, it.val, it.succ,
	}
}

// Done reports whether every underlying column decoder is exhausted.
func (it *DocOpIterator) Done() bool {
	for _, d := range it.decoders() {
		if !d.Done() {
			return false
		}
	}
	return true
}

// Next decodes the next DocOp row. ok is false once Done().
func (it *DocOpIterator) Next() (op DocOp, ok bool, err error) {
	if it.Done() {
		return DocOp{}, false, nil
	}

	objActorC, err := it.objActor.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	objCounterC, err := it.objCounter.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	keyActorC, err := it.keyActor.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	keyCounterC, err := it.keyCounter.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	keyStrC, err := it.keyStr.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	idActorC, err := it.idActor.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	idCounterC, err := it.idCounter.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	insertC, err := it.insert.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	actionC, err := it.action.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	valC, err := it.val.Next()
	if err != nil {
		return DocOp{}, false, err
	}
	succC, err := it.succ.Next()
	if err != nil {
		return DocOp{}, false, err
	}

	obj, err := decodeObjId(objActorC, objCounterC)
	if err != nil {
		return DocOp{}, false, err
	}
	key, err := decodeKey(keyActorC, keyCounterC, keyStrC)
	if err != nil {
		return DocOp{}, false, err
	}
	id, err := decodeRequiredOpId(idActorC, idCounterC)
	if err != nil {
		return DocOp{}, false, err
	}
	succ, err := decodeOpIdList(succC)
	if err != nil {
		return DocOp{}, false, err
	}

	insert := insertC.Kind == CellBool && insertC.Bool
	action := ActionIndex(0)
	if actionC.Kind == CellUint {
		action = ActionIndex(actionC.Uint)
	}
	hasValue := valC.Kind != CellNull
	var val PrimVal
	if hasValue {
		val = cellToPrimVal(valC)
	}

	return DocOp{
		ID: id, Obj: obj, Key: key, Insert: insert, Action: action,
		Value: val, HasValue: hasValue, Succ: succ,
	}, true, nil
}

func decodeObjId(actorC, counterC CellValue) (ObjId, error) {
	if actorC.Kind == CellNull && counterC.Kind == CellNull {
		return ObjId{Root: true}, nil
	}
	if actorC.Kind == CellUint && counterC.Kind == CellUint {
		return ObjId{ID: OpId{Counter: counterC.Uint, Actor: ActorIndex(actorC.Uint)}}, nil
	}
	return ObjId{}, ErrInvalidObjId
}

func decodeKey(actorC, counterC, strC CellValue) (Key, error) {
	switch {
	case actorC.Kind == CellNull && counterC.Kind == CellNull && strC.Kind == CellString:
		return Key{Kind: KeyProp, Prop: strC.Str}, nil
	case actorC.Kind == CellNull && counterC.Kind == CellUint && counterC.Uint == 0 && strC.Kind == CellNull:
		return Key{Kind: KeyElem, Elem: ElemId{Head: true}}, nil
	case actorC.Kind == CellUint && counterC.Kind == CellUint && strC.Kind == CellNull:
		return Key{Kind: KeyElem, Elem: ElemId{ID: OpId{Counter: counterC.Uint, Actor: ActorIndex(actorC.Uint)}}}, nil
	default:
		return Key{}, ErrInvalidKey
	}
}

func decodeRequiredOpId(actorC, counterC CellValue) (OpId, error) {
	if actorC.Kind != CellUint || counterC.Kind != CellUint {
		return OpId{}, ErrInvalidOpIdList
	}
	return OpId{Counter: counterC.Uint, Actor: ActorIndex(actorC.Uint)}, nil
}

func decodeOpIdList(listC CellValue) ([]OpId, error) {
	if listC.Kind != CellList {
		return nil, ErrInvalidOpIdList
	}
	out := make([]OpId, 0, len(listC.List))
	for _, entry := range listC.List {
		if len(entry) != 2 {
			return nil, ErrInvalidOpIdList
		}
		id, err := decodeRequiredOpId(entry[0], entry[1])
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
