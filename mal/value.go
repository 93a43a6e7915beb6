// value.go: the runtime value model shared by the reader and the evaluator.
//
// OVERVIEW
// ========
// Every datum the interpreter touches is a `Value`: a small tagged sum whose
// `Tag` selects which Go type lives in `Data`. The same representation is used
// for code (forms produced by the reader) and for data (results produced by
// the evaluator); lists double as both.
//
//	VTNil      nil
//	VTBool     bool
//	VTInt      int64
//	VTFloat    float64
//	VTStr      string
//	VTKeyword  string      (name without the leading ':')
//	VTSymbol   string
//	VTList     *List       (persistent, shared freely)
//	VTVector   *Vector     (mutable in place, internally locked)
//	VTMap      *MapObject  (key-ordered, internally locked)
//	VTFun      *Fun        (native or user-defined)
//
// Values are passed by value; the collection payloads are pointers, so
// copying a Value shares the underlying collection. Lists are persistent and
// need no locking; vectors and maps guard their contents with an RWMutex so
// concurrent readers are safe.
package mal

import (
	"sort"
	"sync"
)

////////////////////////////////////////////////////////////////////////////////
//                                   VALUES
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTNil ValueTag = iota
	VTBool
	VTInt
	VTFloat
	VTStr
	VTKeyword
	VTSymbol
	VTList
	VTVector
	VTMap
	VTFun
)

var tagNames = [...]string{
	VTNil:     "nil",
	VTBool:    "bool",
	VTInt:     "int",
	VTFloat:   "float",
	VTStr:     "string",
	VTKeyword: "keyword",
	VTSymbol:  "symbol",
	VTList:    "list",
	VTVector:  "vector",
	VTMap:     "map",
	VTFun:     "fn",
}

func (t ValueTag) String() string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// Value is the universal runtime carrier. See the file header for the
// Tag/Data pairing.
type Value struct {
	Tag  ValueTag
	Data any
}

// String renders v readably (strings quoted and escaped).
func (v Value) String() string { return PrintStr(v, true) }

var (
	Nil   = Value{Tag: VTNil}
	True  = Value{Tag: VTBool, Data: true}
	False = Value{Tag: VTBool, Data: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int(n int64) Value         { return Value{Tag: VTInt, Data: n} }
func Float(f float64) Value     { return Value{Tag: VTFloat, Data: f} }
func Str(s string) Value        { return Value{Tag: VTStr, Data: s} }
func Keyword(s string) Value    { return Value{Tag: VTKeyword, Data: s} }
func Symbol(s string) Value     { return Value{Tag: VTSymbol, Data: s} }
func ListVal(l *List) Value     { return Value{Tag: VTList, Data: l} }
func VectorVal(v *Vector) Value { return Value{Tag: VTVector, Data: v} }
func MapVal(m *MapObject) Value { return Value{Tag: VTMap, Data: m} }
func FunVal(f *Fun) Value       { return Value{Tag: VTFun, Data: f} }

// NewListValue builds a list value holding xs in order.
func NewListValue(xs ...Value) Value { return ListVal(ListOf(xs...)) }

// NewVectorValue builds a vector value holding a copy of xs.
func NewVectorValue(xs ...Value) Value { return VectorVal(NewVector(xs...)) }

// Truthy reports whether v counts as true in a condition: everything except
// nil and false.
func (v Value) Truthy() bool {
	switch v.Tag {
	case VTNil:
		return false
	case VTBool:
		return v.Data.(bool)
	default:
		return true
	}
}

// IsAtom reports whether v may be used as a map key.
func (v Value) IsAtom() bool {
	switch v.Tag {
	case VTNil, VTBool, VTInt, VTFloat, VTStr, VTKeyword, VTSymbol:
		return true
	}
	return false
}

func (v Value) IsSymbol(name string) bool {
	return v.Tag == VTSymbol && v.Data.(string) == name
}

// Seq returns the elements of a list or vector as a fresh slice. ok is false
// for every other kind of value.
func (v Value) Seq() (xs []Value, ok bool) {
	switch v.Tag {
	case VTList:
		return v.Data.(*List).Slice(), true
	case VTVector:
		return v.Data.(*Vector).Slice(), true
	}
	return nil, false
}

////////////////////////////////////////////////////////////////////////////////
//                                    LIST
////////////////////////////////////////////////////////////////////////////////

// List is a persistent singly linked list. The zero-length list is the
// EmptyList singleton; every other node points at its tail.
type List struct {
	head Value
	tail *List
	n    int
}

// EmptyList is the distinguished empty list. It is distinct from Nil.
var EmptyList = &List{}

// ListOf conses xs right to left so the result preserves their order.
func ListOf(xs ...Value) *List {
	l := EmptyList
	for i := len(xs) - 1; i >= 0; i-- {
		l = l.Cons(xs[i])
	}
	return l
}

// Cons returns a new list with v in front of l; l is shared, not copied.
func (l *List) Cons(v Value) *List { return &List{head: v, tail: l, n: l.n + 1} }

func (l *List) Empty() bool { return l.n == 0 }
func (l *List) Len() int    { return l.n }

// First returns the head of l, or false when l is empty.
func (l *List) First() (Value, bool) {
	if l.n == 0 {
		return Nil, false
	}
	return l.head, true
}

// Rest returns the tail of l. The rest of the empty list is the empty list.
func (l *List) Rest() *List {
	if l.n == 0 {
		return EmptyList
	}
	return l.tail
}

// Nth returns the i-th element (0-based).
func (l *List) Nth(i int) (Value, bool) {
	if i < 0 || i >= l.n {
		return Nil, false
	}
	for ; i > 0; i-- {
		l = l.tail
	}
	return l.head, true
}

func (l *List) Slice() []Value {
	out := make([]Value, 0, l.n)
	for n := l; n.n > 0; n = n.tail {
		out = append(out, n.head)
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
//                                   VECTOR
////////////////////////////////////////////////////////////////////////////////

// Vector is a growable sequence shared by reference. Its contents may be
// changed in place, so every access goes through the lock.
type Vector struct {
	mu    sync.RWMutex
	items []Value
}

func NewVector(xs ...Value) *Vector {
	items := make([]Value, len(xs))
	copy(items, xs)
	return &Vector{items: items}
}

func (v *Vector) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}

func (v *Vector) Nth(i int) (Value, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if i < 0 || i >= len(v.items) {
		return Nil, false
	}
	return v.items[i], true
}

// Slice returns a snapshot copy of the elements.
func (v *Vector) Slice() []Value {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out
}

func (v *Vector) Append(xs ...Value) {
	v.mu.Lock()
	v.items = append(v.items, xs...)
	v.mu.Unlock()
}

// Set overwrites the i-th element in place.
func (v *Vector) Set(i int, x Value) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.items) {
		return false
	}
	v.items[i] = x
	return true
}

////////////////////////////////////////////////////////////////////////////////
//                                     MAP
////////////////////////////////////////////////////////////////////////////////

// MapEntry is one key/value association of a MapObject.
type MapEntry struct {
	Key Value
	Val Value
}

// MapObject is an association from atoms to values kept sorted by key (see
// Compare), so iteration and printing are deterministic and two maps with the
// same associations print the same way regardless of insertion order.
type MapObject struct {
	mu      sync.RWMutex
	entries []MapEntry
}

func NewMap() *MapObject { return &MapObject{} }

// search returns the insertion index for k and whether k is present.
// Callers hold the lock.
func (m *MapObject) search(k Value) (int, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return Compare(m.entries[i].Key, k) >= 0
	})
	return i, i < len(m.entries) && Compare(m.entries[i].Key, k) == 0
}

// Put inserts or replaces the association for k. Non-atom keys are rejected
// with a DiagArg error.
func (m *MapObject) Put(k, v Value) error {
	if !k.IsAtom() {
		return newError(DiagArg, "invalid map key: %s", PrintStr(k, true))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, found := m.search(k)
	if found {
		m.entries[i].Val = v
		return nil
	}
	m.entries = append(m.entries, MapEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = MapEntry{Key: k, Val: v}
	return nil
}

func (m *MapObject) Get(k Value) (Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, found := m.search(k); found {
		return m.entries[i].Val, true
	}
	return Nil, false
}

func (m *MapObject) Delete(k Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, found := m.search(k); found {
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
	}
}

func (m *MapObject) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entries returns a snapshot of the associations in key order.
func (m *MapObject) Entries() []MapEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MapEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Clone returns an independent copy holding the same associations.
func (m *MapObject) Clone() *MapObject {
	return &MapObject{entries: m.Entries()}
}

////////////////////////////////////////////////////////////////////////////////
//                                  CALLABLES
////////////////////////////////////////////////////////////////////////////////

// NativeFn is the signature of a builtin: it receives already-evaluated
// arguments and returns a value or an error. Natives hold no state.
type NativeFn func(args []Value) (Value, error)

// Fun is a callable. Exactly one of the two shapes is populated:
//   - native: Native != nil; Name identifies the primitive in errors.
//   - closure: Params (+ optional Rest), Body and the defining Env.
//
// A Fun is never modified after creation. A closure's Env is only ever read;
// calls bind their arguments in a fresh child of it.
type Fun struct {
	Name   string
	Doc    string
	Native NativeFn

	Params []string
	Rest   string
	Body   []Value
	Env    *Env

	id uint64
}

func (f *Fun) IsNative() bool { return f.Native != nil }

// NewNative wraps a Go function as a callable value.
func NewNative(name string, fn NativeFn) Value {
	return FunVal(newFun(&Fun{Name: name, Native: fn}))
}

// NewClosure builds a user-defined callable over env. name may be empty.
func NewClosure(name string, params []string, rest string, body []Value, env *Env) Value {
	return FunVal(newFun(&Fun{Name: name, Params: params, Rest: rest, Body: body, Env: env}))
}
