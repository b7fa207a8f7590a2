// Package value implements the tagged-union runtime Value the evaluator
// operates on (spec §4.4): every expression evaluates to exactly one of
// these kinds, and binary/unary operations dispatch on the (op,
// leftKind, rightKind) triple rather than through a type-switch ladder
// scattered across the evaluator. Grounded on the teacher's small
// discriminated-union value types in internal/types (bare structs with a
// Kind-like enum field) and on krotik-ecal's interpreter Value, which
// uses the same tagged-struct shape for a scripting-language runtime.
package value

import (
	"fmt"

	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/notemodel"
	"github.com/schollz/cadence/internal/pattern"
)

// Kind discriminates a Value's active field.
type Kind string

const (
	KindNumber  Kind = "number"
	KindBool    Kind = "bool"
	KindString  Kind = "string"
	KindNote    Kind = "note"
	KindChord   Kind = "chord"
	KindPattern Kind = "pattern"
	KindFunc    Kind = "function"
	KindEvery   Kind = "every_pattern"
	KindList    Kind = "list"
	KindUnit    Kind = "unit"
)

// Value is the tagged union every expression reduces to. Exactly one
// field group is meaningful for a given Kind; the rest are zero.
type Value struct {
	kind Kind

	num  float64
	isInt bool

	b bool
	s string

	note  notemodel.Note
	chord notemodel.Chord

	pat pattern.Node

	fn *Function

	every *EveryPattern

	list []Value
}

// Function is a user-defined or built-in callable.
type Function struct {
	Name    string
	Params  []string
	Builtin func(args []Value) (Value, error)
	// Closure fields are filled in by the evaluator package (which holds
	// the Environment type); stored here as an opaque interface to avoid
	// an import cycle between value and env.
	Closure interface{}
	Body    interface{}
}

// EveryPattern pairs a pattern.Node with an `every` period. The `every`
// built-in does not produce it (it returns a plain pattern value), and no
// code in this module builds a KindEvery value.
type EveryPattern struct {
	Node   pattern.Node
	Period int
}

func Number(n float64) Value   { return Value{kind: KindNumber, num: n} }
func Int(n int64) Value        { return Value{kind: KindNumber, num: float64(n), isInt: true} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func String(s string) Value    { return Value{kind: KindString, s: s} }
func NoteVal(n notemodel.Note) Value  { return Value{kind: KindNote, note: n} }
func ChordVal(c notemodel.Chord) Value { return Value{kind: KindChord, chord: c} }
func PatternVal(p pattern.Node) Value { return Value{kind: KindPattern, pat: p} }
func FuncVal(f *Function) Value       { return Value{kind: KindFunc, fn: f} }
func EveryVal(e *EveryPattern) Value  { return Value{kind: KindEvery, every: e} }
func ListVal(items []Value) Value     { return Value{kind: KindList, list: items} }

// Unit is the result of statements and void built-ins (play, stop, …).
var Unit = Value{kind: KindUnit}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Num() float64            { return v.num }
func (v Value) IsInt() bool             { return v.isInt }
func (v Value) Int() int64              { return int64(v.num) }
func (v Value) BoolVal() bool           { return v.b }
func (v Value) Str() string             { return v.s }
func (v Value) NoteData() notemodel.Note   { return v.note }
func (v Value) ChordData() notemodel.Chord { return v.chord }
func (v Value) PatternData() pattern.Node  { return v.pat }
func (v Value) FuncData() *Function        { return v.fn }
func (v Value) EveryData() *EveryPattern   { return v.every }
func (v Value) ListData() []Value          { return v.list }

func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindUnit:
		return false
	case KindNumber:
		return v.num != 0
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.list) > 0
	default:
		return true
	}
}

// String renders a Kind for error messages.
func (k Kind) String() string { return string(k) }

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		if v.isInt {
			return fmt.Sprintf("%d", int64(v.num))
		}
		return fmt.Sprintf("%g", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindString:
		return v.s
	case KindNote:
		return v.note.Name()
	case KindChord:
		return v.chord.Names()
	case KindPattern:
		return "<pattern>"
	case KindFunc:
		return fmt.Sprintf("<fn %s>", v.fn.Name)
	case KindEvery:
		return "<every_pattern>"
	case KindList:
		return fmt.Sprintf("<list of %d>", len(v.list))
	default:
		return "unit"
	}
}

// TypeErrorFor builds the standard "unsupported operand kinds" error for
// a binary op dispatch miss.
func TypeErrorFor(op string, left, right Kind) error {
	return cerr.New(cerr.KindType, "unsupported operand kinds for %q: %s and %s", op, left, right)
}
