package value

import (
	"math"

	"github.com/schollz/cadence/internal/notemodel"
)

// opKey identifies one dispatch-table entry.
type opKey struct {
	op    string
	left  Kind
	right Kind
}

type opFn func(a, b Value) (Value, error)

// binaryOps is the (op, leftKind, rightKind) dispatch table spec §4.4
// describes: every combination the language supports is registered here
// once, rather than handled by a type-switch ladder in the evaluator.
var binaryOps = map[opKey]opFn{
	{"+", KindNumber, KindNumber}: func(a, b Value) (Value, error) { return numResult(a, b, a.num+b.num), nil },
	{"-", KindNumber, KindNumber}: func(a, b Value) (Value, error) { return numResult(a, b, a.num-b.num), nil },
	{"%", KindNumber, KindNumber}: func(a, b Value) (Value, error) { return numResult(a, b, math.Mod(a.num, b.num)), nil },
	{"+", KindString, KindString}: func(a, b Value) (Value, error) { return String(a.s + b.s), nil },
	{"+", KindList, KindList}: func(a, b Value) (Value, error) {
		out := make([]Value, 0, len(a.list)+len(b.list))
		out = append(out, a.list...)
		out = append(out, b.list...)
		return ListVal(out), nil
	},

	// Note/Chord transposition: the MIDI-space group action (spec §8
	// invariant #4), where adding a number to a note/chord shifts every
	// pitch by that many semitones and subtracting is the inverse.
	{"+", KindNote, KindNumber}:  func(a, b Value) (Value, error) { return transposeNote(a, int(b.num)) },
	{"-", KindNote, KindNumber}:  func(a, b Value) (Value, error) { return transposeNote(a, -int(b.num)) },
	{"+", KindChord, KindNumber}: func(a, b Value) (Value, error) { return transposeChord(a, int(b.num)) },
	{"-", KindChord, KindNumber}: func(a, b Value) (Value, error) { return transposeChord(a, -int(b.num)) },

	// Chord set algebra: & intersect, | union, ^ symmetric difference.
	{"&", KindChord, KindChord}: func(a, b Value) (Value, error) {
		c, err := notemodel.Intersect(a.chord, b.chord)
		if err != nil {
			return Value{}, err
		}
		return ChordVal(c), nil
	},
	{"|", KindChord, KindChord}: func(a, b Value) (Value, error) {
		c, err := notemodel.Union(a.chord, b.chord)
		if err != nil {
			return Value{}, err
		}
		return ChordVal(c), nil
	},
	{"^", KindChord, KindChord}: func(a, b Value) (Value, error) {
		c, err := notemodel.SymmetricDifference(a.chord, b.chord)
		if err != nil {
			return Value{}, err
		}
		return ChordVal(c), nil
	},

	{"==", KindNumber, KindNumber}: func(a, b Value) (Value, error) { return Bool(a.num == b.num), nil },
	{"!=", KindNumber, KindNumber}: func(a, b Value) (Value, error) { return Bool(a.num != b.num), nil },
	{"==", KindString, KindString}: func(a, b Value) (Value, error) { return Bool(a.s == b.s), nil },
	{"!=", KindString, KindString}: func(a, b Value) (Value, error) { return Bool(a.s != b.s), nil },
	{"==", KindBool, KindBool}:     func(a, b Value) (Value, error) { return Bool(a.b == b.b), nil },
	{"!=", KindBool, KindBool}:     func(a, b Value) (Value, error) { return Bool(a.b != b.b), nil },
	{"==", KindNote, KindNote}: func(a, b Value) (Value, error) {
		return Bool(a.note.Midi() == b.note.Midi()), nil
	},
	{"!=", KindNote, KindNote}: func(a, b Value) (Value, error) {
		return Bool(a.note.Midi() != b.note.Midi()), nil
	},
}

func numResult(a, b Value, v float64) Value {
	if a.isInt && b.isInt && v == float64(int64(v)) {
		return Int(int64(v))
	}
	return Number(v)
}

func transposeNote(a Value, semitones int) (Value, error) {
	n, err := a.note.Transpose(semitones)
	if err != nil {
		return Value{}, err
	}
	return NoteVal(n), nil
}

func transposeChord(a Value, semitones int) (Value, error) {
	c, err := a.chord.Transpose(semitones)
	if err != nil {
		return Value{}, err
	}
	return ChordVal(c), nil
}

// Apply evaluates a binary operator over two already-computed Values,
// consulting the dispatch table and falling back to a TypeError for any
// (op, left, right) combination with no registered entry.
func Apply(op string, a, b Value) (Value, error) {
	fn, ok := binaryOps[opKey{op, a.kind, b.kind}]
	if !ok {
		return Value{}, TypeErrorFor(op, a.kind, b.kind)
	}
	return fn(a, b)
}
