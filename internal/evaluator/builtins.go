package evaluator

import (
	"math"
	"strings"

	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/notemodel"
	"github.com/schollz/cadence/internal/pattern"
	"github.com/schollz/cadence/internal/rational"
	"github.com/schollz/cadence/internal/value"
)

// builtin is a function registered by bare name, callable either as
// `name(args...)` or, when its receiver kind matches the first
// parameter's expected kind, as `receiver.name(args...)`.
type builtin func(ev *Evaluator, args []value.Value) (value.Value, error)

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"rev":                biRev,
		"fast":               biFast,
		"slow":               biSlow,
		"transpose":          biTranspose,
		"invert":             biInvert,
		"every":              biEvery,
		"wave":               biWave,
		"env":                biEnv,
		"smooth_voice_leading": biSmoothVoiceLeading,
		"progression":        biProgression,
		"rotate":             biRotate,
		"take":               biTake,
		"drop":               biDrop,
		"palindrome":         biPalindrome,
		"stutter":            biStutter,
		"len":                biLen,
		"concat":             biConcat,
		"map":                biMap,
		"beat":               biBeat,
	}
	// Named shortcuts for the common progressions (spec §6: "Roman-numeral
	// progressions (ii_V_I, I_IV_V, …)") — each takes just a root note,
	// unlike the generic progression(root, numerals) builtin.
	for _, name := range []string{"ii_V_I", "I_IV_V", "I_V_vi_IV", "I_vi_IV_V", "vi_IV_I_V"} {
		builtins[name] = namedProgression(strings.Split(name, "_"))
	}
}

func requirePattern(v value.Value, who string) (pattern.Node, error) {
	p, err := valueToPattern(v)
	if err != nil {
		return nil, cerr.New(cerr.KindType, "%s requires a pattern argument: %v", who, err)
	}
	return p, nil
}

func requireNumber(v value.Value, who string) (float64, error) {
	if v.Kind() != value.KindNumber {
		return 0, cerr.New(cerr.KindType, "%s requires a number, got %s", who, v.Kind())
	}
	return v.Num(), nil
}

func biRev(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, cerr.New(cerr.KindArity, "rev expects 1 argument, got %d", len(args))
	}
	p, err := requirePattern(args[0], "rev")
	if err != nil {
		return value.Value{}, err
	}
	return value.PatternVal(pattern.NewRev(p)), nil
}

func biFast(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "fast expects 2 arguments, got %d", len(args))
	}
	p, err := requirePattern(args[0], "fast")
	if err != nil {
		return value.Value{}, err
	}
	n, err := requireNumber(args[1], "fast")
	if err != nil {
		return value.Value{}, err
	}
	out, err := pattern.NewFast(p, floatToRational(n))
	if err != nil {
		return value.Value{}, err
	}
	return value.PatternVal(out), nil
}

func biSlow(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "slow expects 2 arguments, got %d", len(args))
	}
	p, err := requirePattern(args[0], "slow")
	if err != nil {
		return value.Value{}, err
	}
	n, err := requireNumber(args[1], "slow")
	if err != nil {
		return value.Value{}, err
	}
	out, err := pattern.NewSlow(p, floatToRational(n))
	if err != nil {
		return value.Value{}, err
	}
	return value.PatternVal(out), nil
}

func biTranspose(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "transpose expects 2 arguments, got %d", len(args))
	}
	n, err := requireNumber(args[1], "transpose")
	if err != nil {
		return value.Value{}, err
	}
	switch args[0].Kind() {
	case value.KindNote:
		note, err := args[0].NoteData().Transpose(int(n))
		if err != nil {
			return value.Value{}, err
		}
		return value.NoteVal(note), nil
	case value.KindChord:
		c, err := args[0].ChordData().Transpose(int(n))
		if err != nil {
			return value.Value{}, err
		}
		return value.ChordVal(c), nil
	default:
		p, err := requirePattern(args[0], "transpose")
		if err != nil {
			return value.Value{}, err
		}
		return value.PatternVal(pattern.NewTranspose(p, int(n))), nil
	}
}

// biInvert flips a chord's voicing by moving its lowest note up an
// octave, the classic first-inversion operation, repeated |n| times
// (negative n inverts downward by moving the highest note down instead).
func biInvert(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "invert expects 2 arguments, got %d", len(args))
	}
	if args[0].Kind() != value.KindChord {
		return value.Value{}, cerr.New(cerr.KindType, "invert requires a chord, got %s", args[0].Kind())
	}
	n, err := requireNumber(args[1], "invert")
	if err != nil {
		return value.Value{}, err
	}
	c := args[0].ChordData()
	steps := int(n)
	dir := 1
	if steps < 0 {
		dir = -1
		steps = -steps
	}
	for i := 0; i < steps; i++ {
		notes := append([]notemodel.Note{}, c.Notes...)
		if dir == 1 {
			first, terr := notes[0].Transpose(12)
			if terr != nil {
				return value.Value{}, terr
			}
			notes = append(notes[1:], first)
		} else {
			last := len(notes) - 1
			moved, terr := notes[last].Transpose(-12)
			if terr != nil {
				return value.Value{}, terr
			}
			notes = append([]notemodel.Note{moved}, notes[:last]...)
		}
		next, cerr2 := notemodel.NewChord(notes)
		if cerr2 != nil {
			return value.Value{}, cerr2
		}
		c = next
	}
	return value.ChordVal(c), nil
}

// biEvery implements both every call conventions (spec §4.4): the
// method form `pattern.every(n, fn)` desugars via evalMethodCall to
// (pattern, n, fn); the bare function form `every(n, fn, pattern)` (spec
// scenario S4: `every(2, rev, "C D E F")`) arrives as (n, fn, pattern)
// instead, with no reordering done by the caller, so everyArgs inspects
// args[0]'s kind to tell the two conventions apart before dispatching.
func biEvery(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Value{}, cerr.New(cerr.KindArity, "every expects 3 arguments, got %d", len(args))
	}
	p, n, fnVal, err := everyArgs(args)
	if err != nil {
		return value.Value{}, err
	}
	then := func(child pattern.Node) (pattern.Node, error) {
		result, err := ev.callFunction(fnVal, []value.Value{value.PatternVal(child)})
		if err != nil {
			return nil, err
		}
		return requirePattern(result, "every")
	}
	out, err := pattern.NewEvery(p, int(n), 0, then)
	if err != nil {
		return value.Value{}, err
	}
	return value.PatternVal(out), nil
}

// everyArgs normalizes both calling conventions to (pattern, n, fn): a
// leading Number means the bare function form every(n, fn, pattern),
// anything else (Pattern/String/Note/Chord — whatever requirePattern
// accepts) means the method form every(pattern, n, fn) already in the
// right order.
func everyArgs(args []value.Value) (pattern.Node, float64, value.Value, error) {
	if args[0].Kind() == value.KindNumber {
		n, err := requireNumber(args[0], "every")
		if err != nil {
			return nil, 0, value.Value{}, err
		}
		p, err := requirePattern(args[2], "every")
		if err != nil {
			return nil, 0, value.Value{}, err
		}
		return p, n, args[1], nil
	}
	p, err := requirePattern(args[0], "every")
	if err != nil {
		return nil, 0, value.Value{}, err
	}
	n, err := requireNumber(args[1], "every")
	if err != nil {
		return nil, 0, value.Value{}, err
	}
	return p, n, args[2], nil
}

func biWave(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "wave expects 2 arguments, got %d", len(args))
	}
	p, err := requirePattern(args[0], "wave")
	if err != nil {
		return value.Value{}, err
	}
	if args[1].Kind() != value.KindString {
		return value.Value{}, cerr.New(cerr.KindType, "wave requires a string waveform name, got %s", args[1].Kind())
	}
	return value.PatternVal(pattern.NewWave(p, args[1].Str())), nil
}

func biEnv(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 5 {
		return value.Value{}, cerr.New(cerr.KindArity, "env expects 5 arguments (pattern, a, d, s, r), got %d", len(args))
	}
	p, err := requirePattern(args[0], "env")
	if err != nil {
		return value.Value{}, err
	}
	var adsr [4]float64
	for i := 0; i < 4; i++ {
		n, err := requireNumber(args[i+1], "env")
		if err != nil {
			return value.Value{}, err
		}
		adsr[i] = n
	}
	return value.PatternVal(pattern.NewEnv(p, adsr)), nil
}

func biSmoothVoiceLeading(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, cerr.New(cerr.KindArity, "smooth_voice_leading expects 1 argument, got %d", len(args))
	}
	p, err := requirePattern(args[0], "smooth_voice_leading")
	if err != nil {
		return value.Value{}, err
	}
	return value.PatternVal(pattern.NewOptimizeVL(p)), nil
}

var romanDegrees = map[string]int{
	"i": 0, "ii": 2, "iii": 4, "iv": 5, "v": 7, "vi": 9, "vii": 11,
}

// biProgression builds a sequence of triads from Roman-numeral degree
// names relative to a root note, e.g. progression("C4", ["I","IV","V"]).
func biProgression(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "progression expects 2 arguments, got %d", len(args))
	}
	if args[0].Kind() != value.KindNote {
		return value.Value{}, cerr.New(cerr.KindType, "progression requires a root note, got %s", args[0].Kind())
	}
	if args[1].Kind() != value.KindList {
		return value.Value{}, cerr.New(cerr.KindType, "progression requires a list of numerals, got %s", args[1].Kind())
	}
	root := args[0].NoteData()
	numerals := make([]string, 0, len(args[1].ListData()))
	for _, numeralVal := range args[1].ListData() {
		if numeralVal.Kind() != value.KindString {
			return value.Value{}, cerr.New(cerr.KindType, "progression numerals must be strings")
		}
		numerals = append(numerals, numeralVal.Str())
	}
	children, err := progressionFromNumerals(root, numerals)
	if err != nil {
		return value.Value{}, err
	}
	return value.PatternVal(pattern.NewSequence(children)), nil
}

// progressionFromNumerals builds one triad per Roman numeral, shared by
// biProgression and the named shortcut builtins below.
func progressionFromNumerals(root notemodel.Note, numerals []string) ([]pattern.Node, error) {
	children := make([]pattern.Node, 0, len(numerals))
	for _, numeral := range numerals {
		degree, ok := romanDegrees[lowerASCII(numeral)]
		if !ok {
			return nil, cerr.New(cerr.KindPattern, "unrecognized Roman numeral %q", numeral)
		}
		triad, err := triadFromDegree(root, degree)
		if err != nil {
			return nil, err
		}
		children = append(children, pattern.NewChordNode(rational.One, triad))
	}
	return children, nil
}

// namedProgression binds a builtin to a fixed Roman-numeral sequence
// (e.g. "ii_V_I" -> ["ii","V","I"]) so spec's named shortcuts (ii_V_I,
// I_IV_V, …) only need a root note, unlike the generic
// progression(root, numerals) builtin above.
func namedProgression(numerals []string) builtin {
	return func(ev *Evaluator, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Value{}, cerr.New(cerr.KindArity, "progression shortcut expects 1 argument, got %d", len(args))
		}
		if args[0].Kind() != value.KindNote {
			return value.Value{}, cerr.New(cerr.KindType, "progression shortcut requires a root note, got %s", args[0].Kind())
		}
		children, err := progressionFromNumerals(args[0].NoteData(), numerals)
		if err != nil {
			return value.Value{}, err
		}
		return value.PatternVal(pattern.NewSequence(children)), nil
	}
}

func triadFromDegree(root notemodel.Note, semitones int) (notemodel.Chord, error) {
	r, err := root.Transpose(semitones)
	if err != nil {
		return notemodel.Chord{}, err
	}
	third, err := r.Transpose(4)
	if err != nil {
		return notemodel.Chord{}, err
	}
	fifth, err := r.Transpose(7)
	if err != nil {
		return notemodel.Chord{}, err
	}
	return notemodel.NewChord([]notemodel.Note{r, third, fifth})
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// biRotate rotates a list or chord's elements left by n (negative n
// rotates right).
func biRotate(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "rotate expects 2 arguments, got %d", len(args))
	}
	n, err := requireNumber(args[1], "rotate")
	if err != nil {
		return value.Value{}, err
	}
	switch args[0].Kind() {
	case value.KindList:
		items := args[0].ListData()
		return value.ListVal(rotateSlice(items, int(n))), nil
	case value.KindChord:
		notes := args[0].ChordData().Notes
		rotated := rotateSlice(notesToValues(notes), int(n))
		out := valuesToNotes(rotated)
		c, err := notemodel.NewChord(out)
		if err != nil {
			return value.Value{}, err
		}
		return value.ChordVal(c), nil
	default:
		return value.Value{}, cerr.New(cerr.KindType, "rotate requires a list or chord, got %s", args[0].Kind())
	}
}

func rotateSlice[T any](items []T, n int) []T {
	l := len(items)
	if l == 0 {
		return items
	}
	n = ((n % l) + l) % l
	out := make([]T, l)
	for i := range items {
		out[i] = items[(i+n)%l]
	}
	return out
}

func notesToValues(notes []notemodel.Note) []value.Value {
	out := make([]value.Value, len(notes))
	for i, n := range notes {
		out[i] = value.NoteVal(n)
	}
	return out
}

func valuesToNotes(vals []value.Value) []notemodel.Note {
	out := make([]notemodel.Note, len(vals))
	for i, v := range vals {
		out[i] = v.NoteData()
	}
	return out
}

func biTake(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "take expects 2 arguments, got %d", len(args))
	}
	if args[0].Kind() != value.KindList {
		return value.Value{}, cerr.New(cerr.KindType, "take requires a list, got %s", args[0].Kind())
	}
	n, err := requireNumber(args[1], "take")
	if err != nil {
		return value.Value{}, err
	}
	items := args[0].ListData()
	k := int(n)
	if k > len(items) {
		k = len(items)
	}
	if k < 0 {
		k = 0
	}
	return value.ListVal(append([]value.Value{}, items[:k]...)), nil
}

func biDrop(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "drop expects 2 arguments, got %d", len(args))
	}
	if args[0].Kind() != value.KindList {
		return value.Value{}, cerr.New(cerr.KindType, "drop requires a list, got %s", args[0].Kind())
	}
	n, err := requireNumber(args[1], "drop")
	if err != nil {
		return value.Value{}, err
	}
	items := args[0].ListData()
	k := int(n)
	if k > len(items) {
		k = len(items)
	}
	if k < 0 {
		k = 0
	}
	return value.ListVal(append([]value.Value{}, items[k:]...)), nil
}

// biPalindrome plays a pattern forward then backward over two cycles
// (cycle parity selects direction via an Every(2)-style wrapper).
func biPalindrome(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, cerr.New(cerr.KindArity, "palindrome expects 1 argument, got %d", len(args))
	}
	p, err := requirePattern(args[0], "palindrome")
	if err != nil {
		return value.Value{}, err
	}
	out, err := pattern.NewEvery(p, 2, 1, func(child pattern.Node) (pattern.Node, error) {
		return pattern.NewRev(child), nil
	})
	if err != nil {
		return value.Value{}, err
	}
	return value.PatternVal(out), nil
}

func biStutter(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "stutter expects 2 arguments, got %d", len(args))
	}
	p, err := requirePattern(args[0], "stutter")
	if err != nil {
		return value.Value{}, err
	}
	n, err := requireNumber(args[1], "stutter")
	if err != nil {
		return value.Value{}, err
	}
	return value.PatternVal(pattern.NewRepeat(p, int(n))), nil
}

func biLen(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, cerr.New(cerr.KindArity, "len expects 1 argument, got %d", len(args))
	}
	switch args[0].Kind() {
	case value.KindList:
		return value.Int(int64(len(args[0].ListData()))), nil
	case value.KindChord:
		return value.Int(int64(len(args[0].ChordData().Notes))), nil
	case value.KindString:
		return value.Int(int64(len(args[0].Str()))), nil
	default:
		return value.Value{}, cerr.New(cerr.KindType, "len requires a list, chord, or string, got %s", args[0].Kind())
	}
}

func biConcat(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "concat expects 2 arguments, got %d", len(args))
	}
	return value.Apply("+", args[0], args[1])
}

// biMap applies fn to every element of a list, returning a new list.
func biMap(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, cerr.New(cerr.KindArity, "map expects 2 arguments, got %d", len(args))
	}
	if args[0].Kind() != value.KindList {
		return value.Value{}, cerr.New(cerr.KindType, "map requires a list, got %s", args[0].Kind())
	}
	items := args[0].ListData()
	out := make([]value.Value, len(items))
	for i, item := range items {
		v, err := ev.callFunction(args[1], []value.Value{item})
		if err != nil {
			return value.Value{}, err
		}
		out[i] = v
	}
	return value.ListVal(out), nil
}

// biBeat returns the fractional part of its single number argument
// (x mod 1); it reads no track or cycle state.
func biBeat(ev *Evaluator, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, cerr.New(cerr.KindArity, "beat expects 1 argument, got %d", len(args))
	}
	n, err := requireNumber(args[0], "beat")
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(math.Mod(n, 1.0)), nil
}

// floatToRational converts a user-supplied float factor (e.g. `fast(1.5)`)
// to an exact rational by rounding it to the nearest thousandth; any
// finer precision in f is lost.
func floatToRational(f float64) rational.T {
	const scale = 1000
	return rational.MustNew(int64(math.Round(f*scale)), scale)
}
