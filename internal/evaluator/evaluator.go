// Package evaluator walks the AST produced by the parser, evaluating
// expressions to value.Value and statements against an env.Environment
// and a Sink that receives playback/transport effects (spec §4.4).
// Grounded on the teacher's straightforward imperative command dispatch
// (internal/model's Update/action-handling switch) generalized from a
// flat UI-event switch to a recursive tree-walking evaluator, and on
// krotik-ecal's interpreter for the shape of a return/break/continue
// control-flow signal threaded back up through statement execution.
package evaluator

import (
	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/env"
	"github.com/schollz/cadence/internal/notemodel"
	"github.com/schollz/cadence/internal/pattern"
	"github.com/schollz/cadence/internal/rational"
	"github.com/schollz/cadence/internal/value"
)

// Sink receives the transport-level effects a program's statements
// produce; the reactive Interpreter implements it to turn evaluation
// into scheduled playback state.
type Sink interface {
	Play(track int, p pattern.Node, queue bool, mode ast.QueueMode, beatsN int, loop bool) error
	Stop(track int) error
	SetTempo(bpm float64) error
	SetVolume(track int, volume float64) error
	ResolveModule(path string) (*env.Environment, error)
}

// ctrl is a control-flow signal unwound through statement execution.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

// Evaluator runs one Program (or a single statement list, for nested
// blocks) against a root Environment and Sink.
type Evaluator struct {
	Sink Sink
}

func New(sink Sink) *Evaluator {
	return &Evaluator{Sink: sink}
}

// Run executes every top-level statement in prog against e.
func (ev *Evaluator) Run(prog *ast.Program, scope *env.Environment) error {
	_, _, err := ev.execBlock(prog.Statements, scope)
	return err
}

func (ev *Evaluator) execBlock(stmts []ast.Statement, scope *env.Environment) (ctrl, value.Value, error) {
	for _, s := range stmts {
		c, v, err := ev.execStmt(s, scope)
		if err != nil || c != ctrlNone {
			return c, v, err
		}
	}
	return ctrlNone, value.Unit, nil
}

func (ev *Evaluator) execStmt(s ast.Statement, scope *env.Environment) (ctrl, value.Value, error) {
	switch st := s.(type) {
	case *ast.LetStmt:
		v, err := ev.Eval(st.Value, scope)
		if err != nil {
			return ctrlNone, value.Unit, err
		}
		scope.Define(st.Name, v)
		return ctrlNone, value.Unit, nil

	case *ast.AssignStmt:
		v, err := ev.Eval(st.Value, scope)
		if err != nil {
			return ctrlNone, value.Unit, err
		}
		if err := scope.Assign(st.Name, v); err != nil {
			return ctrlNone, value.Unit, err
		}
		return ctrlNone, value.Unit, nil

	case *ast.PlayStmt:
		return ctrlNone, value.Unit, ev.execPlay(st, scope)

	case *ast.OnStmt:
		return ctrlNone, value.Unit, ev.execPlay(st.Play, scope)

	case *ast.TrackStmt:
		for _, inner := range st.Body {
			if err := rebindDefaultTrack(inner, st.Track); err != nil {
				return ctrlNone, value.Unit, err
			}
		}
		return ev.execBlock(st.Body, scope)

	case *ast.TempoStmt:
		v, err := ev.Eval(st.BPM, scope)
		if err != nil {
			return ctrlNone, value.Unit, err
		}
		if v.Kind() != value.KindNumber {
			return ctrlNone, value.Unit, cerr.New(cerr.KindType, "tempo requires a number, got %s", v.Kind())
		}
		return ctrlNone, value.Unit, ev.Sink.SetTempo(v.Num())

	case *ast.VolumeStmt:
		v, err := ev.Eval(st.Volume, scope)
		if err != nil {
			return ctrlNone, value.Unit, err
		}
		if v.Kind() != value.KindNumber {
			return ctrlNone, value.Unit, cerr.New(cerr.KindType, "volume requires a number, got %s", v.Kind())
		}
		return ctrlNone, value.Unit, ev.Sink.SetVolume(st.Track, v.Num())

	case *ast.StopStmt:
		return ctrlNone, value.Unit, ev.Sink.Stop(st.Track)

	case *ast.UseStmt:
		modEnv, err := ev.Sink.ResolveModule(st.Path)
		if err != nil {
			return ctrlNone, value.Unit, err
		}
		for _, name := range modEnv.Names() {
			v, _ := modEnv.Get(name)
			scope.Define(name, v)
		}
		return ctrlNone, value.Unit, nil

	case *ast.FnDefStmt:
		fn := &value.Function{Name: st.Name, Params: st.Params, Closure: scope, Body: st.Body}
		scope.Define(st.Name, value.FuncVal(fn))
		return ctrlNone, value.Unit, nil

	case *ast.ReturnStmt:
		if st.Value == nil {
			return ctrlReturn, value.Unit, nil
		}
		v, err := ev.Eval(st.Value, scope)
		if err != nil {
			return ctrlNone, value.Unit, err
		}
		return ctrlReturn, v, nil

	case *ast.RepeatStmt:
		n, err := ev.Eval(st.Count, scope)
		if err != nil {
			return ctrlNone, value.Unit, err
		}
		if n.Kind() != value.KindNumber {
			return ctrlNone, value.Unit, cerr.New(cerr.KindType, "repeat count requires a number, got %s", n.Kind())
		}
		for i := 0; i < int(n.Num()); i++ {
			child := scope.Child()
			c, v, err := ev.execBlock(st.Body, child)
			if err != nil {
				return ctrlNone, value.Unit, err
			}
			if c == ctrlBreak {
				break
			}
			if c == ctrlReturn {
				return ctrlReturn, v, nil
			}
		}
		return ctrlNone, value.Unit, nil

	case *ast.LoopStmt:
		for {
			child := scope.Child()
			c, v, err := ev.execBlock(st.Body, child)
			if err != nil {
				return ctrlNone, value.Unit, err
			}
			if c == ctrlBreak {
				break
			}
			if c == ctrlReturn {
				return ctrlReturn, v, nil
			}
		}
		return ctrlNone, value.Unit, nil

	case *ast.BreakStmt:
		return ctrlBreak, value.Unit, nil

	case *ast.ContinueStmt:
		return ctrlContinue, value.Unit, nil

	case *ast.IfStmt:
		cond, err := ev.Eval(st.Cond, scope)
		if err != nil {
			return ctrlNone, value.Unit, err
		}
		if cond.Truthy() {
			return ev.execBlock(st.Then, scope.Child())
		}
		if st.Else != nil {
			return ev.execBlock(st.Else, scope.Child())
		}
		return ctrlNone, value.Unit, nil

	case *ast.ExprStmt:
		_, err := ev.Eval(st.Expr, scope)
		return ctrlNone, value.Unit, err

	default:
		return ctrlNone, value.Unit, cerr.New(cerr.KindType, "unhandled statement type %T", s)
	}
}

// rebindDefaultTrack fills in the implicit default-track number for a
// `play`/`on`/`volume`/`stop` statement nested directly in a `track N {
// }` block, only when the statement didn't already name an explicit
// track (Track==0).
func rebindDefaultTrack(s ast.Statement, track int) error {
	switch st := s.(type) {
	case *ast.PlayStmt:
		if st.Track == 0 {
			st.Track = track
		}
	case *ast.VolumeStmt:
		if st.Track == 0 {
			st.Track = track
		}
	case *ast.StopStmt:
		if st.Track == 0 {
			st.Track = track
		}
	}
	return nil
}

func (ev *Evaluator) execPlay(st *ast.PlayStmt, scope *env.Environment) error {
	p, err := ev.evalToPattern(st.Expr, scope)
	if err != nil {
		return err
	}
	track := st.Track
	if track == 0 {
		track = 1
	}
	return ev.Sink.Play(track, p, st.Queue, st.Mode, st.BeatsN, st.Loop)
}

// evalToPattern evaluates expr and coerces the result to a pattern.Node:
// a Pattern value passes through, a bare string literal is parsed lazily
// (spec's "lazy patterns"), and anything else is a TypeError.
func (ev *Evaluator) evalToPattern(expr ast.Expr, scope *env.Environment) (pattern.Node, error) {
	v, err := ev.Eval(expr, scope)
	if err != nil {
		return nil, err
	}
	return valueToPattern(v)
}

// EvalToPattern is evalToPattern's exported form, used by the symbol/
// context services (spec §4.7's get_events_at_position) to resolve an
// arbitrary expression to a Pattern without going through a play statement.
func (ev *Evaluator) EvalToPattern(expr ast.Expr, scope *env.Environment) (pattern.Node, error) {
	return ev.evalToPattern(expr, scope)
}

func valueToPattern(v value.Value) (pattern.Node, error) {
	switch v.Kind() {
	case value.KindPattern:
		return v.PatternData(), nil
	case value.KindString:
		return pattern.Parse(v.Str())
	case value.KindNote:
		return pattern.NewNoteStep(rational.One, v.NoteData()), nil
	case value.KindChord:
		return pattern.NewChordNode(rational.One, v.ChordData()), nil
	default:
		return nil, cerr.New(cerr.KindType, "cannot use %s as a pattern", v.Kind())
	}
}

// Eval evaluates expr to a value.Value.
func (ev *Evaluator) Eval(expr ast.Expr, scope *env.Environment) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLit:
		if e.IsFloat {
			return value.Number(e.Float), nil
		}
		return value.Int(e.Int), nil

	case *ast.BoolLit:
		return value.Bool(e.Value), nil

	case *ast.StringLit:
		return value.String(e.Value), nil

	case *ast.NoteLit:
		n, err := notemodel.Parse(e.Literal)
		if err != nil {
			return value.Value{}, err
		}
		return value.NoteVal(n), nil

	case *ast.ChordLit:
		notes := make([]notemodel.Note, 0, len(e.Notes))
		for _, ne := range e.Notes {
			lit, ok := ne.(*ast.NoteLit)
			if !ok {
				return value.Value{}, cerr.New(cerr.KindType, "chord literal elements must be notes")
			}
			n, err := notemodel.Parse(lit.Literal)
			if err != nil {
				return value.Value{}, err
			}
			notes = append(notes, n)
		}
		c, err := notemodel.NewChord(notes)
		if err != nil {
			return value.Value{}, err
		}
		return value.ChordVal(c), nil

	case *ast.ListLit:
		items := make([]value.Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := ev.Eval(el, scope)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.ListVal(items), nil

	case *ast.Ident:
		v, ok := scope.Get(e.Name)
		if ok {
			return v, nil
		}
		// A bare built-in name used as a value rather than called directly
		// (e.g. `every(2, rev, "C D E F")`, where rev is passed as the
		// transform argument) resolves to a Function wrapping it.
		if bi, ok := builtins[e.Name]; ok {
			return value.FuncVal(&value.Function{Builtin: func(args []value.Value) (value.Value, error) {
				return bi(ev, args)
			}}), nil
		}
		return value.Value{}, cerr.At(cerr.KindName, e.Span(), "undefined name %q", e.Name)

	case *ast.BinaryExpr:
		left, err := ev.Eval(e.Left, scope)
		if err != nil {
			return value.Value{}, err
		}
		right, err := ev.Eval(e.Right, scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Apply(e.Op, left, right)

	case *ast.CallExpr:
		return ev.evalCall(e.Callee, e.Args, scope)

	case *ast.MethodCallExpr:
		return ev.evalMethodCall(e, scope)

	case *ast.PipelineExpr:
		return ev.evalPipeline(e, scope)

	case *ast.IndexExpr:
		return ev.evalIndex(e, scope)

	case *ast.FnLit:
		return value.FuncVal(&value.Function{Params: e.Params, Closure: scope, Body: e.Body}), nil

	default:
		return value.Value{}, cerr.At(cerr.KindType, expr.Span(), "unhandled expression type %T", expr)
	}
}

func (ev *Evaluator) evalIndex(e *ast.IndexExpr, scope *env.Environment) (value.Value, error) {
	recv, err := ev.Eval(e.Receiver, scope)
	if err != nil {
		return value.Value{}, err
	}
	idx, err := ev.Eval(e.Index, scope)
	if err != nil {
		return value.Value{}, err
	}
	if idx.Kind() != value.KindNumber {
		return value.Value{}, cerr.At(cerr.KindType, e.Span(), "index must be a number, got %s", idx.Kind())
	}
	switch recv.Kind() {
	case value.KindList:
		items := recv.ListData()
		i := int(idx.Num())
		if i < 0 || i >= len(items) {
			return value.Value{}, cerr.At(cerr.KindRange, e.Span(), "index %d out of range (len %d)", i, len(items))
		}
		return items[i], nil
	case value.KindChord:
		notes := recv.ChordData().Notes
		i := int(idx.Num())
		if i < 0 || i >= len(notes) {
			return value.Value{}, cerr.At(cerr.KindRange, e.Span(), "index %d out of range (len %d)", i, len(notes))
		}
		return value.NoteVal(notes[i]), nil
	default:
		return value.Value{}, cerr.At(cerr.KindType, e.Span(), "cannot index %s", recv.Kind())
	}
}

// evalCall evaluates `callee(args)`: callee must be a Function value
// (either a user closure, defined via `fn`/FnLit, or a built-in looked
// up by bare identifier name).
func (ev *Evaluator) evalCall(callee ast.Expr, argExprs []ast.Expr, scope *env.Environment) (value.Value, error) {
	if ident, ok := callee.(*ast.Ident); ok {
		if bi, ok := builtins[ident.Name]; ok {
			args, err := ev.evalArgs(argExprs, scope)
			if err != nil {
				return value.Value{}, err
			}
			return bi(ev, args)
		}
	}
	fnVal, err := ev.Eval(callee, scope)
	if err != nil {
		return value.Value{}, err
	}
	args, err := ev.evalArgs(argExprs, scope)
	if err != nil {
		return value.Value{}, err
	}
	return ev.callFunction(fnVal, args)
}

func (ev *Evaluator) evalArgs(argExprs []ast.Expr, scope *env.Environment) ([]value.Value, error) {
	args := make([]value.Value, 0, len(argExprs))
	for _, a := range argExprs {
		v, err := ev.Eval(a, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// evalMethodCall desugars `receiver.name(args)` to `name(receiver, args...)`
// (spec §4.4), except when name is itself a built-in that inspects its
// first argument's kind to disambiguate method-call vs. bare-call
// calling convention (e.g. `every`); both forms end up calling the same
// built-in with the receiver prepended.
func (ev *Evaluator) evalMethodCall(e *ast.MethodCallExpr, scope *env.Environment) (value.Value, error) {
	recv, err := ev.Eval(e.Receiver, scope)
	if err != nil {
		return value.Value{}, err
	}
	args, err := ev.evalArgs(e.Args, scope)
	if err != nil {
		return value.Value{}, err
	}
	full := append([]value.Value{recv}, args...)
	if bi, ok := builtins[e.Name]; ok {
		return bi(ev, full)
	}
	fnVal, ok := scope.Get(e.Name)
	if !ok {
		return value.Value{}, cerr.At(cerr.KindName, e.Span(), "undefined function %q", e.Name)
	}
	return ev.callFunction(fnVal, full)
}

func (ev *Evaluator) evalPipeline(e *ast.PipelineExpr, scope *env.Environment) (value.Value, error) {
	left, err := ev.Eval(e.Left, scope)
	if err != nil {
		return value.Value{}, err
	}
	args, err := ev.evalArgs(e.Args, scope)
	if err != nil {
		return value.Value{}, err
	}
	full := append([]value.Value{left}, args...)
	if bi, ok := builtins[e.Name]; ok {
		return bi(ev, full)
	}
	fnVal, ok := scope.Get(e.Name)
	if !ok {
		return value.Value{}, cerr.At(cerr.KindName, e.Span(), "undefined function %q", e.Name)
	}
	return ev.callFunction(fnVal, full)
}

// callFunction invokes a Function value (built-in or user closure).
func (ev *Evaluator) callFunction(fnVal value.Value, args []value.Value) (value.Value, error) {
	if fnVal.Kind() != value.KindFunc {
		return value.Value{}, cerr.New(cerr.KindType, "cannot call a %s value", fnVal.Kind())
	}
	fn := fnVal.FuncData()
	if fn.Builtin != nil {
		return fn.Builtin(args)
	}
	closure, _ := fn.Closure.(*env.Environment)
	if closure == nil {
		closure = env.New()
	}
	if len(args) != len(fn.Params) {
		return value.Value{}, cerr.New(cerr.KindArity, "function %q expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	call := closure.Child()
	for i, p := range fn.Params {
		call.Define(p, args[i])
	}
	body, _ := fn.Body.([]ast.Statement)
	c, v, err := ev.execBlock(body, call)
	if err != nil {
		return value.Value{}, err
	}
	if c == ctrlReturn {
		return v, nil
	}
	return value.Unit, nil
}
