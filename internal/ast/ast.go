// Package ast defines the spanned statement and expression tree produced
// by the statement parser (spec §4.2). Grounded on the teacher's model of
// small, data-only structs (internal/model, internal/types) rather than
// any particular parser-generator's node shapes.
package ast

import "github.com/schollz/cadence/internal/span"

// Node is implemented by every AST node so callers can retrieve its span
// uniformly (used by the Binder and cursor-position queries).
type Node interface {
	Span() span.Span
}

// Program is the root of a parsed source file: an ordered list of
// top-level statements.
type Program struct {
	Statements []Statement
	Sp         span.Span
}

func (p *Program) Span() span.Span { return p.Sp }

// Statement is implemented by every statement kind.
type Statement interface {
	Node
	statementNode()
}

type Base struct{ Sp span.Span }

func (b Base) Span() span.Span { return b.Sp }

// LetStmt: `let name = Expr`.
type LetStmt struct {
	Base
	Name  string
	Value Expr
}

func (*LetStmt) statementNode() {}

// AssignStmt: `name = Expr`.
type AssignStmt struct {
	Base
	Name  string
	Value Expr
}

func (*AssignStmt) statementNode() {}

// QueueMode names the `play ... queue [MODE]` modifier.
type QueueMode int

const (
	QueueNone QueueMode = iota
	QueueBeat
	QueueBar
	QueueCycle
	QueueBeatsN
)

// PlayStmt: `play EXPR [queue [MODE]] [loop]`.
type PlayStmt struct {
	Base
	Track     int // 0 means "default track" (track 1), set explicitly by `on N play`
	Expr      Expr
	Queue     bool
	Mode      QueueMode
	BeatsN    int // only meaningful when Mode == QueueBeatsN
	Loop      bool
}

func (*PlayStmt) statementNode() {}

// OnStmt: `on N play …` — track-scoped play, desugars to PlayStmt.Track=N
// at parse time; kept as a distinct node only for symbol/context queries
// that want to show the original surface form.
type OnStmt struct {
	Base
	Track int
	Play  *PlayStmt
}

func (*OnStmt) statementNode() {}

// TrackStmt: `track N { … }` — a block of statements scoped to track N.
type TrackStmt struct {
	Base
	Track int
	Body  []Statement
}

func (*TrackStmt) statementNode() {}

// TempoStmt: `tempo N`.
type TempoStmt struct {
	Base
	BPM Expr
}

func (*TempoStmt) statementNode() {}

// VolumeStmt: `volume N` (global) or, nested inside TrackStmt, per-track.
type VolumeStmt struct {
	Base
	Track  int // 0 = global
	Volume Expr
}

func (*VolumeStmt) statementNode() {}

// StopStmt: `stop` (all tracks) or `stop` nested in a TrackStmt (that track).
type StopStmt struct {
	Base
	Track int // 0 = all tracks
}

func (*StopStmt) statementNode() {}

// UseStmt: `use "path"`.
type UseStmt struct {
	Base
	Path string
}

func (*UseStmt) statementNode() {}

// FnDefStmt: `fn name(params) { body }`.
type FnDefStmt struct {
	Base
	Name      string
	Params    []string
	Body      []Statement
	DocBefore string // doc-comment immediately preceding the fn, if any
}

func (*FnDefStmt) statementNode() {}

// ReturnStmt: `return EXPR` (Value nil means bare `return`).
type ReturnStmt struct {
	Base
	Value Expr
}

func (*ReturnStmt) statementNode() {}

// RepeatStmt: `repeat N { body }`.
type RepeatStmt struct {
	Base
	Count Expr
	Body  []Statement
}

func (*RepeatStmt) statementNode() {}

// LoopStmt: `loop { body }` — an unconditional loop, exited via `break`.
type LoopStmt struct {
	Base
	Body []Statement
}

func (*LoopStmt) statementNode() {}

// BreakStmt: `break`.
type BreakStmt struct{ Base }

func (*BreakStmt) statementNode() {}

// ContinueStmt: `continue`.
type ContinueStmt struct{ Base }

func (*ContinueStmt) statementNode() {}

// IfStmt: `if EXPR { … } else { … }` (Else may be nil).
type IfStmt struct {
	Base
	Cond Expr
	Then []Statement
	Else []Statement
}

func (*IfStmt) statementNode() {}

// ExprStmt wraps a bare expression statement.
type ExprStmt struct {
	Base
	Expr Expr
}

func (*ExprStmt) statementNode() {}

// Expr is implemented by every expression kind.
type Expr interface {
	Node
	exprNode()
}

// NumberLit: integer or float literal.
type NumberLit struct {
	Base
	IsFloat bool
	Int     int64
	Float   float64
}

func (*NumberLit) exprNode() {}

// BoolLit: `true`/`false` (lexed as identifiers, promoted by the parser).
type BoolLit struct {
	Base
	Value bool
}

func (*BoolLit) exprNode() {}

// StringLit: a string literal. When used in pattern position it is parsed
// lazily into a Pattern value by the evaluator (spec §4.2/§9 "lazy
// patterns").
type StringLit struct {
	Base
	Value string
}

func (*StringLit) exprNode() {}

// NoteLit: a bare single-note literal like `C4` in expression
// (non-pattern-string) position; `[C4,E4,G4]` is a ChordLit.
type NoteLit struct {
	Base
	Literal string
}

func (*NoteLit) exprNode() {}

// ChordLit: `[a, b, c]` in expression position.
type ChordLit struct {
	Base
	Notes []Expr
}

func (*ChordLit) exprNode() {}

// ListLit: `[a, b, c]` whose elements are not all note literals; the
// parser makes that split from ChordLit syntactically, before evaluation.
type ListLit struct {
	Base
	Elements []Expr
}

func (*ListLit) exprNode() {}

// Ident: a bare identifier reference.
type Ident struct {
	Base
	Name string
}

func (*Ident) exprNode() {}

// BinaryExpr: `lhs OP rhs` for `+ - & | ^ == !=`.
type BinaryExpr struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// CallExpr: `callee(args...)`.
type CallExpr struct {
	Base
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// MethodCallExpr: `receiver.name(args...)`, desugared by the evaluator to
// `name(receiver, args...)` per spec §4.4.
type MethodCallExpr struct {
	Base
	Receiver Expr
	Name     string
	Args     []Expr
}

func (*MethodCallExpr) exprNode() {}

// PipelineExpr: `lhs |> name args...`, desugared the same way as
// `name(lhs, args...)`.
type PipelineExpr struct {
	Base
	Left Expr
	Name string
	Args []Expr
}

func (*PipelineExpr) exprNode() {}

// IndexExpr: `expr[index]`.
type IndexExpr struct {
	Base
	Receiver Expr
	Index    Expr
}

func (*IndexExpr) exprNode() {}

// FnLit: an anonymous function value, used when a built-in like `every`
// receives a function literal argument, e.g.
// `every(2, fn(p) { return p.rev() }, "C4 D4")`.
type FnLit struct {
	Base
	Params []string
	Body   []Statement
}

func (*FnLit) exprNode() {}

// New* constructors set the span and nothing else; callers fill fields.

func NewLetStmt(sp span.Span, name string, value Expr) *LetStmt {
	return &LetStmt{Base: Base{sp}, Name: name, Value: value}
}

func NewIdent(sp span.Span, name string) *Ident {
	return &Ident{Base: Base{sp}, Name: name}
}
