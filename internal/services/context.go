package services

import (
	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/env"
	"github.com/schollz/cadence/internal/parser"
	"github.com/schollz/cadence/internal/rational"
	"github.com/schollz/cadence/internal/span"
)

// StatementType names the kind of statement the cursor sits in, for the
// editor's per-statement side panel (tempo dial, volume slider, ...).
type StatementType string

const (
	StatementLet    StatementType = "let"
	StatementPlay   StatementType = "play"
	StatementTempo  StatementType = "tempo"
	StatementVolume StatementType = "volume"
	StatementOther  StatementType = "other"
	StatementNone   StatementType = "none"
)

// CursorContext is get_context_at_cursor's wire shape: what kind of
// statement the cursor is in, which variable it names (if any), and the
// editable pattern properties the editor can render inline controls for.
type CursorContext struct {
	StatementType StatementType `json:"statement_type"`
	VariableName  string        `json:"variable_name,omitempty"`
	Span          span.Span     `json:"span"`
	Waveform      string        `json:"waveform,omitempty"`
	Envelope      *[4]float64   `json:"envelope,omitempty"`
	Tempo         float64       `json:"tempo,omitempty"`
	Volume        float64       `json:"volume,omitempty"`
	BeatsPerCycle rational.T    `json:"beats_per_cycle,omitempty"`
}

// GetContextAtCursor locates the innermost statement at posUTF16 and
// reports its editable surface: a `let`/`play` statement's pattern
// attributes (waveform/envelope/beats-per-cycle) are resolved by
// evaluating its expression, tolerating evaluation failure by simply
// omitting those fields.
func GetContextAtCursor(text string, posUTF16 int) CursorContext {
	prog, _ := parser.Parse(text)
	if prog == nil {
		return CursorContext{StatementType: StatementNone}
	}

	stmt := innermostStatement(prog.Statements, posUTF16)
	if stmt == nil {
		return CursorContext{StatementType: StatementNone}
	}

	ctx := CursorContext{StatementType: StatementOther, Span: stmt.Span()}

	switch st := stmt.(type) {
	case *ast.LetStmt:
		ctx.StatementType = StatementLet
		ctx.VariableName = st.Name
		fillPatternAttrs(&ctx, prog, st.Value)
	case *ast.PlayStmt:
		ctx.StatementType = StatementPlay
		fillPatternAttrs(&ctx, prog, st.Expr)
	case *ast.OnStmt:
		ctx.StatementType = StatementPlay
		if st.Play != nil {
			fillPatternAttrs(&ctx, prog, st.Play.Expr)
		}
	case *ast.TempoStmt:
		ctx.StatementType = StatementTempo
	case *ast.VolumeStmt:
		ctx.StatementType = StatementVolume
	}
	return ctx
}

func fillPatternAttrs(ctx *CursorContext, prog *ast.Program, expr ast.Expr) {
	if expr == nil {
		return
	}
	scope := env.New()
	ev := newScratchEvaluator()
	if err := ev.Run(prog, scope); err != nil {
		return
	}
	pat, err := ev.EvalToPattern(expr, scope)
	if err != nil {
		return
	}
	attrs := pat.Attributes()
	if attrs.Waveform != nil {
		ctx.Waveform = *attrs.Waveform
	}
	ctx.Envelope = attrs.Envelope
	ctx.BeatsPerCycle = pat.BeatsPerCycle()
}
