package services

import (
	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/env"
	"github.com/schollz/cadence/internal/event"
	"github.com/schollz/cadence/internal/parser"
	"github.com/schollz/cadence/internal/rational"
)

// EventsAtPosition is get_events_at_position's wire shape: the events the
// pattern expression under the cursor produces for one cycle, evaluated
// against the rest of the file's bindings so a hovered `let` that
// references earlier variables still resolves.
type EventsAtPosition struct {
	Events        []event.PlaybackEvent `json:"events,omitempty"`
	BeatsPerCycle rational.T             `json:"beats_per_cycle"`
	Error         string                 `json:"error,omitempty"`
}

// GetEventsAtPosition locates the innermost statement whose span contains
// posUTF16, runs the whole file so its bindings exist, then evaluates the statement's own pattern expression in
// isolation and returns one cycle's events.
func GetEventsAtPosition(text string, posUTF16 int) EventsAtPosition {
	prog, errs := parser.Parse(text)
	if len(errs) > 0 {
		return EventsAtPosition{Error: errs[0].Error()}
	}

	stmt := innermostStatement(prog.Statements, posUTF16)
	if stmt == nil {
		return EventsAtPosition{Error: "no statement at position"}
	}

	expr := patternExprOf(stmt)
	if expr == nil {
		return EventsAtPosition{Error: "statement at position has no pattern expression"}
	}

	scope := env.New()
	ev := newScratchEvaluator()
	if err := ev.Run(prog, scope); err != nil {
		return EventsAtPosition{Error: err.Error()}
	}

	pat, err := ev.EvalToPattern(expr, scope)
	if err != nil {
		return EventsAtPosition{Error: err.Error()}
	}

	evs, err := pat.ForCycle(0, rational.Zero)
	if err != nil {
		return EventsAtPosition{Error: err.Error()}
	}
	return EventsAtPosition{Events: evs, BeatsPerCycle: pat.BeatsPerCycle()}
}

// patternExprOf extracts the expression a statement plays/assigns, if any.
func patternExprOf(s ast.Statement) ast.Expr {
	switch st := s.(type) {
	case *ast.PlayStmt:
		return st.Expr
	case *ast.OnStmt:
		if st.Play != nil {
			return st.Play.Expr
		}
	case *ast.LetStmt:
		return st.Value
	case *ast.ExprStmt:
		return st.Expr
	}
	return nil
}
