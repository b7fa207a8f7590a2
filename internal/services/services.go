// Package services implements the editor-facing query surface (spec §4.7):
// tokenize, parse_and_check, symbol binding, and cursor-position lookups.
// Every function here is pure over its (text[, position]) input: each
// evaluates in a fresh scratch environment, never reads an interpreter's
// environment, and none of them mutate interpreter state, grounded on the teacher's stateless selector helpers
// (internal/project/selector.go) rather than the stateful model/view code.
package services

import (
	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/env"
	"github.com/schollz/cadence/internal/evaluator"
	"github.com/schollz/cadence/internal/pattern"
)

// noopSink is an evaluator.Sink that accepts and discards every transport
// effect (each method returns nil) — used to evaluate an expression for its side-effect
// free Value without actually touching any track's playback state.
type noopSink struct{}

func (noopSink) Play(int, pattern.Node, bool, ast.QueueMode, int, bool) error { return nil }
func (noopSink) Stop(int) error                                             { return nil }
func (noopSink) SetTempo(float64) error                                     { return nil }
func (noopSink) SetVolume(int, float64) error                               { return nil }
func (noopSink) ResolveModule(path string) (*env.Environment, error)        { return env.New(), nil }

func newScratchEvaluator() *evaluator.Evaluator {
	return evaluator.New(noopSink{})
}

// innermostStatement returns the most deeply nested statement (recursing
// into track/if/repeat/loop/fn bodies) whose span contains posUTF16, or nil.
func innermostStatement(stmts []ast.Statement, posUTF16 int) ast.Statement {
	var best ast.Statement
	for _, s := range stmts {
		if !s.Span().ContainsUTF16(posUTF16) {
			continue
		}
		best = s
		switch st := s.(type) {
		case *ast.TrackStmt:
			if inner := innermostStatement(st.Body, posUTF16); inner != nil {
				best = inner
			}
		case *ast.IfStmt:
			if inner := innermostStatement(st.Then, posUTF16); inner != nil {
				best = inner
			} else if inner := innermostStatement(st.Else, posUTF16); inner != nil {
				best = inner
			}
		case *ast.RepeatStmt:
			if inner := innermostStatement(st.Body, posUTF16); inner != nil {
				best = inner
			}
		case *ast.LoopStmt:
			if inner := innermostStatement(st.Body, posUTF16); inner != nil {
				best = inner
			}
		case *ast.FnDefStmt:
			if inner := innermostStatement(st.Body, posUTF16); inner != nil {
				best = inner
			}
		}
	}
	return best
}
