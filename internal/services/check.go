package services

import (
	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/env"
	"github.com/schollz/cadence/internal/parser"
)

// CheckResult is parse_and_check's wire shape: Ok is false whenever Errors
// is non-empty.
type CheckResult struct {
	Ok     bool              `json:"ok"`
	Errors []cerr.Diagnostic `json:"errors,omitempty"`
}

// ParseAndCheck parses text and, if parsing succeeds, runs it against a
// fresh scratch environment with an effect-discarding Sink so type/name/
// arity errors surface too — without ever touching real playback state.
func ParseAndCheck(text string) CheckResult {
	prog, errs := parser.Parse(text)
	if len(errs) > 0 {
		out := make([]cerr.Diagnostic, len(errs))
		for i, e := range errs {
			out[i] = cerr.ToDiagnostic(e)
		}
		return CheckResult{Ok: false, Errors: out}
	}

	ev := newScratchEvaluator()
	if err := ev.Run(prog, env.New()); err != nil {
		if ce, ok := err.(*cerr.Error); ok {
			return CheckResult{Ok: false, Errors: []cerr.Diagnostic{cerr.ToDiagnostic(ce)}}
		}
		return CheckResult{Ok: false, Errors: []cerr.Diagnostic{{Kind: cerr.KindType, Message: err.Error()}}}
	}
	return CheckResult{Ok: true}
}
