package services

import (
	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/parser"
	"github.com/schollz/cadence/internal/span"
)

// SymbolKind distinguishes the two bindable name classes the language has.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolVariable SymbolKind = "variable"
)

// Symbol is one `let`/`fn` binding discovered by the Binder.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	Span      span.Span  `json:"span"`
	Params    []string   `json:"params,omitempty"`
	DocBefore string     `json:"doc,omitempty"`
}

// SymbolTable is get_symbols' wire shape.
type SymbolTable struct {
	Functions []Symbol `json:"functions"`
	Variables []Symbol `json:"variables"`
}

// binder walks a Program once, collecting every top-level and nested
// let/fn binding in source order. Grounded on the teacher's single-pass
// project indexers (internal/project/selector.go builds its listing with
// one filesystem walk, not a query-driven re-scan per lookup).
type binder struct {
	table SymbolTable
}

// GetSymbols parses text and returns every function and variable binding
// it declares, tolerant of trailing parse errors (whatever parsed
// successfully up to the first unrecoverable error is still reported).
func GetSymbols(text string) SymbolTable {
	prog, _ := parser.Parse(text)
	b := &binder{}
	if prog != nil {
		b.walk(prog.Statements)
	}
	return b.table
}

func (b *binder) walk(stmts []ast.Statement) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.LetStmt:
			b.table.Variables = append(b.table.Variables, Symbol{
				Name: st.Name, Kind: SymbolVariable, Span: st.Span(),
			})
		case *ast.FnDefStmt:
			b.table.Functions = append(b.table.Functions, Symbol{
				Name: st.Name, Kind: SymbolFunction, Span: st.Span(),
				Params: st.Params, DocBefore: st.DocBefore,
			})
			b.walk(st.Body)
		case *ast.TrackStmt:
			b.walk(st.Body)
		case *ast.IfStmt:
			b.walk(st.Then)
			b.walk(st.Else)
		case *ast.RepeatStmt:
			b.walk(st.Body)
		case *ast.LoopStmt:
			b.walk(st.Body)
		}
	}
}

// GetSymbolAtPosition returns the innermost symbol whose declaration span
// contains posUTF16, or ok=false if none does. A linear scan suffices at
// the sizes a single Cadence file reaches; an interval tree would be
// premature here.
func GetSymbolAtPosition(text string, posUTF16 int) (Symbol, bool) {
	table := GetSymbols(text)
	var best Symbol
	found := false
	consider := func(s Symbol) {
		if s.Span.ContainsUTF16(posUTF16) {
			best, found = s, true
		}
	}
	for _, s := range table.Functions {
		consider(s)
	}
	for _, s := range table.Variables {
		consider(s)
	}
	return best, found
}

// GetDefinitionByName returns the declaration span of the first symbol
// named name (functions and variables share one namespace at the top
// level, matching the evaluator's single Environment), for go-to-definition.
func GetDefinitionByName(text, name string) (span.Span, bool) {
	table := GetSymbols(text)
	for _, s := range table.Functions {
		if s.Name == name {
			return s.Span, true
		}
	}
	for _, s := range table.Variables {
		if s.Name == name {
			return s.Span, true
		}
	}
	return span.Span{}, false
}
