package services

import (
	"github.com/schollz/cadence/internal/lexer"
	"github.com/schollz/cadence/internal/span"
)

// HighlightSpan is one token's syntax-highlighting class plus its byte and
// UTF-16 extent, the shape the editor's CodeMirror mode consumes directly.
type HighlightSpan struct {
	Span  span.Span `json:"span"`
	Class string    `json:"class"`
	Text  string    `json:"text"`
}

// Tokenize lexes text end to end and classifies every token for syntax
// highlighting. It never stops at the first lexer error: Illegal tokens
// are reported with class "illegal" so the editor can still render
// everything around a typo.
func Tokenize(text string) []HighlightSpan {
	lx := lexer.New(text)
	var out []HighlightSpan
	for {
		tok := lx.Next()
		if tok.Kind == lexer.EOF {
			break
		}
		if tok.Kind == lexer.Newline {
			continue
		}
		out = append(out, HighlightSpan{Span: tok.Span, Class: tokenClass(tok.Kind), Text: tok.Literal})
	}
	return out
}

func tokenClass(k lexer.Kind) string {
	switch k {
	case lexer.Keyword:
		return "keyword"
	case lexer.Ident:
		return "ident"
	case lexer.Note:
		return "note"
	case lexer.Int, lexer.Float:
		return "number"
	case lexer.String:
		return "string"
	case lexer.Comment:
		return "comment"
	case lexer.LParen, lexer.RParen, lexer.LBrace, lexer.RBrace,
		lexer.LBracket, lexer.RBracket, lexer.Comma, lexer.Dot, lexer.Colon, lexer.Semi:
		return "punctuation"
	case lexer.At, lexer.Star, lexer.Percent, lexer.Plus, lexer.Minus, lexer.Amp, lexer.Pipe,
		lexer.Caret, lexer.Eq, lexer.EqEq, lexer.NotEq, lexer.PipeArr:
		return "operator"
	case lexer.Underscore:
		return "rest"
	default:
		return "illegal"
	}
}
