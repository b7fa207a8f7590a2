package lexer

import (
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toUTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func fromUTF16(u []uint16) string {
	return string(utf16.Decode(u))
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeBasicStatement(t *testing.T) {
	toks, errs := Tokenize(`let bass = "D3 A2" |> fast 2`)
	assert.Empty(t, errs)
	require.True(t, len(toks) > 0)
	assert.Equal(t, EOF, toks[len(toks)-1].Kind)

	assert.Equal(t, []Kind{Keyword, Ident, Eq, String, PipeArr, Ident, Int, EOF}, kinds(toks))
}

func TestTokenizeKeywords(t *testing.T) {
	toks, errs := Tokenize("play x queue bar loop")
	assert.Empty(t, errs)
	assert.Equal(t, []Kind{Keyword, Ident, Keyword, Keyword, Keyword, EOF}, kinds(toks))
}

func TestTokenizeNewlineSignificant(t *testing.T) {
	toks, _ := Tokenize("tempo 120\nvolume 1")
	var newlines int
	for _, tok := range toks {
		if tok.Kind == Newline {
			newlines++
		}
	}
	assert.Equal(t, 1, newlines)
}

func TestTokenizeNumbers(t *testing.T) {
	toks, errs := Tokenize("1 2.5 0")
	assert.Empty(t, errs)
	assert.Equal(t, []Kind{Int, Float, Int, EOF}, kinds(toks))
	assert.Equal(t, "2.5", toks[1].Literal)
}

func TestTokenizeOperators(t *testing.T) {
	toks, errs := Tokenize("a & b | c ^ d == e != f |> g . h")
	assert.Empty(t, errs)
	assert.Equal(t, []Kind{
		Ident, Amp, Ident, Pipe, Ident, Caret, Ident, EqEq, Ident, NotEq, Ident,
		PipeArr, Ident, Dot, Ident, EOF,
	}, kinds(toks))
}

func TestTokenizeModuloOperator(t *testing.T) {
	toks, errs := Tokenize("a % b")
	assert.Empty(t, errs)
	assert.Equal(t, []Kind{Ident, Percent, Ident, EOF}, kinds(toks))
}

func TestTokenizeComments(t *testing.T) {
	toks, errs := Tokenize("let x = 1 // a comment\n/* block\ncomment */let y = 2")
	assert.Empty(t, errs)
	var comments []string
	for _, tok := range toks {
		if tok.Kind == Comment {
			comments = append(comments, tok.Literal)
		}
	}
	assert.Equal(t, []string{" a comment", " block\ncomment "}, comments)
}

func TestTokenizeIllegalCharacterRecovers(t *testing.T) {
	toks, errs := Tokenize("let x = $bad\nlet y = 1")
	require.Len(t, errs, 1)
	// Scanning continues after the illegal token and finds the second statement.
	var idents []string
	for _, tok := range toks {
		if tok.Kind == Ident {
			idents = append(idents, tok.Literal)
		}
	}
	assert.Contains(t, idents, "y")
}

func TestUTF16SpansMatchByteSubstrings(t *testing.T) {
	src := `let emoji = "héllo"`
	toks, errs := Tokenize(src)
	assert.Empty(t, errs)
	for _, tok := range toks {
		if tok.Kind == EOF || tok.Kind == Newline {
			continue
		}
		byteSub := src[tok.Span.Start:tok.Span.End]
		utf16Sub := decodeUTF16Substring(t, src, tok.Span.UTF16Start, tok.Span.UTF16End)
		assert.Equal(t, byteSub, utf16Sub)
	}
}

func decodeUTF16Substring(t *testing.T, src string, start, end int) string {
	t.Helper()
	units := toUTF16(src)
	require.True(t, end <= len(units))
	return fromUTF16(units[start:end])
}
