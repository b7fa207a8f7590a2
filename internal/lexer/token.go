// Package lexer tokenizes Cadence source text into a restartable, ordered
// token stream with byte+UTF-16 spans, grounded on the teacher's
// line-oriented Parse(line string) idiom (internal/midiplayer,
// internal/getbpm) generalized into a full rune-by-rune scanner with
// recoverable error spans for editor tooling.
package lexer

import "github.com/schollz/cadence/internal/span"

// Kind identifies a token's lexical class.
type Kind int

const (
	Illegal Kind = iota
	EOF
	Newline
	Comment

	Ident
	Keyword
	Note
	Int
	Float
	String

	// Punctuation / operators
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
	Comma    // ,
	Dot      // .
	Colon    // :
	Semi     // ;
	At       // @
	Star     // *
	Percent  // %
	Plus     // +
	Minus    // -
	Amp      // &
	Pipe     // |
	Caret    // ^
	Eq       // =
	EqEq     // ==
	NotEq    // !=
	PipeArr  // |>
	Underscore
)

func (k Kind) String() string {
	switch k {
	case Illegal:
		return "Illegal"
	case EOF:
		return "EOF"
	case Newline:
		return "Newline"
	case Comment:
		return "Comment"
	case Ident:
		return "Ident"
	case Keyword:
		return "Keyword"
	case Note:
		return "Note"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case LParen:
		return "LParen"
	case RParen:
		return "RParen"
	case LBrace:
		return "LBrace"
	case RBrace:
		return "RBrace"
	case LBracket:
		return "LBracket"
	case RBracket:
		return "RBracket"
	case Comma:
		return "Comma"
	case Dot:
		return "Dot"
	case Colon:
		return "Colon"
	case Semi:
		return "Semi"
	case At:
		return "At"
	case Star:
		return "Star"
	case Percent:
		return "Percent"
	case Plus:
		return "Plus"
	case Minus:
		return "Minus"
	case Amp:
		return "Amp"
	case Pipe:
		return "Pipe"
	case Caret:
		return "Caret"
	case Eq:
		return "Eq"
	case EqEq:
		return "EqEq"
	case NotEq:
		return "NotEq"
	case PipeArr:
		return "PipeArr"
	case Underscore:
		return "Underscore"
	default:
		return "?"
	}
}

// Keywords is the reserved-word set.
var Keywords = map[string]bool{
	"let": true, "fn": true, "play": true, "on": true, "track": true,
	"tempo": true, "volume": true, "stop": true, "loop": true, "queue": true,
	"cycle": true, "bar": true, "beats": true, "repeat": true, "if": true,
	"else": true, "return": true, "break": true, "continue": true, "use": true,
}

// Token is one lexed unit with its class, literal text, and span.
type Token struct {
	Kind    Kind
	Literal string
	Span    span.Span
}
