// Package span tracks source locations with both byte and UTF-16 offsets,
// so the core can answer editor queries (which typically index in UTF-16)
// without re-scanning the source string.
package span

import "unicode/utf16"

// Span is a half-open source range, [Start,End) in bytes and
// [UTF16Start,UTF16End) in UTF-16 code units, with 1-based line/column
// anchored at Start.
type Span struct {
	Start       int `json:"start"`
	End         int `json:"end"`
	UTF16Start  int `json:"utf16_start"`
	UTF16End    int `json:"utf16_end"`
	Line        int `json:"line"`
	Column      int `json:"column"`
}

// Contains reports whether the byte offset pos falls within the span.
func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// ContainsUTF16 reports whether the UTF-16 offset pos falls within the span.
func (s Span) ContainsUTF16(pos int) bool {
	return pos >= s.UTF16Start && pos < s.UTF16End
}

// Merge returns the smallest span covering both a and b.
func Merge(a, b Span) Span {
	out := a
	if b.Start < out.Start {
		out.Start = b.Start
		out.UTF16Start = b.UTF16Start
		out.Line = b.Line
		out.Column = b.Column
	}
	if b.End > out.End {
		out.End = b.End
		out.UTF16End = b.UTF16End
	}
	return out
}

// Counter tracks byte and UTF-16 offsets plus line/column while scanning a
// source string rune by rune, so the lexer can stamp every token with both
// coordinate systems in a single pass.
type Counter struct {
	Byte   int
	UTF16  int
	Line   int
	Column int
}

// NewCounter returns a Counter positioned at the start of a file (line 1,
// column 1).
func NewCounter() Counter {
	return Counter{Line: 1, Column: 1}
}

// Advance moves the counter past r and returns the updated counter. Callers
// pass the rune they just consumed.
func (c Counter) Advance(r rune) Counter {
	n := c
	n.Byte += len(string(r))
	n.UTF16 += utf16Width(r)
	if r == '\n' {
		n.Line++
		n.Column = 1
	} else {
		n.Column++
	}
	return n
}

func utf16Width(r rune) int {
	return len(utf16.Encode([]rune{r}))
}

// Snapshot captures the counter as the Start fields of a Span; callers fill
// End/UTF16End once the token's extent is known.
func (c Counter) Snapshot() Span {
	return Span{
		Start:      c.Byte,
		UTF16Start: c.UTF16,
		Line:       c.Line,
		Column:     c.Column,
	}
}
