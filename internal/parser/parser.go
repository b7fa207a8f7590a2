// Package parser implements the recursive-descent statement parser and a
// precedence-climbing expression parser over the lexer's token stream,
// producing the spanned ast.Program (spec §4.2). Grounded on the
// teacher's tolerant, error-accumulating style (internal/getbpm parses
// best-effort and returns partial results) generalized to a full
// statement grammar with span-bearing diagnostics.
package parser

import (
	"strconv"

	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/cerr"
	"github.com/schollz/cadence/internal/lexer"
	"github.com/schollz/cadence/internal/span"
)

// Parser walks a token stream produced by the lexer.
type Parser struct {
	toks []lexer.Token
	pos  int
	errs []*cerr.Error
	docs map[int]string // token index -> doc-comment text immediately preceding it
}

// Parse tokenizes and parses src into a Program plus any diagnostics
// (all lexer errors first, then all parser errors).
func Parse(src string) (*ast.Program, []*cerr.Error) {
	toks, lexErrs := lexer.Tokenize(src)
	filtered, docs := filterComments(toks)
	p := &Parser{toks: filtered, docs: docs}
	p.errs = append(p.errs, lexErrs...)
	prog := p.parseProgram()
	return prog, p.errs
}

// filterComments drops Comment tokens from the stream the statement parser
// walks, recording each comment run as the doc-comment candidate for the
// token that immediately follows it (only Newlines may intervene).
func filterComments(toks []lexer.Token) ([]lexer.Token, map[int]string) {
	var out []lexer.Token
	docs := make(map[int]string)
	pending := ""
	pendingActive := false
	for _, t := range toks {
		switch t.Kind {
		case lexer.Comment:
			if pendingActive {
				pending += "\n" + t.Literal
			} else {
				pending = t.Literal
				pendingActive = true
			}
			continue
		case lexer.Newline:
			out = append(out, t)
			continue
		default:
			if pendingActive {
				docs[len(out)] = pending
				pending = ""
				pendingActive = false
			}
			out = append(out, t)
		}
	}
	return out, docs
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.toks[idx]
}

func (p *Parser) docForCurrent() string {
	return p.docs[p.pos]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(sp span.Span, format string, args ...interface{}) {
	p.errs = append(p.errs, cerr.At(cerr.KindParse, sp, format, args...))
}

// skipToStatementBoundary advances past tokens until a Newline, Semi, or
// EOF, implementing the "statement boundary = newline or ;" recovery rule.
func (p *Parser) skipToStatementBoundary() {
	for {
		t := p.cur()
		if t.Kind == lexer.EOF {
			return
		}
		if t.Kind == lexer.Newline || t.Kind == lexer.Semi {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *Parser) skipNewlines() {
	for p.cur().Kind == lexer.Newline || p.cur().Kind == lexer.Semi {
		p.advance()
	}
}

func (p *Parser) parseProgram() *ast.Program {
	start := p.cur().Span
	var stmts []ast.Statement
	p.skipNewlines()
	for p.cur().Kind != lexer.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.skipNewlines()
	}
	end := p.prevSpanOrCur()
	return &ast.Program{Statements: stmts, Sp: span.Merge(start, end)}
}

func (p *Parser) prevSpanOrCur() span.Span {
	if p.pos > 0 {
		return p.toks[p.pos-1].Span
	}
	return p.cur().Span
}

func (p *Parser) parseStatement() ast.Statement {
	t := p.cur()
	if t.Kind == lexer.Keyword {
		switch t.Literal {
		case "let":
			return p.parseLet()
		case "play":
			return p.parsePlay(0)
		case "on":
			return p.parseOn()
		case "track":
			return p.parseTrack()
		case "tempo":
			return p.parseTempo()
		case "volume":
			return p.parseVolume(0)
		case "stop":
			return p.parseStop(0)
		case "use":
			return p.parseUse()
		case "fn":
			return p.parseFnDef()
		case "return":
			return p.parseReturn()
		case "repeat":
			return p.parseRepeat()
		case "loop":
			return p.parseLoop()
		case "break":
			sp := p.advance().Span
			return &ast.BreakStmt{Base: ast.Base{Sp: sp}}
		case "continue":
			sp := p.advance().Span
			return &ast.ContinueStmt{Base: ast.Base{Sp: sp}}
		case "if":
			return p.parseIf()
		}
	}

	// `name = expr` vs. a bare expression statement: look ahead for `=`
	// not followed by `=` (to distinguish from `==`).
	if t.Kind == lexer.Ident && p.peekAt(1).Kind == lexer.Eq {
		return p.parseAssign()
	}

	expr := p.parseExpr(precLowest)
	if expr == nil {
		p.skipToStatementBoundary()
		return nil
	}
	return &ast.ExprStmt{Base: ast.Base{Sp: expr.Span()}, Expr: expr}
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, bool) {
	if p.cur().Kind != k {
		p.errorf(p.cur().Span, "expected %s, got %s %q", what, p.cur().Kind, p.cur().Literal)
		return lexer.Token{}, false
	}
	return p.advance(), true
}

func (p *Parser) parseLet() ast.Statement {
	start := p.advance().Span // 'let'
	name, ok := p.expect(lexer.Ident, "identifier")
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	if _, ok := p.expect(lexer.Eq, "'='"); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	value := p.parseExpr(precLowest)
	if value == nil {
		p.skipToStatementBoundary()
		return nil
	}
	return ast.NewLetStmt(span.Merge(start, value.Span()), name.Literal, value)
}

func (p *Parser) parseAssign() ast.Statement {
	name := p.advance()
	p.advance() // '='
	value := p.parseExpr(precLowest)
	if value == nil {
		p.skipToStatementBoundary()
		return nil
	}
	return &ast.AssignStmt{Base: ast.Base{Sp: span.Merge(name.Span, value.Span())}, Name: name.Literal, Value: value}
}

func (p *Parser) parsePlay(defaultTrack int) ast.Statement {
	start := p.advance().Span // 'play'
	expr := p.parseExpr(precLowest)
	if expr == nil {
		p.skipToStatementBoundary()
		return nil
	}
	stmt := &ast.PlayStmt{Track: defaultTrack, Expr: expr}
	stmt.Sp = span.Merge(start, expr.Span())

	for {
		t := p.cur()
		if t.Kind == lexer.Keyword && t.Literal == "queue" {
			p.advance()
			stmt.Queue = true
			stmt.Mode = ast.QueueBeat
			if nt := p.cur(); nt.Kind == lexer.Keyword {
				switch nt.Literal {
				case "bar":
					p.advance()
					stmt.Mode = ast.QueueBar
				case "cycle":
					p.advance()
					stmt.Mode = ast.QueueCycle
				case "beats":
					p.advance()
					stmt.Mode = ast.QueueBeatsN
					if n, ok := p.expect(lexer.Int, "beats count"); ok {
						v, _ := strconv.Atoi(n.Literal)
						stmt.BeatsN = v
					}
				}
			}
			stmt.Sp = span.Merge(stmt.Sp, p.prevSpanOrCur())
			continue
		}
		if t.Kind == lexer.Keyword && t.Literal == "loop" {
			p.advance()
			stmt.Loop = true
			stmt.Sp = span.Merge(stmt.Sp, p.prevSpanOrCur())
			continue
		}
		break
	}
	return stmt
}

func (p *Parser) parseOn() ast.Statement {
	start := p.advance().Span // 'on'
	n, ok := p.expect(lexer.Int, "track number")
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	trackNum, _ := strconv.Atoi(n.Literal)
	if !(p.cur().Kind == lexer.Keyword && p.cur().Literal == "play") {
		p.errorf(p.cur().Span, "expected 'play' after 'on %d'", trackNum)
		p.skipToStatementBoundary()
		return nil
	}
	playStmt := p.parsePlay(trackNum)
	play, _ := playStmt.(*ast.PlayStmt)
	sp := start
	if play != nil {
		sp = span.Merge(start, play.Span())
	}
	return &ast.OnStmt{Base: ast.Base{Sp: sp}, Track: trackNum, Play: play}
}

func (p *Parser) parseTrack() ast.Statement {
	start := p.advance().Span // 'track'
	n, ok := p.expect(lexer.Int, "track number")
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	trackNum, _ := strconv.Atoi(n.Literal)
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	body := p.parseBlockBody()
	end, _ := p.expect(lexer.RBrace, "'}'")
	return &ast.TrackStmt{Base: ast.Base{Sp: span.Merge(start, end.Span)}, Track: trackNum, Body: body}
}

func (p *Parser) parseTempo() ast.Statement {
	start := p.advance().Span // 'tempo'
	expr := p.parseExpr(precLowest)
	if expr == nil {
		p.skipToStatementBoundary()
		return nil
	}
	return &ast.TempoStmt{Base: ast.Base{Sp: span.Merge(start, expr.Span())}, BPM: expr}
}

func (p *Parser) parseVolume(track int) ast.Statement {
	start := p.advance().Span // 'volume'
	expr := p.parseExpr(precLowest)
	if expr == nil {
		p.skipToStatementBoundary()
		return nil
	}
	return &ast.VolumeStmt{Base: ast.Base{Sp: span.Merge(start, expr.Span())}, Track: track, Volume: expr}
}

func (p *Parser) parseStop(track int) ast.Statement {
	start := p.advance().Span // 'stop'
	return &ast.StopStmt{Base: ast.Base{Sp: start}, Track: track}
}

func (p *Parser) parseUse() ast.Statement {
	start := p.advance().Span // 'use'
	s, ok := p.expect(lexer.String, "string literal path")
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	return &ast.UseStmt{Base: ast.Base{Sp: span.Merge(start, s.Span)}, Path: s.Literal}
}

func (p *Parser) parseFnDef() ast.Statement {
	doc := p.docForCurrent()
	start := p.advance().Span // 'fn'
	name, ok := p.expect(lexer.Ident, "function name")
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	params := p.parseParamList()
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	body := p.parseBlockBody()
	end, _ := p.expect(lexer.RBrace, "'}'")
	return &ast.FnDefStmt{
		Base:      ast.Base{Sp: span.Merge(start, end.Span)},
		Name:      name.Literal,
		Params:    params,
		Body:      body,
		DocBefore: doc,
	}
}

func (p *Parser) parseParamList() []string {
	if _, ok := p.expect(lexer.LParen, "'('"); !ok {
		return nil
	}
	var params []string
	for p.cur().Kind != lexer.RParen && p.cur().Kind != lexer.EOF {
		if id, ok := p.expect(lexer.Ident, "parameter name"); ok {
			params = append(params, id.Literal)
		}
		if p.cur().Kind == lexer.Comma {
			p.advance()
		}
	}
	p.expect(lexer.RParen, "')'")
	return params
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.advance().Span // 'return'
	if k := p.cur().Kind; k == lexer.Newline || k == lexer.Semi || k == lexer.EOF || k == lexer.RBrace {
		return &ast.ReturnStmt{Base: ast.Base{Sp: start}}
	}
	expr := p.parseExpr(precLowest)
	sp := start
	if expr != nil {
		sp = span.Merge(start, expr.Span())
	}
	return &ast.ReturnStmt{Base: ast.Base{Sp: sp}, Value: expr}
}

func (p *Parser) parseRepeat() ast.Statement {
	start := p.advance().Span // 'repeat'
	count := p.parseExpr(precCall)
	if count == nil {
		p.skipToStatementBoundary()
		return nil
	}
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	body := p.parseBlockBody()
	end, _ := p.expect(lexer.RBrace, "'}'")
	return &ast.RepeatStmt{Base: ast.Base{Sp: span.Merge(start, end.Span)}, Count: count, Body: body}
}

func (p *Parser) parseLoop() ast.Statement {
	start := p.advance().Span // 'loop'
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	body := p.parseBlockBody()
	end, _ := p.expect(lexer.RBrace, "'}'")
	return &ast.LoopStmt{Base: ast.Base{Sp: span.Merge(start, end.Span)}, Body: body}
}

func (p *Parser) parseIf() ast.Statement {
	start := p.advance().Span // 'if'
	cond := p.parseExpr(precLowest)
	if cond == nil {
		p.skipToStatementBoundary()
		return nil
	}
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	thenBody := p.parseBlockBody()
	end, _ := p.expect(lexer.RBrace, "'}'")
	var elseBody []ast.Statement
	p.skipNewlinesPeekElse()
	if p.cur().Kind == lexer.Keyword && p.cur().Literal == "else" {
		p.advance()
		if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
			return &ast.IfStmt{Base: ast.Base{Sp: span.Merge(start, end.Span)}, Cond: cond, Then: thenBody}
		}
		elseBody = p.parseBlockBody()
		endElse, _ := p.expect(lexer.RBrace, "'}'")
		end = endElse
	}
	return &ast.IfStmt{Base: ast.Base{Sp: span.Merge(start, end.Span)}, Cond: cond, Then: thenBody, Else: elseBody}
}

// skipNewlinesPeekElse allows `} \n else {` by skipping newlines only
// when an `else` keyword genuinely follows.
func (p *Parser) skipNewlinesPeekElse() {
	save := p.pos
	for p.cur().Kind == lexer.Newline {
		p.advance()
	}
	if !(p.cur().Kind == lexer.Keyword && p.cur().Literal == "else") {
		p.pos = save
	}
}

func (p *Parser) parseBlockBody() []ast.Statement {
	var stmts []ast.Statement
	p.skipNewlines()
	for p.cur().Kind != lexer.RBrace && p.cur().Kind != lexer.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.skipNewlines()
	}
	return stmts
}
