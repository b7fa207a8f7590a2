package parser

import (
	"strconv"

	"github.com/schollz/cadence/internal/ast"
	"github.com/schollz/cadence/internal/lexer"
	"github.com/schollz/cadence/internal/span"
)

// Precedence levels, lowest to highest. Method chains (`.name(args)`),
// calls, and indexing bind tighter than every infix operator.
const (
	precLowest = iota
	precPipeline
	precEquality
	precBitOr
	precBitXor
	precBitAnd
	precAdditive
	precCall
)

func precedenceOf(t lexer.Token) int {
	switch t.Kind {
	case lexer.PipeArr:
		return precPipeline
	case lexer.EqEq, lexer.NotEq:
		return precEquality
	case lexer.Pipe:
		return precBitOr
	case lexer.Caret:
		return precBitXor
	case lexer.Amp:
		return precBitAnd
	case lexer.Plus, lexer.Minus, lexer.Percent:
		return precAdditive
	case lexer.Dot, lexer.LParen, lexer.LBracket:
		return precCall
	default:
		return precLowest
	}
}

// parseExpr parses an expression via precedence climbing: a prefix/primary
// term followed by zero or more infix/postfix operators whose precedence
// exceeds minPrec.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parsePrimary()
	if left == nil {
		return nil
	}
	for {
		t := p.cur()
		switch t.Kind {
		case lexer.Dot:
			left = p.parseMethodCall(left)
		case lexer.LParen:
			left = p.parseCall(left)
		case lexer.LBracket:
			left = p.parseIndex(left)
		default:
			prec := precedenceOf(t)
			if prec <= minPrec {
				return left
			}
			switch t.Kind {
			case lexer.PipeArr:
				left = p.parsePipeline(left)
			case lexer.Plus, lexer.Minus, lexer.Percent, lexer.Amp, lexer.Pipe, lexer.Caret, lexer.EqEq, lexer.NotEq:
				left = p.parseBinary(left, prec)
			default:
				return left
			}
		}
		if left == nil {
			return nil
		}
	}
}

func (p *Parser) parseBinary(left ast.Expr, prec int) ast.Expr {
	op := p.advance()
	right := p.parseExpr(prec)
	if right == nil {
		return nil
	}
	return &ast.BinaryExpr{
		Base:  ast.Base{Sp: span.Merge(left.Span(), right.Span())},
		Op:    op.Literal,
		Left:  left,
		Right: right,
	}
}

func (p *Parser) parseMethodCall(left ast.Expr) ast.Expr {
	p.advance() // '.'
	name, ok := p.expect(lexer.Ident, "method name")
	if !ok {
		return nil
	}
	var args []ast.Expr
	end := name.Span
	if p.cur().Kind == lexer.LParen {
		args, end = p.parseArgList()
	}
	return &ast.MethodCallExpr{
		Base:     ast.Base{Sp: span.Merge(left.Span(), end)},
		Receiver: left,
		Name:     name.Literal,
		Args:     args,
	}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	args, end := p.parseArgList()
	return &ast.CallExpr{
		Base:   ast.Base{Sp: span.Merge(callee.Span(), end)},
		Callee: callee,
		Args:   args,
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, span.Span) {
	p.advance() // '('
	var args []ast.Expr
	for p.cur().Kind != lexer.RParen && p.cur().Kind != lexer.EOF {
		arg := p.parseExpr(precLowest)
		if arg != nil {
			args = append(args, arg)
		}
		if p.cur().Kind == lexer.Comma {
			p.advance()
		}
	}
	end, _ := p.expect(lexer.RParen, "')'")
	return args, end.Span
}

func (p *Parser) parseIndex(receiver ast.Expr) ast.Expr {
	p.advance() // '['
	idx := p.parseExpr(precLowest)
	end, _ := p.expect(lexer.RBracket, "']'")
	return &ast.IndexExpr{
		Base:     ast.Base{Sp: span.Merge(receiver.Span(), end.Span)},
		Receiver: receiver,
		Index:    idx,
	}
}

// parsePipeline handles `lhs |> name args...`: the pipeline's right side is
// a bare call name followed by space-separated arguments up to the next
// lower-precedence operator or statement boundary (grounded on the spec's
// `a |> fast 2` surface syntax, which omits parentheses around arguments).
func (p *Parser) parsePipeline(left ast.Expr) ast.Expr {
	p.advance() // '|>'
	name, ok := p.expect(lexer.Ident, "function name")
	if !ok {
		return nil
	}
	var args []ast.Expr
	end := name.Span
	if p.cur().Kind == lexer.LParen {
		args, end = p.parseArgList()
	} else {
		for p.isArgStart(p.cur()) {
			arg := p.parseExpr(precCall)
			if arg == nil {
				break
			}
			args = append(args, arg)
			end = arg.Span()
		}
	}
	return &ast.PipelineExpr{
		Base: ast.Base{Sp: span.Merge(left.Span(), end)},
		Left: left,
		Name: name.Literal,
		Args: args,
	}
}

// isArgStart reports whether t can start a bare (unparenthesized)
// pipeline/repeat-count argument, stopping at statement-ending tokens and
// at further pipeline stages.
func (p *Parser) isArgStart(t lexer.Token) bool {
	switch t.Kind {
	case lexer.Newline, lexer.Semi, lexer.EOF, lexer.RBrace, lexer.RParen, lexer.RBracket, lexer.Comma, lexer.PipeArr:
		return false
	case lexer.Keyword:
		return false
	default:
		return true
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case lexer.Int:
		p.advance()
		v, _ := strconv.ParseInt(t.Literal, 10, 64)
		return &ast.NumberLit{Base: ast.Base{Sp: t.Span}, Int: v}
	case lexer.Float:
		p.advance()
		v, _ := strconv.ParseFloat(t.Literal, 64)
		return &ast.NumberLit{Base: ast.Base{Sp: t.Span}, IsFloat: true, Float: v}
	case lexer.String:
		p.advance()
		return &ast.StringLit{Base: ast.Base{Sp: t.Span}, Value: t.Literal}
	case lexer.Note:
		p.advance()
		return &ast.NoteLit{Base: ast.Base{Sp: t.Span}, Literal: t.Literal}
	case lexer.Ident:
		p.advance()
		if t.Literal == "true" || t.Literal == "false" {
			return &ast.BoolLit{Base: ast.Base{Sp: t.Span}, Value: t.Literal == "true"}
		}
		return ast.NewIdent(t.Span, t.Literal)
	case lexer.Minus:
		return p.parseUnaryMinus()
	case lexer.LParen:
		p.advance()
		inner := p.parseExpr(precLowest)
		p.expect(lexer.RParen, "')'")
		return inner
	case lexer.LBracket:
		return p.parseBracketLit()
	case lexer.Keyword:
		if t.Literal == "fn" {
			return p.parseFnLit()
		}
		p.errorf(t.Span, "unexpected keyword %q in expression", t.Literal)
		return nil
	default:
		p.errorf(t.Span, "unexpected token %s %q", t.Kind, t.Literal)
		return nil
	}
}

// parseUnaryMinus desugars `-expr` to `0 - expr`, so the dispatch table's
// numeric Sub entry negates numbers; there is no Number-minus-Note or
// Number-minus-Chord entry, so negating a note or chord is a TypeError.
func (p *Parser) parseUnaryMinus() ast.Expr {
	start := p.advance().Span // '-'
	operand := p.parseExpr(precCall)
	if operand == nil {
		return nil
	}
	zero := &ast.NumberLit{Base: ast.Base{Sp: start}}
	return &ast.BinaryExpr{
		Base:  ast.Base{Sp: span.Merge(start, operand.Span())},
		Op:    "-",
		Left:  zero,
		Right: operand,
	}
}

// parseBracketLit parses `[ ... ]` in expression position. A bracket whose
// elements are all note literals is a ChordLit; any other bracket is a
// generic ListLit.
func (p *Parser) parseBracketLit() ast.Expr {
	start := p.advance().Span // '['
	var elems []ast.Expr
	for p.cur().Kind != lexer.RBracket && p.cur().Kind != lexer.EOF {
		e := p.parseExpr(precLowest)
		if e != nil {
			elems = append(elems, e)
		}
		if p.cur().Kind == lexer.Comma {
			p.advance()
		}
	}
	end, _ := p.expect(lexer.RBracket, "']'")
	sp := span.Merge(start, end.Span)
	if allNoteLits(elems) {
		return &ast.ChordLit{Base: ast.Base{Sp: sp}, Notes: elems}
	}
	return &ast.ListLit{Base: ast.Base{Sp: sp}, Elements: elems}
}

func allNoteLits(elems []ast.Expr) bool {
	if len(elems) == 0 {
		return false
	}
	for _, e := range elems {
		if _, ok := e.(*ast.NoteLit); !ok {
			return false
		}
	}
	return true
}

func (p *Parser) parseFnLit() ast.Expr {
	start := p.advance().Span // 'fn'
	params := p.parseParamList()
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		return nil
	}
	body := p.parseBlockBody()
	end, _ := p.expect(lexer.RBrace, "'}'")
	return &ast.FnLit{Base: ast.Base{Sp: span.Merge(start, end.Span)}, Params: params, Body: body}
}
