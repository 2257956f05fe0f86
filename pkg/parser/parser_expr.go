package parser

import (
	"github.com/dspeclang/dspec/pkg/ast"
	"github.com/dspeclang/dspec/pkg/token"
)

// Expression parsing for computed-attribute bodies and check
// constraints, using precedence climbing.
//
// Precedence levels, weakest to strongest:
//
//	precOr         or
//	precAnd        and
//	precNot        unary not
//	precComparison =, !=, <, >, <=, >=, is [not] null
//
// Parentheses override precedence explicitly. Identifiers are left
// unresolved; binding happens in the resolver. A malformed expression
// records a SyntaxError and yields a BadExpr placeholder so the
// surrounding construct still parses to completion.

// Expression precedence levels.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precComparison
)

// parseExpression parses an expression bounded by the enclosing
// construct's delimiters.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseExprPrec(precOr)
}

// parseExprPrec implements precedence climbing.
func (p *Parser) parseExprPrec(minPrec int) ast.Expr {
	left := p.parsePrefixExpr()
	if _, bad := left.(*ast.BadExpr); bad {
		return left
	}

	for {
		prec := p.infixPrecedence()
		if prec < minPrec {
			break
		}
		left = p.parseInfixExpr(left, prec)
		if _, bad := left.(*ast.BadExpr); bad {
			break
		}
	}
	return left
}

// parsePrefixExpr parses unary not and primary expressions.
func (p *Parser) parsePrefixExpr() ast.Expr {
	if p.check(token.NOT) {
		start := p.tok.Pos
		p.nextToken()
		expr := p.parseExprPrec(precNot)
		return &ast.UnaryNot{Expr: expr, Span: p.spanFrom(start)}
	}
	return p.parsePrimary()
}

// infixPrecedence returns the precedence of the current token as an
// infix operator, or precNone.
func (p *Parser) infixPrecedence() int {
	switch {
	case p.check(token.OR):
		return precOr
	case p.check(token.AND):
		return precAnd
	case token.IsComparison(p.tok.Type), p.check(token.IS):
		return precComparison
	default:
		return precNone
	}
}

// parseInfixExpr parses an infix expression given the left operand.
func (p *Parser) parseInfixExpr(left ast.Expr, prec int) ast.Expr {
	start := left.GetSpan().Start

	if p.check(token.IS) {
		p.nextToken()
		negated := p.match(token.NOT)
		if !p.expect(token.NULL) {
			return &ast.BadExpr{Span: p.spanFrom(start)}
		}
		return &ast.IsNullExpr{Expr: left, Negated: negated, Span: p.spanFrom(start)}
	}

	op := p.tok.Type
	p.nextToken()

	// Left-associative: parse the right operand one level tighter.
	right := p.parseExprPrec(prec + 1)
	if _, bad := right.(*ast.BadExpr); bad {
		return &ast.BadExpr{Span: p.spanFrom(start)}
	}

	return &ast.BinaryExpr{Left: left, Op: op, Right: right, Span: p.spanFrom(start)}
}

// parsePrimary parses an identifier, literal, or parenthesized group.
func (p *Parser) parsePrimary() ast.Expr {
	start := p.tok.Pos

	switch p.tok.Type {
	case token.IDENT:
		e := &ast.Ident{Name: p.tok.Literal, Span: p.tok.Span()}
		p.nextToken()
		return e

	case token.STRING:
		e := &ast.Literal{Kind: ast.LiteralString, Value: p.tok.Literal, Span: p.tok.Span()}
		p.nextToken()
		return e

	case token.NUMBER:
		e := &ast.Literal{Kind: ast.LiteralNumber, Value: p.tok.Literal, Span: p.tok.Span()}
		p.nextToken()
		return e

	case token.TRUE, token.FALSE:
		e := &ast.Literal{Kind: ast.LiteralBool, Value: p.tok.Literal, Span: p.tok.Span()}
		p.nextToken()
		return e

	case token.NULL:
		e := &ast.Literal{Kind: ast.LiteralNull, Value: "null", Span: p.tok.Span()}
		p.nextToken()
		return e

	case token.LPAREN:
		p.nextToken()
		inner := p.parseExprPrec(precOr)
		if _, bad := inner.(*ast.BadExpr); bad {
			return &ast.BadExpr{Span: p.spanFrom(start)}
		}
		if !p.expect(token.RPAREN) {
			return &ast.BadExpr{Span: p.spanFrom(start)}
		}
		return &ast.ParenExpr{Expr: inner, Span: p.spanFrom(start)}

	default:
		p.syntaxErrorf(p.tok.Span(), ErrMalformedExpression,
			"unexpected "+p.tok.Type.String())
		return &ast.BadExpr{Span: p.tok.Span()}
	}
}
