package parser

import (
	"github.com/dspeclang/dspec/pkg/ast"
	"github.com/dspeclang/dspec/pkg/diag"
	"github.com/dspeclang/dspec/pkg/token"
)

// Section grammar:
//
//	index      → IDENT ":" ("index" | "unique") "(" column | "[" columns "]" ")"
//	relation   → IDENT ":" relationKind "(" IDENT ("," IDENT)* ")"
//	computed   → IDENT ":" type "(" ")" "[" expression "]"
//	constraint → IDENT ":" "check" "(" expression ")"
//
// Composite indexes require the bracketed form; brackets are optional
// for a single column.

// parseIndexItems parses the items of an indexes section up to and
// including the closing brace.
func (p *Parser) parseIndexItems() []*ast.Index {
	var indexes []*ast.Index
	names := make(map[string]bool)

	for !p.check(token.RBRACE) && !p.check(token.EOF) && !token.IsDeclKeyword(p.tok.Type) {
		idx := p.parseIndex()
		if idx == nil {
			p.skipToItem()
			continue
		}
		if names[idx.Name] {
			p.bag.Record(diag.DuplicateName, p.unit, idx.Span,
				"index %q already declared; later entry dropped", idx.Name)
			continue
		}
		names[idx.Name] = true
		indexes = append(indexes, idx)
	}
	p.expect(token.RBRACE)
	return indexes
}

// parseIndex parses a single index declaration.
func (p *Parser) parseIndex() *ast.Index {
	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "index name")
		return nil
	}
	nameTok := p.tok
	p.nextToken()

	if !p.expect(token.COLON) {
		return nil
	}

	// index token is lexed as IDENT here; unique likewise.
	if !p.check(token.IDENT) || (p.tok.Literal != "index" && p.tok.Literal != "unique") {
		p.syntaxErrorf(p.tok.Span(), "expected index kind (index or unique), found %q", p.tok.Literal)
		return nil
	}
	unique := p.tok.Literal == "unique"
	p.nextToken()

	if !p.expect(token.LPAREN) {
		return nil
	}

	var columns []string
	if p.match(token.LBRACKET) {
		// Bracketed multi-column form.
		for {
			if !p.check(token.IDENT) {
				p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "column name")
				p.skipToRParen()
				return nil
			}
			columns = append(columns, p.tok.Literal)
			p.nextToken()
			if !p.match(token.COMMA) {
				break
			}
		}
		if !p.expect(token.RBRACKET) {
			p.skipToRParen()
			return nil
		}
	} else {
		if !p.check(token.IDENT) {
			p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "column name")
			p.skipToRParen()
			return nil
		}
		columns = append(columns, p.tok.Literal)
		p.nextToken()
		if p.check(token.COMMA) {
			p.syntaxErrorf(p.tok.Span(), ErrCompositeBrackets)
			p.skipToRParen()
			return nil
		}
	}

	if !p.expect(token.RPAREN) {
		return nil
	}

	return &ast.Index{
		Name:    nameTok.Literal,
		Unique:  unique,
		Columns: columns,
		Span:    p.spanFrom(nameTok.Pos),
	}
}

// parseRelationItems parses the items of a relations section up to and
// including the closing brace.
func (p *Parser) parseRelationItems() []*ast.Relation {
	var relations []*ast.Relation
	names := make(map[string]bool)

	for !p.check(token.RBRACE) && !p.check(token.EOF) && !token.IsDeclKeyword(p.tok.Type) {
		rel := p.parseRelation()
		if rel == nil {
			p.skipToItem()
			continue
		}
		if names[rel.Name] {
			p.bag.Record(diag.DuplicateName, p.unit, rel.Span,
				"relation %q already declared; later entry dropped", rel.Name)
			continue
		}
		names[rel.Name] = true
		relations = append(relations, rel)
	}
	p.expect(token.RBRACE)
	return relations
}

// parseRelation parses a single relation declaration and validates its
// argument count against the kind's fixed arity.
func (p *Parser) parseRelation() *ast.Relation {
	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "relation name")
		return nil
	}
	nameTok := p.tok
	p.nextToken()

	if !p.expect(token.COLON) {
		return nil
	}

	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "relation kind")
		return nil
	}
	kind, known := ast.LookupRelationKind(p.tok.Literal)
	if !known {
		p.syntaxErrorf(p.tok.Span(), "unknown relation kind %q", p.tok.Literal)
		p.nextToken()
		if p.check(token.LPAREN) {
			p.skipToRParen()
		}
		return nil
	}
	p.nextToken()

	if !p.expect(token.LPAREN) {
		return nil
	}

	var args []string
	for p.check(token.IDENT) {
		args = append(args, p.tok.Literal)
		p.nextToken()
		if !p.match(token.COMMA) {
			break
		}
	}

	if !p.expect(token.RPAREN) {
		p.skipToRParen()
		return nil
	}

	span := p.spanFrom(nameTok.Pos)
	if len(args) != kind.Arity() {
		p.bag.Record(diag.ArityError, p.unit, span,
			"%s expects %d argument(s), got %d", kind, kind.Arity(), len(args))
		return nil
	}

	return &ast.Relation{
		Name: nameTok.Literal,
		Kind: kind,
		Args: args,
		Span: span,
	}
}

// parseComputedItems parses the items of a computed_attributes section
// up to and including the closing brace.
func (p *Parser) parseComputedItems() []*ast.ComputedAttribute {
	var computed []*ast.ComputedAttribute
	names := make(map[string]bool)

	for !p.check(token.RBRACE) && !p.check(token.EOF) && !token.IsDeclKeyword(p.tok.Type) {
		c := p.parseComputed()
		if c == nil {
			p.skipToItem()
			continue
		}
		if names[c.Name] {
			p.bag.Record(diag.DuplicateName, p.unit, c.Span,
				"computed attribute %q already declared; later entry dropped", c.Name)
			continue
		}
		names[c.Name] = true
		computed = append(computed, c)
	}
	p.expect(token.RBRACE)
	return computed
}

// parseComputed parses a single computed attribute: name, result type,
// and bracketed expression body.
func (p *Parser) parseComputed() *ast.ComputedAttribute {
	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "computed attribute name")
		return nil
	}
	nameTok := p.tok
	p.nextToken()

	if !p.check(token.COLON) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, token.COLON)
		return nil
	}
	if !p.adjacent(nameTok) {
		p.syntaxErrorf(p.tok.Span(), ErrNoSpaceBeforeColon, nameTok.Literal)
	}
	p.nextToken()

	ft, ok := p.parseType()
	if !ok {
		return nil
	}

	if !p.expect(token.LBRACKET) {
		return nil
	}
	expr := p.parseExpression()
	if !p.check(token.RBRACKET) {
		if !ast.HasBadExpr(expr) {
			p.syntaxErrorf(p.tok.Span(), ErrMalformedExpression, "expected ']' after expression")
		}
		p.skipToExprEnd(token.RBRACKET)
		expr = &ast.BadExpr{Span: p.spanFrom(nameTok.Pos)}
	}
	p.match(token.RBRACKET)

	return &ast.ComputedAttribute{
		Name: nameTok.Literal,
		Type: ft,
		Expr: expr,
		Span: p.spanFrom(nameTok.Pos),
	}
}

// parseConstraintItems parses the items of a constraints section up to
// and including the closing brace.
func (p *Parser) parseConstraintItems() []*ast.Constraint {
	var constraints []*ast.Constraint
	names := make(map[string]bool)

	for !p.check(token.RBRACE) && !p.check(token.EOF) && !token.IsDeclKeyword(p.tok.Type) {
		c := p.parseConstraint()
		if c == nil {
			p.skipToItem()
			continue
		}
		if names[c.Name] {
			p.bag.Record(diag.DuplicateName, p.unit, c.Span,
				"constraint %q already declared; later entry dropped", c.Name)
			continue
		}
		names[c.Name] = true
		constraints = append(constraints, c)
	}
	p.expect(token.RBRACE)
	return constraints
}

// parseConstraint parses a single check constraint.
func (p *Parser) parseConstraint() *ast.Constraint {
	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "constraint name")
		return nil
	}
	nameTok := p.tok
	p.nextToken()

	if !p.check(token.COLON) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, token.COLON)
		return nil
	}
	if !p.adjacent(nameTok) {
		p.syntaxErrorf(p.tok.Span(), ErrNoSpaceBeforeColon, nameTok.Literal)
	}
	p.nextToken()

	if !p.check(token.IDENT) || p.tok.Literal != "check" {
		p.syntaxErrorf(p.tok.Span(), "expected check(...), found %q", p.tok.Literal)
		return nil
	}
	p.nextToken()

	if !p.expect(token.LPAREN) {
		return nil
	}
	expr := p.parseExpression()
	if !p.check(token.RPAREN) {
		if !ast.HasBadExpr(expr) {
			p.syntaxErrorf(p.tok.Span(), ErrMalformedExpression, "expected ')' after expression")
		}
		p.skipToExprEnd(token.RPAREN)
		expr = &ast.BadExpr{Span: p.spanFrom(nameTok.Pos)}
	}
	p.match(token.RPAREN)

	return &ast.Constraint{
		Name: nameTok.Literal,
		Expr: expr,
		Span: p.spanFrom(nameTok.Pos),
	}
}

// skipToExprEnd skips tokens to the closing delimiter of an expression
// body without crossing a section boundary.
func (p *Parser) skipToExprEnd(end token.Type) {
	for !p.check(token.EOF) && !p.check(end) && !p.check(token.RBRACE) &&
		!token.IsDeclKeyword(p.tok.Type) {
		p.nextToken()
	}
}
