package parser

import (
	"github.com/dspeclang/dspec/pkg/ast"
	"github.com/dspeclang/dspec/pkg/diag"
	"github.com/dspeclang/dspec/pkg/token"
)

// Enum grammar:
//
//	enum   → "Enum" IDENT ":" backing "(" ")" "{" members "}"
//	member → IDENT ("=" literal)? ("," member)* ","?
//
// The backing type must be string or integer. For a non-string backing
// every member needs an explicit value; string-backed members without
// a value take the member name.

// parseEnumDecl parses an Enum declaration.
func (p *Parser) parseEnumDecl() *ast.Declaration {
	enumTok := p.tok
	doc := p.takeDoc(enumTok.Pos)
	p.nextToken()

	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "enumeration name")
		p.skipToDecl()
		return nil
	}
	nameTok := p.tok
	p.nextToken()

	if !p.check(token.COLON) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, token.COLON)
		p.skipToDecl()
		return nil
	}
	if !p.adjacent(nameTok) {
		p.syntaxErrorf(p.tok.Span(), ErrNoSpaceBeforeColon, nameTok.Literal)
	}
	p.nextToken()

	backing, ok := p.parseType()
	if !ok {
		p.skipToDecl()
		return nil
	}
	backingValid := backing.Kind == ast.TypeString || backing.Kind == ast.TypeInteger
	if !backingValid {
		p.bag.Record(diag.TypeMismatch, p.unit, p.spanFrom(nameTok.Pos),
			"enum backing type must be string or integer, got %s", backing.Kind)
	}

	if !p.expect(token.LBRACE) {
		p.skipToDecl()
		return nil
	}

	d := &ast.Declaration{
		Kind:    ast.DeclEnum,
		Name:    nameTok.Literal,
		Unit:    p.unit,
		Backing: backing,
	}

	names := make(map[string]bool)
	for !p.check(token.RBRACE) && !p.check(token.EOF) && !token.IsDeclKeyword(p.tok.Type) {
		m := p.parseEnumMember()
		if m == nil {
			p.skipToMember()
			continue
		}
		if names[m.Name] {
			p.bag.Record(diag.DuplicateName, p.unit, m.Span,
				"enum member %q already declared; later entry dropped", m.Name)
		} else {
			names[m.Name] = true
			if backingValid {
				p.checkMemberValue(d, m)
			}
			d.Members = append(d.Members, m)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)

	d.Span = p.spanFrom(enumTok.Pos)
	if d.Description == "" {
		d.Description = doc
	}
	return d
}

// parseEnumMember parses one member with its optional explicit value.
func (p *Parser) parseEnumMember() *ast.Member {
	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "enum member name")
		return nil
	}
	nameTok := p.tok
	p.nextToken()

	m := &ast.Member{Name: nameTok.Literal}
	if p.match(token.EQ) {
		switch p.tok.Type {
		case token.STRING:
			m.Value = &ast.Literal{Kind: ast.LiteralString, Value: p.tok.Literal, Span: p.tok.Span()}
			p.nextToken()
		case token.NUMBER:
			m.Value = &ast.Literal{Kind: ast.LiteralNumber, Value: p.tok.Literal, Span: p.tok.Span()}
			p.nextToken()
		default:
			p.syntaxErrorf(p.tok.Span(), "expected member value, found %s", p.tok.Type)
			return nil
		}
	}
	m.Span = p.spanFrom(nameTok.Pos)
	return m
}

// checkMemberValue validates a member's value against the enum's
// backing type. Flagged members stay in the AST; the resolver excludes
// them from the resolved enumeration.
func (p *Parser) checkMemberValue(d *ast.Declaration, m *ast.Member) {
	if m.Value == nil {
		// Inferred value (the member name) is valid only for string
		// backing.
		if d.Backing.Kind != ast.TypeString {
			p.bag.Record(diag.MissingEnumValue, p.unit, m.Span,
				"member %q of %s-backed enum %q requires an explicit value",
				m.Name, d.Backing.Kind, d.Name)
		}
		return
	}

	switch d.Backing.Kind {
	case ast.TypeString:
		if m.Value.Kind != ast.LiteralString {
			p.bag.Record(diag.TypeMismatch, p.unit, m.Value.Span,
				"member %q of string-backed enum %q requires a string value", m.Name, d.Name)
		}
	case ast.TypeInteger:
		if m.Value.Kind != ast.LiteralNumber || !m.Value.IsInt() {
			p.bag.Record(diag.TypeMismatch, p.unit, m.Value.Span,
				"member %q of integer-backed enum %q requires an integer value", m.Name, d.Name)
		}
	}
}

// skipToMember recovers inside an enum body: skips to the next comma
// (consumed) or the closing brace.
func (p *Parser) skipToMember() {
	for !p.check(token.EOF) && !p.check(token.RBRACE) && !token.IsDeclKeyword(p.tok.Type) {
		if p.match(token.COMMA) {
			return
		}
		p.nextToken()
	}
}
