package parser

import (
	"strconv"

	"github.com/dspeclang/dspec/pkg/ast"
	"github.com/dspeclang/dspec/pkg/diag"
	"github.com/dspeclang/dspec/pkg/token"
)

// Field grammar:
//
//	field        → IDENT ":" type "(" args? ")" ("[" modifierList "]")?
//	modifierList → modifier ("," modifier)*
//	modifier     → IDENT | IDENT ":" value
//
// No whitespace is permitted between the field name and the ':'.

// parseFieldItems parses the items of a fields section up to and
// including the closing brace.
func (p *Parser) parseFieldItems() []*ast.Field {
	var fields []*ast.Field
	names := make(map[string]bool)

	for !p.check(token.RBRACE) && !p.check(token.EOF) && !token.IsDeclKeyword(p.tok.Type) {
		f := p.parseField()
		if f == nil {
			p.skipToItem()
			continue
		}
		if names[f.Name] {
			p.bag.Record(diag.DuplicateName, p.unit, f.Span,
				"field %q already declared; later entry dropped", f.Name)
			continue
		}
		names[f.Name] = true
		fields = append(fields, f)
	}
	p.expect(token.RBRACE)
	return fields
}

// parseField parses a single field declaration. Returns nil on error;
// the caller resynchronizes.
func (p *Parser) parseField() *ast.Field {
	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "field name")
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

	var mods []*ast.Modifier
	if p.check(token.LBRACKET) {
		mods = p.parseModifiers()
	}

	return &ast.Field{
		Name:      nameTok.Literal,
		Type:      ft,
		Modifiers: mods,
		Span:      p.spanFrom(nameTok.Pos),
	}
}

// parseType parses `type(args)` for fields, computed attributes, and
// enum backings.
func (p *Parser) parseType() (ast.FieldType, bool) {
	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "type name")
		return ast.FieldType{}, false
	}
	typeTok := p.tok
	kind, known := ast.LookupTypeKind(typeTok.Literal)
	p.nextToken()

	if !known {
		p.syntaxErrorf(typeTok.Span(), "unknown type %q", typeTok.Literal)
		// Consume an argument list if present so recovery resumes
		// after the whole type expression.
		if p.check(token.LPAREN) {
			p.skipToRParen()
		}
		return ast.FieldType{}, false
	}

	if !p.expect(token.LPAREN) {
		return ast.FieldType{}, false
	}

	ft := ast.FieldType{Kind: kind}
	switch kind {
	case ast.TypeString:
		// Optional max length.
		if p.check(token.NUMBER) {
			ft.MaxLength = p.intLiteral()
		}
	case ast.TypeFixedString:
		if !p.check(token.NUMBER) {
			p.syntaxErrorf(p.tok.Span(), "fixed_string requires a length argument")
			p.skipToRParen()
			return ast.FieldType{}, false
		}
		ft.Length = p.intLiteral()
	case ast.TypeDecimal:
		if !p.check(token.NUMBER) {
			p.syntaxErrorf(p.tok.Span(), "decimal requires precision and scale arguments")
			p.skipToRParen()
			return ast.FieldType{}, false
		}
		ft.Precision = p.intLiteral()
		if !p.expect(token.COMMA) || !p.check(token.NUMBER) {
			p.syntaxErrorf(p.tok.Span(), "decimal requires precision and scale arguments")
			p.skipToRParen()
			return ast.FieldType{}, false
		}
		ft.Scale = p.intLiteral()
	case ast.TypeEnum:
		if !p.check(token.IDENT) {
			p.syntaxErrorf(p.tok.Span(), "enum type requires an enumeration name")
			p.skipToRParen()
			return ast.FieldType{}, false
		}
		ft.Enum = p.tok.Literal
		p.nextToken()
	default:
		// No arguments permitted.
		if !p.check(token.RPAREN) {
			p.syntaxErrorf(p.tok.Span(), "type %s takes no arguments", kind)
			p.skipToRParen()
			return ast.FieldType{}, false
		}
	}

	if !p.expect(token.RPAREN) {
		return ast.FieldType{}, false
	}
	return ft, true
}

// intLiteral consumes the current NUMBER token and returns its integer
// value. Fractional digits are truncated.
func (p *Parser) intLiteral() int {
	n, _ := strconv.Atoi(p.tok.Literal)
	p.nextToken()
	return n
}

// skipToRParen consumes tokens through the matching right paren.
func (p *Parser) skipToRParen() {
	depth := 0
	for !p.check(token.EOF) {
		switch p.tok.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth <= 0 {
				p.nextToken()
				return
			}
		case token.RBRACE:
			// Unclosed paren list; stop at the section boundary.
			return
		}
		p.nextToken()
	}
}

// parseModifiers parses a bracketed modifier list. At most one
// modifier of each kind is retained per field.
func (p *Parser) parseModifiers() []*ast.Modifier {
	p.match(token.LBRACKET)

	var mods []*ast.Modifier
	seen := make(map[ast.ModifierKind]bool)

	for !p.check(token.RBRACKET) && !p.check(token.EOF) && !p.check(token.RBRACE) {
		m := p.parseModifier()
		if m == nil {
			p.skipToModifier()
			continue
		}
		if seen[m.Kind] {
			p.bag.Record(diag.DuplicateName, p.unit, m.Span,
				"duplicate modifier %q; later entry dropped", m.Kind)
		} else {
			seen[m.Kind] = true
			mods = append(mods, m)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACKET)
	return mods
}

// skipToModifier recovers inside a modifier list: skips to the next
// comma (consumed) or the closing bracket.
func (p *Parser) skipToModifier() {
	for !p.check(token.EOF) && !p.check(token.RBRACKET) && !p.check(token.RBRACE) {
		if p.match(token.COMMA) {
			return
		}
		p.nextToken()
	}
}

// parseModifier parses one modifier, with its value when the kind
// requires one.
func (p *Parser) parseModifier() *ast.Modifier {
	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "modifier name")
		return nil
	}
	nameTok := p.tok
	kind, known := ast.LookupModifierKind(nameTok.Literal)
	if !known {
		p.syntaxErrorf(nameTok.Span(), "unknown modifier %q", nameTok.Literal)
		return nil
	}
	p.nextToken()

	m := &ast.Modifier{Kind: kind}

	if p.check(token.COLON) {
		if !kind.HasValue() {
			p.syntaxErrorf(p.tok.Span(), "modifier %q takes no value", nameTok.Literal)
			return nil
		}
		p.nextToken()
		if !p.parseModifierValue(m) {
			return nil
		}
	} else if kind.HasValue() {
		p.syntaxErrorf(nameTok.Span(), "modifier %q requires a value", nameTok.Literal)
		return nil
	}

	m.Span = p.spanFrom(nameTok.Pos)
	return m
}

// parseModifierValue parses the `: value` part of a modifier.
func (p *Parser) parseModifierValue(m *ast.Modifier) bool {
	switch m.Kind {
	case ast.ModDefault:
		return p.parseDefaultValue(m)

	case ast.ModForeignKey:
		// Model.field
		if !p.check(token.IDENT) {
			p.syntaxErrorf(p.tok.Span(), "foreign_key requires a Model.field target")
			return false
		}
		m.Target = p.tok.Literal
		p.nextToken()
		if !p.expect(token.DOT) {
			return false
		}
		if !p.check(token.IDENT) {
			p.syntaxErrorf(p.tok.Span(), "foreign_key requires a Model.field target")
			return false
		}
		m.TargetField = p.tok.Literal
		p.nextToken()
		return true

	case ast.ModOnDelete:
		if !p.check(token.IDENT) {
			p.syntaxErrorf(p.tok.Span(), "on_delete requires an action")
			return false
		}
		action, ok := ast.LookupAction(p.tok.Literal)
		if !ok {
			p.syntaxErrorf(p.tok.Span(), "unknown on_delete action %q", p.tok.Literal)
			p.nextToken()
			return false
		}
		m.Action = action
		p.nextToken()
		return true

	case ast.ModOnUpdate:
		// Function call such as now().
		if !p.check(token.IDENT) {
			p.syntaxErrorf(p.tok.Span(), "on_update requires a function call")
			return false
		}
		name := p.tok.Literal
		p.nextToken()
		if !p.expect(token.LPAREN) || !p.expect(token.RPAREN) {
			return false
		}
		m.Call = name + "()"
		return true
	}
	return false
}

// parseDefaultValue parses a default value: a literal, or an
// Enum.Member reference.
func (p *Parser) parseDefaultValue(m *ast.Modifier) bool {
	startTok := p.tok

	switch p.tok.Type {
	case token.STRING:
		m.Default = &ast.Literal{Kind: ast.LiteralString, Value: p.tok.Literal, Span: p.tok.Span()}
		p.nextToken()
		return true
	case token.NUMBER:
		m.Default = &ast.Literal{Kind: ast.LiteralNumber, Value: p.tok.Literal, Span: p.tok.Span()}
		p.nextToken()
		return true
	case token.TRUE, token.FALSE:
		m.Default = &ast.Literal{Kind: ast.LiteralBool, Value: p.tok.Literal, Span: p.tok.Span()}
		p.nextToken()
		return true
	case token.NULL:
		m.Default = &ast.Literal{Kind: ast.LiteralNull, Value: "null", Span: p.tok.Span()}
		p.nextToken()
		return true
	case token.IDENT:
		// Enum.Member reference.
		enum := p.tok.Literal
		p.nextToken()
		if !p.expect(token.DOT) {
			return false
		}
		if !p.check(token.IDENT) {
			p.syntaxErrorf(p.tok.Span(), "expected enum member after %q.", enum)
			return false
		}
		m.DefaultEnum = &ast.EnumValueRef{Enum: enum, Member: p.tok.Literal}
		p.nextToken()
		m.DefaultEnum.Span = p.spanFrom(startTok.Pos)
		return true
	default:
		p.syntaxErrorf(p.tok.Span(), "expected default value, found %s", p.tok.Type)
		return false
	}
}
