// Package parser provides lexing and parsing for the schema language.
//
// # Usage
//
//	bag := diag.NewBag(diag.DefaultPolicy())
//	decls := parser.Parse("schema.dspec", source, bag)
//
// The parser never fails hard on malformed input. A syntax error inside
// one declaration skips tokens to the next top-level keyword (Model,
// Pivot, Enum) or the matching closing brace, records a diagnostic, and
// parsing continues with the following declaration.
//
// # Grammar Overview
//
//	unit     → decl*
//	decl     → ("Model" | "Pivot") IDENT "{" body "}"
//	         | "Enum" IDENT ":" backing "(" ")" "{" members "}"
//	body     → (property | section)*
//	section  → sectionKeyword "{" items "}"
//
// See each file for the detailed rules of that section.
package parser

import (
	"strings"

	"github.com/dspeclang/dspec/pkg/ast"
	"github.com/dspeclang/dspec/pkg/diag"
	"github.com/dspeclang/dspec/pkg/token"
)

// Parser parses schema source into declarations, recording diagnostics
// into a shared bag.
type Parser struct {
	lexer *Lexer
	unit  string
	bag   *diag.Bag

	tok  token.Token // current token
	peek token.Token // lookahead token
	prev token.Token // last consumed token, for span ends

	docIdx  int // next unconsumed lexer comment
	lexErrs int // lexer errors already drained into the bag
}

// New creates a parser for one source unit.
func New(unit, input string, bag *diag.Bag) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		unit:  unit,
		bag:   bag,
	}
	// Read two tokens to initialize current and peek.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses one source unit and returns its declarations. All
// findings go into the bag; a nil or empty result with diagnostics is
// a valid outcome.
func Parse(unit, input string, bag *diag.Bag) []*ast.Declaration {
	return New(unit, input, bag).ParseUnit()
}

// ParseUnit consumes the whole token stream and returns the parsed
// declarations.
func (p *Parser) ParseUnit() []*ast.Declaration {
	var decls []*ast.Declaration
	for !p.check(token.EOF) {
		switch p.tok.Type {
		case token.MODEL:
			if d := p.parseModelDecl(ast.DeclModel); d != nil {
				decls = append(decls, d)
			}
		case token.PIVOT:
			if d := p.parseModelDecl(ast.DeclPivot); d != nil {
				decls = append(decls, d)
			}
		case token.ENUM:
			if d := p.parseEnumDecl(); d != nil {
				decls = append(decls, d)
			}
		default:
			p.syntaxErrorf(p.tok.Span(), "expected Model, Pivot, or Enum, found %s", p.tok.Type)
			p.skipToDecl()
		}
	}
	p.drainLexErrors()
	return decls
}

// ---------- Token Helpers ----------

// nextToken advances to the next token and drains any lexer errors
// produced while scanning it.
func (p *Parser) nextToken() {
	p.prev = p.tok
	p.tok = p.peek
	p.peek = p.lexer.NextToken()
	p.drainLexErrors()
}

// drainLexErrors copies new lexer errors into the diagnostic bag.
func (p *Parser) drainLexErrors() {
	for ; p.lexErrs < len(p.lexer.Errors); p.lexErrs++ {
		e := p.lexer.Errors[p.lexErrs]
		p.bag.Record(diag.LexError, p.unit, token.Span{Start: e.Pos, End: e.Pos}, "%s", e.Message)
	}
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.Type) bool {
	return p.tok.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.Type) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise records a
// SyntaxError diagnostic.
func (p *Parser) expect(t token.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, t)
	return false
}

// syntaxErrorf records a SyntaxError diagnostic.
func (p *Parser) syntaxErrorf(span token.Span, format string, args ...any) {
	p.bag.Record(diag.SyntaxError, p.unit, span, format, args...)
}

// spanFrom returns the span from a start position to the end of the
// last consumed token.
func (p *Parser) spanFrom(start token.Position) token.Span {
	return token.Span{Start: start, End: p.prev.End}
}

// adjacent returns true if the current token starts exactly where the
// given token ends (no intervening whitespace).
func (p *Parser) adjacent(prev token.Token) bool {
	return prev.End.Offset == p.tok.Pos.Offset
}

// ---------- Recovery ----------

// skipToDecl skips tokens until the next top-level declaration keyword
// or end of input.
func (p *Parser) skipToDecl() {
	for !p.check(token.EOF) && !token.IsDeclKeyword(p.tok.Type) {
		p.nextToken()
	}
}

// skipDeclBody skips the remainder of a declaration body: to the next
// top-level keyword or past the matching closing brace.
func (p *Parser) skipDeclBody() {
	depth := 1
	for !p.check(token.EOF) {
		if token.IsDeclKeyword(p.tok.Type) {
			return
		}
		switch p.tok.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

// skipInBody recovers inside a declaration body: skips to the next
// section keyword, the declaration's closing brace, or the next
// declaration.
func (p *Parser) skipInBody() {
	for !p.check(token.EOF) && !p.check(token.RBRACE) &&
		!token.IsSectionKeyword(p.tok.Type) && !token.IsDeclKeyword(p.tok.Type) {
		if p.check(token.LBRACE) {
			p.skipBalancedBraces()
			continue
		}
		p.nextToken()
	}
}

// skipBalancedBraces consumes a brace-balanced block starting at the
// current LBRACE.
func (p *Parser) skipBalancedBraces() {
	depth := 0
	for !p.check(token.EOF) {
		switch p.tok.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

// skipToItem recovers inside a section: skips to the next plausible
// item start (IDENT followed by ':'), the section's closing brace, or
// the next declaration.
func (p *Parser) skipToItem() {
	for !p.check(token.EOF) && !p.check(token.RBRACE) && !token.IsDeclKeyword(p.tok.Type) {
		if p.check(token.IDENT) && p.checkPeek(token.COLON) {
			return
		}
		p.nextToken()
	}
}

// ---------- Declarations ----------

// parseModelDecl parses a Model or Pivot declaration.
func (p *Parser) parseModelDecl(kind ast.DeclKind) *ast.Declaration {
	declTok := p.tok
	doc := p.takeDoc(declTok.Pos)
	p.nextToken()

	if !p.check(token.IDENT) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, "declaration name")
		p.skipToDecl()
		return nil
	}
	name := p.tok.Literal
	p.nextToken()

	if !p.expect(token.LBRACE) {
		p.skipToDecl()
		return nil
	}

	d := &ast.Declaration{
		Kind: kind,
		Name: name,
		Unit: p.unit,
	}
	seen := make(map[token.Type]bool)

	for !p.check(token.RBRACE) && !p.check(token.EOF) && !token.IsDeclKeyword(p.tok.Type) {
		switch {
		case token.IsSectionKeyword(p.tok.Type):
			p.parseSection(d, seen)
		case p.check(token.IDENT) && p.tok.Literal == "description" && p.checkPeek(token.COLON):
			d.Description = p.parseStringProperty()
		case p.check(token.IDENT) && p.tok.Literal == "table" && p.checkPeek(token.COLON):
			d.TableName = p.parseStringProperty()
		default:
			p.syntaxErrorf(p.tok.Span(), "unexpected %s in %s body", p.tok.Type, kind)
			p.skipInBody()
		}
	}
	p.match(token.RBRACE)

	d.Span = p.spanFrom(declTok.Pos)
	if d.Description == "" {
		d.Description = doc
	}
	return d
}

// parseStringProperty parses `name: "value"` and returns the value.
func (p *Parser) parseStringProperty() string {
	p.nextToken() // property name
	p.nextToken() // colon
	if !p.check(token.STRING) {
		p.syntaxErrorf(p.tok.Span(), ErrUnexpectedToken, p.tok.Type, token.STRING)
		return ""
	}
	v := p.tok.Literal
	p.nextToken()
	return v
}

// parseSection parses one section block and attaches it to the
// declaration. A repeated section of the same kind is fully parsed but
// discarded; only the first is retained.
func (p *Parser) parseSection(d *ast.Declaration, seen map[token.Type]bool) {
	secTok := p.tok
	p.nextToken()
	if !p.expect(token.LBRACE) {
		p.skipInBody()
		return
	}

	duplicate := seen[secTok.Type]
	seen[secTok.Type] = true

	switch secTok.Type {
	case token.FIELDS:
		fields := p.parseFieldItems()
		if !duplicate {
			d.Fields = fields
		}
	case token.INDEXES:
		indexes := p.parseIndexItems()
		if !duplicate {
			d.Indexes = indexes
		}
	case token.RELATIONS:
		relations := p.parseRelationItems()
		if !duplicate {
			d.Relations = relations
		}
	case token.COMPUTED:
		computed := p.parseComputedItems()
		if !duplicate {
			d.Computed = computed
		}
	case token.CONSTRAINTS:
		constraints := p.parseConstraintItems()
		if !duplicate {
			d.Constraints = constraints
		}
	}

	if duplicate {
		p.bag.Record(diag.DuplicateSection, p.unit, secTok.Span(),
			"duplicate %s section; only the first is used", secTok.Type)
	}
}

// ---------- Doc Comments ----------

// takeDoc consumes comments collected before the given position and
// returns the text of the last doc comment among them, if any.
func (p *Parser) takeDoc(before token.Position) string {
	var doc string
	for p.docIdx < len(p.lexer.Comments) {
		c := p.lexer.Comments[p.docIdx]
		if c.Span.End.Offset > before.Offset {
			break
		}
		if c.IsDoc() {
			doc = docText(c.Text)
		}
		p.docIdx++
	}
	return doc
}

// docText strips the /** */ delimiters and per-line asterisks from a
// doc comment.
func docText(text string) string {
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
