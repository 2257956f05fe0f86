package ast

import (
	"strings"

	"github.com/dspeclang/dspec/pkg/token"
)

// Expr represents a node in the expression language used by computed
// attributes and check constraints.
type Expr interface {
	exprNode()
	GetSpan() token.Span
}

// Ident is a bare identifier. Identifiers are left unresolved by the
// parser; the resolver binds them to sibling fields or computed
// attributes.
type Ident struct {
	Name string
	Span token.Span
}

func (*Ident) exprNode() {}
func (e *Ident) GetSpan() token.Span { return e.Span }

// LiteralKind identifies the type of a literal value.
type LiteralKind int

// Literal kinds.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal is a literal value. Value holds the source text without
// quotes for strings.
type Literal struct {
	Kind  LiteralKind
	Value string
	Span  token.Span
}

func (*Literal) exprNode() {}
func (e *Literal) GetSpan() token.Span { return e.Span }

// IsInt returns true for number literals with no fractional or
// exponent part.
func (e *Literal) IsInt() bool {
	return e.Kind == LiteralNumber && !strings.ContainsAny(e.Value, ".eE")
}

// UnaryNot is a `not expr` expression.
type UnaryNot struct {
	Expr Expr
	Span token.Span
}

func (*UnaryNot) exprNode() {}
func (e *UnaryNot) GetSpan() token.Span { return e.Span }

// BinaryExpr is a comparison (=, !=, <, >, <=, >=) or logical
// (and, or) expression, distinguished by Op.
type BinaryExpr struct {
	Left  Expr
	Op    token.Type
	Right Expr
	Span  token.Span
}

func (*BinaryExpr) exprNode() {}
func (e *BinaryExpr) GetSpan() token.Span { return e.Span }

// IsLogical returns true for and/or expressions.
func (e *BinaryExpr) IsLogical() bool {
	return e.Op == token.AND || e.Op == token.OR
}

// IsNullExpr is an `expr is [not] null` expression.
type IsNullExpr struct {
	Expr    Expr
	Negated bool
	Span    token.Span
}

func (*IsNullExpr) exprNode() {}
func (e *IsNullExpr) GetSpan() token.Span { return e.Span }

// ParenExpr is an explicitly parenthesized expression.
type ParenExpr struct {
	Expr Expr
	Span token.Span
}

func (*ParenExpr) exprNode() {}
func (e *ParenExpr) GetSpan() token.Span { return e.Span }

// BadExpr is a placeholder for an expression that failed to parse.
// It lets the surrounding construct parse to completion so later
// passes still run; the parse failure is reported as a diagnostic.
type BadExpr struct {
	Span token.Span
}

func (*BadExpr) exprNode() {}
func (e *BadExpr) GetSpan() token.Span { return e.Span }

// Idents returns every identifier in the expression, in source order.
func Idents(e Expr) []*Ident {
	var out []*Ident
	collectIdents(e, &out)
	return out
}

func collectIdents(e Expr, out *[]*Ident) {
	switch n := e.(type) {
	case *Ident:
		*out = append(*out, n)
	case *UnaryNot:
		collectIdents(n.Expr, out)
	case *BinaryExpr:
		collectIdents(n.Left, out)
		collectIdents(n.Right, out)
	case *IsNullExpr:
		collectIdents(n.Expr, out)
	case *ParenExpr:
		collectIdents(n.Expr, out)
	case *Literal, *BadExpr, nil:
		// no identifiers
	}
}

// HasBadExpr returns true if the expression tree contains a parse
// error placeholder.
func HasBadExpr(e Expr) bool {
	switch n := e.(type) {
	case *BadExpr, nil:
		return true
	case *UnaryNot:
		return HasBadExpr(n.Expr)
	case *BinaryExpr:
		return HasBadExpr(n.Left) || HasBadExpr(n.Right)
	case *IsNullExpr:
		return HasBadExpr(n.Expr)
	case *ParenExpr:
		return HasBadExpr(n.Expr)
	}
	return false
}
