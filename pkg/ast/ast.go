// Package ast defines the abstract syntax tree for schema declarations.
//
// Nodes are immutable once parsed. Resolution does not mutate the tree;
// it produces a separate schema graph so the parsed tree stays available
// for error reporting.
package ast

import "github.com/dspeclang/dspec/pkg/token"

// DeclKind identifies the kind of a top-level declaration.
type DeclKind int

// Declaration kinds.
const (
	DeclModel DeclKind = iota // entity declaration
	DeclPivot                 // join-table declaration
	DeclEnum                  // enumeration declaration
)

// String returns the declaration keyword for the kind.
func (k DeclKind) String() string {
	switch k {
	case DeclModel:
		return "Model"
	case DeclPivot:
		return "Pivot"
	case DeclEnum:
		return "Enum"
	default:
		return "unknown"
	}
}

// Declaration is a top-level Model, Pivot, or Enum declaration.
type Declaration struct {
	Kind        DeclKind
	Name        string
	Description string // explicit description: property, or attached doc comment
	TableName   string // storage name override from table: property
	Unit        string // source unit the declaration was parsed from
	Span        token.Span

	// Model/Pivot sections. Each is optional and order-insensitive.
	Fields      []*Field
	Indexes     []*Index
	Relations   []*Relation
	Computed    []*ComputedAttribute
	Constraints []*Constraint

	// Enum only.
	Backing FieldType
	Members []*Member
}

// Field returns the named field, or nil.
func (d *Declaration) Field(name string) *Field {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ComputedAttr returns the named computed attribute, or nil.
func (d *Declaration) ComputedAttr(name string) *ComputedAttribute {
	for _, c := range d.Computed {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Member returns the named enum member, or nil.
func (d *Declaration) Member(name string) *Member {
	for _, m := range d.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Field is a stored column of a Model or Pivot declaration.
type Field struct {
	Name      string
	Type      FieldType
	Modifiers []*Modifier
	Span      token.Span
}

// Modifier returns the field's modifier of the given kind, or nil.
func (f *Field) Modifier(kind ModifierKind) *Modifier {
	for _, m := range f.Modifiers {
		if m.Kind == kind {
			return m
		}
	}
	return nil
}

// Has returns true if the field carries a modifier of the given kind.
func (f *Field) Has(kind ModifierKind) bool {
	return f.Modifier(kind) != nil
}

// Index is a named single- or multi-column index.
type Index struct {
	Name    string
	Unique  bool
	Columns []string // ordered, at least one
	Span    token.Span
}

// ComputedAttribute is a derived, non-stored value defined by an
// expression over sibling fields and computed attributes.
type ComputedAttribute struct {
	Name string
	Type FieldType
	Expr Expr
	Span token.Span
}

// Constraint is a named boolean invariant over sibling fields and
// computed attributes.
type Constraint struct {
	Name string
	Expr Expr
	Span token.Span
}

// Member is a single enumeration member. Value is nil when the member
// relies on the inferred value (the member name, String backing only).
type Member struct {
	Name  string
	Value *Literal
	Span  token.Span
}
