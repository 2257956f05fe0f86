// Package schema provides symbol collection and reference resolution
// for parsed declarations, producing the SchemaGraph consumed by
// downstream generators.
//
// Resolution is a two-pass design: Collect builds the complete name
// table first, then Resolve binds every symbolic reference against it.
// This is what makes forward and self references work — a model may
// declare a foreign key to a model defined later in the source, or to
// itself. References in the resolved graph are stable handles into the
// declaration arena, never structural pointers, so the graph has no
// ownership cycles and serializes directly.
package schema

import "github.com/dspeclang/dspec/pkg/ast"

// Handle is a stable index into the schema graph's declaration arena.
type Handle int

// InvalidHandle marks an unresolved or absent reference.
const InvalidHandle Handle = -1

// Status is the resolution state of a declaration.
type Status string

// Resolution states. A declaration moves Unresolved → Resolving →
// Resolved or Failed. Resolved declarations may still carry per-member
// diagnostics; only the failing members are excluded.
const (
	StatusUnresolved Status = "unresolved"
	StatusResolving  Status = "resolving"
	StatusResolved   Status = "resolved"
	StatusFailed     Status = "failed"
)

// SchemaGraph is the resolver output: the declaration arena plus the
// name index. It is immutable once built and safe for concurrent
// reads.
type SchemaGraph struct {
	Decls []*Decl           `json:"declarations" yaml:"declarations"`
	Index map[string]Handle `json:"index" yaml:"index"`
}

// Lookup returns the resolved declaration for a name, or nil.
func (g *SchemaGraph) Lookup(name string) *Decl {
	if h, ok := g.Index[name]; ok && int(h) < len(g.Decls) {
		return g.Decls[h]
	}
	return nil
}

// Decl is a fully resolved declaration.
type Decl struct {
	Handle      Handle `json:"handle" yaml:"handle"`
	Kind        string `json:"kind" yaml:"kind"` // model, pivot, enum
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	TableName   string `json:"table,omitempty" yaml:"table,omitempty"`
	Unit        string `json:"unit" yaml:"unit"`
	Status      Status `json:"status" yaml:"status"`

	Fields      []Field      `json:"fields,omitempty" yaml:"fields,omitempty"`
	Indexes     []Index      `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	Relations   []Relation   `json:"relations,omitempty" yaml:"relations,omitempty"`
	Computed    []Computed   `json:"computed,omitempty" yaml:"computed,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`

	// Enum only.
	Backing string   `json:"backing,omitempty" yaml:"backing,omitempty"`
	Members []Member `json:"members,omitempty" yaml:"members,omitempty"`

	// ComputedOrder is the dependency order of the resolved computed
	// attributes (dependencies before dependents).
	ComputedOrder []string `json:"computed_order,omitempty" yaml:"computed_order,omitempty"`
}

// TypeRef is a resolved field type. Enum references carry the handle
// of the resolved enumeration, or InvalidHandle when resolution
// failed.
type TypeRef struct {
	Kind      string `json:"kind" yaml:"kind"`
	MaxLength int    `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Length    int    `json:"length,omitempty" yaml:"length,omitempty"`
	Precision int    `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale     int    `json:"scale,omitempty" yaml:"scale,omitempty"`
	EnumName  string `json:"enum_name,omitempty" yaml:"enum_name,omitempty"`
	Enum      Handle `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// typeRef converts an AST field type. The enum handle starts invalid;
// the resolver binds it.
func typeRef(t ast.FieldType) TypeRef {
	return TypeRef{
		Kind:      t.Kind.String(),
		MaxLength: t.MaxLength,
		Length:    t.Length,
		Precision: t.Precision,
		Scale:     t.Scale,
		EnumName:  t.Enum,
		Enum:      InvalidHandle,
	}
}

// Field is a resolved field with its modifiers flattened.
type Field struct {
	Name       string      `json:"name" yaml:"name"`
	Type       TypeRef     `json:"type" yaml:"type"`
	PrimaryKey bool        `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Unique     bool        `json:"unique,omitempty" yaml:"unique,omitempty"`
	Indexed    bool        `json:"indexed,omitempty" yaml:"indexed,omitempty"`
	Nullable   bool        `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Encrypted  bool        `json:"encrypted,omitempty" yaml:"encrypted,omitempty"`
	Unsigned   bool        `json:"unsigned,omitempty" yaml:"unsigned,omitempty"`
	Default    *Default    `json:"default,omitempty" yaml:"default,omitempty"`
	ForeignKey *ForeignKey `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
	OnDelete   string      `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate   string      `json:"on_update,omitempty" yaml:"on_update,omitempty"`
}

// Default is a resolved default value: a literal or an enum member.
type Default struct {
	Kind   string `json:"kind" yaml:"kind"` // string, number, bool, null, enum_member
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
	Enum   Handle `json:"enum,omitempty" yaml:"enum,omitempty"`
	Member string `json:"member,omitempty" yaml:"member,omitempty"`
}

// ForeignKey is a resolved foreign-key link.
type ForeignKey struct {
	Target     Handle `json:"target" yaml:"target"`
	TargetName string `json:"target_name" yaml:"target_name"`
	Field      string `json:"field" yaml:"field"`
}

// Index is a resolved index.
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Columns []string `json:"columns" yaml:"columns"`
}

// Relation is a resolved relation. Target and Pivot are InvalidHandle
// where the kind has no such argument (morphTo has neither).
type Relation struct {
	Name       string `json:"name" yaml:"name"`
	Kind       string `json:"kind" yaml:"kind"`
	Target     Handle `json:"target,omitempty" yaml:"target,omitempty"`
	TargetName string `json:"target_name,omitempty" yaml:"target_name,omitempty"`
	Pivot      Handle `json:"pivot,omitempty" yaml:"pivot,omitempty"`
	PivotName  string `json:"pivot_name,omitempty" yaml:"pivot_name,omitempty"`
	MorphName  string `json:"morph_name,omitempty" yaml:"morph_name,omitempty"`
}

// Computed is a resolved computed attribute with its dependencies on
// sibling fields and computed attributes.
type Computed struct {
	Name      string   `json:"name" yaml:"name"`
	Type      TypeRef  `json:"type" yaml:"type"`
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Constraint is a resolved check constraint with the sibling names its
// expression references.
type Constraint struct {
	Name       string   `json:"name" yaml:"name"`
	References []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// Member is a resolved enum member. Value is the explicit literal, or
// the member name for string-backed enums without one.
type Member struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}
