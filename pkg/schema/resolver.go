package schema

import (
	"strings"

	"github.com/dspeclang/dspec/internal/dag"
	"github.com/dspeclang/dspec/pkg/ast"
	"github.com/dspeclang/dspec/pkg/diag"
	"github.com/dspeclang/dspec/pkg/token"
)

// Resolver binds symbolic references against a frozen symbol table.
// It holds no mutable state of its own, so ResolveDecl may be called
// concurrently for distinct handles; diagnostics go through the bag's
// own lock.
type Resolver struct {
	symbols *SymbolTable
	bag     *diag.Bag
}

// NewResolver creates a resolver over a collected symbol table.
func NewResolver(symbols *SymbolTable, bag *diag.Bag) *Resolver {
	return &Resolver{symbols: symbols, bag: bag}
}

// Resolve resolves every declaration in arena order and assembles the
// schema graph. Resolution failures surface as diagnostics; the failing
// member is excluded from the graph and its siblings resolve normally.
func Resolve(symbols *SymbolTable, bag *diag.Bag) *SchemaGraph {
	r := NewResolver(symbols, bag)
	g := &SchemaGraph{
		Decls: make([]*Decl, symbols.Len()),
		Index: make(map[string]Handle, symbols.Len()),
	}
	for _, h := range symbols.Handles() {
		g.Decls[h] = r.ResolveDecl(h)
		g.Index[g.Decls[h].Name] = h
	}
	return g
}

// ResolveDecl resolves one declaration by handle.
func (r *Resolver) ResolveDecl(h Handle) *Decl {
	src := r.symbols.Decl(h)
	if src == nil {
		return nil
	}

	d := &Decl{
		Handle:      h,
		Kind:        strings.ToLower(src.Kind.String()),
		Name:        src.Name,
		Description: src.Description,
		TableName:   src.TableName,
		Unit:        src.Unit,
		Status:      StatusResolving,
	}

	if src.Kind == ast.DeclEnum {
		r.resolveEnum(src, d)
		return d
	}

	for _, f := range src.Fields {
		d.Fields = append(d.Fields, r.resolveField(src, f))
	}
	r.resolveIndexes(src, d)
	r.resolveRelations(src, d)
	r.resolveComputed(src, d)
	r.resolveConstraints(src, d)

	d.Status = StatusResolved
	return d
}

// ---------- Fields ----------

// resolveField flattens a field's modifiers and binds its enum type,
// default value, and foreign-key references. A reference that fails to
// bind is reported and omitted; the field itself stays in the graph.
func (r *Resolver) resolveField(src *ast.Declaration, f *ast.Field) Field {
	out := Field{
		Name:       f.Name,
		Type:       r.resolveType(src, f.Type, f.Span),
		PrimaryKey: f.Has(ast.ModPrimaryKey),
		Unique:     f.Has(ast.ModUnique),
		Indexed:    f.Has(ast.ModIndex),
		Nullable:   f.Has(ast.ModNullable),
		Encrypted:  f.Has(ast.ModEncrypted),
		Unsigned:   f.Has(ast.ModUnsigned),
	}

	if m := f.Modifier(ast.ModDefault); m != nil {
		out.Default = r.resolveDefault(src, f, m)
	}
	if m := f.Modifier(ast.ModForeignKey); m != nil {
		out.ForeignKey = r.resolveForeignKey(src, f, m)
	}
	if m := f.Modifier(ast.ModOnDelete); m != nil {
		out.OnDelete = string(m.Action)
	}
	if m := f.Modifier(ast.ModOnUpdate); m != nil {
		out.OnUpdate = m.Call
	}
	return out
}

// resolveType binds an enum(Name) type reference. Other kinds convert
// without lookups.
func (r *Resolver) resolveType(src *ast.Declaration, t ast.FieldType, span token.Span) TypeRef {
	ref := typeRef(t)
	if !t.IsEnum() {
		return ref
	}
	h, ok := r.symbols.Lookup(t.Enum)
	if !ok {
		r.bag.Record(diag.UndefinedEnum, src.Unit, span,
			"unknown enum %q", t.Enum)
		return ref
	}
	if r.symbols.Decl(h).Kind != ast.DeclEnum {
		r.bag.Record(diag.TypeMismatch, src.Unit, span,
			"%q is a %s, not an Enum", t.Enum, r.symbols.Decl(h).Kind)
		return ref
	}
	ref.Enum = h
	return ref
}

// resolveDefault binds a default value. Literal defaults pass through;
// Enum.Member defaults resolve against the field's declared enum.
func (r *Resolver) resolveDefault(src *ast.Declaration, f *ast.Field, m *ast.Modifier) *Default {
	if m.Default != nil {
		return &Default{
			Kind:  literalKind(m.Default.Kind),
			Value: m.Default.Value,
			Enum:  InvalidHandle,
		}
	}
	ref := m.DefaultEnum
	if ref == nil {
		return nil
	}

	if !f.Type.IsEnum() {
		r.bag.Record(diag.TypeMismatch, src.Unit, ref.Span,
			"default %s.%s on non-enum field %q", ref.Enum, ref.Member, f.Name)
		return nil
	}
	if ref.Enum != f.Type.Enum {
		r.bag.Record(diag.TypeMismatch, src.Unit, ref.Span,
			"default references enum %q but field %q is enum(%s)", ref.Enum, f.Name, f.Type.Enum)
		return nil
	}
	h, ok := r.symbols.Lookup(ref.Enum)
	if !ok || r.symbols.Decl(h).Kind != ast.DeclEnum {
		// The type reference diagnostic already covers a missing or
		// non-enum target.
		return nil
	}
	if r.symbols.Decl(h).Member(ref.Member) == nil {
		r.bag.Record(diag.UndefinedEnumMember, src.Unit, ref.Span,
			"enum %q has no member %q", ref.Enum, ref.Member)
		return nil
	}
	return &Default{
		Kind:   "enum_member",
		Enum:   h,
		Member: ref.Member,
	}
}

// resolveForeignKey binds a foreign_key: Target.field modifier. The
// target field must exist and be addressable, that is carry a
// primary_key or unique modifier; an addressability failure is a
// warning by default and the link is kept.
func (r *Resolver) resolveForeignKey(src *ast.Declaration, f *ast.Field, m *ast.Modifier) *ForeignKey {
	h, ok := r.symbols.Lookup(m.Target)
	if !ok {
		r.bag.Record(diag.UndefinedReference, src.Unit, m.Span,
			"foreign key on %q references unknown declaration %q", f.Name, m.Target)
		return nil
	}
	target := r.symbols.Decl(h)
	tf := target.Field(m.TargetField)
	if tf == nil {
		r.bag.Record(diag.UndefinedField, src.Unit, m.Span,
			"%s %q has no field %q", target.Kind, target.Name, m.TargetField)
		return nil
	}
	if !tf.Has(ast.ModPrimaryKey) && !tf.Has(ast.ModUnique) {
		r.bag.Record(diag.InvalidForeignKeyTarget, src.Unit, m.Span,
			"foreign key target %s.%s is neither primary_key nor unique", m.Target, m.TargetField)
	}
	return &ForeignKey{
		Target:     h,
		TargetName: m.Target,
		Field:      m.TargetField,
	}
}

// ---------- Indexes ----------

// resolveIndexes checks every index column against the declaration's
// field and computed-attribute names. An index with an unknown column
// is excluded.
func (r *Resolver) resolveIndexes(src *ast.Declaration, d *Decl) {
	for _, idx := range src.Indexes {
		ok := true
		for _, col := range idx.Columns {
			if src.Field(col) == nil && src.ComputedAttr(col) == nil {
				r.bag.Record(diag.UndefinedReference, src.Unit, idx.Span,
					"index %q references unknown column %q", idx.Name, col)
				ok = false
			}
		}
		if ok {
			d.Indexes = append(d.Indexes, Index{
				Name:    idx.Name,
				Unique:  idx.Unique,
				Columns: idx.Columns,
			})
		}
	}
}

// ---------- Relations ----------

// resolveRelations binds relation targets and pivots. An unknown name
// excludes the relation; a target of the wrong declaration kind is a
// warning by default and the relation is kept.
func (r *Resolver) resolveRelations(src *ast.Declaration, d *Decl) {
	for _, rel := range src.Relations {
		out := Relation{
			Name:      rel.Name,
			Kind:      rel.Kind.String(),
			Target:    InvalidHandle,
			Pivot:     InvalidHandle,
			MorphName: rel.MorphName(),
		}

		ok := true
		if name := rel.Target(); name != "" {
			out.TargetName = name
			out.Target, ok = r.resolveRelationRef(src, rel, name, false)
		}
		if name := rel.Pivot(); name != "" && ok {
			out.PivotName = name
			pivot := rel.Kind == ast.RelBelongsToMany ||
				rel.Kind == ast.RelMorphToMany || rel.Kind == ast.RelMorphedByMany
			out.Pivot, ok = r.resolveRelationRef(src, rel, name, pivot)
		}
		if ok {
			d.Relations = append(d.Relations, out)
		}
	}
}

// resolveRelationRef binds one relation argument. wantPivot marks
// arguments that must name a Pivot declaration; other arguments accept
// Model or Pivot. An Enum target is never table-backed.
func (r *Resolver) resolveRelationRef(src *ast.Declaration, rel *ast.Relation, name string, wantPivot bool) (Handle, bool) {
	h, ok := r.symbols.Lookup(name)
	if !ok {
		r.bag.Record(diag.UndefinedReference, src.Unit, rel.Span,
			"relation %q references unknown declaration %q", rel.Name, name)
		return InvalidHandle, false
	}
	target := r.symbols.Decl(h)
	switch {
	case target.Kind == ast.DeclEnum:
		r.bag.Record(diag.InvalidRelationTarget, src.Unit, rel.Span,
			"relation %q targets %q, which is an Enum", rel.Name, name)
	case wantPivot && target.Kind != ast.DeclPivot:
		r.bag.Record(diag.InvalidRelationTarget, src.Unit, rel.Span,
			"%s pivot %q is a %s, not a Pivot", rel.Kind, name, target.Kind)
	}
	return h, true
}

// ---------- Computed Attributes ----------

// resolveComputed resolves computed-attribute expressions against
// sibling fields and computed attributes, then runs cycle detection on
// the attribute dependency graph. Every cycle is reported once, naming
// its full path, and every attribute on a cycle or downstream of one is
// excluded; the rest resolve normally.
func (r *Resolver) resolveComputed(src *ast.Declaration, d *Decl) {
	g := dag.NewGraph()
	for _, c := range src.Computed {
		g.AddNode(c.Name)
	}

	excluded := make(map[string]bool)
	depsOf := make(map[string][]string)

	for _, c := range src.Computed {
		if ast.HasBadExpr(c.Expr) {
			// Already reported at parse time.
			excluded[c.Name] = true
			continue
		}
		for _, id := range ast.Idents(c.Expr) {
			switch {
			case src.ComputedAttr(id.Name) != nil:
				g.AddEdge(c.Name, id.Name)
				depsOf[c.Name] = appendUnique(depsOf[c.Name], id.Name)
			case src.Field(id.Name) != nil:
				depsOf[c.Name] = appendUnique(depsOf[c.Name], id.Name)
			default:
				r.bag.Record(diag.UndefinedReference, src.Unit, id.Span,
					"computed attribute %q references unknown name %q", c.Name, id.Name)
				excluded[c.Name] = true
			}
		}
	}

	for _, cycle := range g.FindCycles() {
		r.bag.Record(diag.CyclicComputedAttribute, src.Unit, cycleSpan(src, cycle),
			"computed attribute cycle: %s", cyclePath(cycle))
	}
	for name := range g.CycleMembers() {
		excluded[name] = true
	}

	order := dag.NewGraph()
	for _, c := range src.Computed {
		if excluded[c.Name] {
			continue
		}
		d.Computed = append(d.Computed, Computed{
			Name:      c.Name,
			Type:      r.resolveType(src, c.Type, c.Span),
			DependsOn: depsOf[c.Name],
		})
		order.AddNode(c.Name)
	}
	for _, c := range d.Computed {
		for _, dep := range c.DependsOn {
			if order.HasNode(dep) {
				order.AddEdge(c.Name, dep)
			}
		}
	}
	// The kept subgraph is acyclic by construction.
	d.ComputedOrder, _ = order.TopologicalSort()
}

// cyclePath renders a cycle as a -> b -> a.
func cyclePath(cycle []string) string {
	return strings.Join(append(append([]string{}, cycle...), cycle[0]), " -> ")
}

// cycleSpan locates a cycle diagnostic at the first attribute on the
// cycle.
func cycleSpan(src *ast.Declaration, cycle []string) token.Span {
	if c := src.ComputedAttr(cycle[0]); c != nil {
		return c.Span
	}
	return src.Span
}

// ---------- Constraints ----------

// resolveConstraints checks constraint-expression identifiers against
// sibling fields and computed attributes. A constraint with an unknown
// identifier or an unparsed expression is excluded.
func (r *Resolver) resolveConstraints(src *ast.Declaration, d *Decl) {
	for _, c := range src.Constraints {
		if ast.HasBadExpr(c.Expr) {
			continue
		}
		ok := true
		var refs []string
		for _, id := range ast.Idents(c.Expr) {
			if src.Field(id.Name) == nil && src.ComputedAttr(id.Name) == nil {
				r.bag.Record(diag.UndefinedReference, src.Unit, id.Span,
					"constraint %q references unknown name %q", c.Name, id.Name)
				ok = false
				continue
			}
			refs = appendUnique(refs, id.Name)
		}
		if ok {
			d.Constraints = append(d.Constraints, Constraint{
				Name:       c.Name,
				References: refs,
			})
		}
	}
}

// ---------- Enums ----------

// resolveEnum computes the effective member values. Members flagged
// invalid at parse time are recomputed here and silently excluded; the
// parser already reported them. An enum whose backing type is not
// string or integer fails resolution entirely.
func (r *Resolver) resolveEnum(src *ast.Declaration, d *Decl) {
	d.Backing = src.Backing.Kind.String()

	switch src.Backing.Kind {
	case ast.TypeString:
		for _, m := range src.Members {
			switch {
			case m.Value == nil:
				d.Members = append(d.Members, Member{Name: m.Name, Value: m.Name})
			case m.Value.Kind == ast.LiteralString:
				d.Members = append(d.Members, Member{Name: m.Name, Value: m.Value.Value})
			}
		}
	case ast.TypeInteger:
		for _, m := range src.Members {
			if m.Value != nil && m.Value.Kind == ast.LiteralNumber && m.Value.IsInt() {
				d.Members = append(d.Members, Member{Name: m.Name, Value: m.Value.Value})
			}
		}
	default:
		d.Status = StatusFailed
		return
	}
	d.Status = StatusResolved
}

// ---------- Helpers ----------

// literalKind maps AST literal kinds to graph default kinds.
func literalKind(k ast.LiteralKind) string {
	switch k {
	case ast.LiteralString:
		return "string"
	case ast.LiteralNumber:
		return "number"
	case ast.LiteralBool:
		return "bool"
	case ast.LiteralNull:
		return "null"
	default:
		return "unknown"
	}
}

// appendUnique appends s if not already present, preserving order.
func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
