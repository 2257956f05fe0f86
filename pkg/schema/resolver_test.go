package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspeclang/dspec/pkg/diag"
	"github.com/dspeclang/dspec/pkg/parser"
	"github.com/dspeclang/dspec/pkg/schema"
)

// resolve parses, collects, and resolves one unit.
func resolve(t *testing.T, input string) (*schema.SchemaGraph, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(diag.DefaultPolicy())
	decls := parser.Parse("test.dspec", input, bag)
	symbols := schema.Collect(decls, bag)
	return schema.Resolve(symbols, bag), bag
}

// ---------- Symbol Collection ----------

func TestCollectDuplicateTopLevelNameFirstWins(t *testing.T) {
	input := `
Model Order {
	fields { id:uuid() [primary_key] }
}
Model Order {
	fields { other:text() }
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, 1, bag.CountKind(diag.DuplicateTopLevelName))

	// The first declaration wins; references bind to it.
	require.Len(t, graph.Decls, 1)
	d := graph.Lookup("Order")
	require.NotNil(t, d)
	require.Len(t, d.Fields, 1)
	assert.Equal(t, "id", d.Fields[0].Name)
}

func TestCollectSharedNamespaceAcrossKinds(t *testing.T) {
	input := `
Model Status { fields { id:uuid() } }
Enum Status:string() { open }`
	_, bag := resolve(t, input)
	assert.Equal(t, 1, bag.CountKind(diag.DuplicateTopLevelName))
}

// ---------- Foreign Keys ----------

func TestResolveForeignKey(t *testing.T) {
	input := `
Model Category {
	fields { id:uuid() [primary_key] }
}
Model Product {
	fields {
		id:uuid() [primary_key]
		category_id:uuid() [foreign_key: Category.id]
	}
}`
	graph, bag := resolve(t, input)
	require.Empty(t, bag.All())

	product := graph.Lookup("Product")
	fk := product.Fields[1].ForeignKey
	require.NotNil(t, fk)
	assert.Equal(t, "Category", fk.TargetName)
	assert.Equal(t, "id", fk.Field)
	assert.Equal(t, graph.Lookup("Category").Handle, fk.Target)
}

func TestResolveForeignKeyToMissingModel(t *testing.T) {
	input := `
Model Foo {
	fields {
		id:uuid() [primary_key]
		category_id:uuid() [foreign_key: Category.id]
		name:string()
	}
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, []diag.Kind{diag.UndefinedReference}, diagKinds(bag))

	// Foo still resolves for all other members.
	foo := graph.Lookup("Foo")
	require.NotNil(t, foo)
	assert.Equal(t, schema.StatusResolved, foo.Status)
	require.Len(t, foo.Fields, 3)
	assert.Nil(t, foo.Fields[1].ForeignKey)
}

func TestResolveForeignKeyToMissingField(t *testing.T) {
	input := `
Model Category {
	fields { id:uuid() [primary_key] }
}
Model Product {
	fields { category_id:uuid() [foreign_key: Category.slug] }
}`
	_, bag := resolve(t, input)
	assert.Equal(t, []diag.Kind{diag.UndefinedField}, diagKinds(bag))
}

func TestResolveForeignKeyToNonUniqueFieldWarns(t *testing.T) {
	input := `
Model Category {
	fields { name:string() }
}
Model Product {
	fields { category_name:string() [foreign_key: Category.name] }
}`
	graph, bag := resolve(t, input)
	require.Len(t, bag.All(), 1)
	d := bag.All()[0]
	assert.Equal(t, diag.InvalidForeignKeyTarget, d.Kind)
	assert.Equal(t, diag.SeverityWarning, d.Severity)

	// Warnings keep the link.
	assert.NotNil(t, graph.Lookup("Product").Fields[0].ForeignKey)
}

func TestResolveForeignKeyWarningPromotedToError(t *testing.T) {
	input := `
Model Category {
	fields { name:string() }
}
Model Product {
	fields { category_name:string() [foreign_key: Category.name] }
}`
	bag := diag.NewBag(diag.DefaultPolicy().Override(diag.InvalidForeignKeyTarget, diag.SeverityError))
	decls := parser.Parse("test.dspec", input, bag)
	schema.Resolve(schema.Collect(decls, bag), bag)

	assert.True(t, bag.HasErrors())
}

func TestResolveSelfReference(t *testing.T) {
	input := `
Model Category {
	fields {
		id:uuid() [primary_key]
		parent_id:uuid() [foreign_key: Category.id, nullable]
	}
	relations {
		parent: belongsTo(Category)
	}
}`
	graph, bag := resolve(t, input)
	require.Empty(t, bag.All())

	cat := graph.Lookup("Category")
	assert.Equal(t, cat.Handle, cat.Fields[1].ForeignKey.Target)
	assert.Equal(t, cat.Handle, cat.Relations[0].Target)
}

func TestResolveForwardReference(t *testing.T) {
	input := `
Model Product {
	fields { category_id:uuid() [foreign_key: Category.id] }
}
Model Category {
	fields { id:uuid() [primary_key] }
}`
	_, bag := resolve(t, input)
	assert.Empty(t, bag.All())
}

// ---------- Enum References ----------

func TestResolveEnumTypeAndDefault(t *testing.T) {
	input := `
Enum OrderStatus:string() {
	pending,
	shipped = "in_transit"
}
Model Order {
	fields {
		status:enum(OrderStatus) [default: OrderStatus.pending]
	}
}`
	graph, bag := resolve(t, input)
	require.Empty(t, bag.All())

	status := graph.Lookup("Order").Fields[0]
	assert.Equal(t, graph.Lookup("OrderStatus").Handle, status.Type.Enum)
	require.NotNil(t, status.Default)
	assert.Equal(t, "enum_member", status.Default.Kind)
	assert.Equal(t, "pending", status.Default.Member)

	members := graph.Lookup("OrderStatus").Members
	require.Len(t, members, 2)
	assert.Equal(t, "pending", members[0].Value)
	assert.Equal(t, "in_transit", members[1].Value)
}

func TestResolveUnknownEnum(t *testing.T) {
	input := `
Model Order {
	fields { status:enum(Missing) }
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, []diag.Kind{diag.UndefinedEnum}, diagKinds(bag))
	assert.Equal(t, schema.InvalidHandle, graph.Lookup("Order").Fields[0].Type.Enum)
}

func TestResolveUnknownEnumMemberDefault(t *testing.T) {
	input := `
Enum OrderStatus:string() { pending }
Model Order {
	fields { status:enum(OrderStatus) [default: OrderStatus.bogus] }
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, []diag.Kind{diag.UndefinedEnumMember}, diagKinds(bag))
	assert.Nil(t, graph.Lookup("Order").Fields[0].Default)
}

func TestResolveDefaultEnumMismatchesFieldEnum(t *testing.T) {
	input := `
Enum A:string() { x }
Enum B:string() { y }
Model M {
	fields { f:enum(A) [default: B.y] }
}`
	_, bag := resolve(t, input)
	assert.Equal(t, []diag.Kind{diag.TypeMismatch}, diagKinds(bag))
}

func TestResolveIntegerEnumMembersExcludeInvalid(t *testing.T) {
	input := `
Enum Priority:integer() {
	low = 1,
	broken,
	high = 10
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, 1, bag.CountKind(diag.MissingEnumValue))

	members := graph.Lookup("Priority").Members
	require.Len(t, members, 2)
	assert.Equal(t, "1", members[0].Value)
	assert.Equal(t, "10", members[1].Value)
}

func TestResolveEnumInvalidBackingFails(t *testing.T) {
	input := `Enum Bad:boolean() { a }`
	graph, bag := resolve(t, input)
	assert.Equal(t, 1, bag.CountKind(diag.TypeMismatch))
	d := graph.Lookup("Bad")
	assert.Equal(t, schema.StatusFailed, d.Status)
	assert.Empty(t, d.Members)
}

// ---------- Relations ----------

func TestResolveRelationTargets(t *testing.T) {
	input := `
Model User { fields { id:uuid() [primary_key] } }
Model Post {
	fields { id:uuid() [primary_key] }
	relations {
		author: belongsTo(User)
		tags: belongsToMany(Tag, PostTag)
	}
}
Model Tag { fields { id:uuid() [primary_key] } }
Pivot PostTag {
	fields {
		post_id:uuid() [foreign_key: Post.id]
		tag_id:uuid() [foreign_key: Tag.id]
	}
}`
	graph, bag := resolve(t, input)
	require.Empty(t, bag.All())

	rels := graph.Lookup("Post").Relations
	require.Len(t, rels, 2)
	assert.Equal(t, graph.Lookup("User").Handle, rels[0].Target)
	assert.Equal(t, graph.Lookup("PostTag").Handle, rels[1].Pivot)
}

func TestResolveRelationToMissingModel(t *testing.T) {
	input := `
Model Post {
	relations { author: belongsTo(Ghost) }
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, []diag.Kind{diag.UndefinedReference}, diagKinds(bag))
	assert.Empty(t, graph.Lookup("Post").Relations)
}

func TestResolveRelationToEnumWarns(t *testing.T) {
	input := `
Enum Status:string() { open }
Model Post {
	relations { status: belongsTo(Status) }
}`
	graph, bag := resolve(t, input)
	require.Len(t, bag.All(), 1)
	assert.Equal(t, diag.InvalidRelationTarget, bag.All()[0].Kind)
	assert.Equal(t, diag.SeverityWarning, bag.All()[0].Severity)

	// Warning severity keeps the relation.
	assert.Len(t, graph.Lookup("Post").Relations, 1)
}

func TestResolveBelongsToManyThroughModelWarns(t *testing.T) {
	input := `
Model Tag { fields { id:uuid() [primary_key] } }
Model NotAPivot { fields { id:uuid() [primary_key] } }
Model Post {
	relations { tags: belongsToMany(Tag, NotAPivot) }
}`
	_, bag := resolve(t, input)
	require.Len(t, bag.All(), 1)
	assert.Equal(t, diag.InvalidRelationTarget, bag.All()[0].Kind)
}

// ---------- Computed Attributes ----------

func TestResolveComputedDependencies(t *testing.T) {
	input := `
Model Order {
	fields {
		subtotal:decimal(10, 2)
		tax:decimal(10, 2)
	}
	computed_attributes {
		total:decimal(10, 2) [subtotal = tax]
		is_free:boolean() [total = 0]
	}
}`
	graph, bag := resolve(t, input)
	require.Empty(t, bag.All())

	order := graph.Lookup("Order")
	require.Len(t, order.Computed, 2)
	assert.ElementsMatch(t, []string{"subtotal", "tax"}, order.Computed[0].DependsOn)
	assert.Equal(t, []string{"total"}, order.Computed[1].DependsOn)

	// Dependencies come before dependents.
	assert.Equal(t, []string{"total", "is_free"}, order.ComputedOrder)
}

func TestResolveComputedCycleReportedOnce(t *testing.T) {
	input := `
Model Order {
	fields { base:decimal(10, 2) }
	computed_attributes {
		a:decimal(10, 2) [b = 0]
		b:decimal(10, 2) [c = 0]
		c:decimal(10, 2) [a = 0]
		standalone:boolean() [base = 0]
	}
}`
	graph, bag := resolve(t, input)
	require.Len(t, bag.All(), 1)
	d := bag.All()[0]
	assert.Equal(t, diag.CyclicComputedAttribute, d.Kind)
	assert.Contains(t, d.Message, "a -> b -> c -> a")

	// None of a/b/c appears in the resolved graph; the sibling does.
	order := graph.Lookup("Order")
	require.Len(t, order.Computed, 1)
	assert.Equal(t, "standalone", order.Computed[0].Name)
}

func TestResolveComputedSelfCycle(t *testing.T) {
	input := `
Model Order {
	computed_attributes {
		a:decimal(10, 2) [a = 0]
	}
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, 1, bag.CountKind(diag.CyclicComputedAttribute))
	assert.Empty(t, graph.Lookup("Order").Computed)
}

func TestResolveComputedDownstreamOfCycleExcluded(t *testing.T) {
	input := `
Model Order {
	computed_attributes {
		a:decimal(10, 2) [b = 0]
		b:decimal(10, 2) [a = 0]
		downstream:boolean() [a = 0]
	}
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, 1, bag.CountKind(diag.CyclicComputedAttribute))
	assert.Empty(t, graph.Lookup("Order").Computed)
}

func TestResolveComputedUnknownIdentifier(t *testing.T) {
	input := `
Model Order {
	fields { total:decimal(10, 2) }
	computed_attributes {
		bad:boolean() [ghost = 0]
		good:boolean() [total = 0]
	}
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, []diag.Kind{diag.UndefinedReference}, diagKinds(bag))

	order := graph.Lookup("Order")
	require.Len(t, order.Computed, 1)
	assert.Equal(t, "good", order.Computed[0].Name)
}

// ---------- Constraints and Indexes ----------

func TestResolveConstraintReferences(t *testing.T) {
	input := `
Model Order {
	fields { total:decimal(10, 2) }
	computed_attributes {
		tax:decimal(10, 2) [total = 0]
	}
	constraints {
		sane: check(total >= 0 and tax >= 0)
	}
}`
	graph, bag := resolve(t, input)
	require.Empty(t, bag.All())

	cons := graph.Lookup("Order").Constraints
	require.Len(t, cons, 1)
	assert.ElementsMatch(t, []string{"total", "tax"}, cons[0].References)
}

func TestResolveConstraintUnknownIdentifier(t *testing.T) {
	input := `
Model Order {
	fields { total:decimal(10, 2) }
	constraints {
		bad: check(ghost > 0)
	}
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, []diag.Kind{diag.UndefinedReference}, diagKinds(bag))
	assert.Empty(t, graph.Lookup("Order").Constraints)
}

func TestResolveIndexColumns(t *testing.T) {
	input := `
Model Order {
	fields {
		status:string()
		created_at:timestamp()
	}
	indexes {
		ok: index([status, created_at])
		bad: index(ghost)
	}
}`
	graph, bag := resolve(t, input)
	assert.Equal(t, []diag.Kind{diag.UndefinedReference}, diagKinds(bag))

	idx := graph.Lookup("Order").Indexes
	require.Len(t, idx, 1)
	assert.Equal(t, "ok", idx[0].Name)
}

// ---------- Helpers ----------

func diagKinds(bag *diag.Bag) []diag.Kind {
	var out []diag.Kind
	for _, d := range bag.All() {
		out = append(out, d.Kind)
	}
	return out
}
