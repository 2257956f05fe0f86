package diag_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspeclang/dspec/pkg/diag"
	"github.com/dspeclang/dspec/pkg/token"
)

func span(line, col int) token.Span {
	return token.Span{Start: token.Position{Line: line, Column: col}}
}

func TestDefaultPolicySeverities(t *testing.T) {
	p := diag.DefaultPolicy()
	assert.Equal(t, diag.SeverityWarning, p.SeverityOf(diag.InvalidForeignKeyTarget))
	assert.Equal(t, diag.SeverityWarning, p.SeverityOf(diag.InvalidRelationTarget))
	assert.Equal(t, diag.SeverityError, p.SeverityOf(diag.SyntaxError))
	assert.Equal(t, diag.SeverityError, p.SeverityOf(diag.CyclicComputedAttribute))
}

func TestPolicyOverride(t *testing.T) {
	p := diag.DefaultPolicy().Override(diag.InvalidForeignKeyTarget, diag.SeverityError)
	assert.Equal(t, diag.SeverityError, p.SeverityOf(diag.InvalidForeignKeyTarget))
	// The original policy is unchanged.
	assert.Equal(t, diag.SeverityWarning, diag.DefaultPolicy().SeverityOf(diag.InvalidForeignKeyTarget))
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, name := range []string{"LexError", "UndefinedReference", "CyclicComputedAttribute"} {
		kind, ok := diag.ParseKind(name)
		require.True(t, ok)
		assert.Equal(t, name, kind.String())
	}
	_, ok := diag.ParseKind("NotAKind")
	assert.False(t, ok)
}

func TestBagRecordAssignsSeverity(t *testing.T) {
	bag := diag.NewBag(diag.DefaultPolicy())
	bag.Record(diag.InvalidForeignKeyTarget, "a.dspec", span(1, 1), "fk warning")
	bag.Record(diag.SyntaxError, "a.dspec", span(2, 1), "broken %s", "thing")

	all := bag.All()
	require.Len(t, all, 2)
	assert.Equal(t, diag.SeverityWarning, all[0].Severity)
	assert.Equal(t, diag.SeverityError, all[1].Severity)
	assert.Equal(t, "broken thing", all[1].Message)
	assert.True(t, bag.HasErrors())
}

func TestBagWarningsOnlyHasNoErrors(t *testing.T) {
	bag := diag.NewBag(diag.DefaultPolicy())
	bag.Record(diag.InvalidRelationTarget, "a.dspec", span(1, 1), "warn")
	assert.False(t, bag.HasErrors())
	assert.Equal(t, 1, bag.Count())
}

func TestBagConcurrentRecord(t *testing.T) {
	bag := diag.NewBag(diag.DefaultPolicy())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bag.Record(diag.SyntaxError, "a.dspec", span(1, 1), "x")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, bag.Count())
}

func TestDiagnosticError(t *testing.T) {
	d := diag.Diagnostic{
		Kind:     diag.UndefinedReference,
		Severity: diag.SeverityError,
		Message:  "unknown name",
		Unit:     "schema.dspec",
		Span:     span(4, 7),
	}
	assert.Equal(t, "schema.dspec:4:7: error: unknown name [UndefinedReference]", d.Error())
}

func TestSortOrdersByUnitAndPosition(t *testing.T) {
	diags := []diag.Diagnostic{
		{Unit: "b.dspec", Span: span(1, 1)},
		{Unit: "a.dspec", Span: span(9, 1)},
		{Unit: "a.dspec", Span: span(2, 5)},
		{Unit: "a.dspec", Span: span(2, 1)},
	}
	diag.Sort(diags)
	assert.Equal(t, "a.dspec", diags[0].Unit)
	assert.Equal(t, 2, diags[0].Span.Start.Line)
	assert.Equal(t, 1, diags[0].Span.Start.Column)
	assert.Equal(t, 5, diags[1].Span.Start.Column)
	assert.Equal(t, 9, diags[2].Span.Start.Line)
	assert.Equal(t, "b.dspec", diags[3].Unit)
}
