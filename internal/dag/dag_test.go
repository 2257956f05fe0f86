package dag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspeclang/dspec/internal/dag"
)

func build(t *testing.T, edges map[string][]string) *dag.Graph {
	t.Helper()
	g := dag.NewGraph()
	for from := range edges {
		g.AddNode(from)
	}
	for _, tos := range edges {
		for _, to := range tos {
			g.AddNode(to)
		}
	}
	for from, tos := range edges {
		for _, to := range tos {
			require.NoError(t, g.AddEdge(from, to))
		}
	}
	return g
}

func TestAddEdgeRequiresNodes(t *testing.T) {
	g := dag.NewGraph()
	g.AddNode("a")
	assert.Error(t, g.AddEdge("a", "missing"))
	assert.Error(t, g.AddEdge("missing", "a"))
}

func TestFindCyclesAcyclic(t *testing.T) {
	g := build(t, map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": nil,
	})
	assert.Empty(t, g.FindCycles())
}

func TestFindCyclesSimpleCycle(t *testing.T) {
	g := build(t, map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	})
	cycles := g.FindCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "b", "c"}, cycles[0])
}

func TestFindCyclesSelfEdge(t *testing.T) {
	g := build(t, map[string][]string{"a": {"a"}})
	cycles := g.FindCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a"}, cycles[0])
}

func TestFindCyclesDoesNotFlagDiamond(t *testing.T) {
	// A diamond shares a node on two paths but has no cycle.
	g := build(t, map[string][]string{
		"a": {"b", "c"},
		"b": {"d"},
		"c": {"d"},
		"d": nil,
	})
	assert.Empty(t, g.FindCycles())
}

func TestCycleMembersPropagatesToDependents(t *testing.T) {
	g := build(t, map[string][]string{
		"a": {"b"},
		"b": {"a"},
		"c": {"a"},
		"d": nil,
	})
	members := g.CycleMembers()
	assert.True(t, members["a"])
	assert.True(t, members["b"])
	assert.True(t, members["c"], "node depending on a cycle is unresolvable")
	assert.False(t, members["d"])
}

func TestTopologicalSort(t *testing.T) {
	g := build(t, map[string][]string{
		"c": {"b"},
		"b": {"a"},
		"a": nil,
	})
	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopologicalSortRejectsCycle(t *testing.T) {
	g := build(t, map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})
	_, err := g.TopologicalSort()
	assert.Error(t, err)
}
