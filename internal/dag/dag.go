// Package dag provides directed graph operations for computed-attribute
// dependencies. It supports cycle detection with minimal cycle paths and
// topological sorting of the acyclic remainder.
package dag

import (
	"fmt"
	"sort"
)

// Graph represents a directed dependency graph. Nodes are attribute
// names; an edge a→b means a depends on b.
type Graph struct {
	nodes      map[string]bool
	deps       map[string][]string // node -> dependencies
	dependents map[string][]string // node -> dependents
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]bool),
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(id string) {
	if !g.nodes[id] {
		g.nodes[id] = true
		g.deps[id] = []string{}
		g.dependents[id] = []string{}
	}
}

// AddEdge records that from depends on to. Both nodes must exist.
// A self-edge is legal input; it surfaces later as a one-element cycle.
func (g *Graph) AddEdge(from, to string) error {
	if !g.nodes[from] {
		return fmt.Errorf("node %q does not exist", from)
	}
	if !g.nodes[to] {
		return fmt.Errorf("node %q does not exist", to)
	}

	if !contains(g.deps[from], to) {
		g.deps[from] = append(g.deps[from], to)
	}
	if !contains(g.dependents[to], from) {
		g.dependents[to] = append(g.dependents[to], from)
	}
	return nil
}

// HasNode returns true if the node exists.
func (g *Graph) HasNode(id string) bool {
	return g.nodes[id]
}

// Nodes returns all node IDs in sorted order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dependencies returns the direct dependencies of a node.
func (g *Graph) Dependencies(id string) []string {
	return g.deps[id]
}

// Dependents returns the direct dependents of a node.
func (g *Graph) Dependents(id string) []string {
	return g.dependents[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// dfs colors for cycle detection.
const (
	white = iota // unvisited
	gray         // in progress
	black        // done
)

// FindCycles returns the minimal cycle paths in the graph. Each cycle
// is reported once, as the sequence of nodes along it without
// repeating the first node. A self-referencing node yields a
// one-element cycle. Iteration order is deterministic.
func (g *Graph) FindCycles() [][]string {
	color := make(map[string]int)
	var stack []string
	var cycles [][]string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		stack = append(stack, id)

		for _, dep := range g.deps[id] {
			switch color[dep] {
			case white:
				dfs(dep)
			case gray:
				// Back edge: extract the cycle from the stack.
				start := len(stack) - 1
				for start >= 0 && stack[start] != dep {
					start--
				}
				cycle := make([]string, len(stack)-start)
				copy(cycle, stack[start:])
				cycles = append(cycles, cycle)
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, id := range g.Nodes() {
		if color[id] == white {
			dfs(id)
		}
	}
	return cycles
}

// CycleMembers returns the set of nodes participating in any cycle.
func (g *Graph) CycleMembers() map[string]bool {
	members := make(map[string]bool)
	for _, cycle := range g.FindCycles() {
		for _, id := range cycle {
			members[id] = true
		}
	}
	// A node that depends on a cyclic node is itself unresolvable;
	// propagate upward through dependents.
	var mark func(id string)
	mark = func(id string) {
		for _, dep := range g.dependents[id] {
			if !members[dep] {
				members[dep] = true
				mark(dep)
			}
		}
	}
	for id := range copyKeys(members) {
		mark(id)
	}
	return members
}

// TopologicalSort returns nodes in dependency order (dependencies
// before dependents). Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	if cycles := g.FindCycles(); len(cycles) > 0 {
		return nil, fmt.Errorf("cycle detected: %v", cycles[0])
	}

	visited := make(map[string]bool)
	var result []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.deps[id] {
			visit(dep)
		}
		result = append(result, id)
	}

	for _, id := range g.Nodes() {
		visit(id)
	}
	return result, nil
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

// copyKeys snapshots map keys so the map can grow during iteration.
func copyKeys(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
