package algorithms

import (
	"fmt"
	"io"
)

// Graph is a directed graph over nodes 0..n-1 with predecessor and
// successor lists. Parallel edges are kept as given.
type Graph struct {
	preds [][]int
	succs [][]int
}

// NewGraph creates an edgeless graph with n nodes
func NewGraph(n int) *Graph {
	return &Graph{
		preds: make([][]int, n),
		succs: make([][]int, n),
	}
}

// Order returns the number of nodes
func (g *Graph) Order() int {
	return len(g.succs)
}

// AddEdge adds the directed edge u -> v
func (g *Graph) AddEdge(u, v int) {
	g.succs[u] = append(g.succs[u], v)
	g.preds[v] = append(g.preds[v], u)
}

// Preds returns the predecessors of u. The slice must not be modified.
func (g *Graph) Preds(u int) []int {
	return g.preds[u]
}

// Succs returns the successors of u. The slice must not be modified.
func (g *Graph) Succs(u int) []int {
	return g.succs[u]
}

// SourcesAndSinks returns the nodes with no predecessors and the nodes with
// no successors, both in ascending order. An isolated node is both.
func (g *Graph) SourcesAndSinks() (sources, sinks []int) {
	for u := range g.succs {
		if len(g.preds[u]) == 0 {
			sources = append(sources, u)
		}
		if len(g.succs[u]) == 0 {
			sinks = append(sinks, u)
		}
	}
	return sources, sinks
}

// Print writes one line per node: its successors, then its predecessors.
func (g *Graph) Print(w io.Writer) {
	for u := range g.succs {
		fmt.Fprintf(w, "%d: %v %v\n", u, g.succs[u], g.preds[u])
	}
}
