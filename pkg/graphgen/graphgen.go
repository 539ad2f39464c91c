// Package graphgen builds the flat undirected topologies that seed and expand
// a hierarchical network: cycles, complete graphs, and random connected
// graphs grown from a Euclidean minimum spanning tree.
package graphgen

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/dd0wney/barriersim/pkg/algorithms"
	"github.com/dd0wney/barriersim/pkg/sampling"
)

// ErrInvalidOrder is returned for a negative vertex count.
var ErrInvalidOrder = errors.New("graphgen: vertex count must be non-negative")

// Edge is an undirected edge between two vertices of a generated graph.
type Edge struct {
	U int
	V int
}

// MaxEdges returns the edge count of the complete graph on n vertices
func MaxEdges(n int) int {
	return n * (n - 1) / 2
}

// Cycle returns the edges of the cycle 0-1-...-(n-1)-0. Graphs with fewer
// than three vertices degrade to a path so no self-loop or duplicate appears.
func Cycle(n int) []Edge {
	if n < 2 {
		return []Edge{}
	}
	if n == 2 {
		return []Edge{{0, 1}}
	}
	edges := make([]Edge, 0, n)
	edges = append(edges, Edge{n - 1, 0})
	for i := 1; i < n; i++ {
		edges = append(edges, Edge{i - 1, i})
	}
	return edges
}

// Complete returns every pair (i, j) with i < j, ordered by j then i.
func Complete(n int) []Edge {
	edges := make([]Edge, 0, max(0, MaxEdges(n)))
	for j := 1; j < n; j++ {
		for i := 0; i < j; i++ {
			edges = append(edges, Edge{i, j})
		}
	}
	return edges
}

// pairDistance is a candidate edge keyed by squared Euclidean length.
type pairDistance struct {
	dist float64
	u, v int
}

// RandomConnected builds a connected graph on n vertices with approximately
// approxEdges edges.
//
// Vertices are dropped uniformly in the unit square. Kruskal's algorithm over
// squared distances yields a minimum spanning tree, which guarantees
// connectivity. Each pair left out of the tree gets weight exp(-d/2), and the
// remaining approxEdges-(n-1) edges are drawn from that pool without
// replacement, so short links are preferred. A pool smaller than the
// remainder contributes all of its edges.
func RandomConnected(n, approxEdges int, seed uint64) ([]Edge, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrder, n)
	}

	maxEdges := MaxEdges(n)
	if approxEdges >= maxEdges {
		edges := make([]Edge, 0, maxEdges)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				edges = append(edges, Edge{i, j})
			}
		}
		return edges, nil
	}

	rng := sampling.NewRNG(seed)

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = rng.Float64()
		ys[i] = rng.Float64()
	}

	pairs := make([]pairDistance, 0, maxEdges)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx, dy := xs[i]-xs[j], ys[i]-ys[j]
			pairs = append(pairs, pairDistance{dist: dx*dx + dy*dy, u: i, v: j})
		}
	}
	slices.SortFunc(pairs, func(a, b pairDistance) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		if c := cmp.Compare(a.u, b.u); c != 0 {
			return c
		}
		return cmp.Compare(a.v, b.v)
	})

	edges := make([]Edge, 0, max(approxEdges, n-1))
	pool := make([]Edge, 0, len(pairs))
	weights := make([]float64, 0, len(pairs))

	ds := algorithms.NewDisjointSets(n)
	for _, p := range pairs {
		if ds.Union(p.u, p.v) {
			edges = append(edges, Edge{p.u, p.v})
		} else {
			pool = append(pool, Edge{p.u, p.v})
			weights = append(weights, math.Exp(-p.dist/2))
		}
	}

	extra := approxEdges - (n - 1)
	if extra <= 0 {
		return edges, nil
	}

	indices, err := sampling.MultiSample(weights, extra, rng)
	if err != nil {
		return nil, fmt.Errorf("sampling extra edges: %w", err)
	}
	for _, idx := range indices {
		edges = append(edges, pool[idx])
	}
	return edges, nil
}
