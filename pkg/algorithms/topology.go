package algorithms

import (
	"errors"
	"fmt"
	"slices"
)

// ErrCycle is returned when a topological order is requested for a graph
// that is not acyclic.
var ErrCycle = errors.New("graph contains a cycle")

// ReverseTopologicalSort returns the DFS postorder of g: every node appears
// after all of its successors. Roots are tried in ascending id order and
// successors in insertion order, so the result is deterministic.
//
// The traversal keeps an explicit stack, so arbitrarily deep graphs are safe.
// Nodes are colored with three colors:
//   - WHITE: not yet reached
//   - GRAY: on the current DFS path
//   - BLACK: finished, all descendants emitted
//
// Reaching a GRAY node means a back edge, which is reported as ErrCycle.
func ReverseTopologicalSort(g *Graph) ([]int, error) {
	const (
		WHITE = 0
		GRAY  = 1
		BLACK = 2
	)

	type frame struct {
		node int
		next int // index of the next successor to visit
	}

	n := g.Order()
	color := make([]uint8, n)
	order := make([]int, 0, n)
	stack := make([]frame, 0, 16)

	for root := 0; root < n; root++ {
		if color[root] != WHITE {
			continue
		}
		color[root] = GRAY
		stack = append(stack, frame{node: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succs := g.succs[top.node]

			if top.next < len(succs) {
				u, v := top.node, succs[top.next]
				top.next++
				switch color[v] {
				case WHITE:
					color[v] = GRAY
					stack = append(stack, frame{node: v})
				case GRAY:
					return nil, fmt.Errorf("%w: back edge %d -> %d", ErrCycle, u, v)
				}
				continue
			}

			color[top.node] = BLACK
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	return order, nil
}

// TopologicalSort returns nodes in topological order: for every edge u->v,
// u comes before v. It is the reverse of ReverseTopologicalSort.
func TopologicalSort(g *Graph) ([]int, error) {
	order, err := ReverseTopologicalSort(g)
	if err != nil {
		return nil, err
	}
	slices.Reverse(order)
	return order, nil
}

// IsDAG reports whether g has no directed cycle
func IsDAG(g *Graph) bool {
	_, err := ReverseTopologicalSort(g)
	return err == nil
}
