package sampling

import (
	"fmt"
	"strings"
)

// NotFound is returned by Search when the requested prefix sum exceeds the
// total weight held by the tree.
const NotFound = -1

// CumulativeTree is a complete binary tree over an array of non-negative
// weights. Every internal slot holds the sum of its subtree, so point updates
// and prefix-sum searches both run in O(log n).
//
// Leaves live at tree[size+i]; slot 1 is the root. Padding leaves beyond n
// are always zero.
type CumulativeTree struct {
	n    int
	size int
	tree []float64
}

// NewCumulativeTree builds a tree over a copy of weights in O(n).
func NewCumulativeTree(weights []float64) *CumulativeTree {
	n := len(weights)
	size := 1
	for size < n {
		size <<= 1
	}

	t := &CumulativeTree{
		n:    n,
		size: size,
		tree: make([]float64, 2*size),
	}
	copy(t.tree[size:], weights)
	for i := size - 1; i >= 1; i-- {
		t.tree[i] = t.tree[2*i] + t.tree[2*i+1]
	}
	return t
}

// Len returns the number of weights in the tree
func (t *CumulativeTree) Len() int {
	return t.n
}

// Root returns the total weight
func (t *CumulativeTree) Root() float64 {
	return t.tree[1]
}

// Query returns the weight currently stored at index i.
func (t *CumulativeTree) Query(i int) float64 {
	if i < 0 || i >= t.n {
		return 0
	}
	return t.tree[t.size+i]
}

// Update sets the weight at index i and refreshes every ancestor sum.
func (t *CumulativeTree) Update(i int, w float64) error {
	if i < 0 || i >= t.n {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, t.n)
	}
	if w < 0 {
		return fmt.Errorf("%w: index %d, weight %g", ErrNegativeWeight, i, w)
	}

	node := t.size + i
	t.tree[node] = w
	for node >>= 1; node >= 1; node >>= 1 {
		t.tree[node] = t.tree[2*node] + t.tree[2*node+1]
	}
	return nil
}

// Search returns the smallest index whose prefix sum is at least x, or
// NotFound when x exceeds the total weight.
func (t *CumulativeTree) Search(x float64) int {
	if t.n == 0 || x > t.tree[1] {
		return NotFound
	}

	node := 1
	for node < t.size {
		left := 2 * node
		// A right subtree that rounded down to zero can never hold the answer.
		if x <= t.tree[left] || t.tree[left+1] <= 0 {
			node = left
		} else {
			x -= t.tree[left]
			node = left + 1
		}
	}

	idx := node - t.size
	if idx >= t.n {
		return NotFound
	}
	return idx
}

// String renders the tree level by level, for debugging.
func (t *CumulativeTree) String() string {
	var b strings.Builder
	for width, start := 1, 1; start < 2*t.size; width, start = width*2, start*2 {
		for i := start; i < start+width; i++ {
			if i > start {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", t.tree[i])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
