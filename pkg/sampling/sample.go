// Package sampling provides seeded random draws for the simulator: a
// cumulative-weight tree for size-biased sampling without replacement, and
// single-item samplers that fail loudly on empty pools.
package sampling

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrEmptyPool       = errors.New("sampling: nothing to sample from")
	ErrExhausted       = errors.New("sampling: weight pool exhausted")
	ErrNegativeWeight  = errors.New("sampling: negative weight")
	ErrIndexOutOfRange = errors.New("sampling: index out of range")
	ErrLengthMismatch  = errors.New("sampling: items and weights differ in length")
)

// golden is the 64-bit golden ratio, used to decorrelate the two PCG words.
const golden = 0x9e3779b97f4a7c15

// NewRNG returns a deterministic generator for seed.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^golden))
}

// ChildSeed draws the seed for a sub-operation from its parent generator.
// Each sub-operation consumes exactly one draw of the parent.
func ChildSeed(rng *rand.Rand) uint64 {
	return rng.Uint64()
}

// IntBetween returns a uniform integer in [lo, hi].
func IntBetween(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// Chance reports whether a uniform draw in [0, 1) falls below p.
func Chance(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}

// MultiSample draws m distinct indices of weights without replacement, each
// draw proportional to the weights still in the pool. When m >= len(weights)
// every index is returned in order.
func MultiSample(weights []float64, m int, rng *rand.Rand) ([]int, error) {
	n := len(weights)
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("%w: index %d, weight %g", ErrNegativeWeight, i, w)
		}
	}

	if m >= n {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}
	if m <= 0 {
		return []int{}, nil
	}

	tree := NewCumulativeTree(weights)
	indices := make([]int, 0, m)
	for len(indices) < m {
		total := tree.Root()
		if total <= 0 {
			return indices, fmt.Errorf("%w: drew %d of %d", ErrExhausted, len(indices), m)
		}

		// x lies in (0, total], so the search never lands on a drained slot.
		x := total * (1 - rng.Float64())
		index := tree.Search(x)
		if index == NotFound || tree.Query(index) <= 0 {
			return indices, fmt.Errorf("%w: search for %g of %g returned %d", ErrExhausted, x, total, index)
		}

		indices = append(indices, index)
		if err := tree.Update(index, 0); err != nil {
			return indices, err
		}
	}
	return indices, nil
}

// Uniform returns a uniformly chosen element of items.
func Uniform[T any](items []T, rng *rand.Rand) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyPool
	}
	return items[rng.IntN(len(items))], nil
}

// UniformTwo draws one element uniformly from the concatenation of a and b
// without building it.
func UniformTwo[T any](a, b []T, rng *rand.Rand) (T, error) {
	var zero T
	total := len(a) + len(b)
	if total == 0 {
		return zero, fmt.Errorf("%w: both pools are empty", ErrEmptyPool)
	}
	i := rng.IntN(total)
	if i < len(a) {
		return a[i], nil
	}
	return b[i-len(a)], nil
}

// Other returns a uniformly chosen element of items different from x.
// When no such element exists it returns x itself.
func Other[T comparable](items []T, x T, rng *rand.Rand) T {
	candidates := make([]T, 0, len(items))
	for _, y := range items {
		if y != x {
			candidates = append(candidates, y)
		}
	}
	if len(candidates) == 0 {
		return x
	}
	return candidates[rng.IntN(len(candidates))]
}

// Weighted returns one of items with probability proportional to its
// integer weight.
func Weighted(items, weights []int, rng *rand.Rand) (int, error) {
	if len(items) != len(weights) {
		return 0, fmt.Errorf("%w: %d items, %d weights", ErrLengthMismatch, len(items), len(weights))
	}

	cum := make([]int, len(weights))
	total := 0
	for i, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("%w: index %d, weight %d", ErrNegativeWeight, i, w)
		}
		total += w
		cum[i] = total
	}
	if total == 0 {
		return 0, ErrEmptyPool
	}

	r := rng.IntN(total)
	j := sort.Search(len(cum), func(k int) bool { return cum[k] > r })
	return items[j], nil
}

// SigmaN perturbs n by a normal factor centred at 1 with standard deviation
// sigma, flooring the result at 1. A zero sigma returns n unchanged and
// consumes no randomness.
func SigmaN(n int, sigma float64, rng *rand.Rand) int {
	if sigma == 0 {
		return n
	}
	factor := distuv.Normal{Mu: 1, Sigma: sigma, Src: rng}.Rand()
	return max(1, int(float64(n)*factor))
}
