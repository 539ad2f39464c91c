package victims

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/dd0wney/barriersim/pkg/sampling"
)

var (
	// ErrNothingToDistribute is returned when a positive count must be split
	// across zero items.
	ErrNothingToDistribute = errors.New("victims: no items to distribute over")
	// ErrNegativeCount is returned for a negative victim count.
	ErrNegativeCount = errors.New("victims: negative count")
)

// Distribute splits the integer x across len(weights) items in proportion to
// the weights. Items are visited in a random order; each takes the rounded
// running total minus what was already handed out, and the last item takes
// the remainder, so the allocations always sum to x exactly. All-zero
// weights are treated as equal.
func Distribute(weights []float64, x int, rng *rand.Rand) ([]int, error) {
	if x < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, x)
	}
	n := len(weights)
	if n == 0 {
		if x == 0 {
			return []int{}, nil
		}
		return nil, fmt.Errorf("%w: %d victims", ErrNothingToDistribute, x)
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("%w: index %d, weight %g", sampling.ErrNegativeWeight, i, w)
		}
	}

	total := floats.Sum(weights)
	share := func(i int) float64 { return weights[i] / total }
	if total <= 0 || math.IsInf(total, 0) {
		share = func(int) float64 { return 1 / float64(n) }
	}

	alloc := make([]int, n)
	order := rng.Perm(n)
	cum := 0.0
	given := 0
	for k, i := range order {
		if k == n-1 {
			alloc[i] = x - given
			break
		}
		cum += share(i) * float64(x)
		r := min(max(int(math.Round(cum)), given), x)
		alloc[i] = r - given
		given = r
	}
	return alloc, nil
}

// normalize returns weights scaled to sum to 1. All-zero weights stay zero.
func normalize(weights []float64) []float64 {
	out := append([]float64(nil), weights...)
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}

// perturb adds uniform noise in [-noise, +noise] to every positive
// normalized weight, floors at zero and renormalizes. Zero weights stay zero
// so noise never routes victims to nodes without candidate leaves. A zero
// noise level returns the normalized weights and draws nothing.
func perturb(weights []float64, noise float64, rng *rand.Rand) []float64 {
	out := normalize(weights)
	if noise <= 0 {
		return out
	}

	noisy := make([]float64, len(out))
	for i, w := range out {
		if w > 0 {
			noisy[i] = max(0, w+(2*rng.Float64()-1)*noise)
		}
	}
	if floats.Sum(noisy) <= 0 {
		return out
	}
	return normalize(noisy)
}
