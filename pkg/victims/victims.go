// Package victims chooses the barrier nodes that attack traffic is drawn
// to. Victims are always physical nodes of the deepest level. They are
// placed either uniformly at random or by splitting the victim budget down
// the nesting hierarchy in proportion to how many leaves each branch holds.
package victims

import (
	"github.com/dd0wney/barriersim/pkg/network"
	"github.com/dd0wney/barriersim/pkg/sampling"
)

// PlaceRandomly returns count distinct deepest-level physical nodes drawn
// uniformly with seed. A count of at least the leaf count returns every
// leaf (in shuffled order); a non-positive count returns none.
func PlaceRandomly(net *network.Network, count int, seed uint64) []int {
	leaves := net.Leaves()
	rng := sampling.NewRNG(seed)
	rng.Shuffle(len(leaves), func(i, j int) {
		leaves[i], leaves[j] = leaves[j], leaves[i]
	})
	count = min(max(count, 0), len(leaves))
	return leaves[:count:count]
}
