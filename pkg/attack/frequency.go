package attack

import (
	"slices"

	"github.com/dd0wney/barriersim/pkg/network"
)

// Frequency is the number of deepest-level attackers drawn to a victim.
type Frequency struct {
	Victim    int `json:"victim" yaml:"victim"`
	Attackers int `json:"attackers" yaml:"attackers"`
}

// Frequencies counts, for every victim, the deepest-level physical nodes
// targeting it. Victims nobody targets are listed with zero. The histogram
// is sorted by attackers, most first, then by victim id. Unresolved nodes
// are not counted.
func (r *Result) Frequencies(net *network.Network, victims []int) []Frequency {
	counts := make(map[int]int, len(victims))
	for _, v := range victims {
		counts[v] = 0
	}
	for _, u := range net.Leaves() {
		if r.Resolved(u) {
			counts[r.Target[u]]++
		}
	}

	freqs := make([]Frequency, 0, len(counts))
	for v, c := range counts {
		freqs = append(freqs, Frequency{Victim: v, Attackers: c})
	}
	slices.SortFunc(freqs, func(a, b Frequency) int {
		if a.Attackers != b.Attackers {
			return b.Attackers - a.Attackers
		}
		return a.Victim - b.Victim
	})
	return freqs
}
