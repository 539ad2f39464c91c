package attack

import (
	"bytes"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/barriersim/pkg/algorithms"
	"github.com/dd0wney/barriersim/pkg/graphgen"
	"github.com/dd0wney/barriersim/pkg/logging"
	"github.com/dd0wney/barriersim/pkg/network"
	"github.com/dd0wney/barriersim/pkg/sampling"
	"github.com/dd0wney/barriersim/pkg/victims"
)

func cycle(t *testing.T, sideConnectivity int) *network.Network {
	t.Helper()
	net, err := network.New(4, graphgen.Cycle(4), false, sideConnectivity)
	require.NoError(t, err)
	return net
}

func TestAttack_Cycle(t *testing.T) {
	res, err := Attack(cycle(t, 0), []int{0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0}, res.Target)
	assert.Equal(t, []int{0, 1, 2, 1}, res.Distance)
}

func TestAttack_SideWeight(t *testing.T) {
	res, err := Attack(cycle(t, 1), []int{0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 1}, res.Distance)

	res, err = Attack(cycle(t, 1), []int{0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0}, res.Target)
	assert.Equal(t, []int{0, 5, 10, 5}, res.Distance)

	res, err = Attack(cycle(t, 0), []int{0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 1}, res.Distance, "in links ignore the side weight")
}

func TestAttack_TieGoesToLowerVictim(t *testing.T) {
	net, err := network.New(3, []graphgen.Edge{{U: 0, V: 1}, {U: 1, V: 2}}, false, 0)
	require.NoError(t, err)

	for _, vs := range [][]int{{0, 2}, {2, 0}} {
		res, err := Attack(net, vs, 1)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 0, 2}, res.Target, "victims %v", vs)
		assert.Equal(t, []int{0, 1, 0}, res.Distance, "victims %v", vs)
	}
}

func TestAttack_Levels(t *testing.T) {
	net, err := network.New(2, []graphgen.Edge{{U: 0, V: 1}}, true, 1)
	require.NoError(t, err)
	require.NoError(t, net.VGrow(network.GrowParams{NumChildren: 2}, 1))
	require.NoError(t, net.HGrow(graphgen.CycleGen{N: 2}, 2))
	require.Equal(t, []int{7, 8, 9, 10, 11, 12, 13, 14}, net.Leaves())

	res, err := Attack(net, []int{7}, 3)
	require.NoError(t, err)

	for _, u := range net.Leaves() {
		assert.Equal(t, 7, res.Target[u], "leaf %d", u)
	}
	assert.Equal(t, 0, res.Distance[7])
	assert.Equal(t, 1, res.Distance[8])
	assert.Equal(t, 7, res.Target[1])
	assert.Equal(t, 0, res.Distance[1], "adopted targets restart at zero")
	assert.Equal(t, 3, res.Distance[2], "one peering away from the adopting node")

	for _, u := range []int{0, 3, 4, 5, 6} {
		assert.Equal(t, Unresolved, res.Target[u], "virtual node %d", u)
	}

	freqs := res.Frequencies(net, []int{7})
	assert.Equal(t, []Frequency{{Victim: 7, Attackers: 8}}, freqs)
}

func TestAttack_TopDownPrefersShallowTargets(t *testing.T) {
	net, err := network.New(3, nil, false, 0)
	require.NoError(t, err)
	require.NoError(t, net.VGrow(network.GrowParams{NumChildren: 1}, 1))
	require.NoError(t, net.VGrow(network.GrowParams{NumChildren: 1}, 2))
	net.AddSideEdge(1, 2)
	require.NoError(t, net.AddUpwardEdge(7, 3))
	require.Equal(t, []int{4, 3}, net.Up(7))

	res, err := Attack(net, []int{6, 8}, 1)
	require.NoError(t, err)

	// Node 4 is reached from above through the top level; node 3 got its
	// target bottom-up at depth 1. Node 7 follows the shallower one even
	// though victim 6 has the lower id.
	assert.Equal(t, 8, res.Target[4])
	assert.Equal(t, 6, res.Target[3])
	assert.Equal(t, 8, res.Target[7])
	assert.Equal(t, 0, res.Distance[7])
}

func TestAttack_Unresolved(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)

	net, err := network.New(4, []graphgen.Edge{{U: 0, V: 1}, {U: 2, V: 3}}, false, 0)
	require.NoError(t, err)

	res, err := Attack(net, []int{0}, 1, WithLogger(logger))
	require.Error(t, err)
	assert.True(t, IsUnresolved(err))

	var ue *UnresolvedError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, []int{2, 3}, ue.Nodes)
	assert.Contains(t, err.Error(), "2 nodes [2 3]")

	require.NotNil(t, res, "the partial result is returned")
	assert.Equal(t, 0, res.Target[1])
	assert.Equal(t, Unresolved, res.Target[2])
	assert.Contains(t, buf.String(), "attack left nodes unresolved")
	assert.Contains(t, buf.String(), `"node_id":3`)
}

func TestAttack_NoVictims(t *testing.T) {
	_, err := Attack(cycle(t, 0), nil, 1)
	var ue *UnresolvedError
	require.ErrorAs(t, err, &ue)
	assert.Len(t, ue.Nodes, 4)
}

func TestAttack_InvalidInput(t *testing.T) {
	_, err := Attack(cycle(t, 0), []int{4}, 1)
	assert.ErrorIs(t, err, ErrInvalidVictim)

	_, err = Attack(cycle(t, 0), []int{-1}, 1)
	assert.ErrorIs(t, err, ErrInvalidVictim)

	_, err = Attack(cycle(t, 0), []int{0}, -1)
	assert.ErrorIs(t, err, ErrInvalidSideWeight)

	rooted, err := network.New(2, nil, true, 0)
	require.NoError(t, err)
	_, err = Attack(rooted, []int{0}, 1)
	assert.ErrorIs(t, err, ErrInvalidVictim, "the virtual root cannot be a victim")
}

func TestUnresolvedError_Truncates(t *testing.T) {
	nodes := make([]int, 15)
	for i := range nodes {
		nodes[i] = i
	}
	err := &UnresolvedError{Nodes: nodes}
	assert.Contains(t, err.Error(), "15 nodes [0 1 2 3 4 5 6 7 8 9 and 5 more]")
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestFrequencies(t *testing.T) {
	net := cycle(t, 0)
	res := &Result{
		Target:   []int{0, 0, 3, 3},
		Distance: []int{0, 1, 1, 0},
	}
	freqs := res.Frequencies(net, []int{3, 2, 0})
	assert.Equal(t, []Frequency{
		{Victim: 0, Attackers: 2},
		{Victim: 3, Attackers: 2},
		{Victim: 2, Attackers: 0},
	}, freqs)

	res.Target[1] = Unresolved
	res.Distance[1] = Unresolved
	freqs = res.Frequencies(net, []int{0, 3})
	assert.Equal(t, []Frequency{{Victim: 3, Attackers: 2}, {Victim: 0, Attackers: 1}}, freqs)
}

// nearest returns, for every node, the lowest victim id among the victims at
// the least hop count, and that hop count.
func nearest(n int, victims []int, neighbors func(u int) []int) (target, hops []int) {
	target = make([]int, n)
	hops = make([]int, n)
	for u := range target {
		target[u] = Unresolved
		hops[u] = -1
	}
	for _, v := range victims {
		dist := algorithms.BFSDistances(n, v, neighbors)
		for u, d := range dist {
			if d < 0 {
				continue
			}
			if hops[u] < 0 || d < hops[u] || (d == hops[u] && v < target[u]) {
				target[u], hops[u] = v, d
			}
		}
	}
	return target, hops
}

func TestAttackSingleLevelProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("distances are weighted shortest paths to the nearest victim", prop.ForAll(
		func(n, k, sideWeight int, side bool, seed uint64) bool {
			edges, err := graphgen.RandomConnected(n, 2*n, seed)
			if err != nil {
				return false
			}
			conn, relation, w := 0, network.In, 1
			if side {
				conn, relation, w = 1, network.Side, sideWeight
			}
			net, err := network.New(n, edges, false, conn)
			if err != nil {
				return false
			}
			vs := sampling.NewRNG(seed).Perm(n)[:min(k, n)]

			res, err := Attack(net, vs, sideWeight)
			if err != nil {
				return false
			}
			target, hops := nearest(n, vs, func(u int) []int { return net.Neighbors(u, relation) })
			for u := 0; u < n; u++ {
				if res.Target[u] != target[u] || res.Distance[u] != w*hops[u] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 30),
		gen.IntRange(1, 5),
		gen.IntRange(1, 5),
		gen.Bool(),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestAttackGrownNetworkProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	params := network.GrowParams{
		NumChildren:           3,
		NumChildrenSigma:      0.3,
		ProbMultiUpstream:     0.1,
		ProbSelfMultiUpstream: 0.3,
		ProbSidePeering:       0.2,
		ProbSelfSidePeering:   0.8,
	}
	expand := graphgen.NormalOrderGen{Sigma: 0.3, Inner: graphgen.RandomConnectedGen{N: 4, AvgDegree: 2}}

	properties.Property("every physical node of a grown network is resolved", prop.ForAll(
		func(count int, seed uint64) bool {
			rng := sampling.NewRNG(seed)
			net, err := network.NewFromGenerator(graphgen.CompleteGen{N: 3}, rng.Uint64(), false, 1)
			if err != nil {
				return false
			}
			if net.HGrow(expand, rng.Uint64()) != nil ||
				net.VGrow(params, rng.Uint64()) != nil ||
				net.HGrow(expand, rng.Uint64()) != nil {
				return false
			}

			vs := victims.PlaceRandomly(net, count, rng.Uint64())
			res, err := Attack(net, vs, 100)
			if err != nil {
				return false
			}
			total := 0
			for _, f := range res.Frequencies(net, vs) {
				total += f.Attackers
			}
			return total == net.NumLeaves()
		},
		gen.IntRange(1, 20),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
