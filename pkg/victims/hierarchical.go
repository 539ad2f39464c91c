package victims

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/dd0wney/barriersim/pkg/algorithms"
	"github.com/dd0wney/barriersim/pkg/logging"
	"github.com/dd0wney/barriersim/pkg/network"
	"github.com/dd0wney/barriersim/pkg/parallel"
	"github.com/dd0wney/barriersim/pkg/sampling"
	"github.com/dd0wney/barriersim/pkg/validation"
)

// Options tunes hierarchical placement.
type Options struct {
	// Tries is the number of trial splits compared whenever a node hands
	// more than one victim to more than one successor. Values below 2 take
	// the first split.
	Tries int `yaml:"tries" validate:"gte=0"`
	// Noise bounds the uniform noise added to normalized split weights.
	Noise float64 `yaml:"noise" validate:"gte=0"`
	// Workers sizes the pool that runs trials; 0 means one per CPU.
	Workers int `yaml:"workers" validate:"gte=0"`
	// Logger receives placement diagnostics. Nil discards them.
	Logger logging.Logger `yaml:"-" validate:"-"`
}

// BuildDAG derives the nesting DAG of net. A node whose owner sits at its
// own depth hangs below that owner. Any other node hangs below the
// upstreams of its same-depth subtree: for a physical node these are its
// up-neighbors, for an expanded node they are the up-neighbors its links
// were moved to.
func BuildDAG(net *network.Network) *algorithms.Graph {
	n := net.Size()
	g := algorithms.NewGraph(n)

	nested := func(x int) bool {
		o := net.Owner(x)
		return o != network.NoOwner && net.Depth(o) == net.Depth(x)
	}

	// Members always have larger ids than their owner, so a reverse sweep
	// sees every member before its owner.
	ups := make([][]int, n)
	for x := n - 1; x >= 0; x-- {
		if !net.IsVirtual(x) {
			ups[x] = append(ups[x], net.Up(x)...)
		}
		slices.Sort(ups[x])
		ups[x] = slices.Compact(ups[x])
		if nested(x) {
			o := net.Owner(x)
			ups[o] = append(ups[o], ups[x]...)
		}
	}

	for x := 0; x < n; x++ {
		if nested(x) {
			g.AddEdge(net.Owner(x), x)
			continue
		}
		for _, v := range ups[x] {
			g.AddEdge(v, x)
		}
	}
	return g
}

// Scores computes the fractional number of candidate leaves below every
// DAG node. Candidate sinks score 1 and other sinks 0; an inner node sums
// its successors' scores, each divided by that successor's predecessor
// count.
func Scores(g *algorithms.Graph, candidate func(u int) bool) ([]float64, error) {
	order, err := algorithms.ReverseTopologicalSort(g)
	if err != nil {
		return nil, err
	}
	score := make([]float64, g.Order())
	for _, u := range order {
		succs := g.Succs(u)
		if len(succs) == 0 {
			if candidate(u) {
				score[u] = 1
			}
			continue
		}
		for _, s := range succs {
			score[u] += score[s] / float64(len(g.Preds(s)))
		}
	}
	return score, nil
}

type placer struct {
	net   *network.Network
	g     *algorithms.Graph
	score []float64
	opts  Options
	pool  *parallel.WorkerPool
	log   logging.Logger
}

// Allocate runs the hierarchical flow distribution and returns the number
// of victims that reached every node. Victims are split among DAG sources
// and pushed down the topological order; only sinks keep their share.
func Allocate(net *network.Network, count int, seed uint64, opts Options) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}
	if err := validation.Struct(opts); err != nil {
		return nil, fmt.Errorf("victims: %w", err)
	}

	p := &placer{net: net, opts: opts, log: opts.Logger}
	if p.log == nil {
		p.log = logging.NewNopLogger()
	}
	p.log = p.log.With(logging.Component("victims"))

	p.g = BuildDAG(net)
	order, err := algorithms.TopologicalSort(p.g)
	if err != nil {
		return nil, fmt.Errorf("victims: nesting graph: %w", err)
	}

	height := net.Height()
	p.score, err = Scores(p.g, func(u int) bool {
		return !net.IsVirtual(u) && net.Depth(u) == height
	})
	if err != nil {
		return nil, err
	}

	if opts.Tries > 1 {
		p.pool, err = parallel.NewWorkerPool(opts.Workers, parallel.WithLogger(p.log))
		if err != nil {
			return nil, err
		}
		defer p.pool.Close()
	}

	rng := sampling.NewRNG(seed)
	alloc := make([]int, net.Size())

	sources, _ := p.g.SourcesAndSinks()
	shares, err := p.split(sources, count, rng)
	if err != nil {
		return nil, fmt.Errorf("victims: split among sources: %w", err)
	}
	for i, s := range sources {
		alloc[s] += shares[i]
	}

	for _, u := range order {
		succs := p.g.Succs(u)
		if alloc[u] == 0 || len(succs) == 0 {
			continue
		}
		shares, err := p.split(succs, alloc[u], rng)
		if err != nil {
			return nil, fmt.Errorf("victims: split below node %d: %w", u, err)
		}
		for i, s := range succs {
			alloc[s] += shares[i]
		}
		alloc[u] = 0
	}
	return alloc, nil
}

// weights returns the split weight of every node: its score apportioned
// over its predecessors.
func (p *placer) weights(nodes []int) []float64 {
	w := make([]float64, len(nodes))
	for i, s := range nodes {
		preds := max(1, len(p.g.Preds(s)))
		w[i] = p.score[s] / float64(preds)
	}
	return w
}

func (p *placer) draw(nodes []int, x int, rng *rand.Rand) ([]int, error) {
	return Distribute(perturb(p.weights(nodes), p.opts.Noise, rng), x, rng)
}

type trial struct {
	shares []int
	cost   float64
	err    error
}

// split hands x victims to nodes. With several tries it keeps the trial
// whose busiest victim serves the least score; the earliest trial wins ties.
func (p *placer) split(nodes []int, x int, rng *rand.Rand) ([]int, error) {
	if p.opts.Tries <= 1 || x <= 1 || len(nodes) <= 1 {
		return p.draw(nodes, x, rng)
	}

	seeds := make([]uint64, p.opts.Tries)
	for i := range seeds {
		seeds[i] = sampling.ChildSeed(rng)
	}
	trials, err := parallel.Map(p.pool, len(seeds), func(i int) trial {
		shares, err := p.draw(nodes, x, sampling.NewRNG(seeds[i]))
		if err != nil {
			return trial{err: err}
		}
		return trial{shares: shares, cost: p.maxLoad(nodes, shares)}
	})
	if err != nil {
		return nil, err
	}

	best := -1
	for i, t := range trials {
		if t.err != nil {
			return nil, t.err
		}
		if best < 0 || t.cost < trials[best].cost {
			best = i
		}
	}
	p.log.Debug("picked trial split",
		logging.Int("trial", best), logging.Float64("max_load", trials[best].cost),
		logging.Count(len(nodes)), logging.Victims(x))
	return trials[best].shares, nil
}

// maxLoad labels every node of the set with its nearest allocated node over
// in and side links and returns the largest score served per victim.
func (p *placer) maxLoad(nodes, shares []int) float64 {
	local := make(map[int]int, len(nodes))
	for i, u := range nodes {
		local[u] = i
	}

	var seeds []int
	for i, s := range shares {
		if s > 0 {
			seeds = append(seeds, i)
		}
	}
	label, _ := algorithms.MultiSourceBFS(len(nodes), seeds, func(i int) []int {
		u := nodes[i]
		var out []int
		for _, r := range [...]network.Relation{network.In, network.Side} {
			for _, v := range p.net.Neighbors(u, r) {
				if j, ok := local[v]; ok {
					out = append(out, j)
				}
			}
		}
		return out
	})

	load := make([]float64, len(nodes))
	for i, l := range label {
		if l != algorithms.Unlabeled {
			load[l] += p.score[nodes[i]]
		}
	}
	// Nodes no victim reaches are left out of every load.
	worst := 0.0
	for _, i := range seeds {
		worst = max(worst, load[i]/float64(shares[i]))
	}
	return worst
}

// PlaceHierarchically places count victims on deepest-level physical nodes
// by hierarchical flow distribution and returns them in ascending order.
// Asking for at least as many victims as there are leaves returns every
// leaf. A leaf that receives several victims is listed once.
func PlaceHierarchically(net *network.Network, count int, seed uint64, opts Options) ([]int, error) {
	leaves := net.Leaves()
	if count >= len(leaves) {
		return leaves, nil
	}
	alloc, err := Allocate(net, count, seed, opts)
	if err != nil {
		return nil, err
	}

	placed := make([]int, 0, count)
	for _, u := range leaves {
		if alloc[u] > 0 {
			placed = append(placed, u)
		}
	}
	slices.Sort(placed)
	if len(placed) < count && opts.Logger != nil {
		opts.Logger.Debug("victims merged on shared leaves",
			logging.Victims(count), logging.Count(len(placed)))
	}
	return placed, nil
}
