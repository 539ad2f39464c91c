package network

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/dd0wney/barriersim/pkg/graphgen"
	"github.com/dd0wney/barriersim/pkg/logging"
	"github.com/dd0wney/barriersim/pkg/sampling"
	"github.com/dd0wney/barriersim/pkg/validation"
)

// ErrEmptyExpansion is returned when a generator yields no vertices for an
// expansion, leaving nowhere to attach the expanded node's links.
var ErrEmptyExpansion = errors.New("expansion generated no vertices")

// GrowParams configures vertical and recursive growth.
type GrowParams struct {
	// NumChildren is the mean number of children per parent.
	NumChildren int `yaml:"num_children" validate:"gte=1"`
	// NumChildrenSigma is the relative standard deviation of the child count.
	NumChildrenSigma float64 `yaml:"num_children_sigma" validate:"gte=0"`
	// ProbMultiUpstream is the probability of each additional upstream.
	ProbMultiUpstream float64 `yaml:"prob_multi_upstream" validate:"gte=0,lt=1"`
	// ProbSelfMultiUpstream is the chance an additional upstream is the
	// parent itself rather than one of its local or peer neighbors.
	ProbSelfMultiUpstream float64 `yaml:"prob_self_multi_upstream" validate:"gte=0,lte=1"`
	// ProbSidePeering is the probability of each additional peering link.
	ProbSidePeering float64 `yaml:"prob_side_peering" validate:"gte=0,lt=1"`
	// ProbSelfSidePeering is the chance a peer is taken from the chosen
	// upstream's own children rather than a neighbor's.
	ProbSelfSidePeering float64 `yaml:"prob_self_side_peering" validate:"gte=0,lte=1"`
	// ExplodeGen builds the subnetworks created by Grow. VGrow ignores it.
	ExplodeGen graphgen.Generator `yaml:"-" validate:"-"`
}

// Validate checks the parameter ranges. Loop probabilities must be below 1.
func (p GrowParams) Validate() error {
	if err := validation.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// ExpandNode replaces the physical node u by a subnetwork built by gen. The
// new nodes share u's depth, are owned by u and are joined by in links.
// Every link of u is then moved to a uniformly random new node with its
// relation and direction kept, so u ends up virtual with no links.
// It returns the first new id and the number of new nodes.
func (net *Network) ExpandNode(u int, gen graphgen.Generator, seed uint64) (first, size int, err error) {
	if u < 0 || u >= net.Size() {
		return 0, 0, fmt.Errorf("%w: %d", ErrNodeOutOfRange, u)
	}
	if net.IsVirtual(u) {
		ie := violation("expand", u, -1, "", "physical node", "virtual node")
		ie.Cause = ErrVirtualExpansion
		net.logger.Error("attempt to expand a virtual node", logging.NodeID(u))
		return 0, 0, ie
	}

	rng := sampling.NewRNG(seed)
	n, edges, err := gen.Generate(sampling.ChildSeed(rng))
	if err != nil {
		return 0, 0, fmt.Errorf("expand node %d: %w", u, err)
	}
	if n < 1 {
		return 0, 0, fmt.Errorf("expand node %d: %w", u, ErrEmptyExpansion)
	}
	for _, e := range edges {
		if e.U < 0 || e.V < 0 || e.U >= n || e.V >= n || e.U == e.V {
			return 0, 0, fmt.Errorf("expand node %d: %w: generated edge (%d, %d) with %d vertices",
				u, ErrNodeOutOfRange, e.U, e.V, n)
		}
	}

	first = net.makeVertices(n, u, net.depth[u])
	for _, e := range edges {
		net.AddInEdge(first+e.U, first+e.V)
	}

	for _, r := range [...]Relation{Side, Up, Down, In} {
		old := net.nbrs[r][u]
		net.nbrs[r][u] = nil
		inv := r.inverse()
		for _, v := range old {
			if !net.removeOne(v, inv, u) {
				net.logger.Error("missing reverse link during expansion",
					logging.NodeID(v), logging.Neighbor(u), logging.Relation(inv.String()))
			}
			u2 := first + rng.IntN(n)
			switch r {
			case Side:
				net.AddSideEdge(u2, v)
			case In:
				net.AddInEdge(u2, v)
			case Up:
				net.linkUp(u2, v)
			case Down:
				net.linkUp(v, u2)
			}
		}
	}

	net.logger.Debug("expanded node",
		logging.NodeID(u), logging.Depth(net.depth[u]), logging.Count(n), logging.Int("edges", len(edges)))
	return first, n, nil
}

// HGrow expands every physical node of the deepest level, each with its own
// seed drawn from seed.
func (net *Network) HGrow(gen graphgen.Generator, seed uint64) error {
	rng := sampling.NewRNG(seed)
	d := net.Height()
	leaves := append([]int(nil), net.depthwise[d]...)
	expanded := 0
	for _, u := range leaves {
		if net.IsVirtual(u) {
			continue
		}
		if _, _, err := net.ExpandNode(u, gen, sampling.ChildSeed(rng)); err != nil {
			return fmt.Errorf("hgrow depth %d: %w", d, err)
		}
		expanded++
	}
	net.logger.Debug("hgrow finished", logging.Depth(d), logging.Count(expanded), logging.Seed(seed))
	return nil
}

// VGrow adds a new deepest level. Every physical node of the current deepest
// level gets a normally distributed number of children linked up to it,
// children may gain extra upstreams (multi-homing), and finally the new
// level gets peering links.
func (net *Network) VGrow(params GrowParams, seed uint64) error {
	if err := params.Validate(); err != nil {
		return err
	}

	parents := append([]int(nil), net.depthwise[net.Height()]...)
	newDepth := net.Height() + 1
	net.depthwise = append(net.depthwise, make([]int, 0, params.NumChildren*len(parents)))

	rng1 := sampling.NewRNG(seed)
	rng2 := sampling.NewRNG(sampling.ChildSeed(rng1))
	for _, u := range parents {
		if net.IsVirtual(u) {
			continue
		}
		net.addChildren(u, params, sampling.NewRNG(sampling.ChildSeed(rng2)))
	}

	rng2 = sampling.NewRNG(sampling.ChildSeed(rng1))
	for _, v := range net.depthwise[newDepth] {
		if err := net.peerLoop(v, params, sampling.NewRNG(sampling.ChildSeed(rng2))); err != nil {
			return err
		}
	}

	net.logger.Debug("vgrow finished",
		logging.Depth(newDepth), logging.Count(len(net.depthwise[newDepth])), logging.Seed(seed))
	return nil
}

// addChildren gives the physical node u its children one level deeper and
// returns them. The children join u's owner, matching the subnetwork u
// belongs to.
func (net *Network) addChildren(u int, params GrowParams, rng *rand.Rand) []int {
	n := sampling.SigmaN(params.NumChildren, params.NumChildrenSigma, rng)
	first := net.makeVertices(n, net.owner[u], net.depth[u]+1)
	children := make([]int, 0, n)
	for v := first; v < first+n; v++ {
		net.linkUp(v, u)
		net.multiHome(v, u, params, sampling.NewRNG(sampling.ChildSeed(rng)))
		children = append(children, v)
	}
	return children
}

// multiHome adds extra upstreams to the child v of u while draws succeed.
// Each extra upstream is u itself or one of u's local or peer neighbors.
func (net *Network) multiHome(v, u int, params GrowParams, rng *rand.Rand) {
	for sampling.Chance(rng, params.ProbMultiUpstream) {
		u2 := u
		if len(net.nbrs[In][u])+len(net.nbrs[Side][u]) > 0 && !sampling.Chance(rng, params.ProbSelfMultiUpstream) {
			// Cannot fail: the pools are non-empty.
			u2, _ = sampling.UniformTwo(net.nbrs[In][u], net.nbrs[Side][u], rng)
		}
		net.linkUp(v, u2)
	}
}

// peerLoop adds peering links from v while draws succeed.
func (net *Network) peerLoop(v int, params GrowParams, rng *rand.Rand) error {
	for sampling.Chance(rng, params.ProbSidePeering) {
		if err := net.peer(v, params, rng); err != nil {
			return err
		}
	}
	return nil
}

// peer links v to a sibling-like node: it picks an upstream of v, favoring
// upstreams with more other children, optionally moves to a local or peer
// neighbor of that upstream, and peers with one of its physical children
// other than v.
func (net *Network) peer(v int, params GrowParams, rng *rand.Rand) error {
	up := net.nbrs[Up][v]
	var items, weights []int
	for _, u := range up {
		if k := len(net.nbrs[Down][u]); k > 1 {
			items = append(items, u)
			weights = append(weights, k-1)
		}
	}

	var u int
	var err error
	if len(items) == 0 {
		u, err = sampling.Uniform(up, rng)
	} else {
		u, err = sampling.Weighted(items, weights, rng)
	}
	if err != nil {
		net.logger.Error("peering node has no upstream", logging.NodeID(v), logging.Error(err))
		return fmt.Errorf("peer node %d: %w", v, err)
	}

	u2 := u
	if len(net.nbrs[In][u])+len(net.nbrs[Side][u]) > 0 && !sampling.Chance(rng, params.ProbSelfSidePeering) {
		u2, _ = sampling.UniformTwo(net.nbrs[In][u], net.nbrs[Side][u], rng)
	}

	candidates := make([]int, 0, len(net.nbrs[Down][u2]))
	for _, w := range net.nbrs[Down][u2] {
		if !net.IsVirtual(w) {
			candidates = append(candidates, w)
		}
	}
	if v2 := sampling.Other(candidates, v, rng); v2 != v {
		net.AddSideEdge(v, v2)
	}
	return nil
}

// Grow refines u recursively: u is expanded with params.ExplodeGen and, while
// levels remain, every new node gets a child layer (with the same
// multi-homing and peering rules as VGrow) and each child is grown with one
// level less.
func (net *Network) Grow(u, levels int, params GrowParams, seed uint64) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if params.ExplodeGen == nil {
		return fmt.Errorf("%w: ExplodeGen is required", ErrInvalidParams)
	}
	if levels < 1 {
		return fmt.Errorf("%w: levels must be at least 1, got %d", ErrInvalidParams, levels)
	}
	return net.grow(u, levels, params, seed)
}

func (net *Network) grow(u, levels int, params GrowParams, seed uint64) error {
	rng := sampling.NewRNG(seed)
	first, n, err := net.ExpandNode(u, params.ExplodeGen, sampling.ChildSeed(rng))
	if err != nil {
		return fmt.Errorf("grow node %d: %w", u, err)
	}
	if levels == 1 {
		return nil
	}

	var children []int
	for w := first; w < first+n; w++ {
		children = append(children, net.addChildren(w, params, sampling.NewRNG(sampling.ChildSeed(rng)))...)
	}

	peerRNG := sampling.NewRNG(sampling.ChildSeed(rng))
	for _, c := range children {
		if err := net.peerLoop(c, params, sampling.NewRNG(sampling.ChildSeed(peerRNG))); err != nil {
			return err
		}
	}

	for _, c := range children {
		if err := net.grow(c, levels-1, params, sampling.ChildSeed(rng)); err != nil {
			return err
		}
	}

	net.logger.Debug("grew node",
		logging.NodeID(u), logging.Int("levels", levels), logging.Count(len(children)))
	return nil
}
