// Package network holds the hierarchical network model: physical nodes and
// virtual (aggregate) nodes arranged in depth levels and connected by four
// neighbor relations. It also implements the growth operations that refine a
// network level by level.
//
// A virtual node represents a subnetwork. Its members point at it through
// their owner and it counts them in its subnet size. Virtual nodes carry no
// edges once expanded; only physical nodes take part in traffic.
package network

import (
	"fmt"
	"io"

	"github.com/dd0wney/barriersim/pkg/graphgen"
	"github.com/dd0wney/barriersim/pkg/logging"
)

// NoOwner is the owner of nodes that belong to no subnetwork.
const NoOwner = -1

// Relation names one of the four neighbor sets of a node.
type Relation int

const (
	// In links nodes of the same subnetwork.
	In Relation = iota
	// Side links peers in different subnetworks at the same depth.
	Side
	// Up links a node to a provider one level shallower.
	Up
	// Down is the inverse of Up.
	Down
)

// Relations lists every relation in a fixed order.
var Relations = [...]Relation{In, Side, Up, Down}

func (r Relation) String() string {
	switch r {
	case In:
		return "in"
	case Side:
		return "side"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("relation(%d)", int(r))
	}
}

// inverse returns the relation that mirrors r on the other endpoint.
func (r Relation) inverse() Relation {
	switch r {
	case Up:
		return Down
	case Down:
		return Up
	default:
		return r
	}
}

// Network is a hierarchical multigraph. Neighbor lists are multisets: a
// repeated entry is a parallel link and is never deduplicated.
//
// Network is not safe for concurrent mutation.
type Network struct {
	owner      []int
	subnetSize []int
	depth      []int
	nbrs       [4][][]int // indexed by Relation
	depthwise  [][]int

	logger logging.Logger
}

// Option configures a Network
type Option func(*Network)

// WithLogger sets the logger used for diagnostics
func WithLogger(l logging.Logger) Option {
	return func(net *Network) {
		if l != nil {
			net.logger = l
		}
	}
}

func newEmpty(opts ...Option) *Network {
	net := &Network{
		depthwise: [][]int{{}},
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(net)
	}
	net.logger = net.logger.With(logging.Component("network"))
	return net
}

// New builds a single-level network of n nodes from an edge list over
// 0..n-1. With hasVirtualRoot the network gets an extra virtual node 0 that
// owns every other node, and edge endpoints are shifted by one. A positive
// sideConnectivity turns every input edge into that many parallel side
// links; otherwise each input edge becomes one in link.
func New(n int, edges []graphgen.Edge, hasVirtualRoot bool, sideConnectivity int, opts ...Option) (*Network, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d nodes", graphgen.ErrInvalidOrder, n)
	}
	for _, e := range edges {
		if e.U < 0 || e.V < 0 || e.U >= n || e.V >= n {
			return nil, fmt.Errorf("%w: edge (%d, %d) with %d nodes", ErrNodeOutOfRange, e.U, e.V, n)
		}
		if e.U == e.V {
			return nil, violation("self-loop", e.U, e.V, "input", "distinct endpoints", "loop")
		}
	}

	net := newEmpty(opts...)
	root := NoOwner
	if hasVirtualRoot {
		root = net.MakeNewVertices(1, NoOwner)
	}
	first := net.MakeNewVertices(n, root)

	for _, e := range edges {
		u, v := first+e.U, first+e.V
		if sideConnectivity > 0 {
			for i := 0; i < sideConnectivity; i++ {
				net.AddSideEdge(u, v)
			}
		} else {
			net.AddInEdge(u, v)
		}
	}
	return net, nil
}

// NewFromGenerator builds the top level from a generator run with seed.
func NewFromGenerator(gen graphgen.Generator, seed uint64, hasVirtualRoot bool, sideConnectivity int, opts ...Option) (*Network, error) {
	n, edges, err := gen.Generate(seed)
	if err != nil {
		return nil, fmt.Errorf("generate top level: %w", err)
	}
	return New(n, edges, hasVirtualRoot, sideConnectivity, opts...)
}

// makeVertices appends k physical nodes at the given depth owned by owner
// and registers them in the per-depth index.
func (net *Network) makeVertices(k, owner, depth int) int {
	first := net.Size()
	if k <= 0 {
		return first
	}
	if owner != NoOwner {
		net.subnetSize[owner] += k
	}
	for len(net.depthwise) <= depth {
		net.depthwise = append(net.depthwise, []int{})
	}
	for i := 0; i < k; i++ {
		net.owner = append(net.owner, owner)
		net.subnetSize = append(net.subnetSize, 0)
		net.depth = append(net.depth, depth)
		for r := range net.nbrs {
			net.nbrs[r] = append(net.nbrs[r], nil)
		}
		net.depthwise[depth] = append(net.depthwise[depth], first+i)
	}
	return first
}

// MakeNewVertices appends k physical nodes owned by owner (or NoOwner) and
// returns the id of the first one. New nodes sit at the owner's depth, or at
// depth 0 without an owner.
func (net *Network) MakeNewVertices(k, owner int) int {
	depth := 0
	if owner != NoOwner {
		depth = net.depth[owner]
	}
	return net.makeVertices(k, owner, depth)
}

// AddInEdge links u and v inside a subnetwork.
func (net *Network) AddInEdge(u, v int) {
	net.nbrs[In][u] = append(net.nbrs[In][u], v)
	net.nbrs[In][v] = append(net.nbrs[In][v], u)
}

// AddSideEdge adds a peering link between u and v.
func (net *Network) AddSideEdge(u, v int) {
	net.nbrs[Side][u] = append(net.nbrs[Side][u], v)
	net.nbrs[Side][v] = append(net.nbrs[Side][v], u)
}

func (net *Network) linkUp(u, v int) {
	net.nbrs[Up][u] = append(net.nbrs[Up][u], v)
	net.nbrs[Down][v] = append(net.nbrs[Down][v], u)
}

// AddUpwardEdge makes v an upstream of u. The edge is always inserted; a
// virtual v or a depth mismatch is logged and returned as an
// *InvariantError wrapping ErrInvalidUpwardEdge.
func (net *Network) AddUpwardEdge(u, v int) error {
	net.linkUp(u, v)

	var err *InvariantError
	switch {
	case net.IsVirtual(v):
		err = violation("upward-edge", u, v, Up.String(), "physical upstream", "virtual")
	case net.depth[u] != net.depth[v]+1:
		err = violation("upward-edge", u, v, Up.String(), net.depth[v]+1, net.depth[u])
	default:
		return nil
	}
	err.Cause = ErrInvalidUpwardEdge
	net.logger.Warn("invalid upward edge",
		logging.NodeID(u), logging.Neighbor(v),
		logging.Expected(err.Expected), logging.Actual(err.Actual))
	return err
}

// removeOne deletes one occurrence of x from the r-list of u.
func (net *Network) removeOne(u int, r Relation, x int) bool {
	list := net.nbrs[r][u]
	for i, y := range list {
		if y == x {
			net.nbrs[r][u] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Size returns the number of nodes, physical and virtual.
func (net *Network) Size() int {
	return len(net.owner)
}

// Height returns the deepest level index.
func (net *Network) Height() int {
	return len(net.depthwise) - 1
}

// Owner returns the virtual node u belongs to, or NoOwner.
func (net *Network) Owner(u int) int {
	return net.owner[u]
}

// SubnetSize returns the number of nodes owned by u; 0 for physical nodes.
func (net *Network) SubnetSize(u int) int {
	return net.subnetSize[u]
}

// Depth returns the level of u.
func (net *Network) Depth(u int) int {
	return net.depth[u]
}

// IsVirtual reports whether u stands for a subnetwork.
func (net *Network) IsVirtual(u int) bool {
	return net.subnetSize[u] > 0
}

// Neighbors returns the r-neighbors of u. The slice must not be modified.
func (net *Network) Neighbors(u int, r Relation) []int {
	return net.nbrs[r][u]
}

func (net *Network) In(u int) []int   { return net.nbrs[In][u] }
func (net *Network) Side(u int) []int { return net.nbrs[Side][u] }
func (net *Network) Up(u int) []int   { return net.nbrs[Up][u] }
func (net *Network) Down(u int) []int { return net.nbrs[Down][u] }

// Degree counts all links of u across the four relations.
func (net *Network) Degree(u int) int {
	d := 0
	for r := range net.nbrs {
		d += len(net.nbrs[r][u])
	}
	return d
}

// Depthwise returns the nodes at depth d in creation order. The slice must
// not be modified.
func (net *Network) Depthwise(d int) []int {
	return net.depthwise[d]
}

// Leaves returns the physical nodes of the deepest level.
func (net *Network) Leaves() []int {
	var leaves []int
	for _, u := range net.depthwise[net.Height()] {
		if !net.IsVirtual(u) {
			leaves = append(leaves, u)
		}
	}
	return leaves
}

// NumVertices counts physical nodes.
func (net *Network) NumVertices() int {
	n := 0
	for _, s := range net.subnetSize {
		if s == 0 {
			n++
		}
	}
	return n
}

// NumEdges counts links between physical nodes, parallel links included.
func (net *Network) NumEdges() int {
	m := 0
	for u := range net.subnetSize {
		if !net.IsVirtual(u) {
			m += net.Degree(u)
		}
	}
	if m%2 != 0 {
		net.logger.Error("degree sum is odd", logging.Int("degree_sum", m))
	}
	return m / 2
}

// NumLeaves counts physical nodes of the deepest level.
func (net *Network) NumLeaves() int {
	return len(net.Leaves())
}

// Pivot returns the first physical node, or -1 when there is none.
func (net *Network) Pivot() int {
	for u, s := range net.subnetSize {
		if s == 0 {
			return u
		}
	}
	return -1
}

// EdgeList returns every link between physical nodes once, as (u, v) with
// u < v, grouped by the lower endpoint and then by relation.
func (net *Network) EdgeList() []graphgen.Edge {
	var edges []graphgen.Edge
	for u := range net.subnetSize {
		if net.IsVirtual(u) {
			continue
		}
		for _, r := range Relations {
			for _, v := range net.nbrs[r][u] {
				if v > u {
					edges = append(edges, graphgen.Edge{U: u, V: v})
				}
			}
		}
	}
	return edges
}

// Print dumps every node and the per-depth index to w. Virtual nodes are
// skipped unless includeVirtual is set.
func (net *Network) Print(w io.Writer, includeVirtual bool) {
	for u := range net.owner {
		if !includeVirtual && net.IsVirtual(u) {
			continue
		}
		fmt.Fprintf(w, "%d:\n  owner: %d, subnet_size: %d, depth: %d,\n", u, net.owner[u], net.subnetSize[u], net.depth[u])
		for _, r := range Relations {
			fmt.Fprintf(w, "  %s: %v\n", r, net.nbrs[r][u])
		}
	}
	fmt.Fprintln(w, "depthwise:")
	for d, level := range net.depthwise {
		fmt.Fprintf(w, "  %d: %v\n", d, level)
	}
}
