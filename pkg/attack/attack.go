// Package attack resolves, for every node of a network, the victim its
// attack traffic ends up at and the cost of getting there.
//
// Resolution runs level by level. The bottom-up pass lets a node with a
// resolved downstream adopt its nearest victim and then spreads targets over
// the level's in and side links with Dijkstra. The top-down pass does the
// same for nodes still unresolved, adopting through their upstreams.
// Distances restart at zero wherever a target is adopted across levels, so
// they measure the cost within the level that reached the node.
package attack

import (
	"container/heap"
	"fmt"

	"github.com/dd0wney/barriersim/pkg/logging"
	"github.com/dd0wney/barriersim/pkg/network"
)

// Unresolved marks a node without a target or distance.
const Unresolved = -1

// Result holds the victim and distance of every node id. Virtual nodes and
// unreachable physical nodes keep Unresolved.
type Result struct {
	Target   []int
	Distance []int
}

// Resolved reports whether u has a target.
func (r *Result) Resolved(u int) bool {
	return r.Target[u] != Unresolved && r.Distance[u] >= 0
}

// Option configures Attack
type Option func(*engine)

// WithLogger sets the logger used for diagnostics
func WithLogger(l logging.Logger) Option {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}

type engine struct {
	net        *network.Network
	sideWeight int
	res        *Result
	// origin is the depth at which the target of a node was found. A
	// top-down adoption inherits it from the upstream.
	origin  []int
	visited []bool
	logger  logging.Logger
}

// Attack assigns every physical node its nearest victim. In links cost 1 and
// side links cost sideWeight. Among equally near victims the lower id wins.
//
// Nodes that no victim reaches are logged and reported as an
// *UnresolvedError; the partial result is returned alongside it.
func Attack(net *network.Network, victims []int, sideWeight int, opts ...Option) (*Result, error) {
	if sideWeight < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSideWeight, sideWeight)
	}
	n := net.Size()
	for _, v := range victims {
		if v < 0 || v >= n {
			return nil, fmt.Errorf("%w: node %d out of range [0, %d)", ErrInvalidVictim, v, n)
		}
		if net.IsVirtual(v) {
			return nil, fmt.Errorf("%w: node %d is virtual", ErrInvalidVictim, v)
		}
	}

	e := &engine{
		net:        net,
		sideWeight: sideWeight,
		res: &Result{
			Target:   make([]int, n),
			Distance: make([]int, n),
		},
		origin:  make([]int, n),
		visited: make([]bool, n),
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(logging.Component("attack"))

	for u := 0; u < n; u++ {
		e.res.Target[u] = Unresolved
		e.res.Distance[u] = Unresolved
		e.origin[u] = net.Depth(u)
	}
	for _, v := range victims {
		e.res.Target[v] = v
		e.res.Distance[v] = 0
	}

	h := net.Height()
	for d := h; d >= 0; d-- {
		e.dijkstra(e.bottomUp(d))
	}
	for d := 1; d <= h; d++ {
		e.dijkstra(e.topDown(d))
	}

	var unresolved []int
	for u := 0; u < n; u++ {
		if !net.IsVirtual(u) && !e.res.Resolved(u) {
			unresolved = append(unresolved, u)
			e.logger.Debug("node left without target",
				logging.NodeID(u), logging.Depth(net.Depth(u)),
				logging.Int("target", e.res.Target[u]), logging.Int("distance", e.res.Distance[u]))
		}
	}
	if len(unresolved) > 0 {
		err := &UnresolvedError{Nodes: unresolved}
		e.logger.Error("attack left nodes unresolved",
			logging.Count(len(unresolved)), logging.Victims(len(victims)), logging.Error(err))
		return e.res, err
	}

	e.logger.Debug("attack resolved",
		logging.Victims(len(victims)), logging.Count(n), logging.Int("side_weight", sideWeight))
	return e.res, nil
}

// bottomUp seeds level d: an unresolved node adopts the resolved
// downstream with the least (distance, victim) at distance zero, and every
// resolved node of the level enters the queue.
func (e *engine) bottomUp(d int) *itemHeap {
	res := e.res
	pq := &itemHeap{}
	for _, u := range e.net.Depthwise(d) {
		if res.Target[u] == Unresolved {
			best := -1
			for _, v := range e.net.Down(u) {
				if !res.Resolved(v) {
					continue
				}
				if best < 0 || pairLess(res.Distance[v], res.Target[v], res.Distance[best], res.Target[best]) {
					best = v
				}
			}
			if best >= 0 {
				res.Target[u] = res.Target[best]
				res.Distance[u] = 0
			}
		}
		if res.Distance[u] != Unresolved {
			*pq = append(*pq, item{dist: res.Distance[u], target: res.Target[u], node: u})
		}
	}
	return pq
}

// topDown seeds level d with the nodes the bottom-up pass missed: each adopts
// the resolved upstream whose target was found at the shallowest depth,
// then by (distance, victim).
func (e *engine) topDown(d int) *itemHeap {
	res := e.res
	pq := &itemHeap{}
	for _, u := range e.net.Depthwise(d) {
		if res.Distance[u] != Unresolved {
			continue
		}
		best := -1
		for _, v := range e.net.Up(u) {
			if !res.Resolved(v) {
				continue
			}
			if best < 0 || e.upstreamLess(v, best) {
				best = v
			}
		}
		if best < 0 {
			continue
		}
		res.Target[u] = res.Target[best]
		res.Distance[u] = 0
		e.origin[u] = e.origin[best]
		*pq = append(*pq, item{dist: 0, target: res.Target[u], node: u})
	}
	return pq
}

func (e *engine) upstreamLess(a, b int) bool {
	if e.origin[a] != e.origin[b] {
		return e.origin[a] < e.origin[b]
	}
	return pairLess(e.res.Distance[a], e.res.Target[a], e.res.Distance[b], e.res.Target[b])
}

// pairLess compares (distance, victim) pairs lexicographically.
func pairLess(d1, t1, d2, t2 int) bool {
	if d1 != d2 {
		return d1 < d2
	}
	return t1 < t2
}

// dijkstra settles the queued nodes and spreads their targets over in and
// side links. A node is settled once; a neighbor is relaxed only by a
// strictly smaller (distance, victim) pair.
func (e *engine) dijkstra(pq *itemHeap) {
	res := e.res
	heap.Init(pq)
	for pq.Len() > 0 {
		it := heap.Pop(pq).(item)
		u := it.node
		if e.visited[u] {
			continue
		}
		e.visited[u] = true

		// Side links are relaxed like in links, so targets can travel
		// through any number of peerings.
		for _, l := range [...]struct {
			r network.Relation
			w int
		}{{network.In, 1}, {network.Side, e.sideWeight}} {
			for _, v := range e.net.Neighbors(u, l.r) {
				if e.visited[v] {
					continue
				}
				nd := res.Distance[u] + l.w
				if res.Distance[v] == Unresolved || pairLess(nd, res.Target[u], res.Distance[v], res.Target[v]) {
					res.Distance[v] = nd
					res.Target[v] = res.Target[u]
					e.origin[v] = e.origin[u]
					heap.Push(pq, item{dist: nd, target: res.Target[u], node: v})
				}
			}
		}
	}
}
