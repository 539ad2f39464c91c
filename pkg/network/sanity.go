package network

import (
	"github.com/dd0wney/barriersim/pkg/logging"
)

func count(list []int, x int) int {
	c := 0
	for _, y := range list {
		if y == x {
			c++
		}
	}
	return c
}

// validateBasic checks that the per-node arrays agree in length and that the
// per-depth index covers every node exactly once.
func (net *Network) validateBasic() error {
	n := len(net.owner)
	lengths := []int{len(net.subnetSize), len(net.depth)}
	for r := range net.nbrs {
		lengths = append(lengths, len(net.nbrs[r]))
	}
	for _, l := range lengths {
		if l != n {
			return violation("list-lengths", n, -1, "", n, l)
		}
	}

	total := 0
	for _, level := range net.depthwise {
		total += len(level)
	}
	if total != n {
		return violation("depthwise-count", n, -1, "", n, total)
	}
	return nil
}

// Validate checks every structural invariant and returns the first
// violation as an *InvariantError, or nil. It never mutates the network.
func (net *Network) Validate() error {
	if err := net.validateBasic(); err != nil {
		return err
	}
	n := net.Size()

	seen := make([]bool, n)
	for d, level := range net.depthwise {
		for _, u := range level {
			if u < 0 || u >= n {
				return violation("depthwise-range", u, -1, "", "node id", "out of range")
			}
			if seen[u] {
				return violation("depthwise-unique", u, -1, "", "listed once", "listed twice")
			}
			seen[u] = true
			if net.depth[u] != d {
				return violation("depthwise-depth", u, -1, "", d, net.depth[u])
			}
		}
	}

	height := 0
	sizes := make([]int, n)
	for u := 0; u < n; u++ {
		o := net.owner[u]
		if o != NoOwner {
			if o < 0 || o >= n {
				return violation("owner-range", u, -1, "", "node id or -1", o)
			}
			sizes[o]++
		}
		if !net.IsVirtual(u) && net.depth[u] > height {
			height = net.depth[u]
		}
	}
	if net.NumVertices() > 0 && height != net.Height() {
		return violation("height", -1, -1, "", height, net.Height())
	}

	for u := 0; u < n; u++ {
		if net.subnetSize[u] != sizes[u] {
			return violation("subnet-size", u, -1, "", sizes[u], net.subnetSize[u])
		}
	}

	degreeSum := 0
	for u := 0; u < n; u++ {
		for _, r := range Relations {
			for _, v := range net.nbrs[r][u] {
				if v == u {
					return violation("self-loop", u, v, r.String(), "no self-loop", "self-loop")
				}
				if v < 0 || v >= n {
					return violation("neighbor-range", u, v, r.String(), "node id", "out of range")
				}
			}
		}

		if net.IsVirtual(u) {
			if len(net.nbrs[In][u]) > 0 {
				return violation("virtual-edges", u, -1, In.String(), 0, len(net.nbrs[In][u]))
			}
			if len(net.nbrs[Down][u]) > 0 {
				return violation("virtual-edges", u, -1, Down.String(), 0, len(net.nbrs[Down][u]))
			}
			continue
		}

		degreeSum += net.Degree(u)
		for _, r := range Relations {
			inv := r.inverse()
			for _, v := range net.nbrs[r][u] {
				if net.IsVirtual(v) {
					return violation("physical-neighbor", u, v, r.String(), "physical", "virtual")
				}
				if want, got := count(net.nbrs[r][u], v), count(net.nbrs[inv][v], u); want != got {
					return violation("symmetry", u, v, r.String(), want, got)
				}
			}
		}
		for _, v := range net.nbrs[Up][u] {
			if net.depth[u] != net.depth[v]+1 {
				return violation("depth", u, v, Up.String(), net.depth[v]+1, net.depth[u])
			}
		}
	}

	if degreeSum%2 != 0 {
		return violation("degree-sum", -1, -1, "", "even", degreeSum)
	}
	return nil
}

// BasicSanityCheck verifies list lengths and the per-depth node count.
func (net *Network) BasicSanityCheck() bool {
	if err := net.validateBasic(); err != nil {
		net.report(err)
		return false
	}
	return true
}

// LongSanityCheck verifies every invariant and logs the first violation.
func (net *Network) LongSanityCheck() bool {
	if err := net.Validate(); err != nil {
		net.report(err)
		return false
	}
	return true
}

func (net *Network) report(err error) {
	fields := []logging.Field{logging.Error(err)}
	if ie, ok := err.(*InvariantError); ok {
		fields = append(fields,
			logging.String("check", ie.Check),
			logging.NodeID(ie.Node),
			logging.Neighbor(ie.Neighbor),
			logging.Relation(ie.Relation),
			logging.Expected(ie.Expected),
			logging.Actual(ie.Actual))
	}
	net.logger.Error("sanity check failed", fields...)
}
