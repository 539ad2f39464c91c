package graphgen

import (
	"github.com/dd0wney/barriersim/pkg/sampling"
)

// Generator produces a flat graph for a seed. It returns the vertex count
// alongside the edges because some generators pick the count themselves.
type Generator interface {
	Generate(seed uint64) (int, []Edge, error)
}

// Sized is a generator whose vertex count can be supplied per call.
type Sized interface {
	Generator
	// Order is the default vertex count.
	Order() int
	// GenerateOrder builds a graph with exactly n vertices.
	GenerateOrder(n int, seed uint64) ([]Edge, error)
}

// CycleGen generates the cycle on N vertices
type CycleGen struct {
	N int
}

func (g CycleGen) Order() int { return g.N }

func (g CycleGen) GenerateOrder(n int, _ uint64) ([]Edge, error) {
	if n < 0 {
		return nil, ErrInvalidOrder
	}
	return Cycle(n), nil
}

func (g CycleGen) Generate(seed uint64) (int, []Edge, error) {
	edges, err := g.GenerateOrder(g.N, seed)
	return g.N, edges, err
}

// CompleteGen generates the complete graph on N vertices
type CompleteGen struct {
	N int
}

func (g CompleteGen) Order() int { return g.N }

func (g CompleteGen) GenerateOrder(n int, _ uint64) ([]Edge, error) {
	if n < 0 {
		return nil, ErrInvalidOrder
	}
	return Complete(n), nil
}

func (g CompleteGen) Generate(seed uint64) (int, []Edge, error) {
	edges, err := g.GenerateOrder(g.N, seed)
	return g.N, edges, err
}

// RandomConnectedGen generates random connected graphs on N vertices with
// the given average degree.
type RandomConnectedGen struct {
	N         int
	AvgDegree float64
}

func (g RandomConnectedGen) Order() int { return g.N }

func (g RandomConnectedGen) GenerateOrder(n int, seed uint64) ([]Edge, error) {
	return RandomConnected(n, int(float64(n)*g.AvgDegree/2), seed)
}

func (g RandomConnectedGen) Generate(seed uint64) (int, []Edge, error) {
	edges, err := g.GenerateOrder(g.N, seed)
	return g.N, edges, err
}

// NormalOrderGen wraps a sized generator and perturbs its vertex count by a
// normal factor centred at 1 with standard deviation Sigma (floored at 1).
// The perturbed count is passed to Inner explicitly and returned, so the
// wrapped generator is never mutated.
type NormalOrderGen struct {
	Sigma float64
	Inner Sized
}

func (g NormalOrderGen) Order() int { return g.Inner.Order() }

// GenerateOrder perturbs n rather than the inner default order.
func (g NormalOrderGen) GenerateOrder(n int, seed uint64) ([]Edge, error) {
	_, edges, err := g.generate(n, seed)
	return edges, err
}

func (g NormalOrderGen) Generate(seed uint64) (int, []Edge, error) {
	return g.generate(g.Inner.Order(), seed)
}

func (g NormalOrderGen) generate(mean int, seed uint64) (int, []Edge, error) {
	rng := sampling.NewRNG(seed)
	orderRNG := sampling.NewRNG(sampling.ChildSeed(rng))
	n := sampling.SigmaN(mean, g.Sigma, orderRNG)

	edges, err := g.Inner.GenerateOrder(n, sampling.ChildSeed(rng))
	if err != nil {
		return 0, nil, err
	}
	return n, edges, nil
}
