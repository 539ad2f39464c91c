// Package simulation drives repeated attack experiments: it grows a network,
// places victims, runs the attack and summarizes how evenly the victims
// share the attackers.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/barriersim/pkg/attack"
	"github.com/dd0wney/barriersim/pkg/logging"
	"github.com/dd0wney/barriersim/pkg/metrics"
	"github.com/dd0wney/barriersim/pkg/network"
	"github.com/dd0wney/barriersim/pkg/sampling"
	"github.com/dd0wney/barriersim/pkg/validation"
	"github.com/dd0wney/barriersim/pkg/victims"
)

// ErrInconsistentNetwork is returned when a grown network fails its
// consistency check.
var ErrInconsistentNetwork = errors.New("simulation: network has inconsistencies")

// Placement strategy labels
const (
	StrategyRandom       = "random"
	StrategyHierarchical = "hierarchical"
)

// NetworkSummary counts the parts of a grown network.
type NetworkSummary struct {
	Vertices int `json:"vertices" yaml:"vertices"`
	Edges    int `json:"edges" yaml:"edges"`
	Leaves   int `json:"leaves" yaml:"leaves"`
	Height   int `json:"height" yaml:"height"`
}

// FrequencyRow is one victim of the attacker histogram.
type FrequencyRow struct {
	Victim          int     `json:"victim" yaml:"victim"`
	Attackers       int     `json:"attackers" yaml:"attackers"`
	RelCatch        float64 `json:"relcatch" yaml:"relcatch"`
	Misdistribution float64 `json:"misdistribution" yaml:"misdistribution"`
}

// Detail is the full outcome of a single network and victim count.
type Detail struct {
	Network     NetworkSummary `json:"network" yaml:"network"`
	Placed      int            `json:"placed" yaml:"placed"`
	Frequencies []FrequencyRow `json:"frequencies" yaml:"frequencies"`
}

// Summary holds the statistics of every repetition for one victim count.
type Summary struct {
	Victims         int   `json:"victims" yaml:"victims"`
	RelCatch        Stats `json:"relcatch" yaml:"relcatch"`
	Misdistribution Stats `json:"misdistribution" yaml:"misdistribution"`
}

// Report is the result of a run. Single is set when the run had one
// repetition and one victim count.
type Report struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Seed      uint64        `json:"seed" yaml:"seed"`
	Reps      int           `json:"reps" yaml:"reps"`
	Strategy  string        `json:"strategy" yaml:"strategy"`
	Single    *Detail       `json:"single,omitempty" yaml:"single,omitempty"`
	Summaries []Summary     `json:"summaries" yaml:"summaries"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Simulator runs the experiment described by a Config.
type Simulator struct {
	cfg     Config
	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures a Simulator
type Option func(*Simulator)

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records run metrics in r
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Simulator) {
		if r != nil {
			s.metrics = r
		}
	}
}

// New validates cfg and returns a Simulator for it. A zero seed is replaced
// by the current time.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := validation.ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().Unix())
	}
	s := &Simulator{
		cfg:     cfg,
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the effective configuration, seed included.
func (s *Simulator) Config() Config {
	return s.cfg
}

// Strategy names the placement strategy in use.
func (s *Simulator) Strategy() string {
	if s.cfg.Placement.Hierarchical {
		return StrategyHierarchical
	}
	return StrategyRandom
}

// Run grows a network per repetition and attacks it once per victim count.
// It stops between repetitions when ctx is done.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	cfg := s.cfg
	runID := uuid.New().String()
	log := s.logger.With(logging.Component("simulation"), logging.RunID(runID))
	start := time.Now()

	report := &Report{
		RunID:    runID,
		Seed:     cfg.Seed,
		Reps:     cfg.Reps,
		Strategy: s.Strategy(),
	}
	counts := cfg.Placement.Victims
	relcatches := make([][]float64, len(counts))
	misdists := make([][]float64, len(counts))
	single := cfg.Reps == 1 && len(counts) == 1

	log.Info("simulation started",
		logging.Seed(cfg.Seed), logging.Int("reps", cfg.Reps), logging.Ints("victim_counts", counts),
		logging.String("strategy", report.Strategy))

	rng := sampling.NewRNG(cfg.Seed)
	for rep := 0; rep < cfg.Reps; rep++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation cancelled after %d repetitions: %w", rep, err)
		}
		if cfg.ProgressEvery > 0 && rep%cfg.ProgressEvery == 0 {
			log.Info("progress", logging.Int("rep", rep), logging.Int("reps", cfg.Reps))
		}

		net, err := s.growNetwork(sampling.ChildSeed(rng), log)
		if err != nil {
			return nil, err
		}
		summary := Describe(net)
		s.metrics.RecordNetwork(summary.Vertices, summary.Edges, summary.Leaves, summary.Height)

		for i, count := range counts {
			detail, err := s.attackOnce(net, summary, count, sampling.ChildSeed(rng), log)
			if err != nil {
				return nil, err
			}
			relcatch, misdist := 0.0, 0.0
			if len(detail.Frequencies) > 0 {
				relcatch = detail.Frequencies[0].RelCatch
				misdist = detail.Frequencies[0].Misdistribution
			}
			relcatches[i] = append(relcatches[i], relcatch)
			misdists[i] = append(misdists[i], misdist)
			s.metrics.RecordOutcome(count, relcatch, misdist)
			if single {
				report.Single = detail
			}
		}
		s.metrics.RecordRepetition()
	}

	for i, count := range counts {
		report.Summaries = append(report.Summaries, Summary{
			Victims:         count,
			RelCatch:        Summarize(relcatches[i]),
			Misdistribution: Summarize(misdists[i]),
		})
	}
	report.Elapsed = time.Since(start)
	s.metrics.UpdateSystemMetrics(start)
	log.Info("simulation finished", logging.Int("reps", cfg.Reps), logging.Latency(report.Elapsed))
	return report, nil
}

// Grow builds the network of one repetition: a fully peered top level,
// expanded, then one vertical growth and expansion per further layer. The
// network is checked after the top level and after growth.
func (s *Simulator) Grow(seed uint64) (*network.Network, error) {
	return s.growNetwork(seed, s.logger)
}

func (s *Simulator) growNetwork(seed uint64, log logging.Logger) (*network.Network, error) {
	nc := s.cfg.Network
	timer := logging.StartTimer(log, "network grown", logging.Seed(seed))
	net, err := s.grow(seed, log)
	if err != nil {
		s.metrics.RecordPhase(metrics.PhaseGrowth, timer.EndError(err), err)
		return nil, err
	}
	elapsed := timer.End(logging.Int("vertices", net.NumVertices()), logging.Int("layers", nc.Layers))
	s.metrics.RecordPhase(metrics.PhaseGrowth, elapsed, nil)
	return net, nil
}

func (s *Simulator) grow(seed uint64, log logging.Logger) (*network.Network, error) {
	nc := s.cfg.Network
	rng := sampling.NewRNG(seed)
	expand := nc.ExpandGenerator()

	net, err := network.NewFromGenerator(nc.TopGenerator(), rng.Uint64(), false, nc.TopSideConns,
		network.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("top level: %w", err)
	}
	if err := s.check(net, log); err != nil {
		return nil, err
	}

	if err := net.HGrow(expand, rng.Uint64()); err != nil {
		return nil, err
	}
	s.metrics.RecordGrowthStep("hgrow")
	for layer := 1; layer < nc.Layers; layer++ {
		if err := net.VGrow(nc.Grow, rng.Uint64()); err != nil {
			return nil, err
		}
		s.metrics.RecordGrowthStep("vgrow")
		if err := net.HGrow(expand, rng.Uint64()); err != nil {
			return nil, err
		}
		s.metrics.RecordGrowthStep("hgrow")
	}
	if err := s.check(net, log); err != nil {
		return nil, err
	}
	return net, nil
}

func (s *Simulator) check(net *network.Network, log logging.Logger) error {
	if err := net.Validate(); err != nil {
		s.metrics.RecordSanityFailure()
		log.Error("network failed its consistency check", logging.Error(err))
		return fmt.Errorf("%w: %w", ErrInconsistentNetwork, err)
	}
	return nil
}

// Place chooses count victims on net with the configured strategy.
func (s *Simulator) Place(net *network.Network, count int, seed uint64) ([]int, error) {
	return s.place(net, count, seed, s.logger)
}

func (s *Simulator) place(net *network.Network, count int, seed uint64, log logging.Logger) ([]int, error) {
	timer := logging.StartTimer(log, "victims placed", logging.Victims(count), logging.Seed(seed))
	var vs []int
	var err error
	if s.cfg.Placement.Hierarchical {
		opts := s.cfg.Placement.Options()
		opts.Logger = log
		vs, err = victims.PlaceHierarchically(net, count, seed, opts)
	} else {
		vs = victims.PlaceRandomly(net, count, seed)
	}
	if err != nil {
		s.metrics.RecordPhase(metrics.PhasePlacement, timer.EndError(err), err)
		return nil, fmt.Errorf("place %d victims: %w", count, err)
	}
	s.metrics.RecordPhase(metrics.PhasePlacement, timer.End(logging.Count(len(vs))), nil)
	s.metrics.RecordPlacement(s.Strategy(), len(vs))
	return vs, nil
}

func (s *Simulator) attackOnce(net *network.Network, summary NetworkSummary, count int, seed uint64, log logging.Logger) (*Detail, error) {
	vs, err := s.place(net, count, seed, log)
	if err != nil {
		return nil, err
	}

	timer := logging.StartTimer(log, "attack resolved", logging.Victims(len(vs)))
	res, err := attack.Attack(net, vs, s.cfg.SideWeight, attack.WithLogger(log))
	if err != nil {
		var ue *attack.UnresolvedError
		if errors.As(err, &ue) {
			s.metrics.RecordUnresolved(len(ue.Nodes))
		}
		s.metrics.RecordPhase(metrics.PhaseAttack, timer.EndError(err), err)
		return nil, fmt.Errorf("attack with %d victims: %w", len(vs), err)
	}
	s.metrics.RecordPhase(metrics.PhaseAttack, timer.End(), nil)

	return &Detail{
		Network:     summary,
		Placed:      len(vs),
		Frequencies: Rows(res.Frequencies(net, vs), summary.Leaves),
	}, nil
}

// Describe counts the vertices, edges, leaves and levels of net.
func Describe(net *network.Network) NetworkSummary {
	return NetworkSummary{
		Vertices: net.NumVertices(),
		Edges:    net.NumEdges(),
		Leaves:   net.NumLeaves(),
		Height:   net.Height(),
	}
}

// Rows turns an attacker histogram into relcatch rows. Relcatch is the
// share of leaves drawn to a victim; the misdistribution factor scales it by
// the victim count, so an even split scores 1.
func Rows(freqs []attack.Frequency, leaves int) []FrequencyRow {
	rows := make([]FrequencyRow, len(freqs))
	for i, f := range freqs {
		rows[i] = FrequencyRow{Victim: f.Victim, Attackers: f.Attackers}
		if leaves > 0 {
			rows[i].RelCatch = float64(f.Attackers) / float64(leaves)
			rows[i].Misdistribution = float64(f.Attackers) * float64(len(freqs)) / float64(leaves)
		}
	}
	return rows
}
