package simulation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/barriersim/pkg/graphgen"
	"github.com/dd0wney/barriersim/pkg/network"
	"github.com/dd0wney/barriersim/pkg/validation"
	"github.com/dd0wney/barriersim/pkg/victims"
)

// Config describes one simulation experiment.
type Config struct {
	// Network shapes the grown topology.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Placement chooses the victims.
	Placement PlacementConfig `json:"placement" yaml:"placement"`

	// SideWeight is the attack cost of a peering link; in links cost 1.
	SideWeight int `json:"side_weight" yaml:"side_weight"`

	// Reps is the number of independent repetitions.
	Reps int `json:"reps" yaml:"reps"`

	// Seed drives every random choice. Zero picks a time-based seed.
	Seed uint64 `json:"seed" yaml:"seed"`

	// ProgressEvery logs progress every that many repetitions; 0 disables.
	ProgressEvery int `json:"progress_every" yaml:"progress_every"`
}

// NetworkConfig configures the top level, the expansions and the layers.
type NetworkConfig struct {
	// TopNodes is the number of top-level providers, fully peered.
	TopNodes int `json:"n_top" yaml:"n_top"`

	// TopSideConns is the number of parallel peerings between top nodes.
	TopSideConns int `json:"top_side_conns" yaml:"top_side_conns"`

	// ExpandNodes is the mean size of an expanded subnetwork.
	ExpandNodes int `json:"n_expand" yaml:"n_expand"`

	// ExpandDegree is the mean degree inside an expanded subnetwork.
	ExpandDegree float64 `json:"expand_degree" yaml:"expand_degree"`

	// ExpandSigma is the relative standard deviation of the subnetwork size.
	ExpandSigma float64 `json:"n_expand_sigma" yaml:"n_expand_sigma"`

	// Layers is the number of provider levels.
	Layers int `json:"n_layers" yaml:"n_layers"`

	// Grow configures every vertical growth step.
	Grow network.GrowParams `json:"grow" yaml:"grow"`
}

// PlacementConfig selects the victim placement strategy.
type PlacementConfig struct {
	// Victims lists the victim counts tried on every network.
	Victims []int `json:"n_victims" yaml:"n_victims"`

	// Hierarchical places victims by flow distribution instead of uniformly.
	Hierarchical bool `json:"smart_distr" yaml:"smart_distr"`

	// Tries, Noise and Workers tune hierarchical placement.
	Tries   int     `json:"tries" yaml:"tries"`
	Noise   float64 `json:"noise" yaml:"noise"`
	Workers int     `json:"workers" yaml:"workers"`
}

// Options returns the hierarchical placement options.
func (p PlacementConfig) Options() victims.Options {
	return victims.Options{Tries: p.Tries, Noise: p.Noise, Workers: p.Workers}
}

// Default returns a Config with the stock experiment parameters.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			TopNodes:     10,
			TopSideConns: 2,
			ExpandNodes:  10,
			ExpandDegree: 3.0,
			ExpandSigma:  0.3,
			Layers:       2,
			Grow: network.GrowParams{
				NumChildren:           10,
				NumChildrenSigma:      0.3,
				ProbMultiUpstream:     0.1,
				ProbSelfMultiUpstream: 0.3,
				ProbSidePeering:       0.1,
				ProbSelfSidePeering:   0.8,
			},
		},
		Placement: PlacementConfig{
			Victims:      []int{10},
			Hierarchical: true,
			Tries:        1,
			Noise:        0.01,
		},
		SideWeight: 100,
		Reps:       1,
	}
}

// TopGenerator builds the fully peered top level.
func (c NetworkConfig) TopGenerator() graphgen.Generator {
	return graphgen.CompleteGen{N: c.TopNodes}
}

// ExpandGenerator builds expanded subnetworks of normally distributed size.
func (c NetworkConfig) ExpandGenerator() graphgen.Generator {
	return graphgen.NormalOrderGen{
		Sigma: c.ExpandSigma,
		Inner: graphgen.RandomConnectedGen{N: c.ExpandNodes, AvgDegree: c.ExpandDegree},
	}
}

// Validate checks the configuration, collecting every problem.
func (c *Config) Validate() error {
	return validation.NewConfigValidator("simulation").
		Custom("network.n_top", func() error { return validation.ValidateOrder(c.Network.TopNodes) }).
		Positive("network.top_side_conns", c.Network.TopSideConns).
		Custom("network.n_expand", func() error { return validation.ValidateOrder(c.Network.ExpandNodes) }).
		NonNegativeFloat("network.expand_degree", c.Network.ExpandDegree).
		NonNegativeFloat("network.n_expand_sigma", c.Network.ExpandSigma).
		MinInt("network.n_layers", c.Network.Layers, 1).
		When(c.Network.Layers > 1, func(cv *validation.ConfigValidator) {
			cv.Struct("network.grow", c.Network.Grow)
		}).
		NonEmptyInts("placement.n_victims", c.Placement.Victims).
		When(c.Placement.Hierarchical, func(cv *validation.ConfigValidator) {
			cv.Struct("placement", c.Placement.Options())
		}).
		NonNegative("side_weight", c.SideWeight).
		Positive("reps", c.Reps).
		NonNegative("progress_every", c.ProgressEvery).
		Validate()
}

// LoadConfig reads a YAML configuration from path on top of the defaults
// and applies environment overrides. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// ParseConfig decodes YAML on top of the defaults. An empty document yields
// the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BARRIERSIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	if v := os.Getenv("BARRIERSIM_REPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reps = n
		}
	}
	if v := os.Getenv("BARRIERSIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Placement.Workers = n
		}
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
