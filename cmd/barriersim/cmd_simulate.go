package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/barriersim/pkg/logging"
	"github.com/dd0wney/barriersim/pkg/metrics"
	"github.com/dd0wney/barriersim/pkg/simulation"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Grow networks, place victims and attack them",
		Long: `Run the configured experiment. Every repetition grows a fresh network
and attacks it once per victim count. A single repetition with a single
victim count prints the per-victim attacker table; otherwise relcatch and
misdistribution statistics are printed per victim count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSimulationConfig(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			metricsOut, _ := cmd.Flags().GetString("metrics-out")

			reg := metrics.NewRegistry()
			sim, err := simulation.New(*cfg,
				simulation.WithLogger(logging.DefaultLogger()),
				simulation.WithMetrics(reg))
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := sim.Run(ctx)
			if err != nil {
				return err
			}

			if metricsOut != "" {
				if err := reg.WriteTextfile(metricsOut); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			return writeReport(cmd, format, report)
		},
	}

	cmd.Flags().String("config", "", "YAML configuration file")
	cmd.Flags().Uint64("seed", 0, "Seed for the random number generator (0 = time based)")
	cmd.Flags().Int("reps", 1, "Number of times the experiment is repeated")
	cmd.Flags().IntSlice("victims", []int{10}, "Victim counts to try on every network")
	cmd.Flags().Bool("random", false, "Place victims uniformly instead of hierarchically")
	cmd.Flags().Int("tries", 1, "Trial splits per hierarchical placement step")
	cmd.Flags().Float64("noise", 0.01, "Noise added to hierarchical split weights")
	cmd.Flags().Int("side-weight", 100, "Attack cost of a peering link")
	cmd.Flags().Int("workers", 0, "Workers running placement trials (0 = one per CPU)")
	cmd.Flags().Int("progress", 0, "Log progress every that many repetitions")
	cmd.Flags().String("format", "text", "Output format: text, json or yaml")
	cmd.Flags().String("metrics-out", "", "Write Prometheus metrics to this file")
	return cmd
}

// loadSimulationConfig reads --config (or the defaults) and applies the
// flags the user set explicitly.
func loadSimulationConfig(cmd *cobra.Command) (*simulation.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg := simulation.Default()
	if path != "" {
		loaded, err := simulation.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("reps") {
		cfg.Reps, _ = flags.GetInt("reps")
	}
	if flags.Changed("victims") {
		cfg.Placement.Victims, _ = flags.GetIntSlice("victims")
	}
	if flags.Changed("random") {
		random, _ := flags.GetBool("random")
		cfg.Placement.Hierarchical = !random
	}
	if flags.Changed("tries") {
		cfg.Placement.Tries, _ = flags.GetInt("tries")
	}
	if flags.Changed("noise") {
		cfg.Placement.Noise, _ = flags.GetFloat64("noise")
	}
	if flags.Changed("side-weight") {
		cfg.SideWeight, _ = flags.GetInt("side-weight")
	}
	if flags.Changed("workers") {
		cfg.Placement.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("progress") {
		cfg.ProgressEvery, _ = flags.GetInt("progress")
	}
	return cfg, nil
}

func writeReport(cmd *cobra.Command, format string, report *simulation.Report) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
	case "text":
		fmt.Fprint(out, renderReport(report))
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, yaml)", format)
	}
	return nil
}
