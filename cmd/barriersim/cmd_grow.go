package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/barriersim/pkg/graphgen"
	"github.com/dd0wney/barriersim/pkg/logging"
	"github.com/dd0wney/barriersim/pkg/network"
)

func newGrowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Recursively grow a network from a single node",
		Long: `Start from a single node and grow it recursively: every node is exploded
into a random subnetwork and, while levels remain, gets a layer of children
that are grown in turn. Prints the counts before and after and checks the
result for inconsistencies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			seed, _ := flags.GetUint64("seed")
			if !flags.Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			levels, _ := flags.GetInt("levels")
			nodes, _ := flags.GetInt("nodes")
			degree, _ := flags.GetFloat64("degree")
			sigma, _ := flags.GetFloat64("sigma")
			dump, _ := flags.GetBool("print")

			params := network.GrowParams{
				NumChildren:           nodes,
				NumChildrenSigma:      sigma,
				ProbMultiUpstream:     0.1,
				ProbSelfMultiUpstream: 0.3,
				ProbSidePeering:       0.1,
				ProbSelfSidePeering:   0.8,
				ExplodeGen: graphgen.NormalOrderGen{
					Sigma: sigma,
					Inner: graphgen.RandomConnectedGen{N: nodes, AvgDegree: degree},
				},
			}

			net, err := network.New(1, nil, false, 0, network.WithLogger(logging.DefaultLogger()))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Vertices: %d\nEdges: %d\n", net.NumVertices(), net.NumEdges())

			if err := net.Grow(0, levels, params, seed); err != nil {
				return err
			}
			if err := net.Validate(); err != nil {
				fmt.Fprintln(out, errorStyle.Render("Network has inconsistencies!"))
				return err
			}
			fmt.Fprintln(out, successStyle.Render("Network is consistent"))
			fmt.Fprintf(out, "Vertices: %d\nEdges: %d\nLeaves: %d\nHeight: %d\n",
				net.NumVertices(), net.NumEdges(), net.NumLeaves(), net.Height())
			if dump {
				net.Print(out, false)
			}
			return nil
		},
	}
	cmd.Flags().Uint64("seed", 0, "Seed for the random number generator (default time based)")
	cmd.Flags().Int("levels", 3, "Growth levels below the start node")
	cmd.Flags().Int("nodes", 8, "Mean size of every exploded subnetwork and child layer")
	cmd.Flags().Float64("degree", 3.0, "Average degree of exploded subnetworks")
	cmd.Flags().Float64("sigma", 0.25, "Relative standard deviation of subnetwork and layer sizes")
	cmd.Flags().Bool("print", false, "Dump every physical node")
	return cmd
}
