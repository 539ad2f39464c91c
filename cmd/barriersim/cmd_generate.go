package main

import (
	"bufio"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/barriersim/pkg/graphgen"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <n> <m> [seed]",
		Short: "Print a random connected graph",
		Long: `Generate a connected graph on n vertices with roughly m edges, preferring
short links between randomly placed points. The output lists the vertices,
one per line, followed by one "u v" line per edge.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid vertex count %q: %w", args[0], err)
			}
			m, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid edge count %q: %w", args[1], err)
			}
			seed := uint64(time.Now().UnixNano())
			if len(args) == 3 {
				if seed, err = strconv.ParseUint(args[2], 10, 64); err != nil {
					return fmt.Errorf("invalid seed %q: %w", args[2], err)
				}
			}

			edges, err := graphgen.RandomConnected(n, m, seed)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			for u := 0; u < n; u++ {
				fmt.Fprintln(w, u)
			}
			for _, e := range edges {
				fmt.Fprintf(w, "%d %d\n", e.U, e.V)
			}
			return w.Flush()
		},
	}
}
