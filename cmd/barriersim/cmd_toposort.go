package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/barriersim/pkg/algorithms"
)

func newToposortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toposort [file]",
		Short: "Topologically sort a directed graph",
		Long: `Read "n m" followed by m directed edges "u v" over nodes 0..n-1 and print
a topological order on one line. Input comes from the file argument or stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			g, err := readGraph(in)
			if err != nil {
				return err
			}
			order, err := algorithms.TopologicalSort(g)
			if err != nil {
				return err
			}

			showEnds, _ := cmd.Flags().GetBool("sources")
			if showEnds {
				sources, sinks := g.SourcesAndSinks()
				fmt.Fprintf(cmd.OutOrStdout(), "sources: %v\nsinks: %v\n", sources, sinks)
			}
			parts := make([]string, len(order))
			for i, u := range order {
				parts[i] = strconv.Itoa(u)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
			return nil
		},
	}
	cmd.Flags().Bool("sources", false, "Also print the sources and sinks")
	return cmd
}

// readGraph parses whitespace separated "n m u1 v1 ... um vm".
func readGraph(r io.Reader) (*algorithms.Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func(what string) (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("unexpected end of input reading %s", what)
		}
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q", what, sc.Text())
		}
		return v, nil
	}

	n, err := next("node count")
	if err != nil {
		return nil, err
	}
	m, err := next("edge count")
	if err != nil {
		return nil, err
	}
	if n < 0 || m < 0 {
		return nil, errors.New("node and edge counts must be non-negative")
	}

	g := algorithms.NewGraph(n)
	for i := 0; i < m; i++ {
		u, err := next("edge source")
		if err != nil {
			return nil, err
		}
		v, err := next("edge target")
		if err != nil {
			return nil, err
		}
		if u < 0 || u >= n || v < 0 || v >= n {
			return nil, fmt.Errorf("edge %d (%d, %d) is outside 0..%d", i, u, v, n-1)
		}
		g.AddEdge(u, v)
	}
	return g, nil
}
