package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reductions/internal/graph"
)

// NeighborResult is the to/from commands' payload.
type NeighborResult struct {
	Root      string           `json:"root"`
	Direction string           `json:"direction"` // "incoming" | "outgoing"
	Hops      int              `json:"hops"`
	Neighbors []graph.Neighbor `json:"neighbors"`
}

// NewToCommand creates the to command: problems that reduce to a problem.
func NewToCommand(rootOpts *RootOptions) *cobra.Command {
	return newNeighborCommand(rootOpts, "to", "List problems that reduce to <problem>", "incoming")
}

// NewFromCommand creates the from command: problems a problem reduces to.
func NewFromCommand(rootOpts *RootOptions) *cobra.Command {
	return newNeighborCommand(rootOpts, "from", "List problems <problem> reduces to", "outgoing")
}

func newNeighborCommand(rootOpts *RootOptions, use, short, direction string) *cobra.Command {
	var hops int

	cmd := &cobra.Command{
		Use:           use + " <problem>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			if hops < 1 {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument,
					fmt.Sprintf("--hops must be at least 1, got %d", hops), nil)
			}
			g, err := rootOpts.Graph()
			if err != nil {
				return failLoad(formatter, err)
			}
			name := args[0]
			if !g.HasProblem(name) {
				return formatter.Fail(ExitCommandError, ErrCodeUnknownProblem,
					fmt.Sprintf("unknown problem %q", name), nil)
			}

			result := NeighborResult{Root: name, Direction: direction, Hops: hops}
			if direction == "incoming" {
				result.Neighbors = g.Incoming(name, hops)
			} else {
				result.Neighbors = g.Outgoing(name, hops)
			}
			if result.Neighbors == nil {
				result.Neighbors = []graph.Neighbor{}
			}

			if formatter.Format == "json" {
				return formatter.Success(result)
			}
			writeNeighborTree(formatter, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&hops, "hops", 1, "maximum number of reductions away")

	return cmd
}

// writeNeighborTree prints the BFS tree depth-first so children sit under
// their parent.
func writeNeighborTree(f *OutputFormatter, r NeighborResult) {
	arrow := "->"
	if r.Direction == "incoming" {
		arrow = "<-"
	}
	children := make(map[string][]graph.Neighbor)
	for _, n := range r.Neighbors {
		children[n.Parent] = append(children[n.Parent], n)
	}

	fmt.Fprintln(f.Writer, r.Root)
	var walk func(parent string)
	walk = func(parent string) {
		for _, n := range children[parent] {
			fmt.Fprintf(f.Writer, "%s%s %s\n", strings.Repeat("  ", n.Hops), arrow, n.Name)
			walk(n.Name)
		}
	}
	walk(r.Root)
	fmt.Fprintf(f.Writer, "\n%d problem(s) within %d hop(s)\n", len(r.Neighbors), r.Hops)
}
