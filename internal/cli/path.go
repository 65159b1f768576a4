package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reductions/internal/graph"
	"github.com/roach88/reductions/internal/ir"
)

// PathOptions holds the path command's flags.
type PathOptions struct {
	SourceVariant string
	TargetVariant string
	Size          string
	Cost          string
	All           bool
}

// StepView is one (problem, variant) step of a resolved path.
type StepView struct {
	Name    string           `json:"name"`
	Variant ir.Variant       `json:"variant"`
	Size    map[string]int64 `json:"size,omitempty"`
}

// EdgeView connects consecutive steps. Rule and Overhead are empty for casts.
type EdgeView struct {
	Kind     string            `json:"kind"`
	Rule     string            `json:"rule,omitempty"`
	Overhead map[string]string `json:"overhead,omitempty"`
}

// PathResult is the path command's payload.
type PathResult struct {
	Path       string            `json:"path"`
	Policy     string            `json:"policy"`
	Cost       float64           `json:"cost"`
	Reductions int               `json:"reductions"`
	Casts      int               `json:"casts"`
	Steps      []StepView        `json:"steps"`
	Edges      []EdgeView        `json:"edges"`
	Overhead   map[string]string `json:"overhead,omitempty"`
}

// AllPathsResult is the path --all payload.
type AllPathsResult struct {
	Source string     `json:"source"`
	Target string     `json:"target"`
	Paths  [][]string `json:"paths"`
}

// NewPathCommand creates the path command.
func NewPathCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PathOptions{}

	cmd := &cobra.Command{
		Use:   "path <source> <target>",
		Short: "Find the cheapest reduction path between two problems",
		Long: `Find the cheapest variant-aware reduction path from source to target.

With --size the overhead of every step is evaluated and the path minimizing
--cost is returned, with the problem size at each step. Without --size the
path with the fewest reductions is returned and no overhead is evaluated.

Cost policies:
  minimize-steps            fewest reductions
  minimize:<field>          smallest final value of one size field
  weighted:<f>=<w>,...      weighted sum of size fields
  max:<f>,...               largest of several size fields
  lex:<f>,...               lexicographic over size fields`,
		Example: `  pred path MaximumIndependentSet QUBO
  pred path MaximumIndependentSet QUBO --source-variant graph=UnitDiskGraph,weight=i32
  pred path Satisfiability QUBO --size num_vars=20,num_clauses=50,num_literals=150 --cost minimize:num_vars`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SourceVariant, "source-variant", "", "source variant as category=value,...")
	cmd.Flags().StringVar(&opts.TargetVariant, "target-variant", "", "required target variant as category=value,...")
	cmd.Flags().StringVar(&opts.Size, "size", "", "source instance size as field=value,...")
	cmd.Flags().StringVar(&opts.Cost, "cost", "", "cost policy (default from config, minimize-steps)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "list every simple name-level path instead")

	return cmd
}

func runPath(rootOpts *RootOptions, opts *PathOptions, source, target string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	g, err := rootOpts.Graph()
	if err != nil {
		return failLoad(formatter, err)
	}

	if opts.All {
		return outputAllPaths(formatter, g, source, target)
	}

	sv, err := ir.ParseVariant(opts.SourceVariant)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, "--source-variant: "+err.Error(), nil)
	}
	tv, err := ir.ParseVariant(opts.TargetVariant)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, "--target-variant: "+err.Error(), nil)
	}
	size, err := ir.ParseProblemSize(opts.Size)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, "--size: "+err.Error(), nil)
	}
	policy := opts.Cost
	if policy == "" {
		policy = rootOpts.config().Search.Cost
	}
	cost, err := graph.ParseCost(policy)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, "--cost: "+err.Error(), nil)
	}

	var path *graph.ResolvedPath
	if opts.Size == "" {
		if _, steps := cost.(graph.MinimizeSteps); !steps {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument,
				fmt.Sprintf("cost policy %q needs --size", policy), nil)
		}
		path, err = g.FindFewestReductions(source, sv, target, tv)
	} else {
		path, err = g.FindCheapestPath(source, sv, target, tv, size, cost)
	}
	if err != nil {
		return formatter.FailSearch(err)
	}

	result := NewPathResult(path, policy)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	writePath(formatter, result)
	return nil
}

// NewPathResult converts a resolved path to its output form.
func NewPathResult(path *graph.ResolvedPath, policy string) PathResult {
	result := PathResult{
		Path:       path.String(),
		Policy:     policy,
		Cost:       path.Cost,
		Reductions: path.NumReductions(),
		Casts:      path.NumCasts(),
		Steps:      make([]StepView, len(path.Steps)),
		Edges:      make([]EdgeView, len(path.Edges)),
	}
	for i, s := range path.Steps {
		result.Steps[i] = StepView{Name: s.Name, Variant: s.Variant}
		if i < len(path.Sizes) {
			result.Steps[i].Size = path.Sizes[i].Map()
		}
	}
	for i, e := range path.Edges {
		view := EdgeView{Kind: e.Kind.String()}
		if e.Entry != nil {
			view.Rule = e.Entry.Origin
			view.Overhead = e.Overhead.Strings()
		}
		result.Edges[i] = view
	}
	if composed := path.ComposedOverhead(); composed.Len() > 0 {
		result.Overhead = composed.Strings()
	}
	return result
}

func writePath(f *OutputFormatter, r PathResult) {
	w := f.Writer
	fmt.Fprintln(w, r.Path)
	fmt.Fprintf(w, "cost %g (%s), %d reduction(s), %d cast(s)\n\n", r.Cost, r.Policy, r.Reductions, r.Casts)

	for i, s := range r.Steps {
		if i > 0 {
			e := r.Edges[i-1]
			if e.Rule == "" {
				fmt.Fprintln(w, "   ~> natural cast")
			} else {
				fmt.Fprintf(w, "   -> %s  %s\n", e.Rule, formatOverhead(e.Overhead))
			}
		}
		line := fmt.Sprintf("%2d %s%s", i, s.Name, s.Variant)
		if s.Size != nil {
			line += "  " + formatSize(s.Size)
		}
		fmt.Fprintln(w, line)
	}

	if len(r.Overhead) > 0 {
		fmt.Fprintf(w, "\noverall: %s\n", formatOverhead(r.Overhead))
	}
}

func formatSize(size map[string]int64) string {
	formulas := make(map[string]string, len(size))
	for k, v := range size {
		formulas[k] = fmt.Sprint(v)
	}
	return strings.ReplaceAll(formatOverhead(formulas), " = ", "=")
}

func outputAllPaths(f *OutputFormatter, g *graph.Graph, source, target string) error {
	for _, name := range []string{source, target} {
		if !g.HasProblem(name) {
			return f.Fail(ExitCommandError, ErrCodeUnknownProblem, fmt.Sprintf("unknown problem %q", name), nil)
		}
	}
	paths := g.FindPaths(source, target)
	if len(paths) == 0 {
		return f.Fail(ExitFailure, ErrCodeNoPath, fmt.Sprintf("no reduction path from %s to %s", source, target), nil)
	}

	result := AllPathsResult{Source: source, Target: target, Paths: paths}
	if f.Format == "json" {
		return f.Success(result)
	}
	for _, p := range paths {
		fmt.Fprintln(f.Writer, strings.Join(p, " -> "))
	}
	fmt.Fprintf(f.Writer, "\n%d path(s)\n", len(paths))
	return nil
}
