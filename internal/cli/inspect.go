package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/reductions/internal/graph"
	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/registry"
)

// ProblemSummary is one row of the list command.
type ProblemSummary struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Variants int    `json:"variants"`
	Out      int    `json:"out"`
	In       int    `json:"in"`
}

// ReductionView is a registered reduction as shown by show.
type ReductionView struct {
	ID            string            `json:"id,omitempty"`
	Source        string            `json:"source"`
	SourceVariant ir.Variant        `json:"source_variant"`
	Target        string            `json:"target"`
	TargetVariant ir.Variant        `json:"target_variant"`
	Overhead      map[string]string `json:"overhead"`
}

// ProblemDetail is the show command's payload.
type ProblemDetail struct {
	Name        string          `json:"name"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	SizeFields  []string        `json:"size_fields,omitempty"`
	Variants    []ir.Variant    `json:"variants"`
	Outgoing    []ReductionView `json:"outgoing"`
	Incoming    []ReductionView `json:"incoming"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List problems with their variant and reduction counts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			g, err := rootOpts.Graph()
			if err != nil {
				return failLoad(formatter, err)
			}
			rows := ListProblems(g)
			if formatter.Format == "json" {
				return formatter.Success(rows)
			}
			return writeProblemTable(formatter, rows, g)
		},
	}
}

// ListProblems summarizes every problem in g, sorted by name.
func ListProblems(g *graph.Graph) []ProblemSummary {
	variants := make(map[string]int)
	for _, n := range g.Snapshot().Nodes {
		variants[n.Name]++
	}
	rows := make([]ProblemSummary, 0, g.NumTypes())
	for _, name := range g.Problems() {
		p, _ := g.Registry().Problem(name)
		rows = append(rows, ProblemSummary{
			Name:     name,
			Category: p.Category,
			Variants: variants[name],
			Out:      len(g.Successors(name)),
			In:       len(g.Predecessors(name)),
		})
	}
	return rows
}

func writeProblemTable(f *OutputFormatter, rows []ProblemSummary, g *graph.Graph) error {
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROBLEM\tCATEGORY\tVARIANTS\tOUT\tIN")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", r.Name, r.Category, r.Variants, r.Out, r.In)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(f.Writer, "\n%d problems, %d variant nodes, %d reductions (%d rules)\n",
		g.NumTypes(), g.NumVariantNodes(), g.NumReductions(), g.NumEntries())
	return nil
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <problem>",
		Short:         "Show a problem's size fields, variants and reductions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			g, err := rootOpts.Graph()
			if err != nil {
				return failLoad(formatter, err)
			}
			detail, ok := ShowProblem(g, args[0])
			if !ok {
				return formatter.Fail(ExitCommandError, ErrCodeUnknownProblem,
					fmt.Sprintf("unknown problem %q", args[0]), nil)
			}
			if formatter.Format == "json" {
				return formatter.Success(detail)
			}
			writeProblemDetail(formatter, detail)
			return nil
		},
	}
}

// ShowProblem collects everything known about name. ok is false when g has
// no such problem.
func ShowProblem(g *graph.Graph, name string) (ProblemDetail, bool) {
	if !g.HasProblem(name) {
		return ProblemDetail{}, false
	}
	p, _ := g.Registry().Problem(name)
	detail := ProblemDetail{
		Name:        name,
		Category:    p.Category,
		Description: p.Description,
		SizeFields:  p.SizeFields,
		Variants:    []ir.Variant{},
		Outgoing:    []ReductionView{},
		Incoming:    []ReductionView{},
	}
	for _, n := range g.Snapshot().Nodes {
		if n.Name == name {
			detail.Variants = append(detail.Variants, n.Variant)
		}
	}
	for _, e := range g.Registry().Entries() {
		if e.Source == name {
			detail.Outgoing = append(detail.Outgoing, reductionView(e))
		}
		if e.Target == name {
			detail.Incoming = append(detail.Incoming, reductionView(e))
		}
	}
	return detail, true
}

func reductionView(e registry.Entry) ReductionView {
	return ReductionView{
		ID:            e.Origin,
		Source:        e.Source,
		SourceVariant: e.SourceVariant,
		Target:        e.Target,
		TargetVariant: e.TargetVariant,
		Overhead:      e.Overhead.Strings(),
	}
}

func writeProblemDetail(f *OutputFormatter, d ProblemDetail) {
	w := f.Writer
	fmt.Fprintln(w, d.Name)
	if d.Description != "" {
		fmt.Fprintf(w, "  %s\n", d.Description)
	}
	if d.Category != "" {
		fmt.Fprintf(w, "category:    %s\n", d.Category)
	}
	if len(d.SizeFields) > 0 {
		fmt.Fprintf(w, "size fields: %s\n", strings.Join(d.SizeFields, ", "))
	}

	fmt.Fprintf(w, "\nvariants (%d):\n", len(d.Variants))
	for _, v := range d.Variants {
		fmt.Fprintf(w, "  %s\n", v)
	}

	fmt.Fprintf(w, "\noutgoing (%d):\n", len(d.Outgoing))
	for _, r := range d.Outgoing {
		fmt.Fprintf(w, "  -> %s%s  [%s]  %s\n", r.Target, r.TargetVariant, r.ID, formatOverhead(r.Overhead))
	}
	fmt.Fprintf(w, "\nincoming (%d):\n", len(d.Incoming))
	for _, r := range d.Incoming {
		fmt.Fprintf(w, "  <- %s%s  [%s]  %s\n", r.Source, r.SourceVariant, r.ID, formatOverhead(r.Overhead))
	}
}

// formatOverhead renders "a = f, b = g" in field order.
func formatOverhead(formulas map[string]string) string {
	parts := make([]string, 0, len(formulas))
	for _, field := range slices.Sorted(maps.Keys(formulas)) {
		parts = append(parts, field+" = "+formulas[field])
	}
	return strings.Join(parts, ", ")
}
