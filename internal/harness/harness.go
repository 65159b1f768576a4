package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/reductions/internal/catalog"
	"github.com/roach88/reductions/internal/compiler"
	"github.com/roach88/reductions/internal/graph"
	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/registry"
	"github.com/roach88/reductions/internal/store"
	"github.com/roach88/reductions/internal/testutil"
)

// Harness answers a scenario's queries against one graph.
type Harness struct {
	graph *graph.Graph
	clock *testutil.DeterministicClock

	// lastPath is the path behind the latest trace event, nil on failure.
	lastPath *graph.ResolvedPath
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile the builtin catalog (unless disabled) and the scenario catalogs
//  2. Round-trip the graph snapshot through a fresh in-memory store
//  3. Answer each query and check its expectation
//  4. Evaluate the assertions
//
// The returned error covers failures to set the scenario up. Failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	g, err := BuildGraph(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	if err := roundTrip(g, scenario.Name, result); err != nil {
		return nil, err
	}

	h := &Harness{graph: g, clock: testutil.NewDeterministicClock()}
	for i, q := range scenario.Queries {
		event, err := h.runQuery(q)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		result.Trace = append(result.Trace, event)
		if q.Expect != nil {
			for _, msg := range checkExpect(event, h.lastPath, q.Expect) {
				result.AddError(fmt.Sprintf("queries[%d] (%s): %s", i, event.Query, msg))
			}
		}
	}

	for i, a := range scenario.Assertions {
		if err := evaluateAssertion(g, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}

	slog.Debug("scenario finished", "name", scenario.Name,
		"queries", len(scenario.Queries), "pass", result.Pass)
	return result, nil
}

// BuildGraph compiles the scenario's catalogs into a fresh graph.
func BuildGraph(scenario *Scenario) (*graph.Graph, error) {
	if scenario.UseBuiltin() && len(scenario.Catalogs) == 0 {
		return catalog.Graph(), nil
	}

	ctx := cuecontext.New()
	values := make([]cue.Value, 0, len(scenario.Catalogs))
	for _, path := range scenario.Catalogs {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		v := ctx.CompileBytes(src, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("failed to compile catalog %s: %w", path, err)
		}
		values = append(values, v)
	}

	var reg *registry.Registry
	if scenario.UseBuiltin() {
		var err error
		if reg, err = catalog.NewRegistry(values...); err != nil {
			return nil, err
		}
	} else {
		reg = registry.New()
		for i, v := range values {
			if err := compiler.CompileCatalog(v, reg); err != nil {
				return nil, fmt.Errorf("%s: %w", scenario.Catalogs[i], err)
			}
		}
	}
	return graph.Build(reg), nil
}

// roundTrip writes the graph snapshot to an in-memory store and reads it
// back. A snapshot that does not hash to its own ID after the trip means
// exports of this catalog would not be reproducible.
func roundTrip(g *graph.Graph, label string, result *Result) error {
	ids := testutil.NewSequentialIDs()
	st, err := store.Open(":memory:", store.WithIDGenerator(ids.Generate))
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	runID, snapshotID, err := st.WriteSnapshot(ctx, g.Snapshot(), label)
	if err != nil {
		return err
	}
	stored, err := st.ReadSnapshot(ctx, snapshotID)
	if err != nil {
		return err
	}
	hash, err := stored.Hash()
	if err != nil {
		return err
	}
	if hash != snapshotID {
		result.AddError(fmt.Sprintf("stored snapshot hashes to %s, written as %s", hash, snapshotID))
	}
	result.RunID, result.SnapshotID = runID, snapshotID
	return nil
}

func (h *Harness) runQuery(q Query) (TraceEvent, error) {
	event := TraceEvent{
		Seq:   h.clock.Next(),
		Query: q.Source + ir.Variant(q.SourceVariant).String() + " -> " + q.Target + ir.Variant(q.TargetVariant).String(),
	}
	h.lastPath = nil

	var (
		path *graph.ResolvedPath
		err  error
	)
	if len(q.Size) == 0 {
		path, err = h.graph.FindFewestReductions(q.Source, ir.Variant(q.SourceVariant), q.Target, ir.Variant(q.TargetVariant))
	} else {
		size, serr := ir.NewProblemSize(q.Size)
		if serr != nil {
			return event, serr
		}
		cost := graph.CostFunc(graph.MinimizeSteps{})
		if q.Cost != "" {
			if cost, serr = graph.ParseCost(q.Cost); serr != nil {
				return event, serr
			}
		}
		path, err = h.graph.FindCheapestPath(q.Source, ir.Variant(q.SourceVariant), q.Target, ir.Variant(q.TargetVariant), size, cost)
	}

	if err != nil {
		var se *graph.SearchError
		if !errors.As(err, &se) {
			return event, err
		}
		event.Outcome = string(se.Code)
		return event, nil
	}

	h.lastPath = path
	event.Outcome = OutcomePath
	event.Path = path.String()
	event.Reductions = path.NumReductions()
	event.Casts = path.NumCasts()
	event.Cost = path.Cost
	event.Sizes = path.Sizes
	return event, nil
}

func checkExpect(event TraceEvent, path *graph.ResolvedPath, want *Expect) []string {
	var errs []string
	if want.Error != "" {
		if event.Outcome != want.Error {
			errs = append(errs, fmt.Sprintf("expected error %s, got %s", want.Error, describe(event)))
		}
		return errs
	}
	if path == nil {
		return append(errs, fmt.Sprintf("expected a path, got %s", event.Outcome))
	}

	if want.Path != nil && !slices.Equal(path.Names(), want.Path) {
		errs = append(errs, fmt.Sprintf("expected path %v, got %v", want.Path, path.Names()))
	}
	if want.Reductions != nil && event.Reductions != *want.Reductions {
		errs = append(errs, fmt.Sprintf("expected %d reduction(s), got %d", *want.Reductions, event.Reductions))
	}
	if want.Casts != nil && event.Casts != *want.Casts {
		errs = append(errs, fmt.Sprintf("expected %d cast(s), got %d", *want.Casts, event.Casts))
	}
	if want.Cost != nil && math.Abs(event.Cost-*want.Cost) > 1e-9 {
		errs = append(errs, fmt.Sprintf("expected cost %g, got %g", *want.Cost, event.Cost))
	}
	if want.FinalSize != nil && len(event.Sizes) == 0 {
		errs = append(errs, "expected a final size, got a structural path")
	} else if want.FinalSize != nil {
		final := event.Sizes[len(event.Sizes)-1]
		for field, v := range want.FinalSize {
			got, ok := final.Get(field)
			if !ok {
				errs = append(errs, fmt.Sprintf("final size has no field %q", field))
				continue
			}
			if got != v {
				errs = append(errs, fmt.Sprintf("final size %s = %d, expected %d", field, got, v))
			}
		}
	}
	slices.Sort(errs)
	return errs
}

func describe(event TraceEvent) string {
	if event.Outcome == OutcomePath {
		return "path " + event.Path
	}
	return event.Outcome
}
