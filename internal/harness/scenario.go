package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reductions/internal/graph"
)

// Scenario defines a path-query scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Builtin includes the embedded catalog. Defaults to true.
	Builtin *bool `yaml:"builtin,omitempty"`

	// Catalogs lists CUE catalog files compiled after the builtin one.
	// LoadScenario resolves them relative to the scenario file.
	Catalogs []string `yaml:"catalogs,omitempty"`

	// Queries are answered in order; each becomes one trace event.
	Queries []Query `yaml:"queries"`

	// Assertions check graph structure rather than individual paths.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// UseBuiltin reports whether the embedded catalog is loaded.
func (s *Scenario) UseBuiltin() bool {
	return s.Builtin == nil || *s.Builtin
}

// Query is one path query and its expected outcome.
type Query struct {
	Source        string            `yaml:"source"`
	SourceVariant map[string]string `yaml:"source_variant,omitempty"`
	Target        string            `yaml:"target"`
	TargetVariant map[string]string `yaml:"target_variant,omitempty"`

	// Size is the input size. Without it the query is structural.
	Size map[string]int64 `yaml:"size,omitempty"`

	// Cost is a cost policy as accepted by graph.ParseCost.
	Cost string `yaml:"cost,omitempty"`

	// Expect is checked against the outcome. If nil, only the trace
	// records what happened.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a query. Unset fields are not
// checked.
type Expect struct {
	// Path is the expected name sequence, casts collapsed.
	Path []string `yaml:"path,omitempty"`

	// Error is the expected search error code, e.g. NO_PATH.
	Error string `yaml:"error,omitempty"`

	Reductions *int             `yaml:"reductions,omitempty"`
	Casts      *int             `yaml:"casts,omitempty"`
	Cost       *float64         `yaml:"cost,omitempty"`
	FinalSize  map[string]int64 `yaml:"final_size,omitempty"`
}

// Assertion validates graph structure.
type Assertion struct {
	// Type is one of reachable, direct_reduction, path_count, neighbors.
	Type string `yaml:"type"`

	Source string `yaml:"source"`
	Target string `yaml:"target,omitempty"`

	// Expect is the expected answer (reachable, direct_reduction).
	Expect *bool `yaml:"expect,omitempty"`

	// Count is the expected number of paths (path_count).
	Count int `yaml:"count,omitempty"`

	// Direction is "in" or "out" (neighbors).
	Direction string `yaml:"direction,omitempty"`

	// Hops bounds the neighborhood (neighbors). Defaults to 1.
	Hops int `yaml:"hops,omitempty"`

	// Names is the expected neighborhood, in any order (neighbors).
	Names []string `yaml:"names,omitempty"`
}

// Assertion type constants.
const (
	AssertReachable       = "reachable"
	AssertDirectReduction = "direct_reduction"
	AssertPathCount       = "path_count"
	AssertNeighbors       = "neighbors"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Relative catalog paths are resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, catalogPath := range scenario.Catalogs {
		if !filepath.IsAbs(catalogPath) {
			scenario.Catalogs[i] = filepath.Join(base, catalogPath)
		}
	}

	for _, catalogPath := range scenario.Catalogs {
		if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: catalog file not found: %s", catalogPath)
		}
	}

	return scenario, nil
}

// ParseScenario decodes a scenario with strict field checking. Catalog
// paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // "querys:" is a typo, not an empty list
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if !s.UseBuiltin() && len(s.Catalogs) == 0 {
		return fmt.Errorf("catalogs list is required when builtin is false")
	}

	if len(s.Queries) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one query or assertion is required")
	}

	for i, q := range s.Queries {
		if err := validateQuery(i, &q); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

func validateQuery(index int, q *Query) error {
	if q.Source == "" {
		return fmt.Errorf("queries[%d]: source is required", index)
	}
	if q.Target == "" {
		return fmt.Errorf("queries[%d]: target is required", index)
	}
	if q.Cost != "" {
		if len(q.Size) == 0 {
			return fmt.Errorf("queries[%d]: cost needs a size", index)
		}
		if _, err := graph.ParseCost(q.Cost); err != nil {
			return fmt.Errorf("queries[%d]: %w", index, err)
		}
	}
	for field, v := range q.Size {
		if v < 0 {
			return fmt.Errorf("queries[%d].size.%s: must be non-negative", index, field)
		}
	}
	if e := q.Expect; e != nil {
		if e.Error != "" && len(e.Path) > 0 {
			return fmt.Errorf("queries[%d].expect: path and error are mutually exclusive", index)
		}
		if e.Error != "" && !knownErrorCode(e.Error) {
			return fmt.Errorf("queries[%d].expect: unknown error code %q", index, e.Error)
		}
		if len(e.FinalSize) > 0 && len(q.Size) == 0 {
			return fmt.Errorf("queries[%d].expect: final_size needs a size", index)
		}
	}
	return nil
}

func knownErrorCode(code string) bool {
	switch graph.SearchErrorCode(code) {
	case graph.ErrCodeUnknownProblem, graph.ErrCodeNoPath,
		graph.ErrCodeNoCompatibleRule, graph.ErrCodeInfeasible:
		return true
	}
	return false
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Source == "" {
		return fmt.Errorf("assertions[%d]: source is required", index)
	}

	switch a.Type {
	case AssertReachable, AssertDirectReduction:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for %s", index, a.Type)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertPathCount:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for path_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for path_count", index)
		}
	case AssertNeighbors:
		if a.Direction != "in" && a.Direction != "out" {
			return fmt.Errorf("assertions[%d]: direction must be in or out for neighbors", index)
		}
		if a.Hops < 0 {
			return fmt.Errorf("assertions[%d]: hops must be non-negative for neighbors", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
