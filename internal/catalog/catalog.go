// Package catalog embeds the builtin reduction catalog and provides the
// process-wide default registry and graph built from it.
//
// The default registry is assembled once, on first use, and shared
// read-only afterwards. A catalog that fails to compile is a build defect,
// so the lazy accessors panic rather than return an error.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/reductions/internal/compiler"
	"github.com/roach88/reductions/internal/graph"
	"github.com/roach88/reductions/internal/registry"
)

//go:embed builtin/*.cue
var builtinFS embed.FS

// Files returns the names of the embedded catalog files, sorted.
func Files() []string {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		panic(fmt.Sprintf("catalog: read embedded files: %v", err))
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Value compiles the embedded catalog files in ctx and unifies them.
// Values to be unified with it must come from the same context.
func Value(ctx *cue.Context) (cue.Value, error) {
	var v cue.Value
	for i, name := range Files() {
		src, err := builtinFS.ReadFile(path.Join("builtin", name))
		if err != nil {
			return cue.Value{}, fmt.Errorf("read %s: %w", name, err)
		}
		file := ctx.CompileBytes(src, cue.Filename(path.Join("builtin", name)))
		if err := file.Err(); err != nil {
			return cue.Value{}, fmt.Errorf("compile %s: %w", name, err)
		}
		if i == 0 {
			v = file
		} else {
			v = v.Unify(file)
		}
	}
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("unify builtin catalog: %w", err)
	}
	return v, nil
}

// NewRegistry returns a fresh, unsealed registry holding the builtin
// catalog plus every extra catalog value, compiled in order.
func NewRegistry(extra ...cue.Value) (*registry.Registry, error) {
	ctx := cuecontext.New()
	builtin, err := Value(ctx)
	if err != nil {
		return nil, err
	}
	reg := registry.New()
	if err := compiler.CompileCatalog(builtin, reg); err != nil {
		return nil, fmt.Errorf("builtin catalog: %w", err)
	}
	for _, v := range extra {
		if err := compiler.CompileCatalog(v, reg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

var (
	defaultOnce  sync.Once
	defaultReg   *registry.Registry
	defaultGraph *graph.Graph
)

func loadDefault() {
	defaultOnce.Do(func() {
		reg, err := NewRegistry()
		if err != nil {
			panic(fmt.Sprintf("catalog: %v", err))
		}
		defaultReg = reg
		defaultGraph = graph.Build(reg)
	})
}

// Registry returns the shared builtin registry. It is sealed.
func Registry() *registry.Registry {
	loadDefault()
	return defaultReg
}

// Graph returns the shared graph built from Registry.
func Graph() *graph.Graph {
	loadDefault()
	return defaultGraph
}
