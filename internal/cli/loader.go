package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reductions/internal/catalog"
	"github.com/roach88/reductions/internal/compiler"
	"github.com/roach88/reductions/internal/graph"
	"github.com/roach88/reductions/internal/registry"
)

// LoadResult contains a catalog directory loaded as one CUE value.
type LoadResult struct {
	Value     cue.Value
	FileCount int
}

// LoadError represents an error that occurred while loading a catalog.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCatalog loads the CUE package in dir into ctx. Values that will be
// unified with the builtin catalog must share its context.
func LoadCatalog(ctx *cue.Context, dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	slog.Debug("catalog loaded", "dir", dir, "files", len(cueFiles))
	return &LoadResult{Value: value, FileCount: len(cueFiles)}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// BuildGraph compiles the builtin catalog (if builtin) and every directory
// in dirs, in order, into one registry and builds its graph. With no extra
// directories the shared builtin graph is returned.
func BuildGraph(builtin bool, dirs []string) (*graph.Graph, error) {
	if builtin && len(dirs) == 0 {
		return catalog.Graph(), nil
	}

	ctx := cuecontext.New()
	values := make([]cue.Value, 0, len(dirs))
	for _, dir := range dirs {
		res, err := LoadCatalog(ctx, dir)
		if err != nil {
			return nil, err
		}
		values = append(values, res.Value)
	}

	var reg *registry.Registry
	if builtin {
		var err error
		if reg, err = catalog.NewRegistry(values...); err != nil {
			return nil, convertCompileError(err)
		}
	} else {
		reg = registry.New()
		for _, v := range values {
			if err := compiler.CompileCatalog(v, reg); err != nil {
				return nil, convertCompileError(err)
			}
		}
	}
	return graph.Build(reg), nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File or database write error

	// Catalog compilation errors
	ErrCodeCatalogVariant   = "E101" // Variant declaration rejected
	ErrCodeCatalogProblem   = "E102" // Problem declaration rejected
	ErrCodeCatalogReduction = "E103" // Reduction rejected

	// Query errors
	ErrCodeUnknownProblem   = "E201" // Endpoint not in the graph
	ErrCodeNoPath           = "E202" // Target structurally unreachable
	ErrCodeNoCompatibleRule = "E203" // No variant-compatible chain
	ErrCodeInfeasible       = "E204" // Every candidate failed evaluation
	ErrCodeInvalidArgument  = "E205" // Malformed variant, size or cost flag
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	section, _, _ := strings.Cut(field, ".")
	switch section {
	case "variant":
		return ErrCodeCatalogVariant
	case "problem":
		return ErrCodeCatalogProblem
	case "reduction":
		return ErrCodeCatalogReduction
	default:
		return ErrCodeGeneric
	}
}

// searchErrorCode maps a graph search failure to a CLI code and exit code.
func searchErrorCode(err error) (code string, exit int) {
	switch {
	case graph.IsUnknownProblem(err):
		return ErrCodeUnknownProblem, ExitCommandError
	case graph.IsNoPath(err):
		return ErrCodeNoPath, ExitFailure
	case graph.IsNoCompatibleRule(err):
		return ErrCodeNoCompatibleRule, ExitFailure
	case graph.IsInfeasible(err):
		return ErrCodeInfeasible, ExitFailure
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// failLoad reports a catalog load or compile error.
func failLoad(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), msg)
		}
		return f.Fail(ExitCommandError, loadErr.Code, msg, nil)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
