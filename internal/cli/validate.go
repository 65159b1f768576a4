package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/cobra"

	"github.com/roach88/reductions/internal/catalog"
	"github.com/roach88/reductions/internal/compiler"
	"github.com/roach88/reductions/internal/registry"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Files  int                        `json:"files"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
	Cycles []compiler.CycleWarning    `json:"cycles,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var withBuiltin bool

	cmd := &cobra.Command{
		Use:   "validate <catalog-dir>",
		Short: "Validate a CUE reduction catalog",
		Long: `Validate a CUE reduction catalog and report every problem found.

Checks reduction endpoints, overhead formulas, size fields and variant
declarations, then compiles the catalog and reports reduction cycles.
With --with-builtin the directory is checked unified with the builtin
catalog, so it may reference builtin problems and variants.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], withBuiltin, cmd)
		},
	}

	cmd.Flags().BoolVar(&withBuiltin, "with-builtin", false, "validate together with the builtin catalog")

	return cmd
}

func runValidate(opts *RootOptions, dir string, withBuiltin bool, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result, err := ValidateCatalogDir(dir, withBuiltin)
	if err != nil {
		return failLoad(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", result.Files, dir)

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// ValidateCatalogDir loads dir, runs collect-all validation and, when that
// passes, compiles the catalog and analyzes its reduction cycles. A non-nil
// error means the directory could not be loaded at all.
func ValidateCatalogDir(dir string, withBuiltin bool) (*ValidationResult, error) {
	ctx := cuecontext.New()
	loaded, err := LoadCatalog(ctx, dir)
	if err != nil {
		return nil, err
	}

	value := loaded.Value
	if withBuiltin {
		builtin, err := catalog.Value(ctx)
		if err != nil {
			return nil, err
		}
		value = builtin.Unify(value)
		if err := value.Err(); err != nil {
			return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("unifying with builtin catalog: %v", err)}
		}
	}

	result := &ValidationResult{Files: loaded.FileCount}
	result.Errors = compiler.ValidateCatalog(value)
	if len(result.Errors) == 0 {
		result.Errors = compileForValidation(value, result)
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}

// compileForValidation catches what static checks cannot, such as
// conflicting duplicate registrations, and fills in cycle warnings.
func compileForValidation(value cue.Value, result *ValidationResult) []compiler.ValidationError {
	reg := registry.New()
	if err := compiler.CompileCatalog(value, reg); err != nil {
		var compileErr *compiler.CompileError
		if errors.As(err, &compileErr) {
			return []compiler.ValidationError{{
				Field:   compileErr.Field,
				Message: compileErr.Message,
				Code:    MapFieldToErrorCode(compileErr.Field),
				Line:    compileErr.Pos.Line(),
			}}
		}
		return []compiler.ValidationError{{Field: "catalog", Message: err.Error(), Code: ErrCodeGeneric}}
	}
	result.Cycles = compiler.AnalyzeReductionCycles(reg)
	return nil
}

func outputValidateSuccess(formatter *OutputFormatter, result *ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "\u2713 Catalog valid")
	for _, c := range result.Cycles {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", c.Level, c.Message)
	}
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, result *ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "\u2717 Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
