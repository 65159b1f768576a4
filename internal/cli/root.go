package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/spf13/cobra"

	"github.com/roach88/reductions/internal/config"
	"github.com/roach88/reductions/internal/graph"
	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/store"
)

// RootOptions holds global flags for all commands and the state they share.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	CatalogDirs []string

	// Config is loaded in PersistentPreRunE. Commands constructed without
	// the root command see config.Default.
	Config *config.Config

	graphOnce sync.Once
	graph     *graph.Graph
	graphErr  error

	storeOptions []store.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pred CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "pred",
		Version: ir.EngineVersion,
		Short:   "pred - explore NP-hard problem reductions",
		Long:    `Query a graph of polynomial-time reductions between NP-hard problems.

Find the cheapest variant-aware reduction path between two problems,
inspect problems and their neighbours, validate CUE rule catalogs and
export the graph as a deterministic snapshot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg := config.Default()
			if opts.ConfigPath != "" {
				loaded, err := config.Load(opts.ConfigPath)
				if err != nil {
					return WrapExitError(ExitCommandError, "load config", err)
				}
				cfg = loaded
			}
			opts.Config = &cfg

			level := cfg.Log.Level
			if opts.Verbose {
				level = "debug"
			}
			slog.SetDefault(config.NewLogger(level, cfg.Log.Format, cmd.ErrOrStderr()))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringArrayVar(&opts.CatalogDirs, "catalog", nil, "extra CUE catalog directory (repeatable)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewToCommand(opts))
	cmd.AddCommand(NewFromCommand(opts))
	cmd.AddCommand(NewPathCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

func (o *RootOptions) config() config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return *o.Config
}

// Graph returns the reduction graph for this invocation: the builtin
// catalog (unless disabled in config) plus every catalog directory from
// config and --catalog, in that order. It is built once.
func (o *RootOptions) Graph() (*graph.Graph, error) {
	o.graphOnce.Do(func() {
		cfg := o.config()
		dirs := slices.Concat(cfg.Catalog.Dirs, o.CatalogDirs)
		o.graph, o.graphErr = BuildGraph(cfg.UseBuiltin(), dirs)
	})
	return o.graph, o.graphErr
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
