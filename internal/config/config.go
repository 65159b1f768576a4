// Package config loads pred's YAML configuration and builds its logger.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reductions/internal/graph"
)

// Config is the on-disk configuration. Zero fields in a file keep the
// defaults.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Catalog CatalogConfig `yaml:"catalog"`
	Search  SearchConfig  `yaml:"search"`
	Store   StoreConfig   `yaml:"store"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CatalogConfig struct {
	// Builtin includes the embedded catalog. A pointer so an explicit
	// false in a file is distinguishable from an absent key.
	Builtin *bool    `yaml:"builtin"`
	Dirs    []string `yaml:"dirs"`
}

type SearchConfig struct {
	Cost string `yaml:"cost"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Default returns the configuration used when no file is given.
func Default() Config {
	builtin := true
	return Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Catalog: CatalogConfig{Builtin: &builtin},
		Search:  SearchConfig{Cost: "minimize-steps"},
		Store:   StoreConfig{Path: "reductions.db"},
	}
}

// UseBuiltin reports whether the embedded catalog is included.
func (c Config) UseBuiltin() bool {
	return c.Catalog.Builtin == nil || *c.Catalog.Builtin
}

// Load reads path and overlays it on Default. Unknown keys are errors.
// The result is validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enum fields and that the default cost policy parses.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(validLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: %q is not one of %v", c.Log.Level, validLevels))
	}
	if !slices.Contains(validFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format: %q is not one of %v", c.Log.Format, validFormats))
	}
	if _, err := graph.ParseCost(c.Search.Cost); err != nil {
		errs = append(errs, fmt.Errorf("search.cost: %w", err))
	}
	for i, dir := range c.Catalog.Dirs {
		if dir == "" {
			errs = append(errs, fmt.Errorf("catalog.dirs[%d]: empty path", i))
		}
	}
	return errors.Join(errs...)
}

// NewLogger creates a logger for the given level and format without
// installing it globally. Unknown levels fall back to info and unknown
// formats to text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
