package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "pred", cmd.Use)
	assert.Contains(t, cmd.Long, "reductions")
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "pred version 0.1.0\n", stdout)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"list", "show", "to", "from", "path", "export", "validate", "check"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("catalog"))
}

func TestPathCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	pathCmd, _, err := cmd.Find([]string{"path"})
	require.NoError(t, err)

	for _, flag := range []string{"source-variant", "target-variant", "size", "cost", "all"} {
		assert.NotNil(t, pathCmd.Flags().Lookup(flag), flag)
	}
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))

	_, _, err := execute(t, "--format", "xml", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFlag(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "list")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pred.yaml")
		require.NoError(t, os.WriteFile(path, []byte("serach:\n  cost: steps\n"), 0o644))
		_, _, err := execute(t, "--config", path, "list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "serach")
	})

	t.Run("catalog dirs from config", func(t *testing.T) {
		dir := writeCatalog(t, map[string]string{"rules.cue": chainCatalog})
		path := filepath.Join(t.TempDir(), "pred.yaml")
		require.NoError(t, os.WriteFile(path, []byte("catalog:\n  builtin: false\n  dirs: ["+dir+"]\n"), 0o644))

		out, _, err := execute(t, "--config", path, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "3 problems")
	})
}

func TestCatalogFlag_LoadErrors(t *testing.T) {
	_, _, err := execute(t, "--catalog", filepath.Join(t.TempDir(), "missing"), "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)

	bad := writeCatalog(t, map[string]string{"bad.cue": `
package rules

reduction: broken: {source: "A", target: "B", overhead: n: "n +"}
`})
	out, _, err := execute(t, "--config", noBuiltinConfig(t), "--catalog", bad, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeCatalogReduction)
	assert.Contains(t, out, "reduction.broken")
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"variant.graph.X":           ErrCodeCatalogVariant,
		"problem.MIS":               ErrCodeCatalogProblem,
		"problem.MIS.variants":      ErrCodeCatalogProblem,
		"reduction.a_to_b":          ErrCodeCatalogReduction,
		"reduction.a_to_b.overhead": ErrCodeCatalogReduction,
		"cue":                       ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}
