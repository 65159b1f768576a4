package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Regenerate with:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_ChainPaths(t *testing.T) {
	result, err := RunWithGolden(t, chainScenario(t))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "chain_paths.golden"),
		GoldenPath(filepath.Join("scenarios", "chain_paths.yaml")))
}

func TestCompareGolden_ScenarioDirectory(t *testing.T) {
	path := "testdata/scenarios/chain_paths.yaml"
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(scenario)
	require.NoError(t, err)

	match, err := CompareGolden(GoldenPath(path), scenario.Name, result)
	require.NoError(t, err)
	assert.True(t, match)

	_, err = CompareGolden("testdata/scenarios/golden/builtin_qubo.golden", "builtin_qubo", result)
	assert.ErrorContains(t, err, "failed to read golden file")
}

func TestWriteGolden(t *testing.T) {
	result, err := Run(chainScenario(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "golden", "chain_paths.golden")
	require.NoError(t, WriteGolden(path, "chain_paths", result))

	match, err := CompareGolden(path, "chain_paths", result)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = CompareGolden(path, "renamed", result)
	require.NoError(t, err)
	assert.False(t, match)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"scenario_name":"chain_paths"`)
}
