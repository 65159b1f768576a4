package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProblemSize(t *testing.T) {
	s, err := NewProblemSize(map[string]int64{"num_vertices": 10, "num_edges": 15})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"num_edges", "num_vertices"}, s.Names())
	v, ok := s.Get("num_vertices")
	assert.True(t, ok)
	assert.Equal(t, int64(10), v)
	_, ok = s.Get("num_sets")
	assert.False(t, ok)
	assert.Equal(t, "{num_edges: 15, num_vertices: 10}", s.String())
}

func TestNewProblemSizeRejectsInvalid(t *testing.T) {
	_, err := NewProblemSize(map[string]int64{"n": -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")

	_, err = NewProblemSize(map[string]int64{"": 1})
	require.Error(t, err)

	assert.Panics(t, func() { MustProblemSize(map[string]int64{"n": -5}) })
}

func TestProblemSizeIsImmutable(t *testing.T) {
	input := map[string]int64{"n": 5}
	s := MustProblemSize(input)
	input["n"] = 99

	m := s.Map()
	m["n"] = 100
	fields := s.Fields()
	fields[0].Value = 7

	v, _ := s.Get("n")
	assert.Equal(t, int64(5), v)
}

func TestProblemSizeZeroValue(t *testing.T) {
	var s ProblemSize
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "{}", s.String())
	assert.True(t, s.Equal(MustProblemSize(nil)))
}

func TestProblemSizeValueAsEnv(t *testing.T) {
	s := MustProblemSize(map[string]int64{"n": 3})
	v, ok := s.Value("n")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestParseProblemSize(t *testing.T) {
	s, err := ParseProblemSize(" num_vertices = 10, num_edges=20 ")
	require.NoError(t, err)
	assert.True(t, s.Equal(MustProblemSize(map[string]int64{"num_vertices": 10, "num_edges": 20})))

	empty, err := ParseProblemSize("")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	for _, bad := range []string{"n", "n=x", "n=1,n=2", "n=-3"} {
		_, err := ParseProblemSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestProblemSizeJSON(t *testing.T) {
	s := MustProblemSize(map[string]int64{"b": 2, "a": 1})
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, string(data))

	var decoded ProblemSize
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, s.Equal(decoded))

	assert.Error(t, json.Unmarshal([]byte(`{"a":-1}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1.5}`), &decoded))
}
