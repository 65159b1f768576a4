package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"add then mul", "2 + 3 * 4", 14},
		{"parens override", "(2 + 3) * 4", 20},
		{"sub is left assoc", "10 - 4 - 3", 3},
		{"div is left assoc", "64 / 4 / 2", 8},
		{"pow is right assoc", "2 ^ 3 ^ 2", 512},
		{"unary minus below pow", "-2 ^ 2", -4},
		{"parenthesized negative base", "(-2) ^ 2", 4},
		{"unary minus above mul", "-2 * 3", -6},
		{"double negation", "--3", 3},
		{"minus negative", "5 - -2", 7},
		{"negative exponent", "2 ^ -1", 0.5},
		{"leading dot literal", ".5 * 4", 2},
		{"trailing dot literal", "5. + 1", 6},
		{"no whitespace", "2*3+1", 7},
		{"call", "max(2, 7) + min(2, 7)", 9},
		{"nested call", "sqrt(abs(-16))", 4},
		{"case insensitive call", "LOG2(8) + Sqrt(9)", 6},
		{"floor and ceil", "floor(2.7) + ceil(2.1)", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.input)
			require.NoError(t, err)
			got, err := e.Evaluate(nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  ParseErrorCode
		pos   int
	}{
		{"empty", "", ErrCodeUnexpectedEOF, 0},
		{"whitespace only", "   ", ErrCodeUnexpectedEOF, 3},
		{"dangling operator", "n +", ErrCodeUnexpectedEOF, 3},
		{"unclosed paren", "(n + 1", ErrCodeUnexpectedEOF, 6},
		{"unclosed call", "max(1, 2", ErrCodeUnexpectedEOF, 8},
		{"leading operator", "* n", ErrCodeUnexpectedToken, 0},
		{"stray close paren", ")", ErrCodeUnexpectedToken, 0},
		{"bad separator", "max(1 2)", ErrCodeUnexpectedToken, 6},
		{"unknown function", "foo(n)", ErrCodeUnknownFunction, 0},
		{"unknown function mid formula", "n + log3(n)", ErrCodeUnknownFunction, 4},
		{"unexpected char", "n % 2", ErrCodeUnexpectedChar, 2},
		{"lone dot", "n + .", ErrCodeUnexpectedChar, 4},
		{"trailing input", "n m", ErrCodeTrailingInput, 2},
		{"trailing paren", "n)", ErrCodeTrailingInput, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.code, pe.Code)
			assert.Equal(t, tt.pos, pe.Pos)
			assert.True(t, IsParseError(err))
			assert.False(t, IsEvalError(err))
		})
	}
}

func TestParseVariables(t *testing.T) {
	e := MustParse("num_vertices * num_vertices + log2(num_edges) + _x1")
	assert.Equal(t, []string{"_x1", "num_edges", "num_vertices"}, e.Variables())
	assert.False(t, e.IsConst())
	assert.True(t, MustParse("2 ^ 10").IsConst())
}

func TestParseVariablesAreCaseSensitive(t *testing.T) {
	e := MustParse("N + n")
	v, err := e.Evaluate(Vars{"N": 10, "n": 1})
	require.NoError(t, err)
	assert.Equal(t, 11.0, v)
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("1 +") })
	assert.NotPanics(t, func() { MustParse("1 + n") })
}

func TestLookupFunc(t *testing.T) {
	for _, name := range Funcs() {
		fn, ok := LookupFunc(name)
		require.True(t, ok, name)
		assert.Equal(t, name, fn.String())
	}
	fn, ok := LookupFunc("LoG10")
	require.True(t, ok)
	assert.Equal(t, FuncLog10, fn)

	_, ok = LookupFunc("pow")
	assert.False(t, ok)
}
