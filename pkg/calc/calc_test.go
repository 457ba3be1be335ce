package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalPrecedence(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"10-2-3", 5},
		{"20/4/5", 1},
		{"2*3+4*5", 26},
		{"100", 100},
		{"1.5*2", 3},
		{"((1+2))*((3))", 9},
		{" 7 + 1 ", 8},
	}
	for _, tc := range cases {
		got, err := Eval(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.InDelta(t, tc.want, got, 1e-9, tc.expr)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := Eval("1/0")
	assert.ErrorIs(t, err, ErrDivisionByZero)

	// Zero reached through subexpressions still trips the same error.
	_, err = Eval("5/(3-3)")
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestEvalErrors(t *testing.T) {
	for _, expr := range []string{"(1+2", "1+2)", "1+", "*3", "1 2", "()"} {
		_, err := Eval(expr)
		assert.Error(t, err, expr)
	}

	_, err := Eval("")
	assert.ErrorIs(t, err, ErrEmptyExpression)
	_, err = Eval("   ")
	assert.ErrorIs(t, err, ErrEmptyExpression)
}

func TestTokenizeRejectsUnknownRunes(t *testing.T) {
	_, err := Tokenize("2^3")
	assert.Error(t, err)
	_, err = Tokenize("abc")
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("(1+23)*4.5")
	require.NoError(t, err)
	require.Len(t, tokens, 7)
	assert.Equal(t, TokenLParen, tokens[0].Kind)
	assert.Equal(t, 1.0, tokens[1].Number)
	assert.Equal(t, byte('+'), tokens[2].Op)
	assert.Equal(t, 23.0, tokens[3].Number)
	assert.Equal(t, TokenRParen, tokens[4].Kind)
	assert.Equal(t, byte('*'), tokens[5].Op)
	assert.Equal(t, 4.5, tokens[6].Number)
}

func TestParseRejectsTrailingTokens(t *testing.T) {
	tokens, err := Tokenize("1+2 3")
	require.NoError(t, err)
	_, err = Parse(tokens)
	assert.Error(t, err)
}
