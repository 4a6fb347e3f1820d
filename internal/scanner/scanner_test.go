package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rlox/internal/token"
)

func TestScan_Punctuation(t *testing.T) {
	toks, errs := New([]byte("(){},.-+;*/ == != <= >= < > = !")).Scan()
	require.Empty(t, errs)

	want := []token.Type{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON,
		token.STAR, token.SLASH, token.EQUAL_EQUAL, token.BANG_EQUAL,
		token.LESS_EQUAL, token.GREATER_EQUAL, token.LESS, token.GREATER,
		token.EQUAL, token.BANG, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w, toks[i].Type, "token %d", i)
	}
}

func TestScan_NumbersAndStrings(t *testing.T) {
	toks, errs := New([]byte(`123 45.6 "hello"`)).Scan()
	require.Empty(t, errs)
	require.Len(t, toks, 4) // 3 literals + EOF

	assert.Equal(t, token.NUMBER, toks[0].Type)
	assert.Equal(t, "123", toks[0].Lexeme)
	assert.Equal(t, token.NUMBER, toks[1].Type)
	assert.Equal(t, "45.6", toks[1].Lexeme)
	assert.Equal(t, token.STRING, toks[2].Type)
	assert.Equal(t, "hello", toks[2].Literal)
}

func TestScan_Keywords(t *testing.T) {
	toks, errs := New([]byte("var x = nil; if (true) print x; else break;")).Scan()
	require.Empty(t, errs)

	var kinds []token.Type
	for _, tk := range toks {
		kinds = append(kinds, tk.Type)
	}
	assert.Contains(t, kinds, token.VAR)
	assert.Contains(t, kinds, token.NIL)
	assert.Contains(t, kinds, token.IF)
	assert.Contains(t, kinds, token.TRUE)
	assert.Contains(t, kinds, token.PRINT)
	assert.Contains(t, kinds, token.ELSE)
	assert.Contains(t, kinds, token.BREAK)
}

func TestScan_UnterminatedString(t *testing.T) {
	_, errs := New([]byte(`"unterminated`)).Scan()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "Unterminated string")
}

func TestScan_UnexpectedCharacter(t *testing.T) {
	_, errs := New([]byte("@")).Scan()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "Unexpected character")
}

func TestScan_LineTracking(t *testing.T) {
	toks, errs := New([]byte("1\n2\n\n3")).Scan()
	require.Empty(t, errs)
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 4, toks[2].Line)
}
