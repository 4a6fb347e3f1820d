package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rlox/internal/scanner"
)

func parse(t *testing.T, src string) ([]string, []error) {
	t.Helper()
	toks, lexErrs := scanner.New([]byte(src)).Scan()
	require.Empty(t, lexErrs)
	stmts, errs := New(toks).Parse()
	var out []string
	for _, s := range stmts {
		out = append(out, s.String())
	}
	return out, errs
}

func TestParse_ExpressionPrecedence(t *testing.T) {
	out, errs := parse(t, "1 + 2 * 3 - -4;")
	require.Empty(t, errs)
	require.Len(t, out, 1)
	assert.Equal(t, "(- (+ 1 (* 2 3)) (- 4))", out[0])
}

func TestParse_VarDeclAndAssignment(t *testing.T) {
	out, errs := parse(t, "var a = 1; a = 2;")
	require.Empty(t, errs)
	require.Len(t, out, 2)
	assert.Equal(t, "var a = 1", out[0])
	assert.Equal(t, "a = 2", out[1])
}

func TestParse_IfElse(t *testing.T) {
	out, errs := parse(t, "if (a) print 1; else print 2;")
	require.Empty(t, errs)
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "if (a)")
	assert.Contains(t, out[0], "else")
}

func TestParse_ForDesugarsToWhile(t *testing.T) {
	out, errs := parse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.Empty(t, errs)
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "while")
}

func TestParse_ClassWithSuperclass(t *testing.T) {
	out, errs := parse(t, "class Cake < Pastry { bake() { print \"baking\"; } }")
	require.Empty(t, errs)
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "class Cake < Pastry")
	assert.Contains(t, out[0], "fun bake()")
}

func TestParse_GetSetAndCall(t *testing.T) {
	out, errs := parse(t, "a.b = a.c(1, 2);")
	require.Empty(t, errs)
	require.Len(t, out, 1)
	assert.Equal(t, "a.b = a.c(1, 2)", out[0])
}

func TestParse_InvalidAssignmentTargetRecovers(t *testing.T) {
	_, errs := parse(t, "1 + 2 = 3; print 4;")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "Invalid assignment target")
}

func TestParse_MissingSemicolonReportsAndSynchronizes(t *testing.T) {
	out, errs := parse(t, "var a = 1 print a;")
	require.NotEmpty(t, errs)
	// synchronize() should skip to the next statement-starting keyword
	// (PRINT) rather than aborting the whole parse.
	require.Len(t, out, 1)
	assert.Equal(t, "print a", out[0])
}

func TestParse_BreakInsideWhile(t *testing.T) {
	out, errs := parse(t, "while (true) { break; }")
	require.Empty(t, errs)
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "break")
}
