package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rlox/internal/parser"
	"rlox/internal/scanner"
)

func resolve(t *testing.T, src string) []error {
	t.Helper()
	toks, lexErrs := scanner.New([]byte(src)).Scan()
	require.Empty(t, lexErrs)
	stmts, parseErrs := parser.New(toks).Parse()
	require.Empty(t, parseErrs)
	return New().Resolve(stmts)
}

func TestResolve_SelfInitializerIsRejected(t *testing.T) {
	errs := resolve(t, "var a = 1; { var a = a; }")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "own initializer")
}

func TestResolve_DuplicateLocalIsRejected(t *testing.T) {
	errs := resolve(t, "{ var a = 1; var a = 2; }")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "Already a variable")
}

func TestResolve_BreakOutsideLoopIsRejected(t *testing.T) {
	errs := resolve(t, "break;")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "outside of a loop")
}

func TestResolve_BreakInsideLoopIsFine(t *testing.T) {
	errs := resolve(t, "while (true) { break; }")
	assert.Empty(t, errs)
}

func TestResolve_ReturnOutsideFunctionIsRejected(t *testing.T) {
	errs := resolve(t, "return 1;")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "return from top-level")
}

func TestResolve_ReturnValueFromInitializerIsRejected(t *testing.T) {
	errs := resolve(t, `class A { init() { return 1; } }`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "return a value from an initializer")
}

func TestResolve_ThisOutsideClassIsRejected(t *testing.T) {
	errs := resolve(t, "print this;")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "'this' outside of a class")
}

func TestResolve_SuperWithoutSuperclassIsRejected(t *testing.T) {
	errs := resolve(t, "class A { foo() { super.foo(); } }")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "class with no superclass")
}

func TestResolve_ClassInheritingItselfIsRejected(t *testing.T) {
	errs := resolve(t, "class A < A {}")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "inherit from itself")
}

func TestResolve_LocalDepthRecorded(t *testing.T) {
	toks, lexErrs := scanner.New([]byte("{ var a = 1; { print a; } }")).Scan()
	require.Empty(t, lexErrs)
	stmts, parseErrs := parser.New(toks).Parse()
	require.Empty(t, parseErrs)

	r := New()
	errs := r.Resolve(stmts)
	require.Empty(t, errs)
	require.Len(t, r.Locals, 1)
	for _, depth := range r.Locals {
		assert.Equal(t, 1, depth) // one scope out: inner block -> outer block
	}
}
