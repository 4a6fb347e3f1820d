package interp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rlox/internal/interp"
	"rlox/internal/parser"
	"rlox/internal/resolver"
	"rlox/internal/scanner"
)

// run executes src through the full scan/parse/resolve/interpret pipeline
// and returns everything printed to stdout.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	toks, lexErrs := scanner.New([]byte(src)).Scan()
	require.Empty(t, lexErrs)
	stmts, parseErrs := parser.New(toks).Parse()
	require.Empty(t, parseErrs)

	r := resolver.New()
	resolveErrs := r.Resolve(stmts)
	require.Empty(t, resolveErrs)

	var out bytes.Buffer
	it := interp.New(r.Locals)
	it.Out = &out
	err := it.Run(stmts)
	return out.String(), err
}

func TestInterp_Arithmetic(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3; print (1 + 2) * 3; print "a" + "b"; print 10 / 4;`)
	require.NoError(t, err)
	assert.Equal(t, "7\n9\nab\n2.5\n", out)
}

func TestInterp_NumberDisplayHasNoTrailingZero(t *testing.T) {
	out, err := run(t, `print 3.0; print 3.5;`)
	require.NoError(t, err)
	assert.Equal(t, "3\n3.5\n", out)
}

func TestInterp_Truthiness(t *testing.T) {
	out, err := run(t, `print !nil; print !false; print !0; print !"";`)
	require.NoError(t, err)
	assert.Equal(t, "true\ntrue\nfalse\nfalse\n", out)
}

func TestInterp_VariablesAndScope(t *testing.T) {
	out, err := run(t, `
		var a = "global";
		{
			var a = "local";
			print a;
		}
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, "local\nglobal\n", out)
}

func TestInterp_Closures(t *testing.T) {
	out, err := run(t, `
		fun makeCounter() {
			var i = 0;
			fun count() {
				i = i + 1;
				print i;
			}
			return count;
		}
		var counter = makeCounter();
		counter();
		counter();
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestInterp_WhileAndBreak(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		while (true) {
			if (i >= 3) break;
			print i;
			i = i + 1;
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestInterp_ForLoop(t *testing.T) {
	out, err := run(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestInterp_ClassesAndMethods(t *testing.T) {
	out, err := run(t, `
		class Greeter {
			init(name) {
				this.name = name;
			}
			greet() {
				print "hello, " + this.name;
			}
		}
		var g = Greeter("world");
		g.greet();
	`)
	require.NoError(t, err)
	assert.Equal(t, "hello, world\n", out)
}

func TestInterp_Inheritance(t *testing.T) {
	out, err := run(t, `
		class Animal {
			speak() {
				print "...";
			}
		}
		class Dog < Animal {
			speak() {
				super.speak();
				print "woof";
			}
		}
		Dog().speak();
	`)
	require.NoError(t, err)
	assert.Equal(t, "...\nwoof\n", out)
}

func TestInterp_RuntimeErrorUndefinedVariable(t *testing.T) {
	_, err := run(t, `print undefined_thing;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable")
}

func TestInterp_RuntimeErrorTypeMismatch(t *testing.T) {
	_, err := run(t, `print 1 + "two";`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be")
}

func TestInterp_RuntimeErrorDivideByZero(t *testing.T) {
	_, err := run(t, `print 1 / 0;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Divide by zero")
}

func TestInterp_ClockIsCallableWithNoArgs(t *testing.T) {
	out, err := run(t, `print clock() >= 0;`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestInterp_InstanceDisplay(t *testing.T) {
	out, err := run(t, `
		class Pie {}
		print Pie();
	`)
	require.NoError(t, err)
	assert.Equal(t, "Pie instance\n", out)
}
