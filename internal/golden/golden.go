// Package golden runs the interpreter end-to-end against .lox scripts under
// testdata/scripts and checks their output against "// expect:"-style
// trailer comments embedded in the script itself, rather than diffing
// against an external reference binary.
package golden

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"rlox/internal/interp"
	"rlox/internal/parser"
	"rlox/internal/resolver"
	"rlox/internal/scanner"
)

// Case is one discovered .lox script.
type Case struct {
	Path   string // path relative to the scripts root, e.g. "class/inheritance.lox"
	Source []byte
}

// Discover walks dir for *.lox files.
func Discover(dir string) ([]Case, error) {
	var cases []Case
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".lox") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		cases = append(cases, Case{Path: rel, Source: src})
		return nil
	})
	return cases, err
}

// Expectation is what a script's trailer comments say should happen.
type Expectation struct {
	// Stdout is the expected sequence of printed lines, one per "//
	// expect: X" comment, in source order.
	Stdout []string
	// RuntimeError is the message after "// expect runtime error: ", if any.
	RuntimeError string
	// CompileErrors are every "// [line N] Error..." or "// Error at ..."
	// comment. Run only checks that at least one static diagnostic was
	// produced when any are present; their text is not compared.
	CompileErrors []string
}

var (
	expectRe        = regexp.MustCompile(`// expect: ?(.*)`)
	expectRuntimeRe = regexp.MustCompile(`// expect runtime error: ?(.*)`)
	expectErrorRe   = regexp.MustCompile(`// (\[line (\d+)\] )?Error.*`)
)

// ParseExpectation scans a script's comments for the trailer-comment
// convention this test suite follows.
func ParseExpectation(src []byte) Expectation {
	var exp Expectation
	for _, line := range strings.Split(string(src), "\n") {
		if m := expectRuntimeRe.FindStringSubmatch(line); m != nil {
			exp.RuntimeError = m[1]
			continue
		}
		if m := expectRe.FindStringSubmatch(line); m != nil {
			exp.Stdout = append(exp.Stdout, m[1])
			continue
		}
		if expectErrorRe.MatchString(line) {
			exp.CompileErrors = append(exp.CompileErrors, strings.TrimPrefix(strings.TrimSpace(line), "// "))
		}
	}
	return exp
}

// Result is the outcome of running one Case.
type Result struct {
	Case     Case
	Passed   bool
	Failures []string
}

// Run executes one script in-process, using the same scan/parse/resolve/
// interpret pipeline cmd/rlox uses for file execution, and compares its
// behavior against the script's trailer comments.
func Run(c Case) Result {
	exp := ParseExpectation(c.Source)
	res := Result{Case: c, Passed: true}

	toks, lexErrs := scanner.New(c.Source).Scan()
	p := parser.New(toks)
	stmts, parseErrs := p.Parse()

	var compileErrs []error
	compileErrs = append(compileErrs, lexErrs...)
	compileErrs = append(compileErrs, parseErrs...)

	r := resolver.New()
	if len(compileErrs) == 0 {
		compileErrs = append(compileErrs, r.Resolve(stmts)...)
	}

	if len(exp.CompileErrors) > 0 {
		if len(compileErrs) == 0 {
			res.Passed = false
			res.Failures = append(res.Failures, "expected a compile-time error, got none")
		}
		return res
	}
	if len(compileErrs) > 0 {
		res.Passed = false
		for _, e := range compileErrs {
			res.Failures = append(res.Failures, "unexpected compile error: "+e.Error())
		}
		return res
	}

	var out bytes.Buffer
	i := interp.New(r.Locals)
	i.Out = &out
	runErr := i.Run(stmts)

	gotLines := splitLines(out.String())
	if exp.RuntimeError != "" {
		if runErr == nil {
			res.Passed = false
			res.Failures = append(res.Failures, "expected runtime error "+strconv.Quote(exp.RuntimeError)+", got none")
		} else if !strings.Contains(runErr.Error(), exp.RuntimeError) {
			res.Passed = false
			res.Failures = append(res.Failures, fmt.Sprintf("expected runtime error %q, got %q", exp.RuntimeError, runErr.Error()))
		}
	} else if runErr != nil {
		res.Passed = false
		res.Failures = append(res.Failures, "unexpected runtime error: "+runErr.Error())
	}

	if len(exp.Stdout) > 0 {
		if !stringsEqual(gotLines, exp.Stdout) {
			res.Passed = false
			res.Failures = append(res.Failures, fmt.Sprintf("stdout mismatch:\n  expected: %v\n  actual:   %v", exp.Stdout, gotLines))
		}
	}

	return res
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// PrintResult renders one case's outcome as a colored [passed]/[failed]
// line, with failure detail below it.
func PrintResult(w io.Writer, res Result) {
	if res.Passed {
		fmt.Fprintf(w, "  [%s] %s\n", color.GreenString("passed"), res.Case.Path)
		return
	}
	fmt.Fprintf(w, "  [%s] %s\n", color.RedString("failed"), res.Case.Path)
	for _, f := range res.Failures {
		fmt.Fprintf(w, "      %s\n", f)
	}
}
