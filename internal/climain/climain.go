// Package climain is rlox's command dispatch: "tokenize / parse / resolve
// / run", threaded through mainer.Stdio so the binary's own main() stays a
// one-liner.
package climain

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"rlox/internal/interp"
	"rlox/internal/loxerr"
	"rlox/internal/parser"
	"rlox/internal/resolver"
	"rlox/internal/scanner"
)

const usage = "Usage: rlox [script]"

// Run implements the CLI's entry dispatch:
//
//	rlox                    interactive prompt
//	rlox <path>              execute the file, exit 0/65/70
//	rlox tokenize|parse|resolve <path>   debug subcommands
//	anything else             usage message to stderr, exit 64
func Run(args []string, stdio mainer.Stdio) mainer.ExitCode {
	argv := args[1:] // args[0] is the program name, as with os.Args

	switch len(argv) {
	case 0:
		return mainer.ExitCode(repl(stdio.Stdout, stdio.Stderr))
	case 1:
		return mainer.ExitCode(runFile(argv[0], stdio))
	case 2:
		switch argv[0] {
		case "tokenize":
			return mainer.ExitCode(debugTokenize(argv[1], stdio))
		case "parse":
			return mainer.ExitCode(debugParse(argv[1], stdio))
		case "resolve":
			return mainer.ExitCode(debugResolve(argv[1], stdio))
		}
	}

	fmt.Fprintln(stdio.Stderr, usage)
	return mainer.ExitCode(64)
}

// runFile scans, parses, resolves, and runs a script, mapping any
// diagnostic to the exit code its kind assigns.
func runFile(path string, stdio mainer.Stdio) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "rlox: %v\n", err)
		return 66
	}

	toks, lexErrs := scanner.New(src).Scan()
	if code := reportAll(stdio.Stderr, lexErrs); code != 0 {
		return code
	}

	p := parser.New(toks)
	stmts, parseErrs := p.Parse()
	if code := reportAll(stdio.Stderr, parseErrs); code != 0 {
		return code
	}

	r := resolver.New()
	resolveErrs := r.Resolve(stmts)
	if code := reportAll(stdio.Stderr, resolveErrs); code != 0 {
		return code
	}

	it := interp.New(r.Locals)
	it.Out = stdio.Stdout
	if err := it.Run(stmts); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		if le, ok := err.(*loxerr.Error); ok {
			return le.ExitCode()
		}
		return 70
	}
	return 0
}

// reportAll prints every diagnostic and, if any were present, returns the
// exit code for the worst one (they're all the same Kind within a single
// pass, so the first one's code suffices).
func reportAll(stderr io.Writer, errs []error) int {
	if len(errs) == 0 {
		return 0
	}
	for _, e := range errs {
		fmt.Fprintln(stderr, e)
	}
	if le, ok := errs[0].(*loxerr.Error); ok {
		return le.ExitCode()
	}
	return 65
}

func debugTokenize(path string, stdio mainer.Stdio) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "rlox: %v\n", err)
		return 66
	}
	toks, errs := scanner.New(src).Scan()
	for _, t := range toks {
		fmt.Fprintln(stdio.Stdout, t.String())
	}
	return reportAll(stdio.Stderr, errs)
}

func debugParse(path string, stdio mainer.Stdio) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "rlox: %v\n", err)
		return 66
	}
	toks, lexErrs := scanner.New(src).Scan()
	if code := reportAll(stdio.Stderr, lexErrs); code != 0 {
		return code
	}
	stmts, parseErrs := parser.New(toks).Parse()
	if code := reportAll(stdio.Stderr, parseErrs); code != 0 {
		return code
	}
	for _, s := range stmts {
		fmt.Fprintln(stdio.Stdout, s.String())
	}
	return 0
}

func debugResolve(path string, stdio mainer.Stdio) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "rlox: %v\n", err)
		return 66
	}
	toks, lexErrs := scanner.New(src).Scan()
	if code := reportAll(stdio.Stderr, lexErrs); code != 0 {
		return code
	}
	stmts, parseErrs := parser.New(toks).Parse()
	if code := reportAll(stdio.Stderr, parseErrs); code != 0 {
		return code
	}
	r := resolver.New()
	resolveErrs := r.Resolve(stmts)
	if code := reportAll(stdio.Stderr, resolveErrs); code != 0 {
		return code
	}
	for _, s := range stmts {
		fmt.Fprintln(stdio.Stdout, s.String())
	}
	fmt.Fprintf(stdio.Stdout, "%d local binding(s) resolved\n", len(r.Locals))
	return 0
}
