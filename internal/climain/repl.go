package climain

import (
	"io"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"rlox/internal/interp"
	"rlox/internal/parser"
	"rlox/internal/resolver"
	"rlox/internal/scanner"
)

var errColor = color.New(color.FgRed)

// repl runs an interactive session: one Interpreter persists across lines
// so globals survive. Uses chzyer/readline for line editing and history,
// fatih/color for error highlighting, and recovers from a panic around
// each line so one bad line never kills the session.
func repl(stdout, stderr io.Writer) int {
	// readline always talks to the real terminal (os.Stdin under the
	// hood); only the interpreter's own output is redirectable, which is
	// what lets `it.Out = stdout` below point somewhere other than the
	// process's real stdout in tests.
	rl, err := readline.New("> ")
	if err != nil {
		errColor.Fprintf(stderr, "%v\n", err)
		return 70
	}
	defer rl.Close()

	r := resolver.New()
	it := interp.New(r.Locals)
	it.Out = stdout
	it.ReplMode = true

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl-D) or readline.ErrInterrupt (Ctrl-C)
			return 0
		}
		if line == "" {
			continue
		}
		runLine(it, r, line, stderr)
	}
}

func runLine(it *interp.Interpreter, r *resolver.Resolver, line string, stderr io.Writer) {
	defer func() {
		if rec := recover(); rec != nil {
			errColor.Fprintf(stderr, "[internal error] %v\n", rec)
		}
	}()

	toks, lexErrs := scanner.New([]byte(line)).Scan()
	for _, e := range lexErrs {
		errColor.Fprintln(stderr, e)
	}

	p := parser.New(toks)
	stmts, parseErrs := p.Parse()
	for _, e := range parseErrs {
		errColor.Fprintln(stderr, e)
	}
	if len(lexErrs) > 0 || len(parseErrs) > 0 {
		return
	}

	resolveErrs := r.Resolve(stmts)
	for _, e := range resolveErrs {
		errColor.Fprintln(stderr, e)
	}
	if len(resolveErrs) > 0 {
		return
	}

	if err := it.Run(stmts); err != nil {
		errColor.Fprintln(stderr, err)
	}
}
