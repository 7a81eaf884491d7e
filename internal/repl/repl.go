// Package repl drives an interactive session: read a statement or
// expression, run it against one persistent environment, print what
// came back.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"chalk/internal/ast"
	"chalk/internal/compiler"
	"chalk/internal/fault"
	"chalk/internal/interp"
	"chalk/internal/lexer"
	"chalk/internal/object"
	"chalk/internal/parser"
	"chalk/internal/program"
)

const (
	PROMPT       = ">> "
	CONTINUATION = ".. "
)

// Start runs a session until in is exhausted. A nil interpreter gets
// replaced by a fresh one that writes to out, declares implicitly and
// allows function redefinition, which is what an interactive session
// wants.
func Start(ctx context.Context, in io.Reader, out io.Writer, it *interp.Interp) {
	if it == nil {
		it = interp.New(interp.Options{Out: out, Redefine: true})
	}
	scanner := bufio.NewScanner(in)

	var pending []string
	depth := 0

	for {
		if depth > 0 {
			fmt.Fprint(out, CONTINUATION)
		} else {
			fmt.Fprint(out, PROMPT)
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		pending = append(pending, line)
		if depth += blockDelta(line); depth > 0 {
			continue
		}
		// A stray closer goes through as-is so the compiler can
		// complain about it.
		depth = 0

		src := strings.Join(pending, "\n")
		pending = nil
		if strings.TrimSpace(src) == "" {
			continue
		}
		dispatch(ctx, out, it, src)
	}
}

func dispatch(ctx context.Context, out io.Writer, it *interp.Interp, src string) {
	prog, compileErr := compiler.CompileSource(src, compiler.Options{ImplicitDecl: true})
	if compileErr == nil {
		// A lone call runs as an expression so its result shows up;
		// as a statement the result would be discarded.
		if call := soleCall(prog); call != nil {
			val, err := it.Eval(ctx, call)
			report(out, val, err)
			return
		}
		val, err := it.Run(ctx, prog)
		report(out, val, err)
		return
	}

	// Not a statement. Single lines get a second chance as a bare
	// expression, so `1 + 2` or `$x` print their value.
	expr, parseErr := parseExpr(src)
	if parseErr != nil {
		fmt.Fprintf(out, "error: %v\n", compileErr)
		return
	}
	val, err := it.Eval(ctx, expr)
	report(out, val, err)
}

func report(out io.Writer, val object.Value, err error) {
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if val.Kind() != object.NULL {
		fmt.Fprintln(out, val.Inspect())
	}
}

// soleCall returns the call expression when the program is exactly one
// ordinary call statement. Control keywords keep their statement form:
// a top-level return should unwind, not hit the registry.
func soleCall(prog *program.Program) *ast.CallExpression {
	if prog.Body == nil || len(prog.Body.Items) != 1 {
		return nil
	}
	vc, ok := prog.Body.Items[0].(*program.VoidCall)
	if !ok {
		return nil
	}
	switch vc.Call.Name {
	case "break", "continue", "return":
		return nil
	}
	return vc.Call
}

func parseExpr(src string) (ast.Expression, error) {
	if strings.Contains(src, "\n") {
		return nil, fault.Errorf(fault.Syntax, 1, "not an expression")
	}
	toks, err := lexer.Tokens(src, 1)
	if err != nil {
		return nil, err
	}
	return parser.Parse(toks)
}

// blockDelta reports how the line changes block nesting, judged by its
// leading word. Good enough to pick the prompt; the compiler is the
// authority on matching.
func blockDelta(line string) int {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0
	}
	switch fields[0] {
	case "for", "while", "if", "function":
		return 1
	case "end-for", "end-while", "end-if", "end-function":
		return -1
	}
	return 0
}
