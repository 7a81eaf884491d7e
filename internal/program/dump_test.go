package program_test

import (
	"strings"
	"testing"

	"chalk/internal/compiler"
)

func dumpOf(t *testing.T, src string) string {
	t.Helper()
	prog, err := compiler.CompileSource(src, compiler.Options{})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return prog.Dump()
}

func TestDumpRendersBlocks(t *testing.T) {
	src := strings.Join([]string{
		"function int double($n)",
		"  return($n * 2)",
		"end-function",
		"if 1 < 2",
		"  print(double(21))",
		"else",
		"  print(0)",
		"end-if",
	}, "\n")

	want := strings.Join([]string{
		"function int double($n)",
		"  return(($n * 2))",
		"end-function",
		"if ((1 < 2))",
		"  print(double(21))",
		"else",
		"  print(0)",
		"end-if",
	}, "\n")

	if got := dumpOf(t, src); got != want {
		t.Errorf("dump:\n%s\nwant:\n%s", got, want)
	}
}

func TestDumpMarksImplicitDeclarations(t *testing.T) {
	src := strings.Join([]string{
		"for ($i = 0; $i < 2; $i = $i + 1)",
		"  trace $i",
		"end-for",
	}, "\n")

	got := dumpOf(t, src)
	if !strings.Contains(got, "decl auto $i = 0  (implicit)") {
		t.Errorf("start clause not marked implicit:\n%s", got)
	}
	if !strings.Contains(got, "  trace $i") {
		t.Errorf("trace line missing or not indented:\n%s", got)
	}
}
