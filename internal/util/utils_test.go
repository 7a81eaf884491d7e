package util

import "testing"

func TestContextLinesMarksTheFailingLine(t *testing.T) {
	src := "decl $a = 1\ndecl $b = 2\n$a = $c\nprint($a)"
	got := ContextLines(src, 3)
	want := "       1 | decl $a = 1\n" +
		"       2 | decl $b = 2\n" +
		"  >    3 | $a = $c\n"
	if got != want {
		t.Fatalf("ContextLines:\n%q\nwant:\n%q", got, want)
	}
}

func TestContextLinesAtTheTop(t *testing.T) {
	got := ContextLines("oops\nfine", 1)
	want := "  >    1 | oops\n"
	if got != want {
		t.Fatalf("ContextLines = %q, want %q", got, want)
	}
}

func TestContextLinesOutOfRange(t *testing.T) {
	if got := ContextLines("one line", 5); got != "" {
		t.Fatalf("ContextLines = %q, want empty", got)
	}
	if got := ContextLines("one line", 0); got != "" {
		t.Fatalf("ContextLines(0) = %q, want empty", got)
	}
}
