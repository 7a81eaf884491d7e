package source

import (
	"testing"

	"chalk/internal/fault"
)

func TestNormalizeStripsCommentsAndBlanks(t *testing.T) {
	src := "# a header comment\n\ndecl int $x = 1   // trailing\n\n   \n$x   =   $x + 1\n"
	lines, _, err := Normalize(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Num != 3 || lines[0].Text != "decl int $x = 1" {
		t.Errorf("line 0 = %d %q", lines[0].Num, lines[0].Text)
	}
	if lines[1].Num != 6 || lines[1].Text != "$x = $x + 1" {
		t.Errorf("line 1 = %d %q", lines[1].Num, lines[1].Text)
	}
}

func TestNormalizeCollectsSettings(t *testing.T) {
	src := "@set trace all\n@set implicit-decl on\ndecl $x = 0\n"
	lines, settings, err := Normalize(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if settings["trace"] != "all" || !settings.Bool("trace") {
		t.Errorf("trace setting = %q", settings["trace"])
	}
	if !settings.Bool("implicit-decl") {
		t.Error("implicit-decl not on")
	}
}

func TestNormalizeRejectsUnknownDirective(t *testing.T) {
	_, _, err := Normalize("@include other.chalk\n")
	if !fault.IsKind(err, fault.Syntax) {
		t.Fatalf("got %v, want SyntaxError", err)
	}
	if fault.LineOf(err) != 1 {
		t.Errorf("fault line = %d, want 1", fault.LineOf(err))
	}
}

func TestNormalizeWindowsLineEndings(t *testing.T) {
	lines, _, err := Normalize("decl $a = 1\r\ndecl $b = 2\r\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[1].Text != "decl $b = 2" {
		t.Fatalf("lines = %+v", lines)
	}
}
