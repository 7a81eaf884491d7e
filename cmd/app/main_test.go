package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"chalk/internal/interp"
	"chalk/internal/util"
)

func writeScript(t *testing.T, src string) (util.Configuration, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lesson.chalk"), []byte(src), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return util.Configuration{RootPath: dir, MaxCallDepth: interp.DefaultMaxCallDepth}, "lesson.chalk"
}

func TestRunFilePrintsFinalValue(t *testing.T) {
	cfg, name := writeScript(t, "return([1, 2])")

	var out bytes.Buffer
	if code := runFile(context.Background(), cfg, name, &out); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if got := out.String(); got != "[1, 2]\n" {
		t.Errorf("output = %q, want %q", got, "[1, 2]\n")
	}
}

func TestRunFileIntegerReturnPrintsAndSetsStatus(t *testing.T) {
	cfg, name := writeScript(t, "return(3)")

	var out bytes.Buffer
	if code := runFile(context.Background(), cfg, name, &out); code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
	if got := out.String(); got != "3\n" {
		t.Errorf("output = %q, want %q", got, "3\n")
	}
}

func TestRunFileNullResultStaysQuiet(t *testing.T) {
	cfg, name := writeScript(t, "decl $x = 1")

	var out bytes.Buffer
	if code := runFile(context.Background(), cfg, name, &out); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want empty", out.String())
	}
}
