package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", LevelNone},
		{"verbose", LevelNone},
		{"", LevelNone},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSinkSwapsFileOnReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chalk.log")

	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	s := &sink{file: fh}
	if _, err := s.Write([]byte("one\n")); err != nil {
		t.Fatal(err)
	}

	moved := filepath.Join(dir, "chalk.log.1")
	if err := os.Rename(path, moved); err != nil {
		t.Fatal(err)
	}
	if err := s.reopen(path); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Write([]byte("two\n")); err != nil {
		t.Fatal(err)
	}
	defer s.file.Close()

	before, err := os.ReadFile(moved)
	if err != nil {
		t.Fatal(err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != "one\n" {
		t.Errorf("rotated file holds %q, want %q", before, "one\n")
	}
	if string(after) != "two\n" {
		t.Errorf("reopened file holds %q, want %q", after, "two\n")
	}
}

func TestClosedSinkDropsWrites(t *testing.T) {
	s := &sink{}
	n, err := s.Write([]byte("late\n"))
	if err != nil || n != 5 {
		t.Fatalf("Write on closed sink = (%d, %v), want (5, nil)", n, err)
	}
}
