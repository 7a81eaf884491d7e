package source

import (
	"fmt"
	"os"
	"strings"

	"chalk/internal/fault"
)

// Line is one normalized statement line. Num is the 1-based line number
// in the original source, so faults report positions the author can find
// even after comments and blanks are dropped.
type Line struct {
	Num  int
	Text string
}

// Settings holds @set directives collected during normalization.
// Later directives overwrite earlier ones.
type Settings map[string]string

func (s Settings) Bool(key string) bool {
	switch strings.ToLower(s[key]) {
	case "on", "true", "all", "1", "yes":
		return true
	}
	return false
}

func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("loading source %s: %w", path, err)
	}
	return string(data), nil
}

// Normalize strips comments and blank lines, collapses whitespace runs
// to single spaces and collects @set directives. The language has no
// string literals, so both transformations are safe anywhere in a line.
func Normalize(src string) ([]Line, Settings, error) {
	var lines []Line
	settings := Settings{}

	for i, raw := range strings.Split(src, "\n") {
		num := i + 1
		text := strings.TrimSuffix(raw, "\r")
		text = stripComment(text)
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "@") {
			if err := directive(text, num, settings); err != nil {
				return nil, nil, err
			}
			continue
		}
		lines = append(lines, Line{Num: num, Text: text})
	}
	return lines, settings, nil
}

func stripComment(text string) string {
	if i := strings.Index(text, "#"); i >= 0 {
		text = text[:i]
	}
	if i := strings.Index(text, "//"); i >= 0 {
		text = text[:i]
	}
	return text
}

func directive(text string, num int, settings Settings) error {
	fields := strings.Fields(text)
	if fields[0] != "@set" {
		return fault.Errorf(fault.Syntax, num, "unknown directive %s", fields[0])
	}
	if len(fields) < 3 {
		return fault.New(fault.Syntax, num, "@set needs a key and a value")
	}
	settings[fields[1]] = strings.Join(fields[2:], " ")
	return nil
}
