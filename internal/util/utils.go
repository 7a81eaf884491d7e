package util

import (
	"fmt"
	"strings"
)

// ContextLines renders the source around the failing line, two lines
// of lead-in plus the line itself marked with an arrow. Faults carry
// a line but no column, so the arrow points at the whole line.
func ContextLines(src string, line int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}

	start := line - 2
	if start < 1 {
		start = 1
	}

	var b strings.Builder
	for i := start; i <= line; i++ {
		if i == line {
			fmt.Fprintf(&b, "  >  %3d | %s\n", i, lines[i-1])
		} else {
			fmt.Fprintf(&b, "     %3d | %s\n", i, lines[i-1])
		}
	}
	return b.String()
}
