package compiler

import (
	"chalk/internal/fault"
	"chalk/internal/lexer"
	"chalk/internal/source"
	"chalk/internal/token"
)

// rawLine is one normalized line after the single tokenize pass.
type rawLine struct {
	num  int
	toks []token.Token // ends with the EOL token
}

// rawNode is a line plus, for block openers, the lines it owns. Blocks
// are purely structural here; no semantic checks happen in this pass.
type rawNode struct {
	line     rawLine
	children []*rawNode
}

var closers = map[token.TokenType]token.TokenType{
	token.FOR:      token.END_FOR,
	token.WHILE:    token.END_WHILE,
	token.IF:       token.END_IF,
	token.FUNCTION: token.END_FUNCTION,
}

var closerWords = map[token.TokenType]string{
	token.FOR:      "end-for",
	token.WHILE:    "end-while",
	token.IF:       "end-if",
	token.FUNCTION: "end-function",
}

func isCloser(t token.TokenType) bool {
	switch t {
	case token.END_FOR, token.END_WHILE, token.END_IF, token.END_FUNCTION:
		return true
	}
	return false
}

// lexLines tokenizes every normalized line exactly once.
func lexLines(lines []source.Line) ([]rawLine, error) {
	raw := make([]rawLine, 0, len(lines))
	for _, line := range lines {
		toks, err := lexer.Tokens(line.Text, line.Num)
		if err != nil {
			return nil, err
		}
		if len(toks) == 1 {
			continue // only EOL; nothing to execute
		}
		raw = append(raw, rawLine{num: line.Num, toks: toks})
	}
	return raw, nil
}

// buildRaw groups flat lines into a tree by pairing each block opener
// with its closer. The search counts nested re-occurrences of the same
// opening keyword and stops at the closer that returns the count to
// zero; running out of lines first is an UnclosedBlockError.
func buildRaw(lines []rawLine) ([]*rawNode, error) {
	var nodes []*rawNode

	for i := 0; i < len(lines); {
		lead := lines[i].toks[0]

		if closer, ok := closers[lead.Type]; ok {
			end, err := matchCloser(lines, i, lead.Type, closer)
			if err != nil {
				return nil, err
			}
			if len(lines[end].toks) != 2 {
				return nil, fault.Errorf(fault.Syntax, lines[end].num,
					"unexpected tokens after %s", lines[end].toks[0].Literal)
			}
			children, err := buildRaw(lines[i+1 : end])
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &rawNode{line: lines[i], children: children})
			i = end + 1
			continue
		}

		if isCloser(lead.Type) {
			return nil, fault.Errorf(fault.Syntax, lines[i].num,
				"%s without an open block", lead.Literal)
		}

		nodes = append(nodes, &rawNode{line: lines[i]})
		i++
	}

	return nodes, nil
}

func matchCloser(lines []rawLine, start int, opener, closer token.TokenType) (int, error) {
	depth := 1
	for i := start + 1; i < len(lines); i++ {
		switch lines[i].toks[0].Type {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fault.Errorf(fault.UnclosedBlock, lines[start].num,
		"%s opened on line %d has no matching %s",
		lines[start].toks[0].Literal, lines[start].num, closerWords[opener])
}
