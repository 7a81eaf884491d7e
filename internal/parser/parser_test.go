package parser

import (
	"testing"

	"chalk/internal/ast"
	"chalk/internal/fault"
	"chalk/internal/lexer"
)

func parseSrc(t *testing.T, input string) ast.Expression {
	t.Helper()
	toks, err := lexer.Tokens(input, 1)
	if err != nil {
		t.Fatalf("lexing %q: %v", input, err)
	}
	expr, err := Parse(toks)
	if err != nil {
		t.Fatalf("parsing %q: %v", input, err)
	}
	return expr
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"$a + $b - $c", "(($a + $b) - $c)"},
		{"10 % 3 * 2", "((10 % 3) * 2)"},
		{"-1 + 2", "((-1) + 2)"},
		{"!$ok ~ false", "((!$ok) ~ false)"},
		{"1 + 2 ~ 3", "((1 + 2) ~ 3)"},
		{"1 < 2 ~ true", "((1 < 2) ~ true)"},
		{"$a { $b | $c } $d", "(($a { $b) | ($c } $d))"},
		{"$a & $b | $c & $d", "(($a & $b) | ($c & $d))"},
		{"$a ^ $b | $c", "(($a ^ $b) | $c)"},
		{"$a & $b ^ $c", "(($a & $b) ^ $c)"},
		{"$a : $b & $c ~ $d", "(($a : $b) & ($c ~ $d))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"$l[1] + 1", "(($l[1]) + 1)"},
		{"$l[$i + 1]", "($l[($i + 1)])"},
		{"$m[0][1]", "(($m[0])[1])"},
		{"len($l) - 1", "(len($l) - 1)"},
		{"max(1, 2 * 3)", "max(1, (2 * 3))"},
		{"-$l[0]", "(-($l[0]))"},
		{"[1, 2 + 3, $x]", "[1, (2 + 3), $x]"},
		{"3.5 * 2.0", "(3.5 * 2.0)"},
		{"null : $x", "(null : $x)"},
	}

	for _, tt := range tests {
		expr := parseSrc(t, tt.input)
		if got := expr.String(); got != tt.expected {
			t.Errorf("%q: expected=%q, got=%q", tt.input, tt.expected, got)
		}
	}
}

func TestAlternateSpellingsParseIdentically(t *testing.T) {
	pairs := [][2]string{
		{"$a <= $b", "$a { $b"},
		{"$a >= $b", "$a } $b"},
		{"$a == $b", "$a ~ $b"},
		{"$a != $b", "$a : $b"},
	}
	for _, pair := range pairs {
		left := parseSrc(t, pair[0]).String()
		right := parseSrc(t, pair[1]).String()
		if left != right {
			t.Errorf("%q parsed as %q, %q parsed as %q", pair[0], left, pair[1], right)
		}
	}
}

func TestCallExpression(t *testing.T) {
	expr := parseSrc(t, "fib($n - 1) + fib($n - 2)")
	infix, ok := expr.(*ast.InfixExpression)
	if !ok {
		t.Fatalf("expr is %T, want InfixExpression", expr)
	}
	call, ok := infix.Left.(*ast.CallExpression)
	if !ok {
		t.Fatalf("left is %T, want CallExpression", infix.Left)
	}
	if call.Name != "fib" || len(call.Arguments) != 1 {
		t.Errorf("call = %s", call.String())
	}
}

func TestEmptyArgumentList(t *testing.T) {
	expr := parseSrc(t, "random()")
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expr is %T, want CallExpression", expr)
	}
	if len(call.Arguments) != 0 {
		t.Errorf("got %d arguments, want 0", len(call.Arguments))
	}
}

func TestSyntaxErrors(t *testing.T) {
	inputs := []string{
		"1 +",
		"(1 + 2",
		"$l[1",
		"max(1,",
		"1 2",
		"decl",
		"len $l",
		"$a ~ ~ $b",
	}
	for _, input := range inputs {
		toks, err := lexer.Tokens(input, 3)
		if err != nil {
			continue // lexer already rejected it
		}
		_, err = Parse(toks)
		if !fault.IsKind(err, fault.Syntax) {
			t.Errorf("Parse(%q) err = %v, want SyntaxError", input, err)
			continue
		}
		if fault.LineOf(err) != 3 {
			t.Errorf("Parse(%q) fault line = %d, want 3", input, fault.LineOf(err))
		}
	}
}

func TestParseSubSliceWithoutEOL(t *testing.T) {
	toks, err := lexer.Tokens("$i < 10", 2)
	if err != nil {
		t.Fatal(err)
	}
	// drop the EOL the way the compiler does when carving out clauses
	expr, err := Parse(toks[:len(toks)-1])
	if err != nil {
		t.Fatal(err)
	}
	if expr.String() != "($i < 10)" {
		t.Errorf("got %q", expr.String())
	}
}
