package lexer

import (
	"testing"

	"chalk/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `safe decl int $count = 41 + 2 * [1, 3.5]`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.SAFE, "safe"},
		{token.DECL, "decl"},
		{token.TYPE, "int"},
		{token.VAR, "count"},
		{token.ASSIGN, "="},
		{token.INT, "41"},
		{token.PLUS, "+"},
		{token.INT, "2"},
		{token.ASTERISK, "*"},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.FLOAT, "3.5"},
		{token.RBRACKET, "]"},
		{token.EOL, ""},
	}

	l := New(input, 1)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestOperatorGlyphs(t *testing.T) {
	input := `$a ~ $b : $c { $d } $e < $f > !$g & $h | $i ^ $j % 2 - 1 / 3`

	var types []token.TokenType
	l := New(input, 1)
	for {
		tok := l.NextToken()
		if tok.Type == token.EOL {
			break
		}
		if tok.Type == token.ILLEGAL {
			t.Fatalf("illegal token %q", tok.Literal)
		}
		types = append(types, tok.Type)
	}

	want := []token.TokenType{
		token.VAR, token.EQ, token.VAR, token.NOT_EQ, token.VAR,
		token.LT_EQ, token.VAR, token.GT_EQ, token.VAR,
		token.LT, token.VAR, token.GT, token.BANG, token.VAR,
		token.AND, token.VAR, token.OR, token.VAR, token.XOR, token.VAR,
		token.PERCENT, token.INT, token.MINUS, token.INT, token.SLASH, token.INT,
	}
	if len(types) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(types), len(want), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestAlternateSpellings(t *testing.T) {
	tests := []struct {
		input string
		typ   token.TokenType
		lit   string
	}{
		{"==", token.EQ, "~"},
		{"!=", token.NOT_EQ, ":"},
		{"<=", token.LT_EQ, "{"},
		{">=", token.GT_EQ, "}"},
		{"=", token.ASSIGN, "="},
		{"!", token.BANG, "!"},
		{"<", token.LT, "<"},
		{">", token.GT, ">"},
	}
	for _, tt := range tests {
		tok := New(tt.input, 1).NextToken()
		if tok.Type != tt.typ || tok.Literal != tt.lit {
			t.Errorf("%q -> (%q, %q), want (%q, %q)", tt.input, tok.Type, tok.Literal, tt.typ, tt.lit)
		}
	}
}

func TestBlockKeywords(t *testing.T) {
	toks, err := Tokens("end-if end-for end-while end-function recursive", 9)
	if err != nil {
		t.Fatal(err)
	}
	want := []token.TokenType{token.END_IF, token.END_FOR, token.END_WHILE, token.END_FUNCTION, token.RECURSIVE, token.EOL}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d = %q, want %q", i, toks[i].Type, w)
		}
	}
	if toks[0].Line != 9 {
		t.Errorf("line = %d, want 9", toks[0].Line)
	}
}

func TestIllegalTokens(t *testing.T) {
	for _, input := range []string{"end-widget", "$", "decl $x = 1 ?"} {
		if _, err := Tokens(input, 1); err == nil {
			t.Errorf("Tokens(%q) succeeded, want SyntaxError", input)
		}
	}
}

func TestUnicodeIdentifiers(t *testing.T) {
	toks, err := Tokens("decl $总数 = 1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if toks[1].Type != token.VAR || toks[1].Literal != "总数" {
		t.Errorf("got %q %q", toks[1].Type, toks[1].Literal)
	}
}
