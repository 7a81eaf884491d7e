package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOL     = "EOL" // end of a normalized source line

	// Identifiers + literals
	IDENT = "IDENT" // function names: print, fib, ...
	VAR   = "VAR"   // $count, $total, ...
	INT   = "INT"   // 1343456
	FLOAT = "FLOAT" // 13.5
	TYPE  = "TYPE"  // int, float, bool, list, auto

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	LT    = "<"
	GT    = ">"
	LT_EQ = "{" // canonical glyph for <=
	GT_EQ = "}" // canonical glyph for >=

	EQ     = "~"
	NOT_EQ = ":"

	AND = "&"
	OR  = "|"
	XOR = "^"

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	DECL         = "DECL"
	SAFE         = "SAFE"
	OVERWRITE    = "OVERWRITE"
	CONST        = "CONST"
	GLOBAL       = "GLOBAL"
	IF           = "IF"
	ELSE         = "ELSE"
	END_IF       = "END_IF"
	FOR          = "FOR"
	END_FOR      = "END_FOR"
	WHILE        = "WHILE"
	END_WHILE    = "END_WHILE"
	FUNCTION     = "FUNCTION"
	END_FUNCTION = "END_FUNCTION"
	RECURSIVE    = "RECURSIVE"
	TRACE        = "TRACE"
	RETURN       = "RETURN"
	BREAK        = "BREAK"
	CONTINUE     = "CONTINUE"
	TRUE         = "TRUE"
	FALSE        = "FALSE"
	NULL         = "NULL"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int // original source line, surviving normalization
	Col     int // byte offset within the normalized line
}

var keywords = map[string]TokenType{
	// constants
	"null":  NULL,
	"true":  TRUE,
	"false": FALSE,

	// declarations
	"decl":      DECL,
	"safe":      SAFE,
	"overwrite": OVERWRITE,
	"const":     CONST,
	"global":    GLOBAL,

	// type classifiers
	"int":   TYPE,
	"float": TYPE,
	"bool":  TYPE,
	"list":  TYPE,
	"auto":  TYPE,

	// flow control
	"if":           IF,
	"else":         ELSE,
	"end-if":       END_IF,
	"for":          FOR,
	"end-for":      END_FOR,
	"while":        WHILE,
	"end-while":    END_WHILE,
	"function":     FUNCTION,
	"end-function": END_FUNCTION,
	"recursive":    RECURSIVE,
	"trace":        TRACE,
	"return":       RETURN,
	"break":        BREAK,
	"continue":     CONTINUE,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsModifier reports whether t is a declaration modifier that may
// precede the decl keyword.
func IsModifier(t TokenType) bool {
	switch t {
	case SAFE, OVERWRITE, CONST, GLOBAL:
		return true
	}
	return false
}
