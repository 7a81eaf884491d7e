package lexer

import (
	"unicode"
	"unicode/utf8"

	"chalk/internal/fault"
	"chalk/internal/token"
)

// Lexer scans one normalized source line. Each line is scanned exactly
// once; every later stage works on the token slice it produced.
type Lexer struct {
	input        string
	line         int
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means end of line
}

func New(input string, line int) *Lexer {
	l := &Lexer{input: input, line: line}
	l.readChar()
	return l
}

// Tokens scans a whole line, the final token being EOL. An illegal rune
// aborts the scan with a SyntaxError.
func Tokens(input string, line int) ([]token.Token, error) {
	l := New(input, line)
	var toks []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			return nil, fault.Errorf(fault.Syntax, line, "unexpected %q", tok.Literal)
		}
		toks = append(toks, tok)
		if tok.Type == token.EOL {
			return toks, nil
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	startPosition := l.position

	switch l.ch {
	case '=':
		// == is the alternate spelling of ~
		tok = l.handleCompoundToken(token.ASSIGN, '=', token.EQ, "~")
	case '!':
		// != is the alternate spelling of :
		tok = l.handleCompoundToken(token.BANG, '=', token.NOT_EQ, ":")
	case '<':
		// <= is the alternate spelling of {
		tok = l.handleCompoundToken(token.LT, '=', token.LT_EQ, "{")
	case '>':
		// >= is the alternate spelling of }
		tok = l.handleCompoundToken(token.GT, '=', token.GT_EQ, "}")
	case '~':
		tok = l.newToken(token.EQ, startPosition)
	case ':':
		tok = l.newToken(token.NOT_EQ, startPosition)
	case '{':
		tok = l.newToken(token.LT_EQ, startPosition)
	case '}':
		tok = l.newToken(token.GT_EQ, startPosition)
	case '&':
		tok = l.newToken(token.AND, startPosition)
	case '|':
		tok = l.newToken(token.OR, startPosition)
	case '^':
		tok = l.newToken(token.XOR, startPosition)
	case '+':
		tok = l.newToken(token.PLUS, startPosition)
	case '-':
		tok = l.newToken(token.MINUS, startPosition)
	case '*':
		tok = l.newToken(token.ASTERISK, startPosition)
	case '/':
		tok = l.newToken(token.SLASH, startPosition)
	case '%':
		tok = l.newToken(token.PERCENT, startPosition)
	case ',':
		tok = l.newToken(token.COMMA, startPosition)
	case ';':
		tok = l.newToken(token.SEMICOLON, startPosition)
	case '(':
		tok = l.newToken(token.LPAREN, startPosition)
	case ')':
		tok = l.newToken(token.RPAREN, startPosition)
	case '[':
		tok = l.newToken(token.LBRACKET, startPosition)
	case ']':
		tok = l.newToken(token.RBRACKET, startPosition)
	case '$':
		if isLetter(l.peekChar()) {
			l.readChar() // consume the sigil
			name := l.readIdentifier()
			return token.Token{Type: token.VAR, Literal: name, Line: l.line, Col: startPosition}
		}
		tok = l.newToken(token.ILLEGAL, startPosition)
	case 0:
		tok.Literal = ""
		tok.Type = token.EOL
		tok.Line = l.line
		tok.Col = startPosition
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			if literal == "end" && l.ch == '-' && isLetter(l.peekChar()) {
				l.readChar() // consume the hyphen
				literal = literal + "-" + l.readIdentifier()
			}
			tok.Type = token.LookupIdent(literal)
			if tok.Type == token.IDENT && startsEnd(literal) {
				tok.Type = token.ILLEGAL
			}
			tok.Literal = literal
			tok.Line = l.line
			tok.Col = startPosition
			return tok
		} else if isDigit(l.ch) {
			literal, isFloat := l.readNumber()
			tok.Type = token.INT
			if isFloat {
				tok.Type = token.FLOAT
			}
			tok.Literal = literal
			tok.Line = l.line
			tok.Col = startPosition
			return tok
		}
		tok = l.newToken(token.ILLEGAL, startPosition)
	}

	l.readChar()
	return tok
}

// handleCompoundToken folds a two-char spelling into its canonical
// single-glyph token, e.g. <= into {.
func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
	canonical string,
) token.Token {
	startPosition := l.position
	if l.peekChar() == ch1 {
		l.readChar()
		return token.Token{Type: t1, Literal: canonical, Line: l.line, Col: startPosition}
	}
	return l.newToken(t, startPosition)
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at end of line
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber scans an integer, continuing past a dot into a float when a
// digit follows it. Reports whether the literal was a float.
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		return l.input[start:l.position], true
	}
	return l.input[start:l.position], false
}

// startsEnd reports an end-* word that is not one of the four block
// closers, which has no other legal reading.
func startsEnd(literal string) bool {
	return len(literal) > 4 && literal[:4] == "end-"
}

// Unicode-aware helpers
func isLetter(ch rune) bool {
	// Letters, underscore, and categories like Letter and Mark to support identifiers like café,变量
	return ch == '_' || unicode.IsLetter(ch) || unicode.Is(unicode.Mn, ch) || unicode.Is(unicode.Mc, ch)
}

func isDigit(ch rune) bool {
	// Allow Unicode decimal digits
	return unicode.IsDigit(ch)
}

func (l *Lexer) newToken(tokenType token.TokenType, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(l.ch), Line: l.line, Col: position}
}
