package pylegend

import "unicode/utf8"

// Lexer tokenizes one line of pylegend.
type Lexer struct {
	input string
	pos   int // offset of ch
	ch    byte
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, pos: -1}
	l.readChar()
	return l
}

// NextToken returns the next token, TokenEOF at the end of input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: len(l.input)}
	}

	switch ch := l.ch; {
	case ch == '/' && l.peekChar() == '/':
		l.pos = len(l.input)
		l.ch = 0
		return l.token(TokenComment, start)
	case ch == '-' && l.peekChar() == '>':
		l.readChar()
		l.readChar()
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return l.token(TokenArrow, start)
	case ch == '$' && isLetter(l.peekChar()):
		l.readChar()
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return l.token(TokenVariable, start)
	case ch == '\'' || ch == '"':
		l.readString(ch)
		return l.token(TokenString, start)
	case isLetter(ch):
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		tok := l.token(TokenIdent, start)
		if IsKeyword(tok.Literal) {
			tok.Type = TokenKeyword
		}
		return tok
	case isDigit(ch):
		l.readNumber()
		return l.token(TokenNumber, start)
	case isParen(ch):
		l.readChar()
		return l.token(TokenParen, start)
	case isOperator(ch):
		l.readOperator()
		return l.token(TokenOperator, start)
	default:
		// Whole runes, so styling never splits a multi-byte character.
		_, size := utf8.DecodeRuneInString(l.input[l.pos:])
		for range size {
			l.readChar()
		}
		return l.token(TokenIllegal, start)
	}
}

// Tokenize returns every token of line, without the trailing EOF.
func Tokenize(line string) []Token {
	var tokens []Token
	l := NewLexer(line)
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) token(t TokenType, start int) Token {
	end := min(l.pos, len(l.input))
	return Token{Type: t, Literal: l.input[start:end], Pos: start}
}

func (l *Lexer) readChar() {
	l.pos++
	if l.pos >= len(l.input) {
		l.pos = len(l.input)
		l.ch = 0
		return
	}
	l.ch = l.input[l.pos]
}

func (l *Lexer) peekChar() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && (l.ch == ' ' || l.ch == '\t' || l.ch == '\r') {
		l.readChar()
	}
}

// readString consumes a quoted string including both quotes. A backslash
// escapes the next character; an unterminated string runs to end of line.
func (l *Lexer) readString(quote byte) {
	l.readChar()
	for l.pos < len(l.input) && l.ch != quote {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch == quote {
		l.readChar()
	}
}

// readNumber consumes digits with an optional fraction and exponent.
func (l *Lexer) readNumber() {
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) {
			l.readChar()
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
}

// readOperator consumes the longest operator at the current position.
func (l *Lexer) readOperator() {
	two := ""
	if l.pos+2 <= len(l.input) {
		two = l.input[l.pos : l.pos+2]
	}
	switch two {
	case "==", "!=", "<=", ">=", "&&", "||", "::":
		l.readChar()
	}
	l.readChar()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isParen(c byte) bool {
	switch c {
	case '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '=', '!', '<', '>', '&', '|', '.', ',', ':', ';', '~', '@', '%', '^', '#':
		return true
	}
	return false
}
