// Package pylegend tokenizes the pylegend query language used in Legend
// notebook cells, e.g.
//
//	Person.all()->filter(p|$p.age > 18)->project(~[name, age])
//
// The lexer works one line at a time and never fails: input it does not
// understand becomes TokenIllegal.
package pylegend

// TokenType represents the type of lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenKeyword
	TokenIdent
	TokenNumber
	TokenString  // 'quoted', quotes included
	TokenComment // // to end of line

	TokenArrow    // ->name, the function applied by an arrow
	TokenVariable // $name

	TokenOperator
	TokenParen // ( ) [ ] { }
)

// String returns the string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenKeyword:
		return "KEYWORD"
	case TokenIdent:
		return "IDENT"
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenComment:
		return "COMMENT"
	case TokenArrow:
		return "ARROW"
	case TokenVariable:
		return "VARIABLE"
	case TokenOperator:
		return "OPERATOR"
	case TokenParen:
		return "PAREN"
	default:
		return "UNKNOWN"
	}
}

// Token is a lexeme with its byte offset in the line.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

// End returns the offset just past the token.
func (t Token) End() int {
	return t.Pos + len(t.Literal)
}

var keywords = map[string]bool{
	"let":         true,
	"import":      true,
	"function":    true,
	"Class":       true,
	"Enum":        true,
	"Association": true,
	"Profile":     true,
	"Mapping":     true,
	"Runtime":     true,
	"Service":     true,
	"extends":     true,
	"if":          true,
	"true":        true,
	"false":       true,
	"and":         true,
	"or":          true,
	"not":         true,
}

// IsKeyword reports whether ident is reserved.
func IsKeyword(ident string) bool {
	return keywords[ident]
}
