package expr

import "errors"

// Sentinel errors
var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrInvalidNumber       = errors.New("invalid number format")
	ErrInvalidExpression   = errors.New("invalid expression")
	ErrInvalidDefine       = errors.New("invalid define statement")
)

// TokenType represents the type of a token in the literal grammar.
type TokenType int

const (
	EOF TokenType = iota
	IDENT
	NUMBER
	STRING

	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	COMMA    // ,
	COLON    // :

	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	ASSIGN // =
)

// String returns a printable name for error messages.
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "end of input"
	case IDENT:
		return "identifier"
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	case LBRACKET:
		return "'['"
	case RBRACKET:
		return "']'"
	case LBRACE:
		return "'{'"
	case RBRACE:
		return "'}'"
	case LPAREN:
		return "'('"
	case RPAREN:
		return "')'"
	case COMMA:
		return "','"
	case COLON:
		return "':'"
	case PLUS:
		return "'+'"
	case MINUS:
		return "'-'"
	case STAR:
		return "'*'"
	case SLASH:
		return "'/'"
	case ASSIGN:
		return "'='"
	default:
		return "unknown token"
	}
}

// Token is one lexical unit of an expression. Pos is the rune offset of
// the first character within the source.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}
