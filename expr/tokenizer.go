package expr

import (
	"fmt"
	"strings"
	"unicode"
)

// tokenize splits an expression source string into tokens. The returned
// slice always ends with an EOF token.
func tokenize(src string) ([]Token, error) {
	t := &tokenizer{src: []rune(src)}
	if err := t.run(); err != nil {
		return nil, err
	}

	return t.tokens, nil
}

type tokenizer struct {
	src    []rune
	pos    int
	tokens []Token
}

func (t *tokenizer) run() error {
	for {
		t.skipWhitespace()

		if t.eof() {
			t.emit(EOF, "", t.pos)
			return nil
		}

		start := t.pos

		r := t.peek()

		switch {
		case isIdentStart(r):
			t.readIdentifier(start)
		case unicode.IsDigit(r):
			if err := t.readNumber(start); err != nil {
				return err
			}
		case r == '\'' || r == '"':
			if err := t.readString(start); err != nil {
				return err
			}
		default:
			typ, ok := punctType(r)
			if !ok {
				return fmt.Errorf("%w: %q at position %d", ErrUnexpectedCharacter, r, start+1)
			}

			t.pos++
			t.emit(typ, string(r), start)
		}
	}
}

func punctType(r rune) (TokenType, bool) {
	switch r {
	case '[':
		return LBRACKET, true
	case ']':
		return RBRACKET, true
	case '{':
		return LBRACE, true
	case '}':
		return RBRACE, true
	case '(':
		return LPAREN, true
	case ')':
		return RPAREN, true
	case ',':
		return COMMA, true
	case ':':
		return COLON, true
	case '+':
		return PLUS, true
	case '-':
		return MINUS, true
	case '*':
		return STAR, true
	case '/':
		return SLASH, true
	case '=':
		return ASSIGN, true
	default:
		return EOF, false
	}
}

func (t *tokenizer) readIdentifier(start int) {
	for !t.eof() && isIdentPart(t.peek()) {
		t.pos++
	}

	t.emit(IDENT, string(t.src[start:t.pos]), start)
}

func (t *tokenizer) readNumber(start int) error {
	for !t.eof() && unicode.IsDigit(t.peek()) {
		t.pos++
	}

	if !t.eof() && t.peek() == '.' {
		t.pos++

		if t.eof() || !unicode.IsDigit(t.peek()) {
			return fmt.Errorf("%w: missing digits after decimal point at position %d", ErrInvalidNumber, t.pos)
		}

		for !t.eof() && unicode.IsDigit(t.peek()) {
			t.pos++
		}
	}

	if !t.eof() && (t.peek() == 'e' || t.peek() == 'E') {
		t.pos++

		if !t.eof() && (t.peek() == '+' || t.peek() == '-') {
			t.pos++
		}

		if t.eof() || !unicode.IsDigit(t.peek()) {
			return fmt.Errorf("%w: missing exponent digits at position %d", ErrInvalidNumber, t.pos)
		}

		for !t.eof() && unicode.IsDigit(t.peek()) {
			t.pos++
		}
	}

	t.emit(NUMBER, string(t.src[start:t.pos]), start)

	return nil
}

func (t *tokenizer) readString(start int) error {
	quote := t.peek()
	t.pos++

	var sb strings.Builder

	for {
		if t.eof() {
			return fmt.Errorf("%w: starting at position %d", ErrUnterminatedString, start+1)
		}

		r := t.peek()
		t.pos++

		switch r {
		case quote:
			t.emit(STRING, sb.String(), start)
			return nil
		case '\\':
			if t.eof() {
				return fmt.Errorf("%w: starting at position %d", ErrUnterminatedString, start+1)
			}

			esc := t.peek()
			t.pos++

			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '\\', '\'', '"':
				sb.WriteRune(esc)
			default:
				return fmt.Errorf("%w: unknown escape %q at position %d", ErrUnexpectedCharacter, esc, t.pos)
			}
		default:
			sb.WriteRune(r)
		}
	}
}

func (t *tokenizer) skipWhitespace() {
	for !t.eof() && unicode.IsSpace(t.peek()) {
		t.pos++
	}
}

func (t *tokenizer) emit(typ TokenType, text string, pos int) {
	t.tokens = append(t.tokens, Token{Type: typ, Text: text, Pos: pos})
}

func (t *tokenizer) peek() rune {
	if t.pos >= len(t.src) {
		return 0
	}

	return t.src[t.pos]
}

func (t *tokenizer) eof() bool {
	return t.pos >= len(t.src)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
