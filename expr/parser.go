package expr

import (
	"fmt"
)

// Parse parses a single expression in the literal grammar: scalars,
// sequences, mappings, builtin constructor calls, indexing, and the four
// arithmetic operators. The whole input must be consumed.
func Parse(src string) (Node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}

	p := &parser{tokens: tokens}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.peek().Type != EOF {
		return nil, fmt.Errorf("%w: unexpected %s at position %d", ErrInvalidExpression, p.peek().Type, p.peek().Pos+1)
	}

	return node, nil
}

// ParseDefine parses a "name = expression" binding statement and returns
// the bound name and the right-hand side.
func ParseDefine(src string) (string, Node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDefine, err)
	}

	p := &parser{tokens: tokens}

	name := p.peek()
	if name.Type != IDENT {
		return "", nil, fmt.Errorf("%w: expected identifier, found %s", ErrInvalidDefine, name.Type)
	}

	p.next()

	if p.peek().Type != ASSIGN {
		return "", nil, fmt.Errorf("%w: expected '=' after %q", ErrInvalidDefine, name.Text)
	}

	p.next()

	node, err := p.parseExpr()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDefine, err)
	}

	if p.peek().Type != EOF {
		return "", nil, fmt.Errorf("%w: unexpected %s at position %d", ErrInvalidDefine, p.peek().Type, p.peek().Pos+1)
	}

	return name.Text, node, nil
}

type parser struct {
	tokens []Token
	pos    int
}

// parseExpr handles the lowest precedence level: addition and subtraction.
func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := p.next()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = &BinaryNode{Op: op.Type, Left: left, Right: right, Offset: left.Pos()}
	}

	return left, nil
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == STAR || p.peek().Type == SLASH {
		op := p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &BinaryNode{Op: op.Type, Left: left, Right: right, Offset: left.Pos()}
	}

	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.peek().Type == MINUS {
		op := p.next()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &UnaryNode{Op: MINUS, Operand: operand, Offset: op.Pos}, nil
	}

	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == LBRACKET {
		open := p.next()

		index, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := p.expect(RBRACKET); err != nil {
			return nil, err
		}

		node = &IndexNode{Seq: node, Index: index, Offset: open.Pos}
	}

	return node, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()

	switch tok.Type {
	case NUMBER, STRING:
		p.next()
		return &LiteralNode{Text: tok.Text, Type: tok.Type, Offset: tok.Pos}, nil
	case IDENT:
		p.next()

		switch tok.Text {
		case "null", "none", "None", "true", "True", "false", "False":
			return &LiteralNode{Text: tok.Text, Type: IDENT, Offset: tok.Pos}, nil
		}

		if p.peek().Type == LPAREN {
			return p.parseCall(tok)
		}

		return &IdentNode{Name: tok.Text, Offset: tok.Pos}, nil
	case LBRACKET:
		return p.parseList()
	case LBRACE:
		return p.parseMap()
	case LPAREN:
		p.next()

		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := p.expect(RPAREN); err != nil {
			return nil, err
		}

		return node, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %s at position %d", ErrInvalidExpression, tok.Type, tok.Pos+1)
	}
}

func (p *parser) parseCall(name Token) (Node, error) {
	p.next() // consume '('

	call := &CallNode{Name: name.Text, Offset: name.Pos}

	if p.peek().Type == RPAREN {
		p.next()
		return call, nil
	}

	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		call.Args = append(call.Args, arg)

		if p.peek().Type == COMMA {
			p.next()
			continue
		}

		break
	}

	if err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	return call, nil
}

func (p *parser) parseList() (Node, error) {
	open := p.next()

	list := &ListNode{Offset: open.Pos}

	if p.peek().Type == RBRACKET {
		p.next()
		return list, nil
	}

	for {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		list.Elems = append(list.Elems, elem)

		if p.peek().Type == COMMA {
			p.next()

			// Trailing comma before the closing bracket is allowed.
			if p.peek().Type == RBRACKET {
				break
			}

			continue
		}

		break
	}

	if err := p.expect(RBRACKET); err != nil {
		return nil, err
	}

	return list, nil
}

func (p *parser) parseMap() (Node, error) {
	open := p.next()

	m := &MapNode{Offset: open.Pos}

	if p.peek().Type == RBRACE {
		p.next()
		return m, nil
	}

	for {
		key := p.peek()
		if key.Type != STRING && key.Type != IDENT {
			return nil, fmt.Errorf("%w: expected mapping key, found %s at position %d", ErrInvalidExpression, key.Type, key.Pos+1)
		}

		p.next()

		if err := p.expect(COLON); err != nil {
			return nil, err
		}

		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		m.Keys = append(m.Keys, key.Text)
		m.Vals = append(m.Vals, val)

		if p.peek().Type == COMMA {
			p.next()

			if p.peek().Type == RBRACE {
				break
			}

			continue
		}

		break
	}

	if err := p.expect(RBRACE); err != nil {
		return nil, err
	}

	return m, nil
}

func (p *parser) expect(typ TokenType) error {
	tok := p.peek()
	if tok.Type != typ {
		return fmt.Errorf("%w: expected %s, found %s at position %d", ErrInvalidExpression, typ, tok.Type, tok.Pos+1)
	}

	p.next()

	return nil
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}

	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}

	return tok
}
