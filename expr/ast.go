package expr

// Node is one node of a parsed expression tree. Pos returns the rune
// offset of the node's first token for error reporting.
type Node interface {
	Pos() int
}

// LiteralNode holds a scalar literal: null, true, false, number, string.
type LiteralNode struct {
	Text   string
	Offset int
	Type   TokenType // NUMBER, STRING, or IDENT for null/true/false
}

// IdentNode references a name bound in the scope.
type IdentNode struct {
	Name   string
	Offset int
}

// ListNode is an ordered sequence literal.
type ListNode struct {
	Elems  []Node
	Offset int
}

// MapNode is a mapping literal. Keys keep source order; duplicate keys
// keep the last value, as in the source notation.
type MapNode struct {
	Keys   []string
	Vals   []Node
	Offset int
}

// CallNode invokes a builtin constructor such as bag or err.
type CallNode struct {
	Name   string
	Args   []Node
	Offset int
}

// IndexNode selects one element of a sequence by zero-based position.
type IndexNode struct {
	Seq    Node
	Index  Node
	Offset int
}

// UnaryNode applies a prefix operator (only negation).
type UnaryNode struct {
	Op      TokenType
	Operand Node
	Offset  int
}

// BinaryNode applies an infix arithmetic operator.
type BinaryNode struct {
	Op     TokenType
	Left   Node
	Right  Node
	Offset int
}

func (n *LiteralNode) Pos() int { return n.Offset }
func (n *IdentNode) Pos() int   { return n.Offset }
func (n *ListNode) Pos() int    { return n.Offset }
func (n *MapNode) Pos() int     { return n.Offset }
func (n *CallNode) Pos() int    { return n.Offset }
func (n *IndexNode) Pos() int   { return n.Offset }
func (n *UnaryNode) Pos() int   { return n.Offset }
func (n *BinaryNode) Pos() int  { return n.Offset }
