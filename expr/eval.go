// Package expr implements the literal expression language used by
// generated conformance tests: scalars, sequences, mappings, arithmetic,
// and the matcher constructors bag, err, arr, and uuid. Source text is
// parsed into an explicit tree and evaluated against a scope, replacing
// the host-language eval the original notation assumed.
package expr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rqlconform/rqlconform/matcher"
	"github.com/rqlconform/rqlconform/value"
)

// Sentinel errors
var (
	ErrUnknownName     = errors.New("name is not defined")
	ErrUnknownFunction = errors.New("unknown function")
	ErrBadArgument     = errors.New("bad argument")
	ErrBadOperand      = errors.New("unsupported operand types")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Error kind names surfaced to error matchers. Parse failures use the
// compile kind, evaluation failures use the driver kind, mirroring the
// client exception taxonomy of the query language under test.
const (
	CompileErrorKind = "RqlCompileError"
	DriverErrorKind  = "RqlDriverError"
)

// EvalError wraps a parse or evaluation failure together with the error
// kind name an error matcher can be tested against.
type EvalError struct {
	kind string
	err  error
}

func (e *EvalError) Error() string {
	return e.err.Error()
}

func (e *EvalError) Unwrap() error {
	return e.err
}

// ErrorKind returns the query-language error kind name of the failure.
func (e *EvalError) ErrorKind() string {
	return e.kind
}

func compileError(err error) *EvalError {
	return &EvalError{kind: CompileErrorKind, err: err}
}

func driverError(err error) *EvalError {
	return &EvalError{kind: DriverErrorKind, err: err}
}

// Scope is the shared binding environment of one test run. Entries are
// appended by define statements and visible to every later evaluation;
// nothing ever removes or resets them.
type Scope struct {
	vars map[string]value.Value
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]value.Value)}
}

// Lookup returns the value bound to name.
func (s *Scope) Lookup(name string) (value.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Bind adds or replaces a binding.
func (s *Scope) Bind(name string, v value.Value) {
	s.vars[name] = v
}

// Len returns the number of bindings, for diagnostics.
func (s *Scope) Len() int {
	return len(s.vars)
}

// EvalString parses and evaluates an expression against the scope.
func EvalString(src string, scope *Scope) (value.Value, error) {
	node, err := Parse(src)
	if err != nil {
		return value.Value{}, compileError(err)
	}

	return eval(node, scope)
}

// EvalDefine parses a "name = expression" statement, evaluates the right
// hand side, and binds the result into the scope.
func EvalDefine(src string, scope *Scope) error {
	name, node, err := ParseDefine(src)
	if err != nil {
		return compileError(err)
	}

	v, err := eval(node, scope)
	if err != nil {
		return err
	}

	scope.Bind(name, v)

	return nil
}

func eval(node Node, scope *Scope) (value.Value, error) {
	switch n := node.(type) {
	case *LiteralNode:
		return evalLiteral(n)
	case *IdentNode:
		v, ok := scope.Lookup(n.Name)
		if !ok {
			return value.Value{}, driverError(fmt.Errorf("%w: %q", ErrUnknownName, n.Name))
		}

		return v, nil
	case *ListNode:
		elems := make([]value.Value, len(n.Elems))

		for i, elemNode := range n.Elems {
			elem, err := eval(elemNode, scope)
			if err != nil {
				return value.Value{}, err
			}

			elems[i] = elem
		}

		return value.FromList(elems), nil
	case *MapNode:
		fields := make(map[string]value.Value, len(n.Keys))

		for i, key := range n.Keys {
			val, err := eval(n.Vals[i], scope)
			if err != nil {
				return value.Value{}, err
			}

			fields[key] = val
		}

		return value.FromMap(fields), nil
	case *CallNode:
		return evalCall(n, scope)
	case *IndexNode:
		return evalIndex(n, scope)
	case *UnaryNode:
		operand, err := eval(n.Operand, scope)
		if err != nil {
			return value.Value{}, err
		}

		if operand.Kind != value.KindNumber {
			return value.Value{}, driverError(fmt.Errorf("%w: cannot negate %s", ErrBadOperand, operand.Kind))
		}

		return value.FromDecimal(operand.Num.Neg()), nil
	case *BinaryNode:
		return evalBinary(n, scope)
	default:
		return value.Value{}, driverError(fmt.Errorf("%w: unhandled node %T", ErrBadOperand, node))
	}
}

func evalLiteral(n *LiteralNode) (value.Value, error) {
	switch n.Type {
	case STRING:
		return value.FromString(n.Text), nil
	case NUMBER:
		num, err := decimal.NewFromString(n.Text)
		if err != nil {
			return value.Value{}, compileError(fmt.Errorf("%w: %q", ErrInvalidNumber, n.Text))
		}

		return value.FromDecimal(num), nil
	default:
		switch n.Text {
		case "null", "none", "None":
			return value.Null(), nil
		case "true", "True":
			return value.FromBool(true), nil
		case "false", "False":
			return value.FromBool(false), nil
		}

		return value.Value{}, compileError(fmt.Errorf("%w: literal %q", ErrInvalidExpression, n.Text))
	}
}

func evalIndex(n *IndexNode, scope *Scope) (value.Value, error) {
	seq, err := eval(n.Seq, scope)
	if err != nil {
		return value.Value{}, err
	}

	index, err := eval(n.Index, scope)
	if err != nil {
		return value.Value{}, err
	}

	switch seq.Kind {
	case value.KindList:
		if index.Kind != value.KindNumber || !index.Num.IsInteger() {
			return value.Value{}, driverError(fmt.Errorf("%w: sequence index must be an integer", ErrBadArgument))
		}

		i := index.Num.IntPart()
		if i < 0 || i >= int64(len(seq.List)) {
			return value.Value{}, driverError(fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, len(seq.List)))
		}

		return seq.List[i], nil
	case value.KindMap:
		if index.Kind != value.KindString {
			return value.Value{}, driverError(fmt.Errorf("%w: mapping key must be a string", ErrBadArgument))
		}

		v, ok := seq.Map[index.Str]
		if !ok {
			return value.Value{}, driverError(fmt.Errorf("%w: %q", ErrUnknownName, index.Str))
		}

		return v, nil
	default:
		return value.Value{}, driverError(fmt.Errorf("%w: cannot index %s", ErrBadOperand, seq.Kind))
	}
}

func evalBinary(n *BinaryNode, scope *Scope) (value.Value, error) {
	left, err := eval(n.Left, scope)
	if err != nil {
		return value.Value{}, err
	}

	right, err := eval(n.Right, scope)
	if err != nil {
		return value.Value{}, err
	}

	if left.Kind == value.KindNumber && right.Kind == value.KindNumber {
		switch n.Op {
		case PLUS:
			return value.FromDecimal(left.Num.Add(right.Num)), nil
		case MINUS:
			return value.FromDecimal(left.Num.Sub(right.Num)), nil
		case STAR:
			return value.FromDecimal(left.Num.Mul(right.Num)), nil
		case SLASH:
			if right.Num.IsZero() {
				return value.Value{}, driverError(ErrDivisionByZero)
			}

			return value.FromDecimal(left.Num.Div(right.Num)), nil
		}
	}

	// Concatenation with '+' for strings and sequences, as in the
	// literal notation the corpus is written in.
	if n.Op == PLUS {
		if left.Kind == value.KindString && right.Kind == value.KindString {
			return value.FromString(left.Str + right.Str), nil
		}

		if left.Kind == value.KindList && right.Kind == value.KindList {
			joined := make([]value.Value, 0, len(left.List)+len(right.List))
			joined = append(joined, left.List...)
			joined = append(joined, right.List...)

			return value.FromList(joined), nil
		}
	}

	return value.Value{}, driverError(fmt.Errorf("%w: %s %s %s", ErrBadOperand, left.Kind, n.Op, right.Kind))
}

// evalCall dispatches the builtin matcher constructors exposed to
// generated test code.
func evalCall(n *CallNode, scope *Scope) (value.Value, error) {
	args := make([]value.Value, len(n.Args))

	for i, argNode := range n.Args {
		arg, err := eval(argNode, scope)
		if err != nil {
			return value.Value{}, err
		}

		args[i] = arg
	}

	switch n.Name {
	case "bag":
		return builtinBag(args)
	case "err":
		return builtinErr(args)
	case "arr":
		return builtinArr(args)
	case "uuid":
		if len(args) != 0 {
			return value.Value{}, driverError(fmt.Errorf("%w: uuid takes no arguments", ErrBadArgument))
		}

		return value.FromOpaque(matcher.NewUUID()), nil
	default:
		return value.Value{}, driverError(fmt.Errorf("%w: %q", ErrUnknownFunction, n.Name))
	}
}

func builtinBag(args []value.Value) (value.Value, error) {
	if len(args) != 1 || args[0].Kind != value.KindList {
		return value.Value{}, driverError(fmt.Errorf("%w: bag takes one sequence argument", ErrBadArgument))
	}

	return value.FromOpaque(matcher.NewBag(args[0].List)), nil
}

func builtinErr(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 3 {
		return value.Value{}, driverError(fmt.Errorf("%w: err takes one to three arguments", ErrBadArgument))
	}

	if args[0].Kind != value.KindString {
		return value.Value{}, driverError(fmt.Errorf("%w: err kind must be a string", ErrBadArgument))
	}

	kind := args[0].Str

	message := ""
	hasMessage := false

	if len(args) >= 2 && !args[1].IsNull() {
		if args[1].Kind != value.KindString {
			return value.Value{}, driverError(fmt.Errorf("%w: err message must be a string", ErrBadArgument))
		}

		message = args[1].Str
		hasMessage = true
	}

	// A third frames argument is accepted for compatibility with the
	// generated corpus and ignored: frame matching is disabled.
	return value.FromOpaque(matcher.NewError(kind, message, hasMessage)), nil
}

func builtinArr(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return value.Value{}, driverError(fmt.Errorf("%w: arr takes one or two arguments", ErrBadArgument))
	}

	if args[0].Kind != value.KindNumber || !args[0].Num.IsInteger() {
		return value.Value{}, driverError(fmt.Errorf("%w: arr length must be an integer", ErrBadArgument))
	}

	length := int(args[0].Num.IntPart())
	if length < 0 {
		return value.Value{}, driverError(fmt.Errorf("%w: arr length must not be negative", ErrBadArgument))
	}

	if len(args) == 2 && !args[1].IsNull() {
		return value.FromOpaque(matcher.NewLengthWithElem(length, args[1])), nil
	}

	return value.FromOpaque(matcher.NewLength(length)), nil
}
