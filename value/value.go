// Package value defines the dynamic value model shared by the expression
// evaluator, the matcher algebra, and the wire client. A Value is a tagged
// union over the shapes a query can produce: null, bool, number, string,
// list, string-keyed map, and server/driver errors. Values are immutable
// once produced.
package value

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant stored in a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
	KindError
	KindOpaque
)

// String returns the lowercase name of the kind for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindError:
		return "error"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// ErrInfo carries the kind name and message of an error value, either
// thrown by the server or raised while evaluating source text.
type ErrInfo struct {
	Kind    string
	Message string
}

// Value is the dynamic value union. Only the field selected by Kind is
// meaningful. The zero Value is null.
type Value struct {
	Kind   Kind
	Bool   bool
	Num    decimal.Decimal
	Str    string
	List   []Value
	Map    map[string]Value
	Err    *ErrInfo
	Opaque any
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// FromBool wraps a boolean.
func FromBool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// FromInt wraps an integer as a number value.
func FromInt(n int64) Value {
	return Value{Kind: KindNumber, Num: decimal.NewFromInt(n)}
}

// FromFloat wraps a float as a number value.
func FromFloat(f float64) Value {
	return Value{Kind: KindNumber, Num: decimal.NewFromFloat(f)}
}

// FromDecimal wraps a decimal as a number value.
func FromDecimal(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: d}
}

// FromString wraps a string.
func FromString(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// FromList wraps a slice of values as an ordered sequence.
func FromList(elems []Value) Value {
	return Value{Kind: KindList, List: elems}
}

// FromMap wraps a string-keyed mapping.
func FromMap(fields map[string]Value) Value {
	return Value{Kind: KindMap, Map: fields}
}

// FromError wraps an error kind name and message as an error value.
func FromError(kind, message string) Value {
	return Value{Kind: KindError, Err: &ErrInfo{Kind: kind, Message: message}}
}

// FromOpaque wraps an arbitrary host object (a matcher, in practice) so it
// can travel through the evaluator as a value.
func FromOpaque(v any) Value {
	return Value{Kind: KindOpaque, Opaque: v}
}

// KindedError is implemented by errors that carry a query-language error
// kind name (for example "RqlRuntimeError") alongside their message.
type KindedError interface {
	error
	ErrorKind() string
}

// FromGoError converts a Go error into an error value. Errors implementing
// KindedError keep their kind name; anything else is classified as a plain
// "error".
func FromGoError(err error) Value {
	var kinded KindedError
	if errors.As(err, &kinded) {
		return FromError(kinded.ErrorKind(), kinded.Error())
	}

	return FromError("error", err.Error())
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Equal reports deep structural equality. Numbers compare by numeric value
// regardless of representation, lists compare length then pairwise in
// order, and maps compare as exact key sets with equal values. Opaque
// values are never structurally equal.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}

	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == other.Bool
	case KindNumber:
		return v.Num.Equal(other.Num)
	case KindString:
		return v.Str == other.Str
	case KindList:
		if len(v.List) != len(other.List) {
			return false
		}

		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}

		return true
	case KindMap:
		if len(v.Map) != len(other.Map) {
			return false
		}

		for key, val := range v.Map {
			otherVal, ok := other.Map[key]
			if !ok || !val.Equal(otherVal) {
				return false
			}
		}

		return true
	case KindError:
		return v.Err.Kind == other.Err.Kind && v.Err.Message == other.Err.Message
	default:
		return false
	}
}

// kindRank defines the cross-kind portion of the total order used when
// sorting heterogeneous sequences: null < bool < number < string < list <
// map < error < opaque.
func kindRank(k Kind) int {
	return int(k)
}

// Compare imposes a deterministic total order over values so unordered
// collections can be sorted before pairwise matching. Values of different
// kinds order by kind rank; values of the same kind order by content, with
// the rendered form as the final tie-break for opaque values.
func (v Value) Compare(other Value) int {
	if r := kindRank(v.Kind) - kindRank(other.Kind); r != 0 {
		return r
	}

	switch v.Kind {
	case KindNull:
		return 0
	case KindBool:
		if v.Bool == other.Bool {
			return 0
		}

		if !v.Bool {
			return -1
		}

		return 1
	case KindNumber:
		return v.Num.Cmp(other.Num)
	case KindString:
		return strings.Compare(v.Str, other.Str)
	case KindList:
		for i := 0; i < len(v.List) && i < len(other.List); i++ {
			if r := v.List[i].Compare(other.List[i]); r != 0 {
				return r
			}
		}

		return len(v.List) - len(other.List)
	case KindMap:
		vKeys := sortedKeys(v.Map)

		oKeys := sortedKeys(other.Map)
		for i := 0; i < len(vKeys) && i < len(oKeys); i++ {
			if r := strings.Compare(vKeys[i], oKeys[i]); r != 0 {
				return r
			}

			if r := v.Map[vKeys[i]].Compare(other.Map[oKeys[i]]); r != 0 {
				return r
			}
		}

		return len(vKeys) - len(oKeys)
	case KindError:
		if r := strings.Compare(v.Err.Kind, other.Err.Kind); r != 0 {
			return r
		}

		return strings.Compare(v.Err.Message, other.Err.Message)
	default:
		return strings.Compare(v.String(), other.String())
	}
}

// String renders the value for failure diagnostics: null, true, 42, 1.5,
// "text", [1, 2], {"k": 1}, RqlRuntimeError("msg"). Map keys render in
// sorted order so output is stable.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.Bool {
			return "true"
		}

		return "false"
	case KindNumber:
		return v.Num.String()
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindList:
		parts := make([]string, len(v.List))
		for i, elem := range v.List {
			parts[i] = elem.String()
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := sortedKeys(v.Map)

		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = fmt.Sprintf("%q: %s", key, v.Map[key].String())
		}

		return "{" + strings.Join(parts, ", ") + "}"
	case KindError:
		return fmt.Sprintf("%s(%q)", v.Err.Kind, v.Err.Message)
	case KindOpaque:
		return fmt.Sprint(v.Opaque)
	default:
		return "<invalid>"
	}
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
