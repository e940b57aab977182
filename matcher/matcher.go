// Package matcher implements the structural equality engine used to
// compare query results against expected values. Every matcher wraps an
// expected shape and exposes an asymmetric Matches predicate over an
// arbitrary actual value. Matching is total: an actual value of an
// incompatible shape yields false, never a panic.
package matcher

import (
	"sort"
	"strings"

	"github.com/rqlconform/rqlconform/value"
)

// Matcher is a comparison rule wrapping an expected shape or value.
type Matcher interface {
	// Matches reports whether the actual value satisfies the rule.
	Matches(actual value.Value) bool
	// String renders the expected shape for failure diagnostics.
	String() string
}

// For normalizes a raw expected literal into a matcher. Opaque matcher
// values (built by bag/err/arr/uuid) pass through unchanged. Plain lists
// wrap as ordered sequence matchers, plain mappings wrap as partial
// (superset) matchers, and everything else compares by deep equality.
//
// Partial matching as the default for mapping literals is the contract
// test writers rely on: extra keys in the actual mapping are ignored at
// the top level, while mappings nested inside other values still compare
// as exact key sets.
func For(expected value.Value) Matcher {
	if expected.Kind == value.KindOpaque {
		if m, ok := expected.Opaque.(Matcher); ok {
			return m
		}
	}

	switch expected.Kind {
	case value.KindList:
		return NewOrdered(expected.List)
	case value.KindMap:
		return NewPartialMap(expected.Map)
	default:
		return Exact{Want: expected}
	}
}

// eq is the recursive matching rule shared by every composite matcher:
// a nested opaque matcher delegates to that matcher, nested lists compare
// ordered and exact-length, nested mappings compare as exact key sets, and
// scalars compare by deep equality.
func eq(expected, actual value.Value) bool {
	if expected.Kind == value.KindOpaque {
		if m, ok := expected.Opaque.(Matcher); ok {
			return m.Matches(actual)
		}

		return false
	}

	if expected.Kind != actual.Kind {
		return false
	}

	switch expected.Kind {
	case value.KindList:
		if len(expected.List) != len(actual.List) {
			return false
		}

		for i := range expected.List {
			if !eq(expected.List[i], actual.List[i]) {
				return false
			}
		}

		return true
	case value.KindMap:
		if len(expected.Map) != len(actual.Map) {
			return false
		}

		for key, want := range expected.Map {
			got, ok := actual.Map[key]
			if !ok || !eq(want, got) {
				return false
			}
		}

		return true
	default:
		return expected.Equal(actual)
	}
}

// Exact matches by deep structural equality against a single value.
type Exact struct {
	Want value.Value
}

func (m Exact) Matches(actual value.Value) bool {
	return eq(m.Want, actual)
}

func (m Exact) String() string {
	return m.Want.String()
}

// Ordered matches a sequence of equal length whose elements match
// pairwise in order, recursively through the shared matching rule.
type Ordered struct {
	elems []value.Value
}

// NewOrdered wraps expected elements as an ordered sequence matcher.
func NewOrdered(elems []value.Value) Ordered {
	return Ordered{elems: elems}
}

func (m Ordered) Matches(actual value.Value) bool {
	if actual.Kind != value.KindList {
		return false
	}

	if len(m.elems) != len(actual.List) {
		return false
	}

	for i := range m.elems {
		if !eq(m.elems[i], actual.List[i]) {
			return false
		}
	}

	return true
}

func (m Ordered) String() string {
	return renderElems(m.elems)
}

// Bag matches a sequence of equal length as an unordered multiset: both
// sides are sorted by the value total order, then matched pairwise. The
// expected side is sorted once at construction.
type Bag struct {
	elems []value.Value
}

// NewBag wraps expected elements as an unordered sequence matcher.
func NewBag(elems []value.Value) Bag {
	sorted := make([]value.Value, len(elems))
	copy(sorted, elems)
	sortValues(sorted)

	return Bag{elems: sorted}
}

func (m Bag) Matches(actual value.Value) bool {
	if actual.Kind != value.KindList {
		return false
	}

	if len(m.elems) != len(actual.List) {
		return false
	}

	got := make([]value.Value, len(actual.List))
	copy(got, actual.List)
	sortValues(got)

	for i := range m.elems {
		if !eq(m.elems[i], got[i]) {
			return false
		}
	}

	return true
}

func (m Bag) String() string {
	return "bag(" + renderElems(m.elems) + ")"
}

// PartialMap matches a mapping that contains every expected key with a
// matching value. Extra keys in the actual mapping are ignored.
type PartialMap struct {
	fields map[string]value.Value
}

// NewPartialMap wraps expected fields as a partial mapping matcher.
func NewPartialMap(fields map[string]value.Value) PartialMap {
	return PartialMap{fields: fields}
}

func (m PartialMap) Matches(actual value.Value) bool {
	if actual.Kind != value.KindMap {
		return false
	}

	for key, want := range m.fields {
		got, ok := actual.Map[key]
		if !ok || !eq(want, got) {
			return false
		}
	}

	return true
}

func (m PartialMap) String() string {
	return value.FromMap(m.fields).String()
}

// AcceptAll matches any actual value, including error values. It stands
// in when a test supplies no expectation.
type AcceptAll struct{}

// Any returns the matcher used when no expected value is supplied.
func Any() Matcher {
	return AcceptAll{}
}

func (AcceptAll) Matches(value.Value) bool {
	return true
}

func (AcceptAll) String() string {
	return "any()"
}

func sortValues(elems []value.Value) {
	sort.SliceStable(elems, func(i, j int) bool {
		return elems[i].Compare(elems[j]) < 0
	})
}

func renderElems(elems []value.Value) string {
	parts := make([]string, len(elems))
	for i, elem := range elems {
		parts[i] = elem.String()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}
