package value

import (
	"errors"
	"sort"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    Value
		b    Value
		want bool
	}{
		{name: "null equals null", a: Null(), b: Null(), want: true},
		{name: "bool equal", a: FromBool(true), b: FromBool(true), want: true},
		{name: "bool unequal", a: FromBool(true), b: FromBool(false), want: false},
		{name: "int equals float representation", a: FromInt(5), b: FromFloat(5.0), want: true},
		{name: "numbers unequal", a: FromInt(5), b: FromInt(6), want: false},
		{name: "string equal", a: FromString("abc"), b: FromString("abc"), want: true},
		{name: "bool is not number", a: FromBool(true), b: FromInt(1), want: false},
		{name: "null is not zero", a: Null(), b: FromInt(0), want: false},
		{
			name: "lists compare in order",
			a:    FromList([]Value{FromInt(1), FromInt(2)}),
			b:    FromList([]Value{FromInt(1), FromInt(2)}),
			want: true,
		},
		{
			name: "reordered lists unequal",
			a:    FromList([]Value{FromInt(1), FromInt(2)}),
			b:    FromList([]Value{FromInt(2), FromInt(1)}),
			want: false,
		},
		{
			name: "list length mismatch",
			a:    FromList([]Value{FromInt(1)}),
			b:    FromList([]Value{FromInt(1), FromInt(1)}),
			want: false,
		},
		{
			name: "maps compare as exact key sets",
			a:    FromMap(map[string]Value{"a": FromInt(1)}),
			b:    FromMap(map[string]Value{"a": FromInt(1), "b": FromInt(2)}),
			want: false,
		},
		{
			name: "maps equal",
			a:    FromMap(map[string]Value{"a": FromInt(1), "b": FromInt(2)}),
			b:    FromMap(map[string]Value{"b": FromInt(2), "a": FromInt(1)}),
			want: true,
		},
		{
			name: "errors compare by kind and message",
			a:    FromError("RqlRuntimeError", "boom"),
			b:    FromError("RqlRuntimeError", "boom"),
			want: true,
		},
		{
			name: "errors with different kinds unequal",
			a:    FromError("RqlRuntimeError", "boom"),
			b:    FromError("RqlCompileError", "boom"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestCompareTotalOrder(t *testing.T) {
	// Mixed-kind values sort by kind rank first, content second, so
	// sorting heterogeneous sequences is deterministic.
	shuffled := []Value{
		FromString("b"),
		FromInt(10),
		Null(),
		FromList([]Value{FromInt(1)}),
		FromBool(false),
		FromString("a"),
		FromInt(2),
		FromMap(map[string]Value{"k": FromInt(1)}),
		FromBool(true),
	}

	sort.SliceStable(shuffled, func(i, j int) bool {
		return shuffled[i].Compare(shuffled[j]) < 0
	})

	want := []string{
		"null", "false", "true", "2", "10", `"a"`, `"b"`, "[1]", `{"k": 1}`,
	}

	got := make([]string, len(shuffled))
	for i, v := range shuffled {
		got[i] = v.String()
	}

	assert.Equal(t, want, got)
}

func TestCompareNumbersByValue(t *testing.T) {
	a := FromDecimal(decimal.RequireFromString("2"))
	b := FromDecimal(decimal.RequireFromString("10"))

	assert.True(t, a.Compare(b) < 0)
	assert.True(t, b.Compare(a) > 0)
	assert.Equal(t, 0, a.Compare(FromFloat(2.0)))
}

func TestString(t *testing.T) {
	v := FromMap(map[string]Value{
		"id":   FromString("x"),
		"n":    FromInt(3),
		"tags": FromList([]Value{FromString("a"), Null()}),
	})

	assert.Equal(t, `{"id": "x", "n": 3, "tags": ["a", null]}`, v.String())
}

type kindedStub struct {
	kind string
	msg  string
}

func (e *kindedStub) Error() string {
	return e.msg
}

func (e *kindedStub) ErrorKind() string {
	return e.kind
}

var errPlain = errors.New("plain failure")

func TestFromGoError(t *testing.T) {
	v := FromGoError(&kindedStub{kind: "RqlRuntimeError", msg: "boom"})
	assert.Equal(t, KindError, v.Kind)
	assert.Equal(t, "RqlRuntimeError", v.Err.Kind)
	assert.Equal(t, "boom", v.Err.Message)

	plain := FromGoError(errPlain)
	assert.Equal(t, "error", plain.Err.Kind)
	assert.Equal(t, "plain failure", plain.Err.Message)
}
