package value

import (
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{name: "null", in: Null(), want: `null`},
		{name: "bool", in: FromBool(true), want: `true`},
		{name: "integer keeps precision", in: FromInt(9007199254740993), want: `9007199254740993`},
		{name: "float", in: FromFloat(1.5), want: `1.5`},
		{name: "string", in: FromString("a\"b"), want: `"a\"b"`},
		{name: "empty list", in: FromList(nil), want: `[]`},
		{name: "list", in: FromList([]Value{FromInt(1), Null()}), want: `[1,null]`},
		{name: "empty map", in: FromMap(nil), want: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalJSONErrorValueNotWireable(t *testing.T) {
	_, err := json.Marshal(FromError("RqlRuntimeError", "boom"))
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"n": 9007199254740993, "s": "x", "l": [true, null, 1.25]}`))
	assert.NoError(t, err)

	want := FromMap(map[string]Value{
		"n": FromInt(9007199254740993),
		"s": FromString("x"),
		"l": FromList([]Value{FromBool(true), Null(), FromFloat(1.25)}),
	})

	assert.True(t, v.Equal(want))
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"a":`))
	assert.IsError(t, err, ErrInvalidDatum)

	_, err = DecodeJSON([]byte(`1 2`))
	assert.IsError(t, err, ErrTrailingInput)
}

func TestJSONRoundTrip(t *testing.T) {
	in := FromMap(map[string]Value{
		"list": FromList([]Value{FromInt(1), FromString("two"), Null()}),
		"ok":   FromBool(false),
	})

	data, err := json.Marshal(in)
	assert.NoError(t, err)

	out, err := DecodeJSON(data)
	assert.NoError(t, err)
	assert.True(t, in.Equal(out))
}
