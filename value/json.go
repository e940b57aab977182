package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors
var (
	ErrNotWireable   = errors.New("value cannot be encoded for the wire")
	ErrInvalidDatum  = errors.New("invalid datum in server response")
	ErrTrailingInput = errors.New("trailing data after datum")
)

// MarshalJSON encodes the value as a wire datum. Numbers are written with
// their full decimal precision. Error and opaque values have no wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNumber:
		return []byte(v.Num.String()), nil
	case KindString:
		return json.Marshal(v.Str)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}

		return json.Marshal(v.List)
	case KindMap:
		if v.Map == nil {
			return []byte("{}"), nil
		}

		return json.Marshal(v.Map)
	default:
		return nil, fmt.Errorf("%w: %s value", ErrNotWireable, v.Kind)
	}
}

// DecodeJSON parses a single JSON datum into a Value. Numbers are decoded
// through json.Number so integer precision survives the round trip.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrInvalidDatum, err)
	}

	if dec.More() {
		return Value{}, ErrTrailingInput
	}

	return fromDecoded(raw)
}

func fromDecoded(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return FromBool(t), nil
	case json.Number:
		num, err := decimal.NewFromString(t.String())
		if err != nil {
			return Value{}, fmt.Errorf("%w: bad number %q", ErrInvalidDatum, t.String())
		}

		return FromDecimal(num), nil
	case string:
		return FromString(t), nil
	case []any:
		elems := make([]Value, len(t))

		for i, item := range t {
			elem, err := fromDecoded(item)
			if err != nil {
				return Value{}, err
			}

			elems[i] = elem
		}

		return FromList(elems), nil
	case map[string]any:
		fields := make(map[string]Value, len(t))

		for key, item := range t {
			field, err := fromDecoded(item)
			if err != nil {
				return Value{}, err
			}

			fields[key] = field
		}

		return FromMap(fields), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDatum, raw)
	}
}
