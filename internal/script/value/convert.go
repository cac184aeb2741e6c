package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupportedType is returned when a host value has no script kind.
var ErrUnsupportedType = errors.New("unsupported value type")

// FromAny converts a host Go value into a Value. Integer types become
// KindInt, floating point types KindFloat.
func FromAny(input any) (Value, error) {
	switch current := input.(type) {
	case Value:
		return current, nil
	case bool:
		return Bool(current), nil
	case string:
		return Text(current), nil
	case float32:
		return Float(float64(current)), nil
	case float64:
		return Float(current), nil
	case json.Number:
		if i, err := current.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := current.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: invalid number %q", ErrUnsupportedType, current)
		}
		return Float(f), nil
	}

	if i, ok := toInt64(input); ok {
		return Int(i), nil
	}

	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, input)
}

// ToAny unwraps v into its natural Go representation.
func ToAny(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	default:
		return nil
	}
}

// Parse reads a literal the way a command-line variable is typed: integers,
// then floats, then True/False, falling back to text.
func Parse(literal string) Value {
	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return Float(f)
	}
	switch literal {
	case "True", "true":
		return Bool(true)
	case "False", "false":
		return Bool(false)
	}
	return Text(literal)
}

func toInt64(input any) (int64, bool) {
	switch current := input.(type) {
	case int:
		return int64(current), true
	case int8:
		return int64(current), true
	case int16:
		return int64(current), true
	case int32:
		return int64(current), true
	case int64:
		return current, true
	case uint:
		return int64(current), true
	case uint8:
		return int64(current), true
	case uint16:
		return int64(current), true
	case uint32:
		return int64(current), true
	case uint64:
		return int64(current), true
	default:
		return 0, false
	}
}
