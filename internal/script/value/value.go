package value

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a Value. Kinds are bit flags so a set
// of allowed kinds is written as a union, e.g. KindInt|KindFloat.
type Kind uint8

const (
	KindBool Kind = 1 << iota
	KindInt
	KindFloat
	KindText
)

const (
	KindNumber = KindInt | KindFloat
	KindAny    = KindBool | KindInt | KindFloat | KindText
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindBool, "bool"},
	{KindInt, "int"},
	{KindFloat, "float"},
	{KindText, "str"},
}

// Allows reports whether kind is a member of the set k.
func (k Kind) Allows(kind Kind) bool {
	return kind != 0 && k&kind == kind
}

// Kinds expands a set into its members in declaration order.
func (k Kind) Kinds() []Kind {
	var kinds []Kind
	for _, entry := range kindNames {
		if k&entry.kind != 0 {
			kinds = append(kinds, entry.kind)
		}
	}
	return kinds
}

// String renders a single kind as its name and a set as "[a b]".
func (k Kind) String() string {
	for _, entry := range kindNames {
		if k == entry.kind {
			return entry.name
		}
	}

	kinds := k.Kinds()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, kind.String())
	}
	return "[" + strings.Join(names, " ") + "]"
}

// Value is a tagged union over bool, int64, float64 and string.
// The zero Value has no kind and is invalid.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether v was built by one of the constructors.
func (v Value) IsValid() bool {
	return v.kind != 0
}

func (v Value) AsBool() bool {
	return v.b
}

func (v Value) AsInt() int64 {
	return v.i
}

// AsFloat widens integers so numeric code can work on float64 alone.
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

func (v Value) AsText() string {
	return v.s
}

func (v Value) IsNumber() bool {
	return KindNumber.Allows(v.kind)
}

// Truthy follows the script rule for conditions: numbers are true when
// greater than zero, text when non-empty.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i > 0
	case KindFloat:
		return v.f > 0
	case KindText:
		return v.s != ""
	default:
		return false
	}
}

// Equal compares numbers across int and float; other kinds must match.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		if v.kind == KindInt && other.kind == KindInt {
			return v.i == other.i
		}
		return v.AsFloat() == other.AsFloat()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindText:
		return v.s == other.s
	default:
		return true
	}
}

// String renders the value the way print shows it.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f)
	case KindText:
		return v.s
	default:
		return "<invalid>"
	}
}

// Repr quotes text so traces distinguish "1" from 1.
func (v Value) Repr() string {
	if v.kind == KindText {
		return strconv.Quote(v.s)
	}
	return v.String()
}

// FormatFloat prints the shortest representation that keeps a decimal
// point on integral values, switching to exponent form for very large or
// very small magnitudes.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	abs := math.Abs(f)
	if abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(out, ".") {
		out += ".0"
	}
	return out
}
