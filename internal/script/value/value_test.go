package value

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindBool, "bool"},
		{KindInt, "int"},
		{KindFloat, "float"},
		{KindText, "str"},
		{KindNumber, "[int float]"},
		{KindText | KindFloat | KindInt, "[int float str]"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Fatalf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindAllows(t *testing.T) {
	t.Parallel()

	set := KindText | KindFloat | KindInt
	if !set.Allows(KindInt) {
		t.Fatal("expected set to allow int")
	}
	if set.Allows(KindBool) {
		t.Fatal("expected set to reject bool")
	}
	if set.Allows(0) {
		t.Fatal("expected set to reject the invalid kind")
	}
}

func TestValueString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "true", value: Bool(true), want: "True"},
		{name: "false", value: Bool(false), want: "False"},
		{name: "int", value: Int(-42), want: "-42"},
		{name: "integral_float", value: Float(3), want: "3.0"},
		{name: "fraction", value: Float(0.25), want: "0.25"},
		{name: "large_float", value: Float(1e20), want: "1e+20"},
		{name: "small_float", value: Float(0.00001), want: "1e-05"},
		{name: "text", value: Text("hello world"), want: "hello world"},
		{name: "invalid", value: Value{}, want: "<invalid>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.value.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Value
		want  bool
	}{
		{Bool(true), true},
		{Bool(false), false},
		{Int(1), true},
		{Int(0), false},
		{Int(-1), false},
		{Float(0.5), true},
		{Float(-0.5), false},
		{Text("x"), true},
		{Text(""), false},
	}

	for _, tt := range tests {
		if got := tt.value.Truthy(); got != tt.want {
			t.Fatalf("%s.Truthy() = %t, want %t", tt.value.Repr(), got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	if !Int(2).Equal(Float(2)) {
		t.Fatal("expected 2 == 2.0")
	}
	if Int(1).Equal(Bool(true)) {
		t.Fatal("expected 1 != True")
	}
	if !Text("a").Equal(Text("a")) {
		t.Fatal("expected equal text")
	}
	if Text("1").Equal(Int(1)) {
		t.Fatal("expected \"1\" != 1")
	}
}

func TestFromAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{name: "bool", input: true, want: Bool(true)},
		{name: "int", input: 7, want: Int(7)},
		{name: "uint8", input: uint8(9), want: Int(9)},
		{name: "float32", input: float32(1.5), want: Float(1.5)},
		{name: "string", input: "x", want: Text("x")},
		{name: "json_int", input: json.Number("12"), want: Int(12)},
		{name: "json_float", input: json.Number("1.25"), want: Float(1.25)},
		{name: "value", input: Text("v"), want: Text("v")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FromAny(tt.input)
			if err != nil {
				t.Fatalf("FromAny() error = %v", err)
			}
			if got.Kind() != tt.want.Kind() || !got.Equal(tt.want) {
				t.Fatalf("FromAny() = %s, want %s", got.Repr(), tt.want.Repr())
			}
		})
	}

	if _, err := FromAny([]int{1}); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("FromAny(slice) error = %v, want ErrUnsupportedType", err)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		literal string
		want    Value
	}{
		{"10", Int(10)},
		{"2.5", Float(2.5)},
		{"True", Bool(true)},
		{"false", Bool(false)},
		{"localhost", Text("localhost")},
	}

	for _, tt := range tests {
		got := Parse(tt.literal)
		if got.Kind() != tt.want.Kind() || !got.Equal(tt.want) {
			t.Fatalf("Parse(%q) = %s, want %s", tt.literal, got.Repr(), tt.want.Repr())
		}
	}
}
