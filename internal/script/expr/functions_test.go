package expr

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/NardJ/PyInterpreter/internal/clock"
	"github.com/NardJ/PyInterpreter/internal/random"
	"github.com/NardJ/PyInterpreter/internal/script/value"
)

func TestFunctions(t *testing.T) {
	t.Parallel()

	variables := map[string]value.Value{
		"doc": value.Text(`{"user":{"name":"ada","age":36,"tags":["x","y"],"score":1.5,"ok":true}}`),
	}

	tests := []struct {
		name string
		expr string
		want value.Value
	}{
		{name: "sqrt", expr: "sqrt(16)", want: value.Float(4)},
		{name: "math_prefix", expr: "math.sqrt(16)", want: value.Float(4)},
		{name: "pow", expr: "pow(2, 10)", want: value.Float(1024)},
		{name: "log2", expr: "log2(8)", want: value.Float(3)},
		{name: "log_natural", expr: "log(1)", want: value.Float(0)},
		{name: "hypot", expr: "hypot(3, 4)", want: value.Float(5)},
		{name: "floor", expr: "floor(2.7)", want: value.Int(2)},
		{name: "floor_negative", expr: "floor(-2.5)", want: value.Int(-3)},
		{name: "ceil", expr: "ceil(2.1)", want: value.Int(3)},
		{name: "trunc", expr: "trunc(-2.7)", want: value.Int(-2)},
		{name: "round_half_even", expr: "round(2.5)", want: value.Int(2)},
		{name: "round_digits", expr: "round(3.14159, 2)", want: value.Float(3.14)},
		{name: "abs_int", expr: "abs(-3)", want: value.Int(3)},
		{name: "abs_float", expr: "abs(-2.5)", want: value.Float(2.5)},
		{name: "min", expr: "min(3, 1, 2)", want: value.Int(1)},
		{name: "max_mixed", expr: "max(1, 2.5)", want: value.Float(2.5)},
		{name: "max_text", expr: `max("a", "b")`, want: value.Text("b")},
		{name: "int_from_text", expr: `int(" 42 ")`, want: value.Int(42)},
		{name: "int_truncates", expr: "int(-3.9)", want: value.Int(-3)},
		{name: "float_from_text", expr: `float("2.5")`, want: value.Float(2.5)},
		{name: "str_of_float", expr: "str(3.0)", want: value.Text("3.0")},
		{name: "bool_of_zero", expr: "bool(0)", want: value.Bool(false)},
		{name: "len_counts_runes", expr: `len("héllo")`, want: value.Int(5)},
		{name: "upper", expr: `upper("ab")`, want: value.Text("AB")},
		{name: "title", expr: `title("hello wORLD")`, want: value.Text("Hello World")},
		{name: "trim", expr: `trim("  x ")`, want: value.Text("x")},
		{name: "substr", expr: `substr("hello", 1, 3)`, want: value.Text("el")},
		{name: "substr_negative", expr: `substr("hello", -3)`, want: value.Text("llo")},
		{name: "substr_clamped", expr: `substr("hello", 3, 99)`, want: value.Text("lo")},
		{name: "contains", expr: `contains("hello", "ell")`, want: value.Bool(true)},
		{name: "replace", expr: `replace("a-b-c", "-", "+")`, want: value.Text("a+b+c")},
		{name: "base64", expr: `base64("hi")`, want: value.Text("aGk=")},
		{name: "jsonpath_text", expr: `jsonpath(doc, "$.user.name")`, want: value.Text("ada")},
		{name: "jsonpath_int", expr: `jsonpath(doc, "$.user.age")`, want: value.Int(36)},
		{name: "jsonpath_float", expr: `jsonpath(doc, "$.user.score")`, want: value.Float(1.5)},
		{name: "jsonpath_bool", expr: `jsonpath(doc, "$.user.ok")`, want: value.Bool(true)},
		{name: "jsonpath_array", expr: `jsonpath(doc, "$.user.tags")`, want: value.Text(`["x","y"]`)},
		{name: "jsonpath_index", expr: `jsonpath(doc, "$.user.tags[1]")`, want: value.Text("y")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Eval(tt.expr, variables)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.expr, err)
			}
			if got.Kind() != tt.want.Kind() || !got.Equal(tt.want) {
				t.Fatalf("Eval(%q) = %s (%s), want %s (%s)", tt.expr, got.Repr(), got.Kind(), tt.want.Repr(), tt.want.Kind())
			}
		})
	}
}

func TestFunctionErrors(t *testing.T) {
	t.Parallel()

	variables := map[string]value.Value{"doc": value.Text(`{"a":1}`)}

	tests := []struct {
		name    string
		expr    string
		wantErr error
	}{
		{name: "domain", expr: "sqrt(-1)", wantErr: ErrInvalidArgument},
		{name: "log_zero", expr: "log(0)", wantErr: ErrInvalidArgument},
		{name: "type", expr: `sqrt("a")`, wantErr: ErrTypeMismatch},
		{name: "too_few", expr: "sqrt()", wantErr: ErrInvalidArgument},
		{name: "too_many", expr: "sqrt(1, 2)", wantErr: ErrInvalidArgument},
		{name: "int_from_bad_text", expr: `int("x1")`, wantErr: ErrInvalidArgument},
		{name: "floor_of_inf", expr: "floor(math.inf)", wantErr: ErrInvalidArgument},
		{name: "max_mixed_kinds", expr: `max(1, "a")`, wantErr: ErrTypeMismatch},
		{name: "jsonpath_no_match", expr: `jsonpath(doc, "$.b")`, wantErr: ErrNoMatch},
		{name: "jsonpath_bad_document", expr: `jsonpath("{", "$.a")`, wantErr: ErrInvalidArgument},
		{name: "jsonpath_bad_path", expr: `jsonpath(doc, "a[")`, wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Eval(tt.expr, variables); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Eval(%q) error = %v, want %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestClockFunctions(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	restore := clock.SetNowForTest(func() time.Time { return fixed })
	defer restore()

	got, err := Eval("now()", nil)
	if err != nil || got.AsText() != "2024-05-06T07:08:09Z" {
		t.Fatalf("now() = %v, %v", got, err)
	}
	got, err = Eval("timestamp()", nil)
	if err != nil || got.AsInt() != fixed.Unix() {
		t.Fatalf("timestamp() = %v, %v", got, err)
	}
	got, err = Eval("millis()", nil)
	if err != nil || got.AsInt() != fixed.UnixMilli() {
		t.Fatalf("millis() = %v, %v", got, err)
	}
}

func TestRandomFunctions(t *testing.T) {
	restoreInt := random.SetIntNForTest(func(int64) int64 { return 0 })
	defer restoreInt()
	restoreFloat := random.SetFloat64ForTest(func() float64 { return 0.25 })
	defer restoreFloat()

	got, err := Eval("randint(6, 1)", nil)
	if err != nil || !got.Equal(value.Int(1)) {
		t.Fatalf("randint() = %v, %v", got, err)
	}
	got, err = Eval("random()", nil)
	if err != nil || !got.Equal(value.Float(0.25)) {
		t.Fatalf("random() = %v, %v", got, err)
	}

	got, err = Eval("randint(0, 9223372036854775807)", nil)
	if err != nil || got.Kind() != value.KindInt || got.AsInt() < 0 {
		t.Fatalf("randint(0, max) = %v, %v, want a non-negative int", got, err)
	}
	got, err = Eval("randint(-9223372036854775807-1, 9223372036854775807)", nil)
	if err != nil || got.Kind() != value.KindInt {
		t.Fatalf("randint(min, max) = %v, %v, want an int", got, err)
	}
}

func TestUUIDFunction(t *testing.T) {
	t.Parallel()

	got, err := Eval("uuid()", nil)
	if err != nil {
		t.Fatalf("uuid() error = %v", err)
	}
	if _, err := uuid.Parse(got.AsText()); err != nil {
		t.Fatalf("uuid() = %q is not a UUID: %v", got.AsText(), err)
	}
}

func TestFunctionNames(t *testing.T) {
	t.Parallel()

	names := Functions()
	if !slices.IsSorted(names) {
		t.Fatal("Functions() is not sorted")
	}
	for _, want := range []string{"sqrt", "jsonpath", "uuid", "randint"} {
		if !slices.Contains(names, want) {
			t.Fatalf("Functions() missing %q", want)
		}
	}
}
