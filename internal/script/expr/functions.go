package expr

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/theory/jsonpath"

	"github.com/NardJ/PyInterpreter/internal/clock"
	"github.com/NardJ/PyInterpreter/internal/random"
	"github.com/NardJ/PyInterpreter/internal/script/value"
)

const mathPrefix = "math."

type function struct {
	minArgs int
	maxArgs int // -1 for variadic
	call    func(args []value.Value) (value.Value, error)
}

var functions map[string]function

func init() {
	functions = map[string]function{
		"sin":   unaryMath("sin", math.Sin),
		"cos":   unaryMath("cos", math.Cos),
		"tan":   unaryMath("tan", math.Tan),
		"asin":  unaryMath("asin", math.Asin),
		"acos":  unaryMath("acos", math.Acos),
		"atan":  unaryMath("atan", math.Atan),
		"sinh":  unaryMath("sinh", math.Sinh),
		"cosh":  unaryMath("cosh", math.Cosh),
		"tanh":  unaryMath("tanh", math.Tanh),
		"sqrt":  unaryMath("sqrt", math.Sqrt),
		"exp":   unaryMath("exp", math.Exp),
		"log10": unaryMath("log10", math.Log10),
		"log2":  unaryMath("log2", math.Log2),
		"fabs":  unaryMath("fabs", math.Abs),
		"degrees": unaryMath("degrees", func(x float64) float64 {
			return x * 180 / math.Pi
		}),
		"radians": unaryMath("radians", func(x float64) float64 {
			return x * math.Pi / 180
		}),
		"atan2": binaryMath("atan2", math.Atan2),
		"pow":   binaryMath("pow", math.Pow),
		"hypot": binaryMath("hypot", math.Hypot),
		"log":   {minArgs: 1, maxArgs: 2, call: logFunc},
		"floor": roundingMath("floor", math.Floor),
		"ceil":  roundingMath("ceil", math.Ceil),
		"trunc": roundingMath("trunc", math.Trunc),
		"abs":   {minArgs: 1, maxArgs: 1, call: absFunc},
		"round": {minArgs: 1, maxArgs: 2, call: roundFunc},
		"min":   {minArgs: 1, maxArgs: -1, call: extremum("min", -1)},
		"max":   {minArgs: 1, maxArgs: -1, call: extremum("max", 1)},

		"int":   {minArgs: 1, maxArgs: 1, call: intFunc},
		"float": {minArgs: 1, maxArgs: 1, call: floatFunc},
		"str": {minArgs: 1, maxArgs: 1, call: func(args []value.Value) (value.Value, error) {
			return value.Text(args[0].String()), nil
		}},
		"bool": {minArgs: 1, maxArgs: 1, call: func(args []value.Value) (value.Value, error) {
			return value.Bool(args[0].Truthy()), nil
		}},

		"len":      textFunc("len", func(s string) value.Value { return value.Int(int64(utf8.RuneCountInString(s))) }),
		"upper":    textFunc("upper", func(s string) value.Value { return value.Text(strings.ToUpper(s)) }),
		"lower":    textFunc("lower", func(s string) value.Value { return value.Text(strings.ToLower(s)) }),
		"trim":     textFunc("trim", func(s string) value.Value { return value.Text(strings.TrimSpace(s)) }),
		"title":    textFunc("title", func(s string) value.Value { return value.Text(titleCase(s)) }),
		"base64":   textFunc("base64", func(s string) value.Value { return value.Text(base64.StdEncoding.EncodeToString([]byte(s))) }),
		"substr":   {minArgs: 2, maxArgs: 3, call: substrFunc},
		"contains": {minArgs: 2, maxArgs: 2, call: containsFunc},
		"replace":  {minArgs: 3, maxArgs: 3, call: replaceFunc},

		"uuid": {call: func([]value.Value) (value.Value, error) {
			return value.Text(uuid.New().String()), nil
		}},
		"now": {call: func([]value.Value) (value.Value, error) {
			return value.Text(clock.Now().Format(time.RFC3339)), nil
		}},
		"timestamp": {call: func([]value.Value) (value.Value, error) {
			return value.Int(clock.Now().Unix()), nil
		}},
		"millis": {call: func([]value.Value) (value.Value, error) {
			return value.Int(clock.Millis()), nil
		}},
		"random": {call: func([]value.Value) (value.Value, error) {
			return value.Float(random.Float64()), nil
		}},
		"randint":  {minArgs: 2, maxArgs: 2, call: randintFunc},
		"jsonpath": {minArgs: 2, maxArgs: 2, call: jsonpathFunc},
	}
}

// Functions returns the sorted names of the callable functions.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func call(current callNode, variables map[string]value.Value) (value.Value, error) {
	fn, ok := functions[strings.TrimPrefix(current.name, mathPrefix)]
	if !ok {
		return value.Value{}, evalError(ErrUnknownFunction, "name '%s' is not defined", current.name)
	}

	if len(current.args) < fn.minArgs || (fn.maxArgs >= 0 && len(current.args) > fn.maxArgs) {
		return value.Value{}, arityError(current.name, fn, len(current.args))
	}

	args := make([]value.Value, len(current.args))
	for i, arg := range current.args {
		v, err := evaluate(arg, variables)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}

	return fn.call(args)
}

func arityError(name string, fn function, got int) error {
	switch {
	case fn.maxArgs < 0:
		return evalError(ErrInvalidArgument, "%s expected at least %d arguments, got %d", name, fn.minArgs, got)
	case fn.minArgs == fn.maxArgs:
		return evalError(ErrInvalidArgument, "%s() takes exactly %d arguments (%d given)", name, fn.minArgs, got)
	default:
		return evalError(ErrInvalidArgument, "%s() takes from %d to %d arguments (%d given)", name, fn.minArgs, fn.maxArgs, got)
	}
}

func numberArg(name string, v value.Value) (float64, error) {
	if !v.IsNumber() {
		return 0, evalError(ErrTypeMismatch, "%s() argument must be a number, not '%s'", name, v.Kind())
	}
	return v.AsFloat(), nil
}

func intArg(name string, v value.Value) (int64, error) {
	if v.Kind() != value.KindInt {
		return 0, evalError(ErrTypeMismatch, "%s() argument must be an integer, not '%s'", name, v.Kind())
	}
	return v.AsInt(), nil
}

func textArg(name string, v value.Value) (string, error) {
	if v.Kind() != value.KindText {
		return "", evalError(ErrTypeMismatch, "%s() argument must be str, not '%s'", name, v.Kind())
	}
	return v.AsText(), nil
}

func checkDomain(name string, result float64, args ...float64) (value.Value, error) {
	if math.IsNaN(result) && !slices.ContainsFunc(args, math.IsNaN) {
		return value.Value{}, evalError(ErrInvalidArgument, "%s(): math domain error", name)
	}
	return value.Float(result), nil
}

func unaryMath(name string, fn func(float64) float64) function {
	return function{minArgs: 1, maxArgs: 1, call: func(args []value.Value) (value.Value, error) {
		x, err := numberArg(name, args[0])
		if err != nil {
			return value.Value{}, err
		}
		return checkDomain(name, fn(x), x)
	}}
}

func binaryMath(name string, fn func(float64, float64) float64) function {
	return function{minArgs: 2, maxArgs: 2, call: func(args []value.Value) (value.Value, error) {
		x, err := numberArg(name, args[0])
		if err != nil {
			return value.Value{}, err
		}
		y, err := numberArg(name, args[1])
		if err != nil {
			return value.Value{}, err
		}
		return checkDomain(name, fn(x, y), x, y)
	}}
}

// roundingMath returns an integer, except for infinities and NaN which
// have no integer form.
func roundingMath(name string, fn func(float64) float64) function {
	return function{minArgs: 1, maxArgs: 1, call: func(args []value.Value) (value.Value, error) {
		if args[0].Kind() == value.KindInt {
			return args[0], nil
		}
		x, err := numberArg(name, args[0])
		if err != nil {
			return value.Value{}, err
		}
		return toInt(name, fn(x))
	}}
}

func toInt(name string, f float64) (value.Value, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return value.Value{}, evalError(ErrInvalidArgument, "%s(): cannot convert %s to integer", name, value.FormatFloat(f))
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return value.Value{}, evalError(ErrInvalidArgument, "%s(): %s is out of integer range", name, value.FormatFloat(f))
	}
	return value.Int(int64(f)), nil
}

func logFunc(args []value.Value) (value.Value, error) {
	x, err := numberArg("log", args[0])
	if err != nil {
		return value.Value{}, err
	}
	if x <= 0 {
		return value.Value{}, evalError(ErrInvalidArgument, "log(): math domain error")
	}
	if len(args) == 1 {
		return value.Float(math.Log(x)), nil
	}

	base, err := numberArg("log", args[1])
	if err != nil {
		return value.Value{}, err
	}
	if base <= 0 || base == 1 {
		return value.Value{}, evalError(ErrInvalidArgument, "log(): math domain error")
	}
	return value.Float(math.Log(x) / math.Log(base)), nil
}

func absFunc(args []value.Value) (value.Value, error) {
	switch args[0].Kind() {
	case value.KindInt:
		n := args[0].AsInt()
		if n < 0 {
			n = -n
		}
		return value.Int(n), nil
	case value.KindFloat:
		return value.Float(math.Abs(args[0].AsFloat())), nil
	default:
		return value.Value{}, evalError(ErrTypeMismatch, "bad operand type for abs(): '%s'", args[0].Kind())
	}
}

// roundFunc rounds half to even. Without digits it returns an integer.
func roundFunc(args []value.Value) (value.Value, error) {
	x, err := numberArg("round", args[0])
	if err != nil {
		return value.Value{}, err
	}
	if len(args) == 1 {
		if args[0].Kind() == value.KindInt {
			return args[0], nil
		}
		return toInt("round", math.RoundToEven(x))
	}

	digits, err := intArg("round", args[1])
	if err != nil {
		return value.Value{}, err
	}
	if args[0].Kind() == value.KindInt && digits >= 0 {
		return args[0], nil
	}
	scale := math.Pow(10, float64(digits))
	rounded := math.RoundToEven(x*scale) / scale
	if args[0].Kind() == value.KindInt {
		return value.Int(int64(rounded)), nil
	}
	return value.Float(rounded), nil
}

// extremum picks the smallest (sign -1) or largest (sign 1) argument.
// Numbers and text cannot be mixed.
func extremum(name string, sign int) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		best := args[0]
		for _, candidate := range args[1:] {
			greater, err := compare(tokenGreater, candidate, best)
			if err != nil {
				return value.Value{}, evalError(ErrTypeMismatch, "%s(): cannot compare '%s' and '%s'", name, candidate.Kind(), best.Kind())
			}
			less, _ := compare(tokenLess, candidate, best)
			if (sign > 0 && greater) || (sign < 0 && less) {
				best = candidate
			}
		}
		return best, nil
	}
}

func intFunc(args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.KindInt:
		return v, nil
	case value.KindFloat:
		return toInt("int", math.Trunc(v.AsFloat()))
	case value.KindBool:
		if v.AsBool() {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	default:
		literal := strings.ReplaceAll(strings.TrimSpace(v.AsText()), "_", "")
		n, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return value.Value{}, evalError(ErrInvalidArgument, "invalid literal for int() with base 10: %s", v.Repr())
		}
		return value.Int(n), nil
	}
}

func floatFunc(args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.KindInt, value.KindFloat:
		return value.Float(v.AsFloat()), nil
	case value.KindBool:
		if v.AsBool() {
			return value.Float(1), nil
		}
		return value.Float(0), nil
	default:
		literal := strings.ToLower(strings.TrimSpace(v.AsText()))
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil && !math.IsInf(f, 0) {
			return value.Value{}, evalError(ErrInvalidArgument, "could not convert string to float: %s", v.Repr())
		}
		return value.Float(f), nil
	}
}

func textFunc(name string, fn func(string) value.Value) function {
	return function{minArgs: 1, maxArgs: 1, call: func(args []value.Value) (value.Value, error) {
		s, err := textArg(name, args[0])
		if err != nil {
			return value.Value{}, err
		}
		return fn(s), nil
	}}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// substrFunc slices text by rune index like s[start:end]. Negative
// indexes count from the end and out-of-range indexes are clamped.
func substrFunc(args []value.Value) (value.Value, error) {
	s, err := textArg("substr", args[0])
	if err != nil {
		return value.Value{}, err
	}
	runes := []rune(s)

	start, err := intArg("substr", args[1])
	if err != nil {
		return value.Value{}, err
	}
	end := int64(len(runes))
	if len(args) == 3 {
		if end, err = intArg("substr", args[2]); err != nil {
			return value.Value{}, err
		}
	}

	from, to := clampIndex(start, len(runes)), clampIndex(end, len(runes))
	if from >= to {
		return value.Text(""), nil
	}
	return value.Text(string(runes[from:to])), nil
}

func clampIndex(index int64, length int) int {
	if index < 0 {
		index += int64(length)
	}
	return int(max(0, min(index, int64(length))))
}

func containsFunc(args []value.Value) (value.Value, error) {
	s, err := textArg("contains", args[0])
	if err != nil {
		return value.Value{}, err
	}
	sub, err := textArg("contains", args[1])
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(strings.Contains(s, sub)), nil
}

func replaceFunc(args []value.Value) (value.Value, error) {
	texts := make([]string, len(args))
	for i, arg := range args {
		s, err := textArg("replace", arg)
		if err != nil {
			return value.Value{}, err
		}
		texts[i] = s
	}
	return value.Text(strings.ReplaceAll(texts[0], texts[1], texts[2])), nil
}

func randintFunc(args []value.Value) (value.Value, error) {
	low, err := intArg("randint", args[0])
	if err != nil {
		return value.Value{}, err
	}
	high, err := intArg("randint", args[1])
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(random.Between(low, high)), nil
}

// jsonpathFunc selects the first node matching a JSONPath query in a JSON
// document. Scalars map onto values; objects and arrays come back as
// their JSON text.
func jsonpathFunc(args []value.Value) (value.Value, error) {
	doc, err := textArg("jsonpath", args[0])
	if err != nil {
		return value.Value{}, err
	}
	query, err := textArg("jsonpath", args[1])
	if err != nil {
		return value.Value{}, err
	}

	var data any
	if err := json.Unmarshal([]byte(doc), &data); err != nil {
		return value.Value{}, evalError(ErrInvalidArgument, "jsonpath(): invalid JSON document: %v", err)
	}

	path, err := jsonpath.Parse(query)
	if err != nil {
		return value.Value{}, evalError(ErrInvalidArgument, "jsonpath(): invalid path %s: %v", query, err)
	}

	results := path.Select(data)
	if len(results) == 0 {
		return value.Value{}, evalError(ErrNoMatch, "jsonpath(): no match for %s", query)
	}
	return jsonValue(results[0])
}

func jsonValue(node any) (value.Value, error) {
	switch current := node.(type) {
	case nil:
		return value.Text(""), nil
	case float64:
		if current == math.Trunc(current) && math.Abs(current) < 1<<53 {
			return value.Int(int64(current)), nil
		}
		return value.Float(current), nil
	case string, bool:
		return value.FromAny(current)
	default:
		encoded, err := json.Marshal(current)
		if err != nil {
			return value.Value{}, evalError(ErrInvalidArgument, "jsonpath(): %v", err)
		}
		return value.Text(string(encoded)), nil
	}
}
