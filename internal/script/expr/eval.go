package expr

import (
	"math"
	"strings"

	"github.com/NardJ/PyInterpreter/internal/script/value"
)

// Expression is a parsed expression that can be evaluated repeatedly.
type Expression struct {
	source string
	root   node
}

// Compile parses input once for repeated evaluation.
func Compile(input string) (*Expression, error) {
	root, err := parse(input)
	if err != nil {
		return nil, err
	}
	return &Expression{source: input, root: root}, nil
}

// String returns the source the expression was compiled from.
func (e *Expression) String() string {
	return e.source
}

// Eval evaluates the expression against variables.
func (e *Expression) Eval(variables map[string]value.Value) (value.Value, error) {
	return evaluate(e.root, variables)
}

// Eval parses and evaluates input against variables.
func Eval(input string, variables map[string]value.Value) (value.Value, error) {
	root, err := parse(input)
	if err != nil {
		return value.Value{}, err
	}
	return evaluate(root, variables)
}

var constants = map[string]value.Value{
	"math.pi":  value.Float(math.Pi),
	"math.e":   value.Float(math.E),
	"math.tau": value.Float(2 * math.Pi),
	"math.inf": value.Float(math.Inf(1)),
	"math.nan": value.Float(math.NaN()),
}

func evaluate(root node, variables map[string]value.Value) (value.Value, error) {
	switch current := root.(type) {
	case literalNode:
		return current.value, nil
	case identifierNode:
		if v, ok := variables[current.name]; ok {
			return v, nil
		}
		if v, ok := constants[current.name]; ok {
			return v, nil
		}
		return value.Value{}, evalError(ErrUndefinedName, "name '%s' is not defined", current.name)
	case unaryNode:
		right, err := evaluate(current.right, variables)
		if err != nil {
			return value.Value{}, err
		}
		return unary(current.op, right)
	case binaryNode:
		if current.op == tokenAnd || current.op == tokenOr {
			return logical(current, variables)
		}
		left, err := evaluate(current.left, variables)
		if err != nil {
			return value.Value{}, err
		}
		right, err := evaluate(current.right, variables)
		if err != nil {
			return value.Value{}, err
		}
		return arithmetic(current.op, left, right)
	case compareNode:
		return compareChain(current, variables)
	case callNode:
		return call(current, variables)
	case fstringNode:
		return renderFString(current, variables)
	default:
		return value.Value{}, expressionError("unsupported expression node")
	}
}

func logical(current binaryNode, variables map[string]value.Value) (value.Value, error) {
	left, err := evaluate(current.left, variables)
	if err != nil {
		return value.Value{}, err
	}
	if current.op == tokenAnd && !left.Truthy() {
		return value.Bool(false), nil
	}
	if current.op == tokenOr && left.Truthy() {
		return value.Bool(true), nil
	}

	right, err := evaluate(current.right, variables)
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(right.Truthy()), nil
}

func unary(op tokenType, right value.Value) (value.Value, error) {
	switch op {
	case tokenNot:
		return value.Bool(!right.Truthy()), nil
	case tokenPlus, tokenMinus:
		switch right.Kind() {
		case value.KindInt:
			if op == tokenMinus {
				return value.Int(-right.AsInt()), nil
			}
			return right, nil
		case value.KindFloat:
			if op == tokenMinus {
				return value.Float(-right.AsFloat()), nil
			}
			return right, nil
		}
		return value.Value{}, evalError(ErrTypeMismatch, "bad operand type for unary %s: '%s'", op, right.Kind())
	default:
		return value.Value{}, expressionError("unsupported unary operator")
	}
}

func operandError(op tokenType, left, right value.Value) error {
	return evalError(ErrTypeMismatch, "unsupported operand type(s) for %s: '%s' and '%s'", op, left.Kind(), right.Kind())
}

func arithmetic(op tokenType, left, right value.Value) (value.Value, error) {
	lk, rk := left.Kind(), right.Kind()

	if lk == value.KindText || rk == value.KindText {
		return textArithmetic(op, left, right)
	}
	if !left.IsNumber() || !right.IsNumber() {
		return value.Value{}, operandError(op, left, right)
	}

	if lk == value.KindInt && rk == value.KindInt {
		return intArithmetic(op, left.AsInt(), right.AsInt())
	}
	return floatArithmetic(op, left.AsFloat(), right.AsFloat())
}

func textArithmetic(op tokenType, left, right value.Value) (value.Value, error) {
	switch {
	case op == tokenPlus && left.Kind() == value.KindText && right.Kind() == value.KindText:
		return value.Text(left.AsText() + right.AsText()), nil
	case op == tokenStar && left.Kind() == value.KindText && right.Kind() == value.KindInt:
		return repeat(left.AsText(), right.AsInt())
	case op == tokenStar && left.Kind() == value.KindInt && right.Kind() == value.KindText:
		return repeat(right.AsText(), left.AsInt())
	}
	return value.Value{}, operandError(op, left, right)
}

// maxTextLength bounds text built by repetition.
const maxTextLength = 1 << 28

func repeat(s string, n int64) (value.Value, error) {
	if n <= 0 || s == "" {
		return value.Text(""), nil
	}
	if n > maxTextLength/int64(len(s)) {
		return value.Value{}, evalError(ErrInvalidArgument, "repeated string is too long")
	}
	return value.Text(strings.Repeat(s, int(n))), nil
}

// intArithmetic follows Python semantics on int64. A result that does not
// fit in int64 is promoted to Float.
func intArithmetic(op tokenType, a, b int64) (value.Value, error) {
	switch op {
	case tokenPlus:
		sum := a + b
		if (sum > a) != (b > 0) {
			return value.Float(float64(a) + float64(b)), nil
		}
		return value.Int(sum), nil
	case tokenMinus:
		diff := a - b
		if (diff < a) != (b > 0) {
			return value.Float(float64(a) - float64(b)), nil
		}
		return value.Int(diff), nil
	case tokenStar:
		product, ok := mulInt(a, b)
		if !ok {
			return value.Float(float64(a) * float64(b)), nil
		}
		return value.Int(product), nil
	case tokenSlash:
		if b == 0 {
			return value.Value{}, evalError(ErrDivisionByZero, "division by zero")
		}
		return value.Float(float64(a) / float64(b)), nil
	case tokenFloorDiv:
		if b == 0 {
			return value.Value{}, evalError(ErrDivisionByZero, "integer division or modulo by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return value.Float(-float64(a)), nil
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return value.Int(q), nil
	case tokenPercent:
		if b == 0 {
			return value.Value{}, evalError(ErrDivisionByZero, "integer division or modulo by zero")
		}
		r := a % b
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return value.Int(r), nil
	case tokenPower:
		if b < 0 {
			return value.Float(math.Pow(float64(a), float64(b))), nil
		}
		if result, ok := intPow(a, b); ok {
			return value.Int(result), nil
		}
		return value.Float(math.Pow(float64(a), float64(b))), nil
	default:
		return value.Value{}, expressionError("unsupported binary operator")
	}
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return product, true
}

// intPow reports false when the result overflows int64.
func intPow(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		var ok bool
		if exp&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

func floatArithmetic(op tokenType, a, b float64) (value.Value, error) {
	switch op {
	case tokenPlus:
		return value.Float(a + b), nil
	case tokenMinus:
		return value.Float(a - b), nil
	case tokenStar:
		return value.Float(a * b), nil
	case tokenSlash:
		if b == 0 {
			return value.Value{}, evalError(ErrDivisionByZero, "float division by zero")
		}
		return value.Float(a / b), nil
	case tokenFloorDiv:
		if b == 0 {
			return value.Value{}, evalError(ErrDivisionByZero, "float floor division by zero")
		}
		return value.Float(math.Floor(a / b)), nil
	case tokenPercent:
		if b == 0 {
			return value.Value{}, evalError(ErrDivisionByZero, "float modulo")
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return value.Float(r), nil
	case tokenPower:
		if a == 0 && b < 0 {
			return value.Value{}, evalError(ErrDivisionByZero, "0.0 cannot be raised to a negative power")
		}
		return value.Float(math.Pow(a, b)), nil
	default:
		return value.Value{}, expressionError("unsupported binary operator")
	}
}

func compareChain(chain compareNode, variables map[string]value.Value) (value.Value, error) {
	left, err := evaluate(chain.operands[0], variables)
	if err != nil {
		return value.Value{}, err
	}

	for i, op := range chain.ops {
		right, err := evaluate(chain.operands[i+1], variables)
		if err != nil {
			return value.Value{}, err
		}
		ok, err := compare(op, left, right)
		if err != nil {
			return value.Value{}, err
		}
		if !ok {
			return value.Bool(false), nil
		}
		left = right
	}

	return value.Bool(true), nil
}

func compare(op tokenType, left, right value.Value) (bool, error) {
	switch op {
	case tokenEqual:
		return left.Equal(right), nil
	case tokenNotEqual:
		return !left.Equal(right), nil
	}

	var order int
	switch {
	case left.Kind() == value.KindInt && right.Kind() == value.KindInt:
		order = cmpOrder(left.AsInt(), right.AsInt())
	case left.IsNumber() && right.IsNumber():
		a, b := left.AsFloat(), right.AsFloat()
		if math.IsNaN(a) || math.IsNaN(b) {
			return false, nil
		}
		order = cmpOrder(a, b)
	case left.Kind() == value.KindText && right.Kind() == value.KindText:
		order = strings.Compare(left.AsText(), right.AsText())
	default:
		return false, evalError(ErrTypeMismatch, "'%s' not supported between instances of '%s' and '%s'", op, left.Kind(), right.Kind())
	}

	switch op {
	case tokenLess:
		return order < 0, nil
	case tokenLessEqual:
		return order <= 0, nil
	case tokenGreater:
		return order > 0, nil
	case tokenGreaterEqual:
		return order >= 0, nil
	default:
		return false, expressionError("unsupported comparison operator")
	}
}

func cmpOrder[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
