package expr

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/NardJ/PyInterpreter/internal/script/value"
)

func renderFString(current fstringNode, variables map[string]value.Value) (value.Value, error) {
	var b strings.Builder
	for _, part := range current.parts {
		if part.expr == nil {
			b.WriteString(part.text)
			continue
		}

		v, err := evaluate(part.expr, variables)
		if err != nil {
			return value.Value{}, err
		}
		formatted, err := Format(v, part.spec)
		if err != nil {
			return value.Value{}, err
		}
		b.WriteString(formatted)
	}
	return value.Text(b.String()), nil
}

// formatSpec is the parsed form of
// [[fill]align][sign][#][0][width][grouping][.precision][type].
type formatSpec struct {
	fill      rune
	align     byte
	sign      byte
	alternate bool
	width     int
	grouping  byte
	precision int
	verb      byte
}

func parseFormatSpec(spec string) (formatSpec, error) {
	parsed := formatSpec{fill: ' ', precision: -1}
	rest := spec

	if r, size := utf8.DecodeRuneInString(rest); size > 0 && size < len(rest) && isAlign(rest[size]) {
		parsed.fill, parsed.align = r, rest[size]
		rest = rest[size+1:]
	} else if rest != "" && isAlign(rest[0]) {
		parsed.align = rest[0]
		rest = rest[1:]
	}

	if rest != "" && (rest[0] == '+' || rest[0] == '-' || rest[0] == ' ') {
		parsed.sign = rest[0]
		rest = rest[1:]
	}
	if rest != "" && rest[0] == '#' {
		parsed.alternate = true
		rest = rest[1:]
	}
	if rest != "" && rest[0] == '0' {
		if parsed.align == 0 {
			parsed.fill, parsed.align = '0', '='
		}
		rest = rest[1:]
	}

	digits := leadingDigits(rest)
	if digits != "" {
		width, err := formatField(digits)
		if err != nil {
			return formatSpec{}, err
		}
		parsed.width = width
		rest = rest[len(digits):]
	}

	if rest != "" && (rest[0] == ',' || rest[0] == '_') {
		parsed.grouping = rest[0]
		rest = rest[1:]
	}

	if rest != "" && rest[0] == '.' {
		digits := leadingDigits(rest[1:])
		if digits == "" {
			return formatSpec{}, evalError(ErrInvalidArgument, "Format specifier missing precision")
		}
		precision, err := formatField(digits)
		if err != nil {
			return formatSpec{}, err
		}
		parsed.precision = precision
		rest = rest[1+len(digits):]
	}

	switch len(rest) {
	case 0:
	case 1:
		parsed.verb = rest[0]
	default:
		return formatSpec{}, evalError(ErrInvalidArgument, "Invalid format specifier '%s'", spec)
	}

	return parsed, nil
}

func isAlign(ch byte) bool {
	return ch == '<' || ch == '>' || ch == '^' || ch == '='
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	return s[:end]
}

// Format renders v using a format spec mini-language in the style of
// Python's format().
func Format(v value.Value, spec string) (string, error) {
	if spec == "" {
		return v.String(), nil
	}

	parsed, err := parseFormatSpec(spec)
	if err != nil {
		return "", err
	}

	if v.Kind() == value.KindText {
		return formatText(v.AsText(), parsed)
	}

	number := v
	if v.Kind() == value.KindBool {
		if parsed.verb == 0 || parsed.verb == 's' {
			return formatText(v.String(), parsed)
		}
		number = value.Int(0)
		if v.AsBool() {
			number = value.Int(1)
		}
	}

	body, negative, err := formatNumber(number, parsed)
	if err != nil {
		return "", err
	}
	return pad(signPrefix(negative, parsed.sign), body, parsed, '>'), nil
}

func formatText(s string, spec formatSpec) (string, error) {
	if spec.verb != 0 && spec.verb != 's' {
		return "", evalError(ErrInvalidArgument, "Unknown format code '%c' for object of type 'str'", spec.verb)
	}
	if spec.sign != 0 {
		return "", evalError(ErrInvalidArgument, "Sign not allowed in string format specifier")
	}
	if spec.align == '=' {
		return "", evalError(ErrInvalidArgument, "'=' alignment not allowed in string format specifier")
	}
	if spec.precision >= 0 && utf8.RuneCountInString(s) > spec.precision {
		s = string([]rune(s)[:spec.precision])
	}
	return pad("", s, spec, '<'), nil
}

// formatNumber renders the magnitude of a number. The sign is returned
// separately so padding can go between sign and digits.
func formatNumber(v value.Value, spec formatSpec) (string, bool, error) {
	if v.Kind() == value.KindInt {
		n := v.AsInt()
		negative := n < 0
		magnitude := uint64(n)
		if negative {
			magnitude = uint64(-n)
		}

		switch spec.verb {
		case 0, 'd', 'n':
			return group(strconv.FormatUint(magnitude, 10), spec.grouping), negative, nil
		case 'x', 'X', 'o', 'b':
			return formatBase(magnitude, spec), negative, nil
		case 'c':
			return string(rune(n)), false, nil
		case 'e', 'E', 'f', 'F', 'g', 'G', '%':
			return formatFloat(float64(n), spec)
		default:
			return "", false, evalError(ErrInvalidArgument, "Unknown format code '%c' for object of type 'int'", spec.verb)
		}
	}

	switch spec.verb {
	case 0, 'e', 'E', 'f', 'F', 'g', 'G', '%':
		return formatFloat(v.AsFloat(), spec)
	default:
		return "", false, evalError(ErrInvalidArgument, "Unknown format code '%c' for object of type 'float'", spec.verb)
	}
}

func formatFloat(f float64, spec formatSpec) (string, bool, error) {
	negative := math.Signbit(f) && !math.IsNaN(f)
	f = math.Abs(f)

	if math.IsInf(f, 0) || math.IsNaN(f) {
		text := value.FormatFloat(f)
		if spec.verb == 'E' || spec.verb == 'F' || spec.verb == 'G' {
			text = strings.ToUpper(text)
		}
		return text, negative, nil
	}

	precision := spec.precision
	var text string
	switch spec.verb {
	case 0:
		if precision < 0 {
			text = value.FormatFloat(f)
		} else {
			text = strconv.FormatFloat(f, 'g', max(precision, 1), 64)
		}
	case 'f', 'F':
		text = strconv.FormatFloat(f, 'f', defaultPrecision(precision), 64)
	case 'e', 'E':
		text = strconv.FormatFloat(f, byte(spec.verb), defaultPrecision(precision), 64)
	case 'g', 'G':
		text = strconv.FormatFloat(f, byte(spec.verb), max(defaultPrecision(precision), 1), 64)
	case '%':
		text = strconv.FormatFloat(f*100, 'f', defaultPrecision(precision), 64) + "%"
	}

	if spec.grouping != 0 {
		text = groupFloat(text, spec.grouping)
	}
	return text, negative, nil
}

// maxFormatField bounds width and precision in a format spec.
const maxFormatField = 1 << 16

func formatField(digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil || n > maxFormatField {
		return 0, evalError(ErrInvalidArgument, "Too many decimal digits in format string")
	}
	return n, nil
}

func defaultPrecision(precision int) int {
	if precision < 0 {
		return 6
	}
	return precision
}

func formatBase(n uint64, spec formatSpec) string {
	base, prefix := 16, "0x"
	switch spec.verb {
	case 'o':
		base, prefix = 8, "0o"
	case 'b':
		base, prefix = 2, "0b"
	}

	digits := strconv.FormatUint(n, base)
	if spec.verb == 'X' {
		digits = strings.ToUpper(digits)
		prefix = "0X"
	}
	if spec.alternate {
		return prefix + digits
	}
	return digits
}

// group inserts sep every three digits from the right.
func group(digits string, sep byte) string {
	if sep == 0 || len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func groupFloat(text string, sep byte) string {
	end := strings.IndexFunc(text, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(text)
	}
	return group(text[:end], sep) + text[end:]
}

func signPrefix(negative bool, sign byte) string {
	switch {
	case negative:
		return "-"
	case sign == '+':
		return "+"
	case sign == ' ':
		return " "
	default:
		return ""
	}
}

func pad(sign, body string, spec formatSpec, defaultAlign byte) string {
	length := utf8.RuneCountInString(sign) + utf8.RuneCountInString(body)
	if spec.width <= length {
		return sign + body
	}

	fill := strings.Repeat(string(spec.fill), spec.width-length)
	align := spec.align
	if align == 0 {
		align = defaultAlign
	}

	switch align {
	case '<':
		return sign + body + fill
	case '^':
		half := (spec.width - length) / 2
		left := strings.Repeat(string(spec.fill), half)
		right := strings.Repeat(string(spec.fill), spec.width-length-half)
		return left + sign + body + right
	case '=':
		return sign + fill + body
	default:
		return fill + sign + body
	}
}
