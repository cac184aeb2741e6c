package expr

import (
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdentifier
	tokenNumber
	tokenString
	tokenFString
	tokenTrue
	tokenFalse
	tokenEqual
	tokenNotEqual
	tokenLess
	tokenLessEqual
	tokenGreater
	tokenGreaterEqual
	tokenAnd
	tokenOr
	tokenNot
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenFloorDiv
	tokenPercent
	tokenPower
	tokenLParen
	tokenRParen
	tokenComma
)

var operatorSymbols = map[tokenType]string{
	tokenEqual:        "==",
	tokenNotEqual:     "!=",
	tokenLess:         "<",
	tokenLessEqual:    "<=",
	tokenGreater:      ">",
	tokenGreaterEqual: ">=",
	tokenAnd:          "and",
	tokenOr:           "or",
	tokenNot:          "not",
	tokenPlus:         "+",
	tokenMinus:        "-",
	tokenStar:         "*",
	tokenSlash:        "/",
	tokenFloorDiv:     "//",
	tokenPercent:      "%",
	tokenPower:        "**",
}

func (t tokenType) String() string {
	if symbol, ok := operatorSymbols[t]; ok {
		return symbol
	}
	return "token"
}

type token struct {
	typ     tokenType
	literal string
	pos     int
}

var keywords = map[string]tokenType{
	"and":   tokenAnd,
	"or":    tokenOr,
	"not":   tokenNot,
	"True":  tokenTrue,
	"true":  tokenTrue,
	"False": tokenFalse,
	"false": tokenFalse,
}

// twoCharOperators is checked before single characters so that "**"
// never lexes as two multiplications.
var twoCharOperators = map[string]tokenType{
	"==": tokenEqual,
	"!=": tokenNotEqual,
	"<=": tokenLessEqual,
	">=": tokenGreaterEqual,
	"&&": tokenAnd,
	"||": tokenOr,
	"//": tokenFloorDiv,
	"**": tokenPower,
}

var oneCharOperators = map[byte]tokenType{
	'<': tokenLess,
	'>': tokenGreater,
	'!': tokenNot,
	'+': tokenPlus,
	'-': tokenMinus,
	'*': tokenStar,
	'/': tokenSlash,
	'%': tokenPercent,
	'(': tokenLParen,
	')': tokenRParen,
	',': tokenComma,
}

func lex(input string) ([]token, error) {
	tokens := make([]token, 0, len(input)/2)
	pos := 0

	for pos < len(input) {
		r := rune(input[pos])
		if unicode.IsSpace(r) {
			pos++
			continue
		}

		if isFStringStart(input, pos) {
			literal, nextPos, err := lexString(input, pos+1)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokenFString, literal: literal, pos: pos})
			pos = nextPos
			continue
		}

		if isIdentifierStart(r) {
			start := pos
			pos++
			for pos < len(input) && (isIdentifierPart(rune(input[pos])) || isQualifier(input, pos)) {
				pos++
			}
			literal := input[start:pos]
			if typ, ok := keywords[literal]; ok {
				tokens = append(tokens, token{typ: typ, literal: literal, pos: start})
				continue
			}
			tokens = append(tokens, token{typ: tokenIdentifier, literal: literal, pos: start})
			continue
		}

		if isNumberStart(input, pos) {
			numberToken, nextPos, err := lexNumber(input, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, numberToken)
			pos = nextPos
			continue
		}

		if input[pos] == '\'' || input[pos] == '"' {
			literal, nextPos, err := lexString(input, pos)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokenString, literal: literal, pos: pos})
			pos = nextPos
			continue
		}

		if pos+1 < len(input) {
			if typ, ok := twoCharOperators[input[pos:pos+2]]; ok {
				tokens = append(tokens, token{typ: typ, pos: pos})
				pos += 2
				continue
			}
		}
		if typ, ok := oneCharOperators[input[pos]]; ok {
			tokens = append(tokens, token{typ: typ, pos: pos})
			pos++
			continue
		}

		switch input[pos] {
		case '=':
			return nil, expressionError("unexpected '=' at position %d, use '==' to compare", pos)
		case '&', '|':
			return nil, expressionError("unexpected %q at position %d", input[pos], pos)
		default:
			return nil, expressionError("unexpected character %q at position %d", input[pos], pos)
		}
	}

	tokens = append(tokens, token{typ: tokenEOF, pos: len(input)})
	return tokens, nil
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isQualifier reports a dot joining two identifier parts, as in math.pi.
func isQualifier(input string, pos int) bool {
	return input[pos] == '.' && pos+1 < len(input) && isIdentifierStart(rune(input[pos+1]))
}

func isFStringStart(input string, pos int) bool {
	if input[pos] != 'f' && input[pos] != 'F' {
		return false
	}
	if pos+1 >= len(input) || (input[pos+1] != '"' && input[pos+1] != '\'') {
		return false
	}
	return pos == 0 || !isIdentifierPart(rune(input[pos-1]))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNumberStart(input string, pos int) bool {
	if isDigit(input[pos]) {
		return true
	}
	return input[pos] == '.' && pos+1 < len(input) && isDigit(input[pos+1])
}

// lexNumber reads an integer or a float with optional fraction and
// exponent. The sign is left to the unary operators.
func lexNumber(input string, start int) (token, int, error) {
	pos := start
	for pos < len(input) && (isDigit(input[pos]) || input[pos] == '_') {
		pos++
	}

	if pos < len(input) && input[pos] == '.' {
		pos++
		for pos < len(input) && isDigit(input[pos]) {
			pos++
		}
	}

	if pos < len(input) && (input[pos] == 'e' || input[pos] == 'E') {
		pos++
		if pos < len(input) && (input[pos] == '+' || input[pos] == '-') {
			pos++
		}
		expStart := pos
		for pos < len(input) && isDigit(input[pos]) {
			pos++
		}
		if pos == expStart {
			return token{}, 0, expressionError("invalid number exponent at position %d", start)
		}
	}

	if pos < len(input) && isIdentifierStart(rune(input[pos])) {
		return token{}, 0, expressionError("invalid number %q at position %d", input[start:pos+1], start)
	}

	return token{typ: tokenNumber, literal: input[start:pos], pos: start}, pos, nil
}

func lexString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder

	for pos := start + 1; pos < len(input); pos++ {
		ch := input[pos]
		if ch == quote {
			return b.String(), pos + 1, nil
		}

		if ch == '\\' {
			pos++
			if pos >= len(input) {
				return "", 0, expressionError("unterminated escape sequence at position %d", start)
			}
			escaped := input[pos]
			switch escaped {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '\\', '\'', '"':
				b.WriteByte(escaped)
			default:
				b.WriteByte('\\')
				b.WriteByte(escaped)
			}
			continue
		}

		b.WriteByte(ch)
	}

	return "", 0, expressionError("unterminated string at position %d", start)
}
