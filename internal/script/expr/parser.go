package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/NardJ/PyInterpreter/internal/script/value"
)

type node interface{}

type literalNode struct {
	value value.Value
}

type identifierNode struct {
	name string
}

type unaryNode struct {
	op    tokenType
	right node
}

type binaryNode struct {
	op    tokenType
	left  node
	right node
}

// compareNode holds a comparison chain: a < b <= c compares each
// adjacent pair and evaluates every operand at most once.
type compareNode struct {
	ops      []tokenType
	operands []node
}

type callNode struct {
	name string
	args []node
	pos  int
}

type fstringNode struct {
	parts []fstringPart
}

// fstringPart is either literal text or a replacement field.
type fstringPart struct {
	text string
	expr node
	spec string
}

type parserState struct {
	tokens []token
	pos    int
}

func parse(input string) (node, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}

	state := parserState{tokens: tokens}
	if state.current().typ == tokenEOF {
		return nil, expressionError("expression is empty")
	}

	root, err := state.parseExpression()
	if err != nil {
		return nil, err
	}

	if token := state.current(); token.typ != tokenEOF {
		return nil, expressionError("unexpected token at position %d", token.pos)
	}

	return root, nil
}

func (p *parserState) parseExpression() (node, error) {
	return p.parseOr()
}

func (p *parserState) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().typ == tokenOr {
		op := p.advance().typ
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}

	return left, nil
}

func (p *parserState) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.current().typ == tokenAnd {
		op := p.advance().typ
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}

	return left, nil
}

func (p *parserState) parseNot() (node, error) {
	if p.current().typ == tokenNot {
		op := p.advance().typ
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, right: right}, nil
	}

	return p.parseComparison()
}

func isComparison(typ tokenType) bool {
	switch typ {
	case tokenEqual, tokenNotEqual, tokenLess, tokenLessEqual, tokenGreater, tokenGreaterEqual:
		return true
	}
	return false
}

func (p *parserState) parseComparison() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !isComparison(p.current().typ) {
		return left, nil
	}

	chain := compareNode{operands: []node{left}}
	for isComparison(p.current().typ) {
		chain.ops = append(chain.ops, p.advance().typ)
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		chain.operands = append(chain.operands, right)
	}

	return chain, nil
}

func (p *parserState) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for typ := p.current().typ; typ == tokenPlus || typ == tokenMinus; typ = p.current().typ {
		op := p.advance().typ
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}

	return left, nil
}

func (p *parserState) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		typ := p.current().typ
		if typ != tokenStar && typ != tokenSlash && typ != tokenFloorDiv && typ != tokenPercent {
			break
		}
		op := p.advance().typ
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}

	return left, nil
}

func (p *parserState) parseUnary() (node, error) {
	if typ := p.current().typ; typ == tokenPlus || typ == tokenMinus {
		op := p.advance().typ
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, right: right}, nil
	}

	return p.parsePower()
}

// parsePower binds tighter than a unary sign on its left but accepts one
// on its right, so -2**2 is -4 and 2**-1 is 0.5.
func (p *parserState) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if p.current().typ != tokenPower {
		return base, nil
	}
	op := p.advance().typ
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return binaryNode{op: op, left: base, right: exponent}, nil
}

func (p *parserState) parsePrimary() (node, error) {
	tok := p.current()
	switch tok.typ {
	case tokenIdentifier:
		p.advance()
		if p.current().typ == tokenLParen {
			return p.parseCall(tok)
		}
		return identifierNode{name: tok.literal}, nil
	case tokenNumber:
		p.advance()
		return parseNumber(tok)
	case tokenString:
		p.advance()
		return literalNode{value: value.Text(tok.literal)}, nil
	case tokenFString:
		p.advance()
		return parseFString(tok.literal)
	case tokenTrue:
		p.advance()
		return literalNode{value: value.Bool(true)}, nil
	case tokenFalse:
		p.advance()
		return literalNode{value: value.Bool(false)}, nil
	case tokenLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current().typ != tokenRParen {
			return nil, expressionError("missing closing ')' at position %d", p.current().pos)
		}
		p.advance()
		return expr, nil
	case tokenEOF:
		return nil, expressionError("unexpected end of expression")
	default:
		return nil, expressionError("unexpected token at position %d", tok.pos)
	}
}

func (p *parserState) parseCall(name token) (node, error) {
	p.advance()
	call := callNode{name: name.literal, pos: name.pos}

	if p.current().typ == tokenRParen {
		p.advance()
		return call, nil
	}

	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)

		switch p.current().typ {
		case tokenComma:
			p.advance()
		case tokenRParen:
			p.advance()
			return call, nil
		default:
			return nil, expressionError("missing closing ')' for %s at position %d", name.literal, p.current().pos)
		}
	}
}

func parseNumber(tok token) (node, error) {
	literal := strings.ReplaceAll(tok.literal, "_", "")
	if !strings.ContainsAny(literal, ".eE") {
		if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return literalNode{value: value.Int(n)}, nil
		}
	}

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil && !math.IsInf(f, 0) {
		return nil, expressionError("invalid number literal %q at position %d", tok.literal, tok.pos)
	}
	return literalNode{value: value.Float(f)}, nil
}

// parseFString splits the body of an f-string into text and replacement
// fields. Doubled braces are literal braces.
func parseFString(body string) (node, error) {
	var parts []fstringPart
	var text strings.Builder

	for pos := 0; pos < len(body); pos++ {
		ch := body[pos]
		switch {
		case ch == '{' && pos+1 < len(body) && body[pos+1] == '{':
			text.WriteByte('{')
			pos++
		case ch == '}' && pos+1 < len(body) && body[pos+1] == '}':
			text.WriteByte('}')
			pos++
		case ch == '}':
			return nil, expressionError("f-string: single '}' is not allowed")
		case ch == '{':
			end, colon := fieldEnd(body, pos+1)
			if end < 0 {
				return nil, expressionError("f-string: expecting '}'")
			}
			if text.Len() > 0 {
				parts = append(parts, fstringPart{text: text.String()})
				text.Reset()
			}

			source, spec := body[pos+1:end], ""
			if colon >= 0 {
				source, spec = body[pos+1:colon], body[colon+1:end]
			}
			if strings.TrimSpace(source) == "" {
				return nil, expressionError("f-string: empty expression not allowed")
			}
			field, err := parse(source)
			if err != nil {
				return nil, err
			}
			parts = append(parts, fstringPart{expr: field, spec: spec})
			pos = end
		default:
			text.WriteByte(ch)
		}
	}

	if text.Len() > 0 {
		parts = append(parts, fstringPart{text: text.String()})
	}
	return fstringNode{parts: parts}, nil
}

// fieldEnd finds the '}' closing a replacement field and the first ':'
// outside parentheses and quotes that starts its format spec.
func fieldEnd(body string, from int) (end, colon int) {
	colon = -1
	depth := 0
	var quote byte

	for pos := from; pos < len(body); pos++ {
		ch := body[pos]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == ':' && depth == 0 && colon < 0:
			colon = pos
		case ch == '}' && depth == 0:
			return pos, colon
		}
	}
	return -1, -1
}

func (p *parserState) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF, pos: len(p.tokens)}
	}
	return p.tokens[p.pos]
}

func (p *parserState) advance() token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}
