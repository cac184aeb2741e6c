package lower

import (
	"errors"
	"fmt"

	"github.com/NardJ/PyInterpreter/internal/script/lex"
)

const (
	OpenBracket  = "{"
	CloseBracket = "}"
	ElseMarker   = "}else{"
)

var (
	ErrGroupNotClosed = errors.New("missing closing bracket")
	ErrStrayBracket   = errors.New("stray bracket")
	ErrDuplicateElse  = errors.New("more than one else branch")
)

// BracketError locates a scan failure.
type BracketError struct {
	Line  int
	Token string
	Err   error
}

func (e *BracketError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("line %d: %v %q", e.Line+1, e.Err, e.Token)
	}
	return fmt.Sprintf("line %d: %v", e.Line+1, e.Err)
}

func (e *BracketError) Unwrap() error {
	return e.Err
}

// group is the extent of one bracketed construct.
type group struct {
	end   int
	elses []int
}

func isElse(tokens []string) bool {
	switch len(tokens) {
	case 1:
		return tokens[0] == ElseMarker
	case 3:
		return tokens[0] == CloseBracket && tokens[1] == "else" && tokens[2] == OpenBracket
	default:
		return false
	}
}

func isBracket(token string) bool {
	return token == OpenBracket || token == CloseBracket || token == ElseMarker
}

// scanGroup walks forward from the line after from at depth 1. A
// statement whose first token is "}" closes a level, one whose last token
// is "{" opens one; brackets in any other position are stray. Else
// markers leave the depth unchanged and are collected at depth 1.
func scanGroup(program []string, from int) (group, error) {
	depth := 1
	var found group

	for line := from + 1; line < len(program); line++ {
		for _, statement := range lex.SplitStatements(program[line]) {
			tokens := lex.Tokenize(statement)
			if len(tokens) == 0 {
				continue
			}

			if isElse(tokens) {
				if depth == 1 {
					found.elses = append(found.elses, line)
				}
				continue
			}

			if len(tokens) > 2 {
				for _, token := range tokens[1 : len(tokens)-1] {
					if isBracket(token) {
						return group{}, &BracketError{Line: line, Token: token, Err: ErrStrayBracket}
					}
				}
			}

			if tokens[0] == CloseBracket {
				depth--
			}
			if tokens[len(tokens)-1] == OpenBracket {
				depth++
			}
			if depth == 0 {
				found.end = line
				return found, nil
			}
		}
	}

	return group{}, &BracketError{Line: from, Err: ErrGroupNotClosed}
}

// FindGroupEnd returns the line closing the construct opened on from.
func FindGroupEnd(program []string, from int) (int, error) {
	found, err := scanGroup(program, from)
	if err != nil {
		return -1, err
	}
	return found.end, nil
}

// FindIfElse returns the else marker belonging to the construct opened on
// from, or -1 when the group closes without one.
func FindIfElse(program []string, from int) (int, error) {
	found, err := scanGroup(program, from)
	if err != nil {
		return -1, err
	}

	switch len(found.elses) {
	case 0:
		return -1, nil
	case 1:
		return found.elses[0], nil
	default:
		return -1, &BracketError{Line: found.elses[1], Token: ElseMarker, Err: ErrDuplicateElse}
	}
}
