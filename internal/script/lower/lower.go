package lower

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/NardJ/PyInterpreter/internal/script/diagnostics"
	"github.com/NardJ/PyInterpreter/internal/script/lex"
)

// Result reports how many macro constructs were rewritten and the
// diagnostics that stopped lowering, if any.
type Result struct {
	Constructs int
	Issues     []diagnostics.Issue
}

// OK reports whether lowering completed without a diagnostic.
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

type construct struct {
	keyword string
	title   string
	arity   []int
}

var (
	ifConstruct    = construct{keyword: "if", title: "If", arity: []int{3}}
	whileConstruct = construct{keyword: "while", title: "While", arity: []int{3}}
	forConstruct   = construct{keyword: "for", title: "For", arity: []int{5, 6}}
)

// Program rewrites if/while/for block sugar into goto/if/var statements,
// in place and in ascending line order. Each construct is scanned before
// any of its lines is touched; the first failure stops lowering.
func Program(program []string) Result {
	var result Result

	for index := range program {
		tokens := lex.Tokenize(program[index])
		if len(tokens) == 0 {
			continue
		}

		var issue *diagnostics.Issue
		switch {
		case tokens[0] == ifConstruct.keyword && tokens[len(tokens)-1] == OpenBracket:
			issue = lowerIf(program, index, tokens)
		case tokens[0] == whileConstruct.keyword:
			issue = lowerWhile(program, index, tokens)
		case tokens[0] == forConstruct.keyword:
			issue = lowerFor(program, index, tokens)
		default:
			continue
		}

		if issue != nil {
			result.Issues = append(result.Issues, *issue)
			return result
		}
		result.Constructs++
	}

	if issue := checkBalance(program); issue != nil {
		result.Issues = append(result.Issues, *issue)
	}

	return result
}

func lowerIf(program []string, index int, tokens []string) *diagnostics.Issue {
	source := program[index]
	if issue := checkHeader(ifConstruct, index, source, tokens); issue != nil {
		return issue
	}

	end, err := FindGroupEnd(program, index)
	if err != nil {
		return scanIssue(ifConstruct, program, index, err)
	}
	elseLine, err := FindIfElse(program, index)
	if err != nil {
		return scanIssue(ifConstruct, program, index, err)
	}
	if issue := checkAlone(ifConstruct, program, end, elseLine); issue != nil {
		return issue
	}

	cond := tokens[1]
	if elseLine >= 0 {
		program[index] = fmt.Sprintf("if not(%s) %d", cond, elseLine+1)
		program[elseLine] = fmt.Sprintf("goto %d", end)
	} else {
		program[index] = fmt.Sprintf("if not(%s) %d", cond, end)
	}
	program[end] = ""

	return nil
}

func lowerWhile(program []string, index int, tokens []string) *diagnostics.Issue {
	source := program[index]
	if issue := checkHeader(whileConstruct, index, source, tokens); issue != nil {
		return issue
	}

	found, err := scanGroup(program, index)
	if err != nil {
		return scanIssue(whileConstruct, program, index, err)
	}
	if issue := checkAlone(whileConstruct, program, found.end, -1); issue != nil {
		return issue
	}

	cond := tokens[1]
	program[index] = fmt.Sprintf("if not(%s) %d", cond, found.end)
	program[found.end] = fmt.Sprintf("if %s %d", cond, index)

	return nil
}

func lowerFor(program []string, index int, tokens []string) *diagnostics.Issue {
	source := program[index]
	if issue := checkHeader(forConstruct, index, source, tokens); issue != nil {
		return issue
	}

	name, from, to := tokens[1], tokens[2], tokens[3]
	step := "1"
	if len(tokens) == 6 {
		step = tokens[4]
	}

	stepValue, err := strconv.ParseFloat(step, 64)
	if err != nil {
		issue := diagnostics.Newf(diagnostics.CodeSyntax, index, source, step,
			"For statement step '%s' is not a numeric literal.", step)
		return &issue
	}

	found, err := scanGroup(program, index)
	if err != nil {
		return scanIssue(forConstruct, program, index, err)
	}
	if issue := checkAlone(forConstruct, program, found.end, -1); issue != nil {
		return issue
	}

	op := "<"
	if stepValue <= 0 {
		op = ">"
	}

	program[index] = fmt.Sprintf("var %s %s", name, from)
	program[found.end] = fmt.Sprintf("%s %s+%s %c if %s%s%s %d",
		name, name, step, lex.StatementSeparator, name, op, to, index+1)

	return nil
}

func checkHeader(c construct, index int, source string, tokens []string) *diagnostics.Issue {
	if tokens[len(tokens)-1] != OpenBracket {
		issue := diagnostics.Newf(diagnostics.CodeSyntax, index, source, "",
			"%s statement is missing opening bracket %s.", c.title, OpenBracket)
		return &issue
	}

	for _, arity := range c.arity {
		if len(tokens) == arity {
			return nil
		}
	}

	comparison := "more"
	if len(tokens) < c.arity[0] {
		comparison = "less"
	}
	issue := diagnostics.Newf(diagnostics.CodeSyntax, index, source, "",
		"%s statement has %s tokens than expected.", c.title, comparison)
	return &issue
}

// checkAlone rejects closing and else lines that carry other statements,
// since rewriting them would drop those statements.
func checkAlone(c construct, program []string, lines ...int) *diagnostics.Issue {
	for _, line := range lines {
		if line < 0 {
			continue
		}
		if statements := lex.SplitStatements(program[line]); len(statements) > 1 {
			issue := diagnostics.Newf(diagnostics.CodeSyntax, line, program[line], "",
				"%s statement bracket must be alone on its line.", c.title)
			return &issue
		}
	}
	return nil
}

func scanIssue(c construct, program []string, index int, err error) *diagnostics.Issue {
	var bracketErr *BracketError
	line, token := index, ""
	if errors.As(err, &bracketErr) {
		line, token = bracketErr.Line, bracketErr.Token
	}
	source := program[line]

	var issue diagnostics.Issue
	switch {
	case errors.Is(err, ErrStrayBracket):
		issue = diagnostics.Newf(diagnostics.CodeSyntax, line, source, token,
			"Stray bracket '%s' inside %s statement.", token, c.title)
	case errors.Is(err, ErrDuplicateElse):
		issue = diagnostics.Newf(diagnostics.CodeSyntax, line, source, token,
			"%s statement has more than one else branch.", c.title)
	default:
		issue = diagnostics.Newf(diagnostics.CodeSyntax, index, program[index], "",
			"%s statement is missing closing bracket %s.", c.title, CloseBracket)
	}
	return &issue
}

// checkBalance reports the first bracket statement that no construct
// consumed, e.g. a "}" without an opener or an else outside an if.
func checkBalance(program []string) *diagnostics.Issue {
	for index, line := range program {
		for _, statement := range lex.SplitStatements(line) {
			for _, token := range lex.Tokenize(statement) {
				if isBracket(token) {
					issue := diagnostics.Newf(diagnostics.CodeSyntax, index, line, token,
						"Unbalanced bracket '%s'.", token)
					return &issue
				}
			}
		}
	}
	return nil
}
