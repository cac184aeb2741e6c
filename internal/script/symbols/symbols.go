package symbols

import (
	"github.com/NardJ/PyInterpreter/internal/script/lex"
	"github.com/NardJ/PyInterpreter/internal/script/value"
)

const (
	KeywordLabel = "label"
	KeywordSub   = "sub"
)

// Table maps label and sub names to the line index that declares them.
type Table map[string]int

// Build scans the lowered program once. Every "label name" or "sub name"
// statement with exactly one argument binds name to its line; a later
// declaration of the same name replaces an earlier one.
func Build(program []string) Table {
	table := make(Table)

	for index, line := range program {
		for _, statement := range lex.SplitStatements(line) {
			tokens := lex.Tokenize(statement)
			if len(tokens) != 2 {
				continue
			}
			if tokens[0] == KeywordLabel || tokens[0] == KeywordSub {
				table[tokens[1]] = index
			}
		}
	}

	return table
}

// Bind stores every entry in env as an integer line index, overwriting any
// variable of the same name.
func (t Table) Bind(env map[string]value.Value) {
	for name, line := range t {
		env[name] = value.Int(int64(line))
	}
}
