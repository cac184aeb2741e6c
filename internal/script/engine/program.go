package engine

import (
	"github.com/NardJ/PyInterpreter/internal/script/lex"
)

// statement is one ';'-separated segment of a program line.
type statement struct {
	text   string
	tokens []string
}

// compile splits every line of a lowered program into statements once so
// repeated runs do not re-tokenize.
func compile(program []string) [][]statement {
	lines := make([][]statement, len(program))
	for index, line := range program {
		texts := lex.SplitStatements(line)
		statements := make([]statement, 0, len(texts))
		for _, text := range texts {
			tokens := lex.Tokenize(text)
			if len(tokens) == 0 {
				continue
			}
			statements = append(statements, statement{text: text, tokens: tokens})
		}
		lines[index] = statements
	}
	return lines
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
