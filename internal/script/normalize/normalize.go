package normalize

import (
	"strings"

	"github.com/NardJ/PyInterpreter/internal/script/lex"
)

// Replacement is one literal substitution of formatting sugar.
type Replacement struct {
	Old string
	New string
}

// Replacements are applied in order. They turn "x = 1" into "x 1" and
// "for i = 4 ... 10 : 2 {" into "for i 4 10 2 {" once tokenized.
var Replacements = []Replacement{
	{Old: "  ", New: " "},
	{Old: " = ", New: " "},
	{Old: " : ", New: " "},
	{Old: "...", New: " "},
}

// Line rewrites the parts of line outside double-quoted spans. Text inside
// double quotes is returned byte for byte.
func Line(line string) string {
	segments := lex.Segments(line)
	if len(segments) == 0 {
		return line
	}

	var b strings.Builder
	b.Grow(len(line))
	for _, segment := range segments {
		if segment.Quote == '"' {
			b.WriteString(segment.Text)
			continue
		}
		b.WriteString(replace(segment.Text))
	}
	return b.String()
}

func replace(text string) string {
	for _, replacement := range Replacements {
		text = strings.ReplaceAll(text, replacement.Old, replacement.New)
	}
	return text
}

// Program normalizes every line in place.
func Program(lines []string) {
	for index, line := range lines {
		lines[index] = Line(line)
	}
}
