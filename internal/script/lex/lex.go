package lex

import (
	"errors"
	"strings"

	"github.com/NardJ/PyInterpreter/internal/script/diagnostics"
)

const (
	CommentMarker      = '#'
	StatementSeparator = ';'
)

// ErrUnterminatedString reports a quote without its closing partner.
var ErrUnterminatedString = errors.New("string not closed on line")

// Segment is a run of a line that is either entirely inside one quoted
// span (quotes included) or entirely outside any.
type Segment struct {
	Text  string
	Quote byte
}

// Quoted reports whether the segment is a quoted span.
func (s Segment) Quoted() bool {
	return s.Quote != 0
}

// walk visits every byte of line together with whether it belongs to a
// quoted span. A backslash inside a span escapes the next byte. Walking
// stops early when visit returns false.
func walk(line string, visit func(pos int, quote byte) bool) error {
	var quote byte
	escaped := false

	for pos := 0; pos < len(line); pos++ {
		ch := line[pos]
		current := quote

		switch {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
			current = ch
		case quote != 0 && escaped:
			escaped = false
		case quote != 0 && ch == '\\':
			escaped = true
		case quote != 0 && ch == quote:
			quote = 0
		}

		if !visit(pos, current) {
			return nil
		}
	}

	if quote != 0 {
		return ErrUnterminatedString
	}
	return nil
}

// Segments splits a line into alternating unquoted and quoted runs.
// An unterminated span runs to the end of the line.
func Segments(line string) []Segment {
	var segments []Segment
	start := 0
	var open byte

	flush := func(end int, quote byte) {
		if end > start {
			segments = append(segments, Segment{Text: line[start:end], Quote: quote})
		}
		start = end
	}

	_ = walk(line, func(pos int, quote byte) bool {
		switch {
		case open == 0 && quote != 0:
			flush(pos, 0)
			open = quote
		case open != 0 && quote == 0:
			flush(pos, open)
			open = 0
		}
		return true
	})
	flush(len(line), open)

	return segments
}

// split cuts line at every byte outside quotes for which isSep is true.
// Empty fields are dropped.
func split(line string, isSep func(byte) bool) []string {
	var fields []string
	start := -1

	_ = walk(line, func(pos int, quote byte) bool {
		if quote == 0 && isSep(line[pos]) {
			if start >= 0 {
				fields = append(fields, line[start:pos])
				start = -1
			}
			return true
		}
		if start < 0 {
			start = pos
		}
		return true
	})
	if start >= 0 {
		fields = append(fields, line[start:])
	}

	return fields
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

// Tokenize splits a statement on runs of whitespace outside quoted spans.
func Tokenize(line string) []string {
	return split(line, isSpace)
}

// SplitStatements splits a line on ';' outside quoted spans. Statements
// are trimmed and blank ones dropped.
func SplitStatements(line string) []string {
	parts := split(line, func(ch byte) bool { return ch == StatementSeparator })
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			statements = append(statements, trimmed)
		}
	}
	return statements
}

// StripComment removes full-line and inline comments and the line ending.
// A quote left open before the comment marker is an error.
func StripComment(line string) (string, error) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == CommentMarker {
		return "", nil
	}

	cut := -1
	err := walk(line, func(pos int, quote byte) bool {
		if quote == 0 && line[pos] == CommentMarker {
			cut = pos
			return false
		}
		return true
	})
	if cut >= 0 {
		return line[:cut], nil
	}
	if err != nil {
		return "", err
	}
	return line, nil
}

// Script strips comments from every source line. It stops at the first
// line with an unterminated string and reports it with its line number;
// the returned program is nil in that case.
func Script(lines []string) ([]string, []diagnostics.Issue) {
	if len(lines) == 0 {
		return nil, nil
	}

	program := make([]string, 0, len(lines))
	for index, line := range lines {
		stripped, err := StripComment(line)
		if err != nil {
			issue := diagnostics.New(diagnostics.CodeSyntax, index, line, "", "String not closed on line.").
				WithStage(diagnostics.StageLex)
			return nil, []diagnostics.Issue{issue}
		}
		program = append(program, stripped)
	}

	return program, nil
}
