package lex

import (
	"errors"
	"slices"
	"testing"

	"github.com/NardJ/PyInterpreter/internal/script/diagnostics"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "plain", line: "var a 1", want: []string{"var", "a", "1"}},
		{name: "runs_of_whitespace", line: "  goto \t  done  ", want: []string{"goto", "done"}},
		{
			name: "double_quoted_span",
			line: `print " dit is #in-string ; { } "`,
			want: []string{"print", `" dit is #in-string ; { } "`},
		},
		{name: "single_quoted_span", line: `print 'a b' c`, want: []string{"print", `'a b'`, "c"}},
		{name: "prefixed_string", line: `print f"x {a:03} y"`, want: []string{"print", `f"x {a:03} y"`}},
		{name: "escaped_quote", line: `print "say \" hi"`, want: []string{"print", `"say \" hi"`}},
		{name: "empty", line: "   ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Tokenize(tt.line); !slices.Equal(got, tt.want) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "single", line: "var a 1", want: []string{"var a 1"}},
		{name: "two", line: "i i+1 ; if i<3 5", want: []string{"i i+1", "if i<3 5"}},
		{name: "quoted_separator", line: `print "a;b" ; exit`, want: []string{`print "a;b"`, "exit"}},
		{name: "blank_segments", line: " ; ;x;", want: []string{"x"}},
		{name: "empty", line: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SplitStatements(tt.line); !slices.Equal(got, tt.want) {
				t.Fatalf("SplitStatements(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestStripComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    string
		wantErr error
	}{
		{name: "full_line", line: "   # comment", want: ""},
		{name: "inline", line: "var a 1 # set a", want: "var a 1 "},
		{name: "hash_in_string", line: `print "a # b" # real`, want: `print "a # b" `},
		{name: "hash_in_single_quotes", line: `print 'a # b'`, want: `print 'a # b'`},
		{name: "line_ending", line: "exit\r\n", want: "exit"},
		{name: "unterminated", line: `print "abc`, wantErr: ErrUnterminatedString},
		{name: "quote_after_comment", line: `exit # it"s fine`, want: "exit "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := StripComment(tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("StripComment() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("StripComment(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	t.Parallel()

	segments := Segments(`a = "x = y" b`)
	want := []Segment{
		{Text: "a = "},
		{Text: `"x = y"`, Quote: '"'},
		{Text: " b"},
	}
	if !slices.Equal(segments, want) {
		t.Fatalf("Segments() = %+v, want %+v", segments, want)
	}
	if !segments[1].Quoted() || segments[0].Quoted() {
		t.Fatalf("unexpected Quoted() flags: %+v", segments)
	}
}

func TestScript(t *testing.T) {
	t.Parallel()

	program, issues := Script([]string{"# header\n", "var a 1 # one\n", "\n", "print a\n"})
	if len(issues) != 0 {
		t.Fatalf("Script() issues = %+v", issues)
	}
	want := []string{"", "var a 1 ", "", "print a"}
	if !slices.Equal(program, want) {
		t.Fatalf("Script() = %q, want %q", program, want)
	}
}

func TestScriptRejectsUnterminatedString(t *testing.T) {
	t.Parallel()

	program, issues := Script([]string{"var a 1", `print "oops`, `print "never reached`})
	if program != nil {
		t.Fatalf("Script() program = %q, want nil", program)
	}
	if len(issues) != 1 {
		t.Fatalf("len(issues) = %d, want 1", len(issues))
	}
	issue := issues[0]
	if issue.Code != diagnostics.CodeSyntax || issue.Line != 2 || issue.Stage != diagnostics.StageLex {
		t.Fatalf("issue = %+v", issue)
	}
}
