package normalize

import (
	"slices"
	"testing"
)

func TestLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "assignment_sugar", line: "var b = 1", want: "var b 1"},
		{name: "reassignment_sugar", line: "b = 2", want: "b 2"},
		{name: "for_sugar", line: "for i = 4 ... 10 : 2 {", want: "for i 4   10 2 {"},
		{name: "double_space", line: "goto  done", want: "goto done"},
		{name: "comparison_untouched", line: "if a == b 3", want: "if a == b 3"},
		{name: "quoted_untouched", line: `print "a = b ... c : d  e"`, want: `print "a = b ... c : d  e"`},
		{name: "mixed", line: `var s = "x = y" ; t = 1`, want: `var s "x = y" ; t 1`},
		{name: "empty", line: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Line(tt.line); got != tt.want {
				t.Fatalf("Line(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestLineKeepsQuotedSpansByteForByte(t *testing.T) {
	t.Parallel()

	quoted := []string{
		`"  =  : ... "`,
		`"tab\there"`,
		`"escaped \" = quote"`,
	}
	for _, span := range quoted {
		line := "print " + span + " = x"
		got := Line(line)
		if want := "print " + span + " x"; got != want {
			t.Fatalf("Line(%q) = %q, want %q", line, got, want)
		}
	}
}

func TestProgram(t *testing.T) {
	t.Parallel()

	lines := []string{"var a = 1", "", "a = a+1"}
	Program(lines)

	want := []string{"var a 1", "", "a a+1"}
	if !slices.Equal(lines, want) {
		t.Fatalf("Program() = %q, want %q", lines, want)
	}
}
