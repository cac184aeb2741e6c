package diagnostics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestDefinitionForKnownCodes(t *testing.T) {
	t.Parallel()

	codes := []Code{
		CodeSyntax,
		CodeArg,
		CodeEval,
		CodeCmd,
		CodeStack,
	}

	for _, code := range codes {
		definition := DefinitionFor(code)
		if definition.Code != code {
			t.Fatalf("definition.Code = %q, want %q", definition.Code, code)
		}
		if definition.DefaultStage == "" {
			t.Fatalf("definition.DefaultStage is empty for code %q", code)
		}
	}

	if got := DefinitionFor(CodeSyntax).DefaultStage; got != StageLower {
		t.Fatalf("SyntaxError default stage = %q, want %q", got, StageLower)
	}
}

func TestNewUsesOneBasedLineAndTrimmedSource(t *testing.T) {
	t.Parallel()

	issue := New(CodeArg, 2, "   goto 1 2  \n", "", "2 tokens found, 1 needed.")
	if issue.Line != 3 {
		t.Fatalf("issue.Line = %d, want 3", issue.Line)
	}
	if issue.Source != "goto 1 2" {
		t.Fatalf("issue.Source = %q", issue.Source)
	}
	if issue.Stage != StageExecute {
		t.Fatalf("issue.Stage = %q, want %q", issue.Stage, StageExecute)
	}
}

func TestLogWriteText(t *testing.T) {
	t.Parallel()

	log := NewLog()
	log.Add(
		New(CodeEval, 0, "var a b", "b", "Name \"b\" is not defined"),
		New(CodeCmd, 4, "foo 1", "", "Command 'foo' not valid."),
	)

	var out bytes.Buffer
	if err := log.Write(&out, FormatText); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := strings.Join([]string{
		"Errors found:",
		"   1 > 'var a b'",
		"  Token: 'b'",
		"  EvalError: Name \"b\" is not defined",
		"   5 > 'foo 1'",
		"  CmdError: Command 'foo' not valid.",
		"",
	}, "\n")
	if out.String() != want {
		t.Fatalf("Write() =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestLogWriteEmptyIsNoop(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	for _, format := range []Format{FormatText, FormatJSON, FormatYAML} {
		if err := NewLog().Write(&out, format); err != nil {
			t.Fatalf("Write(%s) error = %v", format, err)
		}
	}
	if out.Len() != 0 {
		t.Fatalf("Write() on empty log wrote %q", out.String())
	}
}

func TestLogWriteStructured(t *testing.T) {
	t.Parallel()

	log := NewLog()
	log.Add(New(CodeStack, 6, "return", "", "return without gosub"))

	var jsonOut bytes.Buffer
	if err := log.Write(&jsonOut, FormatJSON); err != nil {
		t.Fatalf("Write(json) error = %v", err)
	}
	var decoded struct {
		Errors []Issue `json:"errors"`
	}
	if err := json.Unmarshal(jsonOut.Bytes(), &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(decoded.Errors) != 1 || decoded.Errors[0].Code != CodeStack || decoded.Errors[0].Line != 7 {
		t.Fatalf("decoded = %+v", decoded)
	}

	var yamlOut bytes.Buffer
	if err := log.Write(&yamlOut, FormatYAML); err != nil {
		t.Fatalf("Write(yaml) error = %v", err)
	}
	var fromYAML struct {
		Errors []Issue `yaml:"errors"`
	}
	if err := yaml.Unmarshal(yamlOut.Bytes(), &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if len(fromYAML.Errors) != 1 || fromYAML.Errors[0].Message != "return without gosub" {
		t.Fatalf("fromYAML = %+v", fromYAML)
	}
}

func TestLogIssuesIsACopy(t *testing.T) {
	t.Parallel()

	log := NewLog()
	log.Add(New(CodeCmd, 0, "x", "", "bad"))
	issues := log.Issues()
	issues[0].Message = "changed"

	if log.Issues()[0].Message != "bad" {
		t.Fatal("expected Issues() to return a copy")
	}
	if got := log.CountByCode()[CodeCmd]; got != 1 {
		t.Fatalf("CountByCode()[CmdError] = %d, want 1", got)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Format{"": FormatText, "JSON": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v, want %q", input, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
}
