package diagnostics

import (
	"fmt"
	"strings"
)

// Code classifies script failures.
type Code string

const (
	CodeSyntax Code = "SyntaxError"
	CodeArg    Code = "ArgError"
	CodeEval   Code = "EvalError"
	CodeCmd    Code = "CmdError"
	CodeStack  Code = "StackError"
)

// Stage identifies the pipeline stage where a diagnostic was raised.
type Stage string

const (
	StageLex     Stage = "lex"
	StageLower   Stage = "lower"
	StageExecute Stage = "execute"
)

// Definition is canonical metadata for one diagnostic code.
type Definition struct {
	Code         Code
	DefaultStage Stage
}

var definitions = map[Code]Definition{
	CodeSyntax: {Code: CodeSyntax, DefaultStage: StageLower},
	CodeArg:    {Code: CodeArg, DefaultStage: StageExecute},
	CodeEval:   {Code: CodeEval, DefaultStage: StageExecute},
	CodeCmd:    {Code: CodeCmd, DefaultStage: StageExecute},
	CodeStack:  {Code: CodeStack, DefaultStage: StageExecute},
}

// DefinitionFor resolves canonical metadata for a diagnostic code.
func DefinitionFor(code Code) Definition {
	if definition, ok := definitions[code]; ok {
		return definition
	}

	return Definition{
		Code:         code,
		DefaultStage: StageExecute,
	}
}

// Issue is a single script diagnostic.
type Issue struct {
	Code    Code   `json:"code" yaml:"code"`
	Stage   Stage  `json:"stage,omitempty" yaml:"stage,omitempty"`
	Line    int    `json:"line" yaml:"line"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Token   string `json:"token,omitempty" yaml:"token,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// New builds an issue for a 0-based line index. Source is trimmed so the
// report does not carry indentation or line endings.
func New(code Code, index int, source, token, message string) Issue {
	return Issue{
		Code:    code,
		Stage:   DefinitionFor(code).DefaultStage,
		Line:    index + 1,
		Source:  strings.TrimSpace(source),
		Token:   token,
		Message: message,
	}
}

// Newf is New with a formatted message.
func Newf(code Code, index int, source, token, format string, args ...any) Issue {
	return New(code, index, source, token, fmt.Sprintf(format, args...))
}

// WithStage overrides the default stage.
func (i Issue) WithStage(stage Stage) Issue {
	i.Stage = stage
	return i
}

// Error lets an issue travel as a Go error.
func (i Issue) Error() string {
	return fmt.Sprintf("line %d: %s: %s", i.Line, i.Code, i.Message)
}
