package exit

import (
	"fmt"
	"io"
	"os"
)

const (
	CodeSuccess = 0
	CodeFailure = 1
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the message to the configured output and returns the exit code.
func (r *Result) Print() int {
	if r.Message != "" {
		_, _ = fmt.Fprint(r.Output, r.Message)
	}
	return r.ExitCode
}

// To redirects the result to w.
func (r *Result) To(w io.Writer) *Result {
	r.Output = w
	return r
}

// Success writes to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{Output: os.Stdout, ExitCode: CodeSuccess, Message: message}
}

// Error writes to stderr with exit code 1.
func Error(message string) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeFailure, Message: message}
}

func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}
