package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format determines how the error log is printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(input string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report format: %s", input)
	}
}

// Log is the append-only error log of one load and run.
type Log struct {
	issues []Issue
}

func NewLog() *Log {
	return &Log{}
}

// Add appends issues in order.
func (l *Log) Add(issues ...Issue) {
	l.issues = append(l.issues, issues...)
}

func (l *Log) Len() int {
	return len(l.issues)
}

func (l *Log) Empty() bool {
	return len(l.issues) == 0
}

// Issues returns a copy so callers cannot rewrite history.
func (l *Log) Issues() []Issue {
	return slices.Clone(l.issues)
}

// CountByCode is used by summaries and tests.
func (l *Log) CountByCode() map[Code]int {
	counts := make(map[Code]int)
	for _, issue := range l.issues {
		counts[issue.Code]++
	}
	return counts
}

type logDocument struct {
	Errors []Issue `json:"errors" yaml:"errors"`
}

// Write prints the log in the requested format. An empty log writes nothing.
func (l *Log) Write(w io.Writer, format Format) error {
	if l.Empty() {
		return nil
	}

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(logDocument{Errors: l.issues})
	case FormatYAML:
		payload, err := yaml.Marshal(logDocument{Errors: l.issues})
		if err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		_, err = w.Write(payload)
		return err
	case FormatText, "":
		writef := func(format string, args ...any) error {
			if _, err := fmt.Fprintf(w, format, args...); err != nil {
				return err
			}
			return nil
		}

		if err := writef("Errors found:\n"); err != nil {
			return err
		}
		for _, issue := range l.issues {
			if err := writef("%4d > '%s'\n", issue.Line, issue.Source); err != nil {
				return err
			}
			if issue.Token != "" {
				if err := writef("  Token: '%s'\n", issue.Token); err != nil {
					return err
				}
			}
			if err := writef("  %s: %s\n", issue.Code, issue.Message); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}
