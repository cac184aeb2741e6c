package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/NardJ/PyInterpreter/internal/exit"
	"github.com/NardJ/PyInterpreter/internal/script/diagnostics"
	"github.com/NardJ/PyInterpreter/internal/script/engine"
	"github.com/NardJ/PyInterpreter/internal/script/expr"
	"github.com/NardJ/PyInterpreter/internal/script/value"
	"github.com/NardJ/PyInterpreter/internal/script/vars"
)

var (
	ErrNoArguments           = errors.New("no arguments provided")
	ErrNoScript              = errors.New("no script file specified")
	ErrTooManyScripts        = errors.New("only one script file can be run")
	ErrInvalidVariableFormat = errors.New("variable must be in format name=value")
	ErrEmptyVariableName     = errors.New("variable name cannot be empty")
	ErrNegativeRate          = errors.New("rate must not be negative")
)

// Config represents the complete configuration for the lscript tool.
type Config struct {
	ScriptFile string
	Debug      bool
	Repeat     int // Additional runs after the first (negative = until interrupted)
	RateLimit  float64
	MaxDepth   int
	Report     diagnostics.Format

	VariableFile string
	Variables    map[string]value.Value
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.ScriptFile == "" {
		return ErrNoScript
	}
	if _, err := os.Stat(c.ScriptFile); err != nil {
		return fmt.Errorf("script file %s not found: %w", c.ScriptFile, err)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeRate, c.RateLimit)
	}
	if _, err := diagnostics.ParseFormat(string(c.Report)); err != nil {
		return err
	}
	return nil
}

// variablesFlag implements flag.Value for repeated --var flags. Values are
// parsed as script literals, so 3 is an int and "3" stays text.
type variablesFlag map[string]value.Value

func (v variablesFlag) String() string {
	var pairs []string
	for k, val := range v {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, val))
	}
	return strings.Join(pairs, ",")
}

func (v variablesFlag) Set(input string) error {
	name, literal, ok := strings.Cut(input, "=")
	if !ok {
		return fmt.Errorf("%w, got: %s", ErrInvalidVariableFormat, input)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyVariableName
	}

	v[name] = value.Parse(literal)
	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		debug        = fs.Bool("debug", false, "Trace every executed statement")
		repeat       = fs.Int("repeat", 0, "Number of additional runs of the loaded program (negative to run until interrupted)")
		rateLimit    = fs.Float64("rate", 0, "Throttle execution to N statements per second (0 for unlimited)")
		maxDepth     = fs.Int("max-depth", engine.DefaultMaxCallDepth, "Maximum nested gosub depth (0 for unlimited)")
		report       = fs.String("report", string(diagnostics.FormatText), "Diagnostics format: text, json or yaml")
		variables    = make(variablesFlag)
		variableFile = fs.String("var-file", "", "Path to YAML file containing host variables")
	)
	fs.Var(variables, "var", "Variable in format name=value (can be used multiple times)")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage() + "\n")
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s\n", err, Usage())
	}

	scripts := fs.Args()
	switch {
	case len(scripts) == 0:
		return nil, exit.Errorf("Error: %v\n\n%s\n", ErrNoScript, Usage())
	case len(scripts) > 1:
		return nil, exit.Errorf("Error: %v, got %d\n\n%s\n", ErrTooManyScripts, len(scripts), Usage())
	}

	format, err := diagnostics.ParseFormat(*report)
	if err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s\n", err, Usage())
	}

	// File variables first so --var wins on conflicts.
	finalVariables := make(map[string]value.Value)
	if *variableFile != "" {
		fileVariables, err := vars.File(*variableFile)
		if err != nil {
			return nil, exit.Errorf("Error: failed to load variable file: %v\n", err)
		}
		maps.Copy(finalVariables, fileVariables)
	}
	maps.Copy(finalVariables, variables)

	config := &Config{
		ScriptFile:   scripts[0],
		Debug:        *debug,
		Repeat:       *repeat,
		RateLimit:    *rateLimit,
		MaxDepth:     *maxDepth,
		Report:       format,
		VariableFile: *variableFile,
		Variables:    finalVariables,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s\n", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `lscript - line-oriented script interpreter

Usage: lscript [options] <script>

Options:
  --var NAME=VALUE        Host variable; VALUE is parsed as int, float, bool or text (repeatable)
  --var-file FILE         YAML file of host variables (--var wins on conflicts)
  --report FORMAT         Diagnostics format: text, json or yaml (default: text)
  --debug                 Trace every executed statement to stderr
  --rate N                Throttle execution to N statements per second (0 for unlimited)
  --repeat N              Run the loaded program N more times (negative until interrupted)
  --max-depth N           Maximum nested gosub depth (default: 1000, 0 for unlimited)
  -h, --help              Show this help message

Examples:
  lscript demo.txt                       # Run a script once
  lscript --debug demo.txt               # Trace each statement
  lscript --var speed=2 demo.txt         # Pass an int host variable
  lscript --var-file vars.yaml demo.txt  # Load host variables from YAML
  lscript --report json demo.txt         # Report diagnostics as JSON

Expression functions:
` + wrapNames(expr.Functions(), 76)
}

// wrapNames joins names into indented lines no wider than width.
func wrapNames(names []string, width int) string {
	var b strings.Builder
	line := 0
	for _, name := range names {
		if line > 0 && line+len(name)+1 > width {
			b.WriteByte('\n')
			line = 0
		}
		if line == 0 {
			b.WriteString("  ")
			line = 2
		} else {
			b.WriteByte(' ')
			line++
		}
		b.WriteString(name)
		line += len(name)
	}
	return b.String()
}
