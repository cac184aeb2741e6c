package engine

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/NardJ/PyInterpreter/internal/ratelimit"
	"github.com/NardJ/PyInterpreter/internal/script/diagnostics"
	"github.com/NardJ/PyInterpreter/internal/script/expr"
	"github.com/NardJ/PyInterpreter/internal/script/lex"
	"github.com/NardJ/PyInterpreter/internal/script/lower"
	"github.com/NardJ/PyInterpreter/internal/script/normalize"
	"github.com/NardJ/PyInterpreter/internal/script/symbols"
	"github.com/NardJ/PyInterpreter/internal/script/value"
)

// DefaultMaxCallDepth bounds nested gosub calls.
const DefaultMaxCallDepth = 1000

// BuiltinFunc is a host operation invoked with already evaluated and
// kind-checked arguments. A returned error aborts the run.
type BuiltinFunc func(ctx context.Context, args []value.Value) error

// Builtin is a registered host operation and its parameter kinds.
type Builtin struct {
	Name   string
	Params []value.Kind
	Func   BuiltinFunc
}

// Result is the outcome of one run.
type Result struct {
	Variables   map[string]value.Value
	Diagnostics []diagnostics.Issue
	Steps       int
}

// OK reports whether the run finished without diagnostics.
func (r *Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Interpreter loads and runs scripts. It is not safe for concurrent use.
type Interpreter struct {
	variables map[string]value.Value
	builtins  map[string]Builtin

	program []string
	lines   [][]statement
	labels  symbols.Table
	loaded  bool

	compiled map[string]*expr.Expression
	last     *diagnostics.Log

	trace        io.Writer
	limiter      *ratelimit.Limiter
	maxCallDepth int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithTrace writes every executed statement to w.
func WithTrace(w io.Writer) Option {
	return func(i *Interpreter) {
		i.trace = w
	}
}

// WithRateLimit throttles execution to stepsPerSecond statements. Zero or
// less disables throttling.
func WithRateLimit(stepsPerSecond float64) Option {
	return func(i *Interpreter) {
		i.limiter = ratelimit.New(stepsPerSecond)
	}
}

// WithMaxCallDepth bounds nested gosub calls. Zero or less removes the bound.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) {
		i.maxCallDepth = depth
	}
}

func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		variables:    make(map[string]value.Value),
		builtins:     make(map[string]Builtin),
		compiled:     make(map[string]*expr.Expression),
		last:         diagnostics.NewLog(),
		limiter:      ratelimit.New(0),
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Interpreter) checkName(name string) error {
	if !isIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if isCoreCommand(name) {
		return fmt.Errorf("%w: %q is a core command", ErrNameConflict, name)
	}
	return nil
}

// RegisterVariable seeds every run's environment with name bound to v.
// Registering an existing variable replaces its value.
func (i *Interpreter) RegisterVariable(name string, v value.Value) error {
	if err := i.checkName(name); err != nil {
		return err
	}
	if _, ok := i.builtins[name]; ok {
		return fmt.Errorf("%w: %q is a builtin", ErrNameConflict, name)
	}
	if !v.IsValid() {
		return fmt.Errorf("%w: variable %q has no value", ErrInvalidOption, name)
	}
	i.variables[name] = v
	return nil
}

// RegisterBuiltin makes fn callable from scripts as name. params lists
// the allowed kinds of each argument in order; calls must match exactly.
func (i *Interpreter) RegisterBuiltin(name string, fn BuiltinFunc, params ...value.Kind) error {
	if err := i.checkName(name); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: builtin %q has no function", ErrInvalidOption, name)
	}
	if _, ok := i.builtins[name]; ok {
		return fmt.Errorf("%w: builtin %q already registered", ErrNameConflict, name)
	}
	if _, ok := i.variables[name]; ok {
		return fmt.Errorf("%w: %q is a variable", ErrNameConflict, name)
	}
	for index, kind := range params {
		if kind&value.KindAny == 0 {
			return fmt.Errorf("%w: builtin %q parameter %d allows no kind", ErrInvalidOption, name, index+1)
		}
	}

	i.builtins[name] = Builtin{Name: name, Params: slices.Clone(params), Func: fn}
	return nil
}

// Builtins returns the registered builtins sorted by name.
func (i *Interpreter) Builtins() []Builtin {
	names := slices.Sorted(maps.Keys(i.builtins))
	builtins := make([]Builtin, 0, len(names))
	for _, name := range names {
		builtins = append(builtins, i.builtins[name])
	}
	return builtins
}

// Load strips comments, normalizes and lowers lines. On success the lowered
// program replaces any previously loaded one; on failure the previous
// program is kept and the diagnostics are available via ReportDiagnostics.
func (i *Interpreter) Load(lines []string) error {
	log := diagnostics.NewLog()
	i.last = log

	program, issues := lex.Script(lines)
	if len(issues) > 0 {
		log.Add(issues...)
		return fmt.Errorf("%w: %v", ErrLoad, issues[0])
	}

	normalize.Program(program)

	if result := lower.Program(program); !result.OK() {
		log.Add(result.Issues...)
		return fmt.Errorf("%w: %v", ErrLoad, result.Issues[0])
	}

	i.program = program
	i.lines = compile(program)
	i.labels = symbols.Build(program)
	i.loaded = true
	clear(i.compiled)

	return nil
}

// Program returns a copy of the lowered program.
func (i *Interpreter) Program() []string {
	return slices.Clone(i.program)
}

// Labels returns a copy of the label and sub table of the loaded program.
func (i *Interpreter) Labels() symbols.Table {
	return maps.Clone(i.labels)
}

// Run loads lines and executes them from the first line.
func (i *Interpreter) Run(ctx context.Context, lines []string) (*Result, error) {
	if err := i.Load(lines); err != nil {
		return &Result{Diagnostics: i.last.Issues()}, err
	}
	return i.Rerun(ctx)
}

// Rerun executes the loaded program again with a fresh environment, call
// stack and error log. The program is not lowered again.
func (i *Interpreter) Rerun(ctx context.Context) (*Result, error) {
	if !i.loaded {
		return nil, ErrNoProgram
	}

	r := i.newRun(ctx)
	i.last = r.log
	err := r.execute()

	result := &Result{
		Variables:   r.env,
		Diagnostics: r.log.Issues(),
		Steps:       r.steps,
	}
	if err != nil {
		return result, err
	}
	if !r.log.Empty() {
		return result, fmt.Errorf("%w: %v", ErrRuntime, result.Diagnostics[0])
	}
	return result, nil
}

// ReportDiagnostics writes the error log of the last load or run. Nothing
// is written when it is empty.
func (i *Interpreter) ReportDiagnostics(w io.Writer, format diagnostics.Format) error {
	return i.last.Write(w, format)
}

// compile returns the cached parsed form of an argument token.
func (i *Interpreter) compile(token string) (*expr.Expression, error) {
	if compiled, ok := i.compiled[token]; ok {
		return compiled, nil
	}
	compiled, err := expr.Compile(token)
	if err != nil {
		return nil, err
	}
	i.compiled[token] = compiled
	return compiled, nil
}
