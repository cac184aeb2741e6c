package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/NardJ/PyInterpreter/internal/config"
	"github.com/NardJ/PyInterpreter/internal/exit"
	"github.com/NardJ/PyInterpreter/internal/script/builtins"
	"github.com/NardJ/PyInterpreter/internal/script/engine"
	"github.com/NardJ/PyInterpreter/internal/script/source"
)

// Version is reported to scripts through the version host variable.
const Version = "09.02.21"

// Runner loads one script file and executes it, repeating as configured.
type Runner struct {
	config    *config.Config
	interp    *engine.Interpreter
	lines     []string
	output    io.Writer
	errOutput io.Writer
}

// New reads the script and prepares an interpreter with the default
// builtins and the configured host variables.
// If creation fails, returns nil runner and exit result.
func New(cfg *config.Config, output, errOutput io.Writer) (*Runner, *exit.Result) {
	if output == nil {
		output = os.Stdout
	}
	if errOutput == nil {
		errOutput = os.Stderr
	}

	lines, err := source.File(cfg.ScriptFile)
	if err != nil {
		return nil, exit.Errorf("Error: %v\n", err).To(errOutput)
	}

	opts := []engine.Option{
		engine.WithRateLimit(cfg.RateLimit),
		engine.WithMaxCallDepth(cfg.MaxDepth),
	}
	if cfg.Debug {
		opts = append(opts, engine.WithTrace(errOutput))
	}
	interp := engine.New(opts...)

	scriptPath, err := filepath.Abs(cfg.ScriptFile)
	if err != nil {
		scriptPath = cfg.ScriptFile
	}
	if err := builtins.Register(interp, builtins.Options{
		Output:     output,
		Version:    Version,
		ScriptPath: scriptPath,
	}); err != nil {
		return nil, exit.Errorf("Error creating interpreter: %v\n", err).To(errOutput)
	}

	for name, v := range cfg.Variables {
		if err := interp.RegisterVariable(name, v); err != nil {
			return nil, exit.Errorf("Error: variable %s: %v\n", name, err).To(errOutput)
		}
	}

	return &Runner{
		config:    cfg,
		interp:    interp,
		lines:     lines,
		output:    output,
		errOutput: errOutput,
	}, nil
}

// Run executes the script once plus config.Repeat reruns of the lowered
// program, or until interrupted when Repeat is negative.
func (r *Runner) Run(ctx context.Context) int {
	if _, err := r.interp.Run(ctx, r.lines); err != nil {
		return r.finish(1, err)
	}

	for iteration := 1; r.config.Repeat < 0 || iteration <= r.config.Repeat; iteration++ {
		if err := ctx.Err(); err != nil {
			return r.finish(iteration+1, err)
		}
		if r.config.Debug {
			r.logf("--- Iteration %d ---\n", iteration+1)
		}
		if _, err := r.interp.Rerun(ctx); err != nil {
			return r.finish(iteration+1, err)
		}
	}

	return exit.CodeSuccess
}

// finish reports the failed run and turns err into an exit code.
func (r *Runner) finish(iteration int, err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.logf("\nInterrupted during iteration %d\n", iteration)
	case engine.IsScriptError(err):
		if reportErr := r.interp.ReportDiagnostics(r.errOutput, r.config.Report); reportErr != nil {
			r.logf("Error writing diagnostics: %v\n", reportErr)
		}
	default:
		r.logf("Error in iteration %d: %v\n", iteration, err)
	}
	return exit.CodeFailure
}

func (r *Runner) logf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errOutput, format, args...)
}
