package builtins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/NardJ/PyInterpreter/internal/clock"
	"github.com/NardJ/PyInterpreter/internal/script/engine"
	"github.com/NardJ/PyInterpreter/internal/script/value"
)

// ErrInvalidDuration is returned by sleep for negative or non-finite input.
var ErrInvalidDuration = errors.New("invalid sleep duration")

// Options configures the default builtins.
type Options struct {
	// Output receives print and millis output. Defaults to os.Stdout.
	Output     io.Writer
	Version    string
	ScriptPath string
}

type host struct {
	output io.Writer
	start  time.Time
}

// Register installs print, sleep and millis plus the version, scriptpath
// and pi host variables.
func Register(interp *engine.Interpreter, opts Options) error {
	h := &host{output: opts.Output, start: clock.Now()}
	if h.output == nil {
		h.output = os.Stdout
	}

	builtins := []struct {
		name   string
		fn     engine.BuiltinFunc
		params []value.Kind
	}{
		{name: "print", fn: h.print, params: []value.Kind{value.KindAny}},
		{name: "sleep", fn: h.sleep, params: []value.Kind{value.KindNumber}},
		{name: "millis", fn: h.millis},
	}
	for _, b := range builtins {
		if err := interp.RegisterBuiltin(b.name, b.fn, b.params...); err != nil {
			return fmt.Errorf("register %s: %w", b.name, err)
		}
	}

	variables := map[string]value.Value{
		"version":    value.Text(opts.Version),
		"scriptpath": value.Text(opts.ScriptPath),
		"pi":         value.Float(math.Pi),
	}
	for name, v := range variables {
		if err := interp.RegisterVariable(name, v); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}

	return nil
}

func (h *host) print(_ context.Context, args []value.Value) error {
	_, err := fmt.Fprintln(h.output, args[0].String())
	return err
}

// sleep pauses for a number of seconds. Cancelling the run's context
// wakes it early and stops the run.
func (h *host) sleep(ctx context.Context, args []value.Value) error {
	seconds := args[0].AsFloat()
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, args[0])
	}

	if !clock.Sleep(ctx.Done(), time.Duration(seconds*float64(time.Second))) {
		return ctx.Err()
	}
	return nil
}

// millis prints the milliseconds elapsed since Register.
func (h *host) millis(context.Context, []value.Value) error {
	_, err := fmt.Fprintln(h.output, clock.Millis()-h.start.UnixMilli())
	return err
}
