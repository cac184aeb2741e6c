package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/NardJ/PyInterpreter/internal/script/diagnostics"
	"github.com/NardJ/PyInterpreter/internal/script/symbols"
	"github.com/NardJ/PyInterpreter/internal/script/value"
	"github.com/NardJ/PyInterpreter/internal/stack"
)

const (
	commandVar    = "var"
	commandGoto   = "goto"
	commandGosub  = "gosub"
	commandReturn = "return"
	commandIf     = "if"
	commandExit   = "exit"
	commandLabel  = symbols.KeywordLabel
	commandSub    = symbols.KeywordSub
)

// signature is the exact argument list a core command accepts.
type signature []value.Kind

var coreSignatures = map[string]signature{
	commandVar:    {value.KindText, value.KindAny},
	commandLabel:  {value.KindText},
	commandSub:    {value.KindInt},
	commandGoto:   {value.KindInt},
	commandGosub:  {value.KindInt},
	commandReturn: {},
	commandIf:     {value.KindBool | value.KindNumber, value.KindInt},
	commandExit:   {},
}

var reassignSignature = signature{value.KindText | value.KindNumber}

func isCoreCommand(name string) bool {
	_, ok := coreSignatures[name]
	return ok
}

// rawArguments reports how many leading arguments of a command are names
// rather than expressions.
func rawArguments(command string) int {
	switch command {
	case commandVar, commandLabel:
		return 1
	default:
		return 0
	}
}

// frame is a gosub call site.
type frame struct {
	line      int
	statement int
}

type flow int

const (
	flowNext flow = iota
	flowJump
	flowHalt
)

// run holds the state of one execution of the loaded program.
type run struct {
	interp *Interpreter
	ctx    context.Context
	env    map[string]value.Value
	calls  *stack.Stack[frame]
	log    *diagnostics.Log

	pc      int
	next    int
	entered bool
	steps   int
}

func (i *Interpreter) newRun(ctx context.Context) *run {
	env := maps.Clone(i.variables)
	i.labels.Bind(env)

	return &run{
		interp: i,
		ctx:    ctx,
		env:    env,
		calls:  stack.NewBounded[frame](i.maxCallDepth),
		log:    diagnostics.NewLog(),
	}
}

func (r *run) end() int {
	return len(r.interp.lines)
}

// execute runs until the program counter leaves the program. It returns a
// non-nil error only for context cancellation or a failing builtin;
// script errors go to the log.
func (r *run) execute() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	for r.pc < r.end() {
		if err := r.ctx.Err(); err != nil {
			return err
		}

		line := r.interp.lines[r.pc]
		start := r.next
		r.next = 0

		jumped := false
		for index := start; index < len(line); index++ {
			if err := r.interp.limiter.Wait(r.ctx); err != nil {
				return err
			}

			outcome, err := r.step(line[index], index)
			if err != nil {
				return err
			}
			if outcome != flowNext {
				jumped = true
				break
			}
		}

		if !jumped {
			// A gosub landing counts only for the first statement it reaches.
			r.entered = false
			r.pc++
		}
	}
	return nil
}

func (r *run) step(stmt statement, index int) (flow, error) {
	r.steps++
	if r.interp.trace != nil {
		_, _ = fmt.Fprintf(r.interp.trace, "%4d > %s\n", r.pc+1, stmt.text)
	}

	entered := r.entered
	r.entered = false

	command := stmt.tokens[0]
	args, ok := r.arguments(stmt)
	if !ok {
		return flowHalt, nil
	}

	if sig, core := coreSignatures[command]; core {
		if !r.check(stmt, command, sig, args) {
			return flowHalt, nil
		}
		return r.core(stmt, index, command, args, entered), nil
	}

	if _, bound := r.env[command]; bound {
		if !r.check(stmt, command, reassignSignature, args) {
			return flowHalt, nil
		}
		r.env[command] = args[0]
		return flowNext, nil
	}

	if builtin, registered := r.interp.builtins[command]; registered {
		if !r.check(stmt, command, builtin.Params, args) {
			return flowHalt, nil
		}
		if err := builtin.Func(r.ctx, args); err != nil {
			line := r.pc + 1
			r.halt()
			return flowHalt, fmt.Errorf("%w: %s on line %d: %w", ErrBuiltin, command, line, err)
		}
		return flowNext, nil
	}

	return r.fail(diagnostics.Newf(diagnostics.CodeCmd, r.pc, stmt.text, command,
		"Unknown command '%s'.", command)), nil
}

// arguments evaluates every token after the command. The first failure
// is logged and stops the run.
func (r *run) arguments(stmt statement) ([]value.Value, bool) {
	tokens := stmt.tokens[1:]
	raw := rawArguments(stmt.tokens[0])
	args := make([]value.Value, len(tokens))

	for position, token := range tokens {
		if position < raw {
			args[position] = value.Text(token)
			continue
		}

		compiled, err := r.interp.compile(token)
		if err == nil {
			args[position], err = compiled.Eval(r.env)
		}
		if err != nil {
			r.fail(diagnostics.New(diagnostics.CodeEval, r.pc, stmt.text, token, evalMessage(err)))
			return nil, false
		}
	}
	return args, true
}

func evalMessage(err error) string {
	message := err.Error()
	if message == "" {
		return "Evaluation failed."
	}
	if message[0] >= 'a' && message[0] <= 'z' {
		message = string(message[0]-'a'+'A') + message[1:]
	}
	return message + "."
}

func (r *run) check(stmt statement, command string, sig signature, args []value.Value) bool {
	if len(args) != len(sig) {
		r.fail(diagnostics.Newf(diagnostics.CodeArg, r.pc, stmt.text, command,
			"'%s' expects %d argument(s), got %d.", command, len(sig), len(args)))
		return false
	}

	for position, kind := range sig {
		if !kind.Allows(args[position].Kind()) {
			r.fail(diagnostics.Newf(diagnostics.CodeArg, r.pc, stmt.text, stmt.tokens[position+1],
				"Argument %d of '%s' must be %s, got %s.", position+1, command, kind, args[position].Kind()))
			return false
		}
	}
	return true
}

func (r *run) core(stmt statement, index int, command string, args []value.Value, entered bool) flow {
	switch command {
	case commandVar:
		name := args[0].AsText()
		if !isIdentifier(name) {
			return r.fail(diagnostics.Newf(diagnostics.CodeArg, r.pc, stmt.text, name,
				"Invalid variable name '%s'.", name))
		}
		if _, builtin := r.interp.builtins[name]; builtin || isCoreCommand(name) {
			return r.fail(diagnostics.Newf(diagnostics.CodeArg, r.pc, stmt.text, name,
				"'%s' is a reserved name.", name))
		}
		r.env[name] = args[1]
		return flowNext
	case commandLabel:
		return flowNext
	case commandSub:
		if entered {
			return flowNext
		}
		return r.skipSub(stmt, index)
	case commandGoto:
		return r.jump(stmt, args[0])
	case commandGosub:
		if err := r.calls.Push(frame{line: r.pc, statement: index}); err != nil {
			return r.fail(diagnostics.Newf(diagnostics.CodeStack, r.pc, stmt.text, command,
				"Maximum call depth %d exceeded.", r.calls.Limit()))
		}
		outcome := r.jump(stmt, args[0])
		r.entered = outcome == flowJump
		return outcome
	case commandReturn:
		caller, ok := r.calls.Pop()
		if !ok {
			return r.fail(diagnostics.New(diagnostics.CodeStack, r.pc, stmt.text, command,
				"Return without gosub."))
		}
		r.pc, r.next = caller.line, caller.statement+1
		return flowJump
	case commandIf:
		if !args[0].Truthy() {
			return flowNext
		}
		return r.jump(stmt, args[1])
	case commandExit:
		r.halt()
		return flowHalt
	default:
		return r.fail(diagnostics.Newf(diagnostics.CodeCmd, r.pc, stmt.text, command,
			"Unknown command '%s'.", command))
	}
}

func (r *run) jump(stmt statement, target value.Value) flow {
	line := target.AsInt()
	if line < 0 || line >= int64(r.end()) {
		return r.fail(diagnostics.Newf(diagnostics.CodeArg, r.pc, stmt.text, stmt.tokens[len(stmt.tokens)-1],
			"Jump target %d is outside the program (0..%d).", line, r.end()-1))
	}
	r.pc, r.next = int(line), 0
	return flowJump
}

// skipSub moves past a subroutine body reached without gosub, landing on
// the line after the return matching the sub at index.
func (r *run) skipSub(stmt statement, index int) flow {
	depth := 0
	line, start := r.pc, index+1

	for ; line < r.end(); line, start = line+1, 0 {
		statements := r.interp.lines[line]
		for _, candidate := range statements[min(start, len(statements)):] {
			switch candidate.tokens[0] {
			case commandSub:
				depth++
			case commandReturn:
				if depth == 0 {
					r.pc, r.next = line+1, 0
					return flowJump
				}
				depth--
			}
		}
	}

	issue := diagnostics.Newf(diagnostics.CodeSyntax, r.pc, stmt.text, stmt.tokens[0],
		"Sub '%s' has no matching return.", subName(stmt)).WithStage(diagnostics.StageExecute)
	return r.fail(issue)
}

func subName(stmt statement) string {
	if len(stmt.tokens) > 1 {
		return stmt.tokens[1]
	}
	return ""
}

func (r *run) halt() {
	r.pc, r.next = r.end(), 0
}

func (r *run) fail(issue diagnostics.Issue) flow {
	r.log.Add(issue)
	r.halt()
	return flowHalt
}

// IsScriptError reports whether err came from script diagnostics rather
// than from the host.
func IsScriptError(err error) bool {
	return errors.Is(err, ErrLoad) || errors.Is(err, ErrRuntime)
}
