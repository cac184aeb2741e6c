package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/NardJ/PyInterpreter/internal/config"
	"github.com/NardJ/PyInterpreter/internal/runner"
)

func main() {
	exitCode := run(os.Args, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, exitResult := config.Parse(args)
	if exitResult != nil {
		if exitResult.ExitCode == 0 {
			return exitResult.To(stdout).Print()
		}
		return exitResult.To(stderr).Print()
	}

	r, exitResult := runner.New(cfg, stdout, stderr)
	if exitResult != nil {
		return exitResult.Print()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return r.Run(ctx)
}
