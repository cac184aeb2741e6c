package engine

import "errors"

var (
	// ErrLoad is returned when lexing, normalizing or lowering reported
	// diagnostics. Nothing was executed.
	ErrLoad = errors.New("script failed to load")
	// ErrRuntime is returned when execution stopped on a diagnostic.
	ErrRuntime = errors.New("script stopped on error")
	// ErrNoProgram is returned by Rerun before any successful Load.
	ErrNoProgram     = errors.New("no program loaded")
	ErrBuiltin       = errors.New("builtin failed")
	ErrNameConflict  = errors.New("name already in use")
	ErrInvalidName   = errors.New("invalid name")
	ErrInvalidOption = errors.New("invalid option")
)
