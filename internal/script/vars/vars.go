// Package vars loads host variables from YAML files.
package vars

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/NardJ/PyInterpreter/internal/script/value"
)

// ErrVars is the sentinel for all variable file failures.
var ErrVars = errors.New("invalid variables file")

// Decode reads a YAML mapping of names to scalar values. Integers,
// floats, booleans and strings keep their kind; nulls and nested values
// are rejected. An empty document yields an empty map.
func Decode(r io.Reader) (map[string]value.Value, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrVars, err)
	}

	variables := make(map[string]value.Value, len(raw))
	for name, input := range raw {
		if input == nil {
			return nil, fmt.Errorf("%w: variable %q has no value", ErrVars, name)
		}
		v, err := value.FromAny(input)
		if err != nil {
			return nil, fmt.Errorf("%w: variable %q: %v", ErrVars, name, err)
		}
		variables[name] = v
	}

	return variables, nil
}

// File decodes the variables file at path.
func File(path string) (map[string]value.Value, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVars, err)
	}
	defer func() { _ = file.Close() }()

	return Decode(file)
}
