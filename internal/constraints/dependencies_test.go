package constraints

import (
	"bytes"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type goListPackage struct {
	ImportPath string
	Imports    []string
}

const modulePrefix = "github.com/NardJ/PyInterpreter/internal/"

func TestScriptPackagesDoNotImportCLIPackages(t *testing.T) {
	t.Parallel()

	packages := goList(t, "./internal/script/...")
	cliPackages := map[string]struct{}{
		modulePrefix + "config": {},
		modulePrefix + "exit":   {},
		modulePrefix + "runner": {},
	}

	var violations []string
	for _, pkg := range packages {
		for _, imp := range pkg.Imports {
			if _, ok := cliPackages[imp]; ok {
				violations = append(violations, pkg.ImportPath+" imports "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden script->cli imports:\n%s", strings.Join(violations, "\n"))
	}
}

func TestPipelinePackagesDoNotImportEngine(t *testing.T) {
	t.Parallel()

	packages := goList(t, "./internal/script/...")
	pipeline := map[string]struct{}{
		modulePrefix + "script/lex":       {},
		modulePrefix + "script/normalize": {},
		modulePrefix + "script/lower":     {},
		modulePrefix + "script/symbols":   {},
		modulePrefix + "script/expr":      {},
	}

	var violations []string
	for _, pkg := range packages {
		if _, ok := pipeline[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			if imp == modulePrefix+"script/engine" || imp == modulePrefix+"script/builtins" {
				violations = append(violations, pkg.ImportPath+" imports "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden pipeline->engine imports:\n%s", strings.Join(violations, "\n"))
	}
}

func TestPurePackagesAvoidSideEffectImports(t *testing.T) {
	t.Parallel()

	purePackages := map[string]struct{}{
		modulePrefix + "script/value":       {},
		modulePrefix + "script/diagnostics": {},
		modulePrefix + "script/lex":         {},
		modulePrefix + "script/normalize":   {},
		modulePrefix + "script/lower":       {},
		modulePrefix + "script/symbols":     {},
		modulePrefix + "script/expr":        {},
		modulePrefix + "script/engine":      {},
	}

	forbidden := map[string]struct{}{
		"os":           {},
		"net/http":     {},
		"math/rand":    {},
		"math/rand/v2": {},
	}

	packages := goList(t, "./internal/script/...")

	var violations []string
	for _, pkg := range packages {
		if _, ok := purePackages[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			if _, banned := forbidden[imp]; banned {
				violations = append(violations, pkg.ImportPath+" imports forbidden package "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden imports in pure packages:\n%s", strings.Join(violations, "\n"))
	}
}

func goList(t *testing.T, patterns ...string) []goListPackage {
	t.Helper()

	args := append([]string{"list", "-json"}, patterns...)
	cmd := exec.Command("go", args...)
	cmd.Dir = repoRoot(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("go list failed: %v\nstderr:\n%s", err, stderr.String())
	}

	decoder := json.NewDecoder(bytes.NewReader(stdout.Bytes()))
	var packages []goListPackage
	for decoder.More() {
		var pkg goListPackage
		if err := decoder.Decode(&pkg); err != nil {
			t.Fatalf("decode go list json: %v", err)
		}
		packages = append(packages, pkg)
	}

	return packages
}

func repoRoot(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}

	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}
