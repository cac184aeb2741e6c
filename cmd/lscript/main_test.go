package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "demo.txt")
	content := "# demo\nvar count 0\nwhile count<3 {\n  count count+1\n}\nprint f\"{name}: {count}\"\n"
	if err := os.WriteFile(script, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.txt")
	if err := os.WriteFile(broken, []byte("print missing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{
			name:    "runs_script",
			args:    []string{"lscript", "--var", "name=robot", script},
			wantOut: "robot: 3\n",
		},
		{
			name:     "reports_diagnostics",
			args:     []string{"lscript", "--report", "json", broken},
			wantCode: 1,
			wantErr:  "Name 'missing' is not defined.",
		},
		{
			name:    "help",
			args:    []string{"lscript", "--help"},
			wantOut: "Usage: lscript",
		},
		{
			name:     "no_script",
			args:     []string{"lscript"},
			wantCode: 1,
			wantErr:  "no script file specified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr strings.Builder
			if code := run(tt.args, &stdout, &stderr); code != tt.wantCode {
				t.Fatalf("run(%v) = %d, want %d (stderr %q)", tt.args, code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.wantOut) {
				t.Fatalf("stdout = %q, want it to contain %q", stdout.String(), tt.wantOut)
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Fatalf("stderr = %q, want it to contain %q", stderr.String(), tt.wantErr)
			}
		})
	}
}
