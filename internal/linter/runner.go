package linter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes external tools. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	LookPath(file string) (string, error)
}

// exitCoder is satisfied by *exec.ExitError
type exitCoder interface {
	ExitCode() int
}

// OSRunner runs tools as subprocesses
type OSRunner struct{}

// Run executes name with args and returns stdout. A non-zero exit wraps the
// *exec.ExitError so callers can inspect the exit code.
func (OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return stdout.Bytes(), fmt.Errorf("%s %v failed: %w: %s", name, args, err, stderr.String())
		}
		return stdout.Bytes(), fmt.Errorf("%s %v failed: %w", name, args, err)
	}
	return stdout.Bytes(), nil
}

// LookPath resolves an executable on PATH
func (OSRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
