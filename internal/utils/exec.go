package utils

import (
	"context"
	"os"
	"os/exec"
)

// CommandExecutor runs external tools. Stages take one so tests can fake the tools.
type CommandExecutor interface {
	// ExecuteCommand runs name with args and returns stdout; stderr is attached to the error
	ExecuteCommand(ctx context.Context, name string, args []string, env []string) ([]byte, error)
	LookPath(file string) (string, error)
}

// RealCommandExecutor implements actual command execution
type RealCommandExecutor struct{}

// CommandError carries the stderr of a failed command
type CommandError struct {
	Name   string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return e.Name + ": " + e.Err.Error() + ": " + e.Stderr
	}
	return e.Name + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecuteCommand runs the command; extra env entries are appended to the process environment
func (e *RealCommandExecutor) ExecuteCommand(ctx context.Context, name string, args []string, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	out, err := cmd.Output()
	if err != nil {
		var stderr string
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = trimOutput(ee.Stderr)
		}
		return out, &CommandError{Name: name, Stderr: stderr, Err: err}
	}
	return out, nil
}

// LookPath searches for an executable in PATH
func (e *RealCommandExecutor) LookPath(file string) (string, error) {
	return ExecLookPath(file)
}

// trimOutput keeps the tail of long tool diagnostics
func trimOutput(b []byte) string {
	const limit = 4096
	if len(b) > limit {
		b = b[len(b)-limit:]
	}
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r' || b[len(b)-1] == ' ') {
		b = b[:len(b)-1]
	}
	return string(b)
}
