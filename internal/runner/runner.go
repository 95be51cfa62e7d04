// Package runner executes non-builtin command lines in a host shell.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Result is the outcome of one command. A non-zero exit or a failure to
// start yields Success == false with diagnostics in Error.
type Result struct {
	Success bool
	Output  string
	Error   string
}

// ProcessRunner runs command in dir. It never keeps directory state between calls.
type ProcessRunner interface {
	Run(ctx context.Context, command, dir string) Result
}

// Exec spawns a fresh host shell per command.
type Exec struct {
	Shell   string
	Args    []string
	Timeout time.Duration
	Env     []string
}

// NewExec returns a runner for the platform shell. An empty shell selects the default.
func NewExec(shell string, timeout time.Duration) *Exec {
	e := &Exec{Timeout: timeout}
	e.Shell, e.Args = defaultShell()
	if shell != "" {
		e.Shell = shell
	}
	return e
}

func (e *Exec) Run(ctx context.Context, command, dir string) Result {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	args := append(append([]string{}, e.Args...), command)
	cmd := exec.CommandContext(ctx, e.Shell, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := stderr.String()
		if message == "" {
			message = describe(e.Shell, err)
		}
		return Result{Output: stdout.String(), Error: message}
	}
	return Result{Success: true, Output: stdout.String()}
}

func describe(name string, err error) string {
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return fmt.Sprintf("command exited with code %d\n", exitErr.ExitCode())
	case os.IsPermission(err):
		return fmt.Sprintf("%s: permission denied\n", name)
	case os.IsNotExist(err), errors.Is(err, exec.ErrNotFound):
		return fmt.Sprintf("%s: command not found\n", name)
	default:
		return fmt.Sprintf("%s: %v\n", name, err)
	}
}
