package shell

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"advterm/internal/runner"
)

var cdPattern = regexp.MustCompile(`(?i)^cd\s+(.+)$`)

var quoteStripper = strings.NewReplacer(`"`, "", `'`, "")

// ExecResult is the outcome of a non-builtin command line.
type ExecResult struct {
	Success   bool
	Output    string
	Err       *Error
	DirChange bool
}

// Executor runs non-builtin command lines against a session's directory.
type Executor struct {
	runner runner.ProcessRunner
	home   string
}

// NewExecutor returns an executor that delegates to r and expands ~ to home.
func NewExecutor(r runner.ProcessRunner, home string) *Executor {
	return &Executor{runner: r, home: home}
}

// DirChangeTarget returns the path argument when line is a "cd <path>" form.
func DirChangeTarget(line string) (string, bool) {
	m := cdPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Execute runs line. A cd form only touches s.Dir, and only on success.
func (e *Executor) Execute(ctx context.Context, s *Session, line string) ExecResult {
	if target, ok := DirChangeTarget(line); ok {
		if err := e.ChangeDir(s, target); err != nil {
			return ExecResult{Err: err, DirChange: true}
		}
		return ExecResult{Success: true, DirChange: true}
	}

	result := e.runner.Run(ctx, line, s.Dir)
	if result.Success {
		return ExecResult{Success: true, Output: normalize(result.Output)}
	}
	message := normalize(result.Error)
	if message == "" {
		message = "Command failed"
	}
	return ExecResult{Output: normalize(result.Output), Err: &Error{Kind: KindProcessFailure, Message: message}}
}

// ChangeDir resolves target against s.Dir and moves the session there if it is a directory.
func (e *Executor) ChangeDir(s *Session, target string) *Error {
	path := e.resolve(s.Dir, target)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return newError(KindInvalidPath, "The system cannot find the path specified: %s\n", path)
	}
	s.Dir = path
	return nil
}

func (e *Executor) resolve(dir, target string) string {
	target = quoteStripper.Replace(strings.TrimSpace(target))
	if target == "~" || strings.HasPrefix(target, "~/") || strings.HasPrefix(target, `~\`) {
		target = e.home + target[1:]
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return filepath.Clean(target)
}

func normalize(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
