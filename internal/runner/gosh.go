package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/viant/gosh"
	goshrunner "github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
)

// Gosh runs commands in one long-lived local bash session. Every command runs
// in a subshell entered from dir, so a cd or exit inside it never reaches the
// session itself.
type Gosh struct {
	mu      sync.Mutex
	service *gosh.Service
	options []goshrunner.Option
	timeout time.Duration
}

// NewGosh starts the bash session.
func NewGosh(ctx context.Context, timeout time.Duration, env map[string]string) (*Gosh, error) {
	var options []goshrunner.Option
	if len(env) > 0 {
		options = append(options, goshrunner.WithEnvironment(env))
	}
	service, err := gosh.New(ctx, local.New(options...))
	if err != nil {
		return nil, fmt.Errorf("failed to start shell session: %w", err)
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Gosh{service: service, options: options, timeout: timeout}, nil
}

func (g *Gosh) Run(ctx context.Context, command, dir string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	line := fmt.Sprintf("cd %s && ( %s )", quoteDir(dir), command)
	started := time.Now()
	stdout, status, err := g.service.Run(ctx, line, goshrunner.WithTimeout(int(g.timeout.Milliseconds())))
	if elapsed := time.Since(started); elapsed > g.timeout && err == nil {
		err = fmt.Errorf("command %v timed out after: %s", command, elapsed)
	}
	if status == 0 && err == nil {
		return Result{Success: true, Output: stdout}
	}
	if sessionClosed(err) {
		if restartErr := g.restart(ctx); restartErr != nil {
			err = fmt.Errorf("%v; %w", err, restartErr)
		}
	}
	message := stdout
	if strings.TrimSpace(message) == "" && err != nil {
		message = err.Error()
	}
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("command exited with code %d\n", status)
	}
	return Result{Error: message}
}

// restart replaces a bash session that has gone away. The failed command is not retried.
func (g *Gosh) restart(ctx context.Context) error {
	service, err := gosh.New(ctx, local.New(g.options...))
	if err != nil {
		return fmt.Errorf("failed to restart shell session: %w", err)
	}
	g.service = service
	return nil
}

func sessionClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || strings.Contains(err.Error(), "EOF")
}
