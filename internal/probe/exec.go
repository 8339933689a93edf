package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/roach88/arithprobe/internal/failctl"
)

// Command is a process to launch.
type Command struct {
	Path string
	Args []string
	Dir  string

	// Env is appended to the inherited environment after any inherited
	// failure-control variables and GOFLAGS are removed.
	Env []string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Execution is what a finished process left behind.
type Execution struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Executor launches commands. A non-zero exit is an Execution, not an
// error; errors mean the process could not run at all.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (Execution, error)
}

// ExecExecutor runs commands with os/exec.
type ExecExecutor struct{}

// Execute runs cmd and captures its output and exit code.
func (ExecExecutor) Execute(ctx context.Context, c Command) (Execution, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(scrubEnv(os.Environ()), c.Env...)
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Execution{}, fmt.Errorf("execution cancelled: %w", ctxErr)
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Execution{}, fmt.Errorf("failed to execute %s: %w", c.Path, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return Execution{
		ExitCode: exitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

// scrubbedVars never pass from the parent to a child. GOFLAGS can carry
// -tags, which would change which build variant every command compiles.
var scrubbedVars = map[string]bool{
	failctl.EnvForceFail:  true,
	failctl.EnvMarkerPath: true,
	"GOFLAGS":             true,
}

// scrubEnv drops inherited variables that would change an outcome, so only
// values the runner sets explicitly reach the child.
func scrubEnv(env []string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		key, _, _ := strings.Cut(kv, "=")
		if scrubbedVars[key] {
			continue
		}
		out = append(out, kv)
	}
	return out
}
