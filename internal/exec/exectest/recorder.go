// Package exectest provides a scripted exec.Runner for tests.
package exectest

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/clientstage/internal/exec"
)

// Handler decides the outcome of a recorded command.
type Handler func(cmd exec.Command) (*exec.Result, error)

// Recorder records every command and answers with Handler.
// A nil Handler makes every command succeed with empty output.
type Recorder struct {
	mu      sync.Mutex
	calls   []exec.Command
	Handler Handler
}

// Run implements exec.Runner.
func (r *Recorder) Run(_ context.Context, cmd exec.Command) (*exec.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	handler := r.Handler
	r.mu.Unlock()

	if handler == nil {
		return &exec.Result{}, nil
	}
	return handler(cmd)
}

// Calls returns the recorded commands in order.
func (r *Recorder) Calls() []exec.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]exec.Command, len(r.calls))
	copy(out, r.calls)
	return out
}

// Lines returns the recorded command lines in order.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Ran reports whether any recorded command line starts with prefix.
func (r *Recorder) Ran(prefix string) bool {
	for _, line := range r.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Fail returns the error a real runner produces for a non-zero exit.
func Fail(cmd exec.Command, exitCode int, stderr string) (*exec.Result, error) {
	res := &exec.Result{ExitCode: exitCode, Stderr: stderr}
	return res, exec.Failure(cmd, res, nil)
}

// Output returns a successful result with the given stdout.
func Output(stdout string) (*exec.Result, error) {
	return &exec.Result{Stdout: stdout}, nil
}
