package exec

import (
	"context"
	"strings"
	"time"
)

// Command is one external process invocation
type Command struct {
	Name string   // Executable, looked up on PATH unless it contains a separator
	Args []string // Arguments, without the executable
	Dir  string   // Working directory; relative Name is resolved against it
	Env  []string // Extra KEY=VALUE pairs appended to the process environment
}

// Argv returns the executable followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Result represents the outcome of an external process
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes external commands synchronously.
// A non-zero exit is returned as a CMD-001 error together with the result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}
