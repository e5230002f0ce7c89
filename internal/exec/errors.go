package exec

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/clientstage/internal/errors"
)

// CommandError carries the details of a failed process.
type CommandError struct {
	Argv     []string
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "exit code %d", e.ExitCode)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Failure builds the coded error returned for a failed command. Runners and
// test doubles use it so that callers see one error shape.
func Failure(cmd Command, res *Result, cause error) error {
	ce := &CommandError{
		Argv: cmd.Argv(),
		Dir:  cmd.Dir,
		Err:  cause,
	}
	if res != nil {
		ce.ExitCode = res.ExitCode
		ce.Stderr = res.Stderr
	}
	return errors.NewCommandFailure(cmd.String(), ce)
}
