package exec

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	osexec "os/exec"
	"time"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/log"
)

// LocalRunner runs commands as child processes of the step.
// There is no timeout: a hung process hangs the run until ctx is cancelled.
type LocalRunner struct {
	// Logger receives one debug entry per command.
	Logger *log.Logger

	// Stream copies process output line by line to Logger at debug level.
	Stream bool

	// Redactor masks secrets in everything that leaves the runner.
	Redactor *Redactor

	// Transcript, when set, records every command for the run manifest.
	Transcript *Transcript
}

// NewLocalRunner creates a runner logging to logger.
func NewLocalRunner(logger *log.Logger) *LocalRunner {
	return &LocalRunner{Logger: log.OrDefault(logger)}
}

// Run executes cmd and waits for it.
func (r *LocalRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	logger := log.OrDefault(r.Logger)
	shown := r.Redactor.Command(cmd)
	logger.Debug("running command", "command", shown.String(), "dir", cmd.Dir)

	c := osexec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if r.Stream {
		outLog := logger.LineWriterFunc(log.LevelDebug, "stdout", r.Redactor.Redact)
		errLog := logger.LineWriterFunc(log.LevelDebug, "stderr", r.Redactor.Redact)
		defer outLog.Close()
		defer errLog.Close()
		c.Stdout = io.MultiWriter(&stdout, outLog)
		c.Stderr = io.MultiWriter(&stderr, errLog)
	}

	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   r.Redactor.Redact(stderr.String()),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *osexec.ExitError
		switch {
		case stderrors.Is(err, osexec.ErrNotFound):
			res.ExitCode = -1
			r.record(shown, res)
			return res, errors.NewCommandNotFound(cmd.Name, err)
		case ctx.Err() != nil:
			res.ExitCode = -1
			err = ctx.Err()
		case stderrors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			res.ExitCode = -1
		}
		r.record(shown, res)
		return res, Failure(shown, res, err)
	}

	r.record(shown, res)
	return res, nil
}

func (r *LocalRunner) record(cmd Command, res *Result) {
	if r.Transcript != nil {
		r.Transcript.Record(cmd, res)
	}
}
