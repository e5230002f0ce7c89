package log

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/felixgeelhaar/clientstage/internal/errors"
)

// Logger provides structured logging with slog
type Logger struct {
	slog   *slog.Logger
	config Config
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	return &Logger{
		slog:   slog.New(handler),
		config: config,
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(args...),
		config: l.config,
	}
}

// Stage returns a logger tagged with the pipeline stage name.
func (l *Logger) Stage(name string) *Logger {
	return l.With("stage", name)
}

// WithError adds error details to the logger.
// Coded step errors contribute their code and suggestions.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	stepErr, ok := errors.As(err)
	if !ok {
		return l.With("error", err.Error())
	}

	args := []any{
		"error", stepErr.Message,
		"error_code", string(stepErr.Code),
	}
	if len(stepErr.Suggestions) > 0 {
		args = append(args, "suggestions", stepErr.Suggestions)
	}
	if stepErr.Cause != nil {
		args = append(args, "cause", stepErr.Cause.Error())
	}
	return l.With(args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// DebugContext logs a debug message with context
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// InfoContext logs an info message with context
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slog.InfoContext(ctx, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// ErrorContext logs an error message with context
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slog.ErrorContext(ctx, msg, args...)
}

// Enabled returns whether the logger is enabled for the given level
func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	return l.slog.Enabled(ctx, level.ToSlogLevel())
}

// Config returns the logger configuration
func (l *Logger) Config() Config {
	return l.config
}

// LineWriter returns a writer that logs every complete line it receives at
// the given level under the "line" attribute. Close flushes a trailing
// partial line.
func (l *Logger) LineWriter(level Level, msg string) io.WriteCloser {
	return l.LineWriterFunc(level, msg, nil)
}

// LineWriterFunc is LineWriter with every line passed through filter
// before it is logged. A nil filter logs lines unchanged.
func (l *Logger) LineWriterFunc(level Level, msg string, filter func(string) string) io.WriteCloser {
	pr, pw := io.Pipe()
	w := &lineWriter{pw: pw}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if filter != nil {
				line = filter(line)
			}
			l.slog.Log(context.Background(), level.ToSlogLevel(), msg, "line", line)
		}
		_, _ = io.Copy(io.Discard, pr)
	}()
	return w
}

type lineWriter struct {
	pw *io.PipeWriter
	wg sync.WaitGroup
}

func (w *lineWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *lineWriter) Close() error {
	err := w.pw.Close()
	w.wg.Wait()
	return err
}
