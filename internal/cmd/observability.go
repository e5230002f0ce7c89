package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/log"
	"github.com/felixgeelhaar/clientstage/internal/telemetry"
	"github.com/felixgeelhaar/clientstage/internal/version"
)

// setupLogging installs the process logger. Logs go to stderr so stdout
// stays free for command output.
func setupLogging(cmd *cobra.Command, opts *globalOptions) error {
	level, err := log.ParseLevel(opts.logLevel)
	if err != nil {
		return errors.NewConfigInvalidError("--log-level", opts.logLevel, err.Error())
	}
	format, err := log.ParseFormat(opts.logFormat)
	if err != nil {
		return errors.NewConfigInvalidError("--log-format", opts.logFormat, err.Error())
	}

	log.SetDefaultLogger(log.New(log.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	}))
	return nil
}

// debugLogger returns logger lowered to debug level, keeping its format
// and output.
func debugLogger(logger *log.Logger) *log.Logger {
	cfg := logger.Config()
	if cfg.Level == log.LevelDebug {
		return logger
	}
	cfg.Level = log.LevelDebug
	return log.New(cfg)
}

// setupTelemetry starts tracing when an OTLP endpoint is configured.
// The returned cleanup flushes pending spans.
func setupTelemetry(ctx context.Context, logger *log.Logger) func() {
	cfg := telemetry.FromEnv(version.GetInfo().Version)
	if !cfg.Enabled {
		return func() {}
	}

	shutdown, err := telemetry.InitProvider(ctx, cfg)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
		return func() {}
	}
	logger.Debug("telemetry enabled", "endpoint", cfg.Endpoint)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush telemetry", "error", err)
		}
	}
}
