// Package metrics exposes Prometheus metrics for staging runs.
package metrics

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/exec"
)

// Metrics holds all Prometheus metrics for clientstage
type Metrics struct {
	// Stage metrics
	StageRuns     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec

	// External command metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Run outcome metrics
	Runs          *prometheus.CounterVec
	ClientFolders prometheus.Gauge
	PullRequests  *prometheus.CounterVec
	LastSuccess   prometheus.Gauge

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		StageRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clientstage_stage_runs_total",
				Help: "Total number of stage executions",
			},
			[]string{"stage", "success"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clientstage_stage_duration_seconds",
				Help:    "Stage duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 5.0, 30.0, 120.0, 600.0, 1800.0},
			},
			[]string{"stage"},
		),

		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clientstage_commands_total",
				Help: "Total number of external commands run",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clientstage_command_duration_seconds",
				Help:    "External command duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clientstage_runs_total",
				Help: "Total number of staging runs",
			},
			[]string{"success"},
		),
		ClientFolders: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "clientstage_client_folders",
				Help: "Client folders found in the last archive",
			},
		),
		PullRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clientstage_pull_requests_total",
				Help: "Total number of pull request attempts",
			},
			[]string{"success"},
		),
		LastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "clientstage_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clientstage_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "stage"},
		),
	}
}

// ObserveStage records one stage execution.
func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	m.StageRuns.WithLabelValues(stage, strconv.FormatBool(err == nil)).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.Errors.WithLabelValues(ErrorCode(err), stage).Inc()
	}
}

// ObserveCommand records one external command by executable name.
func (m *Metrics) ObserveCommand(name string, d time.Duration, success bool) {
	m.Commands.WithLabelValues(name, strconv.FormatBool(success)).Inc()
	m.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
}

// ObserveRun records the outcome of a run.
func (m *Metrics) ObserveRun(err error) {
	m.Runs.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
	if err == nil {
		m.LastSuccess.SetToCurrentTime()
	}
}

// ErrorCode returns the coded error label for err.
func ErrorCode(err error) string {
	if stepErr, ok := errors.As(err); ok {
		return string(stepErr.Code)
	}
	return "unknown"
}

// Instrument wraps runner so every command is observed by executable name.
func (m *Metrics) Instrument(runner exec.Runner) exec.Runner {
	return &instrumentedRunner{runner: runner, metrics: m}
}

type instrumentedRunner struct {
	runner  exec.Runner
	metrics *Metrics
}

func (r *instrumentedRunner) Run(ctx context.Context, cmd exec.Command) (*exec.Result, error) {
	start := time.Now()
	res, err := r.runner.Run(ctx, cmd)
	r.metrics.ObserveCommand(filepath.Base(cmd.Name), time.Since(start), err == nil)
	return res, err
}
