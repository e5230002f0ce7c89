package step

import (
	"context"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/hooks"
	"github.com/felixgeelhaar/clientstage/internal/log"
)

// Lifecycle is notified around a run.
type Lifecycle interface {
	// BeforeExecute runs before the first stage. An error aborts the run.
	BeforeExecute(ctx context.Context) error
	// AfterExecute runs once after the run. runErr is nil on success.
	AfterExecute(ctx context.Context, debug bool, res *Result, runErr error) error
}

// Execute runs s between the lifecycle callbacks. On failure AfterExecute
// gets debug forced on and the run error is returned unchanged; a failing
// AfterExecute is only logged then. On success the configured debug flag is
// passed and an AfterExecute error is returned.
func Execute(ctx context.Context, s *Step, lc Lifecycle) (*Result, error) {
	if err := lc.BeforeExecute(ctx); err != nil {
		res := &Result{RunID: s.RunID(), FailedStage: "before_execute"}
		afterFailure(ctx, s, lc, res, err)
		return res, err
	}

	res, err := s.Run(ctx)
	if err != nil {
		afterFailure(ctx, s, lc, res, err)
		return res, err
	}

	if err := lc.AfterExecute(ctx, s.DebugMode(), res, nil); err != nil {
		return res, err
	}
	return res, nil
}

func afterFailure(ctx context.Context, s *Step, lc Lifecycle, res *Result, runErr error) {
	// The run already failed; a cancelled ctx must not silence the report.
	if hookErr := lc.AfterExecute(context.WithoutCancel(ctx), true, res, runErr); hookErr != nil {
		s.logger.WithError(hookErr).Warn("failure lifecycle reported an error")
	}
}

// HookLifecycle turns lifecycle callbacks into hook events.
type HookLifecycle struct {
	Registry *hooks.Registry
	RunID    string
}

// NewHookLifecycle returns a lifecycle backed by registry. A log hook
// reporting completion and failure is always registered.
func NewHookLifecycle(registry *hooks.Registry, runID string, logger *log.Logger) (*HookLifecycle, error) {
	report := hooks.NewLogHook(&hooks.HookConfig{
		Name:    "report",
		Events:  []hooks.EventType{hooks.EventStepComplete, hooks.EventStepFailed},
		Enabled: true,
	}, logger)
	if err := registry.Register(report, hooks.FailureIgnore); err != nil {
		return nil, err
	}
	return &HookLifecycle{Registry: registry, RunID: runID}, nil
}

// BeforeExecute dispatches on_step_before.
func (l *HookLifecycle) BeforeExecute(ctx context.Context) error {
	return l.Registry.Dispatch(ctx, hooks.NewEvent(hooks.EventStepBefore, l.RunID, nil))
}

// AfterExecute dispatches on_step_complete or on_step_failed.
func (l *HookLifecycle) AfterExecute(ctx context.Context, debug bool, res *Result, runErr error) error {
	data := map[string]interface{}{}
	if res != nil {
		data["client_folders"] = len(res.Folders)
		data["built"] = res.Built
		data["duration"] = res.Duration.String()
		if res.Sync != nil {
			data["tree_digest"] = res.Sync.Digest
		}
	}

	eventType := hooks.EventStepComplete
	if runErr != nil {
		eventType = hooks.EventStepFailed
		data["error"] = runErr.Error()
		if stepErr, ok := errors.As(runErr); ok {
			data["error_code"] = string(stepErr.Code)
		}
		if res != nil {
			data["stage"] = res.FailedStage
		}
	} else if res != nil {
		data["pr_url"] = res.PRURL
		data["artifact"] = res.ArtifactPath
	}

	event := hooks.NewEvent(eventType, l.RunID, data)
	event.Debug = debug
	return l.Registry.Dispatch(ctx, event)
}
