package hooks

import (
	"context"
	"time"
)

// Executor executes hooks one after another in registration order.
type Executor struct {
	defaultTimeout time.Duration
}

// NewExecutor creates a new hook executor
func NewExecutor() *Executor {
	return &Executor{defaultTimeout: DefaultTimeout}
}

// SetDefaultTimeout sets the default timeout for hook execution
func (e *Executor) SetDefaultTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	e.defaultTimeout = timeout
}

// ExecuteAll executes all hooks for an event sequentially
func (e *Executor) ExecuteAll(ctx context.Context, hooks []registered, event *Event) []ExecutionResult {
	if len(hooks) == 0 {
		return nil
	}

	results := make([]ExecutionResult, 0, len(hooks))
	for _, h := range hooks {
		results = append(results, e.Execute(ctx, h.hook, h.timeout, event))
	}
	return results
}

// Execute executes a single hook. A zero timeout uses the default.
func (e *Executor) Execute(ctx context.Context, hook Hook, timeout time.Duration, event *Event) ExecutionResult {
	result := ExecutionResult{
		HookName:  hook.Name(),
		EventType: event.Type,
		Timestamp: time.Now(),
	}

	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	hookCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := hook.Execute(hookCtx, event)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
	} else {
		result.Success = true
	}
	return result
}
