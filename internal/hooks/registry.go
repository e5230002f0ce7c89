package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/clientstage/internal/log"
)

type registered struct {
	hook    Hook
	mode    FailureMode
	timeout time.Duration
}

// Registry manages hooks and their lifecycle
type Registry struct {
	mu sync.RWMutex

	// hooks maps event types to registered hooks
	hooks map[EventType][]registered

	// factories maps hook types to their factory functions
	factories map[string]HookFactory

	executor *Executor
	logger   *log.Logger
}

// NewRegistry creates a new hook registry with the built-in factories
func NewRegistry(logger *log.Logger) *Registry {
	r := &Registry{
		hooks:     make(map[EventType][]registered),
		factories: make(map[string]HookFactory),
		executor:  NewExecutor(),
		logger:    log.OrDefault(logger),
	}
	RegisterBuiltinHooks(r)
	return r
}

// RegisterFactory registers a hook factory
func (r *Registry) RegisterFactory(hookType string, factory HookFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[hookType] = factory
}

// Register adds a hook with the given failure mode
func (r *Registry) Register(hook Hook, mode FailureMode) error {
	return r.register(hook, mode, 0)
}

func (r *Registry) register(hook Hook, mode FailureMode, timeout time.Duration) error {
	if hook == nil {
		return fmt.Errorf("hook cannot be nil")
	}
	if !IsValidFailureMode(mode) {
		return fmt.Errorf("invalid failure mode %q for hook %s", mode, hook.Name())
	}
	if mode == "" {
		mode = FailureWarn
	}

	if !hook.Enabled() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, eventType := range hook.EventTypes() {
		r.hooks[eventType] = append(r.hooks[eventType], registered{hook: hook, mode: mode, timeout: timeout})
	}
	return nil
}

// RegisterFromConfig creates and registers a hook from configuration
func (r *Registry) RegisterFromConfig(config *HookConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if !config.Enabled {
		return nil
	}

	r.mu.RLock()
	factory, exists := r.factories[config.Type]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("unknown hook type: %s", config.Type)
	}

	hook, err := factory(config)
	if err != nil {
		return fmt.Errorf("failed to create hook %s: %w", config.Name, err)
	}

	return r.register(hook, config.FailureMode, config.Timeout)
}

// Trigger executes all hooks registered for an event type
func (r *Registry) Trigger(ctx context.Context, event *Event) []ExecutionResult {
	r.mu.RLock()
	hooks := append([]registered(nil), r.hooks[event.Type]...)
	r.mu.RUnlock()

	return r.executor.ExecuteAll(ctx, hooks, event)
}

// Dispatch triggers an event and applies each hook's failure mode.
// It returns an error only for failed hooks in fail mode.
func (r *Registry) Dispatch(ctx context.Context, event *Event) error {
	results := r.Trigger(ctx, event)

	r.mu.RLock()
	modes := make(map[string]FailureMode)
	for _, h := range r.hooks[event.Type] {
		modes[h.hook.Name()] = h.mode
	}
	r.mu.RUnlock()

	var firstErr error
	for _, res := range results {
		if res.Success {
			continue
		}
		args := []any{"hook", res.HookName, "event", string(res.EventType), "error", res.Error, "duration", res.Duration}
		switch modes[res.HookName] {
		case FailureIgnore:
			r.logger.Debug("hook failed", args...)
		case FailureFail:
			r.logger.Error("hook failed", args...)
			if firstErr == nil {
				firstErr = fmt.Errorf("hook %s failed: %s", res.HookName, res.Error)
			}
		default:
			r.logger.Warn("hook failed", args...)
		}
	}
	return firstErr
}

// GetHooks returns all hooks for an event type
func (r *Registry) GetHooks(eventType EventType) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Hook, 0, len(r.hooks[eventType]))
	for _, h := range r.hooks[eventType] {
		result = append(result, h.hook)
	}
	return result
}

// Count returns the number of distinct registered hooks
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, hooks := range r.hooks {
		for _, h := range hooks {
			seen[h.hook.Name()] = true
		}
	}
	return len(seen)
}

// HasHooksFor checks if any hooks are registered for an event type
func (r *Registry) HasHooksFor(eventType EventType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.hooks[eventType]) > 0
}
