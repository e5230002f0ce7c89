package hooks

import (
	"context"
	"time"
)

// EventType represents the type of lifecycle event
type EventType string

const (
	// EventStepBefore fires before the first stage runs
	EventStepBefore EventType = "on_step_before"
	// EventStepComplete fires after the artifact was written
	EventStepComplete EventType = "on_step_complete"
	// EventStepFailed fires once when any stage fails
	EventStepFailed EventType = "on_step_failed"
)

// Event represents a lifecycle event that can trigger hooks
type Event struct {
	// Type is the event type
	Type EventType `json:"type"`

	// Timestamp when the event occurred
	Timestamp time.Time `json:"timestamp"`

	// RunID identifies the staging run
	RunID string `json:"runId"`

	// Debug asks hooks for verbose reporting. Failure events always set it.
	Debug bool `json:"debug"`

	// Data contains event-specific data
	Data map[string]interface{} `json:"data"`
}

// Hook is the interface that all hooks must implement
type Hook interface {
	// Name returns the hook name
	Name() string

	// EventTypes returns the events this hook handles
	EventTypes() []EventType

	// Execute runs the hook for an event
	Execute(ctx context.Context, event *Event) error

	// Enabled returns whether the hook is currently enabled
	Enabled() bool
}

// FailureMode determines what happens when a hook fails
type FailureMode string

const (
	// FailureIgnore logs at debug level and continues
	FailureIgnore FailureMode = "ignore"
	// FailureWarn logs a warning and continues
	FailureWarn FailureMode = "warn"
	// FailureFail turns the hook failure into an error
	FailureFail FailureMode = "fail"
)

// HookConfig represents hook configuration
type HookConfig struct {
	// Name of the hook
	Name string `yaml:"name" json:"name"`

	// Type of hook (script, webhook, log)
	Type string `yaml:"type" json:"type"`

	// Events this hook should trigger on
	Events []EventType `yaml:"events" json:"events"`

	// Enabled indicates if this hook is active
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Config contains hook-specific configuration
	Config map[string]interface{} `yaml:"config" json:"config"`

	// Timeout for hook execution
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// FailureMode is one of ignore, warn, fail. Empty means warn.
	FailureMode FailureMode `yaml:"failureMode" json:"failureMode"`
}

// ExecutionResult contains the result of hook execution
type ExecutionResult struct {
	HookName  string        `json:"hookName"`
	EventType EventType     `json:"eventType"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// HookFactory creates hooks from configuration
type HookFactory func(config *HookConfig) (Hook, error)

// DefaultTimeout is the default hook execution timeout
const DefaultTimeout = 30 * time.Second

// IsValidFailureMode checks if a failure mode is valid
func IsValidFailureMode(mode FailureMode) bool {
	switch mode {
	case FailureIgnore, FailureWarn, FailureFail, "":
		return true
	}
	return false
}

// NewEvent creates a new event
func NewEvent(eventType EventType, runID string, data map[string]interface{}) *Event {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     runID,
		Data:      data,
	}
}

// GetString gets a string value from event data
func (e *Event) GetString(key string) string {
	if val, ok := e.Data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetInt gets an int value from event data
func (e *Event) GetInt(key string) int {
	if val, ok := e.Data[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return 0
}
