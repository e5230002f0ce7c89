package hooks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clientstage/internal/log"
)

// MockHook for testing
type MockHook struct {
	mu         sync.Mutex
	name       string
	eventTypes []EventType
	enabled    bool
	executed   int
	shouldFail bool
	order      *[]string
}

func (m *MockHook) Name() string            { return m.name }
func (m *MockHook) EventTypes() []EventType { return m.eventTypes }
func (m *MockHook) Enabled() bool           { return m.enabled }
func (m *MockHook) Execute(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executed++
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
	if m.shouldFail {
		return errors.New("mock failure")
	}
	return nil
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry(log.Discard())

	hook := &MockHook{
		name:       "test-hook",
		eventTypes: []EventType{EventStepBefore, EventStepComplete},
		enabled:    true,
	}

	require.NoError(t, registry.Register(hook, FailureWarn))

	assert.True(t, registry.HasHooksFor(EventStepBefore))
	assert.True(t, registry.HasHooksFor(EventStepComplete))
	assert.False(t, registry.HasHooksFor(EventStepFailed))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistryRegisterDisabled(t *testing.T) {
	registry := NewRegistry(log.Discard())

	hook := &MockHook{name: "disabled-hook", eventTypes: []EventType{EventStepFailed}}

	require.NoError(t, registry.Register(hook, FailureWarn))
	assert.False(t, registry.HasHooksFor(EventStepFailed))
	assert.Equal(t, 0, registry.Count())
}

func TestRegistryRegisterRejectsBadInput(t *testing.T) {
	registry := NewRegistry(log.Discard())

	assert.Error(t, registry.Register(nil, FailureWarn))
	assert.Error(t, registry.Register(&MockHook{name: "x", enabled: true}, FailureMode("explode")))
}

func TestRegistryTriggerRunsInRegistrationOrder(t *testing.T) {
	registry := NewRegistry(log.Discard())

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, registry.Register(&MockHook{
			name:       name,
			eventTypes: []EventType{EventStepFailed},
			enabled:    true,
			order:      &order,
		}, FailureWarn))
	}

	results := registry.Trigger(context.Background(), NewEvent(EventStepFailed, "run-1", nil))

	require.Len(t, results, 3)
	assert.Equal(t, []string{"first", "second", "third"}, order)
	for _, r := range results {
		assert.True(t, r.Success)
		assert.Equal(t, EventStepFailed, r.EventType)
	}
}

func TestRegistryDispatchFailureModes(t *testing.T) {
	tests := []struct {
		mode    FailureMode
		wantErr bool
	}{
		{FailureIgnore, false},
		{FailureWarn, false},
		{"", false},
		{FailureFail, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			registry := NewRegistry(log.Discard())
			hook := &MockHook{name: "failing", eventTypes: []EventType{EventStepComplete}, enabled: true, shouldFail: true}
			after := &MockHook{name: "after", eventTypes: []EventType{EventStepComplete}, enabled: true}
			require.NoError(t, registry.Register(hook, tt.mode))
			require.NoError(t, registry.Register(after, FailureWarn))

			err := registry.Dispatch(context.Background(), NewEvent(EventStepComplete, "run-1", nil))

			if tt.wantErr {
				assert.ErrorContains(t, err, "failing")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, after.executed, "later hooks still run")
		})
	}
}

func TestRegistryFromConfig(t *testing.T) {
	registry := NewRegistry(log.Discard())

	err := registry.RegisterFromConfig(&HookConfig{
		Name:    "notify",
		Type:    "log",
		Events:  []EventType{EventStepFailed},
		Enabled: true,
		Timeout: time.Second,
	})
	require.NoError(t, err)
	assert.True(t, registry.HasHooksFor(EventStepFailed))

	err = registry.RegisterFromConfig(&HookConfig{Name: "x", Type: "carrier-pigeon", Enabled: true})
	assert.ErrorContains(t, err, "unknown hook type")

	err = registry.RegisterFromConfig(&HookConfig{Name: "x", Type: "script", Enabled: true})
	assert.ErrorContains(t, err, "script path required")

	// Disabled hooks are skipped before the factory runs.
	assert.NoError(t, registry.RegisterFromConfig(&HookConfig{Name: "x", Type: "script"}))
	assert.Error(t, registry.RegisterFromConfig(nil))
}
