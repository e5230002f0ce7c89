package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/log"
)

// RegisterBuiltinHooks registers the script, webhook and log factories.
func RegisterBuiltinHooks(r *Registry) {
	runner := exec.NewLocalRunner(r.logger)
	r.RegisterFactory("script", func(config *HookConfig) (Hook, error) {
		return NewScriptHook(config, runner)
	})
	r.RegisterFactory("webhook", NewWebhookHook)
	r.RegisterFactory("log", func(config *HookConfig) (Hook, error) {
		return NewLogHook(config, r.logger), nil
	})
}

// ScriptHook executes a shell script
type ScriptHook struct {
	name       string
	eventTypes []EventType
	enabled    bool
	scriptPath string
	args       []string
	shell      string
	runner     exec.Runner
}

// NewScriptHook creates a new script hook
func NewScriptHook(config *HookConfig, runner exec.Runner) (Hook, error) {
	scriptPath, ok := config.Config["script"].(string)
	if !ok || scriptPath == "" {
		return nil, fmt.Errorf("script path required")
	}

	hook := &ScriptHook{
		name:       config.Name,
		eventTypes: config.Events,
		enabled:    config.Enabled,
		scriptPath: scriptPath,
		shell:      "/bin/sh",
		runner:     runner,
	}

	if argsList, ok := config.Config["args"].([]interface{}); ok {
		for _, arg := range argsList {
			if argStr, ok := arg.(string); ok {
				hook.args = append(hook.args, argStr)
			}
		}
	}

	if shell, ok := config.Config["shell"].(string); ok && shell != "" {
		hook.shell = shell
	}

	return hook, nil
}

func (h *ScriptHook) Name() string            { return h.name }
func (h *ScriptHook) EventTypes() []EventType { return h.eventTypes }
func (h *ScriptHook) Enabled() bool           { return h.enabled }

func (h *ScriptHook) Execute(ctx context.Context, event *Event) error {
	env := []string{
		fmt.Sprintf("HOOK_EVENT_TYPE=%s", event.Type),
		fmt.Sprintf("HOOK_RUN_ID=%s", event.RunID),
		fmt.Sprintf("HOOK_DEBUG=%t", event.Debug),
	}
	for key, value := range event.Data {
		if str, ok := value.(string); ok {
			env = append(env, fmt.Sprintf("HOOK_%s=%s", strings.ToUpper(key), str))
		}
	}

	_, err := h.runner.Run(ctx, exec.Command{
		Name: h.shell,
		Args: append([]string{h.scriptPath}, h.args...),
		Env:  env,
	})
	if err != nil {
		return fmt.Errorf("script failed: %w", err)
	}
	return nil
}

// WebhookHook sends HTTP POST requests
type WebhookHook struct {
	name       string
	eventTypes []EventType
	enabled    bool
	url        string
	headers    map[string]string
	client     *http.Client
}

// NewWebhookHook creates a new webhook hook
func NewWebhookHook(config *HookConfig) (Hook, error) {
	url, ok := config.Config["url"].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("webhook URL required")
	}

	hook := &WebhookHook{
		name:       config.Name,
		eventTypes: config.Events,
		enabled:    config.Enabled,
		url:        url,
		headers:    make(map[string]string),
		client:     &http.Client{Timeout: config.Timeout},
	}

	if headersMap, ok := config.Config["headers"].(map[string]interface{}); ok {
		for key, value := range headersMap {
			if valStr, ok := value.(string); ok {
				hook.headers[key] = valStr
			}
		}
	}

	return hook, nil
}

func (h *WebhookHook) Name() string            { return h.name }
func (h *WebhookHook) EventTypes() []EventType { return h.eventTypes }
func (h *WebhookHook) Enabled() bool           { return h.enabled }

func (h *WebhookHook) Execute(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range h.headers {
		req.Header.Set(key, value)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogHook reports events through the step logger. With Debug set on the
// event every data field is logged, otherwise only a one-line summary.
type LogHook struct {
	name       string
	eventTypes []EventType
	enabled    bool
	logger     *log.Logger
}

// NewLogHook creates a log hook writing to logger.
func NewLogHook(config *HookConfig, logger *log.Logger) *LogHook {
	return &LogHook{
		name:       config.Name,
		eventTypes: config.Events,
		enabled:    config.Enabled,
		logger:     log.OrDefault(logger),
	}
}

func (h *LogHook) Name() string            { return h.name }
func (h *LogHook) EventTypes() []EventType { return h.eventTypes }
func (h *LogHook) Enabled() bool           { return h.enabled }

func (h *LogHook) Execute(ctx context.Context, event *Event) error {
	args := []any{"event", string(event.Type), "run_id", event.RunID}
	if event.Debug {
		keys := make([]string, 0, len(event.Data))
		for k := range event.Data {
			if k == "error" || k == "pr_url" {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			args = append(args, k, event.Data[k])
		}
	}

	switch event.Type {
	case EventStepFailed:
		h.logger.ErrorContext(ctx, "staging step failed", append(args, "error", event.GetString("error"))...)
	case EventStepComplete:
		h.logger.InfoContext(ctx, "staging step complete", append(args, "pr_url", event.GetString("pr_url"))...)
	default:
		h.logger.DebugContext(ctx, "staging step event", args...)
	}
	return nil
}
