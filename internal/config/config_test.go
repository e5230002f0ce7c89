package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/hooks"
)

const fullConfig = `
generator_artifacts:
  sources_zip: /artifacts/java-sources.tar.gz
staging:
  git_repo: git@github.com:googleapis/api-client-staging.git
  git_branch: pubsub-regen
  git_user_name: release-bot
  git_security_token: tok
  run_tests: true
  build_command: "./gradlew clean test --info"
debug_mode: true
output_dir: /out
output_mode: "0666"
hooks:
  - name: notify
    type: script
    enabled: true
    events: [on_step_failed]
    failureMode: warn
    timeout: 10s
    config:
      script: /hooks/notify.sh
`

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig), "step.yaml")
	require.NoError(t, err)

	assert.Equal(t, "/artifacts/java-sources.tar.gz", cfg.GeneratorArtifacts.SourcesZip)
	assert.Equal(t, "pubsub-regen", cfg.Staging.GitBranch)
	assert.True(t, cfg.Staging.RunTests)
	assert.True(t, cfg.DebugMode)
	assert.Equal(t, DefaultNamespace, cfg.Staging.Namespace)
	assert.Equal(t, "staging", cfg.Staging.Workspace)

	mode, err := cfg.FileMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o666), mode)

	argv, err := cfg.BuildArgv()
	require.NoError(t, err)
	assert.Equal(t, []string{"./gradlew", "clean", "test", "--info"}, argv)

	require.Len(t, cfg.Hooks, 1)
	assert.Equal(t, []hooks.EventType{hooks.EventStepFailed}, cfg.Hooks[0].Events)
	assert.Equal(t, "10s", cfg.Hooks[0].Timeout.String())
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
generator_artifacts: {sources_zip: a.tgz}
staging: {git_repo: o/r, git_branch: b, git_user_name: u, git_security_token: t}
`), "inline")
	require.NoError(t, err)

	assert.False(t, cfg.Staging.RunTests)
	assert.False(t, cfg.DebugMode)
	assert.Equal(t, DefaultBuildCommand, cfg.Staging.BuildCommand)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultOutputMode, cfg.OutputMode)
}

func TestTokenFromEnvironment(t *testing.T) {
	t.Setenv(TokenEnv, "from-env")

	cfg, err := Parse([]byte(`
generator_artifacts: {sources_zip: a.tgz}
staging: {git_repo: o/r, git_branch: b, git_user_name: u}
`), "inline")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Staging.GitSecurityToken)
	assert.Equal(t, []string{"from-env"}, cfg.Secrets())
	assert.NotContains(t, cfg.String(), "from-env")
}

func TestMissingFields(t *testing.T) {
	t.Setenv(TokenEnv, "")

	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"archive", `staging: {git_repo: o/r, git_branch: b, git_user_name: u, git_security_token: t}`, "generator_artifacts.sources_zip"},
		{"repo", `{generator_artifacts: {sources_zip: a}, staging: {git_branch: b, git_user_name: u, git_security_token: t}}`, "staging.git_repo"},
		{"branch", `{generator_artifacts: {sources_zip: a}, staging: {git_repo: o/r, git_user_name: u, git_security_token: t}}`, "staging.git_branch"},
		{"token", `{generator_artifacts: {sources_zip: a}, staging: {git_repo: o/r, git_branch: b, git_user_name: u}}`, "staging.git_security_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "inline")
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestInvalidFields(t *testing.T) {
	base := "generator_artifacts: {sources_zip: a}\nstaging: {git_repo: o/r, git_branch: b, git_user_name: u, git_security_token: t, build_command: %q}\noutput_mode: %q\n"

	_, err := Parse([]byte(fmt.Sprintf(base, "./gradlew test", "rwx")), "inline")
	assert.True(t, errors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "output_mode")

	_, err = Parse([]byte(fmt.Sprintf(base, "'unterminated", "0644")), "inline")
	assert.True(t, errors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "build_command")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "step.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "release-bot", cfg.Staging.GitUserName)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	stepErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeConfigUnreadable, stepErr.Code)

	_, err = Parse([]byte("staging: [not, a, map]"), "bad.yaml")
	assert.True(t, errors.IsConfigurationError(err))
}
