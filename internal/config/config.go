// Package config loads the execution configuration of a staging run.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/hooks"
)

// TokenEnv fills staging.git_security_token when the file leaves it empty.
const TokenEnv = "CLIENTSTAGE_GIT_SECURITY_TOKEN"

// Defaults for the optional fields.
const (
	DefaultNamespace    = "java"
	DefaultBuildCommand = "./gradlew clean test"
	DefaultOutputMode   = "0644"
	DefaultOutputDir    = "output"
)

// ExecutionConfig is the configuration of one staging run.
type ExecutionConfig struct {
	GeneratorArtifacts GeneratorArtifacts `yaml:"generator_artifacts"`
	Staging            StagingConfig      `yaml:"staging"`

	// DebugMode turns on verbose failure reporting and streams command output.
	DebugMode bool `yaml:"debug_mode"`

	// OutputDir is where the {pr_url} artifact is written.
	OutputDir string `yaml:"output_dir"`

	// OutputMode is the octal permission applied to the artifact.
	OutputMode string `yaml:"output_mode"`

	Hooks []hooks.HookConfig `yaml:"hooks"`
}

// GeneratorArtifacts points at the output of the generation step.
type GeneratorArtifacts struct {
	SourcesZip string `yaml:"sources_zip"`
}

// StagingConfig describes the staging repository.
type StagingConfig struct {
	GitRepo          string `yaml:"git_repo"`
	GitBranch        string `yaml:"git_branch"`
	GitUserName      string `yaml:"git_user_name"`
	GitSecurityToken string `yaml:"git_security_token"`
	RunTests         bool   `yaml:"run_tests"`

	// Workspace is the checkout path of the staging repository.
	Workspace string `yaml:"workspace"`

	// Namespace is the single top-level archive directory that is extracted.
	Namespace string `yaml:"namespace"`

	// BuildCommand runs inside generated/<namespace> when RunTests is set.
	BuildCommand string `yaml:"build_command"`

	// APIURL selects a GitHub Enterprise API endpoint.
	APIURL string `yaml:"api_url"`
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*ExecutionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigUnreadableError(path, err)
	}
	return Parse(data, path)
}

// Parse decodes YAML configuration. source names the input in errors.
func Parse(data []byte, source string) (*ExecutionConfig, error) {
	cfg := &ExecutionConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigUnreadableError(source, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills optional fields and the token from the environment.
func (c *ExecutionConfig) ApplyDefaults() {
	if c.Staging.GitSecurityToken == "" {
		c.Staging.GitSecurityToken = os.Getenv(TokenEnv)
	}
	if c.Staging.Namespace == "" {
		c.Staging.Namespace = DefaultNamespace
	}
	if c.Staging.BuildCommand == "" {
		c.Staging.BuildCommand = DefaultBuildCommand
	}
	if c.Staging.Workspace == "" && c.Staging.GitRepo != "" {
		c.Staging.Workspace = "staging"
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.OutputMode == "" {
		c.OutputMode = DefaultOutputMode
	}
}

// Validate reports the first missing or malformed field.
func (c *ExecutionConfig) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"generator_artifacts.sources_zip", c.GeneratorArtifacts.SourcesZip},
		{"staging.git_repo", c.Staging.GitRepo},
		{"staging.git_branch", c.Staging.GitBranch},
		{"staging.git_user_name", c.Staging.GitUserName},
		{"staging.git_security_token", c.Staging.GitSecurityToken},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.NewConfigMissingError(r.field)
		}
	}

	if _, err := c.FileMode(); err != nil {
		return err
	}
	if _, err := c.BuildArgv(); err != nil {
		return err
	}
	return nil
}

// FileMode parses OutputMode as an octal permission.
func (c *ExecutionConfig) FileMode() (os.FileMode, error) {
	mode, err := strconv.ParseUint(c.OutputMode, 8, 32)
	if err != nil || mode > 0o777 {
		return 0, errors.NewConfigInvalidError("output_mode", c.OutputMode, "expected an octal permission such as 0644")
	}
	return os.FileMode(mode), nil
}

// BuildArgv splits the build command with shell quoting rules.
func (c *ExecutionConfig) BuildArgv() ([]string, error) {
	argv, err := shlex.Split(c.Staging.BuildCommand)
	if err != nil {
		return nil, errors.NewConfigInvalidError("staging.build_command", c.Staging.BuildCommand, err.Error())
	}
	if len(argv) == 0 {
		return nil, errors.NewConfigInvalidError("staging.build_command", c.Staging.BuildCommand, "empty command")
	}
	return argv, nil
}

// Secrets returns values that must never be logged.
func (c *ExecutionConfig) Secrets() []string {
	return []string{c.Staging.GitSecurityToken}
}

// String renders the configuration with the token masked.
func (c *ExecutionConfig) String() string {
	return fmt.Sprintf("archive=%s repo=%s branch=%s user=%s run_tests=%t namespace=%s workspace=%s debug=%t",
		c.GeneratorArtifacts.SourcesZip, c.Staging.GitRepo, c.Staging.GitBranch, c.Staging.GitUserName,
		c.Staging.RunTests, c.Staging.Namespace, c.Staging.Workspace, c.DebugMode)
}
