package health

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/git"
)

// MinGitVersion is the oldest git the staging commands are known to work with.
const MinGitVersion = ">= 2.0.0"

// GitChecker checks if Git is installed and recent enough.
type GitChecker struct {
	runner exec.Runner
}

// NewGitChecker creates a new Git health checker.
func NewGitChecker(runner exec.Runner) *GitChecker {
	return &GitChecker{runner: runner}
}

// Name returns the name of this health check.
func (c *GitChecker) Name() string {
	return "git-binary"
}

// Check runs `git --version`.
// Returns:
//   - Healthy if Git is installed with version >= 2.0
//   - Degraded if the version is older or cannot be parsed
//   - Unhealthy if Git cannot be executed
func (c *GitChecker) Check(ctx context.Context) *Result {
	version, err := git.Version(ctx, c.runner)
	if err != nil {
		if errors.IsCommandFailure(err) {
			return Unhealthy("git cannot be executed").
				WithDetail("error", err.Error()).
				WithDetail("suggestion", "Install Git from https://git-scm.com/downloads")
		}
		return Degraded("git installed but version cannot be parsed").
			WithDetail("error", err.Error())
	}

	constraint, err := semver.NewConstraint(MinGitVersion)
	if err != nil {
		return Unhealthy("invalid git version constraint").WithDetail("error", err.Error())
	}
	if !constraint.Check(version) {
		return Degraded("git version is older than 2.0").
			WithDetail("version", version.String()).
			WithDetail("suggestion", "Upgrade Git to version 2.0 or later")
	}

	return Healthy("git is installed and accessible").
		WithDetail("version", version.String())
}

// TarChecker checks for a tar that understands --wildcards.
type TarChecker struct {
	runner exec.Runner
}

// NewTarChecker creates a new tar health checker.
func NewTarChecker(runner exec.Runner) *TarChecker {
	return &TarChecker{runner: runner}
}

// Name returns the name of this health check.
func (c *TarChecker) Name() string {
	return "tar-binary"
}

// Check runs `tar --version`. Non-GNU tars are Degraded because extraction
// relies on --wildcards.
func (c *TarChecker) Check(ctx context.Context) *Result {
	res, err := c.runner.Run(ctx, exec.Command{Name: "tar", Args: []string{"--version"}})
	if err != nil {
		return Unhealthy("tar cannot be executed").
			WithDetail("error", err.Error())
	}

	firstLine, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	if !strings.Contains(firstLine, "GNU tar") {
		return Degraded("tar is not GNU tar").
			WithDetail("version", firstLine).
			WithDetail("suggestion", "Install GNU tar; extraction uses --wildcards")
	}
	return Healthy("GNU tar is installed").WithDetail("version", firstLine)
}

// WorkspaceChecker checks the staging working tree.
type WorkspaceChecker struct {
	dir string
}

// NewWorkspaceChecker creates a checker for the working tree at dir.
func NewWorkspaceChecker(dir string) *WorkspaceChecker {
	return &WorkspaceChecker{dir: dir}
}

// Name returns the name of this health check.
func (c *WorkspaceChecker) Name() string {
	return "workspace"
}

// Check reports Healthy for a git working tree and Degraded for a missing
// one, which the run clones on demand.
func (c *WorkspaceChecker) Check(ctx context.Context) *Result {
	abs, err := filepath.Abs(c.dir)
	if err != nil {
		return Unhealthy("invalid workspace path").WithDetail("error", err.Error())
	}
	if !git.New(abs, nil).IsWorkTree() {
		return Degraded("workspace is not a git working tree yet").
			WithDetail("path", abs).
			WithDetail("suggestion", "The run clones staging.git_repo into it")
	}
	return Healthy("workspace is a git working tree").WithDetail("path", abs)
}
