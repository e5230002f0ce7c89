// Package git drives the git binary inside one working tree.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/felixgeelhaar/clientstage/internal/exec"
)

// DefaultRemote is the remote the staging branch is pushed to.
const DefaultRemote = "origin"

// Repo runs git commands in a working tree.
type Repo struct {
	// Dir is the root of the working tree.
	Dir    string
	Runner exec.Runner
}

// New returns a Repo rooted at dir.
func New(dir string, runner exec.Runner) *Repo {
	return &Repo{Dir: dir, Runner: runner}
}

// Run runs a git subcommand in the working tree.
// Omit the 'git' part of the command.
func (r *Repo) Run(ctx context.Context, args ...string) (*exec.Result, error) {
	return r.Runner.Run(ctx, exec.Command{Name: "git", Args: args, Dir: r.Dir})
}

// IsWorkTree reports whether Dir holds a git checkout.
func (r *Repo) IsWorkTree() bool {
	_, err := os.Stat(filepath.Join(r.Dir, ".git"))
	return err == nil
}

// RemoveRecursive untracks and deletes path. A path that matches nothing is
// not an error.
func (r *Repo) RemoveRecursive(ctx context.Context, path string) error {
	_, err := r.Run(ctx, "rm", "-r", "--force", "--ignore-unmatch", path)
	return err
}

// Add stages path.
func (r *Repo) Add(ctx context.Context, path string) error {
	_, err := r.Run(ctx, "add", path)
	return err
}

// Status returns the output of git status.
func (r *Repo) Status(ctx context.Context) (string, error) {
	res, err := r.Run(ctx, "status")
	if res == nil {
		return "", err
	}
	return res.Stdout, err
}

// Commit records the index, allowing an empty diff when allowEmpty is set.
func (r *Repo) Commit(ctx context.Context, message string, allowEmpty bool) error {
	args := []string{"commit"}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}
	args = append(args, "-m", message)
	_, err := r.Run(ctx, args...)
	return err
}

// Push pushes branch to remote and sets it as upstream.
func (r *Repo) Push(ctx context.Context, remote, branch string) error {
	_, err := r.Run(ctx, "push", "-u", remote, branch)
	return err
}

// CheckoutBranch creates or resets branch at HEAD and switches to it.
func (r *Repo) CheckoutBranch(ctx context.Context, branch string) error {
	_, err := r.Run(ctx, "checkout", "-B", branch)
	return err
}

// Clone clones url into dir, using runner from the parent of dir.
func Clone(ctx context.Context, runner exec.Runner, url, dir string) (*Repo, error) {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create clone parent %s: %w", parent, err)
	}
	if _, err := runner.Run(ctx, exec.Command{Name: "git", Args: []string{"clone", url, dir}, Dir: parent}); err != nil {
		return nil, err
	}
	return New(dir, runner), nil
}

// Version returns the installed git version.
func Version(ctx context.Context, runner exec.Runner) (*semver.Version, error) {
	res, err := runner.Run(ctx, exec.Command{Name: "git", Args: []string{"--version"}})
	if err != nil {
		return nil, err
	}
	return ParseVersion(res.Stdout)
}

// ParseVersion extracts the version from `git --version` output, e.g.
// "git version 2.42.0" or "git version 2.39.3 (Apple Git-145)".
func ParseVersion(output string) (*semver.Version, error) {
	fields := strings.Fields(output)
	if len(fields) < 3 || fields[0] != "git" || fields[1] != "version" {
		return nil, fmt.Errorf("unexpected git version output: %q", strings.TrimSpace(output))
	}

	// Platform builds append suffixes such as ".windows.1".
	raw := fields[2]
	parts := strings.SplitN(raw, ".", 4)
	if len(parts) > 3 {
		raw = strings.Join(parts[:3], ".")
	}
	return semver.NewVersion(raw)
}
