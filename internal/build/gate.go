// Package build runs the optional build and test gate over the extracted
// sources.
package build

import (
	"context"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/log"
)

// Gate runs Command in the extracted namespace directory when Enabled.
type Gate struct {
	Enabled bool
	// Command is the build argv, e.g. ["./gradlew", "clean", "test"].
	Command []string
	Runner  exec.Runner
	Logger  *log.Logger
}

// Run executes the build in dir, usually <workspace>/generated/<namespace>.
// It reports whether the command actually ran. A disabled gate never
// invokes the runner.
func (g *Gate) Run(ctx context.Context, dir string) (bool, error) {
	logger := log.OrDefault(g.Logger)
	if !g.Enabled {
		logger.Info("build gate disabled, skipping")
		return false, nil
	}

	if len(g.Command) == 0 {
		return false, errors.NewConfigMissingError("staging.build_command")
	}

	logger.Info("running build gate", "dir", dir)
	_, err := g.Runner.Run(ctx, exec.Command{
		Name: g.Command[0],
		Args: g.Command[1:],
		Dir:  dir,
	})
	return true, err
}
