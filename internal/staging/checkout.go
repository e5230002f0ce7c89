package staging

import (
	"context"

	"github.com/felixgeelhaar/clientstage/internal/git"
	"github.com/felixgeelhaar/clientstage/internal/log"
)

// Prepare makes repo.Dir a checkout of branch. The repository is cloned from
// cloneURL first when the directory is not a git working tree yet. The
// branch is created or reset at the current HEAD.
func Prepare(ctx context.Context, repo *git.Repo, cloneURL, branch string, logger *log.Logger) error {
	logger = log.OrDefault(logger)
	if !repo.IsWorkTree() {
		logger.Info("cloning staging repository", "dir", repo.Dir)
		if _, err := git.Clone(ctx, repo.Runner, cloneURL, repo.Dir); err != nil {
			return err
		}
	}
	logger.Debug("checking out branch", "branch", branch)
	return repo.CheckoutBranch(ctx, branch)
}
