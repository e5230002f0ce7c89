// Package publish records the staged tree as a commit and pushes it.
package publish

import (
	"context"

	"github.com/felixgeelhaar/clientstage/internal/git"
	"github.com/felixgeelhaar/clientstage/internal/log"
)

// CommitMessage is the message of every staging commit.
const CommitMessage = "Regenerate Java client sources"

// CommitPublisher commits the index and pushes the staging branch.
type CommitPublisher struct {
	Repo   *git.Repo
	Remote string
	Logger *log.Logger
}

// NewCommitPublisher pushes to git.DefaultRemote.
func NewCommitPublisher(repo *git.Repo, logger *log.Logger) *CommitPublisher {
	return &CommitPublisher{Repo: repo, Remote: git.DefaultRemote, Logger: log.OrDefault(logger)}
}

// Publish runs git status for the record, commits (empty commits allowed)
// and pushes branch with upstream tracking. A failing status is logged and
// ignored. Nothing is retried.
func (p *CommitPublisher) Publish(ctx context.Context, branch string) error {
	logger := log.OrDefault(p.Logger)

	status, err := p.Repo.Status(ctx)
	if err != nil {
		logger.WithError(err).Warn("git status failed, continuing")
	} else {
		logger.Debug("working tree status", "status", status)
	}

	if err := p.Repo.Commit(ctx, CommitMessage, true); err != nil {
		return err
	}

	remote := p.Remote
	if remote == "" {
		remote = git.DefaultRemote
	}
	if err := p.Repo.Push(ctx, remote, branch); err != nil {
		return err
	}
	logger.Info("pushed staging branch", "remote", remote, "branch", branch)
	return nil
}
