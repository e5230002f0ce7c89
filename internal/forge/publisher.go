package forge

import (
	"context"
	stderrors "errors"

	"github.com/felixgeelhaar/clientstage/internal/errors"
	"github.com/felixgeelhaar/clientstage/internal/log"
)

// Fixed pull request parameters of a staging run.
const (
	BaseBranch       = "master"
	PullRequestTitle = "Artman Workflow Java sources staging"
	PullRequestBody  = "This PR is automatically generated by Artmanflow tool"
)

var errNoPullRequest = stderrors.New("service returned no pull request")

// PullRequestPublisher opens the staging pull request.
type PullRequestPublisher struct {
	Client Client
	Repo   RepositoryID
	User   string
	Token  string
	Logger *log.Logger
}

// Publish opens a pull request from head into BaseBranch and returns its URL.
// It makes exactly one attempt.
func (p *PullRequestPublisher) Publish(ctx context.Context, head string) (string, error) {
	logger := log.OrDefault(p.Logger)

	session, err := p.Client.Authenticate(ctx, p.User, p.Token)
	if err != nil {
		return "", errors.NewAPIAuthError(p.User, err)
	}

	repo, err := session.OpenRepository(ctx, p.Repo.Owner, p.Repo.Name)
	if err != nil {
		return "", errors.NewAPIRepositoryError(p.Repo.Owner, p.Repo.Name, err)
	}

	pr, err := repo.CreatePullRequest(ctx, NewPullRequest{
		Base:  BaseBranch,
		Head:  head,
		Title: PullRequestTitle,
		Body:  PullRequestBody,
	})
	if err != nil {
		return "", errors.NewPullRequestError(BaseBranch, head, err)
	}
	if pr == nil || pr.URL == "" {
		return "", errors.NewPullRequestError(BaseBranch, head, errNoPullRequest)
	}

	logger.Info("opened pull request", "repo", p.Repo.String(), "number", pr.Number, "url", pr.URL)
	return pr.URL, nil
}
