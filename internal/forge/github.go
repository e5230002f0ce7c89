package forge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v48/github"
	"golang.org/x/oauth2"
)

// GitHub is a Client for github.com or a GitHub Enterprise server.
type GitHub struct {
	// APIURL selects an Enterprise API endpoint; empty means github.com.
	APIURL string
	// HTTPClient is the transport wrapped by the token source.
	HTTPClient *http.Client
}

// NewGitHub returns a GitHub client for apiURL.
func NewGitHub(apiURL string) *GitHub {
	return &GitHub{APIURL: apiURL}
}

// Authenticate checks the token by fetching the user it belongs to.
func (g *GitHub) Authenticate(ctx context.Context, user, token string) (Session, error) {
	if g.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(ctx, ts)

	client := github.NewClient(httpClient)
	if g.APIURL != "" {
		var err error
		client, err = github.NewEnterpriseClient(g.APIURL, g.APIURL, httpClient)
		if err != nil {
			return nil, fmt.Errorf("cannot create GitHub Enterprise client for %s: %w", g.APIURL, err)
		}
	}

	// user is the commit identity; a bot token may belong to another login.
	me, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, err
	}
	return &githubSession{client: client, login: me.GetLogin()}, nil
}

type githubSession struct {
	client *github.Client
	login  string
}

func (s *githubSession) OpenRepository(ctx context.Context, owner, name string) (Repository, error) {
	if _, _, err := s.client.Repositories.Get(ctx, owner, name); err != nil {
		return nil, fmt.Errorf("as %s: %w", s.login, err)
	}
	return &githubRepository{client: s.client, owner: owner, name: name}, nil
}

type githubRepository struct {
	client *github.Client
	owner  string
	name   string
}

func (r *githubRepository) CreatePullRequest(ctx context.Context, pr NewPullRequest) (*PullRequest, error) {
	created, _, err := r.client.PullRequests.Create(ctx, r.owner, r.name, &github.NewPullRequest{
		Title: github.String(pr.Title),
		Head:  github.String(pr.Head),
		Base:  github.String(pr.Base),
		Body:  github.String(pr.Body),
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, nil
	}
	return &PullRequest{Number: created.GetNumber(), URL: created.GetHTMLURL()}, nil
}
