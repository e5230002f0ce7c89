// Package forge opens pull requests on the code hosting service.
package forge

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Client authenticates against a hosting service.
type Client interface {
	Authenticate(ctx context.Context, user, token string) (Session, error)
}

// Session is an authenticated connection.
type Session interface {
	OpenRepository(ctx context.Context, owner, name string) (Repository, error)
}

// Repository is a hosted repository that accepts pull requests.
type Repository interface {
	// CreatePullRequest returns nil when the service created nothing.
	CreatePullRequest(ctx context.Context, pr NewPullRequest) (*PullRequest, error)
}

// NewPullRequest describes a pull request to open.
type NewPullRequest struct {
	Base  string
	Head  string
	Title string
	Body  string
}

// PullRequest is a created pull request.
type PullRequest struct {
	Number int
	URL    string
}

// RepositoryID names a hosted repository.
type RepositoryID struct {
	Host  string
	Owner string
	Name  string
}

func (r RepositoryID) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepository accepts "owner/name", "https://host/owner/name(.git)",
// "ssh://git@host/owner/name.git" and "git@host:owner/name.git".
// Host defaults to github.com.
func ParseRepository(s string) (RepositoryID, error) {
	id := RepositoryID{Host: "github.com"}
	raw := strings.TrimSpace(s)
	path := raw

	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return RepositoryID{}, fmt.Errorf("invalid repository %q: %w", s, err)
		}
		id.Host = u.Host
		path = u.Path
	case strings.Contains(raw, "@") && strings.Contains(raw, ":"):
		hostPart, rest, _ := strings.Cut(raw, ":")
		_, host, _ := strings.Cut(hostPart, "@")
		id.Host = host
		path = rest
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || id.Host == "" {
		return RepositoryID{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	id.Owner, id.Name = parts[0], parts[1]
	return id, nil
}
