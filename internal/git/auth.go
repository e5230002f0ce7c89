package git

import (
	"fmt"
	"net/url"
	"strings"
)

// AuthenticatedURL builds an HTTPS clone URL carrying user and token.
// host defaults to github.com.
func AuthenticatedURL(host, owner, name, user, token string) string {
	if host == "" {
		host = "github.com"
	}
	u := url.URL{
		Scheme: "https",
		Host:   host,
		Path:   fmt.Sprintf("/%s/%s.git", owner, strings.TrimSuffix(name, ".git")),
	}
	if token != "" {
		u.User = url.UserPassword(user, token)
	}
	return u.String()
}
