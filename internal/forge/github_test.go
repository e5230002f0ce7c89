package forge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnterpriseServer(t *testing.T, prStatus int) (*httptest.Server, *map[string]string) {
	t.Helper()
	created := map[string]string{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t0ken" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"login":"release-bot"}`))
	})
	mux.HandleFunc("/api/v3/repos/googleapis/staging", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"staging","owner":{"login":"googleapis"}}`))
	})
	mux.HandleFunc("/api/v3/repos/googleapis/staging/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(prStatus)
		if prStatus == http.StatusCreated {
			_, _ = w.Write([]byte(`{"number":12,"html_url":"https://ghe.example.com/googleapis/staging/pull/12"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Validation Failed"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &created
}

func TestGitHubCreatesPullRequest(t *testing.T) {
	server, created := newEnterpriseServer(t, http.StatusCreated)
	p := &PullRequestPublisher{
		Client: NewGitHub(server.URL),
		Repo:   RepositoryID{Owner: "googleapis", Name: "staging"},
		User:   "release-bot",
		Token:  "t0ken",
	}

	url, err := p.Publish(context.Background(), "pubsub-regen")

	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/googleapis/staging/pull/12", url)
	assert.Equal(t, "master", (*created)["base"])
	assert.Equal(t, "pubsub-regen", (*created)["head"])
	assert.Equal(t, PullRequestTitle, (*created)["title"])
	assert.Equal(t, PullRequestBody, (*created)["body"])
}

func TestGitHubRejectsBadToken(t *testing.T) {
	server, _ := newEnterpriseServer(t, http.StatusCreated)

	_, err := NewGitHub(server.URL).Authenticate(context.Background(), "release-bot", "wrong")
	assert.Error(t, err)
}

func TestGitHubAcceptsTokenOfAnotherLogin(t *testing.T) {
	server, _ := newEnterpriseServer(t, http.StatusCreated)

	session, err := NewGitHub(server.URL).Authenticate(context.Background(), "commit-identity", "t0ken")
	require.NoError(t, err)
	assert.Equal(t, "release-bot", session.(*githubSession).login)
}

func TestGitHubCreateFailure(t *testing.T) {
	server, _ := newEnterpriseServer(t, http.StatusUnprocessableEntity)
	session, err := NewGitHub(server.URL).Authenticate(context.Background(), "release-bot", "t0ken")
	require.NoError(t, err)
	repo, err := session.OpenRepository(context.Background(), "googleapis", "staging")
	require.NoError(t, err)

	pr, err := repo.CreatePullRequest(context.Background(), NewPullRequest{Base: "master", Head: "b"})

	assert.Error(t, err)
	assert.Nil(t, pr)
}
