package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
)

// GitHubFactory builds an authenticated GitHub client per call. Tokens come from the request
// and are never kept.
type GitHubFactory struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewGitHubFactory points clients at apiURL, or api.github.com when apiURL is empty.
func NewGitHubFactory(apiURL string, timeout time.Duration) (*GitHubFactory, error) {
	f := &GitHubFactory{httpClient: &http.Client{Timeout: timeout}}
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("parse github api url: %w", err)
		}
		f.baseURL = u
	}
	return f, nil
}

func (f *GitHubFactory) Client(token string) *github.Client {
	gh := github.NewClient(f.httpClient).WithAuthToken(token)
	if f.baseURL != nil {
		gh.BaseURL = f.baseURL
	}
	return gh
}
