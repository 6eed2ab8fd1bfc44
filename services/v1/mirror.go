package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/go-github/v62/github"
)

// MirrorCredentials identify the repository holding the mirror file. They arrive with each
// request and are never stored.
type MirrorCredentials struct {
	Token string
	Owner string
	Repo  string
}

// NewMirrorCredentials returns nil when no credential was given, which disables mirroring.
// Partially supplied credentials fail with ErrIncompleteMirrorCredentials.
func NewMirrorCredentials(token, owner, repo string) (*MirrorCredentials, error) {
	token, owner, repo = strings.TrimSpace(token), strings.TrimSpace(owner), strings.TrimSpace(repo)
	switch {
	case token == "" && owner == "" && repo == "":
		return nil, nil
	case token == "" || owner == "" || repo == "":
		return nil, ErrIncompleteMirrorCredentials
	}
	return &MirrorCredentials{Token: token, Owner: owner, Repo: repo}, nil
}

// MirrorFile is the current state of the mirror file. Token is the opaque version the remote
// compares against on a conditional write.
type MirrorFile struct {
	Content []byte
	Token   string
}

// Mirror is a remote file host offering compare-and-swap writes.
type Mirror interface {
	ReadCurrent(ctx context.Context, creds MirrorCredentials, path string) (MirrorFile, error)
	WriteIfMatch(ctx context.Context, creds MirrorCredentials, path string, content []byte, expectedToken, message string) error
	Create(ctx context.Context, creds MirrorCredentials, path string, content []byte, message string) error
}

// GitHubClients hands out a GitHub API client authenticated with token.
type GitHubClients interface {
	Client(token string) *github.Client
}

// GitHubMirror keeps the mirror file in a GitHub repository through the contents API. The blob
// sha is the version token.
type GitHubMirror struct {
	clients GitHubClients
}

func NewGitHubMirror(clients GitHubClients) *GitHubMirror {
	return &GitHubMirror{clients: clients}
}

func (g *GitHubMirror) ReadCurrent(ctx context.Context, creds MirrorCredentials, path string) (MirrorFile, error) {
	gh := g.clients.Client(creds.Token)
	file, _, _, err := gh.Repositories.GetContents(ctx, creds.Owner, creds.Repo, path, nil)
	if err != nil {
		return MirrorFile{}, classifyMirrorError("read", err)
	}
	if file == nil {
		// path is a directory
		return MirrorFile{}, &MirrorError{Op: "read", Kind: ErrMirrorNotFound, Err: errors.New(path + " is not a file")}
	}
	content, err := file.GetContent()
	if err != nil {
		return MirrorFile{}, &MirrorError{Op: "read", Kind: ErrMirrorUnavailable, Err: err}
	}
	return MirrorFile{Content: []byte(content), Token: file.GetSHA()}, nil
}

func (g *GitHubMirror) WriteIfMatch(ctx context.Context, creds MirrorCredentials, path string, content []byte, expectedToken, message string) error {
	gh := g.clients.Client(creds.Token)
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		SHA:     github.String(expectedToken),
	}
	if _, _, err := gh.Repositories.UpdateFile(ctx, creds.Owner, creds.Repo, path, opts); err != nil {
		return classifyMirrorError("write", err)
	}
	return nil
}

func (g *GitHubMirror) Create(ctx context.Context, creds MirrorCredentials, path string, content []byte, message string) error {
	gh := g.clients.Client(creds.Token)
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
	}
	if _, _, err := gh.Repositories.CreateFile(ctx, creds.Owner, creds.Repo, path, opts); err != nil {
		return classifyMirrorError("create", err)
	}
	return nil
}

func classifyMirrorError(op string, err error) error {
	me := &MirrorError{Op: op, Kind: ErrMirrorUnavailable, Err: err}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse
	switch {
	case errors.As(err, &rateErr):
		if rateErr.Response != nil {
			me.StatusCode = rateErr.Response.StatusCode
		}
	case errors.As(err, &abuseErr):
		if abuseErr.Response != nil {
			me.StatusCode = abuseErr.Response.StatusCode
		}
	case errors.As(err, &respErr) && respErr.Response != nil:
		me.StatusCode = respErr.Response.StatusCode
		switch me.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			me.Kind = ErrMirrorAuth
		case http.StatusNotFound:
			me.Kind = ErrMirrorNotFound
		case http.StatusConflict, http.StatusUnprocessableEntity:
			// 409 on a sha mismatch, 422 when a sha is required or no longer valid
			me.Kind = ErrMirrorConflict
		}
	}
	return me
}
