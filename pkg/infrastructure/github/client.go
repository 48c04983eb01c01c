package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v28/github"
	"golang.org/x/oauth2"
)

// Client implements the source-control interface over the GitHub API.
type Client struct {
	gh             *gh.Client
	declarativeLoc string
}

// NewClient authenticates with a personal access token; an empty token
// falls back to unauthenticated access for public repositories.
func NewClient(ctx context.Context, token, declarativeLoc string) *Client {
	var hc *http.Client
	if token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	if declarativeLoc == "" {
		declarativeLoc = "preview.yaml"
	}
	return &Client{gh: gh.NewClient(hc), declarativeLoc: declarativeLoc}
}

func (c *Client) GetShaForBranch(ctx context.Context, repo, branch string) (string, bool, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", false, err
	}
	b, resp, err := c.gh.Repositories.GetBranch(ctx, owner, name, branch)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get branch %s of %s: %w", branch, repo, err)
	}
	return b.GetCommit().GetSHA(), true, nil
}

func (c *Client) FetchDeclarativeConfig(ctx context.Context, repo, branch string) ([]byte, bool, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, false, err
	}
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, name, c.declarativeLoc,
		&gh.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to fetch %s from %s@%s: %w", c.declarativeLoc, repo, branch, err)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, false, err
	}
	return []byte(content), true, nil
}

func splitRepo(repo string) (string, string, error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository %q is not in owner/name form", repo)
	}
	return parts[0], parts[1], nil
}
