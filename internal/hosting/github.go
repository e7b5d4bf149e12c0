package hosting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// templatePaths are the locations GitHub itself checks for a pull request
// template, in lookup order.
var templatePaths = []string{
	".github/PULL_REQUEST_TEMPLATE.md",
	"PULL_REQUEST_TEMPLATE.md",
	"docs/PULL_REQUEST_TEMPLATE.md",
	".github/pull_request_template.md",
}

type NewPR struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// Client wraps the GitHub API for one repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

func NewClient(token string, ref RepoRef) *Client {
	return &Client{gh: newGitHubClient(token), owner: ref.Owner, repo: ref.Repo}
}

func newGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(&http.Client{Timeout: 30 * time.Second})
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = 30 * time.Second
	return github.NewClient(tc)
}

// SetBaseURL points the client at a different API endpoint. Test hook.
func (c *Client) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	c.gh.BaseURL = u
	return nil
}

// Template returns the repository's pull request template, trying the
// standard locations in order. A repository without one yields "".
func (c *Client) Template(ctx context.Context) (string, error) {
	for _, path := range templatePaths {
		content, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, nil)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				continue
			}
			return "", fmt.Errorf("fetch template %s: %w", path, err)
		}
		if content == nil {
			continue
		}
		text, err := content.GetContent()
		if err != nil {
			return "", fmt.Errorf("decode template %s: %w", path, err)
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return "", nil
}

// FindPR returns the open pull request for the given head branch, or nil
// when none exists.
func (c *Client) FindPR(ctx context.Context, head string) (*github.PullRequest, error) {
	prs, _, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		State:       "open",
		Head:        c.owner + ":" + head,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("list pull requests for %s: %w", head, err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return prs[0], nil
}

// CreatePR opens a pull request and returns its web URL.
func (c *Client) CreatePR(ctx context.Context, pr NewPR) (string, error) {
	created, _, err := c.gh.PullRequests.Create(ctx, c.owner, c.repo, &github.NewPullRequest{
		Title: github.String(pr.Title),
		Body:  github.String(pr.Body),
		Head:  github.String(pr.Head),
		Base:  github.String(pr.Base),
		Draft: github.Bool(pr.Draft),
	})
	if err != nil {
		return "", fmt.Errorf("create pull request: %w", err)
	}
	return created.GetHTMLURL(), nil
}
