package ticket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/tidwall/gjson"

	"github.com/nmoreau/prdraft/internal/logging"
)

// ErrNotFound reports a ticket key the tracker does not know.
var ErrNotFound = errors.New("ticket not found")

type JiraConfig struct {
	BaseURL  string
	Email    string
	APIToken string
	Timeout  time.Duration
	Logger   logr.Logger
}

// JiraClient fetches issues over the Jira REST v2 API with email+token basic
// auth. Read-only; no retries.
type JiraClient struct {
	http  *http.Client
	base  string
	email string
	token string
	log   logging.Logger
}

func NewJiraClient(cfg JiraConfig) (*JiraClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("jira base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &JiraClient{
		http:  &http.Client{Timeout: timeout},
		base:  base,
		email: cfg.Email,
		token: cfg.APIToken,
		log:   logging.New(cfg.Logger).WithName("jira"),
	}, nil
}

func (c *JiraClient) Fetch(ctx context.Context, key string) (Ticket, error) {
	body, err := c.get(ctx, "/rest/api/2/issue/"+url.PathEscape(key))
	if err != nil {
		return Ticket{}, err
	}
	t := Ticket{
		Key:           key,
		Summary:       gjson.GetBytes(body, "fields.summary").String(),
		Description:   gjson.GetBytes(body, "fields.description").String(),
		Type:          gjson.GetBytes(body, "fields.issuetype.name").String(),
		Status:        gjson.GetBytes(body, "fields.status.name").String(),
		Assignee:      gjson.GetBytes(body, "fields.assignee.displayName").String(),
		Reporter:      gjson.GetBytes(body, "fields.reporter.displayName").String(),
		ParentSummary: gjson.GetBytes(body, "fields.parent.fields.summary").String(),
	}
	t.Links = c.remoteLinks(ctx, key)
	return t, nil
}

// remoteLinks is best-effort: a ticket without reachable links is still a
// usable ticket.
func (c *JiraClient) remoteLinks(ctx context.Context, key string) []LinkedDoc {
	body, err := c.get(ctx, "/rest/api/2/issue/"+url.PathEscape(key)+"/remotelink")
	if err != nil {
		c.log.Debug("remote links unavailable", "key", key, "error", err.Error())
		return nil
	}
	var links []LinkedDoc
	gjson.ParseBytes(body).ForEach(func(_, link gjson.Result) bool {
		doc := LinkedDoc{
			Title:   link.Get("object.title").String(),
			URL:     link.Get("object.url").String(),
			Excerpt: link.Get("object.summary").String(),
		}
		if doc.URL != "" {
			links = append(links, doc)
		}
		return true
	})
	return links
}

func (c *JiraClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.email != "" || c.token != "" {
		req.SetBasicAuth(c.email, c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read jira response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", strings.TrimPrefix(path, "/rest/api/2/issue/"), ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		const max = 2048
		if len(body) > max {
			body = body[:max]
		}
		return nil, fmt.Errorf("jira: unexpected status %s: %s", resp.Status, string(body))
	}
	return body, nil
}
