package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/ksysoev/issue-fetcher/pkg/core"
	"golang.org/x/oauth2"
)

const (
	// PageSize is the number of issues requested per page
	PageSize = 100
	// APIVersion is sent in the X-GitHub-Api-Version header
	APIVersion = "2022-11-28"
	// MediaType is sent in the Accept header
	MediaType = "application/vnd.github.v3+json"
	// DefaultTimeout bounds a single API request
	DefaultTimeout = 30 * time.Second
)

// ErrAPI is returned when the GitHub API answers with a non-2xx status
var ErrAPI = errors.New("GitHub API error")

// Client fetches issues of a single repository
type Client struct {
	client *github.Client
	config core.Config
}

// Option configures a Client
type Option func(*options)

type options struct {
	baseURL   string
	transport http.RoundTripper
	timeout   time.Duration
}

// WithBaseURL points the client at another API root, e.g. a test server
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithTransport sets the underlying HTTP transport
func WithTransport(transport http.RoundTripper) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// NewClient creates a new GitHub client authenticated with the configured token
func NewClient(config core.Config, opts ...Option) (*Client, error) {
	o := &options{
		transport: http.DefaultTransport,
		timeout:   DefaultTimeout,
	}

	for _, opt := range opts {
		opt(o)
	}

	httpClient := &http.Client{
		Timeout: o.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token}),
			Base:   &headerTransport{base: o.transport},
		},
	}

	client := github.NewClient(httpClient)

	if o.baseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", o.baseURL, err)
		}

		client.BaseURL = baseURL
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// FetchIssues pages through the open issues carrying the configured label.
// The limit is checked before each page request, so once enough issues are
// collected no further request is made and the result is cut to the limit.
func (c *Client) FetchIssues(ctx context.Context) ([]core.SimplifiedIssue, error) {
	issues := []core.SimplifiedIssue{}

	opts := &github.IssueListByRepoOptions{
		State:  "open",
		Labels: []string{c.config.Label},
		ListOptions: github.ListOptions{
			Page:    1,
			PerPage: PageSize,
		},
	}

	for {
		if c.config.HasLimit() && len(issues) >= c.config.Limit {
			issues = issues[:max(c.config.Limit, 0)]
			break
		}

		page, resp, err := c.client.Issues.ListByRepo(ctx, c.config.Owner, c.config.Repo, opts)
		if err != nil {
			return nil, handleError(err, resp, opts.Page)
		}

		if len(page) == 0 {
			break
		}

		for _, issue := range page {
			issues = append(issues, Simplify(issue))
		}

		opts.Page++
	}

	return issues, nil
}

// Simplify projects an API issue to the persisted fields
func Simplify(issue *github.Issue) core.SimplifiedIssue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return core.SimplifiedIssue{
		Number: issue.GetNumber(),
		URL:    issue.GetHTMLURL(),
		Title:  issue.GetTitle(),
		Body:   issue.Body,
		Labels: labels,
	}
}

// handleError turns a failed page request into an error carrying the HTTP status when there is one
func handleError(err error, resp *github.Response, page int) error {
	if resp != nil && resp.Response != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return fmt.Errorf("%w: %d %s (page %d): %w",
			ErrAPI, resp.StatusCode, http.StatusText(resp.StatusCode), page, err)
	}

	return fmt.Errorf("failed to fetch page %d: %w", page, err)
}

// headerTransport pins the media type and API version of every request
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", MediaType)
	req.Header.Set("X-GitHub-Api-Version", APIVersion)

	return t.base.RoundTrip(req)
}
