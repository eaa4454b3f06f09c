package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/goblinsan/mixer/pkg/logging"
	"github.com/goblinsan/mixer/pkg/types"
	"github.com/google/go-github/v66/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const service = "github"

// DefaultTimeout bounds every REST and GraphQL exchange.
const DefaultTimeout = 30 * time.Second

// Client wraps both the REST API client (go-github) and GraphQL client
// (githubv4), scoped to one owner/name repository holding the backlog.
type Client struct {
	REST    *github.Client
	GraphQL *githubv4.Client

	owner  string
	repo   string
	logger *slog.Logger
}

// NewClient creates a backlog client for repo ("owner/name") on github.com.
func NewClient(token, repo string, logger *slog.Logger) (*Client, error) {
	return NewEnterpriseClient(token, repo, "", logger)
}

// NewEnterpriseClient is NewClient against a GitHub Enterprise base URL.
// An empty baseURL means github.com.
func NewEnterpriseClient(token, repo, baseURL string, logger *slog.Logger) (*Client, error) {
	return newClient(token, repo, baseURL, DefaultTimeout, logger)
}

func newClient(token, repo, baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, &errs.ConfigurationError{Problems: []string{fmt.Sprintf("repository %q must be in owner/repo format", repo)}}
	}

	httpClient := newHTTPClient(token, timeout)
	c := &Client{
		REST:    github.NewClient(httpClient),
		GraphQL: githubv4.NewClient(httpClient),
		owner:   owner,
		repo:    name,
		logger:  logging.OrDiscard(logger),
	}
	if baseURL != "" {
		rest, err := c.REST.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, &errs.ConfigurationError{Problems: []string{fmt.Sprintf("invalid github.base_url %q: %v", baseURL, err)}}
		}
		c.REST = rest
		c.GraphQL = githubv4.NewEnterpriseClient(strings.TrimSuffix(baseURL, "/")+"/api/graphql", httpClient)
	}
	return c, nil
}

func newHTTPClient(token string, timeout time.Duration) *http.Client {
	if token == "" {
		return &http.Client{Timeout: timeout}
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = timeout
	return hc
}

// Repo returns the "owner/name" slug.
func (c *Client) Repo() string { return c.owner + "/" + c.repo }

// GetAuthenticatedUser returns information about the authenticated user
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*github.User, error) {
	user, _, err := c.REST.Users.Get(ctx, "")
	c.record("users/me", err)
	if err != nil {
		return nil, c.classify("user", "", err)
	}
	return user, nil
}

// ListOpen returns every open issue in the repository, following pagination.
// Pull requests, which the issues API also returns, are skipped.
func (c *Client) ListOpen(ctx context.Context) ([]types.BacklogItem, error) {
	c.logger.Info("fetching open issues", "repo", c.Repo())
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var items []types.BacklogItem
	for {
		issues, resp, err := c.REST.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		c.record("issues", err)
		if err != nil {
			return nil, c.classify("list issues", "", err)
		}
		for _, is := range issues {
			if is.IsPullRequest() {
				continue
			}
			items = append(items, toBacklogItem(is))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	c.logger.Info("found open issues", "count", len(items))
	return items, nil
}

// Fetch returns issue number. A missing issue is a NotFoundError.
func (c *Client) Fetch(ctx context.Context, number int) (*types.BacklogItem, error) {
	is, _, err := c.REST.Issues.Get(ctx, c.owner, c.repo, number)
	c.record("issues/"+strconv.Itoa(number), err)
	if err != nil {
		return nil, c.classify("get issue", strconv.Itoa(number), err)
	}
	item := toBacklogItem(is)
	return &item, nil
}

// AddComment appends a comment to issue number.
func (c *Client) AddComment(ctx context.Context, number int, body string) error {
	_, _, err := c.REST.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	c.record("issues/"+strconv.Itoa(number)+"/comments", err)
	if err != nil {
		return c.classify("comment", strconv.Itoa(number), err)
	}
	c.logger.Info("added comment", "issue", number)
	return nil
}

// Close comments on the issue when comment is set, then closes it. The two
// calls are independent: a failed close leaves the comment on an open issue.
// A failed comment skips the close.
func (c *Client) Close(ctx context.Context, number int, comment string) types.TwoPhaseResult {
	res := types.TwoPhaseResult{Comment: types.Skipped(), Transition: types.Skipped()}
	if comment != "" {
		if err := c.AddComment(ctx, number, comment); err != nil {
			res.Comment = types.Failed(err)
			return res
		}
		res.Comment = types.Done()
	}

	_, _, err := c.REST.Issues.Edit(ctx, c.owner, c.repo, number, &github.IssueRequest{
		State: github.String("closed"),
	})
	c.record("issues/"+strconv.Itoa(number), err)
	if err != nil {
		res.Transition = types.Failed(c.classify("close", strconv.Itoa(number), err))
		return res
	}
	c.logger.Info("closed issue", "issue", number)
	res.Transition = types.Done()
	return res
}

// RepoInfo summarizes the repository over GraphQL.
func (c *Client) RepoInfo(ctx context.Context) (*types.RepoInfo, error) {
	var q struct {
		Repository struct {
			Name             string
			Description      string
			URL              string
			DefaultBranchRef struct {
				Name string
			}
			Issues struct {
				TotalCount int
			} `graphql:"issues(states: OPEN)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	err := c.GraphQL.Query(ctx, &q, map[string]any{
		"owner": githubv4.String(c.owner),
		"name":  githubv4.String(c.repo),
	})
	c.record("graphql repository", err)
	if err != nil {
		return nil, classifyGraphQL("repository", c.Repo(), err)
	}
	return &types.RepoInfo{
		Name:          q.Repository.Name,
		Description:   q.Repository.Description,
		URL:           q.Repository.URL,
		DefaultBranch: q.Repository.DefaultBranchRef.Name,
		OpenIssues:    q.Repository.Issues.TotalCount,
	}, nil
}

func (c *Client) record(op string, err error) {
	logging.APICall(c.logger, service, "repos/"+c.Repo()+"/"+op, err)
}

// classify maps go-github failures onto the error taxonomy. Every REST
// failure is either a non-2xx response or a connection problem.
func (c *Client) classify(op, key string, err error) error {
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		if er.Response.StatusCode == http.StatusNotFound && key != "" {
			return &errs.NotFoundError{Kind: "backlog item", Key: "#" + key}
		}
		return &errs.TransportError{Service: service, Op: op, StatusCode: er.Response.StatusCode, Message: er.Message, Err: err}
	}
	var rl *github.RateLimitError
	if errors.As(err, &rl) && rl.Response != nil {
		return &errs.TransportError{Service: service, Op: op, StatusCode: rl.Response.StatusCode, Message: rl.Message, Err: err}
	}
	return &errs.TransportError{Service: service, Op: op, Err: err}
}

func classifyGraphQL(op, key string, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) || strings.Contains(err.Error(), "non-200 OK status code") {
		return &errs.TransportError{Service: service, Op: op, Err: err}
	}
	if strings.Contains(strings.ToLower(err.Error()), "could not resolve") {
		return &errs.NotFoundError{Kind: "repository", Key: key}
	}
	return &errs.ApplicationError{Service: service, Op: op, Message: err.Error()}
}

func toBacklogItem(is *github.Issue) types.BacklogItem {
	item := types.BacklogItem{
		Number:    is.GetNumber(),
		Title:     is.GetTitle(),
		Body:      is.GetBody(),
		URL:       is.GetHTMLURL(),
		State:     is.GetState(),
		CreatedAt: is.GetCreatedAt().Time,
		UpdatedAt: is.GetUpdatedAt().Time,
	}
	for _, l := range is.Labels {
		item.Labels = append(item.Labels, l.GetName())
	}
	return item
}
