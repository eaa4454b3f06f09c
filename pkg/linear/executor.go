// Package linear is the workflow tracker binding: a GraphQL executor, name
// to ID resolution for teams, labels and states, and ticket operations.
package linear

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/goblinsan/mixer/pkg/logging"
	"github.com/shurcooL/graphql"
)

const (
	// DefaultEndpoint is Linear's GraphQL API.
	DefaultEndpoint = "https://api.linear.app/graphql"

	// DefaultTimeout bounds every exchange.
	DefaultTimeout = 30 * time.Second

	service = "linear"
)

// Executor performs exactly one GraphQL exchange per call. It never retries
// and never caches.
type Executor struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewExecutor returns an Executor authenticating with apiKey.
func NewExecutor(apiKey string, logger *slog.Logger) *Executor {
	return &Executor{
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.OrDiscard(logger),
	}
}

// WithEndpoint returns a copy targeting url.
func (e *Executor) WithEndpoint(url string) *Executor {
	c := *e
	if url != "" {
		c.endpoint = url
	}
	return &c
}

// WithHTTPClient returns a copy using hc's transport and timeout.
func (e *Executor) WithHTTPClient(hc *http.Client) *Executor {
	c := *e
	if hc != nil {
		c.httpClient = hc
	}
	return &c
}

// Endpoint returns the GraphQL URL in use.
func (e *Executor) Endpoint() string { return e.endpoint }

// Query runs a read. q is a shurcooL/graphql query struct; op names the
// exchange in errors and logs.
func (e *Executor) Query(ctx context.Context, op string, q any, vars map[string]any) error {
	return e.do(ctx, op, false, q, vars)
}

// Mutate runs a write.
func (e *Executor) Mutate(ctx context.Context, op string, m any, vars map[string]any) error {
	return e.do(ctx, op, true, m, vars)
}

func (e *Executor) do(ctx context.Context, op string, mutation bool, v any, vars map[string]any) error {
	base := e.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	x := &exchange{base: base, apiKey: e.apiKey}
	client := graphql.NewClient(e.endpoint, &http.Client{Transport: x, Timeout: e.httpClient.Timeout})

	var err error
	if mutation {
		err = client.Mutate(ctx, v, vars)
	} else {
		err = client.Query(ctx, v, vars)
	}
	err = x.classify(op, err)
	logging.APICall(e.logger, service, op, err)
	return err
}

// exchange authenticates one request and remembers how the transport fared,
// so errors from the GraphQL client can be sorted into transport and
// application failures.
type exchange struct {
	base   http.RoundTripper
	apiKey string

	status int
	err    error
}

func (x *exchange) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", x.apiKey)
	resp, err := x.base.RoundTrip(req)
	if err != nil {
		x.err = err
		return nil, err
	}
	x.status = resp.StatusCode
	return resp, nil
}

func (x *exchange) classify(op string, err error) error {
	switch {
	case x.err != nil:
		return &errs.TransportError{Service: service, Op: op, Err: x.err}
	case x.status != 0 && (x.status < 200 || x.status > 299):
		return &errs.TransportError{Service: service, Op: op, StatusCode: x.status, Err: err}
	case err == nil:
		return nil
	case x.status == 0:
		// Never reached the server: timeout or cancellation before the round trip.
		return &errs.TransportError{Service: service, Op: op, Err: err}
	}
	return &errs.ApplicationError{Service: service, Op: op, Message: err.Error()}
}

// asNotFound turns a tracker "not found" rejection into a NotFoundError.
func asNotFound(err error, kind, key string) error {
	var app *errs.ApplicationError
	if errors.As(err, &app) && strings.Contains(strings.ToLower(app.Message), "not found") {
		return &errs.NotFoundError{Kind: kind, Key: key}
	}
	return err
}
