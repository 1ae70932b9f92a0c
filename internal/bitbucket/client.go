// Package bitbucket is a client for the Bitbucket Server REST API.
//
// Failures reported by the server are returned as data:
// every response entity carries an [ErrorList]
// which is empty if and only if the request succeeded.
// Go errors are reserved for failures to talk to the server at all,
// such as network errors and cancelled contexts.
package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-querystring/query"
	"go.abhg.dev/bbs/internal/silog"
	"golang.org/x/time/rate"
)

// _apiPath is the path of the REST API relative to the server's base URL.
const _apiPath = "rest/api/1.0"

// _retryInitialInterval is the delay before the first retry.
// It's a variable so tests can override it.
var _retryInitialInterval = 500 * time.Millisecond

// ClientOptions configures a [Client].
type ClientOptions struct {
	// HTTPClient is the HTTP client used to make requests.
	// Defaults to a client with http.DefaultTransport.
	//
	// If Token is set, the client's transport is wrapped
	// to authenticate requests. The given client is not modified.
	HTTPClient *http.Client

	// Token holds the credentials to authenticate with.
	// Requests are anonymous if this is nil.
	Token *AuthenticationToken

	// Log receives debug logs for each request.
	Log *silog.Logger

	// MaxRetries is the number of times a request is retried
	// after a transient failure.
	// Zero disables retries.
	MaxRetries int

	// RateLimit is the maximum number of requests per second.
	// Zero means there is no limit.
	RateLimit float64

	// UserAgent is sent with every request if set.
	UserAgent string
}

// Client talks to a single Bitbucket Server instance.
//
// Client is safe for concurrent use.
type Client struct {
	client *client

	projects *ProjectAPI
	repos    *RepositoryAPI
}

// NewClient builds a client for the Bitbucket Server at baseURL.
// baseURL is the address of the web UI, e.g. https://bitbucket.example.com.
func NewClient(baseURL string, opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	httpClient := http.Client{Transport: http.DefaultTransport}
	if opts.HTTPClient != nil {
		httpClient = *opts.HTTPClient
	}
	if opts.Token != nil {
		httpClient.Transport = opts.Token.Transport(httpClient.Transport)
	}

	log := opts.Log
	if log == nil {
		log = silog.Nop()
	}

	c := &client{
		apiURL:     base.JoinPath(_apiPath),
		http:       &httpClient,
		log:        log,
		maxRetries: max(opts.MaxRetries, 0),
		userAgent:  opts.UserAgent,
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Client{
		client:   c,
		projects: &ProjectAPI{client: c},
		repos:    &RepositoryAPI{client: c},
	}, nil
}

// Projects returns the project API.
func (c *Client) Projects() *ProjectAPI { return c.projects }

// Repositories returns the repository API.
func (c *Client) Repositories() *RepositoryAPI { return c.repos }

type client struct {
	apiURL     *url.URL
	http       *http.Client
	log        *silog.Logger
	limiter    *rate.Limiter // nil if unlimited
	maxRetries int
	userAgent  string
}

// apiPath joins the given segments into a path relative to the API root.
// Each segment is escaped.
func apiPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

func (c *client) get(ctx context.Context, path string, params, dst any) (ErrorList, error) {
	return c.do(ctx, http.MethodGet, path, params, nil, dst)
}

func (c *client) post(ctx context.Context, path string, body, dst any) (ErrorList, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, dst)
}

func (c *client) put(ctx context.Context, path string, params, body, dst any) (ErrorList, error) {
	return c.do(ctx, http.MethodPut, path, params, body, dst)
}

func (c *client) delete(ctx context.Context, path string, params, dst any) (ErrorList, error) {
	return c.do(ctx, http.MethodDelete, path, params, nil, dst)
}

// do sends a request and decodes a successful response into dst.
//
// params, if non-nil, is a struct encoded into the query string.
// body, if non-nil, is encoded as JSON.
//
// Non-2xx responses are reported as a non-empty ErrorList.
// The returned error is non-nil only if the server could not be reached
// or a successful response could not be decoded.
func (c *client) do(
	ctx context.Context,
	method, path string,
	params, body, dst any,
) (ErrorList, error) {
	u := c.apiURL.JoinPath(path)
	if params != nil {
		values, err := query.Values(params)
		if err != nil {
			return nil, fmt.Errorf("encode query: %w", err)
		}
		u.RawQuery = values.Encode()
	}

	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	res, err := c.sendWithRetry(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}

	if !res.ok() {
		errs := parseErrors(res.StatusCode, res.Body)
		c.log.Debug("Bitbucket API error",
			"method", method, "path", u.Path,
			"status", res.StatusCode, "errors", errs.Error())
		return errs, nil
	}

	if dst != nil && len(bytes.TrimSpace(res.Body)) > 0 {
		if err := json.Unmarshal(res.Body, dst); err != nil {
			return nil, fmt.Errorf("%s %s: decode response: %w", method, u.Path, err)
		}
	}
	return nil, nil
}

type response struct {
	StatusCode int
	Body       []byte
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// retryableStatusError marks a response that may succeed if retried.
type retryableStatusError struct{ StatusCode int }

func (e *retryableStatusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.StatusCode)
}

func (c *client) sendWithRetry(
	ctx context.Context,
	method string,
	u *url.URL,
	body []byte,
) (*response, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = _retryInitialInterval
	policy := backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	var res *response
	err := backoff.Retry(func() error {
		var err error
		res, err = c.send(ctx, method, u, body)
		if err != nil {
			if ctx.Err() != nil || !isIdempotent(method) {
				return backoff.Permanent(err)
			}
			c.log.Debug("Request failed", "method", method, "path", u.Path, "err", err)
			return err
		}

		if isRetryableStatus(method, res.StatusCode) {
			c.log.Debug("Server asked to retry",
				"method", method, "path", u.Path, "status", res.StatusCode)
			return &retryableStatusError{StatusCode: res.StatusCode}
		}
		return nil
	}, policy)

	// Out of retries on a transient status:
	// the last response is reported like any other failure.
	var statusErr *retryableStatusError
	if errors.As(err, &statusErr) && res != nil {
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *client) send(
	ctx context.Context,
	method string,
	u *url.URL,
	body []byte,
) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, u.Path, err)
	}

	c.log.Debug("Bitbucket API request",
		"method", method, "path", u.Path, "status", resp.StatusCode)
	return &response{StatusCode: resp.StatusCode, Body: data}, nil
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// isRetryableStatus reports whether a response with the given status
// should be retried.
// Requests that are not idempotent are retried only when rate limited,
// since the server did not act on them.
func isRetryableStatus(method string, status int) bool {
	switch status {
	case http.StatusTooManyRequests:
		return true
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return isIdempotent(method)
	default:
		return false
	}
}
