package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"golang.org/x/oauth2"
)

// Client is a small JSON-over-HTTP client shared by the backend providers.
// Every failure it returns is an *entity.MutationError.
type Client struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	header   http.Header
	fallback string
}

// Option customizes a Client.
type Option func(*Client)

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// WithFallbackToken sets the bearer token used when ctx carries no session.
func WithFallbackToken(token string) Option {
	return func(c *Client) { c.fallback = token }
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a Client rooted at baseURL. timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: timeout,
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one call.
type Request struct {
	Op     string
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   interface{}
	// Out receives the decoded JSON response body when non-nil.
	Out interface{}
}

// Do sends the request with the session bearer token from ctx and maps failures to MutationErrors.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, entity.NewMutationError(entity.ErrorKindNetwork, r.Op, fmt.Errorf("encode body: %w", err))
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, entity.NewMutationError(entity.ErrorKindNetwork, r.Op, err)
	}
	for k, vs := range c.header {
		req.Header[k] = vs
	}
	for k, vs := range r.Header {
		req.Header[k] = vs
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.clientFor(ctx).Do(req)
	if err != nil {
		return nil, entity.NewMutationError(entity.ErrorKindNetwork, r.Op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, entity.NewMutationError(entity.ErrorKindNetwork, r.Op, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode >= 300 {
		return resp, StatusError(r.Op, resp.StatusCode, payload)
	}
	if r.Out != nil && len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, r.Out); err != nil {
			return resp, entity.NewMutationError(entity.ErrorKindNetwork, r.Op, fmt.Errorf("decode response: %w", err))
		}
	}
	return resp, nil
}

// clientFor wraps the base client with an oauth2 transport carrying the caller's bearer token.
func (c *Client) clientFor(ctx context.Context) *http.Client {
	token := c.fallback
	if sess, ok := entity.SessionFromContext(ctx); ok && sess.AccessToken != "" {
		token = sess.AccessToken
	}
	if token == "" {
		return c.http
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.http.Transport,
		},
		Timeout: c.http.Timeout,
	}
}

type apiError struct {
	Code      string `json:"code"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Detail    string `json:"error"`
}

// StatusError maps an HTTP failure to the MutationError kinds the controller understands.
// 401 and rejected credentials need sign-in, 403 and row-level security violations are permission errors,
// 404 and PostgREST's "no rows" are not-found, everything else is a network error.
func StatusError(op string, status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	msg := ae.Message
	if msg == "" {
		msg = ae.Detail
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	cause := fmt.Errorf("status %d: %s", status, msg)

	switch {
	case status == http.StatusUnauthorized || ae.Detail == "invalid_grant" || ae.ErrorCode == "invalid_credentials":
		return entity.NewMutationError(entity.ErrorKindAuthRequired, op, cause)
	case status == http.StatusForbidden || ae.Code == "42501":
		return entity.NewMutationError(entity.ErrorKindPermissionDenied, op, cause)
	case status == http.StatusNotFound || ae.Code == "PGRST116":
		return entity.NewMutationError(entity.ErrorKindNotFound, op, cause)
	default:
		return entity.NewMutationError(entity.ErrorKindNetwork, op, cause)
	}
}
