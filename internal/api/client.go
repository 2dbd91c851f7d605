// Package api is the REST client for the ammonit backend's paged
// collection endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apierrors "ammonit/internal/errors"
	"ammonit/internal/metrics"
	"ammonit/internal/model"
	"ammonit/internal/paging"
	"ammonit/internal/telemetry"
)

// APIPrefix is the versioned path every backend route lives under.
const APIPrefix = "/api/v1"

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// Client talks to the ammonit REST backend.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	metrics *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends the bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMetrics records fetch counts and latencies.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the backend at baseURL (scheme and host, e.g.
// http://localhost:8000).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type pageResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// FetchPage reads one page of collection. The backend is offset based, so
// page k of size n is requested as skip=(k-1)*n, limit=n.
func FetchPage[T any](ctx context.Context, c *Client, collection string, req paging.Request, pageSize int) (paging.Result[T], error) {
	if pageSize <= 0 {
		pageSize = paging.DefaultPageSize
	}
	if req.Page < 1 {
		req.Page = 1
	}

	q := url.Values{}
	q.Set("skip", strconv.Itoa(req.Offset(pageSize)))
	q.Set("limit", strconv.Itoa(pageSize))

	start := time.Now()
	var resp pageResponse[T]
	err := c.getJSON(ctx, APIPrefix+"/"+collection+"/", q, &resp)
	c.metrics.ObserveFetch(collection, err, time.Since(start))
	if err != nil {
		return paging.Result[T]{}, fmt.Errorf("fetch %s page %d: %w", collection, req.Page, err)
	}

	if resp.Count < 0 {
		return paging.Result[T]{}, fmt.Errorf("fetch %s page %d: negative count %d", collection, req.Page, resp.Count)
	}
	if len(resp.Data) > pageSize {
		telemetry.LogWarn("Backend returned more rows than requested", "collection", collection, "rows", len(resp.Data), "limit", pageSize)
		resp.Data = resp.Data[:pageSize]
	}
	if resp.Data == nil {
		resp.Data = []T{}
	}

	return paging.Result[T]{Items: resp.Data, Count: resp.Count}, nil
}

// Users fetches a page of /users.
func (c *Client) Users(ctx context.Context, req paging.Request, pageSize int) (paging.Result[model.User], error) {
	return FetchPage[model.User](ctx, c, "users", req, pageSize)
}

// Clients fetches a page of /clients.
func (c *Client) Clients(ctx context.Context, req paging.Request, pageSize int) (paging.Result[model.Client], error) {
	return FetchPage[model.Client](ctx, c, "clients", req, pageSize)
}

// Orders fetches a page of /orders.
func (c *Client) Orders(ctx context.Context, req paging.Request, pageSize int) (paging.Result[model.Order], error) {
	return FetchPage[model.Order](ctx, c, "orders", req, pageSize)
}

// Emails fetches a page of /emails.
func (c *Client) Emails(ctx context.Context, req paging.Request, pageSize int) (paging.Result[model.Email], error) {
	return FetchPage[model.Email](ctx, c, "emails", req, pageSize)
}

// Prompts fetches a page of /prompts.
func (c *Client) Prompts(ctx context.Context, req paging.Request, pageSize int) (paging.Result[model.Prompt], error) {
	return FetchPage[model.Prompt](ctx, c, "prompts", req, pageSize)
}

// Me returns the user the configured token belongs to.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	if err := c.getJSON(ctx, APIPrefix+"/users/me", nil, &u); err != nil {
		return model.User{}, fmt.Errorf("fetch current user: %w", err)
	}
	return u, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierrors.FromResponse(resp, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
