// Package wordpress fetches posts, pages, projects and media from the
// WordPress REST API and assembles them into content records.
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/polything/go-wpmigrate/content"
	"github.com/polything/go-wpmigrate/internal/logging"
	"github.com/polything/go-wpmigrate/pkg/interfaces"
)

var (
	ErrBaseURLRequired  = errors.New("wordpress: api url is required")
	ErrUnexpectedStatus = errors.New("wordpress: unexpected response status")
	ErrUnknownEndpoint  = errors.New("wordpress: no endpoint for content type")
)

const totalPagesHeader = "X-WP-TotalPages"

// Config controls the REST client.
type Config struct {
	// APIURL is the REST root, e.g. https://example.com/wp-json/wp/v2.
	APIURL      string
	PerPage     int
	MaxPages    int
	Timeout     time.Duration
	Retries     int
	RetryDelay  time.Duration
	Concurrency int
	// Endpoints maps content types to REST collection names.
	Endpoints map[content.Type]string
}

// DefaultConfig returns client defaults: 100 items per page, three retries
// one second apart and at most three concurrent collection fetches.
func DefaultConfig() Config {
	return Config{
		PerPage:     100,
		MaxPages:    100,
		Timeout:     30 * time.Second,
		Retries:     3,
		RetryDelay:  time.Second,
		Concurrency: 3,
		Endpoints:   DefaultEndpoints(),
	}
}

// DefaultEndpoints returns the collection names used by the source theme.
func DefaultEndpoints() map[content.Type]string {
	return map[content.Type]string{
		content.TypePost:    "posts",
		content.TypePage:    "pages",
		content.TypeProject: "project",
	}
}

// Client is a WordPress REST API client.
type Client struct {
	cfg        Config
	base       *url.URL
	httpClient *http.Client
	logger     interfaces.Logger
	sleep      func(context.Context, time.Duration) error
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger interfaces.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient validates cfg and builds a client. Zero values fall back to
// DefaultConfig.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	cfg = cfg.withDefaults()
	raw := strings.TrimSpace(cfg.APIURL)
	if raw == "" {
		return nil, ErrBaseURLRequired
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("wordpress: invalid api url %q", cfg.APIURL)
	}

	c := &Client{
		cfg:        cfg,
		base:       base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NoOp(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.PerPage <= 0 || cfg.PerPage > 100 {
		cfg.PerPage = def.PerPage
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = def.Endpoints
	}
	return cfg
}

// Endpoint returns the collection name for t.
func (c *Client) Endpoint(t content.Type) (string, error) {
	endpoint, ok := c.cfg.Endpoints[t]
	if !ok || strings.TrimSpace(endpoint) == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownEndpoint, t)
	}
	return endpoint, nil
}

// FetchPosts fetches every item of a collection (posts, pages, project ...).
func (c *Client) FetchPosts(ctx context.Context, endpoint string) ([]interfaces.WPPost, error) {
	return fetchPages[interfaces.WPPost](ctx, c, endpoint)
}

// FetchMedia fetches the full media library.
func (c *Client) FetchMedia(ctx context.Context) ([]interfaces.WPMedia, error) {
	return fetchPages[interfaces.WPMedia](ctx, c, "media")
}

// FetchAll fetches the collections of types concurrently, at most
// Config.Concurrency at a time. The first failure cancels the rest.
func (c *Client) FetchAll(ctx context.Context, types []content.Type) (map[content.Type][]interfaces.WPPost, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		t     content.Type
		posts []interfaces.WPPost
		err   error
	}

	jobs := make(chan content.Type)
	results := make(chan result)
	var wg sync.WaitGroup

	workers := min(c.cfg.Concurrency, len(types))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				endpoint, err := c.Endpoint(t)
				if err != nil {
					results <- result{t: t, err: err}
					continue
				}
				posts, err := c.FetchPosts(ctx, endpoint)
				results <- result{t: t, posts: posts, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, t := range types {
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[content.Type][]interfaces.WPPost, len(types))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("wordpress: fetch %s: %w", r.t, r.err)
				cancel()
			}
			continue
		}
		out[r.t] = r.posts
		c.logger.Info("wordpress.fetch.completed", "content_type", r.t, "items", len(r.posts))
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// fetchPages walks ?page=N until an empty page, the X-WP-TotalPages limit or
// Config.MaxPages.
func fetchPages[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var all []T
	for page := 1; page <= c.cfg.MaxPages; page++ {
		var batch []T
		header, err := c.getJSON(ctx, endpoint, page, &batch)
		if errors.Is(err, errPastLastPage) {
			break
		}
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		c.logger.Debug("wordpress.fetch.page", "endpoint", endpoint, "page", page, "items", len(batch))

		if len(batch) == 0 {
			break
		}
		if total, err := strconv.Atoi(header.Get(totalPagesHeader)); err == nil && page >= total {
			break
		}
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

var errPastLastPage = errors.New("wordpress: page out of range")

// getJSON performs a GET with retries. 5xx responses and transport errors
// are retried after Config.RetryDelay; other failures return at once.
func (c *Client) getJSON(ctx context.Context, endpoint string, page int, out any) (http.Header, error) {
	target := c.pageURL(endpoint, page)
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("wordpress.fetch.retry", "url", target, "attempt", attempt, "error", lastErr)
			if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
				return nil, err
			}
		}
		header, retry, err := c.doGet(ctx, target, out)
		if err == nil || !retry {
			return header, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("wordpress: get %s after %d attempts: %w", target, c.cfg.Retries+1, lastErr)
}

func (c *Client) doGet(ctx context.Context, target string, out any) (http.Header, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, fmt.Errorf("wordpress: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("wordpress: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("wordpress: read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest && isInvalidPage(body):
		return nil, false, errPastLastPage
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return nil, false, fmt.Errorf("wordpress: decode %s: %w", target, err)
	}
	return resp.Header, false, nil
}

func (c *Client) pageURL(endpoint string, page int) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Trim(endpoint, "/")
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	u.RawQuery = q.Encode()
	return u.String()
}

// isInvalidPage detects the error WordPress returns when paging past the end.
func isInvalidPage(body []byte) bool {
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Code == "rest_post_invalid_page_number"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
