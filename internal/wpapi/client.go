// Package wpapi is the client for the WordPress REST API the collector
// reads from: paginated GETs over the posts and categories collections,
// with bounded retry on read timeout.
package wpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"
)

// TotalPagesHeader carries the total page count of a paginated collection.
const TotalPagesHeader = "X-WP-TotalPages"

// Config holds client settings, normally filled from config.APIConfig.
type Config struct {
	PostsURL      string
	CategoriesURL string
	PerPage       int
	Timeout       time.Duration
	UserAgent     string
	RetryAttempts int
	RetryInterval time.Duration
}

// Client issues paginated requests against the two collections.
type Client struct {
	httpClient    *http.Client
	postsURL      string
	categoriesURL string
	perPage       int
	userAgent     string
	retryAttempts int
	retryInterval time.Duration
	logger        *slog.Logger
}

// New creates a Client. The timeout applies per attempt.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		postsURL:      cfg.PostsURL,
		categoriesURL: cfg.CategoriesURL,
		perPage:       cfg.PerPage,
		userAgent:     cfg.UserAgent,
		retryAttempts: cfg.RetryAttempts,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
	}
}

// FetchPosts fetches one page of the posts collection and the total page
// count from the pagination header (1 when absent or malformed).
func (c *Client) FetchPosts(ctx context.Context, page int) (*PostsPage, error) {
	body, header, err := c.get(ctx, c.postsURL, page)
	if err != nil {
		return nil, err
	}

	var posts []json.RawMessage
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("decode posts page %d: %w", page, err)
	}

	total := 1
	if v := header.Get(TotalPagesHeader); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			total = n
		}
	}

	return &PostsPage{Posts: posts, TotalPages: total}, nil
}

// get performs one paginated GET, retrying timeouts up to the configured
// attempt count with a fixed sleep in between. Any other failure is
// returned immediately; an exhausted retry returns the last timeout error.
func (c *Client) get(ctx context.Context, rawURL string, page int) ([]byte, http.Header, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		body, header, err := c.doRequest(ctx, rawURL, page)
		if err == nil {
			return body, header, nil
		}
		if !isTimeout(err) {
			return nil, nil, err
		}

		lastErr = err
		if attempt == c.retryAttempts {
			break
		}

		c.logger.Warn("request timed out, retrying",
			"url", rawURL,
			"page", page,
			"attempt", attempt,
		)

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(c.retryInterval):
		}
	}

	return nil, nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, rawURL string, page int) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return body, resp.Header, nil
}

// isTimeout reports whether err is a read timeout, the only retriable
// failure class.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
