package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ClientConfig contains paragraph source client configuration
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client fetches passage pages from the paragraph source over HTTP. Pages
// for a user live at {base}/{username}-{page}.json where username is the
// lowercase local part of the user's email. A 404 for a page index is the
// sole exhaustion signal; the source has no explicit end marker.
type Client struct {
	config     ClientConfig
	httpClient *http.Client

	// Statistics
	totalRequests  uint64
	failedRequests uint64
	pagesLoaded    uint64

	mu sync.RWMutex
}

// ClientStats represents page client statistics
type ClientStats struct {
	TotalRequests  uint64 `json:"total_requests"`
	FailedRequests uint64 `json:"failed_requests"`
	PagesLoaded    uint64 `json:"pages_loaded"`
}

// NewClient creates a paragraph source client
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// UsernameFromEmail derives the paragraph source username: the lowercase
// local part of the user's email address.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.ToLower(local)
}

// FetchPage retrieves one passage page. It returns ErrNoMorePages when the
// source has no file for the given index.
func (c *Client) FetchPage(ctx context.Context, user string, page int) ([]string, error) {
	c.mu.Lock()
	c.totalRequests++
	c.mu.Unlock()

	url := fmt.Sprintf("%s/%s-%d.json", strings.TrimRight(c.config.BaseURL, "/"), UsernameFromEmail(user), page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoMorePages
	}

	if resp.StatusCode != http.StatusOK {
		c.recordFailure()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("read page body: %w", err)
	}

	var passages []string
	if err := json.Unmarshal(body, &passages); err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("parse page %d: %w", page, err)
	}

	c.mu.Lock()
	c.pagesLoaded++
	c.mu.Unlock()

	return passages, nil
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.failedRequests++
	c.mu.Unlock()
}

// GetStats returns current client statistics
func (c *Client) GetStats() ClientStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ClientStats{
		TotalRequests:  c.totalRequests,
		FailedRequests: c.failedRequests,
		PagesLoaded:    c.pagesLoaded,
	}
}
