package gamma

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
)

const DefaultURL = "https://gamma-api.polymarket.com"

// DefaultUserAgent mimics a browser UA to avoid Cloudflare 403s.
const DefaultUserAgent = "Mozilla/5.0 (PolymarketBot/1.0)"

const defaultFetchLimit = 100

// Client talks to the Gamma REST API.
type Client struct {
	host       string
	httpClient *http.Client
	userAgent  string
	limit      int
	now        func() time.Time
}

func NewClient(host string) (*Client, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultURL
	}
	host = strings.TrimRight(host, "/")

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("gamma url parse %q: %w", host, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("gamma url must be http(s), got %q", host)
	}

	return &Client{
		host: host,
		httpClient: &http.Client{
			Timeout: 12 * time.Second,
		},
		userAgent: DefaultUserAgent,
		limit:     defaultFetchLimit,
		now:       time.Now,
	}, nil
}

// RecentEvents fetches currently-open events ordered by creation time
// descending and returns the ones created within the lookback window.
//
// The API guarantees descending createdAt order, so the scan stops at the
// first event older than the cutoff. Events with no parseable createdAt are
// treated as older than any cutoff.
func (c *Client) RecentEvents(ctx context.Context, lookback time.Duration) ([]Event, error) {
	if c == nil {
		return nil, fmt.Errorf("gamma client nil")
	}

	cutoff := c.now().UTC().Add(-lookback)

	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("order", "createdAt")
	q.Set("ascending", "false")
	q.Set("closed", "false")
	endpoint := c.host + "/events?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyLimit(resp.Body, 8<<10)
		return nil, fmt.Errorf("gamma %s: status=%d body=%q", endpoint, resp.StatusCode, body)
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("gamma decode: %w", err)
	}

	var recent []Event
	for _, ev := range events {
		if ev.CreatedAt.Time().Before(cutoff) {
			break
		}
		recent = append(recent, ev)
	}
	return recent, nil
}

func readBodyLimit(r io.Reader, max int64) string {
	if r == nil || max <= 0 {
		return ""
	}
	lr := &io.LimitedReader{R: r, N: max}
	b, _ := io.ReadAll(lr)
	return strings.TrimSpace(string(b))
}
