package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
)

const (
	DefaultAPIURL    = "https://api.twitter.com"
	DefaultUploadURL = "https://upload.twitter.com"

	// DefaultCooldown is how long the client sleeps after the API returns
	// 429 before reporting the failure to the caller.
	DefaultCooldown = 15 * time.Minute

	maxImageBytes = 5 << 20
)

// ErrRateLimited is returned after a 429 response, once the cooldown sleep
// has elapsed (or the context was cancelled during it).
var ErrRateLimited = errors.New("twitter: rate limited")

// Client posts tweets with OAuth 1.0a user-context signing.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger

	apiURL    string
	uploadURL string
	cooldown  time.Duration
}

// NewClient builds a client whose HTTP transport signs every request with
// the given credentials.
func NewClient(creds Credentials, logger *slog.Logger) (*Client, error) {
	if !creds.Complete() {
		return nil, errors.New("twitter: incomplete credentials")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := cfg.Client(oauth1.NoContext, token)
	httpClient.Timeout = 30 * time.Second

	return &Client{
		httpClient: httpClient,
		logger:     logger,
		apiURL:     DefaultAPIURL,
		uploadURL:  DefaultUploadURL,
		cooldown:   DefaultCooldown,
	}, nil
}

// SetCooldown overrides the sleep applied after a 429 response.
func (c *Client) SetCooldown(d time.Duration) {
	if d > 0 {
		c.cooldown = d
	}
}

// Publish posts text as a tweet. When imageURL is non-empty the image is
// downloaded and attached; any failure along the image path is logged and the
// tweet goes out text-only.
func (c *Client) Publish(ctx context.Context, text, imageURL string) error {
	var mediaIDs []string
	if imageURL != "" {
		id, err := c.uploadImage(ctx, imageURL)
		if err != nil {
			c.logger.Warn("image upload failed; tweeting without media", "url", imageURL, "err", err)
		} else {
			mediaIDs = append(mediaIDs, id)
		}
	}
	return c.createTweet(ctx, text, mediaIDs)
}

func (c *Client) uploadImage(ctx context.Context, imageURL string) (string, error) {
	img, err := c.downloadImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", "image")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(img); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL+"/1.1/media/upload.json", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media upload status=%d body=%q", resp.StatusCode, readBodyLimit(resp.Body, 4<<10))
	}

	var out struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("media upload decode: %w", err)
	}
	if out.MediaIDString == "" {
		return "", errors.New("media upload: empty media_id_string")
	}
	return out.MediaIDString, nil
}

func (c *Client) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (PolymarketBot/1.0)")

	// The signing transport would add an Authorization header the image host
	// does not expect; a plain client avoids that.
	resp, err := (&http.Client{Timeout: 20 * time.Second}).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download status=%d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	if len(b) == 0 {
		return nil, errors.New("image download: empty body")
	}
	return b, nil
}

func (c *Client) createTweet(ctx context.Context, text string, mediaIDs []string) error {
	payload := map[string]any{"text": text}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.Warn("rate limited by X API; cooling down", "cooldown", c.cooldown)
		if err := sleepCtx(ctx, c.cooldown); err != nil {
			return fmt.Errorf("%w (cooldown interrupted: %v)", ErrRateLimited, err)
		}
		return ErrRateLimited
	default:
		return fmt.Errorf("create tweet status=%d body=%q", resp.StatusCode, readBodyLimit(resp.Body, 4<<10))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func readBodyLimit(r io.Reader, max int64) string {
	b, _ := io.ReadAll(io.LimitReader(r, max))
	return strings.TrimSpace(string(b))
}
