// Package twitter publishes tweets through the X API v2, with an optional
// media upload through the v1.1 endpoint.
package twitter

import (
	"context"
	"log/slog"
	"os"
)

// Publisher posts a tweet. Implementations decide whether anything actually
// leaves the process.
type Publisher interface {
	Publish(ctx context.Context, text, imageURL string) error
}

// Credentials holds the OAuth 1.0a user-context keys for the X API.
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// CredentialsFromEnv reads the four X API keys from the environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		APIKey:       os.Getenv("X_API_KEY"),
		APISecret:    os.Getenv("X_API_SECRET"),
		AccessToken:  os.Getenv("X_ACCESS_TOKEN"),
		AccessSecret: os.Getenv("X_ACCESS_SECRET"),
	}
}

// Complete reports whether all four keys are present.
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// DryRun logs tweets instead of sending them. Used whenever the X API
// credentials are incomplete.
type DryRun struct {
	logger *slog.Logger
}

func NewDryRun(logger *slog.Logger) *DryRun {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRun{logger: logger}
}

func (d *DryRun) Publish(ctx context.Context, text, imageURL string) error {
	d.logger.Info("dry-run tweet", "text", text, "image", imageURL, "len", len([]rune(text)))
	return nil
}
