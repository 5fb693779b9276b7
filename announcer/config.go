package announcer

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ArchiveConfig controls the optional S3 snapshot of the audit log. Archival
// is off unless a bucket is set.
type ArchiveConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// Config holds everything the bot needs to run. Values load from a YAML file
// over defaults, then environment variables override both.
type Config struct {
	GammaURL          string        `yaml:"gamma_url"`
	SiteURL           string        `yaml:"site_url"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	Lookback          time.Duration `yaml:"lookback"`
	MinVolume         float64       `yaml:"min_volume"`
	SportsSeries      []string      `yaml:"sports_series"`
	StatePath         string        `yaml:"state_path"`
	AuditLogPath      string        `yaml:"audit_log_path"`
	DebugAddr         string        `yaml:"debug_addr"`
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown"`
	Archive           ArchiveConfig `yaml:"archive"`
}

func DefaultConfig() Config {
	return Config{
		GammaURL:          "https://gamma-api.polymarket.com",
		SiteURL:           "https://polymarket.com",
		PollInterval:      600 * time.Second,
		Lookback:          10 * time.Minute,
		MinVolume:         0,
		SportsSeries:      DefaultSportsSeries(),
		StatePath:         "bot_state.json",
		RateLimitCooldown: 15 * time.Minute,
		Archive:           ArchiveConfig{Prefix: "announcements"},
	}
}

// LoadConfig reads path (when non-empty) over the defaults and then applies
// environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GAMMA_API_URL"); v != "" {
		c.GammaURL = v
	}
	if v := os.Getenv("BOT_SITE_URL"); v != "" {
		c.SiteURL = v
	}
	if d, ok := envDuration("BOT_POLL_INTERVAL"); ok {
		c.PollInterval = d
	}
	if d, ok := envDuration("BOT_LOOKBACK"); ok {
		c.Lookback = d
	}
	if v := os.Getenv("BOT_MIN_VOLUME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinVolume = f
		}
	}
	if v := os.Getenv("BOT_SPORTS_SERIES"); v != "" {
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		c.SportsSeries = out
	}
	if v := os.Getenv("BOT_STATE_FILE"); v != "" {
		c.StatePath = v
	}
	if v := os.Getenv("BOT_AUDIT_LOG"); v != "" {
		c.AuditLogPath = v
	}
	if v := os.Getenv("BOT_DEBUG_ADDR"); v != "" {
		c.DebugAddr = v
	}
	if d, ok := envDuration("BOT_RATE_LIMIT_COOLDOWN"); ok {
		c.RateLimitCooldown = d
	}
	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		c.Archive.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_S3_PREFIX"); v != "" {
		c.Archive.Prefix = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Archive.Region = v
	}
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	// Accept bare seconds as well as Go duration syntax.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	return 0, false
}

func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.Lookback <= 0 {
		return fmt.Errorf("lookback must be positive, got %v", c.Lookback)
	}
	if c.StatePath == "" {
		return fmt.Errorf("state_path must not be empty")
	}
	return nil
}
