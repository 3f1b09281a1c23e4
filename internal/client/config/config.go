package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds runtime settings for the MediaBot CLI.
type Config struct {
	APIURL        string
	WebhookURL    string
	StoragePath   string
	CheckInterval time.Duration
	LogLevel      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://158.160.190.4:8080"
	c.WebhookURL = ""
	c.StoragePath = "mediabot.db"
	c.CheckInterval = 5 * time.Minute
	c.LogLevel = "info"
}

// Load builds a Config from defaults, .env and environment, the JSON file
// named in args, and finally the flags in args (usually os.Args[1:]).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields the client cannot start without.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api url cannot be empty")
	}
	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		return fmt.Errorf("api url: %w", err)
	}
	if c.WebhookURL != "" {
		if _, err := url.ParseRequestURI(c.WebhookURL); err != nil {
			return fmt.Errorf("webhook url: %w", err)
		}
	}
	if c.StoragePath == "" {
		return errors.New("storage path cannot be empty")
	}
	if c.CheckInterval <= 0 {
		return errors.New("check interval must be > 0")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
