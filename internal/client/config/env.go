package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envAPIURL        = "MEDIABOT_API_URL"
	envWebhookURL    = "MEDIABOT_WEBHOOK_URL"
	envStorage       = "MEDIABOT_STORAGE"
	envCheckInterval = "MEDIABOT_CHECK_INTERVAL"
	envLogLevel      = "MEDIABOT_LOG_LEVEL"
)

// loadDotEnv copies path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays cfg with MEDIABOT_* variables that are set.
func parseEnv(cfg *Config) error {
	cfg.APIURL = getEnv(envAPIURL, cfg.APIURL)
	cfg.WebhookURL = getEnv(envWebhookURL, cfg.WebhookURL)
	cfg.StoragePath = getEnv(envStorage, cfg.StoragePath)
	cfg.LogLevel = getEnv(envLogLevel, cfg.LogLevel)

	if v, ok := os.LookupEnv(envCheckInterval); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", envCheckInterval, err)
		}
		cfg.CheckInterval = d
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}
