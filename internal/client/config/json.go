package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mediabot/internal/flagx"
	"github.com/dmitrijs2005/mediabot/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Zero values
// mean "not set" and leave the runtime Config alone.
type JSONConfig struct {
	APIURL        string         `json:"api_url"`
	WebhookURL    string         `json:"webhook_url"`
	StoragePath   string         `json:"storage_path"`
	CheckInterval timex.Duration `json:"check_interval"`
	LogLevel      string         `json:"log_level"`
}

// parseJSON overlays cfg with the file named by -c/--config in args.
// Without the flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.APIURL != "" {
		cfg.APIURL = jc.APIURL
	}
	if jc.WebhookURL != "" {
		cfg.WebhookURL = jc.WebhookURL
	}
	if jc.StoragePath != "" {
		cfg.StoragePath = jc.StoragePath
	}
	if jc.CheckInterval.Duration != 0 {
		cfg.CheckInterval = jc.CheckInterval.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
