package config

import (
	"io"

	"github.com/spf13/pflag"
)

// parseFlags populates Config fields from command-line flags. Defaults are
// the values already in cfg, so unset flags keep earlier sources.
func parseFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("mediabot", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringP("config", "c", "", "path to JSON config file")
	fs.StringVarP(&cfg.APIURL, "api", "a", cfg.APIURL, "backend base URL")
	fs.StringVarP(&cfg.WebhookURL, "webhook", "w", cfg.WebhookURL, "chat webhook URL")
	fs.StringVarP(&cfg.StoragePath, "storage", "s", cfg.StoragePath, "local storage file")
	fs.DurationVarP(&cfg.CheckInterval, "interval", "i", cfg.CheckInterval, "auth re-check interval")
	fs.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	return fs.Parse(args)
}
