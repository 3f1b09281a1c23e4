// Package config loads runtime configuration for the MediaBot CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then process environment.
//  3. Optional JSON file selected with -c or --config.
//  4. Command-line flags, which override earlier values.
//
// Environment
//
//	MEDIABOT_API_URL         backend base URL
//	MEDIABOT_WEBHOOK_URL     chat automation webhook (empty disables chat)
//	MEDIABOT_STORAGE         local storage file
//	MEDIABOT_CHECK_INTERVAL  auth re-check interval, e.g. "5m"
//	MEDIABOT_LOG_LEVEL       debug, info, warn or error
//
// Flags
//
//	-a, --api string          backend base URL
//	-w, --webhook string      chat webhook URL
//	-s, --storage string      local storage file
//	-i, --interval duration   auth re-check interval
//	-l, --log-level string    log level
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "5m" or integer
// nanoseconds. Missing keys leave earlier values untouched:
//
//	{
//	  "api_url": "http://158.160.190.4:8080",
//	  "webhook_url": "https://automation.example/webhook/chat",
//	  "storage_path": "mediabot.db",
//	  "check_interval": "5m",
//	  "log_level": "info"
//	}
package config
