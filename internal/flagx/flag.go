// Package flagx holds small helpers around command-line flag parsing.
package flagx

import (
	"io"

	"github.com/spf13/pflag"
)

// ConfigPath extracts the config file path given via -c or --config.
// Every other flag in args is ignored, so callers can run it ahead of their
// own parsing. An empty string means no config file was requested.
func ConfigPath(args []string) string {
	var path string

	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.StringVarP(&path, "config", "c", "", "path to config file")
	_ = fs.Parse(args)

	return path
}
