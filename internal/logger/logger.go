// Package logger builds the hclog loggers shared by the CLI and the
// web server binaries.
package logger

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a named stderr logger. Verbose lowers the level to Debug;
// otherwise the given base level applies.
func New(name string, base hclog.Level, verbose bool) hclog.Logger {
	level := base
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     os.Stderr,
		JSONFormat: os.Getenv("LOG_FORMAT") == "json",
	})
}
