package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger tagged with the site id.
// APP_ENV=dev (or development) uses a human-friendly console writer at debug level.
func NewLogger(env string) zerolog.Logger {
	return NewSiteLogger(env, "")
}

func NewSiteLogger(env, site string) zerolog.Logger {
	ctx := zerolog.New(os.Stdout).With().Timestamp()
	level := zerolog.InfoLevel
	if env == "dev" || env == "development" {
		ctx = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp()
		level = zerolog.DebugLevel
	}
	if site != "" {
		ctx = ctx.Str("site", site)
	}
	return ctx.Logger().Level(level)
}
