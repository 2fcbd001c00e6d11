package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/mediashare/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Only the flags below are
// taken from args (see flagx.FilterArgs); the rest are left to other
// layers.
//
//	-auth string      auth service base URL
//	-media string     media service base URL
//	-upload string    upload service base URL
//	-t duration       request timeout
//	-rps float        outbound requests per second (0 = unlimited)
//	-d string         data directory
//	-l string         log level
//	-optimistic bool  optimistic like toggles
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-auth", "-media", "-upload", "-t", "-rps", "-d", "-l", "-optimistic",
	})

	fs := flag.NewFlagSet("mediashare", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.AuthAPI, "auth", cfg.AuthAPI, "auth service base URL")
	fs.StringVar(&cfg.MediaAPI, "media", cfg.MediaAPI, "media service base URL")
	fs.StringVar(&cfg.UploadAPI, "upload", cfg.UploadAPI, "upload service base URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "outbound requests per second")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.OptimisticLikes, "optimistic", cfg.OptimisticLikes, "optimistic like toggles")

	return fs.Parse(args)
}
