package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// parseFlags overlays cfg with -a, -d, -t and -v.
func parseFlags(cfg *Config, args []string) error {
	args = filterArgs(args, []string{"-a", "-d", "-t"}, "-v")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "base URL of the Syllabify API")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the local session database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	if *timeout < 0 {
		return fmt.Errorf("parsing flags: negative timeout %d", *timeout)
	}

	// Only an explicit -t replaces a timeout set by an earlier layer.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
