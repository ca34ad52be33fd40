package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the remote document database
//	-u string   base URL of the identity provider
//	-i int      online check interval in seconds (default from Config)
//	-d string   path of the local sqlite store
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-i", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseEndpoint, "a", cfg.DatabaseEndpoint, "base URL of the remote document database")
	fs.StringVar(&cfg.AuthEndpoint, "u", cfg.AuthEndpoint, "base URL of the identity provider")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LocalStorePath, "d", cfg.LocalStorePath, "path of the local sqlite store")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
