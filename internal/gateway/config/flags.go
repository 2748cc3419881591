package config

import (
	"flag"
	"os"

	"github.com/mkurbatov/landledger/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   bind address of the HTTP server
//	-s string   base URL of the session store
//	-d string   Postgres DSN of the registry cache
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "bind address of the HTTP server")
	fs.StringVar(&cfg.SessionEndpoint, "s", cfg.SessionEndpoint, "base URL of the session store")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "Postgres DSN of the registry cache")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
