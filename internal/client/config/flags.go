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
//	-s string   base URL of the session store
//	-d string   Postgres DSN of the registry cache
//	-r string   JSON-RPC endpoint of the EVM node
//	-t string   hex address of the LandRegistry contract
//	-w string   wallet keystore directory
//	-p string   path of the local preferences database
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-d", "-r", "-t", "-w", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.SessionEndpoint, "s", cfg.SessionEndpoint, "base URL of the session store")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "Postgres DSN of the registry cache")
	fs.StringVar(&cfg.ChainRPCURL, "r", cfg.ChainRPCURL, "JSON-RPC endpoint of the EVM node")
	fs.StringVar(&cfg.ContractAddress, "t", cfg.ContractAddress, "address of the LandRegistry contract")
	fs.StringVar(&cfg.KeystoreDir, "w", cfg.KeystoreDir, "wallet keystore directory")
	fs.StringVar(&cfg.PrefsPath, "p", cfg.PrefsPath, "path of the local preferences database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
