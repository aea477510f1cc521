package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/blackmichael/solana-twitter/internal/keys"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "tweet",
		Usage:   "Send and read tweets on the tweet program",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Server endpoint",
				EnvVars: []string{"TWEETS_URL"},
				Value:   "http://localhost:8899",
			},
			&cli.StringFlag{
				Name:    "keypair",
				Aliases: []string{"k"},
				Usage:   "Path to the signer's keypair file",
				EnvVars: []string{"TWEETS_KEYPAIR"},
				Value:   keys.DefaultPath(),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Commands: []*cli.Command{
			keygenCommand(),
			airdropCommand(),
			sendCommand(),
			showCommand(),
			balanceCommand(),
			programCommand(),
			watchCommand(),
		},
	}
}
