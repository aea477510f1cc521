package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/blackmichael/solana-twitter/internal/api"
	"github.com/blackmichael/solana-twitter/internal/client"
	"github.com/blackmichael/solana-twitter/internal/domain"
	"github.com/blackmichael/solana-twitter/internal/keys"
	"github.com/blackmichael/solana-twitter/internal/stream"
)

const lamportsPerSol = 1_000_000_000

func keygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Generate a new keypair file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "outfile",
				Aliases: []string{"o"},
				Usage:   "Where to write the keypair (defaults to --keypair)",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing keypair file",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.String("outfile")
			if path == "" {
				path = c.String("keypair")
			}

			kp, err := keys.Generate()
			if err != nil {
				return err
			}
			if err := keys.Save(path, kp, c.Bool("force")); err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "Wrote keypair to %s\n", path)
			fmt.Fprintf(c.App.Writer, "Identity: %s\n", kp.Identity)
			return nil
		},
	}
}

func airdropCommand() *cli.Command {
	return &cli.Command{
		Name:      "airdrop",
		Usage:     "Request test lamports",
		ArgsUsage: "LAMPORTS [IDENTITY]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("LAMPORTS is required")
			}
			lamports, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid LAMPORTS %q: %w", c.Args().Get(0), err)
			}

			id, err := identityArg(c, 1)
			if err != nil {
				return err
			}

			balance, err := newClient(c).Airdrop(c.Context, id, lamports)
			if err != nil {
				return err
			}
			return printBalance(c, id, balance)
		},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Send a tweet signed by the keypair",
		ArgsUsage: "CONTENT...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "topic",
				Aliases: []string{"t"},
				Usage:   "Tweet topic (at most 50 characters)",
			},
		},
		Action: func(c *cli.Context) error {
			content := strings.Join(c.Args().Slice(), " ")
			if content == "" {
				return fmt.Errorf("CONTENT is required")
			}

			kp, err := keys.Load(c.String("keypair"))
			if err != nil {
				return err
			}

			// Each tweet lives at a fresh address.
			account, err := keys.Generate()
			if err != nil {
				return err
			}

			tweet, err := newClient(c).SendTweet(c.Context, kp.Private, account.Identity, c.String("topic"), content)
			if err != nil {
				return err
			}
			return printTweet(c, tweet)
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the tweet stored at an address",
		ArgsUsage: "ADDRESS",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("ADDRESS is required")
			}
			address, err := domain.ParseIdentity(c.Args().First())
			if err != nil {
				return err
			}

			tweet, err := newClient(c).GetTweet(c.Context, address)
			if err != nil {
				return err
			}
			return printTweet(c, tweet)
		},
	}
}

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Show the lamport balance of an identity",
		ArgsUsage: "[IDENTITY]",
		Action: func(c *cli.Context) error {
			id, err := identityArg(c, 0)
			if err != nil {
				return err
			}

			balance, err := newClient(c).Balance(c.Context, id)
			if err != nil {
				return err
			}
			return printBalance(c, id, balance)
		},
	}
}

func programCommand() *cli.Command {
	return &cli.Command{
		Name:  "program",
		Usage: "Describe the program served at the endpoint",
		Action: func(c *cli.Context) error {
			program, err := newClient(c).Program(c.Context)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, program)
			}
			fmt.Fprintf(c.App.Writer, "Program:     %s\n", program.ProgramID)
			fmt.Fprintf(c.App.Writer, "Tweet space: %d bytes\n", program.TweetSpace)
			fmt.Fprintf(c.App.Writer, "Tweet rent:  %s\n", formatLamports(program.RentLamports))
			fmt.Fprintf(c.App.Writer, "Limits:      topic %d, content %d characters\n", program.MaxTopic, program.MaxContent)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print tweets as they are created",
		Action: func(c *cli.Context) error {
			url, err := newClient(c).StreamURL()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			watcher := stream.NewWatcher(url, func(_ context.Context, created domain.TweetCreated) error {
				return printTweet(c, &api.Tweet{
					Address:   created.Address.String(),
					Author:    created.Author.String(),
					Timestamp: created.Timestamp,
					Topic:     created.Topic,
					Content:   created.Content,
					Lamports:  created.Lamports,
				})
			}, logger)

			if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.NewClient(c.String("url"))
}

// identityArg reads the identity at position i, falling back to the keypair
// file's identity.
func identityArg(c *cli.Context, i int) (domain.Identity, error) {
	if c.NArg() > i {
		return domain.ParseIdentity(c.Args().Get(i))
	}
	kp, err := keys.Load(c.String("keypair"))
	if err != nil {
		return domain.Identity{}, err
	}
	return kp.Identity, nil
}

func printTweet(c *cli.Context, tweet *api.Tweet) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, tweet)
	}
	topic := tweet.Topic
	if topic == "" {
		topic = "-"
	}
	fmt.Fprintf(c.App.Writer, "%s  #%s  by %s at %d\n  %s\n", tweet.Address, topic, tweet.Author, tweet.Timestamp, tweet.Content)
	return nil
}

func printBalance(c *cli.Context, id domain.Identity, lamports uint64) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, api.Balance{Identity: id.String(), Lamports: lamports})
	}
	fmt.Fprintf(c.App.Writer, "%s: %s\n", id, formatLamports(lamports))
	return nil
}

func formatLamports(lamports uint64) string {
	return fmt.Sprintf("%d lamports (%s SOL)", lamports,
		strconv.FormatFloat(float64(lamports)/lamportsPerSol, 'f', -1, 64))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
