package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/solana-twitter/internal/api"
	"github.com/blackmichael/solana-twitter/internal/config"
	"github.com/blackmichael/solana-twitter/internal/domain"
	"github.com/blackmichael/solana-twitter/internal/httpserver"
	"github.com/blackmichael/solana-twitter/internal/metrics"
	"github.com/blackmichael/solana-twitter/internal/sqlite"
	"github.com/blackmichael/solana-twitter/internal/stream"
)

func startServer(t *testing.T) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		ProgramID:          domain.MustParseIdentity(config.DefaultProgramID),
		Rent:               domain.DefaultRent(),
		MaxAirdropLamports: 2_000_000_000,
	}

	repo, err := sqlite.NewRepository(filepath.Join(t.TempDir(), "tweets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	m := metrics.New()
	hub := stream.NewHub(m, logger)
	t.Cleanup(hub.Close)

	svc := domain.NewTweetService(cfg.ServiceConfig(), repo, domain.Ed25519Verifier{}, domain.SystemClock, hub, m, logger)
	ts := httptest.NewServer(httpserver.NewServer(cfg, svc, hub, m.Handler(), logger).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// run executes the CLI with the given arguments and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"tweet"}, args...))
	return out.String(), err
}

func TestSendAndShow(t *testing.T) {
	url := startServer(t)
	keypair := filepath.Join(t.TempDir(), "id.json")
	global := []string{"--url", url, "--keypair", keypair}

	out, err := run(t, append(global, "keygen")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Identity: ")

	_, err = run(t, append(global, "keygen")...)
	assert.Error(t, err, "keygen must not overwrite without --force")

	out, err = run(t, append(global, "--json", "airdrop", "1000000000")...)
	require.NoError(t, err)
	var balance api.Balance
	require.NoError(t, json.Unmarshal([]byte(out), &balance))
	assert.Equal(t, uint64(1_000_000_000), balance.Lamports)

	out, err = run(t, append(global, "--json", "send", "--topic", "solana", "gm", "everyone")...)
	require.NoError(t, err)
	var sent api.Tweet
	require.NoError(t, json.Unmarshal([]byte(out), &sent))
	assert.Equal(t, balance.Identity, sent.Author)
	assert.Equal(t, "solana", sent.Topic)
	assert.Equal(t, "gm everyone", sent.Content)

	out, err = run(t, append(global, "show", sent.Address)...)
	require.NoError(t, err)
	assert.Contains(t, out, "#solana")
	assert.Contains(t, out, "gm everyone")

	out, err = run(t, append(global, "--json", "balance")...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &balance))
	assert.Equal(t, 1_000_000_000-sent.Lamports, balance.Lamports)

	out, err = run(t, append(global, "program")...)
	require.NoError(t, err)
	assert.Contains(t, out, config.DefaultProgramID)
}

func TestSendRejectsLongTopic(t *testing.T) {
	url := startServer(t)
	keypair := filepath.Join(t.TempDir(), "id.json")
	global := []string{"--url", url, "--keypair", keypair}

	_, err := run(t, append(global, "keygen")...)
	require.NoError(t, err)
	_, err = run(t, append(global, "airdrop", "1000000000")...)
	require.NoError(t, err)

	topic := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"
	_, err = run(t, append(global, "send", "--topic", topic, "hi")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TopicTooLong")
	assert.Contains(t, err.Error(), "6000")
}

func TestFormatLamports(t *testing.T) {
	assert.Equal(t, "890880 lamports (0.00089088 SOL)", formatLamports(890880))
	assert.Equal(t, "2000000000 lamports (2 SOL)", formatLamports(2_000_000_000))
}
