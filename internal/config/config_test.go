package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/solana-twitter/internal/config"
	"github.com/blackmichael/solana-twitter/internal/domain"
)

var envKeys = []string{
	"TWEETS_ENV_FILE", "PORT", "DATABASE_PATH", "LOG_LEVEL", "PROGRAM_ID",
	"RENT_LAMPORTS_PER_BYTE_YEAR", "RENT_EXEMPTION_THRESHOLD", "AIRDROP_MAX_LAMPORTS",
}

// cleanEnv clears every variable Load reads and moves into an empty
// directory so no stray .env file is picked up.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8899, cfg.Port)
	assert.Equal(t, "tweets.db", cfg.DatabasePath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, config.DefaultProgramID, cfg.ProgramID.String())
	assert.Equal(t, domain.DefaultRent(), cfg.Rent)
	assert.Equal(t, uint64(2_000_000_000), cfg.MaxAirdropLamports)

	svc := cfg.ServiceConfig()
	assert.Equal(t, cfg.ProgramID, svc.ProgramID)
	assert.Equal(t, cfg.MaxAirdropLamports, svc.MaxAirdrop)
}

func TestLoadFromEnvironment(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/tmp/x.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PROGRAM_ID", "11111111111111111111111111111111")
	t.Setenv("RENT_LAMPORTS_PER_BYTE_YEAR", "1")
	t.Setenv("RENT_EXEMPTION_THRESHOLD", "1.5")
	t.Setenv("AIRDROP_MAX_LAMPORTS", "42")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.ProgramID.IsZero())
	assert.Equal(t, domain.Rent{LamportsPerByteYear: 1, ExemptionThreshold: 1.5}, cfg.Rent)
	assert.Equal(t, uint64(42), cfg.MaxAirdropLamports)
}

func TestLoadEnvFile(t *testing.T) {
	cleanEnv(t)

	path := filepath.Join(t.TempDir(), "tweets.env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7000\nDATABASE_PATH=file.db\n"), 0o600))
	t.Setenv("TWEETS_ENV_FILE", path)
	t.Setenv("DATABASE_PATH", "env-wins.db")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "env-wins.db", cfg.DatabasePath)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "abc"},
		{"LOG_LEVEL", "loud"},
		{"PROGRAM_ID", "not-a-key"},
		{"RENT_LAMPORTS_PER_BYTE_YEAR", "-1"},
		{"RENT_EXEMPTION_THRESHOLD", "x"},
		{"AIRDROP_MAX_LAMPORTS", "1.5"},
		{"TWEETS_ENV_FILE", "/does/not/exist.env"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
