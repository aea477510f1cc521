package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/blackmichael/solana-twitter/internal/domain"
)

// DefaultProgramID is the address the tweet program was deployed under.
const DefaultProgramID = "D6wJsHUyGE3Ng6hgyXiSQ1oifSgaJVNgU2LhDWzyKZQU"

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// DatabasePath is the SQLite database file holding accounts and balances.
	DatabasePath string

	// LogLevel is the minimum slog level.
	LogLevel slog.Level

	// ProgramID owns every tweet account.
	ProgramID domain.Identity

	// Rent prices tweet accounts.
	Rent domain.Rent

	// MaxAirdropLamports caps a single airdrop.
	MaxAirdropLamports uint64
}

// Load reads configuration from environment variables with sensible
// defaults. If TWEETS_ENV_FILE names a dotenv file, or a .env file exists in
// the working directory, it is loaded first; variables already set in the
// environment take precedence.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	port := 8899
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "tweets.db"
	}

	level, err := parseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	programID := os.Getenv("PROGRAM_ID")
	if programID == "" {
		programID = DefaultProgramID
	}
	program, err := domain.ParseIdentity(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid PROGRAM_ID: %w", err)
	}

	rent := domain.DefaultRent()
	if v := os.Getenv("RENT_LAMPORTS_PER_BYTE_YEAR"); v != "" {
		rent.LamportsPerByteYear, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RENT_LAMPORTS_PER_BYTE_YEAR: %w", err)
		}
	}
	if v := os.Getenv("RENT_EXEMPTION_THRESHOLD"); v != "" {
		rent.ExemptionThreshold, err = strconv.ParseFloat(v, 64)
		if err != nil || rent.ExemptionThreshold < 0 {
			return nil, fmt.Errorf("invalid RENT_EXEMPTION_THRESHOLD %q", v)
		}
	}

	maxAirdrop := uint64(2_000_000_000)
	if v := os.Getenv("AIRDROP_MAX_LAMPORTS"); v != "" {
		maxAirdrop, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid AIRDROP_MAX_LAMPORTS: %w", err)
		}
	}

	return &Config{
		Port:               port,
		DatabasePath:       dbPath,
		LogLevel:           level,
		ProgramID:          program,
		Rent:               rent,
		MaxAirdropLamports: maxAirdrop,
	}, nil
}

// ServiceConfig returns the domain settings derived from c.
func (c *Config) ServiceConfig() domain.ServiceConfig {
	return domain.ServiceConfig{
		ProgramID:  c.ProgramID,
		Rent:       c.Rent,
		MaxAirdrop: c.MaxAirdropLamports,
	}
}

func loadEnvFile() error {
	if path := os.Getenv("TWEETS_ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
