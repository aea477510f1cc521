// Package keys reads and writes ed25519 keypairs in the Solana CLI file
// format: a JSON array of the 64 private key bytes.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackmichael/solana-twitter/internal/domain"
)

// ErrKeyExists is returned by Save when the target file already exists and
// overwriting was not requested.
var ErrKeyExists = errors.New("keypair file already exists")

// Keypair is an ed25519 signing key and its identity.
type Keypair struct {
	Private  ed25519.PrivateKey
	Identity domain.Identity
}

// Generate creates a fresh random keypair.
func Generate() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return FromPrivateKey(priv)
}

// FromPrivateKey wraps an existing ed25519 private key.
func FromPrivateKey(priv ed25519.PrivateKey) (*Keypair, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key is %d bytes, want %d", len(priv), ed25519.PrivateKeySize)
	}
	id, err := domain.IdentityFromPublicKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	return &Keypair{Private: priv, Identity: id}, nil
}

// Load reads a keypair file.
func Load(path string) (*Keypair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair: %w", err)
	}

	// A []byte target would expect base64.
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, fmt.Errorf("parse keypair %s: %w", path, err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair %s has %d bytes, want %d", path, len(ints), ed25519.PrivateKeySize)
	}

	priv := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("keypair %s: byte %d out of range: %d", path, i, v)
		}
		priv[i] = byte(v)
	}

	kp, err := FromPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	// The trailing 32 bytes must be the public half of the seed.
	if !kp.Private.Public().(ed25519.PublicKey).Equal(ed25519.NewKeyFromSeed(priv.Seed()).Public()) {
		return nil, fmt.Errorf("keypair %s: public key does not match seed", path)
	}
	return kp, nil
}

// Save writes kp to path with owner-only permissions, creating parent
// directories as needed.
func Save(path string, kp *Keypair, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrKeyExists, path)
		}
	}

	ints := make([]int, len(kp.Private))
	for i, b := range kp.Private {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return fmt.Errorf("encode keypair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create keypair dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write keypair: %w", err)
	}
	return nil
}

// DefaultPath returns ~/.config/solana/id.json, where the Solana CLI keeps
// its default keypair.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "id.json"
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}
