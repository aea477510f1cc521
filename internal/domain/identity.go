package domain

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// IdentitySize is the length in bytes of an Identity.
const IdentitySize = 32

// Identity is a 32-byte public key naming a caller or an account address.
// Its text form is base58, as used by Solana tooling.
type Identity [IdentitySize]byte

// ParseIdentity decodes a base58 string into an Identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("decode base58 identity %q: %w", s, err)
	}
	if len(b) != IdentitySize {
		return id, fmt.Errorf("identity %q is %d bytes, want %d", s, len(b), IdentitySize)
	}
	copy(id[:], b)
	return id, nil
}

// MustParseIdentity is like ParseIdentity but panics on error. Intended for
// well-known constants.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IdentityFromPublicKey converts an ed25519 public key into an Identity.
func IdentityFromPublicKey(pub ed25519.PublicKey) (Identity, error) {
	var id Identity
	if len(pub) != ed25519.PublicKeySize {
		return id, fmt.Errorf("public key is %d bytes, want %d", len(pub), ed25519.PublicKeySize)
	}
	copy(id[:], pub)
	return id, nil
}

// PublicKey returns the identity as an ed25519 public key.
func (id Identity) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(id[:])
}

// IsZero reports whether every byte of the identity is zero.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

func (id Identity) String() string {
	return base58.Encode(id[:])
}

// MarshalText implements encoding.TextMarshaler so identities serialize as
// base58 in JSON.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
