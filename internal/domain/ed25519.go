package domain

import (
	"context"
	"crypto/ed25519"
	"fmt"
)

// Ed25519Verifier checks the author's signature over the encoded
// instruction.
type Ed25519Verifier struct{}

// Verify implements SignatureVerifier.
func (Ed25519Verifier) Verify(_ context.Context, tx SignedSendTweet) (Identity, error) {
	if len(tx.Signature) == 0 {
		return Identity{}, ErrMissingSignature
	}
	if len(tx.Signature) != ed25519.SignatureSize {
		return Identity{}, fmt.Errorf("%w: signature is %d bytes", ErrInvalidSignature, len(tx.Signature))
	}

	msg, err := tx.Instruction.MarshalBinary()
	if err != nil {
		return Identity{}, fmt.Errorf("encode instruction: %w", err)
	}

	author := tx.Instruction.Author
	if !ed25519.Verify(author.PublicKey(), msg, tx.Signature) {
		return Identity{}, fmt.Errorf("%w: author %s", ErrInvalidSignature, author)
	}
	return author, nil
}

// SignSendTweet signs ix with the author's private key.
func SignSendTweet(ix SendTweetInstruction, key ed25519.PrivateKey) (SignedSendTweet, error) {
	msg, err := ix.MarshalBinary()
	if err != nil {
		return SignedSendTweet{}, fmt.Errorf("encode instruction: %w", err)
	}
	return SignedSendTweet{
		Instruction: ix,
		Signature:   ed25519.Sign(key, msg),
	}, nil
}
