package domain

import (
	"context"
	"time"
)

// SignedSendTweet is a send_tweet instruction together with the author's
// ed25519 signature over its binary encoding.
type SignedSendTweet struct {
	Instruction SendTweetInstruction
	Signature   []byte
}

// SignatureVerifier proves that a request was authorized and reports who
// authorized it.
type SignatureVerifier interface {
	// Verify returns the identity of the signer, or ErrMissingSignature /
	// ErrInvalidSignature.
	Verify(ctx context.Context, tx SignedSendTweet) (Identity, error)
}

// Clock supplies the current time in unix seconds.
type Clock interface {
	UnixTimestamp() int64
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

func (f ClockFunc) UnixTimestamp() int64 { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(func() int64 { return time.Now().Unix() })

// AllocateRequest describes a new account to create.
type AllocateRequest struct {
	// Address of the new account. It must not already exist.
	Address Identity

	// Owner is the program that will own the account.
	Owner Identity

	// Payer funds the account's rent-exempt balance.
	Payer Identity

	// Space is the fixed data size in bytes.
	Space int

	// Lamports moved from Payer into the new account.
	Lamports uint64

	// Discriminator is written at offset zero of the account data.
	Discriminator [DiscriminatorLength]byte
}

// Slot is an exclusively owned, freshly allocated account. Nothing is
// visible to other callers until Commit succeeds; Rollback after Commit is a
// no-op.
type Slot interface {
	Address() Identity
	Write(ctx context.Context, offset int, data []byte) error
	Commit() error
	Rollback() error
}

// SlotAllocator creates accounts. Allocate fails with ErrSlotExists if the
// address is taken and ErrInsufficientFunds if the payer cannot fund it.
type SlotAllocator interface {
	Allocate(ctx context.Context, req AllocateRequest) (Slot, error)
}

// Account is a stored account as seen by readers.
type Account struct {
	Address   Identity
	Owner     Identity
	Lamports  uint64
	Data      []byte
	CreatedAt time.Time
}

// AccountReader loads a single account by address.
type AccountReader interface {
	// GetAccount returns ErrSlotNotFound if no account exists at address.
	GetAccount(ctx context.Context, address Identity) (*Account, error)
}

// Ledger tracks spendable lamport balances of signers.
type Ledger interface {
	Balance(ctx context.Context, id Identity) (uint64, error)
	Credit(ctx context.Context, id Identity, lamports uint64) (uint64, error)
}

// Publisher fans out events about created tweets.
type Publisher interface {
	Publish(event TweetCreated)
}

// Observer receives counters about the outcome of send_tweet calls.
type Observer interface {
	TweetCreated(lamports uint64)
	TweetRejected(reason string)
}
