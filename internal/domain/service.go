package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrAirdropLimit is returned when an airdrop request is zero or above the
// configured maximum.
var ErrAirdropLimit = errors.New("airdrop amount out of range")

// Store is the storage collaborator. A single backend provides account
// allocation, account reads, and signer balances.
type Store interface {
	SlotAllocator
	AccountReader
	Ledger
}

// ServiceConfig holds the program-level settings of a TweetService.
type ServiceConfig struct {
	// ProgramID owns every tweet account.
	ProgramID Identity

	// Rent prices the fixed-size tweet account.
	Rent Rent

	// MaxAirdrop caps a single airdrop in lamports.
	MaxAirdrop uint64
}

// TweetService is the core domain service. It verifies and validates
// send_tweet requests and writes each accepted tweet into its own freshly
// allocated account.
type TweetService struct {
	cfg       ServiceConfig
	store     Store
	verifier  SignatureVerifier
	clock     Clock
	publisher Publisher
	observer  Observer
	logger    *slog.Logger
}

// NewTweetService creates a TweetService. publisher and observer may be nil.
func NewTweetService(
	cfg ServiceConfig,
	store Store,
	verifier SignatureVerifier,
	clock Clock,
	publisher Publisher,
	observer Observer,
	logger *slog.Logger,
) *TweetService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &TweetService{
		cfg:       cfg,
		store:     store,
		verifier:  verifier,
		clock:     clock,
		publisher: publisher,
		observer:  observer,
		logger:    logger,
	}
}

// ProgramID returns the program that owns tweet accounts.
func (s *TweetService) ProgramID() Identity {
	return s.cfg.ProgramID
}

// TweetRent returns the lamports the author pays for one tweet account.
func (s *TweetService) TweetRent() uint64 {
	return s.cfg.Rent.MinimumBalance(TweetSpace)
}

// SendTweet creates a tweet account. The author's signature is checked
// first, then the record is validated, and only then is the account
// allocated and written. Either the account is committed in full or nothing
// is stored.
func (s *TweetService) SendTweet(ctx context.Context, tx SignedSendTweet) (*CreatedTweet, error) {
	author, err := s.verifier.Verify(ctx, tx)
	if err != nil {
		s.observer.TweetRejected("signature")
		return nil, fmt.Errorf("verify signature: %w", err)
	}

	ix := tx.Instruction
	tweet, err := CreateRecord(ix.Topic, ix.Content, author, s.clock.UnixTimestamp())
	if err != nil {
		if pe, ok := AsProgramError(err); ok {
			s.observer.TweetRejected(pe.Name)
		} else if errors.Is(err, ErrInvalidEncoding) {
			s.observer.TweetRejected("encoding")
		}
		s.logger.Debug("tweet rejected", "author", author, "error", err)
		return nil, err
	}

	body, err := tweet.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode tweet: %w", err)
	}

	lamports := s.TweetRent()
	slot, err := s.store.Allocate(ctx, AllocateRequest{
		Address:       ix.Tweet,
		Owner:         s.cfg.ProgramID,
		Payer:         author,
		Space:         TweetSpace,
		Lamports:      lamports,
		Discriminator: TweetDiscriminator,
	})
	if err != nil {
		s.observer.TweetRejected("allocate")
		return nil, fmt.Errorf("allocate tweet account: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := slot.Rollback(); rbErr != nil {
				s.logger.Error("rollback tweet account failed", "address", ix.Tweet, "error", rbErr)
			}
		}
	}()

	if err := slot.Write(ctx, DiscriminatorLength, body); err != nil {
		return nil, fmt.Errorf("write tweet account: %w", err)
	}
	if err := slot.Commit(); err != nil {
		return nil, fmt.Errorf("commit tweet account: %w", err)
	}
	committed = true

	created := &CreatedTweet{
		Address:  slot.Address(),
		Tweet:    tweet,
		Lamports: lamports,
	}

	s.observer.TweetCreated(lamports)
	s.publisher.Publish(created.event())
	s.logger.Info("tweet created",
		"address", created.Address,
		"author", author,
		"topic", tweet.Topic,
		"lamports", lamports,
	)

	return created, nil
}

// GetTweet loads and decodes the tweet stored at address.
func (s *TweetService) GetTweet(ctx context.Context, address Identity) (*Tweet, error) {
	acct, err := s.store.GetAccount(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", address, err)
	}
	if acct.Owner != s.cfg.ProgramID {
		return nil, fmt.Errorf("%w: account %s is owned by %s", ErrAccountMismatch, address, acct.Owner)
	}

	tweet, err := DecodeTweet(acct.Data)
	if err != nil {
		return nil, fmt.Errorf("decode account %s: %w", address, err)
	}
	return &tweet, nil
}

// Airdrop credits test lamports to id and returns the new balance.
func (s *TweetService) Airdrop(ctx context.Context, id Identity, lamports uint64) (uint64, error) {
	if lamports == 0 || lamports > s.cfg.MaxAirdrop {
		return 0, fmt.Errorf("%w: %d lamports, max %d", ErrAirdropLimit, lamports, s.cfg.MaxAirdrop)
	}

	balance, err := s.store.Credit(ctx, id, lamports)
	if err != nil {
		return 0, fmt.Errorf("credit %s: %w", id, err)
	}

	s.logger.Info("airdrop", "identity", id, "lamports", lamports, "balance", balance)
	return balance, nil
}

// Balance returns the spendable lamports of id.
func (s *TweetService) Balance(ctx context.Context, id Identity) (uint64, error) {
	return s.store.Balance(ctx, id)
}

type nopPublisher struct{}

func (nopPublisher) Publish(TweetCreated) {}

type nopObserver struct{}

func (nopObserver) TweetCreated(uint64)  {}
func (nopObserver) TweetRejected(string) {}
