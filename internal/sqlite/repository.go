package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/blackmichael/solana-twitter/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	address    TEXT PRIMARY KEY,
	owner      TEXT NOT NULL,
	lamports   INTEGER NOT NULL,
	data       BLOB NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS balances (
	identity TEXT PRIMARY KEY,
	lamports INTEGER NOT NULL CHECK (lamports >= 0)
);`

// Repository implements domain.SlotAllocator, domain.AccountReader and
// domain.Ledger using SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository opens the SQLite database at path, creating the schema if
// needed. The caller should call Close when the repository is no longer
// needed.
func NewRepository(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection serializes writers; an allocated slot holds it
	// until it is committed or rolled back.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Allocate debits the payer and reserves a zeroed account of req.Space bytes
// with the discriminator written at offset zero. The account only becomes
// visible once the returned slot is committed.
func (r *Repository) Allocate(ctx context.Context, req domain.AllocateRequest) (domain.Slot, error) {
	if req.Space < domain.DiscriminatorLength {
		return nil, fmt.Errorf("space %d is smaller than the discriminator", req.Space)
	}
	if req.Lamports > math.MaxInt64 {
		return nil, fmt.Errorf("lamports %d out of range", req.Lamports)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	data := make([]byte, req.Space)
	copy(data, req.Discriminator[:])

	if err := allocate(ctx, tx, req, data); err != nil {
		tx.Rollback()
		return nil, err
	}

	return &slot{tx: tx, address: req.Address, data: data}, nil
}

func allocate(ctx context.Context, tx *sql.Tx, req domain.AllocateRequest, data []byte) error {
	address := req.Address.String()

	// An address that already holds an account or lamports cannot be
	// created again.
	var exists int
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE address = ?)
		    OR EXISTS (SELECT 1 FROM balances WHERE identity = ? AND lamports > 0)`,
		address, address,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check address %s: %w", address, err)
	}
	if exists != 0 {
		return fmt.Errorf("%w: %s", domain.ErrSlotExists, address)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE balances SET lamports = lamports - ?
		WHERE identity = ? AND lamports >= ?`,
		int64(req.Lamports), req.Payer.String(), int64(req.Lamports),
	)
	if err != nil {
		return fmt.Errorf("debit payer %s: %w", req.Payer, err)
	}
	if n, _ := res.RowsAffected(); n == 0 && req.Lamports > 0 {
		return fmt.Errorf("%w: payer %s needs %d", domain.ErrInsufficientFunds, req.Payer, req.Lamports)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (address, owner, lamports, data, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		address, req.Owner.String(), int64(req.Lamports), data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert account %s: %w", address, err)
	}
	return nil
}

// slot is an account allocated inside an open transaction.
type slot struct {
	tx      *sql.Tx
	address domain.Identity
	data    []byte
}

func (s *slot) Address() domain.Identity {
	return s.address
}

// Write stages data at offset. It never grows the account.
func (s *slot) Write(_ context.Context, offset int, data []byte) error {
	if offset < 0 || offset+len(data) > len(s.data) {
		return fmt.Errorf("write [%d, %d) outside account of %d bytes", offset, offset+len(data), len(s.data))
	}
	copy(s.data[offset:], data)
	return nil
}

func (s *slot) Commit() error {
	_, err := s.tx.Exec(`UPDATE accounts SET data = ? WHERE address = ?`, s.data, s.address.String())
	if err != nil {
		s.tx.Rollback()
		return fmt.Errorf("write account data: %w", err)
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *slot) Rollback() error {
	err := s.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// GetAccount loads a committed account by address.
func (r *Repository) GetAccount(ctx context.Context, address domain.Identity) (*domain.Account, error) {
	var (
		owner     string
		lamports  int64
		data      []byte
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT owner, lamports, data, created_at
		FROM accounts WHERE address = ?`,
		address.String(),
	).Scan(&owner, &lamports, &data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSlotNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("query account %s: %w", address, err)
	}

	ownerID, err := domain.ParseIdentity(owner)
	if err != nil {
		return nil, fmt.Errorf("parse owner of %s: %w", address, err)
	}

	return &domain.Account{
		Address:   address,
		Owner:     ownerID,
		Lamports:  uint64(lamports),
		Data:      data,
		CreatedAt: time.UnixMilli(createdAt).UTC(),
	}, nil
}

// Balance returns the spendable lamports of id, zero if it was never funded.
func (r *Repository) Balance(ctx context.Context, id domain.Identity) (uint64, error) {
	var lamports int64
	err := r.db.QueryRowContext(ctx,
		`SELECT lamports FROM balances WHERE identity = ?`, id.String(),
	).Scan(&lamports)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query balance %s: %w", id, err)
	}
	return uint64(lamports), nil
}

// Credit adds lamports to id and returns the new balance.
func (r *Repository) Credit(ctx context.Context, id domain.Identity, lamports uint64) (uint64, error) {
	if lamports > math.MaxInt64 {
		return 0, fmt.Errorf("lamports %d out of range", lamports)
	}

	var balance int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO balances (identity, lamports)
		VALUES (?, ?)
		ON CONFLICT (identity) DO UPDATE SET lamports = lamports + excluded.lamports
		RETURNING lamports`,
		id.String(), int64(lamports),
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("credit %s: %w", id, err)
	}
	return uint64(balance), nil
}
