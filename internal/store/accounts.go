// ABOUTME: Account persistence for the credential store
// ABOUTME: Identity uniqueness is enforced by the accounts.identity UNIQUE constraint

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateAccount inserts a new account and sets account.ID.
// Returns ErrDuplicateIdentity if the identity is already registered.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (identity, password_hash, created_at)
		VALUES (?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		account.Identity,
		account.PasswordHash,
		formatTime(account.CreatedAt),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading account id: %w", err)
	}
	account.ID = id

	s.logger.Debug("created account", "id", account.ID)
	return nil
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id int64) (*Account, error) {
	query := `
		SELECT id, identity, password_hash, created_at
		FROM accounts
		WHERE id = ?
	`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, id))
}

// GetAccountByIdentity retrieves an account by its login identity.
// Returns ErrNotFound if no account uses the identity.
func (s *SQLiteStore) GetAccountByIdentity(ctx context.Context, identity string) (*Account, error) {
	query := `
		SELECT id, identity, password_hash, created_at
		FROM accounts
		WHERE identity = ?
	`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, identity))
}

func (s *SQLiteStore) scanAccount(row *sql.Row) (*Account, error) {
	var account Account
	var createdAtStr string

	err := row.Scan(
		&account.ID,
		&account.Identity,
		&account.PasswordHash,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}

	account.CreatedAt, err = parseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &account, nil
}
