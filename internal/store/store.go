// ABOUTME: Store interfaces and data types for quill persistence
// ABOUTME: Defines Account and Entry plus the AccountStore/EntryStore contracts

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateIdentity is returned when an account with the same identity already exists
var ErrDuplicateIdentity = errors.New("identity already exists")

// Account is a registered user. Identity is the case-sensitive login key.
type Account struct {
	ID           int64
	Identity     string
	PasswordHash string // bcrypt hash, never logged
	CreatedAt    time.Time
}

// Entry is a journal entry owned by exactly one account.
// Augmentation holds either generated text or the pipeline's fallback text.
type Entry struct {
	ID           int64
	AccountID    int64
	Text         string
	Augmentation string
	CreatedAt    time.Time
}

// AccountStore persists accounts. CreateAccount must reject a duplicate
// identity atomically and report it as ErrDuplicateIdentity.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id int64) (*Account, error)
	GetAccountByIdentity(ctx context.Context, identity string) (*Account, error)
}

// EntryStore persists journal entries.
type EntryStore interface {
	// CreateEntry inserts the entry and sets entry.ID to the generated row ID.
	CreateEntry(ctx context.Context, entry *Entry) error
	// ListEntries returns the account's entries, newest first. An account
	// without entries yields an empty slice.
	ListEntries(ctx context.Context, accountID int64) ([]*Entry, error)
}

// Store combines every persistence capability the server needs.
type Store interface {
	AccountStore
	EntryStore

	// Ping checks that the underlying database is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}

// timeLayout is fixed-width so that lexical order of stored timestamps
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
