// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject storage failures

package store

import (
	"context"
	"sort"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
// Setting one of the *Err fields makes the matching operation fail.
type MockStore struct {
	mu            sync.RWMutex
	accounts      map[int64]*Account
	identityIndex map[string]int64
	entries       map[int64][]*Entry // keyed by account ID
	nextAccountID int64
	nextEntryID   int64

	CreateAccountErr error
	GetAccountErr    error
	CreateEntryErr   error
	ListEntriesErr   error
	PingErr          error
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		accounts:      make(map[int64]*Account),
		identityIndex: make(map[string]int64),
		entries:       make(map[int64][]*Entry),
	}
}

// CreateAccount stores a new account, rejecting duplicate identities.
func (m *MockStore) CreateAccount(ctx context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateAccountErr != nil {
		return m.CreateAccountErr
	}
	if _, exists := m.identityIndex[account.Identity]; exists {
		return ErrDuplicateIdentity
	}

	m.nextAccountID++
	account.ID = m.nextAccountID

	// Make a copy to avoid external modification
	a := *account
	m.accounts[a.ID] = &a
	m.identityIndex[a.Identity] = a.ID
	return nil
}

// GetAccount retrieves an account by ID.
func (m *MockStore) GetAccount(ctx context.Context, id int64) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetAccountErr != nil {
		return nil, m.GetAccountErr
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *a
	return &result, nil
}

// GetAccountByIdentity retrieves an account by identity.
func (m *MockStore) GetAccountByIdentity(ctx context.Context, identity string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetAccountErr != nil {
		return nil, m.GetAccountErr
	}
	id, ok := m.identityIndex[identity]
	if !ok {
		return nil, ErrNotFound
	}
	result := *m.accounts[id]
	return &result, nil
}

// CreateEntry stores a new entry and assigns its ID.
func (m *MockStore) CreateEntry(ctx context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateEntryErr != nil {
		return m.CreateEntryErr
	}

	m.nextEntryID++
	entry.ID = m.nextEntryID

	e := *entry
	m.entries[e.AccountID] = append(m.entries[e.AccountID], &e)
	return nil
}

// ListEntries returns copies of the account's entries, newest first.
func (m *MockStore) ListEntries(ctx context.Context, accountID int64) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListEntriesErr != nil {
		return nil, m.ListEntriesErr
	}

	result := make([]*Entry, 0, len(m.entries[accountID]))
	for _, e := range m.entries[accountID] {
		entry := *e
		result = append(result, &entry)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// Ping reports PingErr.
func (m *MockStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
