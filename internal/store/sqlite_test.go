// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers account uniqueness, entry persistence, and newest-first listing

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestAccount(t *testing.T, s *SQLiteStore, identity string) *Account {
	t.Helper()
	account := &Account{
		Identity:     identity,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("CreateAccount(%q) failed: %v", identity, err)
	}
	return account
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestNewSQLiteStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	account := &Account{Identity: "alice@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	if err := first.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	first.Close()

	second, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	defer second.Close()

	got, err := second.GetAccountByIdentity(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetAccountByIdentity after reopen failed: %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("ID = %d, want %d", got.ID, account.ID)
	}
}

func TestCreateAndGetAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 12, 30, 0, 123456789, time.UTC)
	account := &Account{
		Identity:     "alice@example.com",
		PasswordHash: "$2a$10$abcdef",
		CreatedAt:    created,
	}
	if err := s.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.ID <= 0 {
		t.Fatalf("expected positive ID, got %d", account.ID)
	}

	got, err := s.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Identity != account.Identity {
		t.Errorf("Identity = %q, want %q", got.Identity, account.Identity)
	}
	if got.PasswordHash != account.PasswordHash {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, account.PasswordHash)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}

	byIdentity, err := s.GetAccountByIdentity(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetAccountByIdentity failed: %v", err)
	}
	if byIdentity.ID != account.ID {
		t.Errorf("ID = %d, want %d", byIdentity.ID, account.ID)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetAccount(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccount error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetAccountByIdentity(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccountByIdentity error = %v, want ErrNotFound", err)
	}
}

func TestCreateAccount_DuplicateIdentity(t *testing.T) {
	s := newTestStore(t)
	createTestAccount(t, s, "alice@example.com")

	dup := &Account{Identity: "alice@example.com", PasswordHash: "other", CreatedAt: time.Now()}
	err := s.CreateAccount(context.Background(), dup)
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("CreateAccount error = %v, want ErrDuplicateIdentity", err)
	}
}

func TestCreateAccount_IdentityIsCaseSensitive(t *testing.T) {
	s := newTestStore(t)
	lower := createTestAccount(t, s, "alice@example.com")
	upper := createTestAccount(t, s, "Alice@example.com")

	if lower.ID == upper.ID {
		t.Error("identities differing only in case should be distinct accounts")
	}
}

func TestCreateAccount_ConcurrentSameIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateAccount(ctx, &Account{
				Identity:     "race@example.com",
				PasswordHash: fmt.Sprintf("hash-%d", i),
				CreatedAt:    time.Now(),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDuplicateIdentity):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful registration, got %d", succeeded)
	}
}

func TestCreateEntry_AssignsID(t *testing.T) {
	s := newTestStore(t)
	account := createTestAccount(t, s, "alice@example.com")

	entry := &Entry{
		AccountID:    account.ID,
		Text:         "Today was good",
		Augmentation: "Glad to hear it",
		CreatedAt:    time.Now(),
	}
	if err := s.CreateEntry(context.Background(), entry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if entry.ID <= 0 {
		t.Errorf("expected positive entry ID, got %d", entry.ID)
	}
}

func TestCreateEntry_UnknownAccount(t *testing.T) {
	s := newTestStore(t)

	entry := &Entry{AccountID: 42, Text: "orphan", Augmentation: "x", CreatedAt: time.Now()}
	if err := s.CreateEntry(context.Background(), entry); err == nil {
		t.Fatal("expected foreign key failure for unknown account")
	}
}

func TestListEntries_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := createTestAccount(t, s, "alice@example.com")

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	texts := []string{"first", "second", "third"}
	for i, text := range texts {
		entry := &Entry{
			AccountID:    account.ID,
			Text:         text,
			Augmentation: "aug " + text,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreateEntry(ctx, entry); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	entries, err := s.ListEntries(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"third", "second", "first"}
	for i, e := range entries {
		if e.Text != want[i] {
			t.Errorf("entries[%d].Text = %q, want %q", i, e.Text, want[i])
		}
		if e.AccountID != account.ID {
			t.Errorf("entries[%d].AccountID = %d, want %d", i, e.AccountID, account.ID)
		}
	}
}

func TestListEntries_SameTimestampOrdersByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := createTestAccount(t, s, "alice@example.com")

	ts := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	var ids []int64
	for _, text := range []string{"a", "b"} {
		entry := &Entry{AccountID: account.ID, Text: text, Augmentation: "x", CreatedAt: ts}
		if err := s.CreateEntry(ctx, entry); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
		ids = append(ids, entry.ID)
	}

	entries, err := s.ListEntries(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != ids[1] || entries[1].ID != ids[0] {
		t.Errorf("expected IDs [%d %d], got %+v", ids[1], ids[0], entries)
	}
}

func TestListEntries_IsolatedPerAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestAccount(t, s, "alice@example.com")
	bob := createTestAccount(t, s, "bob@example.com")

	entry := &Entry{AccountID: alice.ID, Text: "alice only", Augmentation: "x", CreatedAt: time.Now()}
	if err := s.CreateEntry(ctx, entry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	entries, err := s.ListEntries(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if entries == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries for bob, got %d", len(entries))
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
