// ABOUTME: Tests for the in-memory MockStore
// ABOUTME: Keeps the mock's behaviour aligned with SQLiteStore semantics

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMockStore_AccountLifecycle(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	account := &Account{Identity: "alice", PasswordHash: "hash", CreatedAt: time.Now()}
	if err := m.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.ID != 1 {
		t.Errorf("ID = %d, want 1", account.ID)
	}

	if err := m.CreateAccount(ctx, &Account{Identity: "alice"}); !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("duplicate error = %v, want ErrDuplicateIdentity", err)
	}

	got, err := m.GetAccountByIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAccountByIdentity failed: %v", err)
	}
	got.Identity = "mutated"

	again, _ := m.GetAccount(ctx, account.ID)
	if again.Identity != "alice" {
		t.Error("returned account should be a copy")
	}

	if _, err := m.GetAccount(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccount error = %v, want ErrNotFound", err)
	}
}

func TestMockStore_ListEntriesNewestFirst(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	base := time.Now()
	for i, text := range []string{"old", "new"} {
		e := &Entry{AccountID: 1, Text: text, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := m.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	entries, err := m.ListEntries(ctx, 1)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Text != "new" || entries[1].Text != "old" {
		t.Errorf("unexpected order: %+v", entries)
	}

	empty, err := m.ListEntries(ctx, 2)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v (err %v)", empty, err)
	}
}

func TestMockStore_InjectedErrors(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	boom := errors.New("boom")

	m.CreateEntryErr = boom
	if err := m.CreateEntry(ctx, &Entry{AccountID: 1}); !errors.Is(err, boom) {
		t.Errorf("CreateEntry error = %v, want boom", err)
	}

	m.ListEntriesErr = boom
	if _, err := m.ListEntries(ctx, 1); !errors.Is(err, boom) {
		t.Errorf("ListEntries error = %v, want boom", err)
	}

	m.PingErr = boom
	if err := m.Ping(ctx); !errors.Is(err, boom) {
		t.Errorf("Ping error = %v, want boom", err)
	}
}
