// ABOUTME: Journal entry persistence
// ABOUTME: Entries are append-only and listed per account, newest first

package store

import (
	"context"
	"fmt"
)

// CreateEntry inserts a journal entry and sets entry.ID from the generated row ID.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO entries (account_id, text, augmentation, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		entry.AccountID,
		entry.Text,
		entry.Augmentation,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading entry id: %w", err)
	}
	entry.ID = id

	s.logger.Debug("created entry", "id", entry.ID, "account_id", entry.AccountID)
	return nil
}

// ListEntries returns all entries owned by the account ordered by creation
// time descending. Entries sharing a timestamp are ordered by ID descending.
func (s *SQLiteStore) ListEntries(ctx context.Context, accountID int64) ([]*Entry, error) {
	query := `
		SELECT id, account_id, text, augmentation, created_at
		FROM entries
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var entry Entry
		var createdAtStr string

		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Text,
			&entry.Augmentation,
			&createdAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}

		entry.CreatedAt, err = parseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}
