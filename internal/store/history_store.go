package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hsaban/saband/internal/domain"
)

// HistoryStore is the append-only chat log. Entries are written after every
// resolved answer and only read back for the admin dashboard.
type HistoryStore struct {
	db *sqlx.DB
}

func NewHistoryStore(db *sqlx.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Append(ctx context.Context, query, response string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO chat_history (id, query, response) VALUES (?, ?, ?)
	`), uuid.NewString(), query, response)
	if err != nil {
		return fmt.Errorf("failed to append chat history: %w", err)
	}
	return nil
}

func (s *HistoryStore) ListRecent(ctx context.Context, limit int) ([]*domain.ChatEntry, error) {
	var entries []*domain.ChatEntry
	err := s.db.SelectContext(ctx, &entries, s.db.Rebind(`
		SELECT id, query, response, created_at FROM chat_history
		ORDER BY created_at DESC LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat history: %w", err)
	}
	return entries, nil
}
