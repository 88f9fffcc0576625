package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hsaban/saband/internal/domain"
)

type CacheStore struct {
	db *sqlx.DB
}

func NewCacheStore(db *sqlx.DB) *CacheStore {
	return &CacheStore{db: db}
}

// Get returns the cached answer for key, or (nil, nil) on a miss. Freshness
// is the caller's concern; see domain.CachedAnswer.Fresh.
func (s *CacheStore) Get(ctx context.Context, key string) (*domain.CachedAnswer, error) {
	answer := &domain.CachedAnswer{}
	err := s.db.GetContext(ctx, answer, s.db.Rebind(`
		SELECT key, payload, expires_at, created_at, updated_at FROM answers_cache WHERE key = ?
	`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached answer: %w", err)
	}
	return answer, nil
}

// Upsert writes payload under key, replacing any previous entry
// (last-write-wins). A nil expiresAt stores a permanent entry.
func (s *CacheStore) Upsert(ctx context.Context, key, payload string, expiresAt *time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO answers_cache (key, payload, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`), key, payload, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cached answer: %w", err)
	}
	return nil
}

// List returns cache rows for the admin dashboard, newest first.
func (s *CacheStore) List(ctx context.Context, limit int) ([]*domain.CachedAnswer, error) {
	var answers []*domain.CachedAnswer
	err := s.db.SelectContext(ctx, &answers, s.db.Rebind(`
		SELECT key, payload, expires_at, created_at, updated_at FROM answers_cache
		ORDER BY updated_at DESC LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached answers: %w", err)
	}
	return answers, nil
}

func (s *CacheStore) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM answers_cache WHERE key = ?`), key)
	if err != nil {
		return fmt.Errorf("failed to delete cached answer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes rows whose expiry has passed. Permanent rows
// (expires_at NULL) are never touched.
func (s *CacheStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM answers_cache WHERE expires_at IS NOT NULL AND expires_at <= ?
	`), now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired answers: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
