package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hsaban/saband/internal/domain"
)

type BusinessStore struct {
	db *sqlx.DB
}

func NewBusinessStore(db *sqlx.DB) *BusinessStore {
	return &BusinessStore{db: db}
}

const businessColumns = `id, category, question, answer, image_url, video_url, created_at, updated_at`

func (s *BusinessStore) List(ctx context.Context) ([]*domain.BusinessInfo, error) {
	var entries []*domain.BusinessInfo
	err := s.db.SelectContext(ctx, &entries, `SELECT `+businessColumns+` FROM business_info ORDER BY category ASC, question ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list business info: %w", err)
	}
	return entries, nil
}

// ListForPrompt returns up to limit curated entries for injection into the
// model's system prompt.
func (s *BusinessStore) ListForPrompt(ctx context.Context, limit int) ([]*domain.BusinessInfo, error) {
	var entries []*domain.BusinessInfo
	err := s.db.SelectContext(ctx, &entries, s.db.Rebind(`
		SELECT `+businessColumns+` FROM business_info ORDER BY updated_at DESC LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list business info for prompt: %w", err)
	}
	return entries, nil
}

func (s *BusinessStore) GetByID(ctx context.Context, id string) (*domain.BusinessInfo, error) {
	entry := &domain.BusinessInfo{}
	err := s.db.GetContext(ctx, entry, s.db.Rebind(`SELECT `+businessColumns+` FROM business_info WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business info: %w", err)
	}
	return entry, nil
}

func (s *BusinessStore) Create(ctx context.Context, entry *domain.BusinessInfo) (*domain.BusinessInfo, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO business_info (id, category, question, answer, image_url, video_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, entry.Category, entry.Question, entry.Answer, entry.ImageURL, entry.VideoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create business info: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *BusinessStore) Update(ctx context.Context, entry *domain.BusinessInfo) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE business_info SET category = ?, question = ?, answer = ?, image_url = ?, video_url = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), entry.Category, entry.Question, entry.Answer, entry.ImageURL, entry.VideoURL, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update business info: %w", err)
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

func (s *BusinessStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM business_info WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete business info: %w", err)
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
