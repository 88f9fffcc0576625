package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hsaban/saband/internal/domain"
)

type InventoryStore struct {
	db *sqlx.DB
}

func NewInventoryStore(db *sqlx.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

const inventoryColumns = `sku, product_name, category, price, coverage_per_sqm, drying_time,
	application_method, image_url, youtube_url, description, stock_qty, created_at, updated_at`

func (s *InventoryStore) GetBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	err := s.db.GetContext(ctx, item, s.db.Rebind(
		`SELECT `+inventoryColumns+` FROM inventory WHERE sku = ?`), sku)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

func (s *InventoryStore) List(ctx context.Context) ([]*domain.InventoryItem, error) {
	var items []*domain.InventoryItem
	err := s.db.SelectContext(ctx, &items, `SELECT `+inventoryColumns+` FROM inventory ORDER BY product_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// Match performs the chat pipeline's fuzzy catalog lookup: a case-insensitive
// partial match of the query against product name and SKU.
func (s *InventoryStore) Match(ctx context.Context, query string, limit int) ([]*domain.InventoryItem, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var items []*domain.InventoryItem
	err := s.db.SelectContext(ctx, &items, s.db.Rebind(`
		SELECT `+inventoryColumns+` FROM inventory
		WHERE LOWER(product_name) LIKE ? OR LOWER(sku) LIKE ?
		ORDER BY product_name ASC LIMIT ?
	`), pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to match inventory: %w", err)
	}
	return items, nil
}

// Upsert creates or replaces the row for item.SKU.
func (s *InventoryStore) Upsert(ctx context.Context, item *domain.InventoryItem) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO inventory (sku, product_name, category, price, coverage_per_sqm, drying_time,
			application_method, image_url, youtube_url, description, stock_qty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sku) DO UPDATE SET
			product_name = excluded.product_name,
			category = excluded.category,
			price = excluded.price,
			coverage_per_sqm = excluded.coverage_per_sqm,
			drying_time = excluded.drying_time,
			application_method = excluded.application_method,
			image_url = excluded.image_url,
			youtube_url = excluded.youtube_url,
			description = excluded.description,
			stock_qty = excluded.stock_qty,
			updated_at = CURRENT_TIMESTAMP
	`), item.SKU, item.ProductName, item.Category, item.Price, item.CoveragePerSqm, item.DryingTime,
		item.ApplicationMethod, item.ImageURL, item.YoutubeURL, item.Description, item.StockQty)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory item: %w", err)
	}
	return nil
}

func (s *InventoryStore) Delete(ctx context.Context, sku string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM inventory WHERE sku = ?`), sku)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
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

// ListMissingMedia returns items with no image yet, the enrichment job's
// work queue.
func (s *InventoryStore) ListMissingMedia(ctx context.Context, limit int) ([]*domain.InventoryItem, error) {
	var items []*domain.InventoryItem
	err := s.db.SelectContext(ctx, &items, s.db.Rebind(`
		SELECT `+inventoryColumns+` FROM inventory
		WHERE image_url = '' ORDER BY product_name ASC LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory missing media: %w", err)
	}
	return items, nil
}

// UpdateMedia fills in the model-found media for one SKU.
func (s *InventoryStore) UpdateMedia(ctx context.Context, sku, imageURL, youtubeURL, description string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE inventory SET image_url = ?, youtube_url = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE sku = ?
	`), imageURL, youtubeURL, description, sku)
	if err != nil {
		return fmt.Errorf("failed to update inventory media: %w", err)
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
