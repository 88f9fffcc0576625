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

type ProductStore struct {
	db *sqlx.DB
}

func NewProductStore(db *sqlx.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `sku, product_name, category, price, coverage_per_sqm, drying_time,
	application_method, image_url, video_url, description, created_at, updated_at`

func (s *ProductStore) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	product := &domain.Product{}
	err := s.db.GetContext(ctx, product, s.db.Rebind(
		`SELECT `+productColumns+` FROM products WHERE sku = ?`), sku)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *ProductStore) List(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := s.db.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM products ORDER BY product_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var products []*domain.Product
	err := s.db.SelectContext(ctx, &products, s.db.Rebind(`
		SELECT `+productColumns+` FROM products
		WHERE LOWER(product_name) LIKE ? OR LOWER(sku) LIKE ?
		ORDER BY product_name ASC
	`), pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO products (sku, product_name, category, price, coverage_per_sqm, drying_time,
			application_method, image_url, video_url, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), product.SKU, product.ProductName, product.Category, product.Price, product.CoveragePerSqm,
		product.DryingTime, product.ApplicationMethod, product.ImageURL, product.VideoURL, product.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return s.GetBySKU(ctx, product.SKU)
}

func (s *ProductStore) Update(ctx context.Context, product *domain.Product) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE products SET product_name = ?, category = ?, price = ?, coverage_per_sqm = ?,
			drying_time = ?, application_method = ?, image_url = ?, video_url = ?, description = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE sku = ?
	`), product.ProductName, product.Category, product.Price, product.CoveragePerSqm,
		product.DryingTime, product.ApplicationMethod, product.ImageURL, product.VideoURL,
		product.Description, product.SKU)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
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

func (s *ProductStore) Delete(ctx context.Context, sku string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM products WHERE sku = ?`), sku)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
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
