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

type DriverStore struct {
	db *sqlx.DB
}

func NewDriverStore(db *sqlx.DB) *DriverStore {
	return &DriverStore{db: db}
}

const driverColumns = `id, full_name, phone, status, vehicle_type, location, updated_at`

func (s *DriverStore) List(ctx context.Context) ([]*domain.Driver, error) {
	var drivers []*domain.Driver
	err := s.db.SelectContext(ctx, &drivers, `SELECT `+driverColumns+` FROM drivers ORDER BY full_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}

func (s *DriverStore) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	driver := &domain.Driver{}
	err := s.db.GetContext(ctx, driver, s.db.Rebind(`SELECT `+driverColumns+` FROM drivers WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return driver, nil
}

func (s *DriverStore) Create(ctx context.Context, fullName, phone, status, vehicleType, location string) (*domain.Driver, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO drivers (id, full_name, phone, status, vehicle_type, location)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, fullName, phone, status, vehicleType, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	return s.GetByID(ctx, id)
}

// UpdateStatus sets the driver's displayed status and location. Status values
// are free-form strings; unknown values are rendered as such downstream.
func (s *DriverStore) UpdateStatus(ctx context.Context, id, status, location string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE drivers SET status = ?, location = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`), status, location, id)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
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
