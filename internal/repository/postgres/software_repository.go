package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/internal/repository"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SoftwareRepository is the postgres product catalog
type SoftwareRepository struct {
	store *Store
	log   *logger.Logger
}

// NewSoftwareRepository creates a new postgres software repository
func NewSoftwareRepository(store *Store, log *logger.Logger) *SoftwareRepository {
	return &SoftwareRepository{store: store, log: log}
}

// GetAll returns every software product ordered by ID
func (r *SoftwareRepository) GetAll(ctx context.Context) ([]domain.Software, error) {
	rows, err := r.store.conn(ctx).Query(ctx, `
		SELECT id, name, description, version, category, price
		FROM software
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query software: %w", err)
	}
	defer rows.Close()

	var list []domain.Software
	for rows.Next() {
		var s domain.Software
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Version, &s.Category, &s.Price); err != nil {
			return nil, fmt.Errorf("failed to scan software: %w", err)
		}
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating software: %w", err)
	}

	return list, nil
}

// GetByID returns a software product by ID
func (r *SoftwareRepository) GetByID(ctx context.Context, id int64) (domain.Software, error) {
	var s domain.Software

	err := r.store.conn(ctx).QueryRow(ctx, `
		SELECT id, name, description, version, category, price
		FROM software
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Description, &s.Version, &s.Category, &s.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Software{}, repository.ErrNotFound
		}
		return domain.Software{}, fmt.Errorf("failed to get software: %w", err)
	}

	return s, nil
}

// GetByVersion returns a software product only when it exists at the
// exact requested version.
func (r *SoftwareRepository) GetByVersion(ctx context.Context, id int64, version decimal.Decimal) (domain.Software, error) {
	var s domain.Software

	err := r.store.conn(ctx).QueryRow(ctx, `
		SELECT id, name, description, version, category, price
		FROM software
		WHERE id = $1 AND version = $2
	`, id, version).Scan(&s.ID, &s.Name, &s.Description, &s.Version, &s.Category, &s.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Software{}, repository.ErrNotFound
		}
		return domain.Software{}, fmt.Errorf("failed to get software: %w", err)
	}

	return s, nil
}

// ListDiscounts returns all discounts attached to a software product
func (r *SoftwareRepository) ListDiscounts(ctx context.Context, softwareID int64) ([]domain.Discount, error) {
	rows, err := r.store.conn(ctx).Query(ctx, `
		SELECT d.id, d.name, d.description, d.value, d.from_date, d.to_date
		FROM discount_software ds
		JOIN discounts d ON d.id = ds.discount_id
		WHERE ds.software_id = $1
		ORDER BY d.id
	`, softwareID)
	if err != nil {
		return nil, fmt.Errorf("failed to query discounts: %w", err)
	}
	defer rows.Close()

	var discounts []domain.Discount
	for rows.Next() {
		var d domain.Discount
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Value, &d.FromDate, &d.ToDate); err != nil {
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}
		discounts = append(discounts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating discounts: %w", err)
	}

	return discounts, nil
}
