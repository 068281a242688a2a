package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/internal/repository"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// ContractRepository is the postgres contract and payment store
type ContractRepository struct {
	store *Store
	log   *logger.Logger
}

// NewContractRepository creates a new postgres contract repository
func NewContractRepository(store *Store, log *logger.Logger) *ContractRepository {
	return &ContractRepository{store: store, log: log}
}

const contractColumns = `
	id, client_id, software_id, start_date, end_date, total_price,
	update_years, software_version, is_instalment, instalments_quantity, is_fulfilled
`

func scanContract(row pgx.Row) (domain.Contract, error) {
	var c domain.Contract
	var quantity *int

	err := row.Scan(
		&c.ID,
		&c.ClientID,
		&c.SoftwareID,
		&c.StartDate,
		&c.EndDate,
		&c.TotalPrice,
		&c.UpdateYears,
		&c.SoftwareVersion,
		&c.IsInstalment,
		&quantity,
		&c.IsFulfilled,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contract{}, repository.ErrNotFound
		}
		return domain.Contract{}, fmt.Errorf("failed to scan contract: %w", err)
	}

	if quantity != nil {
		c.InstalmentsQuantity = *quantity
	}

	return c, nil
}

// GetByID returns a contract by ID
func (r *ContractRepository) GetByID(ctx context.Context, id int64) (domain.Contract, error) {
	query := `SELECT` + contractColumns + `FROM contracts WHERE id = $1`

	return scanContract(r.store.conn(ctx).QueryRow(ctx, query, id))
}

// GetByClientAndSoftware returns the client's contract for a software
// product. When several exist the one with the latest end date wins.
func (r *ContractRepository) GetByClientAndSoftware(ctx context.Context, clientID, softwareID int64) (domain.Contract, error) {
	query := `SELECT` + contractColumns + `
		FROM contracts
		WHERE client_id = $1 AND software_id = $2
		ORDER BY end_date DESC
		LIMIT 1`

	return scanContract(r.store.conn(ctx).QueryRow(ctx, query, clientID, softwareID))
}

// Create inserts a new contract and returns its ID
func (r *ContractRepository) Create(ctx context.Context, contract domain.Contract) (int64, error) {
	var quantity *int
	if contract.IsInstalment {
		quantity = &contract.InstalmentsQuantity
	}

	var id int64
	err := r.store.conn(ctx).QueryRow(ctx, `
		INSERT INTO contracts (
			client_id, software_id, start_date, end_date, total_price,
			update_years, software_version, is_instalment, instalments_quantity, is_fulfilled
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		contract.ClientID,
		contract.SoftwareID,
		contract.StartDate,
		contract.EndDate,
		contract.TotalPrice,
		contract.UpdateYears,
		contract.SoftwareVersion,
		contract.IsInstalment,
		quantity,
		contract.IsFulfilled,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create contract: %w", err)
	}

	return id, nil
}

// Delete hard-deletes a contract; payments cascade
func (r *ContractRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.store.conn(ctx).Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CountPayments returns the number of payments recorded for a contract
func (r *ContractRepository) CountPayments(ctx context.Context, contractID int64) (int, error) {
	var count int

	err := r.store.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM payments WHERE contract_id = $1
	`, contractID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}

	return count, nil
}

// AddPayment records a payment and returns its ID
func (r *ContractRepository) AddPayment(ctx context.Context, payment domain.Payment) (int64, error) {
	var id int64

	err := r.store.conn(ctx).QueryRow(ctx, `
		INSERT INTO payments (contract_id, price, payment_date, instalment_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, payment.ContractID, payment.Price, payment.PaymentDate, payment.InstalmentNumber).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add payment: %w", err)
	}

	return id, nil
}

// DeletePayments removes every payment recorded for a contract
func (r *ContractRepository) DeletePayments(ctx context.Context, contractID int64) error {
	_, err := r.store.conn(ctx).Exec(ctx, `DELETE FROM payments WHERE contract_id = $1`, contractID)
	if err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}

	return nil
}

// SetFulfilled marks a contract as fulfilled
func (r *ContractRepository) SetFulfilled(ctx context.Context, contractID int64) error {
	result, err := r.store.conn(ctx).Exec(ctx, `
		UPDATE contracts SET is_fulfilled = TRUE WHERE id = $1
	`, contractID)
	if err != nil {
		return fmt.Errorf("failed to mark contract fulfilled: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListFulfilled returns fulfilled contracts, optionally filtered by
// software, ordered by software then contract ID.
func (r *ContractRepository) ListFulfilled(ctx context.Context, softwareID *int64) ([]domain.Contract, error) {
	query := `SELECT` + contractColumns + `
		FROM contracts
		WHERE is_fulfilled AND ($1::bigint IS NULL OR software_id = $1)
		ORDER BY software_id, id`

	rows, err := r.store.conn(ctx).Query(ctx, query, softwareID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fulfilled contracts: %w", err)
	}
	defer rows.Close()

	var list []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", err)
	}

	return list, nil
}
