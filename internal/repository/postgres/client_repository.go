package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/internal/repository"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// ClientRepository is the postgres client registry. Every read filters
// on deletion_date IS NULL explicitly; soft-deleted clients are invisible
// to the rest of the system.
type ClientRepository struct {
	store *Store
	log   *logger.Logger
}

// NewClientRepository creates a new postgres client repository
func NewClientRepository(store *Store, log *logger.Logger) *ClientRepository {
	return &ClientRepository{store: store, log: log}
}

const clientColumns = `
	c.id, c.kind, c.address, c.email, c.phone_number, c.deletion_date,
	p.first_name, p.last_name, p.pesel,
	co.company_name, co.krs
`

const clientJoins = `
	FROM clients c
	LEFT JOIN persons p ON p.client_id = c.id
	LEFT JOIN companies co ON co.client_id = c.id
`

func scanClient(row pgx.Row) (domain.Client, error) {
	var client domain.Client
	var firstName, lastName, pesel *string
	var companyName, krs *string

	err := row.Scan(
		&client.ID,
		&client.Kind,
		&client.Address,
		&client.Email,
		&client.PhoneNumber,
		&client.DeletionDate,
		&firstName,
		&lastName,
		&pesel,
		&companyName,
		&krs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Client{}, repository.ErrNotFound
		}
		return domain.Client{}, fmt.Errorf("failed to scan client: %w", err)
	}

	switch client.Kind {
	case domain.ClientKindPerson:
		if firstName != nil && lastName != nil && pesel != nil {
			client.Person = &domain.PersonDetails{
				FirstName: *firstName,
				LastName:  *lastName,
				Pesel:     *pesel,
			}
		}
	case domain.ClientKindCompany:
		if companyName != nil && krs != nil {
			client.Company = &domain.CompanyDetails{
				CompanyName: *companyName,
				KRS:         *krs,
			}
		}
	}

	return client, nil
}

// GetByID returns an active client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (domain.Client, error) {
	query := `SELECT` + clientColumns + clientJoins + `WHERE c.id = $1 AND c.deletion_date IS NULL`

	return scanClient(r.store.conn(ctx).QueryRow(ctx, query, id))
}

// GetPersonByPesel returns an active person client by PESEL
func (r *ClientRepository) GetPersonByPesel(ctx context.Context, pesel string) (domain.Client, error) {
	query := `SELECT` + clientColumns + clientJoins + `WHERE p.pesel = $1 AND c.deletion_date IS NULL`

	return scanClient(r.store.conn(ctx).QueryRow(ctx, query, pesel))
}

// GetCompanyByKRS returns an active company client by KRS number
func (r *ClientRepository) GetCompanyByKRS(ctx context.Context, krs string) (domain.Client, error) {
	query := `SELECT` + clientColumns + clientJoins + `WHERE co.krs = $1 AND c.deletion_date IS NULL`

	return scanClient(r.store.conn(ctx).QueryRow(ctx, query, krs))
}

// Create inserts the shared client row and the subtype row atomically
// and returns the new client ID.
func (r *ClientRepository) Create(ctx context.Context, client domain.Client) (int64, error) {
	var id int64

	err := r.store.WithinTx(ctx, func(ctx context.Context) error {
		conn := r.store.conn(ctx)

		err := conn.QueryRow(ctx, `
			INSERT INTO clients (kind, address, email, phone_number)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, client.Kind, client.Address, client.Email, client.PhoneNumber).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		switch client.Kind {
		case domain.ClientKindPerson:
			_, err = conn.Exec(ctx, `
				INSERT INTO persons (client_id, first_name, last_name, pesel)
				VALUES ($1, $2, $3, $4)
			`, id, client.Person.FirstName, client.Person.LastName, client.Person.Pesel)
		case domain.ClientKindCompany:
			_, err = conn.Exec(ctx, `
				INSERT INTO companies (client_id, company_name, krs)
				VALUES ($1, $2, $3)
			`, id, client.Company.CompanyName, client.Company.KRS)
		default:
			return repository.ErrInvalidData
		}

		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return fmt.Errorf("failed to create %s: %w", client.Kind, err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// UpdateClientFields updates the shared client fields
func (r *ClientRepository) UpdateClientFields(ctx context.Context, id int64, address, email, phoneNumber string) error {
	result, err := r.store.conn(ctx).Exec(ctx, `
		UPDATE clients
		SET address = $1, email = $2, phone_number = $3
		WHERE id = $4 AND deletion_date IS NULL
	`, address, email, phoneNumber, id)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePersonFields updates the person-specific fields
func (r *ClientRepository) UpdatePersonFields(ctx context.Context, id int64, firstName, lastName string) error {
	result, err := r.store.conn(ctx).Exec(ctx, `
		UPDATE persons
		SET first_name = $1, last_name = $2
		WHERE client_id = $3
	`, firstName, lastName, id)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateCompanyFields updates the company-specific fields
func (r *ClientRepository) UpdateCompanyFields(ctx context.Context, id int64, companyName string) error {
	result, err := r.store.conn(ctx).Exec(ctx, `
		UPDATE companies
		SET company_name = $1
		WHERE client_id = $2
	`, companyName, id)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete stamps an active client with a deletion timestamp
func (r *ClientRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result, err := r.store.conn(ctx).Exec(ctx, `
		UPDATE clients
		SET deletion_date = $1
		WHERE id = $2 AND deletion_date IS NULL
	`, at, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
