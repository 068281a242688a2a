package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/internal/repository"
	"github.com/Dhoini/licensing-backend/pkg/logger"
)

// PersonInput carries the fields of a person registration or update
type PersonInput struct {
	FirstName   string
	LastName    string
	Pesel       string
	Email       string
	Address     string
	PhoneNumber string
}

// CompanyInput carries the fields of a company registration or update
type CompanyInput struct {
	CompanyName string
	KRS         string
	Email       string
	Address     string
	PhoneNumber string
}

// ClientService manages the client registry
type ClientService interface {
	AddPerson(ctx context.Context, input PersonInput) (domain.Client, error)
	UpdatePerson(ctx context.Context, id int64, input PersonInput) error
	DeletePerson(ctx context.Context, id int64) error
	AddCompany(ctx context.Context, input CompanyInput) (domain.Client, error)
	UpdateCompany(ctx context.Context, id int64, input CompanyInput) error
	DeleteCompany(ctx context.Context, id int64) error
}

type clientService struct {
	clients repository.ClientRepository
	txm     repository.TxManager
	log     *logger.Logger
}

// NewClientService creates a new client service
func NewClientService(clients repository.ClientRepository, txm repository.TxManager, log *logger.Logger) ClientService {
	return &clientService{
		clients: clients,
		txm:     txm,
		log:     log,
	}
}

// AddPerson validates and registers a person client
func (s *clientService) AddPerson(ctx context.Context, input PersonInput) (domain.Client, error) {
	s.log.Debug("Adding person client")

	_, err := s.clients.GetPersonByPesel(ctx, input.Pesel)
	switch {
	case err == nil:
		return domain.Client{}, domain.Conflict("Person already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Client{}, fmt.Errorf("failed to check pesel: %w", err)
	}

	if len(input.PhoneNumber) != 9 {
		return domain.Client{}, domain.BadRequest("Phone number must be 9 digits")
	}

	if len(input.Pesel) != 11 {
		return domain.Client{}, domain.BadRequest("Pesel must be 11 digits")
	}

	if !domain.IsDigits(input.PhoneNumber) || !domain.IsDigits(input.Pesel) {
		return domain.Client{}, domain.BadRequest("Phone number or pesel contains invalid characters")
	}

	if !domain.PeselChecksumOK(input.Pesel) {
		return domain.Client{}, domain.BadRequest("Control sum is invalid")
	}

	client := domain.Client{
		Kind:        domain.ClientKindPerson,
		Address:     input.Address,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Person: &domain.PersonDetails{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Pesel:     input.Pesel,
		},
	}

	id, err := s.clients.Create(ctx, client)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Client{}, domain.Conflict("Person already exists")
		}
		return domain.Client{}, fmt.Errorf("failed to create person: %w", err)
	}
	client.ID = id

	s.log.Info("Registered person client %d", id)

	return client, nil
}

// UpdatePerson updates a person inside a single transaction: the shared
// client fields first, then the person fields. Any failure rolls both
// writes back.
func (s *clientService) UpdatePerson(ctx context.Context, id int64, input PersonInput) error {
	s.log.Debug("Updating person client %d", id)

	return s.txm.WithinTx(ctx, func(ctx context.Context) error {
		client, err := s.clients.GetByID(ctx, id)
		if err != nil || client.Kind != domain.ClientKindPerson {
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("failed to load client: %w", err)
			}
			return domain.NotFound("Person not found")
		}

		if len(input.PhoneNumber) != 9 {
			return domain.BadRequest("Phone number must be 9 digits")
		}

		if !domain.IsDigits(input.PhoneNumber) {
			return domain.BadRequest("Phone number contains invalid characters")
		}

		if err := s.clients.UpdateClientFields(ctx, id, input.Address, input.Email, input.PhoneNumber); err != nil {
			return fmt.Errorf("failed to update client fields: %w", err)
		}

		if err := s.clients.UpdatePersonFields(ctx, id, input.FirstName, input.LastName); err != nil {
			return fmt.Errorf("failed to update person fields: %w", err)
		}

		return nil
	})
}

// DeletePerson soft-deletes a person client
func (s *clientService) DeletePerson(ctx context.Context, id int64) error {
	s.log.Debug("Deleting person client %d", id)

	client, err := s.clients.GetByID(ctx, id)
	if err != nil || client.Kind != domain.ClientKindPerson {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to load client: %w", err)
		}
		return domain.NotFound("Person not found")
	}

	if err := s.clients.SoftDelete(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}

	s.log.Info("Soft-deleted person client %d", id)

	return nil
}

// AddCompany validates and registers a company client
func (s *clientService) AddCompany(ctx context.Context, input CompanyInput) (domain.Client, error) {
	s.log.Debug("Adding company client")

	_, err := s.clients.GetCompanyByKRS(ctx, input.KRS)
	switch {
	case err == nil:
		return domain.Client{}, domain.Conflict("Company already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Client{}, fmt.Errorf("failed to check krs: %w", err)
	}

	if len(input.PhoneNumber) != 9 {
		return domain.Client{}, domain.BadRequest("Phone number must be 9 digits")
	}

	if len(input.KRS) != 10 {
		return domain.Client{}, domain.BadRequest("Krs must be 10 digits")
	}

	if !domain.IsDigits(input.PhoneNumber) || !domain.IsDigits(input.KRS) {
		return domain.Client{}, domain.BadRequest("Phone number or krs contains invalid characters")
	}

	client := domain.Client{
		Kind:        domain.ClientKindCompany,
		Address:     input.Address,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Company: &domain.CompanyDetails{
			CompanyName: input.CompanyName,
			KRS:         input.KRS,
		},
	}

	id, err := s.clients.Create(ctx, client)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Client{}, domain.Conflict("Company already exists")
		}
		return domain.Client{}, fmt.Errorf("failed to create company: %w", err)
	}
	client.ID = id

	s.log.Info("Registered company client %d", id)

	return client, nil
}

// UpdateCompany updates a company inside a single transaction: the
// shared client fields first, then the company fields.
func (s *clientService) UpdateCompany(ctx context.Context, id int64, input CompanyInput) error {
	s.log.Debug("Updating company client %d", id)

	return s.txm.WithinTx(ctx, func(ctx context.Context) error {
		client, err := s.clients.GetByID(ctx, id)
		if err != nil || client.Kind != domain.ClientKindCompany {
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("failed to load client: %w", err)
			}
			return domain.NotFound("Company not found")
		}

		if len(input.PhoneNumber) != 9 {
			return domain.BadRequest("Phone number must be 9 digits")
		}

		if !domain.IsDigits(input.PhoneNumber) {
			return domain.BadRequest("Phone number contains invalid characters")
		}

		if err := s.clients.UpdateClientFields(ctx, id, input.Address, input.Email, input.PhoneNumber); err != nil {
			return fmt.Errorf("failed to update client fields: %w", err)
		}

		if err := s.clients.UpdateCompanyFields(ctx, id, input.CompanyName); err != nil {
			return fmt.Errorf("failed to update company fields: %w", err)
		}

		return nil
	})
}

// DeleteCompany soft-deletes a company client
func (s *clientService) DeleteCompany(ctx context.Context, id int64) error {
	s.log.Debug("Deleting company client %d", id)

	client, err := s.clients.GetByID(ctx, id)
	if err != nil || client.Kind != domain.ClientKindCompany {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to load client: %w", err)
		}
		return domain.NotFound("Company not found")
	}

	if err := s.clients.SoftDelete(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}

	s.log.Info("Soft-deleted company client %d", id)

	return nil
}
