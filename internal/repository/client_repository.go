package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/pkg/logger"
)

// ClientRepository provides access to the client registry. Reads exclude
// soft-deleted clients; every implementation applies the deletion filter
// explicitly rather than through hidden query middleware.
type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Client, error)
	GetPersonByPesel(ctx context.Context, pesel string) (domain.Client, error)
	GetCompanyByKRS(ctx context.Context, krs string) (domain.Client, error)
	Create(ctx context.Context, client domain.Client) (int64, error)
	UpdateClientFields(ctx context.Context, id int64, address, email, phoneNumber string) error
	UpdatePersonFields(ctx context.Context, id int64, firstName, lastName string) error
	UpdateCompanyFields(ctx context.Context, id int64, companyName string) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

// InMemoryClientRepository is a map-backed registry implementation
type InMemoryClientRepository struct {
	clients map[int64]domain.Client
	nextID  int64
	mutex   sync.RWMutex
	log     *logger.Logger
}

// NewInMemoryClientRepository creates a new in-memory client repository
func NewInMemoryClientRepository(log *logger.Logger) *InMemoryClientRepository {
	return &InMemoryClientRepository{
		clients: make(map[int64]domain.Client),
		nextID:  1,
		log:     log,
	}
}

// WithinTx runs fn against a snapshot; the previous state is restored
// when fn fails, mirroring a database rollback.
func (r *InMemoryClientRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mutex.Lock()
	snapshot := make(map[int64]domain.Client, len(r.clients))
	for id, c := range r.clients {
		snapshot[id] = cloneClient(c)
	}
	r.mutex.Unlock()

	if err := fn(ctx); err != nil {
		r.mutex.Lock()
		r.clients = snapshot
		r.mutex.Unlock()
		return err
	}

	return nil
}

// GetByID returns an active client by ID
func (r *InMemoryClientRepository) GetByID(ctx context.Context, id int64) (domain.Client, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	client, exists := r.clients[id]
	if !exists || client.IsDeleted() {
		return domain.Client{}, ErrNotFound
	}

	return cloneClient(client), nil
}

// GetPersonByPesel returns an active person client by PESEL
func (r *InMemoryClientRepository) GetPersonByPesel(ctx context.Context, pesel string) (domain.Client, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, client := range r.clients {
		if client.Kind == domain.ClientKindPerson && !client.IsDeleted() && client.Person.Pesel == pesel {
			return cloneClient(client), nil
		}
	}

	return domain.Client{}, ErrNotFound
}

// GetCompanyByKRS returns an active company client by KRS number
func (r *InMemoryClientRepository) GetCompanyByKRS(ctx context.Context, krs string) (domain.Client, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, client := range r.clients {
		if client.Kind == domain.ClientKindCompany && !client.IsDeleted() && client.Company.KRS == krs {
			return cloneClient(client), nil
		}
	}

	return domain.Client{}, ErrNotFound
}

// Create stores a new client and returns its ID
func (r *InMemoryClientRepository) Create(ctx context.Context, client domain.Client) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	client.ID = r.nextID
	r.nextID++
	r.clients[client.ID] = cloneClient(client)

	return client.ID, nil
}

// UpdateClientFields updates the shared client fields
func (r *InMemoryClientRepository) UpdateClientFields(ctx context.Context, id int64, address, email, phoneNumber string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	client, exists := r.clients[id]
	if !exists || client.IsDeleted() {
		return ErrNotFound
	}

	client.Address = address
	client.Email = email
	client.PhoneNumber = phoneNumber
	r.clients[id] = client

	return nil
}

// UpdatePersonFields updates the person-specific fields
func (r *InMemoryClientRepository) UpdatePersonFields(ctx context.Context, id int64, firstName, lastName string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	client, exists := r.clients[id]
	if !exists || client.IsDeleted() || client.Kind != domain.ClientKindPerson {
		return ErrNotFound
	}

	person := *client.Person
	person.FirstName = firstName
	person.LastName = lastName
	client.Person = &person
	r.clients[id] = client

	return nil
}

// UpdateCompanyFields updates the company-specific fields
func (r *InMemoryClientRepository) UpdateCompanyFields(ctx context.Context, id int64, companyName string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	client, exists := r.clients[id]
	if !exists || client.IsDeleted() || client.Kind != domain.ClientKindCompany {
		return ErrNotFound
	}

	company := *client.Company
	company.CompanyName = companyName
	client.Company = &company
	r.clients[id] = client

	return nil
}

// SoftDelete stamps the client with a deletion timestamp
func (r *InMemoryClientRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	client, exists := r.clients[id]
	if !exists || client.IsDeleted() {
		return ErrNotFound
	}

	client.DeletionDate = &at
	r.clients[id] = client

	return nil
}

func cloneClient(c domain.Client) domain.Client {
	if c.Person != nil {
		person := *c.Person
		c.Person = &person
	}
	if c.Company != nil {
		company := *c.Company
		c.Company = &company
	}
	if c.DeletionDate != nil {
		at := *c.DeletionDate
		c.DeletionDate = &at
	}
	return c
}
