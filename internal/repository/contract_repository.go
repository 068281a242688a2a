package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/pkg/logger"
)

// ContractRepository provides access to contracts and their payments
type ContractRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Contract, error)
	GetByClientAndSoftware(ctx context.Context, clientID, softwareID int64) (domain.Contract, error)
	Create(ctx context.Context, contract domain.Contract) (int64, error)
	Delete(ctx context.Context, id int64) error
	CountPayments(ctx context.Context, contractID int64) (int, error)
	AddPayment(ctx context.Context, payment domain.Payment) (int64, error)
	DeletePayments(ctx context.Context, contractID int64) error
	SetFulfilled(ctx context.Context, contractID int64) error
	ListFulfilled(ctx context.Context, softwareID *int64) ([]domain.Contract, error)
}

// InMemoryContractRepository is a map-backed contract store
type InMemoryContractRepository struct {
	contracts     map[int64]domain.Contract
	payments      map[int64][]domain.Payment
	nextID        int64
	nextPaymentID int64
	mutex         sync.RWMutex
	log           *logger.Logger
}

// NewInMemoryContractRepository creates a new in-memory contract store
func NewInMemoryContractRepository(log *logger.Logger) *InMemoryContractRepository {
	return &InMemoryContractRepository{
		contracts:     make(map[int64]domain.Contract),
		payments:      make(map[int64][]domain.Payment),
		nextID:        1,
		nextPaymentID: 1,
		log:           log,
	}
}

// WithinTx runs fn against a snapshot; the previous state is restored
// when fn fails, mirroring a database rollback.
func (r *InMemoryContractRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mutex.Lock()
	contracts := make(map[int64]domain.Contract, len(r.contracts))
	for id, c := range r.contracts {
		contracts[id] = c
	}
	payments := make(map[int64][]domain.Payment, len(r.payments))
	for id, ps := range r.payments {
		cp := make([]domain.Payment, len(ps))
		copy(cp, ps)
		payments[id] = cp
	}
	r.mutex.Unlock()

	if err := fn(ctx); err != nil {
		r.mutex.Lock()
		r.contracts = contracts
		r.payments = payments
		r.mutex.Unlock()
		return err
	}

	return nil
}

// GetByID returns a contract by ID
func (r *InMemoryContractRepository) GetByID(ctx context.Context, id int64) (domain.Contract, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	contract, exists := r.contracts[id]
	if !exists {
		return domain.Contract{}, ErrNotFound
	}

	return contract, nil
}

// GetByClientAndSoftware returns the client's contract for a software
// product. When several exist the one with the latest end date wins.
func (r *InMemoryContractRepository) GetByClientAndSoftware(ctx context.Context, clientID, softwareID int64) (domain.Contract, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var found *domain.Contract
	for id := range r.contracts {
		c := r.contracts[id]
		if c.ClientID != clientID || c.SoftwareID != softwareID {
			continue
		}
		if found == nil || c.EndDate.After(found.EndDate) {
			found = &c
		}
	}

	if found == nil {
		return domain.Contract{}, ErrNotFound
	}

	return *found, nil
}

// Create stores a new contract and returns its ID
func (r *InMemoryContractRepository) Create(ctx context.Context, contract domain.Contract) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	contract.ID = r.nextID
	r.nextID++
	r.contracts[contract.ID] = contract

	return contract.ID, nil
}

// Delete hard-deletes a contract together with its payments
func (r *InMemoryContractRepository) Delete(ctx context.Context, id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.contracts[id]; !exists {
		return ErrNotFound
	}

	delete(r.contracts, id)
	delete(r.payments, id)

	return nil
}

// CountPayments returns the number of payments recorded for a contract
func (r *InMemoryContractRepository) CountPayments(ctx context.Context, contractID int64) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.payments[contractID]), nil
}

// AddPayment records a payment and returns its ID
func (r *InMemoryContractRepository) AddPayment(ctx context.Context, payment domain.Payment) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	payment.ID = r.nextPaymentID
	r.nextPaymentID++
	r.payments[payment.ContractID] = append(r.payments[payment.ContractID], payment)

	return payment.ID, nil
}

// DeletePayments removes every payment recorded for a contract
func (r *InMemoryContractRepository) DeletePayments(ctx context.Context, contractID int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.payments, contractID)

	return nil
}

// SetFulfilled marks a contract as fulfilled
func (r *InMemoryContractRepository) SetFulfilled(ctx context.Context, contractID int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	contract, exists := r.contracts[contractID]
	if !exists {
		return ErrNotFound
	}

	contract.IsFulfilled = true
	r.contracts[contractID] = contract

	return nil
}

// ListFulfilled returns fulfilled contracts, optionally filtered by
// software, ordered by software then contract ID.
func (r *InMemoryContractRepository) ListFulfilled(ctx context.Context, softwareID *int64) ([]domain.Contract, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var list []domain.Contract
	for _, c := range r.contracts {
		if !c.IsFulfilled {
			continue
		}
		if softwareID != nil && c.SoftwareID != *softwareID {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SoftwareID != list[j].SoftwareID {
			return list[i].SoftwareID < list[j].SoftwareID
		}
		return list[i].ID < list[j].ID
	})

	return list, nil
}

// Payments returns a copy of the payments recorded for a contract.
// Used by tests to assert on instalment sequences.
func (r *InMemoryContractRepository) Payments(contractID int64) []domain.Payment {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	payments := make([]domain.Payment, len(r.payments[contractID]))
	copy(payments, r.payments[contractID])

	return payments
}
