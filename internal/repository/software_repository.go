package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// SoftwareRepository provides read access to the product catalog
type SoftwareRepository interface {
	GetAll(ctx context.Context) ([]domain.Software, error)
	GetByID(ctx context.Context, id int64) (domain.Software, error)
	GetByVersion(ctx context.Context, id int64, version decimal.Decimal) (domain.Software, error)
	ListDiscounts(ctx context.Context, softwareID int64) ([]domain.Discount, error)
}

// InMemorySoftwareRepository is a map-backed catalog implementation
type InMemorySoftwareRepository struct {
	software  map[int64]domain.Software
	discounts map[int64][]domain.Discount
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemorySoftwareRepository creates a new in-memory catalog
func NewInMemorySoftwareRepository(log *logger.Logger) *InMemorySoftwareRepository {
	return &InMemorySoftwareRepository{
		software:  make(map[int64]domain.Software),
		discounts: make(map[int64][]domain.Discount),
		log:       log,
	}
}

// Add seeds a software product
func (r *InMemorySoftwareRepository) Add(software domain.Software) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.software[software.ID] = software
}

// AddDiscount attaches a discount to a software product
func (r *InMemorySoftwareRepository) AddDiscount(softwareID int64, discount domain.Discount) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.discounts[softwareID] = append(r.discounts[softwareID], discount)
}

// GetAll returns every software product ordered by ID
func (r *InMemorySoftwareRepository) GetAll(ctx context.Context) ([]domain.Software, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	list := make([]domain.Software, 0, len(r.software))
	for _, s := range r.software {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	return list, nil
}

// GetByID returns a software product by ID
func (r *InMemorySoftwareRepository) GetByID(ctx context.Context, id int64) (domain.Software, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	software, exists := r.software[id]
	if !exists {
		return domain.Software{}, ErrNotFound
	}

	return software, nil
}

// GetByVersion returns a software product only when it exists at the
// exact requested version.
func (r *InMemorySoftwareRepository) GetByVersion(ctx context.Context, id int64, version decimal.Decimal) (domain.Software, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	software, exists := r.software[id]
	if !exists || !software.Version.Equal(version) {
		return domain.Software{}, ErrNotFound
	}

	return software, nil
}

// ListDiscounts returns all discounts attached to a software product
func (r *InMemorySoftwareRepository) ListDiscounts(ctx context.Context, softwareID int64) ([]domain.Discount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	discounts := make([]domain.Discount, len(r.discounts[softwareID]))
	copy(discounts, r.discounts[softwareID])

	return discounts, nil
}
