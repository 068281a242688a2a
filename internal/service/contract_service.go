package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/internal/kafka"
	"github.com/Dhoini/licensing-backend/internal/metrics"
	"github.com/Dhoini/licensing-backend/internal/repository"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Contract duration window in whole days
const (
	minContractDays = 3
	maxContractDays = 30
)

// Each purchased update year past the first adds a flat amount to the
// base price.
var updateYearPrice = decimal.NewFromInt(1000)

// returningClientBonus is added to the resolved discount when the client
// holds an expired contract for the same software. Deliberately uncapped:
// combined with a large discount it can push the total discount past 1
// and the price below zero; the business rule is pending, so this is
// logged, not clamped.
var returningClientBonus = decimal.RequireFromString("0.05")

// CreateContractRequest carries the inputs of a contract purchase
type CreateContractRequest struct {
	ClientID            int64
	SoftwareID          int64
	SoftwareVersion     decimal.Decimal
	StartDate           time.Time
	EndDate             time.Time
	UpdateYears         int
	IsInstalment        bool
	InstalmentsQuantity int
}

// ContractService is the contract engine: pricing, payment lifecycle and
// fulfillment tracking.
type ContractService interface {
	Create(ctx context.Context, req CreateContractRequest) (domain.Contract, error)
	Pay(ctx context.Context, contractID int64) (domain.Payment, error)
	Delete(ctx context.Context, contractID int64) error
}

type contractService struct {
	contracts repository.ContractRepository
	clients   repository.ClientRepository
	software  repository.SoftwareRepository
	txm       repository.TxManager
	producer  kafka.Producer
	metrics   metrics.ContractMetrics
	log       *logger.Logger
}

// NewContractService creates a new contract service
func NewContractService(
	contracts repository.ContractRepository,
	clients repository.ClientRepository,
	software repository.SoftwareRepository,
	txm repository.TxManager,
	producer kafka.Producer,
	m metrics.ContractMetrics,
	log *logger.Logger,
) ContractService {
	return &contractService{
		contracts: contracts,
		clients:   clients,
		software:  software,
		txm:       txm,
		producer:  producer,
		metrics:   m,
		log:       log,
	}
}

// Create validates a purchase, computes the price and persists the
// contract. Validation fails fast: the first violated rule wins.
func (s *contractService) Create(ctx context.Context, req CreateContractRequest) (domain.Contract, error) {
	s.log.Debug("Creating contract: client=%d software=%d", req.ClientID, req.SoftwareID)

	if _, err := s.clients.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Contract{}, domain.NotFound("Client not found")
		}
		return domain.Contract{}, fmt.Errorf("failed to load client: %w", err)
	}

	software, err := s.software.GetByVersion(ctx, req.SoftwareID, req.SoftwareVersion)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Contract{}, domain.NotFound("Software not found")
		}
		return domain.Contract{}, fmt.Errorf("failed to load software: %w", err)
	}

	if req.EndDate.Before(req.StartDate) {
		return domain.Contract{}, domain.Conflict("End date cannot be before start date")
	}

	// An active contract blocks the purchase; an expired one marks the
	// caller as a returning client and improves the discount.
	returningClient := false
	existing, err := s.contracts.GetByClientAndSoftware(ctx, req.ClientID, req.SoftwareID)
	switch {
	case err == nil:
		if existing.EndDate.After(time.Now()) {
			return domain.Contract{}, domain.Conflict("Contract on this software already exists")
		}
		returningClient = true
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Contract{}, fmt.Errorf("failed to check existing contract: %w", err)
	}

	days := int(req.EndDate.Sub(req.StartDate) / (24 * time.Hour))
	if days < minContractDays || days > maxContractDays {
		return domain.Contract{}, domain.BadRequest("Difference between start and end dates must be between 3 and 30 days")
	}

	if req.UpdateYears < 1 || req.UpdateYears > 4 {
		return domain.Contract{}, domain.BadRequest("UpdateYears must be between 1 and 4 years")
	}

	if req.IsInstalment && req.InstalmentsQuantity < 1 {
		return domain.Contract{}, domain.BadRequest("Instalments quantity must be at least 1")
	}

	discount, err := s.resolveDiscount(ctx, req.SoftwareID, req.StartDate, returningClient)
	if err != nil {
		return domain.Contract{}, err
	}

	basePrice := software.Price.Add(updateYearPrice.Mul(decimal.NewFromInt(int64(req.UpdateYears - 1))))
	totalPrice := basePrice.Mul(decimal.NewFromInt(1).Sub(discount))

	if totalPrice.IsNegative() {
		s.log.Warn("Contract price is negative: client=%d software=%d discount=%s",
			req.ClientID, req.SoftwareID, discount.String())
	}

	contract := domain.Contract{
		ClientID:        req.ClientID,
		SoftwareID:      req.SoftwareID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TotalPrice:      totalPrice,
		UpdateYears:     req.UpdateYears,
		SoftwareVersion: software.Version,
		IsInstalment:    req.IsInstalment,
		IsFulfilled:     false,
	}
	if req.IsInstalment {
		contract.InstalmentsQuantity = req.InstalmentsQuantity
	}

	id, err := s.contracts.Create(ctx, contract)
	if err != nil {
		return domain.Contract{}, fmt.Errorf("failed to create contract: %w", err)
	}
	contract.ID = id

	s.metrics.IncContractCreated()
	s.log.Info("Created contract %d: client=%d software=%d total=%s", id, req.ClientID, req.SoftwareID, totalPrice.String())

	return contract, nil
}

// resolveDiscount picks the highest discount whose window started on or
// before the contract start date, plus the returning-client bonus.
func (s *contractService) resolveDiscount(ctx context.Context, softwareID int64, startDate time.Time, returningClient bool) (decimal.Decimal, error) {
	discounts, err := s.software.ListDiscounts(ctx, softwareID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list discounts: %w", err)
	}

	discount := decimal.Zero
	for _, d := range discounts {
		if d.FromDate.After(startDate) {
			continue
		}
		if d.Value.GreaterThan(discount) {
			discount = d.Value
		}
	}

	if returningClient {
		discount = discount.Add(returningClientBonus)
	}

	return discount, nil
}

// Pay records a payment against a contract inside a single transaction.
// An expired contract loses its recorded payments: the purge commits on
// its own and the operation fails afterwards.
func (s *contractService) Pay(ctx context.Context, contractID int64) (domain.Payment, error) {
	s.log.Debug("Paying contract %d", contractID)

	var (
		contract  domain.Contract
		payment   domain.Payment
		fulfilled bool
		expired   bool
	)

	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		contract, err = s.contracts.GetByID(ctx, contractID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.NotFound("Contract not found")
			}
			return fmt.Errorf("failed to load contract: %w", err)
		}

		now := time.Now()

		if contract.EndDate.Before(now) {
			// Purge partial instalment progress. The purge must survive
			// the failure, so only the expired flag is raised here and
			// the transaction commits.
			if err := s.contracts.DeletePayments(ctx, contractID); err != nil {
				return fmt.Errorf("failed to purge payments: %w", err)
			}
			expired = true
			return nil
		}

		if contract.IsInstalment {
			count, err := s.contracts.CountPayments(ctx, contractID)
			if err != nil {
				return fmt.Errorf("failed to count payments: %w", err)
			}
			if count == contract.InstalmentsQuantity {
				return domain.Conflict("Contract has been already paid")
			}

			number := count + 1
			payment = domain.Payment{
				ContractID:       contractID,
				Price:            contract.TotalPrice.Div(decimal.NewFromInt(int64(contract.InstalmentsQuantity))),
				PaymentDate:      now,
				InstalmentNumber: &number,
			}

			id, err := s.contracts.AddPayment(ctx, payment)
			if err != nil {
				return fmt.Errorf("failed to add payment: %w", err)
			}
			payment.ID = id

			if number == contract.InstalmentsQuantity {
				if err := s.contracts.SetFulfilled(ctx, contractID); err != nil {
					return fmt.Errorf("failed to mark contract fulfilled: %w", err)
				}
				fulfilled = true
			}

			return nil
		}

		// Lump-sum contract: one payment of the full price fulfills it.
		payment = domain.Payment{
			ContractID:  contractID,
			Price:       contract.TotalPrice,
			PaymentDate: now,
		}

		id, err := s.contracts.AddPayment(ctx, payment)
		if err != nil {
			return fmt.Errorf("failed to add payment: %w", err)
		}
		payment.ID = id

		if err := s.contracts.SetFulfilled(ctx, contractID); err != nil {
			return fmt.Errorf("failed to mark contract fulfilled: %w", err)
		}
		fulfilled = true

		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}

	if expired {
		return domain.Payment{}, domain.BadRequest("Contract has expired")
	}

	s.recordPayment(ctx, contract, payment, fulfilled)

	return payment, nil
}

// recordPayment updates metrics and publishes events after a successful
// commit. Both are best-effort and never fail the payment.
func (s *contractService) recordPayment(ctx context.Context, contract domain.Contract, payment domain.Payment, fulfilled bool) {
	kind := metrics.PaymentKindFull
	instalmentNumber := 0
	if payment.InstalmentNumber != nil {
		kind = metrics.PaymentKindInstalment
		instalmentNumber = *payment.InstalmentNumber
	}

	s.metrics.IncPaymentRecorded(kind)
	s.metrics.ObservePaymentAmount(payment.Price.InexactFloat64(), kind)
	if fulfilled {
		s.metrics.IncContractFulfilled()
	}

	event := kafka.ContractEvent{
		Type:             kafka.EventContractPaid,
		ContractID:       contract.ID,
		ClientID:         contract.ClientID,
		SoftwareID:       contract.SoftwareID,
		Amount:           payment.Price,
		InstalmentNumber: instalmentNumber,
		OccurredAt:       payment.PaymentDate,
	}
	if err := s.producer.PublishContractEvent(ctx, event); err != nil {
		s.log.Error("Failed to publish payment event for contract %d: %v", contract.ID, err)
	}

	if fulfilled {
		event.Type = kafka.EventContractFulfilled
		event.Amount = contract.TotalPrice
		event.InstalmentNumber = 0
		if err := s.producer.PublishContractEvent(ctx, event); err != nil {
			s.log.Error("Failed to publish fulfillment event for contract %d: %v", contract.ID, err)
		}
	}

	s.log.Info("Recorded %s payment of %s for contract %d", kind, payment.Price.String(), contract.ID)
}

// Delete hard-deletes a contract together with its payments
func (s *contractService) Delete(ctx context.Context, contractID int64) error {
	s.log.Debug("Deleting contract %d", contractID)

	if err := s.contracts.Delete(ctx, contractID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NotFound("Contract not found")
		}
		return fmt.Errorf("failed to delete contract: %w", err)
	}

	return nil
}
