package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/internal/kafka"
	"github.com/Dhoini/licensing-backend/internal/metrics"
	"github.com/Dhoini/licensing-backend/internal/repository"
	"github.com/Dhoini/licensing-backend/internal/service"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type contractFixture struct {
	contracts *repository.InMemoryContractRepository
	clients   *repository.InMemoryClientRepository
	software  *repository.InMemorySoftwareRepository
	svc       service.ContractService
	clientID  int64
}

func newContractFixture(t *testing.T) *contractFixture {
	t.Helper()

	log := logger.New(logger.ERROR)
	contracts := repository.NewInMemoryContractRepository(log)
	clients := repository.NewInMemoryClientRepository(log)
	software := repository.NewInMemorySoftwareRepository(log)
	m := metrics.NewContractMetrics(prometheus.NewRegistry(), log)

	clientID, err := clients.Create(context.Background(), domain.Client{
		Kind:        domain.ClientKindPerson,
		Address:     "ul. Dluga 1, Warszawa",
		Email:       "jan@example.com",
		PhoneNumber: "123456789",
		Person: &domain.PersonDetails{
			FirstName: "Jan",
			LastName:  "Kowalski",
			Pesel:     "44051401359",
		},
	})
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}

	software.Add(domain.Software{
		ID:          1,
		Name:        "CodeForge",
		Description: "IDE",
		Version:     decimal.NewFromInt(1),
		Category:    "education",
		Price:       decimal.NewFromInt(1500),
	})

	return &contractFixture{
		contracts: contracts,
		clients:   clients,
		software:  software,
		svc: service.NewContractService(
			contracts, clients, software, contracts,
			kafka.NopProducer{}, m, log,
		),
		clientID: clientID,
	}
}

func validContractRequest(clientID int64) service.CreateContractRequest {
	start := time.Now().Add(24 * time.Hour)
	return service.CreateContractRequest{
		ClientID:        clientID,
		SoftwareID:      1,
		SoftwareVersion: decimal.NewFromInt(1),
		StartDate:       start,
		EndDate:         start.Add(10 * 24 * time.Hour),
		UpdateYears:     1,
	}
}

func TestCreateContractPricing(t *testing.T) {
	activeDiscount := domain.Discount{
		ID:       1,
		Name:     "Black Friday",
		Value:    decimal.RequireFromString("0.15"),
		FromDate: time.Now().Add(-24 * time.Hour),
		ToDate:   time.Now().Add(30 * 24 * time.Hour),
	}
	smallDiscount := domain.Discount{
		ID:       2,
		Name:     "Spring",
		Value:    decimal.RequireFromString("0.10"),
		FromDate: time.Now().Add(-24 * time.Hour),
		ToDate:   time.Now().Add(30 * 24 * time.Hour),
	}
	futureDiscount := domain.Discount{
		ID:       3,
		Name:     "Next season",
		Value:    decimal.RequireFromString("0.50"),
		FromDate: time.Now().Add(60 * 24 * time.Hour),
		ToDate:   time.Now().Add(90 * 24 * time.Hour),
	}

	tests := []struct {
		name        string
		updateYears int
		discounts   []domain.Discount
		want        string
	}{
		{"base price", 1, nil, "1500"},
		{"extra update years", 3, nil, "3500"},
		{"discount applied", 1, []domain.Discount{activeDiscount}, "1275"},
		{"best discount wins", 1, []domain.Discount{smallDiscount, activeDiscount}, "1275"},
		{"future discount ignored", 1, []domain.Discount{futureDiscount}, "1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContractFixture(t)
			for _, d := range tt.discounts {
				f.software.AddDiscount(1, d)
			}

			req := validContractRequest(f.clientID)
			req.UpdateYears = tt.updateYears

			contract, err := f.svc.Create(context.Background(), req)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			want := decimal.RequireFromString(tt.want)
			if !contract.TotalPrice.Equal(want) {
				t.Errorf("TotalPrice = %s, want %s", contract.TotalPrice, want)
			}
		})
	}
}

func TestCreateContractReturningClientBonus(t *testing.T) {
	f := newContractFixture(t)

	// An expired contract on the same software makes the client a
	// returning one and adds 0.05 to the discount.
	_, err := f.contracts.Create(context.Background(), domain.Contract{
		ClientID:    f.clientID,
		SoftwareID:  1,
		StartDate:   time.Now().Add(-60 * 24 * time.Hour),
		EndDate:     time.Now().Add(-30 * 24 * time.Hour),
		TotalPrice:  decimal.NewFromInt(1500),
		UpdateYears: 1,
	})
	if err != nil {
		t.Fatalf("failed to seed expired contract: %v", err)
	}

	f.software.AddDiscount(1, domain.Discount{
		ID:       1,
		Name:     "Black Friday",
		Value:    decimal.RequireFromString("0.15"),
		FromDate: time.Now().Add(-24 * time.Hour),
		ToDate:   time.Now().Add(30 * 24 * time.Hour),
	})

	contract, err := f.svc.Create(context.Background(), validContractRequest(f.clientID))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := decimal.NewFromInt(1200)
	if !contract.TotalPrice.Equal(want) {
		t.Errorf("TotalPrice = %s, want %s", contract.TotalPrice, want)
	}
}

func TestCreateContractActiveConflict(t *testing.T) {
	f := newContractFixture(t)

	_, err := f.contracts.Create(context.Background(), domain.Contract{
		ClientID:   f.clientID,
		SoftwareID: 1,
		StartDate:  time.Now().Add(-5 * 24 * time.Hour),
		EndDate:    time.Now().Add(5 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("failed to seed active contract: %v", err)
	}

	_, err = f.svc.Create(context.Background(), validContractRequest(f.clientID))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Create() error = %v, want conflict", err)
	}
	if err.Error() != "Contract on this software already exists" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestCreateContractValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*service.CreateContractRequest)
		wantKind error
		wantMsg  string
	}{
		{
			"unknown client",
			func(r *service.CreateContractRequest) { r.ClientID = 999 },
			domain.ErrNotFound, "Client not found",
		},
		{
			"unknown software version",
			func(r *service.CreateContractRequest) { r.SoftwareVersion = decimal.NewFromInt(2) },
			domain.ErrNotFound, "Software not found",
		},
		{
			"end before start",
			func(r *service.CreateContractRequest) { r.EndDate = r.StartDate.Add(-24 * time.Hour) },
			domain.ErrConflict, "End date cannot be before start date",
		},
		{
			"window too short",
			func(r *service.CreateContractRequest) { r.EndDate = r.StartDate.Add(2 * 24 * time.Hour) },
			domain.ErrBadRequest, "Difference between start and end dates must be between 3 and 30 days",
		},
		{
			"window too long",
			func(r *service.CreateContractRequest) { r.EndDate = r.StartDate.Add(31 * 24 * time.Hour) },
			domain.ErrBadRequest, "Difference between start and end dates must be between 3 and 30 days",
		},
		{
			"update years too low",
			func(r *service.CreateContractRequest) { r.UpdateYears = 0 },
			domain.ErrBadRequest, "UpdateYears must be between 1 and 4 years",
		},
		{
			"update years too high",
			func(r *service.CreateContractRequest) { r.UpdateYears = 5 },
			domain.ErrBadRequest, "UpdateYears must be between 1 and 4 years",
		},
		{
			"instalments without quantity",
			func(r *service.CreateContractRequest) { r.IsInstalment = true },
			domain.ErrBadRequest, "Instalments quantity must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContractFixture(t)

			req := validContractRequest(f.clientID)
			tt.mutate(&req)

			_, err := f.svc.Create(context.Background(), req)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantKind)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCreateContractWindowBounds(t *testing.T) {
	for _, days := range []int{3, 30} {
		f := newContractFixture(t)

		req := validContractRequest(f.clientID)
		req.EndDate = req.StartDate.Add(time.Duration(days) * 24 * time.Hour)

		if _, err := f.svc.Create(context.Background(), req); err != nil {
			t.Errorf("Create() with %d-day window error = %v", days, err)
		}
	}
}

func TestPayContractLumpSum(t *testing.T) {
	f := newContractFixture(t)

	contract, err := f.svc.Create(context.Background(), validContractRequest(f.clientID))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	payment, err := f.svc.Pay(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	if !payment.Price.Equal(contract.TotalPrice) {
		t.Errorf("payment price = %s, want %s", payment.Price, contract.TotalPrice)
	}
	if payment.InstalmentNumber != nil {
		t.Errorf("lump-sum payment has instalment number %d", *payment.InstalmentNumber)
	}

	stored, err := f.contracts.GetByID(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !stored.IsFulfilled {
		t.Error("contract not fulfilled after full payment")
	}
}

func TestPayContractInstalments(t *testing.T) {
	f := newContractFixture(t)

	req := validContractRequest(f.clientID)
	req.IsInstalment = true
	req.InstalmentsQuantity = 3

	contract, err := f.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	instalment := contract.TotalPrice.Div(decimal.NewFromInt(3))
	for i := 1; i <= 3; i++ {
		payment, err := f.svc.Pay(context.Background(), contract.ID)
		if err != nil {
			t.Fatalf("Pay() #%d error = %v", i, err)
		}
		if payment.InstalmentNumber == nil || *payment.InstalmentNumber != i {
			t.Fatalf("Pay() #%d instalment number = %v, want %d", i, payment.InstalmentNumber, i)
		}
		if !payment.Price.Equal(instalment) {
			t.Errorf("Pay() #%d price = %s, want %s", i, payment.Price, instalment)
		}

		stored, err := f.contracts.GetByID(context.Background(), contract.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if stored.IsFulfilled != (i == 3) {
			t.Errorf("after payment #%d fulfilled = %v", i, stored.IsFulfilled)
		}
	}

	_, err = f.svc.Pay(context.Background(), contract.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Pay() on paid contract error = %v, want conflict", err)
	}
	if err.Error() != "Contract has been already paid" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestPayContractExpiredPurgesPayments(t *testing.T) {
	f := newContractFixture(t)

	id, err := f.contracts.Create(context.Background(), domain.Contract{
		ClientID:            f.clientID,
		SoftwareID:          1,
		StartDate:           time.Now().Add(-40 * 24 * time.Hour),
		EndDate:             time.Now().Add(-10 * 24 * time.Hour),
		TotalPrice:          decimal.NewFromInt(900),
		UpdateYears:         1,
		IsInstalment:        true,
		InstalmentsQuantity: 3,
	})
	if err != nil {
		t.Fatalf("failed to seed contract: %v", err)
	}

	one := 1
	if _, err := f.contracts.AddPayment(context.Background(), domain.Payment{
		ContractID:       id,
		Price:            decimal.NewFromInt(300),
		PaymentDate:      time.Now().Add(-20 * 24 * time.Hour),
		InstalmentNumber: &one,
	}); err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}

	_, err = f.svc.Pay(context.Background(), id)
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("Pay() error = %v, want bad request", err)
	}
	if err.Error() != "Contract has expired" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	// The purge of stale instalments survives the failed payment.
	if got := f.contracts.Payments(id); len(got) != 0 {
		t.Errorf("payments after expired pay = %d, want 0", len(got))
	}
}

// brokenFulfilRepo fails the fulfilment write so the payment insert has
// already landed when the transaction aborts.
type brokenFulfilRepo struct {
	*repository.InMemoryContractRepository
}

func (r *brokenFulfilRepo) SetFulfilled(ctx context.Context, contractID int64) error {
	return errors.New("write failed")
}

func TestPayContractRollsBackPaymentOnFailure(t *testing.T) {
	log := logger.New(logger.ERROR)
	inner := repository.NewInMemoryContractRepository(log)
	clients := repository.NewInMemoryClientRepository(log)
	software := repository.NewInMemorySoftwareRepository(log)
	m := metrics.NewContractMetrics(prometheus.NewRegistry(), log)
	svc := service.NewContractService(
		&brokenFulfilRepo{inner}, clients, software, inner,
		kafka.NopProducer{}, m, log,
	)

	id, err := inner.Create(context.Background(), domain.Contract{
		ClientID:    1,
		SoftwareID:  1,
		StartDate:   time.Now().Add(-24 * time.Hour),
		EndDate:     time.Now().Add(5 * 24 * time.Hour),
		TotalPrice:  decimal.NewFromInt(1500),
		UpdateYears: 1,
	})
	if err != nil {
		t.Fatalf("failed to seed contract: %v", err)
	}

	if _, err := svc.Pay(context.Background(), id); err == nil {
		t.Fatal("Pay() expected error from failed fulfilment write")
	}

	// The payment insert committed first inside the transaction and must
	// be undone with it.
	if got := inner.Payments(id); len(got) != 0 {
		t.Errorf("payments after failed pay = %d, want 0", len(got))
	}
	stored, err := inner.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.IsFulfilled {
		t.Error("contract fulfilled after rolled-back payment")
	}
}

func TestPayContractNotFound(t *testing.T) {
	f := newContractFixture(t)

	_, err := f.svc.Pay(context.Background(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Pay() error = %v, want not found", err)
	}
	if err.Error() != "Contract not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestDeleteContract(t *testing.T) {
	f := newContractFixture(t)

	contract, err := f.svc.Create(context.Background(), validContractRequest(f.clientID))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := f.svc.Delete(context.Background(), contract.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if err := f.svc.Delete(context.Background(), contract.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete() error = %v, want not found", err)
	}
}
