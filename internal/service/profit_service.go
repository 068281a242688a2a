package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/internal/repository"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// RateProvider looks up the mid exchange rate of a currency against the
// base currency.
type RateProvider interface {
	MidRate(ctx context.Context, currencyCode string) (decimal.Decimal, error)
}

// ProfitService aggregates revenue over fulfilled contracts
type ProfitService interface {
	Calculate(ctx context.Context, currencyCode string, softwareID *int64) (domain.ProfitReport, error)
}

type profitService struct {
	contracts    repository.ContractRepository
	software     repository.SoftwareRepository
	rates        RateProvider
	baseCurrency string
	log          *logger.Logger
}

// NewProfitService creates a new profit service
func NewProfitService(
	contracts repository.ContractRepository,
	software repository.SoftwareRepository,
	rates RateProvider,
	baseCurrency string,
	log *logger.Logger,
) ProfitService {
	return &profitService{
		contracts:    contracts,
		software:     software,
		rates:        rates,
		baseCurrency: baseCurrency,
		log:          log,
	}
}

// Calculate sums the total price of fulfilled contracts, grouped by
// software. A currency other than the base one is converted by dividing
// every amount by the mid rate and rounding to 2 decimal places.
func (s *profitService) Calculate(ctx context.Context, currencyCode string, softwareID *int64) (domain.ProfitReport, error) {
	s.log.Debug("Calculating profit: currency=%s", currencyCode)

	contracts, err := s.contracts.ListFulfilled(ctx, softwareID)
	if err != nil {
		return domain.ProfitReport{}, fmt.Errorf("failed to list fulfilled contracts: %w", err)
	}

	report := domain.ProfitReport{
		CurrencyCode: currencyCode,
		Sum:          decimal.Zero,
	}

	groupIndex := make(map[int64]int)
	names := make(map[int64]string)
	for _, c := range contracts {
		report.Sum = report.Sum.Add(c.TotalPrice)

		idx, ok := groupIndex[c.SoftwareID]
		if !ok {
			name, ok := names[c.SoftwareID]
			if !ok {
				software, err := s.software.GetByID(ctx, c.SoftwareID)
				if err != nil {
					return domain.ProfitReport{}, fmt.Errorf("failed to load software %d: %w", c.SoftwareID, err)
				}
				name = software.Name
				names[c.SoftwareID] = name
			}

			report.Softwares = append(report.Softwares, domain.SoftwareProfit{
				SoftwareID:   c.SoftwareID,
				SoftwareName: name,
			})
			idx = len(report.Softwares) - 1
			groupIndex[c.SoftwareID] = idx
		}

		report.Softwares[idx].Contracts = append(report.Softwares[idx].Contracts, domain.ContractProfit{
			ContractID: c.ID,
			StartDate:  c.StartDate,
			EndDate:    c.EndDate,
			TotalPrice: c.TotalPrice,
		})
	}

	if strings.EqualFold(currencyCode, s.baseCurrency) {
		return report, nil
	}

	rate, err := s.rates.MidRate(ctx, currencyCode)
	if err != nil {
		s.log.Warn("Rate lookup failed for %s: %v", currencyCode, err)
		return domain.ProfitReport{}, domain.NotFound("Invalid request")
	}
	if rate.IsZero() {
		s.log.Warn("Rate lookup returned zero rate for %s", currencyCode)
		return domain.ProfitReport{}, domain.NotFound("Invalid request")
	}

	report.Sum = report.Sum.Div(rate).Round(2)
	for i := range report.Softwares {
		for j := range report.Softwares[i].Contracts {
			contract := &report.Softwares[i].Contracts[j]
			contract.TotalPrice = contract.TotalPrice.Div(rate).Round(2)
		}
	}

	return report, nil
}
