package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitReport is the aggregation result, optionally currency-converted
type ProfitReport struct {
	CurrencyCode string           `json:"currency_code"`
	Sum          decimal.Decimal  `json:"sum"`
	Softwares    []SoftwareProfit `json:"softwares"`
}

// SoftwareProfit groups the fulfilled contracts of one software product
type SoftwareProfit struct {
	SoftwareID   int64            `json:"software_id"`
	SoftwareName string           `json:"software_name"`
	Contracts    []ContractProfit `json:"contracts"`
}

// ContractProfit is one fulfilled contract inside a profit report
type ContractProfit struct {
	ContractID int64           `json:"contract_id"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
