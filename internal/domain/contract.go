package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract binds a client to a software product over a date window.
// TotalPrice is fixed at creation time; the fulfilled flag flips once
// the full price has been collected.
type Contract struct {
	ID                  int64           `json:"id"`
	ClientID            int64           `json:"client_id"`
	SoftwareID          int64           `json:"software_id"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             time.Time       `json:"end_date"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	UpdateYears         int             `json:"update_years"`
	SoftwareVersion     decimal.Decimal `json:"software_version"`
	IsInstalment        bool            `json:"is_instalment"`
	InstalmentsQuantity int             `json:"instalments_quantity,omitempty"`
	IsFulfilled         bool            `json:"is_fulfilled"`
}

// Payment is money collected against a contract. InstalmentNumber is
// set only for instalment payments (1-based sequence).
type Payment struct {
	ID               int64           `json:"id"`
	ContractID       int64           `json:"contract_id"`
	Price            decimal.Decimal `json:"price"`
	PaymentDate      time.Time       `json:"payment_date"`
	InstalmentNumber *int            `json:"instalment_number,omitempty"`
}
