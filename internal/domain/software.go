package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Software is a sellable software product at a concrete version
type Software struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Version     decimal.Decimal `json:"version"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
}

// Discount is a fractional price reduction valid over a date window.
// Value is a fraction in [0, 1], e.g. 0.10 for ten percent.
type Discount struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	FromDate    time.Time       `json:"from_date"`
	ToDate      time.Time       `json:"to_date"`
}
