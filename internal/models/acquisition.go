package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acquisition is one purchase lot owned by a user.
type Acquisition struct {
	CreatedAt       time.Time
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Fee             decimal.Decimal
	ID              string
	UserID          string
	AssetType       string
	AssetSymbol     string
	AssetName       string
	Currency        string
	AcquisitionDate string // YYYY-MM-DD
	Notes           string
	Tags            []string
}

// Cost is quantity times unit price plus the fee.
func (a Acquisition) Cost() decimal.Decimal {
	return a.Quantity.Mul(a.UnitPrice).Add(a.Fee)
}
