package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Rhymond/go-money"

	"github.com/iudanet/invtracker/pkg/api"
)

// MaxSymbolLen bounds AssetSymbol.
const MaxSymbolLen = 32

// ValidateAcquisition checks an acquisition before it is submitted. now
// decides which dates are in the future; its calendar day in its own
// location is "today".
func ValidateAcquisition(req api.AcquisitionRequest, now time.Time) error {
	if !req.AssetType.Valid() {
		return newError("assetType", "asset type must be one of PRECIOUS_METAL, FX, EQUITY, FUND")
	}

	symbol := strings.TrimSpace(req.AssetSymbol)
	if symbol == "" {
		return newError("assetSymbol", "asset symbol is required")
	}
	if utf8.RuneCountInString(symbol) > MaxSymbolLen {
		return newError("assetSymbol", "asset symbol must not exceed %d characters", MaxSymbolLen)
	}

	if !req.Quantity.IsPositive() {
		return newError("quantity", "quantity must be positive")
	}
	if !req.UnitPrice.IsPositive() {
		return newError("unitPrice", "unit price must be positive")
	}
	if req.Fee != nil && req.Fee.IsNegative() {
		return newError("fee", "fee cannot be negative")
	}

	if req.Currency != "" && money.GetCurrency(req.Currency) == nil {
		return newError("currency", "unknown currency %q", req.Currency)
	}

	if req.AcquisitionDate == "" {
		return newError("acquisitionDate", "acquisition date is required")
	}
	date, err := time.Parse(api.AcquisitionDateLayout, req.AcquisitionDate)
	if err != nil {
		return newError("acquisitionDate", "acquisition date must be YYYY-MM-DD")
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		return newError("acquisitionDate", "acquisition date cannot be in the future")
	}

	return nil
}
