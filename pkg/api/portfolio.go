package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// AcquisitionDateLayout is the wire format of AcquisitionRequest.AcquisitionDate.
const AcquisitionDateLayout = time.DateOnly

// AssetType classifies a tracked asset.
type AssetType string

const (
	AssetTypePreciousMetal AssetType = "PRECIOUS_METAL"
	AssetTypeFX            AssetType = "FX"
	AssetTypeEquity        AssetType = "EQUITY"
	AssetTypeFund          AssetType = "FUND"
)

// AssetTypes lists every known asset type in display order.
var AssetTypes = []AssetType{AssetTypePreciousMetal, AssetTypeFX, AssetTypeEquity, AssetTypeFund}

// Valid reports whether t is one of AssetTypes.
func (t AssetType) Valid() bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DisplayName returns a human-readable label.
func (t AssetType) DisplayName() string {
	switch t {
	case AssetTypePreciousMetal:
		return "Precious Metal"
	case AssetTypeFX:
		return "FX"
	case AssetTypeEquity:
		return "Equity"
	case AssetTypeFund:
		return "Fund"
	default:
		return string(t)
	}
}

// Summary status values.
const (
	SummaryStatusUp      = "UP"
	SummaryStatusDown    = "DOWN"
	SummaryStatusNeutral = "NEUTRAL"
)

// PortfolioSummary is returned by GET /portfolio/summary. All amounts are in
// the user's base currency (TRY on the reference backend).
type PortfolioSummary struct {
	Status                    string          `json:"status"`
	TotalValueTRY             decimal.Decimal `json:"totalValueTRY"`
	TodayChangePercent        decimal.Decimal `json:"todayChangePercent"`
	TotalUnrealizedPLTRY      decimal.Decimal `json:"totalUnrealizedPLTRY"`
	TotalUnrealizedPLPercent  decimal.Decimal `json:"totalUnrealizedPLPercent"`
	EstimatedProceedsTRY      decimal.Decimal `json:"estimatedProceedsTRY"`
	CostBasisTRY              decimal.Decimal `json:"costBasisTRY"`
	UnrealizedGainLossTRY     decimal.Decimal `json:"unrealizedGainLossTRY"`
	UnrealizedGainLossPercent decimal.Decimal `json:"unrealizedGainLossPercent"`
	FxInfluenceTRY            decimal.Decimal `json:"fxInfluenceTRY"`
}

// AllocationSlice is one entry of GET /portfolio/allocation: the share of
// the portfolio value held in one asset type, valued like the summary.
type AllocationSlice struct {
	AssetType  AssetType       `json:"assetType"`
	AssetName  string          `json:"assetName"`
	Color      string          `json:"color"` // подсказка для графиков
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

// AcquisitionRequest is the body of POST /portfolio/acquisitions.
type AcquisitionRequest struct {
	Fee             *decimal.Decimal `json:"fee,omitempty"`
	AssetType       AssetType        `json:"assetType"`
	AssetSymbol     string           `json:"assetSymbol"`
	AssetName       string           `json:"assetName,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	AcquisitionDate string           `json:"acquisitionDate"`
	Notes           string           `json:"notes,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unitPrice"`
}

// Acquisition is a recorded acquisition lot as echoed by the backend.
type Acquisition struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	AcquisitionRequest
}
