package handlers

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iudanet/invtracker/internal/models"
	"github.com/iudanet/invtracker/pkg/api"
)

var hundred = decimal.NewFromInt(100)

// allocationColors are handed out in allocation order.
var allocationColors = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF", "#FF9F40"}

// holding is the quantity of one asset and its mark price.
type holding struct {
	assetType string
	quantity  decimal.Decimal
	mark      decimal.Decimal
}

func (h *holding) value() decimal.Decimal {
	return h.quantity.Mul(h.mark)
}

// holdings groups lots per asset in first-seen order. lots must be ordered
// by acquisition date: the last unit price seen for an asset is its mark.
func holdings(lots []*models.Acquisition) []*holding {
	byKey := make(map[string]*holding)
	var out []*holding
	for _, lot := range lots {
		key := positionKey(lot)
		h, ok := byKey[key]
		if !ok {
			h = &holding{assetType: lot.AssetType}
			byKey[key] = h
			out = append(out, h)
		}
		h.quantity = h.quantity.Add(lot.Quantity)
		h.mark = lot.UnitPrice
	}
	return out
}

// computeSummary builds the portfolio summary from the user's lots. Without
// a market-data feed today's change and FX influence are always zero.
func computeSummary(lots []*models.Acquisition) api.PortfolioSummary {
	summary := api.PortfolioSummary{Status: api.SummaryStatusNeutral}
	if len(lots) == 0 {
		return summary
	}

	cost := decimal.Zero
	fees := decimal.Zero
	for _, lot := range lots {
		cost = cost.Add(lot.Cost())
		fees = fees.Add(lot.Fee)
	}

	value := decimal.Zero
	for _, h := range holdings(lots) {
		value = value.Add(h.value())
	}

	pl := value.Sub(cost)
	percent := share(pl, cost)

	switch pl.Sign() {
	case 1:
		summary.Status = api.SummaryStatusUp
	case -1:
		summary.Status = api.SummaryStatusDown
	}

	summary.TotalValueTRY = value
	summary.CostBasisTRY = cost
	summary.TotalUnrealizedPLTRY = pl
	summary.TotalUnrealizedPLPercent = percent
	summary.UnrealizedGainLossTRY = pl
	summary.UnrealizedGainLossPercent = percent
	summary.EstimatedProceedsTRY = value.Sub(fees)
	return summary
}

// computeAllocation splits the portfolio value by asset type, largest
// first. Percentages are rounded to 2 places and are zero when the
// portfolio has no value.
func computeAllocation(lots []*models.Acquisition) []api.AllocationSlice {
	values := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, h := range holdings(lots) {
		v := h.value()
		values[h.assetType] = values[h.assetType].Add(v)
		total = total.Add(v)
	}

	out := make([]api.AllocationSlice, 0, len(values))
	for assetType, v := range values {
		t := api.AssetType(assetType)
		out = append(out, api.AllocationSlice{
			AssetType:  t,
			AssetName:  t.DisplayName(),
			Value:      v,
			Percentage: share(v, total),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].AssetType < out[j].AssetType
	})
	for i := range out {
		out[i].Color = allocationColors[i%len(allocationColors)]
	}
	return out
}

// share returns part as a percentage of whole, 0 when whole is not positive.
func share(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, 2)
}

// positionKey groups lots of the same asset.
func positionKey(lot *models.Acquisition) string {
	return lot.AssetType + ":" + strings.ToUpper(lot.AssetSymbol)
}
