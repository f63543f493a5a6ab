package cli

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iudanet/invtracker/internal/client/portfolio"
	"github.com/iudanet/invtracker/pkg/api"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234.567", "USD", "$1,234.57"},
		{"0", "USD", "$0.00"},
		{"-1234.567", "USD", "-$1,234.57"},
		{"12.5", "XYZ", "12.50 XYZ"},
		{"12.5", "", "12.50 "},
	}

	for _, tt := range tests {
		t.Run(tt.amount+" "+tt.currency, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(d(tt.amount), tt.currency))
		})
	}
}

func TestFormatSignedMoneyAndPercent(t *testing.T) {
	assert.Equal(t, "+$5.00", formatSignedMoney(d("5"), "USD"))
	assert.Equal(t, "-$5.00", formatSignedMoney(d("-5"), "USD"))
	assert.Equal(t, "$0.00", formatSignedMoney(decimal.Zero, "USD"))

	assert.Equal(t, "+12.50%", formatPercent(d("12.5")))
	assert.Equal(t, "-0.20%", formatPercent(d("-0.2")))
	assert.Equal(t, "0.00%", formatPercent(decimal.Zero))
}

func TestRenderAcquisitions(t *testing.T) {
	var buf bytes.Buffer
	renderAcquisitions(&buf, nil)
	assert.Equal(t, "No acquisitions recorded.\n", buf.String())

	buf.Reset()
	fee := d("1.5")
	renderAcquisitions(&buf, []api.Acquisition{
		{
			ID: "lot-1",
			AcquisitionRequest: api.AcquisitionRequest{
				AssetType:       api.AssetTypeEquity,
				AssetSymbol:     "AAPL",
				Quantity:        d("3"),
				UnitPrice:       d("190.25"),
				Fee:             &fee,
				Currency:        "USD",
				AcquisitionDate: "2024-05-01",
			},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "2024-05-01")
	assert.Contains(t, out, "Equity")
	assert.Contains(t, out, "$190.25")
	assert.Contains(t, out, "$1.50")
	assert.Contains(t, out, "lot-1")
}

func TestRenderPositions(t *testing.T) {
	var buf bytes.Buffer
	renderPositions(&buf, nil)
	assert.Equal(t, "No positions.\n", buf.String())

	buf.Reset()
	renderPositions(&buf, []portfolio.Position{{
		AssetType:    api.AssetTypeFX,
		Symbol:       "EUR",
		Currency:     "USD",
		Quantity:     d("100"),
		CostBasis:    d("108"),
		AverageCost:  d("1.08"),
		Acquisitions: 2,
	}})
	out := buf.String()
	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "EUR")
	assert.Contains(t, out, "$108.00")
	assert.Contains(t, out, "$1.08")
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	renderSummary(&buf, &api.PortfolioSummary{
		Status:                   api.SummaryStatusUp,
		TotalUnrealizedPLPercent: d("12.5"),
	})

	out := buf.String()
	assert.Contains(t, out, "Status:")
	assert.Contains(t, out, "UP")
	assert.Contains(t, out, "+12.50%")
	assert.Contains(t, out, "Cost basis:")
	assert.Contains(t, out, "FX influence:")
}

func TestRenderAllocation(t *testing.T) {
	var buf bytes.Buffer
	renderAllocation(&buf, nil)
	assert.Equal(t, "No holdings.\n", buf.String())

	buf.Reset()
	renderAllocation(&buf, []api.AllocationSlice{
		{AssetType: api.AssetTypeEquity, AssetName: "Equity", Value: d("3500"), Percentage: d("53.85")},
		{AssetType: api.AssetTypeFund, Value: d("0.5"), Percentage: d("0.1")},
	})
	out := buf.String()
	assert.Contains(t, out, "SHARE")
	assert.Contains(t, out, "Equity")
	assert.Contains(t, out, "53.85%")
	assert.Contains(t, out, "Fund")
	assert.Contains(t, out, "0.10%")
}
