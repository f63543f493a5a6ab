package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/iudanet/invtracker/internal/client/portfolio"
	"github.com/iudanet/invtracker/pkg/api"
)

// summaryCurrency is the currency of every PortfolioSummary amount.
const summaryCurrency = "TRY"

// formatMoney renders amount with the symbol and separators of currency.
// Unknown currencies fall back to the plain amount and code.
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// formatSignedMoney is formatMoney with an explicit "+" for gains.
func formatSignedMoney(amount decimal.Decimal, currency string) string {
	if amount.IsPositive() {
		return "+" + formatMoney(amount, currency)
	}
	return formatMoney(amount, currency)
}

func formatPercent(p decimal.Decimal) string {
	s := p.StringFixed(2) + "%"
	if p.IsPositive() {
		return "+" + s
	}
	return s
}

func renderSummary(w io.Writer, s *api.PortfolioSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", s.Status)
	_, _ = fmt.Fprintf(tw, "Total value:\t%s\n", formatMoney(s.TotalValueTRY, summaryCurrency))
	_, _ = fmt.Fprintf(tw, "Today:\t%s\n", formatPercent(s.TodayChangePercent))
	_, _ = fmt.Fprintf(tw, "Unrealized P/L:\t%s (%s)\n",
		formatSignedMoney(s.TotalUnrealizedPLTRY, summaryCurrency), formatPercent(s.TotalUnrealizedPLPercent))
	_, _ = fmt.Fprintf(tw, "Cost basis:\t%s\n", formatMoney(s.CostBasisTRY, summaryCurrency))
	_, _ = fmt.Fprintf(tw, "Estimated proceeds:\t%s\n", formatMoney(s.EstimatedProceedsTRY, summaryCurrency))
	_, _ = fmt.Fprintf(tw, "FX influence:\t%s\n", formatSignedMoney(s.FxInfluenceTRY, summaryCurrency))
	_ = tw.Flush()
}

func renderAcquisitions(w io.Writer, list []api.Acquisition) {
	if len(list) == 0 {
		_, _ = fmt.Fprintln(w, "No acquisitions recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tTYPE\tSYMBOL\tQUANTITY\tUNIT PRICE\tFEE\tID")
	for _, a := range list {
		fee := "-"
		if a.Fee != nil && !a.Fee.IsZero() {
			fee = formatMoney(*a.Fee, a.Currency)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.AcquisitionDate, a.AssetType.DisplayName(), a.AssetSymbol,
			a.Quantity.String(), formatMoney(a.UnitPrice, a.Currency), fee, a.ID)
	}
	_ = tw.Flush()
}

func renderPositions(w io.Writer, positions []portfolio.Position) {
	if len(positions) == 0 {
		_, _ = fmt.Fprintln(w, "No positions.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SYMBOL\tTYPE\tQUANTITY\tAVG COST\tCOST BASIS\tLOTS")
	for _, p := range positions {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			p.Symbol, p.AssetType.DisplayName(), p.Quantity.String(),
			formatMoney(p.AverageCost, p.Currency), formatMoney(p.CostBasis, p.Currency), p.Acquisitions)
	}
	_ = tw.Flush()
}

func renderAllocation(w io.Writer, slices []api.AllocationSlice) {
	if len(slices) == 0 {
		_, _ = fmt.Fprintln(w, "No holdings.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TYPE\tVALUE\tSHARE")
	for _, s := range slices {
		name := s.AssetName
		if name == "" {
			name = s.AssetType.DisplayName()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s%%\n",
			name, formatMoney(s.Value, summaryCurrency), s.Percentage.StringFixed(2))
	}
	_ = tw.Flush()
}

func renderTimestamp(w io.Writer, t time.Time) {
	_, _ = fmt.Fprintf(w, "--- %s ---\n", t.Format(time.DateTime))
}
