// Package portfolio holds the client-side portfolio use cases.
package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/invtracker/internal/validation"
	"github.com/iudanet/invtracker/pkg/api"
)

//go:generate moq -out api_mock.go . API

// API is the bearer-protected portfolio part of the backend.
type API interface {
	PortfolioSummary(ctx context.Context) (*api.PortfolioSummary, error)
	AddAcquisition(ctx context.Context, req api.AcquisitionRequest) (*api.Acquisition, error)
	ListAcquisitions(ctx context.Context) ([]api.Acquisition, error)
	Allocation(ctx context.Context) ([]api.AllocationSlice, error)
}

// AcquisitionInput is an acquisition as typed by the user. Amounts are
// decimal strings; empty Date means today.
type AcquisitionInput struct {
	AssetType string
	Symbol    string
	Name      string
	Currency  string
	Date      string
	Notes     string
	Quantity  string
	UnitPrice string
	Fee       string
	Tags      []string
}

// Position aggregates the acquisitions of one symbol.
type Position struct {
	AssetType    api.AssetType
	Symbol       string
	Currency     string
	Quantity     decimal.Decimal
	CostBasis    decimal.Decimal
	AverageCost  decimal.Decimal
	Acquisitions int
}

// Service implements the portfolio use cases.
type Service struct {
	api    API
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a portfolio Service.
func NewService(api API, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, logger: logger, now: time.Now}
}

// Summary returns the headline numbers of the portfolio.
func (s *Service) Summary(ctx context.Context) (*api.PortfolioSummary, error) {
	return s.api.PortfolioSummary(ctx)
}

// Allocation returns how the portfolio value splits across asset types.
func (s *Service) Allocation(ctx context.Context) ([]api.AllocationSlice, error) {
	return s.api.Allocation(ctx)
}

// Acquisitions returns the recorded acquisitions.
func (s *Service) Acquisitions(ctx context.Context) ([]api.Acquisition, error) {
	return s.api.ListAcquisitions(ctx)
}

// AddAcquisition validates in and records it. Invalid input never reaches
// the network.
func (s *Service) AddAcquisition(ctx context.Context, in AcquisitionInput) (*api.Acquisition, error) {
	req, err := s.buildRequest(in)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateAcquisition(req, s.now()); err != nil {
		return nil, err
	}

	created, err := s.api.AddAcquisition(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "acquisition recorded",
		slog.String("id", created.ID), slog.String("symbol", req.AssetSymbol))
	return created, nil
}

// Positions groups acquisitions by type and symbol, sorted by symbol.
func (s *Service) Positions(ctx context.Context) ([]Position, error) {
	list, err := s.api.ListAcquisitions(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(list), nil
}

// Aggregate groups acquisitions into positions. Fees count towards cost.
func Aggregate(list []api.Acquisition) []Position {
	byKey := make(map[string]*Position)
	for _, a := range list {
		key := string(a.AssetType) + "/" + a.AssetSymbol
		p, ok := byKey[key]
		if !ok {
			p = &Position{AssetType: a.AssetType, Symbol: a.AssetSymbol, Currency: a.Currency}
			byKey[key] = p
		}
		cost := a.Quantity.Mul(a.UnitPrice)
		if a.Fee != nil {
			cost = cost.Add(*a.Fee)
		}
		p.Quantity = p.Quantity.Add(a.Quantity)
		p.CostBasis = p.CostBasis.Add(cost)
		p.Acquisitions++
	}

	out := make([]Position, 0, len(byKey))
	for _, p := range byKey {
		if p.Quantity.IsPositive() {
			p.AverageCost = p.CostBasis.DivRound(p.Quantity, 4)
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].AssetType < out[j].AssetType
	})
	return out
}

func (s *Service) buildRequest(in AcquisitionInput) (api.AcquisitionRequest, error) {
	req := api.AcquisitionRequest{
		AssetType:       api.AssetType(strings.ToUpper(strings.TrimSpace(in.AssetType))),
		AssetSymbol:     strings.ToUpper(strings.TrimSpace(in.Symbol)),
		AssetName:       strings.TrimSpace(in.Name),
		Currency:        strings.ToUpper(strings.TrimSpace(in.Currency)),
		AcquisitionDate: strings.TrimSpace(in.Date),
		Notes:           strings.TrimSpace(in.Notes),
		Tags:            in.Tags,
	}
	if req.AcquisitionDate == "" {
		req.AcquisitionDate = s.now().Format(api.AcquisitionDateLayout)
	}

	var err error
	if req.Quantity, err = parseAmount("quantity", in.Quantity); err != nil {
		return req, err
	}
	if req.UnitPrice, err = parseAmount("unitPrice", in.UnitPrice); err != nil {
		return req, err
	}
	if strings.TrimSpace(in.Fee) != "" {
		fee, err := parseAmount("fee", in.Fee)
		if err != nil {
			return req, err
		}
		req.Fee = &fee
	}
	return req, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &validation.Error{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	// Допускаем запятую как десятичный разделитель: "12,5"
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, &validation.Error{Field: field, Message: fmt.Sprintf("%s must be a number", field)}
	}
	return d, nil
}
