package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iudanet/invtracker/internal/models"
	"github.com/iudanet/invtracker/internal/server/storage"
	"github.com/iudanet/invtracker/internal/validation"
	"github.com/iudanet/invtracker/pkg/api"
)

// PortfolioHandler обрабатывает запросы портфеля
type PortfolioHandler struct {
	logger       *slog.Logger
	acquisitions storage.AcquisitionStorage
	now          func() time.Time
}

// NewPortfolioHandler создает новый handler для портфеля
func NewPortfolioHandler(logger *slog.Logger, acquisitions storage.AcquisitionStorage) *PortfolioHandler {
	return &PortfolioHandler{
		logger:       logger,
		acquisitions: acquisitions,
		now:          time.Now,
	}
}

// Summary обрабатывает GET /portfolio/summary
// Ответ помечается ETag, повторный запрос с If-None-Match получает 304
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	lots, err := h.acquisitions.ListAcquisitions(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list acquisitions", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	body, err := json.Marshal(computeSummary(lots))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode summary", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, no-cache")
	w.Header().Set("Vary", "Authorization")

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(ctx, "failed to write summary", slog.Any("error", err))
	}
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

// CreateAcquisition обрабатывает POST /portfolio/acquisitions
func (h *PortfolioHandler) CreateAcquisition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.AcquisitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode acquisition request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	now := h.now()
	if err := validation.ValidateAcquisition(req, now); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	fee := decimal.Zero
	if req.Fee != nil {
		fee = *req.Fee
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = DefaultBaseCurrency
	}

	lot := &models.Acquisition{
		ID:              uuid.New().String(),
		UserID:          userID,
		AssetType:       string(req.AssetType),
		AssetSymbol:     strings.ToUpper(strings.TrimSpace(req.AssetSymbol)),
		AssetName:       strings.TrimSpace(req.AssetName),
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		Fee:             fee,
		Currency:        currency,
		AcquisitionDate: req.AcquisitionDate,
		Notes:           req.Notes,
		Tags:            req.Tags,
		CreatedAt:       now.UTC(),
	}

	if err := h.acquisitions.CreateAcquisition(ctx, lot); err != nil {
		h.logger.ErrorContext(ctx, "failed to create acquisition", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "acquisition recorded",
		slog.String("user_id", userID),
		slog.String("acquisition_id", lot.ID),
		slog.String("symbol", lot.AssetSymbol))

	sendJSON(w, h.logger, toAPIAcquisition(lot), http.StatusCreated)
}

// ListAcquisitions обрабатывает GET /portfolio/acquisitions
func (h *PortfolioHandler) ListAcquisitions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	lots, err := h.acquisitions.ListAcquisitions(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list acquisitions", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.Acquisition, 0, len(lots))
	for _, lot := range lots {
		resp = append(resp, toAPIAcquisition(lot))
	}
	sendJSON(w, h.logger, resp, http.StatusOK)
}

// Allocation обрабатывает GET /portfolio/allocation
func (h *PortfolioHandler) Allocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	lots, err := h.acquisitions.ListAcquisitions(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list acquisitions", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(w, h.logger, computeAllocation(lots), http.StatusOK)
}

func toAPIAcquisition(lot *models.Acquisition) api.Acquisition {
	fee := lot.Fee
	return api.Acquisition{
		ID:        lot.ID,
		CreatedAt: lot.CreatedAt,
		AcquisitionRequest: api.AcquisitionRequest{
			AssetType:       api.AssetType(lot.AssetType),
			AssetSymbol:     lot.AssetSymbol,
			AssetName:       lot.AssetName,
			Quantity:        lot.Quantity,
			UnitPrice:       lot.UnitPrice,
			Fee:             &fee,
			Currency:        lot.Currency,
			AcquisitionDate: lot.AcquisitionDate,
			Notes:           lot.Notes,
			Tags:            lot.Tags,
		},
	}
}
