package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/invtracker/internal/models"
)

func TestAcquisitionStorage_CreateAndList(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	otherID := createTestUser(t, ctx, s)

	later := &models.Acquisition{
		ID:              uuid.New().String(),
		UserID:          userID,
		AssetType:       "EQUITY",
		AssetSymbol:     "THYAO",
		Currency:        "TRY",
		Quantity:        decimal.RequireFromString("100"),
		UnitPrice:       decimal.RequireFromString("285.40"),
		AcquisitionDate: "2024-03-02",
		CreatedAt:       time.Now(),
	}
	earlier := &models.Acquisition{
		ID:              uuid.New().String(),
		UserID:          userID,
		AssetType:       "PRECIOUS_METAL",
		AssetSymbol:     "XAU",
		AssetName:       "Gold",
		Currency:        "TRY",
		Quantity:        decimal.RequireFromString("10.5"),
		UnitPrice:       decimal.RequireFromString("2450.125"),
		Fee:             decimal.RequireFromString("12.5"),
		AcquisitionDate: "2024-01-15",
		Notes:           "bank",
		Tags:            []string{"gold", "long-term"},
		CreatedAt:       time.Now(),
	}
	foreign := &models.Acquisition{
		ID:              uuid.New().String(),
		UserID:          otherID,
		AssetType:       "FX",
		AssetSymbol:     "USD",
		Quantity:        decimal.RequireFromString("1"),
		UnitPrice:       decimal.RequireFromString("32"),
		AcquisitionDate: "2024-01-01",
		CreatedAt:       time.Now(),
	}

	for _, a := range []*models.Acquisition{later, earlier, foreign} {
		require.NoError(t, s.CreateAcquisition(ctx, a))
	}

	list, err := s.ListAcquisitions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	got := list[0]
	assert.Equal(t, earlier.ID, got.ID)
	assert.Equal(t, "XAU", got.AssetSymbol)
	assert.Equal(t, "Gold", got.AssetName)
	assert.True(t, earlier.Quantity.Equal(got.Quantity))
	assert.True(t, earlier.UnitPrice.Equal(got.UnitPrice))
	assert.True(t, earlier.Fee.Equal(got.Fee))
	assert.Equal(t, []string{"gold", "long-term"}, got.Tags)
	assert.Equal(t, "bank", got.Notes)

	assert.Equal(t, later.ID, list[1].ID)
	assert.Empty(t, list[1].Tags)
	assert.True(t, list[1].Fee.IsZero())
}

func TestAcquisitionStorage_ListEmpty(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	list, err := s.ListAcquisitions(ctx, createTestUser(t, ctx, s))
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
