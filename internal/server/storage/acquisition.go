package storage

import (
	"context"

	"github.com/iudanet/invtracker/internal/models"
)

// AcquisitionStorage persists acquisition lots.
type AcquisitionStorage interface {
	CreateAcquisition(ctx context.Context, a *models.Acquisition) error

	// ListAcquisitions returns the user's lots ordered by acquisition date,
	// then creation time. Returns empty slice if none.
	ListAcquisitions(ctx context.Context, userID string) ([]*models.Acquisition, error)
}
