package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/invtracker/internal/models"
)

// CreateAcquisition stores a new acquisition lot
func (s *Storage) CreateAcquisition(ctx context.Context, a *models.Acquisition) error {
	tags, err := json.Marshal(nonNil(a.Tags))
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO acquisitions (id, user_id, asset_type, asset_symbol, asset_name, currency,
			quantity, unit_price, fee, acquisition_date, notes, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.AssetType,
		a.AssetSymbol,
		a.AssetName,
		a.Currency,
		a.Quantity.String(),
		a.UnitPrice.String(),
		a.Fee.String(),
		a.AcquisitionDate,
		a.Notes,
		string(tags),
		a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert acquisition: %w", err)
	}

	return nil
}

// ListAcquisitions returns all acquisitions of a user
func (s *Storage) ListAcquisitions(ctx context.Context, userID string) ([]*models.Acquisition, error) {
	query := `
		SELECT id, user_id, asset_type, asset_symbol, asset_name, currency,
			quantity, unit_price, fee, acquisition_date, notes, tags, created_at
		FROM acquisitions
		WHERE user_id = ?
		ORDER BY acquisition_date, created_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query acquisitions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	list := make([]*models.Acquisition, 0)

	for rows.Next() {
		a := &models.Acquisition{}
		var tags string
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.AssetType,
			&a.AssetSymbol,
			&a.AssetName,
			&a.Currency,
			&a.Quantity,
			&a.UnitPrice,
			&a.Fee,
			&a.AcquisitionDate,
			&a.Notes,
			&tags,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan acquisition: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags of %s: %w", a.ID, err)
		}
		list = append(list, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return list, nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
