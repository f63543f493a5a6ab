package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iudanet/invtracker/pkg/api"
)

// PortfolioSummary fetches the headline numbers of the portfolio.
func (c *Client) PortfolioSummary(ctx context.Context) (*api.PortfolioSummary, error) {
	var summary api.PortfolioSummary
	if err := c.doRequest(ctx, http.MethodGet, "/portfolio/summary", nil, &summary); err != nil {
		return nil, fmt.Errorf("summary request failed: %w", err)
	}
	return &summary, nil
}

// AddAcquisition records a new acquisition and returns the server's copy.
func (c *Client) AddAcquisition(ctx context.Context, req api.AcquisitionRequest) (*api.Acquisition, error) {
	var created api.Acquisition
	if err := c.doRequest(ctx, http.MethodPost, "/portfolio/acquisitions", req, &created); err != nil {
		return nil, fmt.Errorf("add acquisition request failed: %w", err)
	}
	return &created, nil
}

// ListAcquisitions returns every acquisition of the user, oldest first.
func (c *Client) ListAcquisitions(ctx context.Context) ([]api.Acquisition, error) {
	var list []api.Acquisition
	if err := c.doRequest(ctx, http.MethodGet, "/portfolio/acquisitions", nil, &list); err != nil {
		return nil, fmt.Errorf("list acquisitions request failed: %w", err)
	}
	return list, nil
}

// Allocation returns the portfolio value split by asset type, largest first.
func (c *Client) Allocation(ctx context.Context) ([]api.AllocationSlice, error) {
	var slices []api.AllocationSlice
	if err := c.doRequest(ctx, http.MethodGet, "/portfolio/allocation", nil, &slices); err != nil {
		return nil, fmt.Errorf("allocation request failed: %w", err)
	}
	return slices, nil
}
