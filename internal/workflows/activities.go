package workflows

import (
	"context"
	"errors"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/core/usecases"
)

// Application error types for failures that retrying cannot fix.
const (
	ErrTypeUnsupportedCRS  = "UnsupportedCoordinateSystem"
	ErrTypeMalformedRecord = "MalformedRecord"
	ErrTypeNetworkNotFound = "NetworkNotFound"
)

// Importer runs one position import.
type Importer interface {
	Import(ctx context.Context, networkID string) (*usecases.ImportResult, error)
}

// PositionLister reads stored positions through the cache.
type PositionLister interface {
	ListPositions(ctx context.Context, networkID string) ([]domain.ElementPosition, error)
}

// ImportActivities holds the activity implementations for the import workflow.
type ImportActivities struct {
	Importer  Importer
	Positions PositionLister // optional
}

// ImportPositions runs the import and returns its report. Validation failures are
// returned as non-retryable application errors.
func (a *ImportActivities) ImportPositions(ctx context.Context, networkID string) (*domain.ImportReport, error) {
	res, err := a.Importer.Import(ctx, networkID)
	if err != nil {
		return nil, classify(err)
	}
	return &res.Report, nil
}

// WarmPositionCache reads the fresh positions once so the read cache is populated.
func (a *ImportActivities) WarmPositionCache(ctx context.Context, networkID string) (int, error) {
	if a.Positions == nil {
		return 0, nil
	}
	list, err := a.Positions.ListPositions(ctx, networkID)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "position cache warmed", "network", networkID, "positions", len(list))
	return len(list), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnsupportedCoordinateSystem):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeUnsupportedCRS, err)
	case errors.Is(err, domain.ErrMalformedRecord):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeMalformedRecord, err)
	case errors.Is(err, domain.ErrNetworkNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNetworkNotFound, err)
	default:
		return err
	}
}
