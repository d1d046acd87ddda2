package ports

import (
	"context"
	"iter"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// RecordSource produces the raw position records of a network. Each call yields a
// fresh, finite sequence.
type RecordSource interface {
	PositionRecords(ctx context.Context, networkID string) iter.Seq2[domain.CoordinateRecord, error]
}

// NetworkRepository loads network snapshots.
type NetworkRepository interface {
	LoadNetwork(ctx context.Context, networkID string) (*domain.Network, error)
}

// PositionRepository persists reconstructed element positions.
type PositionRepository interface {
	SavePositions(ctx context.Context, networkID, importID string, positions []domain.ElementPosition) error
	GetPosition(ctx context.Context, networkID string, ref domain.ElementRef) (*domain.ElementPosition, error)
	ListByNetwork(ctx context.Context, networkID string) ([]domain.ElementPosition, error)
}
