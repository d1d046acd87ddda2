package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/core/usecases"
)

func TestPositionService_GetPosition_ReadThrough(t *testing.T) {
	calls := 0
	repo := &mockPositionRepo{
		getFn: func(ctx context.Context, networkID string, ref domain.ElementRef) (*domain.ElementPosition, error) {
			calls++
			return &domain.ElementPosition{
				Element:     ref,
				Coordinates: []domain.Coordinate{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}},
			}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewPositionService(repo, cache, 60)

	ref := domain.ElementRef{Kind: domain.KindLine, ID: "L1"}
	for i := 0; i < 2; i++ {
		pos, err := svc.GetPosition(context.Background(), "net1", ref)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pos.Element != ref || len(pos.Coordinates) != 2 {
			t.Errorf("unexpected position: %+v", pos)
		}
	}
	if calls != 1 {
		t.Errorf("expected repository to be hit once, got %d", calls)
	}
	if _, ok := cache.data["positions:net1:line:L1"]; !ok {
		t.Error("expected position to be cached")
	}
}

func TestPositionService_GetPosition_NotFound(t *testing.T) {
	svc := usecases.NewPositionService(&mockPositionRepo{}, nil, 60)
	_, err := svc.GetPosition(context.Background(), "net1", domain.ElementRef{Kind: domain.KindDanglingLine, ID: "X"})
	if !errors.Is(err, domain.ErrPositionNotFound) {
		t.Errorf("expected ErrPositionNotFound, got %v", err)
	}
}

func TestPositionService_GetPosition_InvalidKind(t *testing.T) {
	svc := usecases.NewPositionService(&mockPositionRepo{}, nil, 60)
	if _, err := svc.GetPosition(context.Background(), "net1", domain.ElementRef{Kind: "bus", ID: "B1"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestPositionService_ListPositions(t *testing.T) {
	calls := 0
	repo := &mockPositionRepo{
		listFn: func(ctx context.Context, networkID string) ([]domain.ElementPosition, error) {
			calls++
			return []domain.ElementPosition{
				{Element: domain.ElementRef{Kind: domain.KindLine, ID: "L1"}},
				{Element: domain.ElementRef{Kind: domain.KindDanglingLine, ID: "DL1"}},
			}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewPositionService(repo, cache, 60)

	for i := 0; i < 2; i++ {
		list, err := svc.ListPositions(context.Background(), "net1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 positions, got %d", len(list))
		}
	}
	if calls != 1 {
		t.Errorf("expected repository to be hit once, got %d", calls)
	}
}

func TestPositionService_ListPositions_Error(t *testing.T) {
	repo := &mockPositionRepo{
		listFn: func(ctx context.Context, networkID string) ([]domain.ElementPosition, error) {
			return nil, errors.New("boom")
		},
	}
	svc := usecases.NewPositionService(repo, newMockCache(), 60)
	if _, err := svc.ListPositions(context.Background(), "net1"); err == nil {
		t.Error("expected error")
	}
}
