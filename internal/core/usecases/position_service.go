package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/core/ports"
	"github.com/samirrijal/gridgeo/internal/pkg/metrics"
)

func positionCacheKey(networkID string, ref domain.ElementRef) string {
	return fmt.Sprintf("positions:%s:%s:%s", networkID, ref.Kind, ref.ID)
}

func positionListCacheKey(networkID string) string {
	return "positions:" + networkID + ":all"
}

// PositionService serves stored element positions.
type PositionService struct {
	positions ports.PositionRepository
	cache     ports.CacheService
	ttl       int
}

// NewPositionService creates a new PositionService. cache may be nil; ttlSeconds
// applies to cached entries.
func NewPositionService(positions ports.PositionRepository, cache ports.CacheService, ttlSeconds int) *PositionService {
	return &PositionService{positions: positions, cache: cache, ttl: ttlSeconds}
}

// GetPosition returns the stored position of one element.
func (s *PositionService) GetPosition(ctx context.Context, networkID string, ref domain.ElementRef) (*domain.ElementPosition, error) {
	if !ref.Kind.Valid() {
		return nil, fmt.Errorf("unknown element kind %q", ref.Kind)
	}

	cacheKey := positionCacheKey(networkID, ref)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var pos domain.ElementPosition
			if err := json.Unmarshal(data, &pos); err == nil {
				metrics.CacheHits.WithLabelValues("position").Inc()
				return &pos, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("position").Inc()
	}

	pos, err := s.positions.GetPosition(ctx, networkID, ref)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(pos); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}

	return pos, nil
}

// ListPositions returns every stored position of a network.
func (s *PositionService) ListPositions(ctx context.Context, networkID string) ([]domain.ElementPosition, error) {
	cacheKey := positionListCacheKey(networkID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var list []domain.ElementPosition
			if err := json.Unmarshal(data, &list); err == nil {
				metrics.CacheHits.WithLabelValues("position_list").Inc()
				return list, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("position_list").Inc()
	}

	list, err := s.positions.ListByNetwork(ctx, networkID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(list); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
		}
	}

	return list, nil
}
