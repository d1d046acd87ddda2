package usecases_test

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// --- Mock NetworkRepository ---

type mockNetworkRepo struct {
	loadFn func(ctx context.Context, networkID string) (*domain.Network, error)
}

func (m *mockNetworkRepo) LoadNetwork(ctx context.Context, networkID string) (*domain.Network, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, networkID)
	}
	return nil, domain.ErrNetworkNotFound
}

// --- Mock RecordSource ---

type sliceSource struct {
	records []domain.CoordinateRecord
	err     error // yielded after the records, if set
}

func (s *sliceSource) PositionRecords(ctx context.Context, networkID string) iter.Seq2[domain.CoordinateRecord, error] {
	return func(yield func(domain.CoordinateRecord, error) bool) {
		for _, r := range s.records {
			if !yield(r, nil) {
				return
			}
		}
		if s.err != nil {
			yield(domain.CoordinateRecord{}, s.err)
		}
	}
}

// --- Mock PositionRepository ---

type mockPositionRepo struct {
	saveFn func(ctx context.Context, networkID, importID string, positions []domain.ElementPosition) error
	getFn  func(ctx context.Context, networkID string, ref domain.ElementRef) (*domain.ElementPosition, error)
	listFn func(ctx context.Context, networkID string) ([]domain.ElementPosition, error)
}

func (m *mockPositionRepo) SavePositions(ctx context.Context, networkID, importID string, positions []domain.ElementPosition) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, networkID, importID, positions)
	}
	return nil
}

func (m *mockPositionRepo) GetPosition(ctx context.Context, networkID string, ref domain.ElementRef) (*domain.ElementPosition, error) {
	if m.getFn != nil {
		return m.getFn(ctx, networkID, ref)
	}
	return nil, domain.ErrPositionNotFound
}

func (m *mockPositionRepo) ListByNetwork(ctx context.Context, networkID string) ([]domain.ElementPosition, error) {
	if m.listFn != nil {
		return m.listFn(ctx, networkID)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	attached  []domain.PositionAttachedEvent
	completed []domain.ImportCompletedEvent
	requests  []domain.ImportRequest
	failWith  error
}

func (m *mockPublisher) PublishPositionAttached(ctx context.Context, event *domain.PositionAttachedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached = append(m.attached, *event)
	return m.failWith
}

func (m *mockPublisher) PublishImportCompleted(ctx context.Context, event *domain.ImportCompletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, *event)
	return m.failWith
}

func (m *mockPublisher) PublishImportRequest(ctx context.Context, req *domain.ImportRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, *req)
	return m.failWith
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	data    map[string][]byte
	deleted []string
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockCache) wasDeleted(key string) bool {
	return slices.Contains(m.deleted, key)
}
