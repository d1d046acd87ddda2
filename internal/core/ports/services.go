package ports

import (
	"context"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// ElementResolver validates coordinate systems and resolves element ids against the
// line and dangling line namespaces. An id resolves in at most one namespace.
type ElementResolver interface {
	IsSupportedCRS(name, urn string) bool
	ResolveLine(id string) (domain.ElementRef, bool)
	ResolveDanglingLine(id string) (domain.ElementRef, bool)
}

// CRSChecker decides whether a coordinate reference system is accepted.
type CRSChecker interface {
	IsSupportedCRS(name, urn string) bool
}

// NetworkModel receives reconstructed positions.
type NetworkModel interface {
	AttachPosition(ref domain.ElementRef, coords []domain.Coordinate) error
}

// EventPublisher publishes import events to a message broker.
type EventPublisher interface {
	PublishPositionAttached(ctx context.Context, event *domain.PositionAttachedEvent) error
	PublishImportCompleted(ctx context.Context, event *domain.ImportCompletedEvent) error
	PublishImportRequest(ctx context.Context, req *domain.ImportRequest) error
}

// EventSubscriber subscribes to import requests from a message broker.
type EventSubscriber interface {
	SubscribeImportRequests(ctx context.Context, handler func(ctx context.Context, req *domain.ImportRequest) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
