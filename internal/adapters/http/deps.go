package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/gridgeo/internal/adapters/postgres"
	"github.com/samirrijal/gridgeo/internal/adapters/valkey"
	"github.com/samirrijal/gridgeo/internal/core/ports"
	"github.com/samirrijal/gridgeo/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Positions *usecases.PositionService
	Imports   *usecases.PositionImportService
	Requests  ports.EventPublisher // queues asynchronous imports; optional
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
	DocsPath  string // OpenAPI document served at /docs/openapi.yaml
}
