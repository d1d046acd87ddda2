package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/core/ports"
	"github.com/samirrijal/gridgeo/internal/pkg/metrics"
	"github.com/samirrijal/gridgeo/internal/pkg/telemetry"
)

// PositionImportService reconstructs element positions from a record source and
// attaches them to a network snapshot.
type PositionImportService struct {
	networks  ports.NetworkRepository
	records   ports.RecordSource
	crs       ports.CRSChecker
	positions ports.PositionRepository // optional
	publisher ports.EventPublisher     // optional
	cache     ports.CacheService       // optional
	now       func() time.Time
}

// NewPositionImportService creates a new PositionImportService. positions, publisher
// and cache may be nil.
func NewPositionImportService(
	networks ports.NetworkRepository,
	records ports.RecordSource,
	crs ports.CRSChecker,
	positions ports.PositionRepository,
	publisher ports.EventPublisher,
	cache ports.CacheService,
) *PositionImportService {
	return &PositionImportService{
		networks:  networks,
		records:   records,
		crs:       crs,
		positions: positions,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
	}
}

// ImportResult is the outcome of a successful import.
type ImportResult struct {
	Report    domain.ImportReport
	Network   *domain.Network
	Positions []domain.ElementPosition
}

// Import runs one import for networkID. On a validation error nothing is attached,
// stored, or published.
func (s *PositionImportService) Import(ctx context.Context, networkID string) (*ImportResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "PositionImportService.Import")
	defer span.End()
	span.SetAttributes(attribute.String("network.id", networkID))

	start := s.now()
	res, err := s.run(ctx, networkID, start)
	metrics.ImportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ImportRuns.WithLabelValues(resultLabel(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "position import failed", "network", networkID, "error", err)
		return nil, err
	}
	metrics.ImportRuns.WithLabelValues("ok").Inc()
	span.SetAttributes(
		attribute.String("import.id", res.Report.ImportID),
		attribute.Int("import.records", res.Report.RecordsRead),
		attribute.Int("import.skipped", len(res.Report.Skipped)),
	)
	return res, nil
}

func (s *PositionImportService) run(ctx context.Context, networkID string, start time.Time) (*ImportResult, error) {
	network, err := s.networks.LoadNetwork(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("load network %s: %w", networkID, err)
	}

	agg, err := Aggregate(s.records.PositionRecords(ctx, networkID), NewNetworkResolver(s.crs, network))
	if err != nil {
		return nil, err
	}

	importID := uuid.Must(uuid.NewV7()).String()
	positions := agg.Positions()
	report := domain.ImportReport{
		ImportID:    importID,
		NetworkID:   network.ID,
		StartedAt:   start,
		RecordsRead: agg.RecordsRead,
		Skipped:     make([]domain.SkipNotice, 0, len(agg.Skipped)),
	}

	for _, skip := range agg.Skipped {
		skip.Suggestion = network.SuggestElementID(skip.ElementID)
		slog.WarnContext(ctx, "cannot find line or dangling line, skipping line position",
			"element_id", skip.ElementID,
			"name", skip.DisplayName,
			"network", network.ID,
			"suggestion", skip.Suggestion,
		)
		report.Skipped = append(report.Skipped, skip)
	}

	for _, p := range positions {
		if err := network.AttachPosition(p.Element, p.Coordinates); err != nil {
			return nil, fmt.Errorf("attach position: %w", err)
		}
		switch p.Element.Kind {
		case domain.KindLine:
			report.LinesAttached++
		case domain.KindDanglingLine:
			report.DanglingLinesAttached++
		}
	}

	if s.positions != nil && len(positions) > 0 {
		if err := s.positions.SavePositions(ctx, network.ID, importID, positions); err != nil {
			return nil, fmt.Errorf("save positions: %w", err)
		}
	}
	report.FinishedAt = s.now()

	s.invalidate(ctx, network.ID, positions)
	s.publish(ctx, report, positions)

	metrics.ImportRecords.Add(float64(report.RecordsRead))
	metrics.ImportSkipped.Add(float64(len(report.Skipped)))
	metrics.PositionsAttached.WithLabelValues(string(domain.KindLine)).Add(float64(report.LinesAttached))
	metrics.PositionsAttached.WithLabelValues(string(domain.KindDanglingLine)).Add(float64(report.DanglingLinesAttached))

	slog.InfoContext(ctx, "position import complete",
		"import_id", importID,
		"network", network.ID,
		"records", report.RecordsRead,
		"lines", report.LinesAttached,
		"dangling_lines", report.DanglingLinesAttached,
		"skipped", len(report.Skipped),
	)

	return &ImportResult{Report: report, Network: network, Positions: positions}, nil
}

func (s *PositionImportService) invalidate(ctx context.Context, networkID string, positions []domain.ElementPosition) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, positionListCacheKey(networkID))
	for _, p := range positions {
		_ = s.cache.Delete(ctx, positionCacheKey(networkID, p.Element))
	}
}

// publish is best effort: the import already succeeded when events go out.
func (s *PositionImportService) publish(ctx context.Context, report domain.ImportReport, positions []domain.ElementPosition) {
	if s.publisher == nil {
		return
	}
	for _, p := range positions {
		ev := &domain.PositionAttachedEvent{
			ImportID:    report.ImportID,
			NetworkID:   report.NetworkID,
			Element:     p.Element,
			Coordinates: p.Coordinates,
		}
		if err := s.publisher.PublishPositionAttached(ctx, ev); err != nil {
			slog.WarnContext(ctx, "publish position event failed", "element_id", p.Element.ID, "error", err)
		}
	}
	if err := s.publisher.PublishImportCompleted(ctx, &domain.ImportCompletedEvent{Report: report}); err != nil {
		slog.WarnContext(ctx, "publish import completed failed", "import_id", report.ImportID, "error", err)
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnsupportedCoordinateSystem):
		return "unsupported_crs"
	case errors.Is(err, domain.ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, domain.ErrNetworkNotFound):
		return "network_not_found"
	default:
		return "error"
	}
}
