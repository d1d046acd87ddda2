package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/core/ports"
	"github.com/samirrijal/gridgeo/internal/core/usecases"
	"github.com/samirrijal/gridgeo/internal/pkg/geospatial"
)

func testNetwork(t *testing.T) *domain.Network {
	t.Helper()
	n := domain.NewNetwork("net1")
	if err := n.AddLine(domain.Line{ID: "L1", Name: "Line 1"}); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := n.AddLine(domain.Line{ID: "L2"}); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := n.AddDanglingLine(domain.DanglingLine{ID: "DL1"}); err != nil {
		t.Fatalf("add dangling line: %v", err)
	}
	return n
}

func wgs(id string, seq int, lat, lon float64) domain.CoordinateRecord {
	return domain.CoordinateRecord{
		ElementID: id, Sequence: seq, Latitude: lat, Longitude: lon,
		CRSName: geospatial.WGS84Name, CRSURN: geospatial.WGS84URN,
	}
}

func newImportService(network *domain.Network, src *sliceSource, positions *mockPositionRepo, pub *mockPublisher, cache *mockCache) *usecases.PositionImportService {
	networks := &mockNetworkRepo{
		loadFn: func(ctx context.Context, networkID string) (*domain.Network, error) {
			if networkID != network.ID {
				return nil, domain.ErrNetworkNotFound
			}
			return network, nil
		},
	}
	var (
		repo  ports.PositionRepository
		pubr  ports.EventPublisher
		cachr ports.CacheService
	)
	if positions != nil {
		repo = positions
	}
	if pub != nil {
		pubr = pub
	}
	if cache != nil {
		cachr = cache
	}
	svc := usecases.NewPositionImportService(networks, src, geospatial.NewCatalog(), repo, pubr, cachr)
	return svc
}

func TestPositionImportService_Import(t *testing.T) {
	network := testNetwork(t)
	src := &sliceSource{records: []domain.CoordinateRecord{
		wgs("L1", 2, 10, 20),
		wgs("DL1", 1, 5, 6),
		wgs("L1", 1, 9, 19),
		wgs("L1X", 1, 0, 0),
	}}

	var savedImportID string
	var saved []domain.ElementPosition
	positions := &mockPositionRepo{
		saveFn: func(ctx context.Context, networkID, importID string, ps []domain.ElementPosition) error {
			if networkID != "net1" {
				t.Errorf("expected network net1, got %s", networkID)
			}
			savedImportID = importID
			saved = ps
			return nil
		},
	}
	pub := &mockPublisher{}
	cache := newMockCache()

	svc := newImportService(network, src, positions, pub, cache)
	res, err := svc.Import(context.Background(), "net1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := res.Report
	if report.ImportID == "" || report.ImportID != savedImportID {
		t.Errorf("import id %q does not match saved id %q", report.ImportID, savedImportID)
	}
	if report.RecordsRead != 4 {
		t.Errorf("expected 4 records read, got %d", report.RecordsRead)
	}
	if report.LinesAttached != 1 || report.DanglingLinesAttached != 1 {
		t.Errorf("expected 1 line and 1 dangling line, got %d and %d", report.LinesAttached, report.DanglingLinesAttached)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("expected 1 skip, got %d", len(report.Skipped))
	}
	if report.Skipped[0].ElementID != "L1X" || report.Skipped[0].Suggestion != "L1" {
		t.Errorf("unexpected skip: %+v", report.Skipped[0])
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("finished before started")
	}

	if len(saved) != 2 {
		t.Fatalf("expected 2 saved positions, got %d", len(saved))
	}

	l1 := network.Line("L1")
	if l1.Position == nil {
		t.Fatal("L1 position not attached")
	}
	want := []domain.Coordinate{{Lat: 9, Lon: 19}, {Lat: 10, Lon: 20}}
	if len(l1.Position.Coordinates) != 2 || l1.Position.Coordinates[0] != want[0] || l1.Position.Coordinates[1] != want[1] {
		t.Errorf("unexpected L1 coordinates: %+v", l1.Position.Coordinates)
	}
	if network.DanglingLine("DL1").Position == nil {
		t.Error("DL1 position not attached")
	}
	if network.Line("L2").Position != nil {
		t.Error("L2 has no records and must stay unpositioned")
	}

	if len(pub.attached) != 2 {
		t.Errorf("expected 2 attached events, got %d", len(pub.attached))
	}
	if len(pub.completed) != 1 || pub.completed[0].Report.ImportID != report.ImportID {
		t.Errorf("expected one completed event for the import, got %+v", pub.completed)
	}

	if !cache.wasDeleted("positions:net1:line:L1") || !cache.wasDeleted("positions:net1:dangling_line:DL1") {
		t.Errorf("expected element cache entries to be invalidated, deleted %v", cache.deleted)
	}
	if !cache.wasDeleted("positions:net1:all") {
		t.Error("expected list cache entry to be invalidated")
	}
}

func TestPositionImportService_Import_UnsupportedCRS(t *testing.T) {
	network := testNetwork(t)
	bad := wgs("L2", 1, 1, 1)
	bad.CRSName, bad.CRSURN = "ETRS89", "urn:ogc:def:crs:EPSG::4258"
	src := &sliceSource{records: []domain.CoordinateRecord{wgs("L1", 1, 9, 19), bad}}

	saveCalled := false
	positions := &mockPositionRepo{
		saveFn: func(ctx context.Context, networkID, importID string, ps []domain.ElementPosition) error {
			saveCalled = true
			return nil
		},
	}
	pub := &mockPublisher{}

	svc := newImportService(network, src, positions, pub, newMockCache())
	_, err := svc.Import(context.Background(), "net1")
	if !errors.Is(err, domain.ErrUnsupportedCoordinateSystem) {
		t.Fatalf("expected unsupported CRS error, got %v", err)
	}
	var crsErr *domain.UnsupportedCoordinateSystemError
	if !errors.As(err, &crsErr) || crsErr.CRSName != "ETRS89" {
		t.Errorf("expected error carrying ETRS89, got %v", err)
	}
	if network.Line("L1").Position != nil {
		t.Error("failed run must not attach positions")
	}
	if saveCalled {
		t.Error("failed run must not save positions")
	}
	if len(pub.attached) != 0 || len(pub.completed) != 0 {
		t.Error("failed run must not publish events")
	}
}

func TestPositionImportService_Import_NetworkNotFound(t *testing.T) {
	svc := newImportService(testNetwork(t), &sliceSource{}, nil, nil, nil)
	_, err := svc.Import(context.Background(), "other")
	if !errors.Is(err, domain.ErrNetworkNotFound) {
		t.Errorf("expected ErrNetworkNotFound, got %v", err)
	}
}

func TestPositionImportService_Import_SourceError(t *testing.T) {
	ioErr := errors.New("connection reset")
	src := &sliceSource{records: []domain.CoordinateRecord{wgs("L1", 1, 0, 0)}, err: ioErr}
	svc := newImportService(testNetwork(t), src, nil, nil, nil)
	_, err := svc.Import(context.Background(), "net1")
	if !errors.Is(err, ioErr) {
		t.Errorf("expected wrapped source error, got %v", err)
	}
}

func TestPositionImportService_Import_SaveError(t *testing.T) {
	positions := &mockPositionRepo{
		saveFn: func(ctx context.Context, networkID, importID string, ps []domain.ElementPosition) error {
			return errors.New("db down")
		},
	}
	pub := &mockPublisher{}
	src := &sliceSource{records: []domain.CoordinateRecord{wgs("L1", 1, 0, 0)}}
	svc := newImportService(testNetwork(t), src, positions, pub, nil)
	if _, err := svc.Import(context.Background(), "net1"); err == nil {
		t.Fatal("expected error")
	}
	if len(pub.completed) != 0 {
		t.Error("no completed event expected after a save failure")
	}
}

func TestPositionImportService_Import_PublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{failWith: errors.New("nats unavailable")}
	src := &sliceSource{records: []domain.CoordinateRecord{wgs("L1", 1, 0, 0)}}
	svc := newImportService(testNetwork(t), src, &mockPositionRepo{}, pub, nil)
	res, err := svc.Import(context.Background(), "net1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Report.LinesAttached != 1 {
		t.Errorf("expected 1 line attached, got %d", res.Report.LinesAttached)
	}
}

func TestPositionImportService_Import_NoOptionalCollaborators(t *testing.T) {
	src := &sliceSource{records: []domain.CoordinateRecord{wgs("DL1", 3, 1, 2), wgs("DL1", 3, 3, 4)}}
	svc := newImportService(testNetwork(t), src, nil, nil, nil)
	res, err := svc.Import(context.Background(), "net1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(res.Positions))
	}
	got := res.Positions[0].Coordinates
	if len(got) != 1 || got[0] != (domain.Coordinate{Lat: 3, Lon: 4}) {
		t.Errorf("expected last write to win, got %+v", got)
	}
}
