package domain_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

func newTestNetwork(t *testing.T) *domain.Network {
	t.Helper()
	n := domain.NewNetwork("rte-2019")
	if err := n.AddLine(domain.Line{ID: "LINE_AB", Name: "Avelin - Beaulieu"}); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := n.AddDanglingLine(domain.DanglingLine{ID: "DL_XNODE", Name: "Border X"}); err != nil {
		t.Fatalf("add dangling line: %v", err)
	}
	return n
}

func TestNetwork_RejectsDuplicateIDsAcrossNamespaces(t *testing.T) {
	n := newTestNetwork(t)
	if err := n.AddDanglingLine(domain.DanglingLine{ID: "LINE_AB"}); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if err := n.AddLine(domain.Line{ID: "DL_XNODE"}); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if err := n.AddLine(domain.Line{}); err == nil {
		t.Fatal("expected empty id error")
	}
}

func TestNetwork_AttachPosition(t *testing.T) {
	n := newTestNetwork(t)
	coords := []domain.Coordinate{{Lat: 48.1, Lon: 2.1}, {Lat: 48.2, Lon: 2.2}}

	if err := n.AttachPosition(domain.ElementRef{Kind: domain.KindLine, ID: "LINE_AB"}, coords); err != nil {
		t.Fatalf("attach line: %v", err)
	}
	coords[0].Lat = 0 // caller mutations must not leak into the model

	pos := n.Line("LINE_AB").Position
	if pos == nil || len(pos.Coordinates) != 2 {
		t.Fatalf("expected 2 coordinates, got %+v", pos)
	}
	if pos.Coordinates[0].Lat != 48.1 {
		t.Errorf("expected copied coordinates, got %v", pos.Coordinates[0])
	}

	if err := n.AttachPosition(domain.ElementRef{Kind: domain.KindDanglingLine, ID: "DL_XNODE"}, coords[:1]); err != nil {
		t.Fatalf("attach dangling line: %v", err)
	}
	if n.DanglingLine("DL_XNODE").Position == nil {
		t.Error("dangling line position not attached")
	}
}

func TestNetwork_AttachPosition_UnknownElement(t *testing.T) {
	n := newTestNetwork(t)
	err := n.AttachPosition(domain.ElementRef{Kind: domain.KindDanglingLine, ID: "LINE_AB"}, nil)
	if !errors.Is(err, domain.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
	if err := n.AttachPosition(domain.ElementRef{Kind: "busbar", ID: "LINE_AB"}, nil); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestNetwork_SuggestElementID(t *testing.T) {
	n := newTestNetwork(t)

	tests := []struct {
		id   string
		want string
	}{
		{"LINE_AC", "LINE_AB"},
		{"DL_XNOD", "DL_XNODE"},
		{"LINE_AB", ""},
		{"SUBSTATION_42", ""},
	}
	for _, tt := range tests {
		if got := n.SuggestElementID(tt.id); got != tt.want {
			t.Errorf("SuggestElementID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNetwork_ListsSortedByID(t *testing.T) {
	n := domain.NewNetwork("n")
	for _, id := range []string{"L3", "L1", "L2"} {
		if err := n.AddLine(domain.Line{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	lines := n.Lines()
	if lines[0].ID != "L1" || lines[2].ID != "L3" {
		t.Errorf("expected sorted lines, got %s..%s", lines[0].ID, lines[2].ID)
	}
	if len(n.DanglingLines()) != 0 {
		t.Error("expected no dangling lines")
	}
}

func TestErrors_MatchSentinels(t *testing.T) {
	var err error = &domain.UnsupportedCoordinateSystemError{CRSName: "ETRS89", CRSURN: "urn:ogc:def:crs:EPSG::4258"}
	if !errors.Is(err, domain.ErrUnsupportedCoordinateSystem) {
		t.Error("expected ErrUnsupportedCoordinateSystem")
	}
	err = &domain.MalformedRecordError{ElementID: "L1", Field: "seq", Value: "x"}
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Error("expected ErrMalformedRecord")
	}
}
