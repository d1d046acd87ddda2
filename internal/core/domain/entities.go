package domain

import (
	"time"
)

// ElementKind names the network namespace an element was resolved in.
type ElementKind string

const (
	KindLine         ElementKind = "line"
	KindDanglingLine ElementKind = "dangling_line"
)

// Valid reports whether k is one of the known element kinds.
func (k ElementKind) Valid() bool {
	return k == KindLine || k == KindDanglingLine
}

// ElementRef identifies a resolved network element.
type ElementRef struct {
	Kind ElementKind `json:"kind"`
	ID   string      `json:"id"`
}

// CoordinateRecord is one vertex of one element's path, as produced by a record source.
type CoordinateRecord struct {
	ElementID   string
	Sequence    int
	Latitude    float64
	Longitude   float64
	CRSName     string
	CRSURN      string
	DisplayName string
}

// Coordinate returns the record's coordinate value.
func (r CoordinateRecord) Coordinate() Coordinate {
	return Coordinate{Lat: r.Latitude, Lon: r.Longitude}
}

// ElementPosition is the ordered polyline reconstructed for one element.
type ElementPosition struct {
	Element     ElementRef   `json:"element"`
	Coordinates []Coordinate `json:"coordinates"`
}

// SkipReasonUnresolved is reported for element ids found in neither namespace.
const SkipReasonUnresolved = "unresolved"

// SkipNotice reports an element id whose records were not attached.
type SkipNotice struct {
	ElementID   string `json:"element_id"`
	DisplayName string `json:"display_name,omitempty"`
	Reason      string `json:"reason"`
	Suggestion  string `json:"suggestion,omitempty"` // closest known element id, if any
}

// Line is a transmission line of the network model.
type Line struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name,omitempty" yaml:"name"`
	Position *GeoLineString `json:"position,omitempty" yaml:"-"`
}

// DanglingLine is a line segment with one end outside the modeled network.
type DanglingLine struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name,omitempty" yaml:"name"`
	Position *GeoLineString `json:"position,omitempty" yaml:"-"`
}

// ImportReport summarises one position import run.
type ImportReport struct {
	ImportID              string       `json:"import_id"`
	NetworkID             string       `json:"network_id"`
	StartedAt             time.Time    `json:"started_at"`
	FinishedAt            time.Time    `json:"finished_at"`
	RecordsRead           int          `json:"records_read"`
	LinesAttached         int          `json:"lines_attached"`
	DanglingLinesAttached int          `json:"dangling_lines_attached"`
	Skipped               []SkipNotice `json:"skipped"`
}

// PositionAttachedEvent is published once per element after a successful import.
type PositionAttachedEvent struct {
	ImportID    string       `json:"import_id"`
	NetworkID   string       `json:"network_id"`
	Element     ElementRef   `json:"element"`
	Coordinates []Coordinate `json:"coordinates"`
}

// ImportCompletedEvent is published at the end of a successful import.
type ImportCompletedEvent struct {
	Report ImportReport `json:"report"`
}

// ImportRequest asks a worker to run an import for a network.
type ImportRequest struct {
	NetworkID   string `json:"network_id"`
	RequestedBy string `json:"requested_by,omitempty"`
}
