package usecases

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/core/ports"
)

// ErrAggregatorFinalized is returned when records are added after Finalize.
var ErrAggregatorFinalized = errors.New("position aggregator already finalized")

// AggregationResult holds the ordered positions of one aggregation run.
// Lines and DanglingLines never share an element.
type AggregationResult struct {
	Lines         map[domain.ElementRef]domain.ElementPosition
	DanglingLines map[domain.ElementRef]domain.ElementPosition
	Skipped       []domain.SkipNotice
	RecordsRead   int
}

// Positions returns all positions, lines first, each group sorted by element id.
func (r *AggregationResult) Positions() []domain.ElementPosition {
	out := make([]domain.ElementPosition, 0, len(r.Lines)+len(r.DanglingLines))
	out = appendSorted(out, r.Lines)
	out = appendSorted(out, r.DanglingLines)
	return out
}

func appendSorted(out []domain.ElementPosition, group map[domain.ElementRef]domain.ElementPosition) []domain.ElementPosition {
	start := len(out)
	for _, p := range group {
		out = append(out, p)
	}
	part := out[start:]
	sort.Slice(part, func(i, j int) bool { return part[i].Element.ID < part[j].Element.ID })
	return out
}

// positionBuffer maps sequence index to coordinate for one element.
type positionBuffer map[int]domain.Coordinate

// PositionAggregator groups coordinate records per resolved element and orders them
// by sequence index. Records are fed with Add; Finalize ends the run. The first
// unsupported CRS or malformed record fails the whole run.
type PositionAggregator struct {
	resolver      ports.ElementResolver
	lines         map[domain.ElementRef]positionBuffer
	danglingLines map[domain.ElementRef]positionBuffer
	skipped       []domain.SkipNotice
	skippedIDs    mapset.Set[string]
	records       int

	err    error
	result *AggregationResult
}

// NewPositionAggregator creates an aggregator in the accumulating phase.
func NewPositionAggregator(resolver ports.ElementResolver) *PositionAggregator {
	return &PositionAggregator{
		resolver:      resolver,
		lines:         make(map[domain.ElementRef]positionBuffer),
		danglingLines: make(map[domain.ElementRef]positionBuffer),
		skippedIDs:    mapset.NewThreadUnsafeSet[string](),
	}
}

// Add consumes one record. Unresolved elements are recorded as skips and do not
// return an error.
func (a *PositionAggregator) Add(rec domain.CoordinateRecord) error {
	if a.err != nil {
		return a.err
	}
	if a.result != nil {
		return ErrAggregatorFinalized
	}
	if err := validateRecord(rec); err != nil {
		a.err = err
		return err
	}
	if !a.resolver.IsSupportedCRS(rec.CRSName, rec.CRSURN) {
		a.err = &domain.UnsupportedCoordinateSystemError{CRSName: rec.CRSName, CRSURN: rec.CRSURN}
		return a.err
	}
	a.records++

	if ref, ok := a.resolver.ResolveLine(rec.ElementID); ok {
		accumulate(a.lines, ref, rec)
		return nil
	}
	if ref, ok := a.resolver.ResolveDanglingLine(rec.ElementID); ok {
		accumulate(a.danglingLines, ref, rec)
		return nil
	}
	if a.skippedIDs.Add(rec.ElementID) {
		a.skipped = append(a.skipped, domain.SkipNotice{
			ElementID:   rec.ElementID,
			DisplayName: rec.DisplayName,
			Reason:      domain.SkipReasonUnresolved,
		})
	}
	return nil
}

// accumulate stores the record's coordinate; a repeated sequence index overwrites.
func accumulate(group map[domain.ElementRef]positionBuffer, ref domain.ElementRef, rec domain.CoordinateRecord) {
	buf, ok := group[ref]
	if !ok {
		buf = make(positionBuffer)
		group[ref] = buf
	}
	buf[rec.Sequence] = rec.Coordinate()
}

// Finalize orders every buffer and returns the result. Calling it again returns the
// same result. If a record failed the run, that error is returned instead.
func (a *PositionAggregator) Finalize() (*AggregationResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	if a.result != nil {
		return a.result, nil
	}
	a.result = &AggregationResult{
		Lines:         finalizeGroup(a.lines),
		DanglingLines: finalizeGroup(a.danglingLines),
		Skipped:       a.skipped,
		RecordsRead:   a.records,
	}
	a.lines, a.danglingLines = nil, nil
	return a.result, nil
}

func finalizeGroup(group map[domain.ElementRef]positionBuffer) map[domain.ElementRef]domain.ElementPosition {
	out := make(map[domain.ElementRef]domain.ElementPosition, len(group))
	for ref, buf := range group {
		seqs := slices.Sorted(maps.Keys(buf))
		coords := make([]domain.Coordinate, 0, len(seqs))
		for _, seq := range seqs {
			coords = append(coords, buf[seq])
		}
		out[ref] = domain.ElementPosition{Element: ref, Coordinates: coords}
	}
	return out
}

func validateRecord(rec domain.CoordinateRecord) error {
	if rec.ElementID == "" {
		return &domain.MalformedRecordError{Field: "element_id"}
	}
	if math.IsNaN(rec.Latitude) || math.IsInf(rec.Latitude, 0) {
		return &domain.MalformedRecordError{ElementID: rec.ElementID, Field: "latitude", Value: fmt.Sprint(rec.Latitude)}
	}
	if math.IsNaN(rec.Longitude) || math.IsInf(rec.Longitude, 0) {
		return &domain.MalformedRecordError{ElementID: rec.ElementID, Field: "longitude", Value: fmt.Sprint(rec.Longitude)}
	}
	return nil
}

// Aggregate runs a full aggregation over records. Iteration stops at the first error,
// whether it comes from the source or from validation.
func Aggregate(records iter.Seq2[domain.CoordinateRecord, error], resolver ports.ElementResolver) (*AggregationResult, error) {
	agg := NewPositionAggregator(resolver)
	for rec, err := range records {
		if err != nil {
			return nil, fmt.Errorf("read position records: %w", err)
		}
		if err := agg.Add(rec); err != nil {
			return nil, err
		}
	}
	return agg.Finalize()
}
