package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// RecordSource implements ports.RecordSource over the position_points table. Rows are
// streamed in storage order.
type RecordSource struct {
	db *DB
}

// NewRecordSource creates a new RecordSource.
func NewRecordSource(db *DB) *RecordSource {
	return &RecordSource{db: db}
}

// PositionRecords streams the raw position points of a network.
func (s *RecordSource) PositionRecords(ctx context.Context, networkID string) iter.Seq2[domain.CoordinateRecord, error] {
	return func(yield func(domain.CoordinateRecord, error) bool) {
		rows, err := s.db.Pool.Query(ctx, `
			SELECT power_system_resource, seq, x, y,
			       COALESCE(crs_name, ''), COALESCE(crs_urn, ''), COALESCE(name, '')
			FROM position_points WHERE network_id = $1
		`, networkID)
		if err != nil {
			yield(domain.CoordinateRecord{}, fmt.Errorf("query position points: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				rec  domain.CoordinateRecord
				seq  *int32
				x, y *float64
			)
			if err := rows.Scan(&rec.ElementID, &seq, &x, &y, &rec.CRSName, &rec.CRSURN, &rec.DisplayName); err != nil {
				yield(domain.CoordinateRecord{}, err)
				return
			}
			switch {
			case seq == nil:
				err = &domain.MalformedRecordError{ElementID: rec.ElementID, Field: "seq"}
			case x == nil:
				err = &domain.MalformedRecordError{ElementID: rec.ElementID, Field: "x"}
			case y == nil:
				err = &domain.MalformedRecordError{ElementID: rec.ElementID, Field: "y"}
			default:
				rec.Sequence, rec.Longitude, rec.Latitude = int(*seq), *x, *y
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.CoordinateRecord{}, err)
		}
	}
}

// AppendRecords bulk-loads raw records for a network with COPY. All records are
// checked before the copy starts.
func (s *RecordSource) AppendRecords(ctx context.Context, networkID string, records []domain.CoordinateRecord) (int64, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		row, err := pointRow(networkID, r)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	n, err := s.db.Pool.CopyFrom(ctx,
		pgx.Identifier{"position_points"},
		[]string{"network_id", "power_system_resource", "seq", "x", "y", "crs_name", "crs_urn", "name"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy position points: %w", err)
	}
	return n, nil
}

// pointRow maps a record to a position_points row. seq is an INTEGER column, so
// sequence indices outside the int32 range are rejected rather than truncated.
func pointRow(networkID string, r domain.CoordinateRecord) ([]any, error) {
	if r.Sequence < math.MinInt32 || r.Sequence > math.MaxInt32 {
		return nil, &domain.MalformedRecordError{
			ElementID: r.ElementID,
			Field:     "seq",
			Value:     strconv.Itoa(r.Sequence),
			Err:       errors.New("sequence index out of range"),
		}
	}
	return []any{networkID, r.ElementID, int32(r.Sequence), r.Longitude, r.Latitude, r.CRSName, r.CRSURN, r.DisplayName}, nil
}

// DeleteRecords removes the raw records of a network.
func (s *RecordSource) DeleteRecords(ctx context.Context, networkID string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM position_points WHERE network_id = $1`, networkID)
	return err
}
