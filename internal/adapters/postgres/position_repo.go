package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// PositionRepo implements ports.PositionRepository with pgx.
type PositionRepo struct {
	db *DB
}

// NewPositionRepo creates a new PositionRepo.
func NewPositionRepo(db *DB) *PositionRepo {
	return &PositionRepo{db: db}
}

// SavePositions upserts positions using pgx.Batch. Paths with at least two points are
// also stored as a PostGIS LINESTRING.
func (r *PositionRepo) SavePositions(ctx context.Context, networkID, importID string, positions []domain.ElementPosition) error {
	batch := &pgx.Batch{}
	for _, p := range positions {
		coords, err := json.Marshal(p.Coordinates)
		if err != nil {
			return fmt.Errorf("encode coordinates of %s: %w", p.Element.ID, err)
		}
		batch.Queue(`
			INSERT INTO element_positions (network_id, element_kind, element_id, import_id, coordinates, path, updated_at)
			VALUES ($1, $2, $3, $4, $5, CASE WHEN $6::text = '' THEN NULL ELSE ST_GeogFromText($6::text) END, NOW())
			ON CONFLICT (network_id, element_kind, element_id) DO UPDATE
			SET import_id = EXCLUDED.import_id, coordinates = EXCLUDED.coordinates,
			    path = EXCLUDED.path, updated_at = NOW()
		`, networkID, string(p.Element.Kind), p.Element.ID, importID, coords, lineStringWKT(p.Coordinates))
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range positions {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetPosition returns the stored position of one element.
func (r *PositionRepo) GetPosition(ctx context.Context, networkID string, ref domain.ElementRef) (*domain.ElementPosition, error) {
	var raw []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT coordinates FROM element_positions
		WHERE network_id = $1 AND element_kind = $2 AND element_id = $3
	`, networkID, string(ref.Kind), ref.ID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %s in network %s: %w", ref.Kind, ref.ID, networkID, domain.ErrPositionNotFound)
	}
	if err != nil {
		return nil, err
	}

	pos := &domain.ElementPosition{Element: ref}
	if err := json.Unmarshal(raw, &pos.Coordinates); err != nil {
		return nil, fmt.Errorf("decode coordinates of %s: %w", ref.ID, err)
	}
	return pos, nil
}

// ListByNetwork returns every position of a network, lines first, ordered by id.
func (r *PositionRepo) ListByNetwork(ctx context.Context, networkID string) ([]domain.ElementPosition, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT element_kind, element_id, coordinates FROM element_positions
		WHERE network_id = $1
		ORDER BY element_kind DESC, element_id
	`, networkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ElementPosition
	for rows.Next() {
		var (
			kind string
			p    domain.ElementPosition
			raw  []byte
		)
		if err := rows.Scan(&kind, &p.Element.ID, &raw); err != nil {
			return nil, err
		}
		p.Element.Kind = domain.ElementKind(kind)
		if err := json.Unmarshal(raw, &p.Coordinates); err != nil {
			return nil, fmt.Errorf("decode coordinates of %s: %w", p.Element.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// lineStringWKT builds an EWKT LINESTRING, or "" when there are fewer than two points.
func lineStringWKT(coords []domain.Coordinate) string {
	if len(coords) < 2 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("SRID=4326;LINESTRING(")
	for i, c := range coords {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.FormatFloat(c.Lon, 'f', -1, 64))
		sb.WriteString(" ")
		sb.WriteString(strconv.FormatFloat(c.Lat, 'f', -1, 64))
	}
	sb.WriteString(")")
	return sb.String()
}
