package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// NetworkRepo implements ports.NetworkRepository with pgx.
type NetworkRepo struct {
	db *DB
}

// NewNetworkRepo creates a new NetworkRepo.
func NewNetworkRepo(db *DB) *NetworkRepo {
	return &NetworkRepo{db: db}
}

// LoadNetwork reads the lines and dangling lines of a network into a fresh snapshot.
func (r *NetworkRepo) LoadNetwork(ctx context.Context, networkID string) (*domain.Network, error) {
	var id string
	err := r.db.Pool.QueryRow(ctx, `SELECT id FROM networks WHERE id = $1`, networkID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("network %s: %w", networkID, domain.ErrNetworkNotFound)
	}
	if err != nil {
		return nil, err
	}

	n := domain.NewNetwork(id)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT line_id, COALESCE(name, '') FROM lines WHERE network_id = $1
	`, networkID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			rows.Close()
			return nil, err
		}
		if err := n.AddLine(l); err != nil {
			rows.Close()
			return nil, err
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Pool.Query(ctx, `
		SELECT dangling_line_id, COALESCE(name, '') FROM dangling_lines WHERE network_id = $1
	`, networkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dl domain.DanglingLine
		if err := rows.Scan(&dl.ID, &dl.Name); err != nil {
			return nil, err
		}
		if err := n.AddDanglingLine(dl); err != nil {
			return nil, err
		}
	}
	return n, rows.Err()
}

// SaveNetwork upserts a network and its elements in one transaction.
func (r *NetworkRepo) SaveNetwork(ctx context.Context, n *domain.Network) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO networks (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, n.ID)
	for _, l := range n.Lines() {
		batch.Queue(`
			INSERT INTO lines (network_id, line_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (network_id, line_id) DO UPDATE SET name = EXCLUDED.name
		`, n.ID, l.ID, l.Name)
	}
	for _, dl := range n.DanglingLines() {
		batch.Queue(`
			INSERT INTO dangling_lines (network_id, dangling_line_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (network_id, dangling_line_id) DO UPDATE SET name = EXCLUDED.name
		`, n.ID, dl.ID, dl.Name)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save network %s: %w", n.ID, err)
	}
	return tx.Commit(ctx)
}
