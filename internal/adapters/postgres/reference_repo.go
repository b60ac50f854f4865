package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
)

// ReferenceRepo implements ports.ReferencePointRepository with pgx.
// Rows land in this table through cmd/refload.
type ReferenceRepo struct {
	db *DB
}

// NewReferenceRepo creates a new ReferenceRepo.
func NewReferenceRepo(db *DB) *ReferenceRepo {
	return &ReferenceRepo{db: db}
}

// List returns all reference points ordered by display name.
func (r *ReferenceRepo) List(ctx context.Context) ([]domain.ReferencePoint, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT display_name, easting, northing
		FROM reference_points
		ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query reference points: %w", err)
	}
	defer rows.Close()

	var pts []domain.ReferencePoint
	for rows.Next() {
		var p domain.ReferencePoint
		if err := rows.Scan(&p.DisplayName, &p.Easting, &p.Northing); err != nil {
			return nil, fmt.Errorf("scan reference point: %w", err)
		}
		pts = append(pts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reference points: %w", err)
	}

	return pts, nil
}

// UpsertBatch inserts or updates many reference points using pgx.Batch.
func (r *ReferenceRepo) UpsertBatch(ctx context.Context, pts []domain.ReferencePoint) error {
	batch := &pgx.Batch{}
	for _, p := range pts {
		batch.Queue(`
			INSERT INTO reference_points (display_name, easting, northing)
			VALUES ($1, $2, $3)
			ON CONFLICT (display_name) DO UPDATE
			SET easting = EXCLUDED.easting, northing = EXCLUDED.northing
		`, p.DisplayName, p.Easting, p.Northing)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range pts {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}
