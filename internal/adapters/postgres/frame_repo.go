package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// FrameRepo implements ports.FrameRepository with pgx.
// The full frame is kept as jsonb next to the indexed columns.
type FrameRepo struct {
	db *DB
}

// NewFrameRepo creates a new FrameRepo.
func NewFrameRepo(db *DB) *FrameRepo {
	return &FrameRepo{db: db}
}

// Insert appends one frame to track_frames.
func (r *FrameRepo) Insert(ctx context.Context, f *domain.Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO track_frames (id, profile, tick, counter, steps, live, position, heading, distance_miles, zoom, payload, created_at)
		VALUES ($1, $2, $3, $4, $5,
			ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography,
			ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography,
			$10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`, f.ID, f.Profile, f.Tick, f.Counter, f.Steps,
		f.Live.Lng, f.Live.Lat, f.Position.Lng, f.Position.Lat,
		f.Heading, f.Distance, f.Zoom, payload, f.Time)
	return err
}

// InsertBatch appends many frames using pgx.Batch.
func (r *FrameRepo) InsertBatch(ctx context.Context, frames []domain.Frame) error {
	batch := &pgx.Batch{}
	for i := range frames {
		f := &frames[i]
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal frame %s: %w", f.ID, err)
		}
		batch.Queue(`
			INSERT INTO track_frames (id, profile, tick, counter, steps, live, position, heading, distance_miles, zoom, payload, created_at)
			VALUES ($1, $2, $3, $4, $5,
				ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography,
				ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography,
				$10, $11, $12, $13, $14)
			ON CONFLICT (id) DO NOTHING
		`, f.ID, f.Profile, f.Tick, f.Counter, f.Steps,
			f.Live.Lng, f.Live.Lat, f.Position.Lng, f.Position.Lat,
			f.Heading, f.Distance, f.Zoom, payload, f.Time)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range frames {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Latest returns the newest frame of profile, or domain.ErrNoFrame.
func (r *FrameRepo) Latest(ctx context.Context, profile string) (*domain.Frame, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT payload FROM track_frames
		WHERE profile = $1
		ORDER BY created_at DESC, tick DESC
		LIMIT 1
	`, profile).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoFrame
	}
	if err != nil {
		return nil, err
	}

	var f domain.Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &f, nil
}

// ListByProfile returns frames of profile newest first.
func (r *FrameRepo) ListByProfile(ctx context.Context, profile string, offset, limit int) ([]domain.Frame, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT payload FROM track_frames
		WHERE profile = $1
		ORDER BY created_at DESC, tick DESC
		OFFSET $2 LIMIT $3
	`, profile, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frames := make([]domain.Frame, 0, limit)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var f domain.Frame
		if err := json.Unmarshal(payload, &f); err != nil {
			return nil, fmt.Errorf("decode frame: %w", err)
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// CountByProfile returns how many frames profile has recorded.
func (r *FrameRepo) CountByProfile(ctx context.Context, profile string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM track_frames WHERE profile = $1`, profile).Scan(&n)
	return n, err
}
