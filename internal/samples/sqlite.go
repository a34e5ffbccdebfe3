package samples

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteStore keeps samples in the samples table created by the migrations.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context, crop string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT crop, weight, base_price, recorded_at
		FROM samples
		WHERE crop = ?
		ORDER BY id ASC
	`, crop)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	return scanSamples(rows)
}

func (s *SQLiteStore) All(ctx context.Context) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT crop, weight, base_price, recorded_at
		FROM samples
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	return scanSamples(rows)
}

func (s *SQLiteStore) Append(ctx context.Context, sample Sample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO samples (crop, weight, base_price, recorded_at)
		VALUES (?, ?, ?, ?)
	`, sample.Crop, sample.Weight, sample.BasePrice, sample.RecordedAt.Format(TimeLayout))
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

func scanSamples(rows *sql.Rows) ([]Sample, error) {
	defer rows.Close()

	out := make([]Sample, 0)
	for rows.Next() {
		var (
			sample     Sample
			recordedAt string
		)
		if err := rows.Scan(&sample.Crop, &sample.Weight, &sample.BasePrice, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		t, err := parseRecordedAt(recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}
		sample.RecordedAt = t
		out = append(out, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}

	return out, nil
}
