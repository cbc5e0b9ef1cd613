package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"nexadomus/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	upsertDeviceStateSQL = `
		INSERT INTO device_state (kind, state, level, confirmed, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			state=excluded.state,
			level=excluded.level,
			confirmed=excluded.confirmed,
			source=excluded.source,
			updated_at=excluded.updated_at
	`

	selectDeviceStateSQL = `
		SELECT kind, state, level, confirmed, source, updated_at
		FROM device_state WHERE kind=?
	`

	selectAllDeviceStateSQL = `
		SELECT kind, state, level, confirmed, source, updated_at
		FROM device_state ORDER BY kind ASC
	`
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Save upserts the row for s.Kind. A zero UpdatedAt is stamped with now.
func (r *StateSQLite) Save(ctx context.Context, s models.DeviceState) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx, upsertDeviceStateSQL,
		string(s.Kind),
		s.State,
		s.Level,
		s.Confirmed,
		s.Source,
		ts.UTC().UnixMilli(),
	)
	return err
}

// Load fetches the state for kind. ok is false when nothing was cached yet.
func (r *StateSQLite) Load(ctx context.Context, kind models.DeviceKind) (models.DeviceState, bool, error) {
	s, err := scanDeviceState(r.db.QueryRowContext(ctx, selectDeviceStateSQL, string(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceState{}, false, nil
		}
		return models.DeviceState{}, false, err
	}
	return s, true, nil
}

// LoadAll returns every cached device state ordered by kind.
func (r *StateSQLite) LoadAll(ctx context.Context) ([]models.DeviceState, error) {
	rows, err := r.db.QueryContext(ctx, selectAllDeviceStateSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DeviceState, 0, len(models.DeviceKinds))
	for rows.Next() {
		s, err := scanDeviceState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanDeviceState(row rowScanner) (models.DeviceState, error) {
	var (
		s       models.DeviceState
		kind    string
		updated int64
	)
	if err := row.Scan(&kind, &s.State, &s.Level, &s.Confirmed, &s.Source, &updated); err != nil {
		return models.DeviceState{}, err
	}
	s.Kind = models.DeviceKind(kind)
	s.UpdatedAt = time.UnixMilli(updated).UTC()
	return s, nil
}
