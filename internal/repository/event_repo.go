package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"nexadomus/internal/models"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const insertCommandEventSQL = `
		INSERT INTO command_events (id, occurred_at, kind, action, path, mode, succeeded, error_kind, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

// Append inserts a new event. If EventID or OccurredAt are empty, they're set.
func (r *EventSQLite) Append(ctx context.Context, e models.CommandEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	var errKind *string
	if e.ErrorKind != "" {
		s := string(e.ErrorKind)
		errKind = &s
	}

	_, err := r.db.ExecContext(ctx, insertCommandEventSQL,
		e.EventID,
		e.OccurredAt.UTC().UnixMilli(),
		strings.ToLower(strings.TrimSpace(string(e.Kind))),
		e.Action,
		string(e.Path),
		string(e.Mode),
		e.Succeeded,
		errKind,
		e.Detail,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive) and/or device kind, ordered ASC.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, kind string) ([]models.CommandEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().UnixMilli())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().UnixMilli())
	}
	if kind = strings.ToLower(strings.TrimSpace(kind)); kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, kind)
	}

	q := `SELECT id, occurred_at, kind, action, path, mode, succeeded, error_kind, detail FROM command_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CommandEvent, 0, 64)
	for rows.Next() {
		var (
			ev               models.CommandEvent
			occurred         int64
			kind, path, mode string
			errKind          sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &occurred, &kind, &ev.Action, &path, &mode, &ev.Succeeded, &errKind, &ev.Detail); err != nil {
			return nil, err
		}
		ev.OccurredAt = time.UnixMilli(occurred).UTC()
		ev.Kind = models.DeviceKind(kind)
		ev.Path = models.Path(path)
		ev.Mode = models.ConnectivityMode(mode)
		if errKind.Valid {
			ev.ErrorKind = models.ErrorKind(errKind.String)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
