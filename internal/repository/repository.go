package repository

import (
	"context"
	"database/sql"
	"time"

	"nexadomus/internal/models"
)

// StateCache keeps the last-known state per device kind.
type StateCache interface {
	Save(ctx context.Context, s models.DeviceState) error
	Load(ctx context.Context, kind models.DeviceKind) (models.DeviceState, bool, error)
	LoadAll(ctx context.Context) ([]models.DeviceState, error)
}

// ScheduleStore persists the weekly schedule and the manual run length.
type ScheduleStore interface {
	SaveSchedule(ctx context.Context, e models.ScheduleEntry) error
	LoadSchedule(ctx context.Context) (models.ScheduleEntry, error)
	SaveManual(ctx context.Context, d models.ManualDuration) error
	LoadManual(ctx context.Context) (models.ManualDuration, error)
}

// TimerStore persists the active sprinkler countdown.
type TimerStore interface {
	SaveTimer(ctx context.Context, t models.TimerState) error
	LoadTimer(ctx context.Context) (models.TimerState, error)
	ClearTimer(ctx context.Context) error
}

// ModeStore persists the last observed connectivity mode.
type ModeStore interface {
	SaveMode(ctx context.Context, m models.ConnectivityMode) error
	LoadMode(ctx context.Context) (models.ConnectivityMode, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.CommandEvent) error
	List(ctx context.Context, from, to time.Time, kind string) ([]models.CommandEvent, error)
}

type Repository struct {
	StateCache StateCache
	Schedule   ScheduleStore
	Timer      TimerStore
	Mode       ModeStore
	EventRepo  EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	settings := NewSettingsSQLite(db)
	return &Repository{
		StateCache: NewStateSQLite(db),
		Schedule:   settings,
		Timer:      settings,
		Mode:       settings,
		EventRepo:  NewEventSQLite(db),
	}
}
