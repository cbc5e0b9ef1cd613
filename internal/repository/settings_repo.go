package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nexadomus/internal/models"
	"nexadomus/internal/schedule"
)

// Preference keys.
const (
	KeyScheduleDays            = "scheduleDays"
	KeyStartHour               = "startTimeHour"
	KeyStartMinute             = "startTimeMinute"
	KeyStartSecond             = "startTimeSecond"
	KeyScheduleDuration        = "scheduleDuration"
	KeyScheduleDurationSeconds = "scheduleDurationSeconds"
	KeyManualMinutes           = "manualDurationMinutes"
	KeyManualSeconds           = "manualDurationSeconds"
	KeyTimerActive             = "timerActive"
	KeyTimerEndTime            = "timerEndTime"
	KeyConnectivityMode        = "connectivityMode"
)

var (
	scheduleKeys = []string{KeyScheduleDays, KeyStartHour, KeyStartMinute, KeyStartSecond, KeyScheduleDuration, KeyScheduleDurationSeconds}
	manualKeys   = []string{KeyManualMinutes, KeyManualSeconds}
	timerKeys    = []string{KeyTimerActive, KeyTimerEndTime}
)

// SettingsSQLite is a key/value preference store. Writes are last-writer-wins per key.
type SettingsSQLite struct {
	db *sql.DB
}

func NewSettingsSQLite(db *sql.DB) *SettingsSQLite {
	return &SettingsSQLite{db: db}
}

type pref struct {
	key, value string
}

func (r *SettingsSQLite) put(ctx context.Context, prefs ...pref) error {
	if len(prefs) == 0 {
		return nil
	}
	now := time.Now().UTC().UnixMilli()
	placeholders := make([]string, 0, len(prefs))
	args := make([]any, 0, len(prefs)*3)
	for _, p := range prefs {
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, p.key, p.value, now)
	}
	q := "INSERT INTO preferences (key, value, updated_at) VALUES " + strings.Join(placeholders, ", ") +
		" ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at"
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *SettingsSQLite) get(ctx context.Context, keys ...string) (map[string]string, error) {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := "SELECT key, value FROM preferences WHERE key IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ") + ")"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *SettingsSQLite) deleteKeys(ctx context.Context, keys ...string) error {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := "DELETE FROM preferences WHERE key IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ") + ")"
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// intPref reads an integer preference, keeping def when absent.
func intPref(m map[string]string, key string, def int) (int, error) {
	v, ok := m[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("preference %s: %w", key, err)
	}
	return n, nil
}

// SaveSchedule stores every schedule field in one statement.
func (r *SettingsSQLite) SaveSchedule(ctx context.Context, e models.ScheduleEntry) error {
	return r.put(ctx,
		pref{KeyScheduleDays, schedule.DaysBits(e.Days)},
		pref{KeyStartHour, strconv.Itoa(e.StartHour)},
		pref{KeyStartMinute, strconv.Itoa(e.StartMinute)},
		pref{KeyStartSecond, strconv.Itoa(e.StartSecond)},
		pref{KeyScheduleDuration, strconv.Itoa(e.DurationMinutes)},
		pref{KeyScheduleDurationSeconds, strconv.Itoa(e.DurationSeconds)},
	)
}

// LoadSchedule returns the stored schedule, falling back to the default per
// missing field. The result is clamped.
func (r *SettingsSQLite) LoadSchedule(ctx context.Context) (models.ScheduleEntry, error) {
	m, err := r.get(ctx, scheduleKeys...)
	if err != nil {
		return models.ScheduleEntry{}, err
	}
	e := schedule.Default()
	if v, ok := m[KeyScheduleDays]; ok {
		if e.Days, err = schedule.ParseDaysBits(v); err != nil {
			return models.ScheduleEntry{}, fmt.Errorf("preference %s: %w", KeyScheduleDays, err)
		}
	}
	for _, f := range []struct {
		key string
		dst *int
	}{
		{KeyStartHour, &e.StartHour},
		{KeyStartMinute, &e.StartMinute},
		{KeyStartSecond, &e.StartSecond},
		{KeyScheduleDuration, &e.DurationMinutes},
		{KeyScheduleDurationSeconds, &e.DurationSeconds},
	} {
		if *f.dst, err = intPref(m, f.key, *f.dst); err != nil {
			return models.ScheduleEntry{}, err
		}
	}
	return schedule.Clamp(e), nil
}

func (r *SettingsSQLite) SaveManual(ctx context.Context, d models.ManualDuration) error {
	return r.put(ctx,
		pref{KeyManualMinutes, strconv.Itoa(d.Minutes)},
		pref{KeyManualSeconds, strconv.Itoa(d.Seconds)},
	)
}

// LoadManual returns the stored manual duration, clamped, or the default.
func (r *SettingsSQLite) LoadManual(ctx context.Context) (models.ManualDuration, error) {
	m, err := r.get(ctx, manualKeys...)
	if err != nil {
		return models.ManualDuration{}, err
	}
	d := schedule.DefaultManual()
	if d.Minutes, err = intPref(m, KeyManualMinutes, d.Minutes); err != nil {
		return models.ManualDuration{}, err
	}
	if d.Seconds, err = intPref(m, KeyManualSeconds, d.Seconds); err != nil {
		return models.ManualDuration{}, err
	}
	return schedule.ClampManual(d), nil
}

// SaveTimer persists the active flag and the absolute end time in unix millis.
func (r *SettingsSQLite) SaveTimer(ctx context.Context, t models.TimerState) error {
	return r.put(ctx,
		pref{KeyTimerActive, strconv.FormatBool(t.Active)},
		pref{KeyTimerEndTime, strconv.FormatInt(t.EndTimestamp.UTC().UnixMilli(), 10)},
	)
}

// LoadTimer returns the persisted timer. RemainingSeconds is left for the caller
// to derive from the clock.
func (r *SettingsSQLite) LoadTimer(ctx context.Context) (models.TimerState, error) {
	m, err := r.get(ctx, timerKeys...)
	if err != nil {
		return models.TimerState{}, err
	}
	active, _ := strconv.ParseBool(m[KeyTimerActive])
	if !active {
		return models.TimerState{}, nil
	}
	ms, err := strconv.ParseInt(m[KeyTimerEndTime], 10, 64)
	if err != nil {
		return models.TimerState{}, fmt.Errorf("preference %s: %w", KeyTimerEndTime, err)
	}
	return models.TimerState{Active: true, EndTimestamp: time.UnixMilli(ms).UTC()}, nil
}

func (r *SettingsSQLite) ClearTimer(ctx context.Context) error {
	return r.deleteKeys(ctx, timerKeys...)
}

func (r *SettingsSQLite) SaveMode(ctx context.Context, m models.ConnectivityMode) error {
	return r.put(ctx, pref{KeyConnectivityMode, string(m)})
}

// LoadMode returns the last observed mode, or "" when none was recorded.
func (r *SettingsSQLite) LoadMode(ctx context.Context) (models.ConnectivityMode, error) {
	m, err := r.get(ctx, KeyConnectivityMode)
	if err != nil {
		return "", err
	}
	v, ok := m[KeyConnectivityMode]
	if !ok {
		return "", nil
	}
	return models.ParseConnectivityMode(v)
}
