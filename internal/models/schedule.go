package models

import "time"

// ScheduleEntry is the weekly sprinkler schedule. Days run Sunday..Saturday.
type ScheduleEntry struct {
	Days            [7]bool `json:"days"`
	StartHour       int     `json:"start_hour" validate:"min=0,max=23"`
	StartMinute     int     `json:"start_minute" validate:"min=0,max=59"`
	StartSecond     int     `json:"start_second" validate:"min=0,max=59"`
	DurationMinutes int     `json:"duration_minutes" validate:"min=0,max=60"`
	DurationSeconds int     `json:"duration_seconds" validate:"min=0,max=59"`
}

// Duration returns the total run time of one scheduled activation.
func (e ScheduleEntry) Duration() time.Duration {
	return time.Duration(e.DurationMinutes)*time.Minute + time.Duration(e.DurationSeconds)*time.Second
}

// AnyDay reports whether at least one weekday is enabled.
func (e ScheduleEntry) AnyDay() bool {
	for _, d := range e.Days {
		if d {
			return true
		}
	}
	return false
}

// ManualDuration is a one-off timed run outside the weekly schedule.
type ManualDuration struct {
	Minutes int `json:"minutes" validate:"min=0,max=15"`
	Seconds int `json:"seconds" validate:"min=0,max=59"`
}

// TotalSeconds returns the run length in seconds.
func (d ManualDuration) TotalSeconds() int {
	return d.Minutes*60 + d.Seconds
}

// TimerState is the persisted countdown for a schedulable device.
type TimerState struct {
	Active           bool      `json:"active"`
	EndTimestamp     time.Time `json:"end_timestamp,omitempty"`
	RemainingSeconds int       `json:"remaining_seconds"`
}
