// Package schedule holds the sprinkler schedule rules: duration clamps,
// range validation and the relay wire format.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"nexadomus/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	// Separator joins wire format fields.
	Separator = "_"

	MaxScheduleMinutes = 60
	MaxManualMinutes   = 15
	maxSeconds         = 59
)

var (
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrInvalidWire     = errors.New("invalid schedule wire string")
	ErrInvalidManual   = errors.New("invalid manual duration")
)

var validate = validator.New()

// Default values used before anything was persisted.
func Default() models.ScheduleEntry {
	return models.ScheduleEntry{StartHour: 6, DurationMinutes: 30}
}

func DefaultManual() models.ManualDuration {
	return models.ManualDuration{Minutes: 5}
}

// Clamp caps the run length at exactly one hour. It only touches the duration
// fields and is idempotent.
func Clamp(e models.ScheduleEntry) models.ScheduleEntry {
	e.DurationMinutes, e.DurationSeconds = clampDuration(e.DurationMinutes, e.DurationSeconds, MaxScheduleMinutes)
	return e
}

// ClampManual caps a manual run at exactly 15 minutes. Idempotent.
func ClampManual(d models.ManualDuration) models.ManualDuration {
	d.Minutes, d.Seconds = clampDuration(d.Minutes, d.Seconds, MaxManualMinutes)
	return d
}

func clampDuration(minutes, seconds, maxMinutes int) (int, int) {
	if minutes < 0 {
		minutes = 0
	}
	if seconds < 0 {
		seconds = 0
	}
	if seconds > maxSeconds {
		seconds = maxSeconds
	}
	if minutes >= maxMinutes {
		return maxMinutes, 0
	}
	return minutes, seconds
}

// Validate checks field ranges and the one-hour cap without modifying anything.
func Validate(e models.ScheduleEntry) error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if e.DurationMinutes == MaxScheduleMinutes && e.DurationSeconds != 0 {
		return fmt.Errorf("%w: duration exceeds %d minutes", ErrInvalidSchedule, MaxScheduleMinutes)
	}
	return nil
}

// ValidateManual checks a manual duration against the 15 minute cap.
func ValidateManual(d models.ManualDuration) error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManual, err)
	}
	if d.Minutes == MaxManualMinutes && d.Seconds != 0 {
		return fmt.Errorf("%w: duration exceeds %d minutes", ErrInvalidManual, MaxManualMinutes)
	}
	return nil
}

// DaysBits renders days as seven '0'/'1' characters, Sunday first.
func DaysBits(days [7]bool) string {
	var b strings.Builder
	for _, d := range days {
		if d {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParseDaysBits is the inverse of DaysBits.
func ParseDaysBits(s string) ([7]bool, error) {
	var days [7]bool
	if len(s) != len(days) {
		return days, fmt.Errorf("%w: day bits %q must have 7 digits", ErrInvalidWire, s)
	}
	for i := range days {
		switch s[i] {
		case '1':
			days[i] = true
		case '0':
		default:
			return days, fmt.Errorf("%w: day bits %q must be 0 or 1", ErrInvalidWire, s)
		}
	}
	return days, nil
}

// Encode produces "<7 day bits>_<h>_<m>_<s>_<durMin>_<durSec>".
func Encode(e models.ScheduleEntry) string {
	return strings.Join([]string{
		DaysBits(e.Days),
		strconv.Itoa(e.StartHour),
		strconv.Itoa(e.StartMinute),
		strconv.Itoa(e.StartSecond),
		strconv.Itoa(e.DurationMinutes),
		strconv.Itoa(e.DurationSeconds),
	}, Separator)
}

// Decode parses a wire string produced by Encode. Only canonical strings are
// accepted, so Encode(Decode(s)) == s for every s that decodes.
func Decode(s string) (models.ScheduleEntry, error) {
	var e models.ScheduleEntry

	parts := strings.Split(s, Separator)
	if len(parts) != 6 {
		return e, fmt.Errorf("%w: expected 6 fields, got %d", ErrInvalidWire, len(parts))
	}

	days, err := ParseDaysBits(parts[0])
	if err != nil {
		return e, err
	}
	e.Days = days

	nums := make([]int, 5)
	for i, p := range parts[1:] {
		n, err := parseCanonicalInt(p)
		if err != nil {
			return models.ScheduleEntry{}, err
		}
		nums[i] = n
	}
	e.StartHour, e.StartMinute, e.StartSecond = nums[0], nums[1], nums[2]
	e.DurationMinutes, e.DurationSeconds = nums[3], nums[4]

	if err := Validate(e); err != nil {
		return models.ScheduleEntry{}, fmt.Errorf("%w: %v", ErrInvalidWire, err)
	}
	return e, nil
}

func parseCanonicalInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || strconv.Itoa(n) != s {
		return 0, fmt.Errorf("%w: field %q is not a plain number", ErrInvalidWire, s)
	}
	return n, nil
}
