package schedule

import (
	"fmt"
	"strings"

	"nexadomus/internal/models"
)

var dayAbbreviations = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Summary renders a schedule for display, e.g. "Mon, Wed\n6:00:00 AM for 1 hour".
func Summary(e models.ScheduleEntry) string {
	if !e.AnyDay() {
		return "Not Set"
	}

	var names []string
	for i, on := range e.Days {
		if on {
			names = append(names, dayAbbreviations[i])
		}
	}

	amPm := "AM"
	if e.StartHour >= 12 {
		amPm = "PM"
	}
	hour12 := e.StartHour % 12
	if hour12 == 0 {
		hour12 = 12
	}

	dur := fmt.Sprintf("%d:%02d", e.DurationMinutes, e.DurationSeconds)
	if e.DurationMinutes == MaxScheduleMinutes && e.DurationSeconds == 0 {
		dur = "1 hour"
	}

	return fmt.Sprintf("%s\n%d:%02d:%02d %s for %s",
		strings.Join(names, ", "), hour12, e.StartMinute, e.StartSecond, amPm, dur)
}

// FormatDuration renders whole minutes as "N minutes" and anything else as "m:ss".
func FormatDuration(totalSeconds int) string {
	minutes, seconds := totalSeconds/60, totalSeconds%60
	if seconds != 0 {
		return fmt.Sprintf("%d:%02d", minutes, seconds)
	}
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
