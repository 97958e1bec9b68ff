package reminder

import (
	"time"

	"github.com/cctncr/habitstreak/internal/domain/habits"
)

// ShouldNotify decides whether a reminder fires on the given date under
// the period policy. SelectedDays deliberately ignores the habit's own
// recurrence: a user may decouple the reminder cadence from the
// completion cadence.
func ShouldNotify(period Period, date time.Time, rule habits.RecurrenceRule, anchor time.Time) bool {
	switch period.Kind {
	case PeriodEveryDay:
		return true
	case PeriodActiveDays:
		return rule.IsActiveOn(date, anchor)
	case PeriodSelectedDays:
		wd := date.Weekday()
		for _, d := range period.Weekdays {
			if d == wd {
				return true
			}
		}
		return false
	}
	return false
}

// NotificationWeekdays answers "which weekdays would this habit notify
// on" by sampling the 7 days starting at weekStart and unioning the
// weekdays that fire. Used for UI summaries, not tied to one concrete
// week beyond supplying the sample points.
func NotificationWeekdays(period Period, rule habits.RecurrenceRule, anchor, weekStart time.Time) map[time.Weekday]bool {
	days := make(map[time.Weekday]bool)
	for i := 0; i < 7; i++ {
		d := habits.DateOf(weekStart).AddDate(0, 0, i)
		if ShouldNotify(period, d, rule, anchor) {
			days[d.Weekday()] = true
		}
	}
	return days
}
