package habits

import "time"

// IsActiveOn reports whether the rule fires on the given calendar date.
// It is a total function: malformed rules evaluate to "never active"
// rather than failing, since validation happens at construction time.
//
// Every-N arithmetic is anchored to the habit's creation date, never to
// the last completion. Dates before the anchor are never active.
func (r RecurrenceRule) IsActiveOn(date, anchor time.Time) bool {
	date = DateOf(date)
	anchor = DateOf(anchor)

	switch r.Kind {
	case RecurDaily:
		return true

	case RecurWeekly:
		wd := date.Weekday()
		for _, d := range r.Weekdays {
			if d == wd {
				return true
			}
		}
		return false

	case RecurMonthly:
		// A rule day with no matching day-of-month this month (31 in a
		// 30-day month) is simply inactive; there is no rollover.
		day := date.Day()
		for _, d := range r.MonthDays {
			if d == day {
				return true
			}
		}
		return false

	case RecurEveryN:
		if r.Interval < 1 {
			return false
		}
		days := daysBetween(anchor, date)
		if days < 0 {
			return false
		}
		switch r.Unit {
		case UnitDays:
			return days%r.Interval == 0
		case UnitWeeks:
			// Integer week distance; day-of-week alignment within the
			// week is deliberately ignored.
			return (days/7)%r.Interval == 0
		case UnitMonths:
			// Anchored on day 31 this skips short months entirely.
			months := monthsBetween(anchor, date)
			return months%r.Interval == 0 && date.Day() == anchor.Day()
		}
		return false
	}

	return false
}

// daysBetween returns the whole-day distance from a to b. Both inputs
// must already be day-truncated UTC dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// monthsBetween returns the calendar-month distance from a to b,
// ignoring the day component.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
