package habits

import (
	"sort"
	"time"
)

// StreakStats summarizes contiguous completion runs.
type StreakStats struct {
	Current       int        `json:"current"`
	Longest       int        `json:"longest"`
	LastCompleted *time.Time `json:"last_completed,omitempty"`
}

// ComputeStreaks derives streak statistics from a sparse list of
// completion dates. Input order and duplicates do not matter.
//
// The current streak is the trailing run only while it is still live:
// the most recent completion is today or yesterday. One missed day is
// tolerated (the grace day); at two full days without a completion the
// current streak resets to zero, though the longest streak remains.
func ComputeStreaks(completionDates []time.Time, today time.Time) StreakStats {
	if len(completionDates) == 0 {
		return StreakStats{}
	}

	seen := make(map[time.Time]struct{}, len(completionDates))
	dates := make([]time.Time, 0, len(completionDates))
	for _, d := range completionDates {
		day := DateOf(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	longest := 1
	run := 1
	for i := 1; i < len(dates); i++ {
		if daysBetween(dates[i-1], dates[i]) == 1 {
			run++
		} else {
			if run > longest {
				longest = run
			}
			run = 1
		}
	}
	if run > longest {
		longest = run
	}

	last := dates[len(dates)-1]
	current := 0
	// A last completion dated after today (clock skew, forward-dated
	// records) is never live.
	if delta := daysBetween(last, DateOf(today)); delta >= 0 && delta <= 1 {
		current = run
	}

	return StreakStats{
		Current:       current,
		Longest:       longest,
		LastCompleted: &last,
	}
}
