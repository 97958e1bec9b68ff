package habits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyRuleAlwaysActive(t *testing.T) {
	rule := Daily()
	anchor := date(2024, 1, 1)

	for d := anchor; d.Before(date(2024, 3, 1)); d = d.AddDate(0, 0, 1) {
		assert.True(t, rule.IsActiveOn(d, anchor), "daily rule inactive on %s", d)
	}
}

func TestWeeklyRule(t *testing.T) {
	anchor := date(2024, 1, 1)

	tests := []struct {
		name     string
		rule     RecurrenceRule
		day      time.Time
		expected bool
	}{
		{
			name:     "Monday in set",
			rule:     Weekly(time.Monday, time.Wednesday),
			day:      date(2024, 1, 1), // Monday
			expected: true,
		},
		{
			name:     "Tuesday not in set",
			rule:     Weekly(time.Monday, time.Wednesday),
			day:      date(2024, 1, 2),
			expected: false,
		},
		{
			name:     "Wednesday in set",
			rule:     Weekly(time.Monday, time.Wednesday),
			day:      date(2024, 1, 3),
			expected: true,
		},
		{
			name:     "Empty set never fires",
			rule:     Weekly(),
			day:      date(2024, 1, 1),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule.IsActiveOn(tt.day, anchor))
		})
	}
}

func TestMonthlyRule(t *testing.T) {
	anchor := date(2024, 1, 1)

	tests := []struct {
		name     string
		rule     RecurrenceRule
		day      time.Time
		expected bool
	}{
		{
			name:     "matching day of month",
			rule:     Monthly(1, 15),
			day:      date(2024, 2, 15),
			expected: true,
		},
		{
			name:     "non-matching day",
			rule:     Monthly(1, 15),
			day:      date(2024, 2, 16),
			expected: false,
		},
		{
			name:     "day 31 in 30-day month never rolls over",
			rule:     Monthly(31),
			day:      date(2024, 4, 30),
			expected: false,
		},
		{
			name:     "day 31 in 31-day month",
			rule:     Monthly(31),
			day:      date(2024, 5, 31),
			expected: true,
		},
		{
			name:     "empty set never fires",
			rule:     Monthly(),
			day:      date(2024, 1, 31),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule.IsActiveOn(tt.day, anchor))
		})
	}
}

func TestEveryNDays(t *testing.T) {
	rule := EveryN(3, UnitDays)
	anchor := date(2024, 1, 1)

	active := []int{0, 3, 6, 9}
	inactive := []int{1, 2, 4, 5, 7, 8}

	for _, offset := range active {
		d := anchor.AddDate(0, 0, offset)
		assert.True(t, rule.IsActiveOn(d, anchor), "expected active at day %d", offset)
	}
	for _, offset := range inactive {
		d := anchor.AddDate(0, 0, offset)
		assert.False(t, rule.IsActiveOn(d, anchor), "expected inactive at day %d", offset)
	}
}

func TestEveryNWeeks(t *testing.T) {
	rule := EveryN(2, UnitWeeks)
	anchor := date(2024, 1, 1) // Monday

	tests := []struct {
		name     string
		day      time.Time
		expected bool
	}{
		{"anchor day", anchor, true},
		{"later same week", date(2024, 1, 4), true},
		{"week one", date(2024, 1, 8), false},
		{"week two", date(2024, 1, 15), true},
		{"week three", date(2024, 1, 22), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rule.IsActiveOn(tt.day, anchor))
		})
	}
}

func TestEveryNMonths(t *testing.T) {
	rule := EveryN(2, UnitMonths)

	t.Run("requires matching day of month", func(t *testing.T) {
		anchor := date(2024, 1, 15)
		assert.True(t, rule.IsActiveOn(date(2024, 3, 15), anchor))
		assert.False(t, rule.IsActiveOn(date(2024, 3, 14), anchor))
		assert.False(t, rule.IsActiveOn(date(2024, 2, 15), anchor))
	})

	t.Run("anchor day 31 skips short months", func(t *testing.T) {
		anchor := date(2024, 1, 31)
		monthly := EveryN(1, UnitMonths)
		// February has no day 31; the month is skipped, not rolled over.
		for d := date(2024, 2, 1); d.Before(date(2024, 3, 1)); d = d.AddDate(0, 0, 1) {
			assert.False(t, monthly.IsActiveOn(d, anchor))
		}
		assert.True(t, monthly.IsActiveOn(date(2024, 3, 31), anchor))
	})
}

func TestRecurrenceBeforeAnchorInactive(t *testing.T) {
	rule := EveryN(3, UnitDays)
	anchor := date(2024, 6, 1)

	assert.False(t, rule.IsActiveOn(date(2024, 5, 29), anchor))
	assert.False(t, rule.IsActiveOn(date(2024, 5, 31), anchor))
}

func TestRecurrenceZeroIntervalNeverActive(t *testing.T) {
	rule := RecurrenceRule{Kind: RecurEveryN, Interval: 0, Unit: UnitDays}
	anchor := date(2024, 1, 1)

	assert.Error(t, rule.Validate())
	// Defensive behavior if an invalid rule slips through construction.
	assert.False(t, rule.IsActiveOn(anchor, anchor))
}

func TestRecurrenceValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    RecurrenceRule
		wantErr bool
	}{
		{"daily", Daily(), false},
		{"weekly empty set is valid", Weekly(), false},
		{"monthly in range", Monthly(1, 31), false},
		{"monthly day zero", Monthly(0), true},
		{"monthly day 32", Monthly(32), true},
		{"every 3 days", EveryN(3, UnitDays), false},
		{"negative interval", EveryN(-1, UnitWeeks), true},
		{"unknown unit", RecurrenceRule{Kind: RecurEveryN, Interval: 2, Unit: "fortnights"}, true},
		{"unknown kind", RecurrenceRule{Kind: "yearly"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
