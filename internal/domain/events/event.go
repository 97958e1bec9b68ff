package events

import (
	"time"

	"github.com/google/uuid"
)

// Habit event types published on the habit event channel
const (
	EventHabitCreated       = "habit_created"
	EventHabitUpdated       = "habit_updated"
	EventHabitArchived      = "habit_archived"
	EventHabitDeleted       = "habit_deleted"
	EventHabitCompleted     = "habit_completed"
	EventHabitUncompleted   = "habit_uncompleted"
	EventStreakMilestone    = "streak_milestone"
	EventReminderEnabled    = "reminder_enabled"
	EventReminderDisabled   = "reminder_disabled"
	EventReminderDispatched = "reminder_dispatched"
)

// HabitEvent represents a habit-related event consumed by dashboard and
// cache-invalidation listeners.
type HabitEvent struct {
	EventType string      `json:"event_type"`
	HabitID   uuid.UUID   `json:"habit_id"`
	Timestamp time.Time   `json:"timestamp"`
	Details   interface{} `json:"details,omitempty"`
}
