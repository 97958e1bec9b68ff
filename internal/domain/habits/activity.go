package habits

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// HabitActivity is an append-only record of habit lifecycle actions,
// consumed by the activity summary endpoint.
type HabitActivity struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	HabitID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Action    string         `gorm:"type:varchar(50);not null"`
	Timestamp time.Time      `gorm:"not null"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for the HabitActivity model
func (HabitActivity) TableName() string {
	return "habit_activities"
}

// Activity actions
const (
	ActionHabitCreated     = "habit_created"
	ActionHabitUpdated     = "habit_updated"
	ActionHabitArchived    = "habit_archived"
	ActionHabitDeleted     = "habit_deleted"
	ActionHabitCompleted   = "habit_completed"
	ActionHabitUncompleted = "habit_uncompleted"
	ActionStreakMilestone  = "streak_milestone"
)

// ActivitySummary aggregates action counts for one habit over a window.
type ActivitySummary struct {
	HabitID      uuid.UUID      `json:"habit_id"`
	ActionCounts map[string]int `json:"action_counts"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	TotalActions int            `json:"total_actions"`
}
