package dto

import (
	"time"

	"github.com/cctncr/habitstreak/internal/domain/habits"
	"github.com/google/uuid"
)

// RecurrenceDTO mirrors habits.RecurrenceRule on the wire.
type RecurrenceDTO struct {
	Kind      string `json:"kind" binding:"required,oneof=daily weekly monthly every_n"`
	Weekdays  []int  `json:"weekdays,omitempty"`
	MonthDays []int  `json:"month_days,omitempty"`
	Interval  int    `json:"interval,omitempty"`
	Unit      string `json:"unit,omitempty"`
}

func (r RecurrenceDTO) ToRule() habits.RecurrenceRule {
	rule := habits.RecurrenceRule{
		Kind:      habits.RecurrenceKind(r.Kind),
		MonthDays: r.MonthDays,
		Interval:  r.Interval,
		Unit:      habits.IntervalUnit(r.Unit),
	}
	for _, wd := range r.Weekdays {
		rule.Weekdays = append(rule.Weekdays, time.Weekday(wd))
	}
	return rule
}

func RecurrenceFromRule(rule habits.RecurrenceRule) RecurrenceDTO {
	out := RecurrenceDTO{
		Kind:      string(rule.Kind),
		MonthDays: rule.MonthDays,
		Interval:  rule.Interval,
		Unit:      string(rule.Unit),
	}
	for _, wd := range rule.Weekdays {
		out.Weekdays = append(out.Weekdays, int(wd))
	}
	return out
}

// CreateHabitRequest represents the request to create a new habit
type CreateHabitRequest struct {
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	Recurrence  RecurrenceDTO `json:"recurrence" binding:"required"`
	TargetCount int           `json:"target_count"`
}

// UpdateHabitRequest represents the request to update an existing habit
type UpdateHabitRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Recurrence  *RecurrenceDTO `json:"recurrence,omitempty"`
	TargetCount *int           `json:"target_count,omitempty"`
}

// HabitCompletionRequest represents the request to mark a habit as completed
type HabitCompletionRequest struct {
	Date  *time.Time `json:"date,omitempty"`
	Count int        `json:"count,omitempty"`
	Note  string     `json:"note,omitempty"`
}

// HabitListFilter represents query parameters for listing habits
type HabitListFilter struct {
	Title           string `form:"title"`
	IncludeArchived bool   `form:"include_archived"`
	Page            int    `form:"page,default=0"`
	PageSize        int    `form:"page_size,default=50"`
}

// HabitResponse represents a habit in API responses
type HabitResponse struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Recurrence  RecurrenceDTO `json:"recurrence"`
	TargetCount int           `json:"target_count"`
	Archived    bool          `json:"archived"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func ToHabitResponse(h *habits.Habit) HabitResponse {
	return HabitResponse{
		ID:          h.ID,
		Title:       h.Title,
		Description: h.Description,
		Recurrence:  RecurrenceFromRule(h.Recurrence),
		TargetCount: h.TargetCount,
		Archived:    h.Archived,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

// HabitListResponse represents the response for listing habits
type HabitListResponse struct {
	Habits     []HabitResponse `json:"habits"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// HabitStatsResponse represents streak and completion statistics for a habit
type HabitStatsResponse struct {
	HabitID        uuid.UUID  `json:"habit_id"`
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
	LastCompleted  *time.Time `json:"last_completed,omitempty"`
	TotalDays      int        `json:"total_days"`
	TotalCount     int        `json:"total_count"`
	CompletionRate float64    `json:"completion_rate"`
}

func ToHabitStatsResponse(s *habits.HabitStats) HabitStatsResponse {
	return HabitStatsResponse{
		HabitID:        s.HabitID,
		CurrentStreak:  s.Streaks.Current,
		LongestStreak:  s.Streaks.Longest,
		LastCompleted:  s.Streaks.LastCompleted,
		TotalDays:      s.TotalDays,
		TotalCount:     s.TotalCount,
		CompletionRate: s.CompletionRate,
	}
}

// CompletionResponse represents a recorded completion
type CompletionResponse struct {
	ID          uuid.UUID `json:"id"`
	HabitID     uuid.UUID `json:"habit_id"`
	Date        time.Time `json:"date"`
	Count       int       `json:"count"`
	Note        string    `json:"note,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

func ToCompletionResponse(r *habits.CompletionRecord) CompletionResponse {
	return CompletionResponse{
		ID:          r.ID,
		HabitID:     r.HabitID,
		Date:        r.Date,
		Count:       r.Count,
		Note:        r.Note,
		CompletedAt: r.CompletedAt,
	}
}

// HeatmapResponse represents habit completion heatmap data
type HeatmapResponse struct {
	Data     map[string]int `json:"data"`
	Period   string         `json:"period"`
	MinValue int            `json:"min_value"`
	MaxValue int            `json:"max_value"`
}

// ActivitySummaryResponse represents a summary of habit activity
type ActivitySummaryResponse struct {
	HabitID      uuid.UUID      `json:"habit_id"`
	ActionCounts map[string]int `json:"action_counts"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	TotalActions int            `json:"total_actions"`
}
