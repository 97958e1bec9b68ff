package dto

import (
	"strings"
	"time"

	"github.com/cctncr/habitstreak/internal/domain/reminder"
	"github.com/google/uuid"
)

// PeriodDTO mirrors reminder.Period on the wire.
type PeriodDTO struct {
	Kind     string `json:"kind" binding:"required,oneof=every_day active_days selected_days"`
	Weekdays []int  `json:"weekdays,omitempty"`
}

func (p PeriodDTO) ToPeriod() reminder.Period {
	out := reminder.Period{Kind: reminder.PeriodKind(p.Kind)}
	for _, wd := range p.Weekdays {
		out.Weekdays = append(out.Weekdays, time.Weekday(wd))
	}
	return out
}

func PeriodFromDomain(p reminder.Period) PeriodDTO {
	out := PeriodDTO{Kind: string(p.Kind)}
	for _, wd := range p.Weekdays {
		out.Weekdays = append(out.Weekdays, int(wd))
	}
	return out
}

// EnableReminderRequest represents the request to enable a habit reminder
type EnableReminderRequest struct {
	Hour    int       `json:"hour" binding:"min=0,max=23"`
	Minute  int       `json:"minute" binding:"min=0,max=59"`
	Message string    `json:"message"`
	Period  PeriodDTO `json:"period" binding:"required"`
}

// UpdateReminderTimeRequest represents the request to change a reminder time
type UpdateReminderTimeRequest struct {
	Hour   int `json:"hour" binding:"min=0,max=23"`
	Minute int `json:"minute" binding:"min=0,max=59"`
}

// ReminderResponse represents a habit reminder configuration in API responses
type ReminderResponse struct {
	HabitID   uuid.UUID `json:"habit_id"`
	Hour      int       `json:"hour"`
	Minute    int       `json:"minute"`
	Enabled   bool      `json:"enabled"`
	Message   string    `json:"message,omitempty"`
	Period    PeriodDTO `json:"period"`
	Sound     bool      `json:"sound"`
	Vibration bool      `json:"vibration"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToReminderResponse(c *reminder.NotificationConfig) ReminderResponse {
	return ReminderResponse{
		HabitID:   c.HabitID,
		Hour:      c.Hour,
		Minute:    c.Minute,
		Enabled:   c.Enabled,
		Message:   c.Message,
		Period:    PeriodFromDomain(c.Period()),
		Sound:     c.Sound,
		Vibration: c.Vibration,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ReminderWeekdaysResponse lists the weekdays a reminder fires on,
// ordered from the configured week start.
type ReminderWeekdaysResponse struct {
	HabitID  uuid.UUID `json:"habit_id"`
	Weekdays []string  `json:"weekdays"`
}

func ToReminderWeekdaysResponse(habitID uuid.UUID, weekStart time.Weekday, days map[time.Weekday]bool) ReminderWeekdaysResponse {
	resp := ReminderWeekdaysResponse{
		HabitID:  habitID,
		Weekdays: make([]string, 0, len(days)),
	}
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(weekStart) + i) % 7)
		if days[wd] {
			resp.Weekdays = append(resp.Weekdays, strings.ToLower(wd.String()))
		}
	}
	return resp
}

// ReminderListResponse represents reminders due on a given date
type ReminderListResponse struct {
	Date      string             `json:"date"`
	Reminders []ReminderResponse `json:"reminders"`
}

// FlowOutcomeResponse represents a permission flow step result
type FlowOutcomeResponse struct {
	Kind     string   `json:"kind"`
	State    string   `json:"state"`
	Message  string   `json:"message,omitempty"`
	Benefits []string `json:"benefits,omitempty"`
}

func ToFlowOutcomeResponse(o reminder.FlowOutcome) FlowOutcomeResponse {
	return FlowOutcomeResponse{
		Kind:     string(o.Kind),
		State:    string(o.State()),
		Message:  o.Message,
		Benefits: o.Benefits,
	}
}

// NotificationSettingsRequest toggles global notification delivery
type NotificationSettingsRequest struct {
	Enabled bool `json:"enabled"`
}
