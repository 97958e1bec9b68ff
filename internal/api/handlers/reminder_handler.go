package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/cctncr/habitstreak/internal/api/dto"
	"github.com/cctncr/habitstreak/internal/domain/reminder"
	"github.com/cctncr/habitstreak/internal/infrastructure/platform"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReminderHandler handles HTTP requests for reminder configuration and
// the notification permission flow.
type ReminderHandler struct {
	coordinator reminder.Coordinator
	flow        *reminder.FlowController
	settings    *platform.SettingsPermissionManager
	weekStart   time.Weekday
}

func NewReminderHandler(coordinator reminder.Coordinator, flow *reminder.FlowController, settings *platform.SettingsPermissionManager, weekStart time.Weekday) *ReminderHandler {
	return &ReminderHandler{
		coordinator: coordinator,
		flow:        flow,
		settings:    settings,
		weekStart:   weekStart,
	}
}

func reminderErrorStatus(err error) int {
	var denied *reminder.PermissionDeniedError
	switch {
	case errors.Is(err, reminder.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, reminder.ErrNotificationsDisabled), errors.Is(err, reminder.ErrGloballyDisabled):
		return http.StatusConflict
	case errors.As(err, &denied):
		return http.StatusForbidden
	case errors.Is(err, reminder.ErrSchedulingFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Enable turns on the reminder for a habit, persisting config before
// arming the scheduler.
func (h *ReminderHandler) Enable(c *gin.Context) {
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	var req dto.EnableReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	at := reminder.TimeOfDay{Hour: req.Hour, Minute: req.Minute}
	cfg, err := h.coordinator.Enable(c.Request.Context(), habitID, at, req.Message, req.Period.ToPeriod())
	if err != nil {
		c.JSON(reminderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToReminderResponse(cfg)})
}

// Disable turns off the reminder for a habit.
func (h *ReminderHandler) Disable(c *gin.Context) {
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	if err := h.coordinator.Disable(c.Request.Context(), habitID); err != nil {
		c.JSON(reminderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reminder disabled"})
}

// UpdateTime changes the reminder time without touching the period.
func (h *ReminderHandler) UpdateTime(c *gin.Context) {
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	var req dto.UpdateReminderTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.coordinator.UpdateTime(c.Request.Context(), habitID, reminder.TimeOfDay{Hour: req.Hour, Minute: req.Minute})
	if err != nil {
		c.JSON(reminderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToReminderResponse(cfg)})
}

// Get returns the reminder configuration for a habit.
func (h *ReminderHandler) Get(c *gin.Context) {
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	cfg, err := h.coordinator.Get(c.Request.Context(), habitID)
	if err != nil {
		c.JSON(reminderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToReminderResponse(cfg)})
}

// GetWeekdays summarizes which weekdays the habit's reminder fires on,
// ordered from the configured week start.
func (h *ReminderHandler) GetWeekdays(c *gin.Context) {
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	days, err := h.coordinator.Weekdays(c.Request.Context(), habitID, h.weekStart)
	if err != nil {
		c.JSON(reminderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToReminderWeekdaysResponse(habitID, h.weekStart, days)})
}

// DueOn lists the reminders that fire on the given date (today when absent).
func (h *ReminderHandler) DueOn(c *gin.Context) {
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		var err error
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	configs, err := h.coordinator.DueOn(c.Request.Context(), date)
	if err != nil {
		c.JSON(reminderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	resp := dto.ReminderListResponse{
		Date:      date.Format("2006-01-02"),
		Reminders: make([]dto.ReminderResponse, 0, len(configs)),
	}
	for i := range configs {
		resp.Reminders = append(resp.Reminders, dto.ToReminderResponse(&configs[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// SyncAll re-arms every enabled reminder.
func (h *ReminderHandler) SyncAll(c *gin.Context) {
	count, err := h.coordinator.SyncAll(c.Request.Context())
	if err != nil {
		c.JSON(reminderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reminders synced", "armed": count})
}

// CancelAll cancels every scheduled reminder and disables all configs.
func (h *ReminderHandler) CancelAll(c *gin.Context) {
	if err := h.coordinator.CancelAll(c.Request.Context()); err != nil {
		c.JSON(reminderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all reminders cancelled"})
}

// RequestPermission runs the pre-ask phase of the permission flow.
func (h *ReminderHandler) RequestPermission(c *gin.Context) {
	habitName := c.DefaultQuery("habit", "your habit")

	outcome := h.flow.RequestWithFlow(c.Request.Context(), habitName)
	c.JSON(http.StatusOK, gin.H{"data": dto.ToFlowOutcomeResponse(outcome)})
}

// PermissionResult handles the system dialog's answer, the second phase
// of the flow.
func (h *ReminderHandler) PermissionResult(c *gin.Context) {
	habitName := c.DefaultQuery("habit", "your habit")

	outcome := h.flow.HandleSystemResult(c.Request.Context(), habitName)
	c.JSON(http.StatusOK, gin.H{"data": dto.ToFlowOutcomeResponse(outcome)})
}

// InvalidatePermissionCache drops the cached permission state so the
// next check asks the platform again.
func (h *ReminderHandler) InvalidatePermissionCache(c *gin.Context) {
	h.flow.InvalidateCache()
	c.JSON(http.StatusOK, gin.H{"message": "permission cache invalidated"})
}

// OpenSettings deep-links into the system notification settings.
func (h *ReminderHandler) OpenSettings(c *gin.Context) {
	opened, err := h.flow.OpenSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"opened": opened})
}

// UpdateSettings toggles global notification delivery. Turning it off
// cancels everything scheduled.
func (h *ReminderHandler) UpdateSettings(c *gin.Context) {
	var req dto.NotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.settings.SetNotificationsEnabled(req.Enabled)
	if !req.Enabled {
		if err := h.coordinator.CancelAll(c.Request.Context()); err != nil {
			c.JSON(reminderErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled})
}
