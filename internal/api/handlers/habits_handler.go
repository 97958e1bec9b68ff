package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/cctncr/habitstreak/internal/api/dto"
	"github.com/cctncr/habitstreak/internal/domain/habits"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HabitsHandler handles HTTP requests for habit operations
type HabitsHandler struct {
	service habits.Service
}

// NewHabitsHandler creates a new HabitsHandler instance
func NewHabitsHandler(service habits.Service) *HabitsHandler {
	return &HabitsHandler{service: service}
}

func habitErrorStatus(err error) int {
	switch {
	case errors.Is(err, habits.ErrHabitNotFound):
		return http.StatusNotFound
	case errors.Is(err, habits.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CreateHabit creates a new habit from the request body.
func (h *HabitsHandler) CreateHabit(c *gin.Context) {
	var req dto.CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := habits.CreateHabitInput{
		Title:       req.Title,
		Description: req.Description,
		Recurrence:  req.Recurrence.ToRule(),
		TargetCount: req.TargetCount,
	}

	created, err := h.service.CreateHabit(c.Request.Context(), input)
	if err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.ToHabitResponse(created)})
}

// GetHabit returns a single habit by ID.
func (h *HabitsHandler) GetHabit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	habit, err := h.service.GetHabit(c.Request.Context(), id)
	if err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToHabitResponse(habit)})
}

// ListHabits returns habits matching the query filter.
func (h *HabitsHandler) ListHabits(c *gin.Context) {
	var q dto.HabitListFilter
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := habits.HabitFilter{
		IncludeArchived: q.IncludeArchived,
		Page:            q.Page,
		PageSize:        q.PageSize,
	}
	if q.Title != "" {
		filter.Title = &q.Title
	}

	list, total, err := h.service.ListHabits(c.Request.Context(), filter)
	if err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	resp := dto.HabitListResponse{
		Habits:     make([]dto.HabitResponse, 0, len(list)),
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	for i := range list {
		resp.Habits = append(resp.Habits, dto.ToHabitResponse(&list[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UpdateHabit applies a partial update to a habit.
func (h *HabitsHandler) UpdateHabit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	var req dto.UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := habits.UpdateHabitInput{
		Title:       req.Title,
		Description: req.Description,
		TargetCount: req.TargetCount,
	}
	if req.Recurrence != nil {
		rule := req.Recurrence.ToRule()
		input.Recurrence = &rule
	}

	updated, err := h.service.UpdateHabit(c.Request.Context(), id, input)
	if err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToHabitResponse(updated)})
}

// ArchiveHabit hides a habit from active lists without deleting history.
func (h *HabitsHandler) ArchiveHabit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	if err := h.service.ArchiveHabit(c.Request.Context(), id); err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "habit archived"})
}

// DeleteHabit removes a habit and its completion history.
func (h *HabitsHandler) DeleteHabit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	if err := h.service.DeleteHabit(c.Request.Context(), id); err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "habit deleted"})
}

// MarkCompleted records a completion for the habit.
func (h *HabitsHandler) MarkCompleted(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	// An empty body marks today with count one.
	var req dto.HabitCompletionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	input := habits.MarkCompletedInput{
		Count: req.Count,
		Note:  req.Note,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	record, err := h.service.MarkCompleted(c.Request.Context(), id, input)
	if err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToCompletionResponse(record)})
}

// UnmarkCompleted removes a completion for the given date (today when absent).
func (h *HabitsHandler) UnmarkCompleted(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	if err := h.service.UnmarkCompleted(c.Request.Context(), id, date); err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "completion removed"})
}

// GetStats returns streak and completion statistics for a habit.
func (h *HabitsHandler) GetStats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), id)
	if err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToHabitStatsResponse(stats)})
}

// GetHeatmap returns per-day completion counts for the given period.
func (h *HabitsHandler) GetHeatmap(c *gin.Context) {
	period := c.DefaultQuery("period", "year")

	data, err := h.service.GetHeatmapData(c.Request.Context(), period)
	if err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	minV, maxV := 0, 0
	first := true
	for _, v := range data {
		if first || v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		first = false
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.HeatmapResponse{
		Data:     data,
		Period:   period,
		MinValue: minV,
		MaxValue: maxV,
	}})
}

// GetDueToday returns the habits whose recurrence is active today.
func (h *HabitsHandler) GetDueToday(c *gin.Context) {
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		var err error
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	due, err := h.service.GetHabitsDueOn(c.Request.Context(), date)
	if err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.HabitResponse, 0, len(due))
	for i := range due {
		out = append(out, dto.ToHabitResponse(&due[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": out, "date": date.Format("2006-01-02")})
}

// GetActivitySummary returns action counts for a habit over a time window.
func (h *HabitsHandler) GetActivitySummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit ID"})
		return
	}

	endTime := time.Now().UTC()
	startTime := endTime.AddDate(0, -1, 0)
	if raw := c.Query("start_time"); raw != "" {
		if startTime, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time"})
			return
		}
	}
	if raw := c.Query("end_time"); raw != "" {
		if endTime, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time"})
			return
		}
	}

	summary, err := h.service.GetActivitySummary(c.Request.Context(), id, startTime, endTime)
	if err != nil {
		c.JSON(habitErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ActivitySummaryResponse{
		HabitID:      summary.HabitID,
		ActionCounts: summary.ActionCounts,
		StartTime:    summary.StartTime,
		EndTime:      summary.EndTime,
		TotalActions: summary.TotalActions,
	}})
}
