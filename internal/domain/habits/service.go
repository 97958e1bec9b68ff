package habits

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cctncr/habitstreak/internal/domain/events"
	"github.com/cctncr/habitstreak/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// streakMilestones is the ladder of streak lengths worth announcing.
var streakMilestones = []int{3, 7, 14, 21, 30, 60, 90, 100, 180, 365}

// Clock supplies "today" so streak math stays testable.
type Clock func() time.Time

type Service interface {
	CreateHabit(ctx context.Context, input CreateHabitInput) (*Habit, error)
	GetHabit(ctx context.Context, id uuid.UUID) (*Habit, error)
	ListHabits(ctx context.Context, filter HabitFilter) ([]Habit, int64, error)
	UpdateHabit(ctx context.Context, id uuid.UUID, input UpdateHabitInput) (*Habit, error)
	ArchiveHabit(ctx context.Context, id uuid.UUID) error
	DeleteHabit(ctx context.Context, id uuid.UUID) error

	MarkCompleted(ctx context.Context, id uuid.UUID, input MarkCompletedInput) (*CompletionRecord, error)
	UnmarkCompleted(ctx context.Context, id uuid.UUID, date time.Time) error

	GetStats(ctx context.Context, id uuid.UUID) (*HabitStats, error)
	GetHeatmapData(ctx context.Context, period string) (map[string]int, error)
	GetHabitsDueOn(ctx context.Context, date time.Time) ([]Habit, error)
	GetActivitySummary(ctx context.Context, id uuid.UUID, startTime, endTime time.Time) (*ActivitySummary, error)
}

// MarkCompletedInput carries one day's completion. A zero Date means
// today; a zero Count means one.
type MarkCompletedInput struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
	Note  string    `json:"note"`
}

// HabitStats is the statistics view for one habit.
type HabitStats struct {
	HabitID        uuid.UUID   `json:"habit_id"`
	Streaks        StreakStats `json:"streaks"`
	TotalDays      int         `json:"total_days"`
	TotalCount     int         `json:"total_count"`
	CompletionRate float64     `json:"completion_rate"`
}

type service struct {
	repo   Repository
	redis  *cache.RedisClient
	logger *zap.Logger
	now    Clock
}

func NewService(repo Repository, redis *cache.RedisClient, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		redis:  redis,
		logger: logger,
		now:    time.Now,
	}
}

// NewServiceWithClock is NewService with an injected clock, for tests.
func NewServiceWithClock(repo Repository, redis *cache.RedisClient, logger *zap.Logger, now Clock) Service {
	return &service{
		repo:   repo,
		redis:  redis,
		logger: logger,
		now:    now,
	}
}

func (s *service) CreateHabit(ctx context.Context, input CreateHabitInput) (*Habit, error) {
	if err := input.Recurrence.Validate(); err != nil {
		return nil, err
	}
	if input.TargetCount < 1 {
		input.TargetCount = 1
	}

	habit := &Habit{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Recurrence:  input.Recurrence,
		TargetCount: input.TargetCount,
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, habit.ID, ActionHabitCreated, map[string]interface{}{
		"title": habit.Title,
		"kind":  habit.Recurrence.Kind,
	})
	s.publishEvent(ctx, events.EventHabitCreated, habit.ID, map[string]interface{}{
		"title": habit.Title,
	})

	return habit, nil
}

func (s *service) GetHabit(ctx context.Context, id uuid.UUID) (*Habit, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListHabits(ctx context.Context, filter HabitFilter) ([]Habit, int64, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *service) UpdateHabit(ctx context.Context, id uuid.UUID, input UpdateHabitInput) (*Habit, error) {
	habit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if input.Title != nil && habit.Title != *input.Title {
		habit.Title = *input.Title
		changed = true
	}
	if input.Description != nil && habit.Description != *input.Description {
		habit.Description = *input.Description
		changed = true
	}
	if input.Recurrence != nil {
		if err := input.Recurrence.Validate(); err != nil {
			return nil, err
		}
		habit.Recurrence = *input.Recurrence
		changed = true
	}
	if input.TargetCount != nil && *input.TargetCount >= 1 && habit.TargetCount != *input.TargetCount {
		habit.TargetCount = *input.TargetCount
		changed = true
	}

	if !changed {
		return habit, nil
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, habit.ID, ActionHabitUpdated, map[string]interface{}{
		"title": habit.Title,
	})
	s.publishEvent(ctx, events.EventHabitUpdated, habit.ID, nil)

	return habit, nil
}

// ArchiveHabit soft-deletes: the habit drops out of activity and
// notification evaluation but keeps its history.
func (s *service) ArchiveHabit(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetArchived(ctx, id, true); err != nil {
		return err
	}

	s.recordActivity(ctx, id, ActionHabitArchived, nil)
	s.publishEvent(ctx, events.EventHabitArchived, id, nil)
	return nil
}

func (s *service) DeleteHabit(ctx context.Context, id uuid.UUID) error {
	habit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publishEvent(ctx, events.EventHabitDeleted, id, map[string]interface{}{
		"title": habit.Title,
	})
	return nil
}

func (s *service) MarkCompleted(ctx context.Context, id uuid.UUID, input MarkCompletedInput) (*CompletionRecord, error) {
	habit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	count := input.Count
	if count < 1 {
		count = 1
	}

	record := &CompletionRecord{
		ID:          uuid.New(),
		HabitID:     habit.ID,
		Date:        DateOf(date),
		Count:       count,
		Note:        input.Note,
		CompletedAt: s.now().UTC(),
	}
	if err := s.repo.UpsertCompletion(ctx, record); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, habit.ID, ActionHabitCompleted, map[string]interface{}{
		"date":  record.Date.Format("2006-01-02"),
		"count": record.Count,
	})
	s.publishEvent(ctx, events.EventHabitCompleted, habit.ID, map[string]interface{}{
		"date": record.Date.Format("2006-01-02"),
	})

	// Milestone check runs on the fresh streak numbers.
	dates, err := s.repo.GetCompletionDates(ctx, habit.ID)
	if err != nil {
		s.logger.Error("failed to load completion dates for milestone check",
			zap.String("habit_id", habit.ID.String()),
			zap.Error(err))
		return record, nil
	}
	stats := ComputeStreaks(dates, s.now())
	if isMilestone(stats.Current) {
		s.recordActivity(ctx, habit.ID, ActionStreakMilestone, map[string]interface{}{
			"streak_days": stats.Current,
			"milestone":   fmt.Sprintf("%d-day streak", stats.Current),
		})
		s.publishEvent(ctx, events.EventStreakMilestone, habit.ID, map[string]interface{}{
			"streak_days": stats.Current,
		})
		s.logger.Info("streak milestone reached",
			zap.String("habit_id", habit.ID.String()),
			zap.Int("streak_days", stats.Current))
	}

	return record, nil
}

func (s *service) UnmarkCompleted(ctx context.Context, id uuid.UUID, date time.Time) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.RemoveCompletion(ctx, id, date); err != nil {
		return err
	}

	s.recordActivity(ctx, id, ActionHabitUncompleted, map[string]interface{}{
		"date": DateOf(date).Format("2006-01-02"),
	})
	s.publishEvent(ctx, events.EventHabitUncompleted, id, nil)
	return nil
}

func (s *service) GetStats(ctx context.Context, id uuid.UUID) (*HabitStats, error) {
	habit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.GetCompletions(ctx, id)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(records))
	totalCount := 0
	for _, r := range records {
		dates = append(dates, r.Date)
		totalCount += r.Count
	}

	today := s.now()
	stats := &HabitStats{
		HabitID:    habit.ID,
		Streaks:    ComputeStreaks(dates, today),
		TotalDays:  len(dates),
		TotalCount: totalCount,
	}

	// Completion rate over days on which the rule was actually active.
	activeDays := 0
	anchor := habit.AnchorDate()
	for d := anchor; !d.After(DateOf(today)); d = d.AddDate(0, 0, 1) {
		if habit.Recurrence.IsActiveOn(d, anchor) {
			activeDays++
		}
	}
	if activeDays > 0 {
		stats.CompletionRate = float64(len(dates)) / float64(activeDays)
		if stats.CompletionRate > 1.0 {
			stats.CompletionRate = 1.0
		}
	}

	return stats, nil
}

func (s *service) GetHeatmapData(ctx context.Context, period string) (map[string]int, error) {
	now := s.now()
	var startDate time.Time

	switch period {
	case "year":
		startDate = now.AddDate(-1, 0, 0)
	case "month":
		startDate = now.AddDate(0, -1, 0)
	case "week":
		startDate = now.AddDate(0, 0, -7)
	default:
		startDate = now.AddDate(-1, 0, 0)
	}

	return s.repo.GetHeatmapData(ctx, startDate, now)
}

// GetHabitsDueOn filters active habits through the recurrence engine
// for the given date.
func (s *service) GetHabitsDueOn(ctx context.Context, date time.Time) ([]Habit, error) {
	habits, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	var due []Habit
	for _, h := range habits {
		if h.Recurrence.IsActiveOn(date, h.AnchorDate()) {
			due = append(due, h)
		}
	}

	s.logger.Info("habits due",
		zap.String("date", DateOf(date).Format("2006-01-02")),
		zap.Int("total_due", len(due)))

	return due, nil
}

func (s *service) GetActivitySummary(ctx context.Context, id uuid.UUID, startTime, endTime time.Time) (*ActivitySummary, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	actionCounts, err := s.repo.GetActivitySummary(ctx, id, startTime, endTime)
	if err != nil {
		return nil, err
	}

	totalActions := 0
	for _, count := range actionCounts {
		totalActions += count
	}

	return &ActivitySummary{
		HabitID:      id,
		ActionCounts: actionCounts,
		StartTime:    startTime,
		EndTime:      endTime,
		TotalActions: totalActions,
	}, nil
}

func isMilestone(streak int) bool {
	for _, m := range streakMilestones {
		if streak == m {
			return true
		}
	}
	return false
}

func (s *service) recordActivity(ctx context.Context, habitID uuid.UUID, action string, metadata map[string]interface{}) {
	var raw []byte
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			raw = b
		}
	}

	activity := &HabitActivity{
		ID:        uuid.New(),
		HabitID:   habitID,
		Action:    action,
		Timestamp: s.now().UTC(),
		Metadata:  raw,
	}
	if err := s.repo.RecordActivity(ctx, activity); err != nil {
		s.logger.Error("failed to record habit activity",
			zap.String("habit_id", habitID.String()),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *service) publishEvent(ctx context.Context, eventType string, habitID uuid.UUID, details map[string]interface{}) {
	if s.redis == nil {
		return
	}
	event := &events.HabitEvent{
		EventType: eventType,
		HabitID:   habitID,
		Timestamp: s.now().UTC(),
		Details:   details,
	}
	if err := s.redis.PublishHabitEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish habit event", zap.Error(err))
	}
}
