package habits

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock repository for testing
type mockRepository struct {
	habits      map[uuid.UUID]*Habit
	completions map[uuid.UUID]map[time.Time]*CompletionRecord
	activities  []*HabitActivity
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		habits:      make(map[uuid.UUID]*Habit),
		completions: make(map[uuid.UUID]map[time.Time]*CompletionRecord),
	}
}

func (m *mockRepository) Create(ctx context.Context, habit *Habit) error {
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now().UTC()
	}
	m.habits[habit.ID] = habit
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*Habit, error) {
	h, ok := m.habits[id]
	if !ok {
		return nil, ErrHabitNotFound
	}
	return h, nil
}

func (m *mockRepository) FindAll(ctx context.Context, filter HabitFilter) ([]Habit, int64, error) {
	var out []Habit
	for _, h := range m.habits {
		if h.Archived && !filter.IncludeArchived {
			continue
		}
		out = append(out, *h)
	}
	return out, int64(len(out)), nil
}

func (m *mockRepository) FindActive(ctx context.Context) ([]Habit, error) {
	var out []Habit
	for _, h := range m.habits {
		if !h.Archived {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(ctx context.Context, habit *Habit) error {
	if _, ok := m.habits[habit.ID]; !ok {
		return ErrHabitNotFound
	}
	m.habits[habit.ID] = habit
	return nil
}

func (m *mockRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	h, ok := m.habits[id]
	if !ok {
		return ErrHabitNotFound
	}
	h.Archived = archived
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.habits[id]; !ok {
		return ErrHabitNotFound
	}
	delete(m.habits, id)
	delete(m.completions, id)
	return nil
}

func (m *mockRepository) UpsertCompletion(ctx context.Context, record *CompletionRecord) error {
	byDate, ok := m.completions[record.HabitID]
	if !ok {
		byDate = make(map[time.Time]*CompletionRecord)
		m.completions[record.HabitID] = byDate
	}
	record.Date = DateOf(record.Date)
	byDate[record.Date] = record
	return nil
}

func (m *mockRepository) RemoveCompletion(ctx context.Context, habitID uuid.UUID, d time.Time) error {
	if byDate, ok := m.completions[habitID]; ok {
		delete(byDate, DateOf(d))
	}
	return nil
}

func (m *mockRepository) GetCompletions(ctx context.Context, habitID uuid.UUID) ([]CompletionRecord, error) {
	var out []CompletionRecord
	for _, r := range m.completions[habitID] {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRepository) GetCompletionDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error) {
	var out []time.Time
	for d := range m.completions[habitID] {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockRepository) GetHeatmapData(ctx context.Context, startDate, endDate time.Time) (map[string]int, error) {
	data := make(map[string]int)
	for _, byDate := range m.completions {
		for d, r := range byDate {
			if !d.Before(DateOf(startDate)) && !d.After(DateOf(endDate)) {
				data[d.Format("2006-01-02")] += r.Count
			}
		}
	}
	return data, nil
}

func (m *mockRepository) RecordActivity(ctx context.Context, activity *HabitActivity) error {
	m.activities = append(m.activities, activity)
	return nil
}

func (m *mockRepository) GetActivitySummary(ctx context.Context, habitID uuid.UUID, startTime, endTime time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	for _, a := range m.activities {
		if a.HabitID == habitID && !a.Timestamp.Before(startTime) && !a.Timestamp.After(endTime) {
			counts[a.Action]++
		}
	}
	return counts, nil
}

func newTestService(repo Repository, today time.Time) Service {
	return NewServiceWithClock(repo, nil, zap.NewNop(), func() time.Time { return today })
}

func TestCreateHabitRejectsInvalidRule(t *testing.T) {
	svc := newTestService(newMockRepository(), date(2024, 1, 10))

	_, err := svc.CreateHabit(context.Background(), CreateHabitInput{
		Title:      "stretch",
		Recurrence: EveryN(0, UnitDays),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateHabitDefaultsTargetCount(t *testing.T) {
	svc := newTestService(newMockRepository(), date(2024, 1, 10))

	habit, err := svc.CreateHabit(context.Background(), CreateHabitInput{
		Title:      "read",
		Recurrence: Daily(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, habit.TargetCount)
}

func TestMarkCompletedUpsertsSingleRecordPerDay(t *testing.T) {
	repo := newMockRepository()
	today := date(2024, 1, 10)
	svc := newTestService(repo, today)

	habit, err := svc.CreateHabit(context.Background(), CreateHabitInput{
		Title:      "water",
		Recurrence: Daily(),
	})
	require.NoError(t, err)

	_, err = svc.MarkCompleted(context.Background(), habit.ID, MarkCompletedInput{Count: 1})
	require.NoError(t, err)
	_, err = svc.MarkCompleted(context.Background(), habit.ID, MarkCompletedInput{Count: 3, Note: "evening"})
	require.NoError(t, err)

	records, err := repo.GetCompletions(context.Background(), habit.ID)
	require.NoError(t, err)
	require.Len(t, records, 1, "second mark on the same day must replace, not append")
	assert.Equal(t, 3, records[0].Count)
	assert.Equal(t, "evening", records[0].Note)
}

func TestMarkCompletedUnknownHabit(t *testing.T) {
	svc := newTestService(newMockRepository(), date(2024, 1, 10))

	_, err := svc.MarkCompleted(context.Background(), uuid.New(), MarkCompletedInput{})
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestGetStatsStreaks(t *testing.T) {
	repo := newMockRepository()
	today := date(2024, 1, 3)
	svc := newTestService(repo, today)

	habit, err := svc.CreateHabit(context.Background(), CreateHabitInput{
		Title:      "run",
		Recurrence: Daily(),
	})
	require.NoError(t, err)
	habit.CreatedAt = date(2024, 1, 1)

	for _, d := range []time.Time{date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 3)} {
		_, err = svc.MarkCompleted(context.Background(), habit.ID, MarkCompletedInput{Date: d})
		require.NoError(t, err)
	}

	stats, err := svc.GetStats(context.Background(), habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Streaks.Current)
	assert.Equal(t, 3, stats.Streaks.Longest)
	assert.Equal(t, 3, stats.TotalDays)
	assert.InDelta(t, 1.0, stats.CompletionRate, 0.001)
}

func TestGetHabitsDueOnFiltersByRecurrence(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, date(2024, 1, 10))

	daily, err := svc.CreateHabit(context.Background(), CreateHabitInput{Title: "daily", Recurrence: Daily()})
	require.NoError(t, err)
	weekly, err := svc.CreateHabit(context.Background(), CreateHabitInput{Title: "mondays", Recurrence: Weekly(time.Monday)})
	require.NoError(t, err)
	archived, err := svc.CreateHabit(context.Background(), CreateHabitInput{Title: "archived", Recurrence: Daily()})
	require.NoError(t, err)
	require.NoError(t, svc.ArchiveHabit(context.Background(), archived.ID))

	// 2024-01-08 is a Monday
	due, err := svc.GetHabitsDueOn(context.Background(), date(2024, 1, 8))
	require.NoError(t, err)
	ids := make(map[uuid.UUID]bool)
	for _, h := range due {
		ids[h.ID] = true
	}
	assert.True(t, ids[daily.ID])
	assert.True(t, ids[weekly.ID])
	assert.False(t, ids[archived.ID], "archived habits are excluded from due evaluation")

	// 2024-01-09 is a Tuesday
	due, err = svc.GetHabitsDueOn(context.Background(), date(2024, 1, 9))
	require.NoError(t, err)
	ids = make(map[uuid.UUID]bool)
	for _, h := range due {
		ids[h.ID] = true
	}
	assert.True(t, ids[daily.ID])
	assert.False(t, ids[weekly.ID])
}

func TestStreakMilestoneRecorded(t *testing.T) {
	repo := newMockRepository()
	today := date(2024, 1, 3)
	svc := newTestService(repo, today)

	habit, err := svc.CreateHabit(context.Background(), CreateHabitInput{Title: "meditate", Recurrence: Daily()})
	require.NoError(t, err)

	for _, d := range []time.Time{date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 3)} {
		_, err = svc.MarkCompleted(context.Background(), habit.ID, MarkCompletedInput{Date: d})
		require.NoError(t, err)
	}

	milestones := 0
	for _, a := range repo.activities {
		if a.Action == ActionStreakMilestone {
			milestones++
		}
	}
	assert.Equal(t, 1, milestones, "3-day streak should record exactly one milestone")
}

func TestUpdateHabitCannotMoveAnchor(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, date(2024, 1, 10))

	habit, err := svc.CreateHabit(context.Background(), CreateHabitInput{Title: "journal", Recurrence: Daily()})
	require.NoError(t, err)
	created := habit.CreatedAt

	newTitle := "journal nightly"
	updated, err := svc.UpdateHabit(context.Background(), habit.ID, UpdateHabitInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, created, updated.CreatedAt)
}
